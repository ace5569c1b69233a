// Package htmlsanitize strips markup from the free-text fields that
// admins and portal users submit (lesson notes, homework text) before
// they are stored and later rendered by clients.
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.StrictPolicy()

// Sanitize removes all HTML, leaving plain text.
func Sanitize(s string) string {
	return strings.TrimSpace(policy.Sanitize(s))
}
