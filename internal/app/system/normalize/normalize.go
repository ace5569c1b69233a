// Package normalize holds small helpers that canonicalize user input
// before it is stored or compared.
package normalize

import "strings"

// Email lowercases and trims an email address so lookups and the
// unique index on users.email behave case-insensitively.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace but preserves case.
func Name(s string) string {
	return strings.TrimSpace(s)
}
