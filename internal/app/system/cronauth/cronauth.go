// Package cronauth guards the endpoints invoked by external cron
// services (the reminder trigger) with a static bearer token.
package cronauth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/harmonykeys/lessonhub/internal/app/system/httpjson"
)

// Require rejects requests whose Authorization bearer token does not
// match the configured cron token. An empty configured token disables
// the endpoint entirely.
func Require(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				httpjson.Error(w, http.StatusInternalServerError, "Cron auth not configured")
				return
			}
			hdr := r.Header.Get("Authorization")
			got := strings.TrimPrefix(hdr, "Bearer ")
			if got == hdr || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				httpjson.Error(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
