// Package auth issues and verifies the bearer tokens that authenticate
// API requests, and provides the middleware that loads the current
// principal into the request context.
package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/harmonykeys/lessonhub/internal/app/system/httpjson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Principal is the authenticated caller: the user id ("sub") and role.
type Principal struct {
	UserID primitive.ObjectID
	Role   string // "admin" | "portal"
}

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies access tokens with a shared HMAC secret.
type Tokens struct {
	secret    []byte
	accessTTL time.Duration
}

// NewTokens builds a token signer/verifier. accessTTL bounds how long
// an access token stays valid.
func NewTokens(secret string, accessTTL time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), accessTTL: accessTTL}
}

// SignAccess issues an access token for the user.
func (t *Tokens) SignAccess(userID primitive.ObjectID, role string) (string, error) {
	now := time.Now().UTC()
	c := claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.accessTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(t.secret)
}

// Verify parses and validates a token, returning the principal.
func (t *Tokens) Verify(token string) (Principal, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return t.secret, nil
	})
	if err != nil {
		return Principal{}, err
	}
	uid, err := primitive.ObjectIDFromHex(c.Subject)
	if err != nil {
		return Principal{}, err
	}
	return Principal{UserID: uid, Role: c.Role}, nil
}

// SignState issues a short-lived token used as the OAuth state
// parameter, so the callback can reject forged or stale states without
// server-side session storage.
func (t *Tokens) SignState() (string, error) {
	now := time.Now().UTC()
	c := jwt.RegisteredClaims{
		Subject:   "oauth-state",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(10 * time.Minute)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(t.secret)
}

// VerifyState validates an OAuth state parameter minted by SignState.
func (t *Tokens) VerifyState(state string) error {
	var c jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(state, &c, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return t.secret, nil
	})
	if err != nil {
		return err
	}
	if c.Subject != "oauth-state" {
		return jwt.ErrTokenInvalidClaims
	}
	return nil
}

type ctxKey string

const principalKey ctxKey = "principal"

// CurrentUser returns the principal placed in context by Require.
func CurrentUser(r *http.Request) (Principal, bool) {
	p, ok := r.Context().Value(principalKey).(Principal)
	return p, ok
}

// WithTestUser injects a principal directly; for handler tests that
// bypass the middleware.
func WithTestUser(r *http.Request, p Principal) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), principalKey, p))
}

// Require verifies the Authorization bearer token and, when roles are
// given, enforces that the principal holds one of them. 401 without a
// valid token, 403 on role mismatch.
func (t *Tokens) Require(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p, ok := CurrentUser(r); ok {
				// Already injected (tests); only check the role.
				if authorize(w, p, allowed) {
					next.ServeHTTP(w, r)
				}
				return
			}

			hdr := r.Header.Get("Authorization")
			if !strings.HasPrefix(hdr, "Bearer ") {
				httpjson.Error(w, http.StatusUnauthorized, "No access token")
				return
			}
			p, err := t.Verify(strings.TrimPrefix(hdr, "Bearer "))
			if err != nil {
				httpjson.Error(w, http.StatusUnauthorized, "Invalid token")
				return
			}
			if !authorize(w, p, allowed) {
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), principalKey, p)))
		})
	}
}

func authorize(w http.ResponseWriter, p Principal, allowed map[string]struct{}) bool {
	if len(allowed) == 0 {
		return true
	}
	if _, ok := allowed[p.Role]; !ok {
		httpjson.Error(w, http.StatusForbidden, "Forbidden")
		return false
	}
	return true
}
