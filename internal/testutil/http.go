package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/harmonykeys/lessonhub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// WithPrincipal injects an authenticated principal into the request
// context, bypassing the token middleware.
func WithPrincipal(r *http.Request, userID primitive.ObjectID, role string) *http.Request {
	return auth.WithTestUser(r, auth.Principal{UserID: userID, Role: role})
}

// AdminRequest builds a JSON request authenticated as an admin.
func AdminRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	return WithPrincipal(JSONRequest(t, method, target, body), primitive.NewObjectID(), "admin")
}

// PortalRequest builds a JSON request authenticated as the given
// portal user.
func PortalRequest(t *testing.T, method, target string, userID primitive.ObjectID, body any) *http.Request {
	t.Helper()
	return WithPrincipal(JSONRequest(t, method, target, body), userID, "portal")
}

// JSONRequest builds a request with the body JSON-encoded, or no body
// when body is nil.
func JSONRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	if body == nil {
		return httptest.NewRequest(method, target, nil)
	}
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to encode request body: %v", err)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// DecodeJSON decodes a response body into dst.
func DecodeJSON(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(dst); err != nil {
		t.Fatalf("failed to decode response body: %v (body: %s)", err, rec.Body.String())
	}
}
