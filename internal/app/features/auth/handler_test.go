package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	authfeature "github.com/harmonykeys/lessonhub/internal/app/features/auth"
	"github.com/harmonykeys/lessonhub/internal/app/system/auth"
	"github.com/harmonykeys/lessonhub/internal/domain/models"
	"github.com/harmonykeys/lessonhub/internal/testutil"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newHandler(t *testing.T) *authfeature.Handler {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return authfeature.NewHandler(db, auth.NewTokens("test-secret", 15*time.Minute), nil, zap.NewNop())
}

func createLoginUser(t *testing.T, h *authfeature.Handler, ctx context.Context, email, password, role string) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user, err := h.Users.Create(ctx, models.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Active:       true,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

type tokenReply struct {
	AccessToken        string `json:"accessToken"`
	RefreshToken       string `json:"refreshToken"`
	Role               string `json:"role"`
	MustChangePassword bool   `json:"mustChangePassword"`
}

func TestHandleLoginIssuesTokenPair(t *testing.T) {
	h := newHandler(t)
	ctx := testutil.TestContext(t)
	createLoginUser(t, h, ctx, "teacher@example.com", "opensesame", models.RoleAdmin)

	req := testutil.JSONRequest(t, http.MethodPost, "/auth/login",
		map[string]string{"email": "Teacher@Example.com", "password": "opensesame"})
	rec := httptest.NewRecorder()
	h.HandleLogin(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var reply tokenReply
	testutil.DecodeJSON(t, rec, &reply)
	if reply.AccessToken == "" || reply.RefreshToken == "" {
		t.Errorf("expected both tokens in response, got %+v", reply)
	}
	if reply.Role != models.RoleAdmin {
		t.Errorf("expected role %q, got %q", models.RoleAdmin, reply.Role)
	}
}

func TestHandleLoginWrongPassword(t *testing.T) {
	h := newHandler(t)
	ctx := testutil.TestContext(t)
	createLoginUser(t, h, ctx, "teacher@example.com", "opensesame", models.RoleAdmin)

	req := testutil.JSONRequest(t, http.MethodPost, "/auth/login",
		map[string]string{"email": "teacher@example.com", "password": "wrong"})
	rec := httptest.NewRecorder()
	h.HandleLogin(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestHandleLoginInactiveUser(t *testing.T) {
	h := newHandler(t)
	ctx := testutil.TestContext(t)
	user := createLoginUser(t, h, ctx, "gone@example.com", "opensesame", models.RolePortal)
	if _, err := h.DB.Collection("users").UpdateByID(ctx, user.ID,
		map[string]any{"$set": map[string]any{"active": false}}); err != nil {
		t.Fatalf("deactivate user: %v", err)
	}

	req := testutil.JSONRequest(t, http.MethodPost, "/auth/login",
		map[string]string{"email": "gone@example.com", "password": "opensesame"})
	rec := httptest.NewRecorder()
	h.HandleLogin(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestHandleRefreshRotatesToken(t *testing.T) {
	h := newHandler(t)
	ctx := testutil.TestContext(t)
	user := createLoginUser(t, h, ctx, "teacher@example.com", "opensesame", models.RoleAdmin)

	rt, err := h.Refresh.Issue(ctx, user.ID)
	if err != nil {
		t.Fatalf("issue refresh token: %v", err)
	}

	req := testutil.JSONRequest(t, http.MethodPost, "/auth/refresh",
		map[string]string{"refreshToken": rt.Token})
	rec := httptest.NewRecorder()
	h.HandleRefresh(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var reply tokenReply
	testutil.DecodeJSON(t, rec, &reply)
	if reply.RefreshToken == "" || reply.RefreshToken == rt.Token {
		t.Errorf("expected a fresh refresh token, got %q", reply.RefreshToken)
	}

	// The presented token is revoked during rotation.
	req = testutil.JSONRequest(t, http.MethodPost, "/auth/refresh",
		map[string]string{"refreshToken": rt.Token})
	rec = httptest.NewRecorder()
	h.HandleRefresh(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 reusing rotated token, got %d", rec.Code)
	}
}

func TestHandleRefreshUnknownToken(t *testing.T) {
	h := newHandler(t)

	req := testutil.JSONRequest(t, http.MethodPost, "/auth/refresh",
		map[string]string{"refreshToken": "no-such-token"})
	rec := httptest.NewRecorder()
	h.HandleRefresh(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestHandleChangePassword(t *testing.T) {
	h := newHandler(t)
	ctx := testutil.TestContext(t)
	user := createLoginUser(t, h, ctx, "teacher@example.com", "opensesame", models.RoleAdmin)

	req := testutil.WithPrincipal(testutil.JSONRequest(t, http.MethodPost, "/auth/change-password",
		map[string]string{"currentPassword": "wrong", "newPassword": "brand-new-pass"}), user.ID, user.Role)
	rec := httptest.NewRecorder()
	h.HandleChangePassword(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong current password, got %d", rec.Code)
	}

	req = testutil.WithPrincipal(testutil.JSONRequest(t, http.MethodPost, "/auth/change-password",
		map[string]string{"currentPassword": "opensesame", "newPassword": "brand-new-pass"}), user.ID, user.Role)
	rec = httptest.NewRecorder()
	h.HandleChangePassword(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	saved, err := h.Users.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(saved.PasswordHash), []byte("brand-new-pass")) != nil {
		t.Error("expected stored hash to match the new password")
	}
}

func TestServeMe(t *testing.T) {
	h := newHandler(t)
	ctx := testutil.TestContext(t)
	user := createLoginUser(t, h, ctx, "teacher@example.com", "opensesame", models.RoleAdmin)

	req := testutil.WithPrincipal(testutil.JSONRequest(t, http.MethodGet, "/auth/me", nil), user.ID, user.Role)
	rec := httptest.NewRecorder()
	h.ServeMe(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var me struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	testutil.DecodeJSON(t, rec, &me)
	if me.Email != "teacher@example.com" || me.Role != models.RoleAdmin {
		t.Errorf("unexpected identity: %+v", me)
	}
}
