// internal/app/features/auth/me.go
package auth

import (
	"context"
	"net/http"

	"github.com/harmonykeys/lessonhub/internal/app/system/auth"
	"github.com/harmonykeys/lessonhub/internal/app/system/httpjson"
	"github.com/harmonykeys/lessonhub/internal/app/system/timeouts"
	"golang.org/x/crypto/bcrypt"
)

type meResponse struct {
	ID                 string `json:"id"`
	Email              string `json:"email"`
	Role               string `json:"role"`
	Name               string `json:"name,omitempty"`
	MustChangePassword bool   `json:"mustChangePassword"`
}

// ServeMe handles GET /auth/me.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "No access token")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := h.Users.GetByID(ctx, p.UserID)
	if err != nil {
		httpjson.ServerError(w, h.Log, "me: user lookup failed", err)
		return
	}

	resp := meResponse{
		ID:                 user.ID.Hex(),
		Email:              user.Email,
		Role:               user.Role,
		MustChangePassword: user.MustChangePassword,
	}
	if user.Profile != nil {
		resp.Name = user.Profile.Name
	}
	httpjson.Write(w, http.StatusOK, resp)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}

// HandleChangePassword handles POST /auth/change-password.
func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "No access token")
		return
	}

	var req changePasswordRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := h.Users.GetByID(ctx, p.UserID)
	if err != nil {
		httpjson.ServerError(w, h.Log, "change password: user lookup failed", err)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)) != nil {
		httpjson.Error(w, http.StatusUnauthorized, "Current password is incorrect")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		httpjson.ServerError(w, h.Log, "change password: hash failed", err)
		return
	}
	if err := h.Users.SetPassword(ctx, user.ID, string(hash)); err != nil {
		httpjson.ServerError(w, h.Log, "change password: save failed", err)
		return
	}

	httpjson.Write(w, http.StatusOK, map[string]bool{"ok": true})
}
