// internal/app/features/auth/login.go
package auth

import (
	"context"
	"net/http"

	"github.com/harmonykeys/lessonhub/internal/app/system/httpjson"
	"github.com/harmonykeys/lessonhub/internal/app/system/normalize"
	"github.com/harmonykeys/lessonhub/internal/app/system/timeouts"
	"github.com/harmonykeys/lessonhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	AccessToken        string `json:"accessToken"`
	RefreshToken       string `json:"refreshToken"`
	Role               string `json:"role"`
	MustChangePassword bool   `json:"mustChangePassword"`
}

// HandleLogin handles POST /auth/login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, err)
		return
	}

	email := normalize.Email(req.Email)
	if ok, reason := h.Limiter.Check(r, email); !ok {
		httpjson.Error(w, http.StatusTooManyRequests, reason)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := h.Users.GetByEmail(ctx, email)
	if err == mongo.ErrNoDocuments {
		httpjson.Error(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		httpjson.ServerError(w, h.Log, "login: user lookup failed", err)
		return
	}
	if !user.Active {
		httpjson.Error(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		httpjson.Error(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	h.Limiter.ResetEmail(email)
	h.issueTokens(ctx, w, user)
}

// issueTokens mints an access/refresh pair for an authenticated user.
func (h *Handler) issueTokens(ctx context.Context, w http.ResponseWriter, user models.User) {
	access, err := h.Tokens.SignAccess(user.ID, user.Role)
	if err != nil {
		httpjson.ServerError(w, h.Log, "login: token signing failed", err)
		return
	}
	refresh, err := h.Refresh.Issue(ctx, user.ID)
	if err != nil {
		httpjson.ServerError(w, h.Log, "login: refresh token issue failed", err)
		return
	}

	httpjson.Write(w, http.StatusOK, tokenResponse{
		AccessToken:        access,
		RefreshToken:       refresh.Token,
		Role:               user.Role,
		MustChangePassword: user.MustChangePassword,
	})
}
