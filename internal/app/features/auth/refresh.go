// internal/app/features/auth/refresh.go
package auth

import (
	"context"
	"net/http"

	refreshtokenstore "github.com/harmonykeys/lessonhub/internal/app/store/refreshtokens"
	"github.com/harmonykeys/lessonhub/internal/app/system/httpjson"
	"github.com/harmonykeys/lessonhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
)

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// HandleRefresh handles POST /auth/refresh. The presented token is
// rotated: revoked and replaced by a fresh one alongside the new
// access token.
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	rt, err := h.Refresh.Redeem(ctx, req.RefreshToken)
	if err == mongo.ErrNoDocuments || err == refreshtokenstore.ErrTokenRevoked {
		httpjson.Error(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}
	if err != nil {
		httpjson.ServerError(w, h.Log, "refresh: redeem failed", err)
		return
	}

	user, err := h.Users.GetByID(ctx, rt.UserID)
	if err != nil || !user.Active {
		httpjson.Error(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	if err := h.Refresh.Revoke(ctx, rt.Token); err != nil {
		httpjson.ServerError(w, h.Log, "refresh: revoke failed", err)
		return
	}

	h.issueTokens(ctx, w, user)
}
