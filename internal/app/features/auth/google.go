// internal/app/features/auth/google.go
package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/harmonykeys/lessonhub/internal/app/system/httpjson"
	"github.com/harmonykeys/lessonhub/internal/app/system/timeouts"
	"github.com/harmonykeys/lessonhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const googleProvider = "google"

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

type googleUserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// ServeGoogleURL handles GET /auth/google/url: returns the consent
// screen URL the client should redirect to.
func (h *Handler) ServeGoogleURL(w http.ResponseWriter, r *http.Request) {
	if h.Google == nil {
		httpjson.Error(w, http.StatusNotImplemented, "Google sign-in is not configured")
		return
	}
	state, err := h.Tokens.SignState()
	if err != nil {
		httpjson.ServerError(w, h.Log, "google url: state signing failed", err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]string{
		"url": h.Google.AuthCodeURL(state),
	})
}

// HandleGoogleCallback handles GET /auth/google/callback: exchanges
// the code, resolves or links the portal user, and issues tokens.
// Sign-in never creates users; an unknown Google identity with no
// matching portal account is rejected.
func (h *Handler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.Google == nil {
		httpjson.Error(w, http.StatusNotImplemented, "Google sign-in is not configured")
		return
	}

	if err := h.Tokens.VerifyState(r.URL.Query().Get("state")); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid or expired state")
		return
	}
	code := r.URL.Query().Get("code")
	if code == "" {
		httpjson.Error(w, http.StatusBadRequest, "Missing code")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	tok, err := h.Google.Exchange(ctx, code)
	if err != nil {
		h.Log.Warn("google callback: code exchange failed", zap.Error(err))
		httpjson.Error(w, http.StatusUnauthorized, "Google sign-in failed")
		return
	}

	info, err := h.fetchGoogleUser(ctx, tok.AccessToken)
	if err != nil {
		httpjson.ServerError(w, h.Log, "google callback: userinfo fetch failed", err)
		return
	}
	if info.ID == "" || info.Email == "" {
		httpjson.Error(w, http.StatusUnauthorized, "Google sign-in failed")
		return
	}

	user, err := h.resolveGoogleUser(ctx, info)
	if err == mongo.ErrNoDocuments {
		httpjson.Error(w, http.StatusForbidden, "No account for this Google user")
		return
	}
	if err != nil {
		httpjson.ServerError(w, h.Log, "google callback: user resolve failed", err)
		return
	}
	if !user.Active {
		httpjson.Error(w, http.StatusForbidden, "Account is disabled")
		return
	}

	h.issueTokens(ctx, w, user)
}

func (h *Handler) fetchGoogleUser(ctx context.Context, accessToken string) (googleUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, googleUserInfoURL, nil)
	if err != nil {
		return googleUserInfo{}, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return googleUserInfo{}, err
	}
	defer resp.Body.Close()

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return googleUserInfo{}, err
	}
	return info, nil
}

// resolveGoogleUser finds the user behind a Google identity: first by
// an existing provider link, then by email match, which links the
// account for next time.
func (h *Handler) resolveGoogleUser(ctx context.Context, info googleUserInfo) (user models.User, err error) {
	if acct, aerr := h.Accounts.FindByProvider(ctx, googleProvider, info.ID); aerr == nil {
		return h.Users.GetByID(ctx, acct.UserID)
	} else if aerr != mongo.ErrNoDocuments {
		return user, aerr
	}

	user, err = h.Users.GetByEmail(ctx, info.Email)
	if err != nil {
		return user, err
	}
	if err := h.Accounts.Create(ctx, user.ID, googleProvider, info.ID); err != nil {
		return user, err
	}
	return user, nil
}
