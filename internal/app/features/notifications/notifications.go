// internal/app/features/notifications/notifications.go
package notifications

import (
	"context"
	"net/http"

	"github.com/harmonykeys/lessonhub/internal/app/system/auth"
	"github.com/harmonykeys/lessonhub/internal/app/system/httpjson"
	"github.com/harmonykeys/lessonhub/internal/app/system/timeouts"
	"github.com/harmonykeys/lessonhub/internal/domain/models"
)

// ServeVAPIDPublicKey handles GET /notifications/vapid-public-key.
func (h *Handler) ServeVAPIDPublicKey(w http.ResponseWriter, r *http.Request) {
	if h.VAPIDPublicKey == "" {
		httpjson.Error(w, http.StatusNotImplemented, "Push notifications are not configured")
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]string{"publicKey": h.VAPIDPublicKey})
}

type subscribeRequest struct {
	Endpoint string `json:"endpoint" validate:"required,url"`
	Keys     struct {
		P256dh string `json:"p256dh" validate:"required"`
		Auth   string `json:"auth" validate:"required"`
	} `json:"keys"`
	Platform string `json:"platform"`
}

// HandleSubscribe handles POST /notifications/subscribe. Re-posting an
// existing endpoint refreshes it and rebinds it to the caller.
func (h *Handler) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "No access token")
		return
	}

	var req subscribeRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err := h.Subs.Upsert(ctx, models.PushSubscription{
		UserID:    p.UserID,
		Endpoint:  req.Endpoint,
		Keys:      models.SubscriptionKeys{P256dh: req.Keys.P256dh, Auth: req.Keys.Auth},
		Platform:  req.Platform,
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		httpjson.ServerError(w, h.Log, "subscribe failed", err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]bool{"ok": true})
}

type unsubscribeRequest struct {
	Endpoint string `json:"endpoint" validate:"required,url"`
}

// HandleUnsubscribe handles POST /notifications/unsubscribe.
func (h *Handler) HandleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "No access token")
		return
	}

	var req unsubscribeRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Subs.DeleteEndpoint(ctx, p.UserID, req.Endpoint); err != nil {
		httpjson.ServerError(w, h.Log, "unsubscribe failed", err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]bool{"ok": true})
}

type preferencesResponse struct {
	LessonReminders bool `json:"lessonReminders"`
}

// ServePreferences handles GET /notifications/preferences.
func (h *Handler) ServePreferences(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "No access token")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := h.Users.GetByID(ctx, p.UserID)
	if err != nil {
		httpjson.ServerError(w, h.Log, "load preferences failed", err)
		return
	}
	httpjson.Write(w, http.StatusOK, preferencesResponse{
		LessonReminders: user.WantsLessonReminders(),
	})
}

type preferencesRequest struct {
	LessonReminders *bool `json:"lessonReminders" validate:"required"`
}

// HandlePreferences handles PUT /notifications/preferences.
func (h *Handler) HandlePreferences(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "No access token")
		return
	}

	var req preferencesRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Users.SetLessonReminders(ctx, p.UserID, *req.LessonReminders); err != nil {
		httpjson.ServerError(w, h.Log, "save preferences failed", err)
		return
	}
	httpjson.Write(w, http.StatusOK, preferencesResponse{LessonReminders: *req.LessonReminders})
}

// ServeSettings handles GET /notifications/settings.
func (h *Handler) ServeSettings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	settings, err := h.Settings.Get(ctx)
	if err != nil {
		httpjson.ServerError(w, h.Log, "load settings failed", err)
		return
	}
	httpjson.Write(w, http.StatusOK, settings)
}

type settingsRequest struct {
	Enabled     bool `json:"enabled"`
	LeadMinutes int  `json:"leadMinutes" validate:"min=5,max=10080"`
	QuietHours  struct {
		Start int `json:"start" validate:"min=0,max=23"`
		End   int `json:"end" validate:"min=0,max=23"`
	} `json:"quietHours"`
}

// HandleSettings handles PUT /notifications/settings.
func (h *Handler) HandleSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	saved, err := h.Settings.Save(ctx, models.NotificationSettings{
		Enabled:     req.Enabled,
		LeadMinutes: req.LeadMinutes,
		QuietHours: models.QuietHours{
			Start: req.QuietHours.Start,
			End:   req.QuietHours.End,
		},
	})
	if err != nil {
		httpjson.ServerError(w, h.Log, "save settings failed", err)
		return
	}
	httpjson.Write(w, http.StatusOK, saved)
}
