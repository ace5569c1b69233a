// internal/app/features/notifications/routes.go
package notifications

import (
	"github.com/go-chi/chi/v5"
	"github.com/harmonykeys/lessonhub/internal/domain/models"
)

// Routes mounts the notification routes. Typically:
// r.Mount("/notifications", notifications.Routes(handler))
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(ur chi.Router) {
		ur.Use(h.Tokens.Require(models.RoleAdmin, models.RolePortal))
		ur.Get("/vapid-public-key", h.ServeVAPIDPublicKey)
		ur.Post("/subscribe", h.HandleSubscribe)
		ur.Post("/unsubscribe", h.HandleUnsubscribe)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(h.Tokens.Require(models.RolePortal))
		pr.Get("/preferences", h.ServePreferences)
		pr.Put("/preferences", h.HandlePreferences)
	})

	r.Group(func(ar chi.Router) {
		ar.Use(h.Tokens.Require(models.RoleAdmin))
		ar.Get("/settings", h.ServeSettings)
		ar.Put("/settings", h.HandleSettings)
	})

	return r
}
