// internal/app/features/auth/routes.go
package auth

import (
	"github.com/go-chi/chi/v5"
)

// Routes mounts the auth endpoints. Typically:
// r.Mount("/auth", auth.Routes(handler))
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/login", h.HandleLogin)
	r.Post("/refresh", h.HandleRefresh)
	r.Get("/google/url", h.ServeGoogleURL)
	r.Get("/google/callback", h.HandleGoogleCallback)

	r.Group(func(pr chi.Router) {
		pr.Use(h.Tokens.Require())
		pr.Get("/me", h.ServeMe)
		pr.Post("/change-password", h.HandleChangePassword)
	})

	return r
}
