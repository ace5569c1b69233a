// internal/app/features/lessons/routes.go
package lessons

import (
	"github.com/go-chi/chi/v5"
	"github.com/harmonykeys/lessonhub/internal/domain/models"
)

// Routes mounts the lesson routes. Typically:
// r.Mount("/lessons", lessons.Routes(handler))
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(h.Tokens.Require(models.RoleAdmin, models.RolePortal))
		pr.Get("/", h.ServeList)
	})

	r.Group(func(ar chi.Router) {
		ar.Use(h.Tokens.Require(models.RoleAdmin))
		ar.Post("/", h.HandleCreate)
		ar.Put("/{id}", h.HandleUpdate)
		ar.Delete("/{id}", h.HandleDelete)
		ar.Post("/generate-month", h.HandleGenerateMonth)
	})

	return r
}
