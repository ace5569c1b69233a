// internal/app/features/homework/routes.go
package homework

import (
	"github.com/go-chi/chi/v5"
	"github.com/harmonykeys/lessonhub/internal/domain/models"
)

// Routes mounts the /homework routes. Typically:
// r.Mount("/homework", homework.Routes(handler))
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(h.Tokens.Require(models.RolePortal))
		pr.Get("/mine", h.ServeMine)
	})

	r.Group(func(mr chi.Router) {
		mr.Use(h.Tokens.Require(models.RoleAdmin, models.RolePortal))
		mr.Put("/{id}", h.HandleUpdate)
	})

	r.Group(func(ar chi.Router) {
		ar.Use(h.Tokens.Require(models.RoleAdmin))
		ar.Delete("/{id}", h.HandleDelete)
	})

	return r
}

// StudentRoutes builds the per-student homework routes, nested under
// the students router at /{studentID}/homework.
func StudentRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(ar chi.Router) {
		ar.Use(h.Tokens.Require(models.RoleAdmin))
		ar.Get("/", h.ServeForStudent)
		ar.Post("/", h.HandleCreate)
	})

	return r
}
