// internal/app/features/groups/routes.go
package groups

import (
	"github.com/go-chi/chi/v5"
	"github.com/harmonykeys/lessonhub/internal/domain/models"
)

// Routes mounts the group routes. Typically:
// r.Mount("/groups", groups.Routes(handler))
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(ar chi.Router) {
		ar.Use(h.Tokens.Require(models.RoleAdmin))
		ar.Get("/", h.ServeList)
		ar.Post("/", h.HandleCreate)
		ar.Put("/{id}", h.HandleReplace)
		ar.Post("/{id}/add-members", h.HandleAddMembers)
		ar.Post("/{id}/schedule", h.HandleSchedule)
		ar.Delete("/{id}", h.HandleDelete)
	})

	return r
}
