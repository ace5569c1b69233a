// internal/app/features/students/routes.go
package students

import (
	"github.com/go-chi/chi/v5"
	"github.com/harmonykeys/lessonhub/internal/domain/models"
)

// Routes mounts the student routes. homeworkRoutes is the per-student
// homework subrouter, nested here so it shares the /students/{studentID}
// prefix. Typically: r.Mount("/students", students.Routes(handler, hw))
func Routes(h *Handler, homeworkRoutes chi.Router) chi.Router {
	r := chi.NewRouter()

	r.Group(func(ur chi.Router) {
		ur.Use(h.Tokens.Require(models.RoleAdmin, models.RolePortal))
		ur.Get("/timezones", h.ServeTimezones)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(h.Tokens.Require(models.RolePortal))
		pr.Get("/me/list", h.ServeMine)
	})

	r.Group(func(ar chi.Router) {
		ar.Use(h.Tokens.Require(models.RoleAdmin))
		ar.Get("/", h.ServeList)
		ar.Post("/", h.HandleCreate)
		ar.Get("/{studentID}", h.ServeView)
		ar.Put("/{studentID}", h.HandleUpdate)
	})

	if homeworkRoutes != nil {
		r.Mount("/{studentID}/homework", homeworkRoutes)
	}

	return r
}
