// internal/app/features/homework/homework.go
package homework

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/harmonykeys/lessonhub/internal/app/system/auth"
	"github.com/harmonykeys/lessonhub/internal/app/system/htmlsanitize"
	"github.com/harmonykeys/lessonhub/internal/app/system/httpjson"
	"github.com/harmonykeys/lessonhub/internal/app/system/timeouts"
	"github.com/harmonykeys/lessonhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ServeForStudent handles GET /students/{studentID}/homework.
func (h *Handler) ServeForStudent(w http.ResponseWriter, r *http.Request) {
	studentID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "studentID"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid student id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	out, err := h.Homework.ListByStudents(ctx, []primitive.ObjectID{studentID})
	if err != nil {
		httpjson.ServerError(w, h.Log, "list homework failed", err)
		return
	}
	if out == nil {
		out = []models.Homework{}
	}
	httpjson.Write(w, http.StatusOK, out)
}

type createHomeworkRequest struct {
	Text string `json:"text" validate:"required"`
}

// HandleCreate handles POST /students/{studentID}/homework.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	studentID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "studentID"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid student id")
		return
	}

	var req createHomeworkRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if _, err := h.Students.GetByID(ctx, studentID); err != nil {
		if err == mongo.ErrNoDocuments {
			httpjson.NotFound(w)
			return
		}
		httpjson.ServerError(w, h.Log, "create homework: student lookup failed", err)
		return
	}

	hw, err := h.Homework.Create(ctx, studentID, htmlsanitize.Sanitize(req.Text))
	if err != nil {
		httpjson.ServerError(w, h.Log, "create homework failed", err)
		return
	}
	httpjson.Write(w, http.StatusCreated, hw)
}

type updateHomeworkRequest struct {
	Text   *string `json:"text"`
	Status *string `json:"status" validate:"omitempty,oneof=Assigned Completed"`
}

// HandleUpdate handles PUT /homework/{id}. Admins may edit anything;
// a portal user may only mark their own student's homework Completed.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "No access token")
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid homework id")
		return
	}

	var req updateHomeworkRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	hw, err := h.Homework.GetByID(ctx, id)
	if err == mongo.ErrNoDocuments {
		httpjson.NotFound(w)
		return
	}
	if err != nil {
		httpjson.ServerError(w, h.Log, "load homework failed", err)
		return
	}

	set := bson.M{}
	if p.Role == models.RolePortal {
		student, err := h.Students.GetByID(ctx, hw.StudentID)
		if err != nil || student.UserID != p.UserID {
			httpjson.Error(w, http.StatusForbidden, "Forbidden")
			return
		}
		if req.Text != nil || req.Status == nil || *req.Status != models.HomeworkCompleted {
			httpjson.Error(w, http.StatusForbidden, "Portal users may only mark homework completed")
			return
		}
		set["status"] = models.HomeworkCompleted
	} else {
		if req.Text != nil {
			set["text"] = htmlsanitize.Sanitize(*req.Text)
		}
		if req.Status != nil {
			set["status"] = *req.Status
		}
		if len(set) == 0 {
			httpjson.Error(w, http.StatusBadRequest, "No fields to update")
			return
		}
	}

	updated, err := h.Homework.Update(ctx, id, set)
	if err != nil {
		httpjson.ServerError(w, h.Log, "update homework failed", err)
		return
	}
	httpjson.Write(w, http.StatusOK, updated)
}

// HandleDelete handles DELETE /homework/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid homework id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.Homework.Delete(ctx, id)
	if err != nil {
		httpjson.ServerError(w, h.Log, "delete homework failed", err)
		return
	}
	if n == 0 {
		httpjson.NotFound(w)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]bool{"ok": true})
}

// ServeMine handles GET /homework/mine for portal users: homework for
// all of their students, newest first.
func (h *Handler) ServeMine(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "No access token")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	own, err := h.Students.ListByUser(ctx, p.UserID)
	if err != nil {
		httpjson.ServerError(w, h.Log, "homework mine: student scope failed", err)
		return
	}
	ids := make([]primitive.ObjectID, 0, len(own))
	for _, st := range own {
		ids = append(ids, st.ID)
	}

	out, err := h.Homework.ListByStudents(ctx, ids)
	if err != nil {
		httpjson.ServerError(w, h.Log, "homework mine failed", err)
		return
	}
	if out == nil {
		out = []models.Homework{}
	}
	httpjson.Write(w, http.StatusOK, out)
}
