// internal/app/features/lessons/create.go
package lessons

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	lessonstore "github.com/harmonykeys/lessonhub/internal/app/store/lessons"
	"github.com/harmonykeys/lessonhub/internal/app/system/htmlsanitize"
	"github.com/harmonykeys/lessonhub/internal/app/system/httpjson"
	"github.com/harmonykeys/lessonhub/internal/app/system/timeouts"
	"github.com/harmonykeys/lessonhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type createLessonRequest struct {
	Type      string    `json:"type" validate:"required,oneof=one group demo"`
	StudentID string    `json:"studentId"`
	GroupID   string    `json:"groupId"`
	DemoName  string    `json:"demoName"`
	Start     time.Time `json:"start" validate:"required"`
	End       time.Time `json:"end" validate:"required"`
	Notes     string    `json:"notes"`
}

// HandleCreate handles POST /lessons. Demo lessons carry a prospect
// name instead of a student; all other types require a student.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createLessonRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, err)
		return
	}
	if !req.End.After(req.Start) {
		httpjson.Error(w, http.StatusBadRequest, "Lesson end must be after start")
		return
	}

	lesson := models.Lesson{
		Type:  req.Type,
		Start: req.Start,
		End:   req.End,
		Notes: htmlsanitize.Sanitize(req.Notes),
	}

	if req.Type == models.LessonTypeDemo {
		if req.DemoName == "" {
			httpjson.Error(w, http.StatusBadRequest, "Demo lessons require demoName")
			return
		}
		lesson.DemoName = htmlsanitize.Sanitize(req.DemoName)
	} else {
		sid, err := primitive.ObjectIDFromHex(req.StudentID)
		if err != nil {
			httpjson.Error(w, http.StatusBadRequest, "Lessons require a valid studentId")
			return
		}
		lesson.StudentID = &sid
	}
	if req.Type == models.LessonTypeGroup && req.GroupID != "" {
		gid, err := primitive.ObjectIDFromHex(req.GroupID)
		if err != nil {
			httpjson.Error(w, http.StatusBadRequest, "Invalid groupId")
			return
		}
		lesson.GroupID = &gid
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Lessons.Create(ctx, lesson)
	if err == lessonstore.ErrDuplicateLesson {
		httpjson.Error(w, http.StatusConflict, "An identical lesson already exists")
		return
	}
	if err != nil {
		httpjson.ServerError(w, h.Log, "create lesson failed", err)
		return
	}
	httpjson.Write(w, http.StatusCreated, created)
}

// HandleDelete handles DELETE /lessons/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid lesson id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.Lessons.Delete(ctx, id)
	if err != nil {
		httpjson.ServerError(w, h.Log, "delete lesson failed", err)
		return
	}
	if n == 0 {
		httpjson.NotFound(w)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]bool{"ok": true})
}
