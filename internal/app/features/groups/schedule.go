// internal/app/features/groups/schedule.go
package groups

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
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type sessionRequest struct {
	Start time.Time `json:"start" validate:"required"`
	End   time.Time `json:"end" validate:"required"`
}

type scheduleRequest struct {
	Sessions []sessionRequest `json:"sessions" validate:"required,min=1,dive"`
	Notes    string           `json:"notes"`
}

type scheduleResponse struct {
	CreatedLessons int `json:"createdLessons"`
}

// HandleSchedule handles POST /groups/{id}/schedule: creates a lesson
// for every (member, session) pair. Pairs that already have an
// identical lesson are silently skipped, so resubmitting the same
// dates is harmless.
func (h *Handler) HandleSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid group id")
		return
	}

	var req scheduleRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, err)
		return
	}
	for _, s := range req.Sessions {
		if !s.End.After(s.Start) {
			httpjson.Error(w, http.StatusBadRequest, "Session end must be after start")
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	g, err := h.Groups.GetByID(ctx, id)
	if err == mongo.ErrNoDocuments {
		httpjson.NotFound(w)
		return
	}
	if err != nil {
		httpjson.ServerError(w, h.Log, "load group failed", err)
		return
	}
	if !g.Active {
		httpjson.Error(w, http.StatusConflict, "Group is inactive")
		return
	}
	if len(g.MemberIDs) == 0 {
		httpjson.Error(w, http.StatusConflict, "Group has no members")
		return
	}

	notes := htmlsanitize.Sanitize(req.Notes)
	gid := g.ID
	created := 0
	for _, member := range g.MemberIDs {
		sid := member
		for _, s := range req.Sessions {
			_, err := h.Lessons.Create(ctx, models.Lesson{
				StudentID: &sid,
				GroupID:   &gid,
				Type:      models.LessonTypeGroup,
				Start:     s.Start,
				End:       s.End,
				Notes:     notes,
			})
			if err == lessonstore.ErrDuplicateLesson {
				continue
			}
			if err != nil {
				h.Log.Warn("group schedule: lesson create failed",
					zap.String("group_id", gid.Hex()),
					zap.String("student_id", sid.Hex()),
					zap.Time("start", s.Start),
					zap.Error(err))
				continue
			}
			created++
		}
	}

	httpjson.Write(w, http.StatusOK, scheduleResponse{CreatedLessons: created})
}
