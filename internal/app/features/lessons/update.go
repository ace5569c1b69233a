// internal/app/features/lessons/update.go
package lessons

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/harmonykeys/lessonhub/internal/app/scheduling"
	"github.com/harmonykeys/lessonhub/internal/app/system/htmlsanitize"
	"github.com/harmonykeys/lessonhub/internal/app/system/httpjson"
	"github.com/harmonykeys/lessonhub/internal/app/system/timeouts"
	"github.com/harmonykeys/lessonhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type updateLessonRequest struct {
	Start  *time.Time `json:"start"`
	End    *time.Time `json:"end"`
	Status *string    `json:"status" validate:"omitempty,oneof=Scheduled Cancelled Completed"`
	Notes  *string    `json:"notes"`
}

type updateLessonResponse struct {
	Lesson models.Lesson `json:"lesson"`
	Meta   updateMeta    `json:"meta"`
}

type updateMeta struct {
	UpdatedSiblings int  `json:"updatedSiblings"`
	LinkRepaired    bool `json:"linkRepaired"`
}

// HandleUpdate handles PUT /lessons/{id}. For group lessons the edit
// fans out to the rest of the occurrence through the scheduling
// engine after the edited record is saved.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid lesson id")
		return
	}

	var req updateLessonRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, err)
		return
	}
	if req.Start != nil && req.End != nil && !req.End.After(*req.Start) {
		httpjson.Error(w, http.StatusBadRequest, "Lesson end must be after start")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	before, err := h.Lessons.GetByID(ctx, id)
	if err == mongo.ErrNoDocuments {
		httpjson.NotFound(w)
		return
	}
	if err != nil {
		httpjson.ServerError(w, h.Log, "load lesson failed", err)
		return
	}

	update := scheduling.FieldUpdate{
		Start:  req.Start,
		End:    req.End,
		Status: req.Status,
	}
	if req.Notes != nil {
		clean := htmlsanitize.Sanitize(*req.Notes)
		update.Notes = &clean
	}
	if update.Empty() {
		httpjson.Error(w, http.StatusBadRequest, "No fields to update")
		return
	}

	set := update.Set()
	lesson, err := h.Lessons.UpdateFields(ctx, id, set)
	if err != nil {
		httpjson.ServerError(w, h.Log, "update lesson failed", err)
		return
	}

	var meta updateMeta
	if before.Type == models.LessonTypeGroup {
		prop, err := h.Engine.PropagateSharedFields(ctx, before, update)
		if err != nil {
			// The edited record is saved; siblings catch up on the
			// next backfill run.
			h.Log.Error("shared-field propagation failed",
				zap.String("lesson_id", id.Hex()), zap.Error(err))
		} else {
			meta.UpdatedSiblings = prop.Siblings
			meta.LinkRepaired = prop.LinkRepaired
			if prop.LinkRepaired && prop.GroupID != nil {
				lesson.GroupID = prop.GroupID
			}
		}
	}

	httpjson.Write(w, http.StatusOK, updateLessonResponse{Lesson: lesson, Meta: meta})
}

type generateMonthRequest struct {
	Year            int  `json:"year" validate:"required,min=2000,max=2200"`
	Month           int  `json:"month" validate:"required,min=1,max=12"`
	DurationMinutes int  `json:"durationMinutes" validate:"required,min=15,max=240"`
	IncludeFifth    bool `json:"includeFifth"`
}

// HandleGenerateMonth handles POST /lessons/generate-month.
func (h *Handler) HandleGenerateMonth(w http.ResponseWriter, r *http.Request) {
	var req generateMonthRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	created, err := h.Engine.GenerateMonth(ctx, scheduling.GenerateParams{
		Year:            req.Year,
		Month:           time.Month(req.Month),
		DurationMinutes: req.DurationMinutes,
		IncludeFifth:    req.IncludeFifth,
		Location:        h.Location,
	})
	if err != nil {
		httpjson.ServerError(w, h.Log, "generate month failed", err)
		return
	}

	httpjson.Write(w, http.StatusOK, map[string]int{"createdLessons": created})
}
