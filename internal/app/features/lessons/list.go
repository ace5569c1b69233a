// internal/app/features/lessons/list.go
package lessons

import (
	"context"
	"net/http"
	"time"

	"github.com/harmonykeys/lessonhub/internal/app/system/auth"
	"github.com/harmonykeys/lessonhub/internal/app/system/httpjson"
	"github.com/harmonykeys/lessonhub/internal/app/system/timeouts"
	"github.com/harmonykeys/lessonhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServeList handles GET /lessons?view=week|month&start=YYYY-MM-DD.
// Admins see everything (optionally narrowed by studentId); portal
// users only ever see their own students' lessons.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "No access token")
		return
	}

	view := r.URL.Query().Get("view")
	if view == "" {
		view = "week"
	}
	if view != "week" && view != "month" {
		httpjson.Error(w, http.StatusBadRequest, "view must be week or month")
		return
	}

	anchor := time.Now().In(h.Location)
	if raw := r.URL.Query().Get("start"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, h.Location)
		if err != nil {
			httpjson.Error(w, http.StatusBadRequest, "start must be YYYY-MM-DD")
			return
		}
		anchor = parsed
	}

	var from, to time.Time
	if view == "week" {
		from = time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, h.Location)
		to = from.AddDate(0, 0, 7)
	} else {
		from = time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, h.Location)
		to = from.AddDate(0, 1, 0)
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var studentIDs []primitive.ObjectID
	switch p.Role {
	case models.RolePortal:
		own, err := h.Students.ListByUser(ctx, p.UserID)
		if err != nil {
			httpjson.ServerError(w, h.Log, "list lessons: student scope failed", err)
			return
		}
		if len(own) == 0 {
			httpjson.Write(w, http.StatusOK, []models.Lesson{})
			return
		}
		for _, st := range own {
			studentIDs = append(studentIDs, st.ID)
		}
	default:
		if raw := r.URL.Query().Get("studentId"); raw != "" {
			id, err := primitive.ObjectIDFromHex(raw)
			if err != nil {
				httpjson.Error(w, http.StatusBadRequest, "Invalid student id")
				return
			}
			studentIDs = []primitive.ObjectID{id}
		}
	}

	out, err := h.Lessons.ListRange(ctx, from, to, studentIDs)
	if err != nil {
		httpjson.ServerError(w, h.Log, "list lessons failed", err)
		return
	}
	if out == nil {
		out = []models.Lesson{}
	}
	httpjson.Write(w, http.StatusOK, out)
}
