// internal/app/features/students/list.go
package students

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/harmonykeys/lessonhub/internal/app/system/auth"
	"github.com/harmonykeys/lessonhub/internal/app/system/httpjson"
	"github.com/harmonykeys/lessonhub/internal/app/system/paging"
	"github.com/harmonykeys/lessonhub/internal/app/system/timeouts"
	"github.com/harmonykeys/lessonhub/internal/app/system/timezones"
	"github.com/harmonykeys/lessonhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type studentPage struct {
	Students   []models.Student `json:"students"`
	HasPrev    bool             `json:"hasPrev"`
	HasNext    bool             `json:"hasNext"`
	PrevCursor string           `json:"prevCursor,omitempty"`
	NextCursor string           `json:"nextCursor,omitempty"`
}

// ServeList handles GET /students?q=&before=&after= for admins, paged
// by keyset cursors over the name.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	q := strings.TrimSpace(r.URL.Query().Get("q"))
	before := r.URL.Query().Get("before")
	after := r.URL.Query().Get("after")

	filter := bson.M{}
	if q != "" {
		filter["name"] = bson.M{"$regex": q, "$options": "i"}
	}

	findOpts := options.Find()
	cfg := paging.ConfigureKeyset(before, after)
	cfg.ApplyToFind(findOpts, "name")
	if window := cfg.KeysetWindow("name"); window != nil {
		filter["$or"] = window["$or"]
	}

	out, err := h.Students.Find(ctx, filter, findOpts)
	if err != nil {
		httpjson.ServerError(w, h.Log, "list students failed", err)
		return
	}

	page := paging.TrimPage(&out, before, after)
	if before != "" {
		paging.Reverse(out)
	}
	if out == nil {
		out = []models.Student{}
	}

	prev, next := paging.BuildCursors(out,
		func(st models.Student) string { return st.Name },
		func(st models.Student) primitive.ObjectID { return st.ID },
	)

	httpjson.Write(w, http.StatusOK, studentPage{
		Students:   out,
		HasPrev:    page.HasPrev,
		HasNext:    page.HasNext,
		PrevCursor: prev,
		NextCursor: next,
	})
}

// ServeView handles GET /students/{studentID}.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "studentID"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid student id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	st, err := h.Students.GetByID(ctx, id)
	if err == mongo.ErrNoDocuments {
		httpjson.NotFound(w)
		return
	}
	if err != nil {
		httpjson.ServerError(w, h.Log, "get student failed", err)
		return
	}
	httpjson.Write(w, http.StatusOK, st)
}

// ServeTimezones handles GET /students/timezones: the curated zone
// list for the profile picker.
func (h *Handler) ServeTimezones(w http.ResponseWriter, r *http.Request) {
	zones, err := timezones.All()
	if err != nil {
		httpjson.ServerError(w, h.Log, "timezone list failed", err)
		return
	}
	httpjson.Write(w, http.StatusOK, zones)
}

// ServeMine handles GET /students/me/list for portal users.
func (h *Handler) ServeMine(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "No access token")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	out, err := h.Students.ListByUser(ctx, p.UserID)
	if err != nil {
		httpjson.ServerError(w, h.Log, "list own students failed", err)
		return
	}
	httpjson.Write(w, http.StatusOK, out)
}
