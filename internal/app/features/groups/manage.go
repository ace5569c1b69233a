// internal/app/features/groups/manage.go
package groups

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/harmonykeys/lessonhub/internal/app/scheduling"
	"github.com/harmonykeys/lessonhub/internal/app/system/httpjson"
	"github.com/harmonykeys/lessonhub/internal/app/system/timeouts"
	"github.com/harmonykeys/lessonhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type groupRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	MemberIDs   []string `json:"memberIds" validate:"dive,len=24"`
}

// membershipMeta reports what a membership change did beyond the group
// document itself.
type membershipMeta struct {
	CreatedLessons int `json:"createdLessons"`
	RemovedLessons int `json:"removedLessons"`
	AddedMembers   int `json:"addedMembers"`
	RemovedMembers int `json:"removedMembers"`
}

type groupWithMeta struct {
	Group models.Group   `json:"group"`
	Meta  membershipMeta `json:"meta"`
}

// ServeList handles GET /groups: active groups sorted by name.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	out, err := h.Groups.ListActive(ctx)
	if err != nil {
		httpjson.ServerError(w, h.Log, "list groups failed", err)
		return
	}
	httpjson.Write(w, http.StatusOK, out)
}

// HandleCreate handles POST /groups.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, err)
		return
	}
	members, err := parseObjectIDs(req.MemberIDs)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid member id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	g, err := h.Groups.Create(ctx, models.Group{
		Name:        req.Name,
		Description: req.Description,
		MemberIDs:   members,
	})
	if err != nil {
		httpjson.ServerError(w, h.Log, "create group failed", err)
		return
	}
	httpjson.Write(w, http.StatusCreated, g)
}

// HandleReplace handles PUT /groups/{id}: replaces name, description
// and the member list, then reconciles the members' upcoming lessons.
func (h *Handler) HandleReplace(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid group id")
		return
	}

	var req groupRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, err)
		return
	}
	members, err := parseObjectIDs(req.MemberIDs)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid member id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	before, err := h.Groups.GetByID(ctx, id)
	if err == mongo.ErrNoDocuments {
		httpjson.NotFound(w)
		return
	}
	if err != nil {
		httpjson.ServerError(w, h.Log, "load group failed", err)
		return
	}

	g, err := h.Groups.Replace(ctx, id, req.Name, req.Description, members)
	if err != nil {
		httpjson.ServerError(w, h.Log, "replace group failed", err)
		return
	}

	added, removed := scheduling.MemberDiff(before.MemberIDs, g.MemberIDs)
	sync, err := h.Engine.SyncMembership(ctx, g, added, removed, time.Now().UTC())
	if err != nil {
		// Membership is already saved; the backfill job will finish
		// the lesson reconciliation.
		h.Log.Error("membership sync failed after group replace",
			zap.String("group_id", g.ID.Hex()), zap.Error(err))
	}

	httpjson.Write(w, http.StatusOK, groupWithMeta{
		Group: g,
		Meta: membershipMeta{
			CreatedLessons: sync.Created,
			RemovedLessons: sync.Removed,
			AddedMembers:   len(added),
			RemovedMembers: len(removed),
		},
	})
}

type addMembersRequest struct {
	MemberIDs []string `json:"memberIds" validate:"required,min=1,dive,len=24"`
}

// HandleAddMembers handles POST /groups/{id}/add-members: set-adds the
// students and clones upcoming lessons for the genuinely new ones.
func (h *Handler) HandleAddMembers(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid group id")
		return
	}

	var req addMembersRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, err)
		return
	}
	members, err := parseObjectIDs(req.MemberIDs)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid member id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	before, err := h.Groups.GetByID(ctx, id)
	if err == mongo.ErrNoDocuments {
		httpjson.NotFound(w)
		return
	}
	if err != nil {
		httpjson.ServerError(w, h.Log, "load group failed", err)
		return
	}

	g, err := h.Groups.AddMembers(ctx, id, members)
	if err != nil {
		httpjson.ServerError(w, h.Log, "add members failed", err)
		return
	}

	added, _ := scheduling.MemberDiff(before.MemberIDs, g.MemberIDs)
	sync, err := h.Engine.SyncMembership(ctx, g, added, nil, time.Now().UTC())
	if err != nil {
		h.Log.Error("membership sync failed after add-members",
			zap.String("group_id", g.ID.Hex()), zap.Error(err))
	}

	httpjson.Write(w, http.StatusOK, groupWithMeta{
		Group: g,
		Meta: membershipMeta{
			CreatedLessons: sync.Created,
			AddedMembers:   len(added),
		},
	})
}

// HandleDelete handles DELETE /groups/{id}: soft-deletes the group and
// removes the members' future Scheduled lessons. History is kept.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid group id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	g, err := h.Groups.Deactivate(ctx, id)
	if err == mongo.ErrNoDocuments {
		httpjson.NotFound(w)
		return
	}
	if err != nil {
		httpjson.ServerError(w, h.Log, "deactivate group failed", err)
		return
	}

	sync, err := h.Engine.SyncMembership(ctx, g, nil, g.MemberIDs, time.Now().UTC())
	if err != nil {
		h.Log.Error("membership sync failed after group delete",
			zap.String("group_id", g.ID.Hex()), zap.Error(err))
	}

	httpjson.Write(w, http.StatusOK, groupWithMeta{
		Group: g,
		Meta: membershipMeta{
			RemovedLessons: sync.Removed,
			RemovedMembers: len(g.MemberIDs),
		},
	})
}

func parseObjectIDs(hexes []string) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, 0, len(hexes))
	for _, hx := range hexes {
		id, err := primitive.ObjectIDFromHex(hx)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
