// internal/app/scheduling/sync.go
package scheduling

import (
	"context"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/harmonykeys/lessonhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// SyncResult reports what a membership sync did to the lesson set.
type SyncResult struct {
	Created int `json:"createdLessons"`
	Removed int `json:"removedLessons"`
}

// occurrenceTemplate is one distinct upcoming session to clone for a
// newly added member.
type occurrenceTemplate struct {
	Start time.Time
	End   time.Time
	Notes string
}

// SyncMembership reconciles lesson instances after a group's member
// list changed. Added members get a clone of every distinct upcoming
// Scheduled occurrence; removed members lose their upcoming Scheduled
// lessons (history and non-Scheduled lessons are never touched).
//
// The membership change itself has already been persisted by the
// caller and is never rolled back here: membership is the source of
// truth, and lesson sync that fails part-way is repaired by the
// backfill job. Per-item failures are logged and skipped.
func (e *Engine) SyncMembership(ctx context.Context, group models.Group, added, removed []primitive.ObjectID, now time.Time) (SyncResult, error) {
	var res SyncResult

	if len(added) > 0 {
		created, err := e.cloneUpcomingForMembers(ctx, group, added, now)
		if err != nil {
			return res, err
		}
		res.Created = created
	}

	if len(removed) > 0 {
		deleted, err := e.removeUpcomingForMembers(ctx, group, removed, now)
		if err != nil {
			return res, err
		}
		res.Removed = deleted
	}

	return res, nil
}

func (e *Engine) cloneUpcomingForMembers(ctx context.Context, group models.Group, added []primitive.ObjectID, now time.Time) (int, error) {
	resolved, err := e.Resolve(ctx, RefOf(group), ResolveOptions{
		Match: bson.M{
			"start":  bson.M{"$gte": now},
			"status": models.StatusScheduled,
		},
	})
	if err != nil {
		return 0, err
	}

	// Distinct occurrence templates across the member snapshot.
	seen := make(map[occurrenceKey]struct{})
	var templates []occurrenceTemplate
	for _, l := range resolved.Lessons {
		k := keyOf(l.Start, l.End)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		templates = append(templates, occurrenceTemplate{Start: l.Start, End: l.End, Notes: l.Notes})
	}

	created := 0
	gid := group.ID
	for _, studentID := range added {
		sid := studentID
		for _, tpl := range templates {
			exists, err := e.lessonExists(ctx, sid, gid, tpl.Start, tpl.End, models.StatusScheduled)
			if err != nil {
				e.log.Warn("membership sync: existence check failed",
					zap.String("student_id", sid.Hex()), zap.Error(err))
				continue
			}
			if exists {
				continue
			}

			lesson := models.Lesson{
				ID:        primitive.NewObjectID(),
				StudentID: &sid,
				GroupID:   &gid,
				Type:      models.LessonTypeGroup,
				Start:     tpl.Start,
				End:       tpl.End,
				Status:    models.StatusScheduled,
				Notes:     tpl.Notes,
				CreatedAt: now.UTC(),
				UpdatedAt: now.UTC(),
			}
			if _, err := e.lessons.InsertOne(ctx, lesson); err != nil {
				if wafflemongo.IsDup(err) {
					// Lost a race with an identical insert; the
					// occurrence is already covered.
					continue
				}
				e.log.Warn("membership sync: lesson create failed",
					zap.String("student_id", sid.Hex()),
					zap.Time("start", tpl.Start),
					zap.Error(err))
				continue
			}
			created++
		}
	}
	return created, nil
}

func (e *Engine) removeUpcomingForMembers(ctx context.Context, group models.Group, removed []primitive.ObjectID, now time.Time) (int, error) {
	// The members were already dropped from the group document, so the
	// ref carries the removed ids for the unlinked-lesson inference.
	resolved, err := e.Resolve(ctx, GroupRef{ID: group.ID, MemberIDs: removed}, ResolveOptions{
		Match: bson.M{
			"start":  bson.M{"$gte": now},
			"status": models.StatusScheduled,
		},
		LimitToMembers: removed,
	})
	if err != nil {
		return 0, err
	}
	if len(resolved.Lessons) == 0 {
		return 0, nil
	}

	ids := make([]primitive.ObjectID, 0, len(resolved.Lessons))
	for _, l := range resolved.Lessons {
		ids = append(ids, l.ID)
	}
	del, err := e.lessons.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, err
	}
	return int(del.DeletedCount), nil
}

// lessonExists checks for an equivalent lesson: same student, type and
// window, Scheduled, and either linked to this group or unlinked. This
// is what keeps repeated or partially-retried syncs from duplicating
// occurrences.
func (e *Engine) lessonExists(ctx context.Context, studentID, groupID primitive.ObjectID, start, end time.Time, status string) (bool, error) {
	filter := bson.M{
		"student_id": studentID,
		"type":       models.LessonTypeGroup,
		"start":      start,
		"end":        end,
		"$or": []bson.M{
			{"group_id": groupID},
			{"group_id": bson.M{"$exists": false}},
		},
	}
	if status != "" {
		filter["status"] = status
	}
	err := e.lessons.FindOne(ctx, filter).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MemberDiff computes which students were added to and removed from a
// member list.
func MemberDiff(before, after []primitive.ObjectID) (added, removed []primitive.ObjectID) {
	was := make(map[primitive.ObjectID]struct{}, len(before))
	for _, id := range before {
		was[id] = struct{}{}
	}
	is := make(map[primitive.ObjectID]struct{}, len(after))
	for _, id := range after {
		is[id] = struct{}{}
		if _, ok := was[id]; !ok {
			added = append(added, id)
		}
	}
	for _, id := range before {
		if _, ok := is[id]; !ok {
			removed = append(removed, id)
		}
	}
	return added, removed
}
