// internal/app/scheduling/backfill.go
package scheduling

import (
	"context"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/harmonykeys/lessonhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// BackfillResult tallies the repairs one backfill run made.
type BackfillResult struct {
	// Linked counts lessons whose missing group link was filled in.
	Linked int `json:"linked"`

	// StatusAligned counts lessons whose status was rewritten to the
	// occurrence's canonical status.
	StatusAligned int `json:"statusAligned"`

	// Created counts member lessons created for occurrences that were
	// missing them.
	Created int `json:"created"`
}

// Backfill is the reconciliation pass over every group's lesson set.
// It repairs missing group links, converges each occurrence's lessons
// to one canonical status, and creates the lessons current members are
// missing for future occurrences of active groups. Running it twice in
// a row leaves the second run with nothing to do.
func (e *Engine) Backfill(ctx context.Context, now time.Time) (BackfillResult, error) {
	var res BackfillResult

	cur, err := e.groups.Find(ctx, bson.M{})
	if err != nil {
		return res, err
	}
	var groups []models.Group
	if err := cur.All(ctx, &groups); err != nil {
		return res, err
	}

	for _, g := range groups {
		if len(g.MemberIDs) == 0 {
			continue
		}
		if err := e.backfillGroup(ctx, g, now, &res); err != nil {
			e.log.Warn("backfill failed for group",
				zap.String("group_id", g.ID.Hex()),
				zap.String("name", g.Name),
				zap.Error(err))
		}
	}

	e.log.Info("backfill complete",
		zap.Int("linked", res.Linked),
		zap.Int("status_aligned", res.StatusAligned),
		zap.Int("created", res.Created))
	return res, nil
}

func (e *Engine) backfillGroup(ctx context.Context, g models.Group, now time.Time, res *BackfillResult) error {
	resolved, err := e.Resolve(ctx, RefOf(g), ResolveOptions{})
	if err != nil {
		return err
	}
	res.Linked += len(resolved.Linked)

	// Bucket the group's lessons into occurrences by exact window.
	buckets := make(map[occurrenceKey][]models.Lesson)
	for _, l := range resolved.Lessons {
		k := keyOf(l.Start, l.End)
		buckets[k] = append(buckets[k], l)
	}

	for _, bucket := range buckets {
		canonical, aligned, err := e.alignStatuses(ctx, bucket)
		if err != nil {
			return err
		}
		res.StatusAligned += aligned

		// Missing lessons are only created for sessions that have not
		// happened yet, and only while the group is still active.
		// Historical gaps stay gaps.
		if !g.Active || !bucket[0].Start.After(now) {
			continue
		}
		created, err := e.fillMissingMembers(ctx, g, bucket, canonical, now)
		if err != nil {
			return err
		}
		res.Created += created
	}
	return nil
}

// alignStatuses rewrites every lesson in the occurrence to the
// bucket's canonical status. Completed wins over Cancelled wins over
// Scheduled, so a partial cancellation or completion spreads to the
// rest of the occurrence rather than being undone.
func (e *Engine) alignStatuses(ctx context.Context, bucket []models.Lesson) (string, int, error) {
	canonical := bucket[0].Status
	for _, l := range bucket[1:] {
		if models.StatusPriority(l.Status) > models.StatusPriority(canonical) {
			canonical = l.Status
		}
	}

	var stale []primitive.ObjectID
	for _, l := range bucket {
		if l.Status != canonical {
			stale = append(stale, l.ID)
		}
	}
	if len(stale) == 0 {
		return canonical, 0, nil
	}

	_, err := e.lessons.UpdateMany(
		ctx,
		bson.M{"_id": bson.M{"$in": stale}},
		bson.M{"$set": bson.M{"status": canonical, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return canonical, 0, err
	}
	return canonical, len(stale), nil
}

func (e *Engine) fillMissingMembers(ctx context.Context, g models.Group, bucket []models.Lesson, status string, now time.Time) (int, error) {
	have := make(map[primitive.ObjectID]struct{}, len(bucket))
	for _, l := range bucket {
		if l.StudentID != nil {
			have[*l.StudentID] = struct{}{}
		}
	}

	// The new lessons inherit the occurrence's shared fields from an
	// arbitrary existing sibling.
	tpl := bucket[0]
	gid := g.ID

	created := 0
	for _, member := range g.MemberIDs {
		if _, ok := have[member]; ok {
			continue
		}
		sid := member
		exists, err := e.lessonExists(ctx, sid, gid, tpl.Start, tpl.End, "")
		if err != nil {
			return created, err
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
			Status:    status,
			Notes:     tpl.Notes,
			CreatedAt: now.UTC(),
			UpdatedAt: now.UTC(),
		}
		if _, err := e.lessons.InsertOne(ctx, lesson); err != nil {
			if wafflemongo.IsDup(err) {
				continue
			}
			e.log.Warn("backfill: lesson create failed",
				zap.String("group_id", gid.Hex()),
				zap.String("student_id", sid.Hex()),
				zap.Time("start", tpl.Start),
				zap.Error(err))
			continue
		}
		created++
	}
	return created, nil
}
