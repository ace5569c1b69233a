// internal/app/scheduling/propagate.go
package scheduling

import (
	"context"
	"time"

	"github.com/harmonykeys/lessonhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// FieldUpdate carries the shared lesson fields an edit touched. Nil
// pointers mean "not in the request"; only present fields propagate to
// siblings.
type FieldUpdate struct {
	Start  *time.Time
	End    *time.Time
	Status *string
	Notes  *string
}

// Empty reports whether the update touches no shared field.
func (u FieldUpdate) Empty() bool {
	return u.Start == nil && u.End == nil && u.Status == nil && u.Notes == nil
}

// Set renders the update as a $set document.
func (u FieldUpdate) Set() bson.M {
	set := bson.M{}
	if u.Start != nil {
		set["start"] = *u.Start
	}
	if u.End != nil {
		set["end"] = *u.End
	}
	if u.Status != nil {
		set["status"] = *u.Status
	}
	if u.Notes != nil {
		set["notes"] = *u.Notes
	}
	return set
}

// PropagateResult reports what the propagation touched.
type PropagateResult struct {
	// GroupID is the effective group the occurrence was resolved to;
	// nil when the lesson has no resolvable group and nothing was
	// propagated.
	GroupID *primitive.ObjectID

	// Siblings is the number of sibling lessons updated.
	Siblings int

	// LinkRepaired is true when the edited lesson itself gained its
	// group link during this call.
	LinkRepaired bool
}

// PropagateSharedFields applies the same field delta to the sibling
// lessons of the edited lesson's occurrence. before is the lesson as it
// was prior to the edit; the single-record update has already been
// applied by the caller.
//
// Siblings are matched against both the old start and (when the edit
// moves the occurrence) the new start, because the siblings have not
// been moved yet. If the lesson has no group link, the student's
// current membership is consulted: exactly one active group adopts the
// lesson (lazy link repair); none or several means the occurrence is
// unresolvable and nothing is propagated.
func (e *Engine) PropagateSharedFields(ctx context.Context, before models.Lesson, update FieldUpdate) (PropagateResult, error) {
	var res PropagateResult
	if before.Type != models.LessonTypeGroup || update.Empty() {
		return res, nil
	}

	var (
		groupID primitive.ObjectID
		members []primitive.ObjectID
	)

	switch {
	case before.GroupID != nil:
		groupID = *before.GroupID
		var g models.Group
		err := e.groups.FindOne(ctx, bson.M{"_id": groupID}).Decode(&g)
		if err != nil && err != mongo.ErrNoDocuments {
			return res, err
		}
		members = g.MemberIDs

	case before.StudentID != nil:
		cur, err := e.groups.Find(ctx, bson.M{"active": true, "member_ids": *before.StudentID})
		if err != nil {
			return res, err
		}
		var candidates []models.Group
		if err := cur.All(ctx, &candidates); err != nil {
			return res, err
		}
		if len(candidates) == 0 {
			return res, nil
		}
		if len(candidates) > 1 {
			// Ambiguous membership: do not guess which occurrence
			// this lesson belongs to.
			e.log.Warn("propagation skipped: student in multiple active groups",
				zap.String("lesson_id", before.ID.Hex()),
				zap.String("student_id", before.StudentID.Hex()))
			return res, nil
		}
		groupID = candidates[0].ID
		members = candidates[0].MemberIDs

		if _, err := e.lessons.UpdateByID(ctx, before.ID, bson.M{"$set": bson.M{"group_id": groupID}}); err != nil {
			return res, err
		}
		res.LinkRepaired = true

	default:
		// Demo lesson or no owner: single-record edit only.
		return res, nil
	}
	res.GroupID = &groupID

	startMatch := startMatcher(before.Start, update.Start)
	set := update.Set()
	set["updated_at"] = time.Now().UTC()

	var otherMembers []primitive.ObjectID
	for _, id := range members {
		if before.StudentID != nil && id == *before.StudentID {
			continue
		}
		otherMembers = append(otherMembers, id)
	}

	if len(members) == 0 {
		// No member list to infer from; fall back to explicitly
		// linked siblings at the matched start.
		upd, err := e.lessons.UpdateMany(ctx, bson.M{
			"_id":      bson.M{"$ne": before.ID},
			"type":     models.LessonTypeGroup,
			"group_id": groupID,
			"start":    startMatch,
		}, bson.M{"$set": set})
		if err != nil {
			return res, err
		}
		res.Siblings = int(upd.ModifiedCount)
		return res, nil
	}
	if len(otherMembers) == 0 {
		return res, nil
	}

	resolved, err := e.Resolve(ctx, GroupRef{ID: groupID, MemberIDs: members}, ResolveOptions{
		Match:          bson.M{"start": startMatch},
		LimitToMembers: otherMembers,
	})
	if err != nil {
		return res, err
	}
	if len(resolved.Lessons) == 0 {
		return res, nil
	}

	ids := make([]primitive.ObjectID, 0, len(resolved.Lessons))
	seen := make(map[primitive.ObjectID]struct{}, len(resolved.Lessons))
	for _, l := range resolved.Lessons {
		if _, ok := seen[l.ID]; !ok {
			seen[l.ID] = struct{}{}
			ids = append(ids, l.ID)
		}
	}

	upd, err := e.lessons.UpdateMany(ctx, bson.M{"_id": bson.M{"$in": ids}}, bson.M{"$set": set})
	if err != nil {
		return res, err
	}
	res.Siblings = int(upd.ModifiedCount)
	return res, nil
}

// startMatcher matches siblings at the occurrence's start before the
// edit and, when the edit moves it, the new start as well.
func startMatcher(oldStart time.Time, newStart *time.Time) any {
	if newStart == nil || newStart.Equal(oldStart) {
		return oldStart
	}
	return bson.M{"$in": []time.Time{oldStart, *newStart}}
}
