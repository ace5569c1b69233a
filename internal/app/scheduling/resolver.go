// internal/app/scheduling/resolver.go
package scheduling

import (
	"context"

	"github.com/harmonykeys/lessonhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// GroupRef is the group identity the resolver works against: the id
// plus the member set to infer ownership of unlinked lessons from.
type GroupRef struct {
	ID        primitive.ObjectID
	MemberIDs []primitive.ObjectID
}

// RefOf builds a GroupRef from a stored group.
func RefOf(g models.Group) GroupRef {
	return GroupRef{ID: g.ID, MemberIDs: g.MemberIDs}
}

// ResolveOptions narrows the resolver's search.
type ResolveOptions struct {
	// Match is merged into the lesson query (status, start matchers,
	// date ranges). If it already constrains group_id or carries an
	// $or, the resolver's own group clause is not added.
	Match bson.M

	// LimitToMembers restricts both the query and the link-repair
	// scope to this subset of the group's members.
	LimitToMembers []primitive.ObjectID
}

// ResolveResult is the membership-consistent snapshot of a group's
// lessons.
type ResolveResult struct {
	Lessons []models.Lesson

	// Linked lists lessons whose missing group link was back-filled
	// during this call. The returned Lessons already reflect the link.
	Linked []primitive.ObjectID

	// Ambiguous lists unlinked lessons the resolver refused to claim
	// because the owning student is also in another active group.
	Ambiguous []primitive.ObjectID
}

// Resolve returns the lessons belonging to the group: those explicitly
// linked by group_id, plus unlinked group-type lessons whose student is
// in the member set. As a best-effort side effect it repairs missing
// group links where the owning student is in no other active group;
// genuinely ambiguous lessons are reported, not guessed at. The repair
// is idempotent: repeated calls converge and never reassign a lesson.
func (e *Engine) Resolve(ctx context.Context, group GroupRef, opts ResolveOptions) (ResolveResult, error) {
	scoped := group.MemberIDs
	if opts.LimitToMembers != nil {
		scoped = opts.LimitToMembers
	}

	filter := bson.M{"type": models.LessonTypeGroup}
	for k, v := range opts.Match {
		filter[k] = v
	}

	_, hasGroupID := filter["group_id"]
	_, hasOr := filter["$or"]
	if !hasGroupID && !hasOr {
		if len(scoped) > 0 {
			filter["$or"] = []bson.M{
				{"group_id": group.ID},
				{"group_id": bson.M{"$exists": false}, "student_id": bson.M{"$in": scoped}},
			}
		} else {
			filter["group_id"] = group.ID
		}
	}

	if len(scoped) > 0 {
		if _, hasStudent := filter["student_id"]; hasStudent {
			and, _ := filter["$and"].([]bson.M)
			filter["$and"] = append(and, bson.M{"student_id": bson.M{"$in": scoped}})
		} else {
			filter["student_id"] = bson.M{"$in": scoped}
		}
	}

	cur, err := e.lessons.Find(ctx, filter)
	if err != nil {
		return ResolveResult{}, err
	}
	var lessons []models.Lesson
	if err := cur.All(ctx, &lessons); err != nil {
		return ResolveResult{}, err
	}

	res := ResolveResult{Lessons: lessons}
	if len(scoped) == 0 {
		return res, nil
	}

	// Repair pass: adopt unlinked lessons whose student has no
	// conflicting membership in another active group.
	var missing []models.Lesson
	for _, l := range lessons {
		if l.GroupID == nil && l.StudentID != nil {
			missing = append(missing, l)
		}
	}
	if len(missing) == 0 {
		return res, nil
	}

	missingStudents := uniqueIDs(missing)
	conflicts, err := e.conflictingStudents(ctx, group.ID, missingStudents)
	if err != nil {
		return ResolveResult{}, err
	}

	var assignable []primitive.ObjectID
	for _, l := range missing {
		if _, conflicted := conflicts[*l.StudentID]; conflicted {
			res.Ambiguous = append(res.Ambiguous, l.ID)
		} else {
			assignable = append(assignable, l.ID)
		}
	}
	if len(assignable) == 0 {
		return res, nil
	}

	_, err = e.lessons.UpdateMany(
		ctx,
		bson.M{"_id": bson.M{"$in": assignable}},
		bson.M{"$set": bson.M{"group_id": group.ID}},
	)
	if err != nil {
		return ResolveResult{}, err
	}
	res.Linked = assignable

	linked := make(map[primitive.ObjectID]struct{}, len(assignable))
	for _, id := range assignable {
		linked[id] = struct{}{}
	}
	gid := group.ID
	for i := range res.Lessons {
		if _, ok := linked[res.Lessons[i].ID]; ok {
			res.Lessons[i].GroupID = &gid
		}
	}

	e.log.Debug("resolver repaired group links",
		zap.String("group_id", group.ID.Hex()),
		zap.Int("linked", len(res.Linked)),
		zap.Int("ambiguous", len(res.Ambiguous)))

	return res, nil
}

// conflictingStudents returns the subset of studentIDs that belong to
// some other active group, keyed for lookup.
func (e *Engine) conflictingStudents(ctx context.Context, groupID primitive.ObjectID, studentIDs []primitive.ObjectID) (map[primitive.ObjectID]struct{}, error) {
	cur, err := e.groups.Find(ctx, bson.M{
		"_id":        bson.M{"$ne": groupID},
		"active":     true,
		"member_ids": bson.M{"$in": studentIDs},
	})
	if err != nil {
		return nil, err
	}
	var others []models.Group
	if err := cur.All(ctx, &others); err != nil {
		return nil, err
	}

	conflicts := make(map[primitive.ObjectID]struct{})
	for _, g := range others {
		for _, id := range g.MemberIDs {
			conflicts[id] = struct{}{}
		}
	}
	return conflicts, nil
}

func uniqueIDs(lessons []models.Lesson) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(lessons))
	var out []primitive.ObjectID
	for _, l := range lessons {
		if l.StudentID == nil {
			continue
		}
		if _, ok := seen[*l.StudentID]; !ok {
			seen[*l.StudentID] = struct{}{}
			out = append(out, *l.StudentID)
		}
	}
	return out
}
