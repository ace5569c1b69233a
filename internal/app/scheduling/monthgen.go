// internal/app/scheduling/monthgen.go
package scheduling

import (
	"context"
	"fmt"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/harmonykeys/lessonhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// GenerateParams describes one month-generation run.
type GenerateParams struct {
	Year            int
	Month           time.Month
	DurationMinutes int

	// IncludeFifth emits a 5th weekly occurrence when the month has
	// one for the student's weekday.
	IncludeFifth bool

	// Location is the studio timezone the default slots are anchored
	// in. Required.
	Location *time.Location
}

// GenerateMonth creates the month's lesson instances from each active
// student's default weekly slot. Group-program students get group
// lessons linked to their active group; students with no active group
// are skipped with a warning, and a student in several active groups
// deterministically gets the first by storage order. Re-running with
// the same arguments creates nothing new.
func (e *Engine) GenerateMonth(ctx context.Context, p GenerateParams) (int, error) {
	if p.Location == nil {
		return 0, fmt.Errorf("generate month: location is required")
	}

	cur, err := e.students.Find(ctx, bson.M{
		"active":               true,
		"default_slot.weekday": bson.M{"$exists": true},
		"default_slot.time":    bson.M{"$exists": true},
	})
	if err != nil {
		return 0, err
	}
	var students []models.Student
	if err := cur.All(ctx, &students); err != nil {
		return 0, err
	}

	membership, err := e.activeMembershipIndex(ctx)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, s := range students {
		n, err := e.generateForStudent(ctx, s, membership, p)
		if err != nil {
			// One bad record must not block scheduling for the rest
			// of the cohort.
			e.log.Warn("month generation failed for student",
				zap.String("student_id", s.ID.Hex()),
				zap.String("name", s.Name),
				zap.Error(err))
			continue
		}
		created += n
	}
	return created, nil
}

// activeMembershipIndex maps each student to the active groups listing
// them, in storage order.
func (e *Engine) activeMembershipIndex(ctx context.Context) (map[primitive.ObjectID][]primitive.ObjectID, error) {
	cur, err := e.groups.Find(ctx, bson.M{"active": true},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var groups []models.Group
	if err := cur.All(ctx, &groups); err != nil {
		return nil, err
	}

	idx := make(map[primitive.ObjectID][]primitive.ObjectID)
	for _, g := range groups {
		for _, member := range g.MemberIDs {
			idx[member] = append(idx[member], g.ID)
		}
	}
	return idx, nil
}

func (e *Engine) generateForStudent(ctx context.Context, s models.Student, membership map[primitive.ObjectID][]primitive.ObjectID, p GenerateParams) (int, error) {
	slot := s.DefaultSlot
	if slot == nil {
		return 0, nil
	}

	var hour, minute int
	if _, err := fmt.Sscanf(slot.Time, "%d:%d", &hour, &minute); err != nil {
		return 0, fmt.Errorf("invalid default slot time %q: %w", slot.Time, err)
	}

	var groupID *primitive.ObjectID
	lessonType := models.LessonTypeOne
	if s.Program == models.ProgramGroup {
		groupIDs := membership[s.ID]
		if len(groupIDs) == 0 {
			e.log.Warn("skipping group lessons: no active group membership",
				zap.String("student_id", s.ID.Hex()),
				zap.String("name", s.Name))
			return 0, nil
		}
		if len(groupIDs) > 1 {
			e.log.Warn("student in multiple active groups; using first",
				zap.String("student_id", s.ID.Hex()),
				zap.String("group_id", groupIDs[0].Hex()))
		}
		groupID = &groupIDs[0]
		lessonType = models.LessonTypeGroup
	}

	firstOfMonth := time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, p.Location)
	delta := (slot.Weekday - int(firstOfMonth.Weekday()) + 7) % 7
	firstOccurrence := firstOfMonth.AddDate(0, 0, delta)

	count := 4
	if p.IncludeFifth {
		count = 5
	}

	created := 0
	for i := 0; i < count; i++ {
		day := firstOccurrence.AddDate(0, 0, i*7)
		if day.Month() != p.Month {
			// Day-of-month rollover: the 5th week fell into the next
			// month.
			break
		}

		start := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, p.Location)
		end := start.Add(time.Duration(p.DurationMinutes) * time.Minute)

		dup := bson.M{
			"student_id": s.ID,
			"type":       lessonType,
			"start":      start,
			"end":        end,
		}
		if groupID != nil {
			// Relaxed on the group link so a legacy unlinked lesson
			// at the slot still counts as existing.
			dup["$or"] = []bson.M{
				{"group_id": *groupID},
				{"group_id": bson.M{"$exists": false}},
			}
		}
		err := e.lessons.FindOne(ctx, dup).Err()
		if err == nil {
			continue
		}
		if err != mongo.ErrNoDocuments {
			return created, err
		}

		sid := s.ID
		now := time.Now().UTC()
		lesson := models.Lesson{
			ID:        primitive.NewObjectID(),
			StudentID: &sid,
			GroupID:   groupID,
			Type:      lessonType,
			Start:     start,
			End:       end,
			Status:    models.StatusScheduled,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if _, err := e.lessons.InsertOne(ctx, lesson); err != nil {
			if wafflemongo.IsDup(err) {
				continue
			}
			return created, err
		}
		created++
	}
	return created, nil
}
