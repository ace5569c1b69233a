// internal/domain/models/lesson.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Lesson types.
const (
	LessonTypeOne   = "one"
	LessonTypeGroup = "group"
	LessonTypeDemo  = "demo"
)

// Lesson statuses, in repair-priority order: when statuses diverge across
// the members of one group occurrence, the highest-priority status wins.
const (
	StatusScheduled = "Scheduled"
	StatusCancelled = "Cancelled"
	StatusCompleted = "Completed"
)

var statusPriority = map[string]int{
	StatusScheduled: 0,
	StatusCancelled: 1,
	StatusCompleted: 2,
}

// StatusPriority returns the repair priority of a lesson status.
// Unknown statuses rank lowest.
func StatusPriority(status string) int {
	return statusPriority[status]
}

// Lesson is one scheduled occurrence for one student (or one demo slot).
//
// NOTE:
//   - StudentID is nil only for demo lessons.
//   - GroupID is set when the lesson is part of a recognized group
//     occurrence. Legacy group lessons may lack it; the scheduling
//     resolver back-fills the link when unambiguous.
//   - All lessons of one group sharing (group_id, start, end) form one
//     occurrence and must carry identical status and notes at rest.
type Lesson struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	StudentID *primitive.ObjectID `bson:"student_id,omitempty" json:"studentId,omitempty"`
	GroupID   *primitive.ObjectID `bson:"group_id,omitempty" json:"groupId,omitempty"`
	Type      string              `bson:"type" json:"type"` // "one" | "group" | "demo"
	Start     time.Time           `bson:"start" json:"start"`
	End       time.Time           `bson:"end" json:"end"`
	Status    string              `bson:"status" json:"status"`
	Notes     string              `bson:"notes,omitempty" json:"notes,omitempty"`
	DemoName  string              `bson:"demo_name,omitempty" json:"demoName,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
