// internal/domain/models/homework.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Homework statuses.
const (
	HomeworkAssigned  = "Assigned"
	HomeworkCompleted = "Completed"
)

// Homework is a practice assignment for one student.
type Homework struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	StudentID primitive.ObjectID `bson:"student_id" json:"studentId"`
	Text      string             `bson:"text" json:"text"`
	Status    string             `bson:"status" json:"status"` // "Assigned" | "Completed"

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
