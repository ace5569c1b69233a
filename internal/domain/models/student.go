// internal/domain/models/student.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Enrollment programs.
const (
	ProgramOneOnOne = "One-on-one"
	ProgramGroup    = "Group"
)

// DefaultSlot is a student's recurring weekly anchor used by the month
// generator: weekday 0 (Sunday) through 6, time as "HH:MM" local to the
// studio.
type DefaultSlot struct {
	Weekday int    `bson:"weekday" json:"weekday"`
	Time    string `bson:"time" json:"time"`
}

// Student is an enrollment record linked to a portal user account.
type Student struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	UserID      primitive.ObjectID `bson:"user_id" json:"userId"`
	Name        string             `bson:"name" json:"name"`
	Address     string             `bson:"address,omitempty" json:"address,omitempty"`
	DateOfBirth *time.Time         `bson:"date_of_birth,omitempty" json:"dateOfBirth,omitempty"`
	ParentName  string             `bson:"parent_name,omitempty" json:"parentName,omitempty"`
	ParentPhone string             `bson:"parent_phone,omitempty" json:"parentPhone,omitempty"`
	Program     string             `bson:"program" json:"program"` // "One-on-one" | "Group"
	AgeGroup    string             `bson:"age_group,omitempty" json:"ageGroup,omitempty"`
	MonthlyFee  float64            `bson:"monthly_fee" json:"monthlyFee"`
	Active      bool               `bson:"active" json:"active"`
	Timezone    string             `bson:"timezone,omitempty" json:"timezone,omitempty"`

	TermsAccepted   bool       `bson:"terms_accepted,omitempty" json:"termsAccepted,omitempty"`
	TermsAcceptedAt *time.Time `bson:"terms_accepted_at,omitempty" json:"termsAcceptedAt,omitempty"`

	DefaultSlot *DefaultSlot `bson:"default_slot,omitempty" json:"defaultSlot,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
