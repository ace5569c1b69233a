// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles.
const (
	RoleAdmin  = "admin"
	RolePortal = "portal"
)

// UserProfile holds optional display information.
type UserProfile struct {
	Name string `bson:"name,omitempty" json:"name,omitempty"`
}

// UserPreferences holds per-user notification switches.
// LessonReminders defaults to true when unset.
type UserPreferences struct {
	LessonReminders *bool `bson:"lesson_reminders,omitempty" json:"lessonReminders,omitempty"`
}

// User is a login account: either the studio admin or a portal
// (parent/student) account linked to one or more Student records.
type User struct {
	ID                 primitive.ObjectID `bson:"_id" json:"id"`
	Email              string             `bson:"email" json:"email"`
	PasswordHash       string             `bson:"password_hash" json:"-"`
	Role               string             `bson:"role" json:"role"` // "admin" | "portal"
	Active             bool               `bson:"active" json:"active"`
	MustChangePassword bool               `bson:"must_change_password" json:"mustChangePassword"`
	Profile            *UserProfile       `bson:"profile,omitempty" json:"profile,omitempty"`
	Preferences        *UserPreferences   `bson:"preferences,omitempty" json:"preferences,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// WantsLessonReminders reports whether the user has lesson reminders on.
// The switch is opt-out: missing preferences mean enabled.
func (u User) WantsLessonReminders() bool {
	return u.Preferences == nil || u.Preferences.LessonReminders == nil || *u.Preferences.LessonReminders
}
