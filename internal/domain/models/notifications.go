// internal/domain/models/notifications.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SubscriptionKeys are the client-side encryption keys from the
// browser's PushSubscription.
type SubscriptionKeys struct {
	P256dh string `bson:"p256dh" json:"p256dh"`
	Auth   string `bson:"auth" json:"auth"`
}

// PushSubscription is one browser endpoint registered for Web Push.
// Endpoint is unique; re-subscribing the same endpoint updates the
// existing document.
type PushSubscription struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	UserID     primitive.ObjectID `bson:"user_id" json:"userId"`
	Endpoint   string             `bson:"endpoint" json:"endpoint"`
	Keys       SubscriptionKeys   `bson:"keys" json:"keys"`
	Platform   string             `bson:"platform,omitempty" json:"platform,omitempty"`
	UserAgent  string             `bson:"user_agent,omitempty" json:"userAgent,omitempty"`
	LastSeenAt *time.Time         `bson:"last_seen_at,omitempty" json:"lastSeenAt,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Notification kinds.
const NotificationKindLessonReminder = "lesson-reminder"

// NotificationLog records a delivered (or claimed) push so the reminder
// job sends at most one notification per subscription per lesson. The
// unique (subscription_id, lesson_id, kind) index is the claim.
type NotificationLog struct {
	ID             primitive.ObjectID `bson:"_id" json:"id"`
	SubscriptionID primitive.ObjectID `bson:"subscription_id" json:"subscriptionId"`
	LessonID       primitive.ObjectID `bson:"lesson_id" json:"lessonId"`
	Kind           string             `bson:"kind" json:"kind"`
	SentAt         time.Time          `bson:"sent_at" json:"sentAt"`
}

// QuietHours is a daily do-not-disturb window in studio-local hours.
// Start == End disables the window; Start > End spans midnight.
type QuietHours struct {
	Start int `bson:"start" json:"start"`
	End   int `bson:"end" json:"end"`
}

// NotificationSettings is the studio-wide reminder policy. It is a
// singleton document (fixed _id "notifications").
type NotificationSettings struct {
	ID          string     `bson:"_id" json:"-"`
	Enabled     bool       `bson:"enabled" json:"enabled"`
	LeadMinutes int        `bson:"lead_minutes" json:"leadMinutes"`
	QuietHours  QuietHours `bson:"quiet_hours" json:"quietHours"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// DefaultNotificationSettings is the policy used before an admin has
// saved one: reminders on, 24 hours ahead, quiet from 22:00 to 07:00.
func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		ID:          "notifications",
		Enabled:     true,
		LeadMinutes: 24 * 60,
		QuietHours:  QuietHours{Start: 22, End: 7},
	}
}
