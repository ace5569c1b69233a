// internal/app/store/settings/settingsstore.go
package settingsstore

import (
	"context"
	"time"

	"github.com/harmonykeys/lessonhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store provides access to the notification_settings collection, which
// holds a single studio-wide policy document.
type Store struct {
	c *mongo.Collection
}

const settingsID = "notifications"

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("notification_settings")}
}

// Get returns the saved settings, or the defaults when none have been
// saved yet.
func (s *Store) Get(ctx context.Context) (models.NotificationSettings, error) {
	var settings models.NotificationSettings
	err := s.c.FindOne(ctx, bson.M{"_id": settingsID}).Decode(&settings)
	if err == mongo.ErrNoDocuments {
		return models.DefaultNotificationSettings(), nil
	}
	if err != nil {
		return models.NotificationSettings{}, err
	}
	return settings, nil
}

// Save upserts the singleton settings document and returns the stored
// value.
func (s *Store) Save(ctx context.Context, settings models.NotificationSettings) (models.NotificationSettings, error) {
	now := time.Now().UTC()
	var out models.NotificationSettings
	err := s.c.FindOneAndUpdate(
		ctx,
		bson.M{"_id": settingsID},
		bson.M{
			"$set": bson.M{
				"enabled":      settings.Enabled,
				"lead_minutes": settings.LeadMinutes,
				"quiet_hours":  settings.QuietHours,
				"updated_at":   now,
			},
			"$setOnInsert": bson.M{"created_at": now},
		},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		return models.NotificationSettings{}, err
	}
	return out, nil
}
