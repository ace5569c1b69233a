// internal/app/store/notifylog/notifylogstore.go
package notifylogstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/harmonykeys/lessonhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

// ErrAlreadySent means this subscription was already notified for this
// lesson; the caller skips the send.
var ErrAlreadySent = errors.New("notification already sent for this subscription and lesson")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("notification_logs")}
}

// Claim inserts the log row before the push is attempted. The unique
// (subscription_id, lesson_id, kind) index makes the claim at-most-once
// even across concurrently running reminder jobs.
func (s *Store) Claim(ctx context.Context, subscriptionID, lessonID primitive.ObjectID, kind string) error {
	log := models.NotificationLog{
		ID:             primitive.NewObjectID(),
		SubscriptionID: subscriptionID,
		LessonID:       lessonID,
		Kind:           kind,
		SentAt:         time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, log); err != nil {
		if wafflemongo.IsDup(err) {
			return ErrAlreadySent
		}
		return err
	}
	return nil
}
