// internal/app/store/pushsubs/pushsubstore.go
package pushsubstore

import (
	"context"
	"time"

	"github.com/harmonykeys/lessonhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("push_subscriptions")}
}

// Upsert registers or refreshes a subscription keyed by its endpoint.
// A browser re-subscribing with the same endpoint rebinds it to the
// current user.
func (s *Store) Upsert(ctx context.Context, sub models.PushSubscription) error {
	now := time.Now().UTC()
	_, err := s.c.UpdateOne(
		ctx,
		bson.M{"endpoint": sub.Endpoint},
		bson.M{
			"$set": bson.M{
				"user_id":      sub.UserID,
				"keys":         sub.Keys,
				"platform":     sub.Platform,
				"user_agent":   sub.UserAgent,
				"last_seen_at": now,
				"updated_at":   now,
			},
			"$setOnInsert": bson.M{
				"_id":        primitive.NewObjectID(),
				"endpoint":   sub.Endpoint,
				"created_at": now,
			},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

// DeleteEndpoint removes a user's subscription for one endpoint.
func (s *Store) DeleteEndpoint(ctx context.Context, userID primitive.ObjectID, endpoint string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"endpoint": endpoint, "user_id": userID})
	return err
}

// Delete drops a subscription outright; the reminder engine prunes
// endpoints the push service reports gone.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// TouchLastSeen records a successful delivery.
func (s *Store) TouchLastSeen(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{"last_seen_at": time.Now().UTC()}})
	return err
}

// ListByUsers returns all subscriptions for the given users.
func (s *Store) ListByUsers(ctx context.Context, userIDs []primitive.ObjectID) ([]models.PushSubscription, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"user_id": bson.M{"$in": userIDs}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.PushSubscription
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
