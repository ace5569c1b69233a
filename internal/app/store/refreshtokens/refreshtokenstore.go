// internal/app/store/refreshtokens/refreshtokenstore.go
package refreshtokenstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/harmonykeys/lessonhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

// ErrTokenRevoked means the presented refresh token was valid once but
// has been revoked.
var ErrTokenRevoked = errors.New("refresh token revoked")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("refresh_tokens")}
}

// Issue mints and stores a new opaque refresh token for the user.
func (s *Store) Issue(ctx context.Context, userID primitive.ObjectID) (models.RefreshToken, error) {
	now := time.Now().UTC()
	rt := models.RefreshToken{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Token:     uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.c.InsertOne(ctx, rt); err != nil {
		return models.RefreshToken{}, err
	}
	return rt, nil
}

// Redeem looks up a live token. Revoked tokens fail with
// ErrTokenRevoked; unknown tokens fail with mongo.ErrNoDocuments.
func (s *Store) Redeem(ctx context.Context, token string) (models.RefreshToken, error) {
	var rt models.RefreshToken
	if err := s.c.FindOne(ctx, bson.M{"token": token}).Decode(&rt); err != nil {
		return models.RefreshToken{}, err
	}
	if rt.RevokedAt != nil {
		return models.RefreshToken{}, ErrTokenRevoked
	}
	return rt, nil
}

// Revoke marks a token dead but keeps its document for audit.
func (s *Store) Revoke(ctx context.Context, token string) error {
	now := time.Now().UTC()
	_, err := s.c.UpdateOne(
		ctx,
		bson.M{"token": token},
		bson.M{"$set": bson.M{"revoked_at": now, "updated_at": now}},
	)
	return err
}
