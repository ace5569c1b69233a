// internal/app/store/accounts/accountstore.go
package accountstore

import (
	"context"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/harmonykeys/lessonhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store links users to external identity providers (accounts
// collection).
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("accounts")}
}

// FindByProvider looks up an existing provider link.
func (s *Store) FindByProvider(ctx context.Context, provider, providerID string) (models.Account, error) {
	var a models.Account
	err := s.c.FindOne(ctx, bson.M{"provider": provider, "provider_id": providerID}).Decode(&a)
	if err != nil {
		return models.Account{}, err
	}
	return a, nil
}

// Create records a provider link. A concurrent duplicate insert is
// treated as success; the existing link wins.
func (s *Store) Create(ctx context.Context, userID primitive.ObjectID, provider, providerID string) error {
	a := models.Account{
		ID:         primitive.NewObjectID(),
		UserID:     userID,
		Provider:   provider,
		ProviderID: providerID,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, a); err != nil && !wafflemongo.IsDup(err) {
		return err
	}
	return nil
}
