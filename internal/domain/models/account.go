// internal/domain/models/account.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Account links a user to an external identity provider.
// (provider, provider_id) is unique.
type Account struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	UserID     primitive.ObjectID `bson:"user_id" json:"userId"`
	Provider   string             `bson:"provider" json:"provider"` // "google"
	ProviderID string             `bson:"provider_id" json:"providerId"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// RefreshToken is an opaque long-lived token exchanged for new access
// tokens. Revoked tokens keep their document with RevokedAt set.
type RefreshToken struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"userId"`
	Token     string             `bson:"token" json:"-"`
	RevokedAt *time.Time         `bson:"revoked_at,omitempty" json:"revokedAt,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
