// internal/domain/models/group.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Group is a named set of students who take their lessons together.
//
// NOTE:
//   - MemberIDs reference Student documents (not portal users).
//     Uniqueness is enforced with $addToSet semantics at the store level.
//   - Deleting a group is a soft flag flip to Active=false; inactive
//     groups are excluded from scheduling but keep their history.
type Group struct {
	ID          primitive.ObjectID   `bson:"_id" json:"id"`
	Name        string               `bson:"name" json:"name"`
	Description string               `bson:"description,omitempty" json:"description,omitempty"`
	MemberIDs   []primitive.ObjectID `bson:"member_ids" json:"memberIds"`
	Active      bool                 `bson:"active" json:"active"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasMember reports whether id is in the group's member set.
func (g Group) HasMember(id primitive.ObjectID) bool {
	for _, m := range g.MemberIDs {
		if m == id {
			return true
		}
	}
	return false
}
