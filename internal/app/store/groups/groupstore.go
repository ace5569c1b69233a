// internal/app/store/groups/groupstore.go
package groupstore

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
	return &Store{c: db.Collection("groups")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Group, error) {
	var g models.Group
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		return models.Group{}, err
	}
	return g, nil
}

func (s *Store) Create(ctx context.Context, g models.Group) (models.Group, error) {
	now := time.Now().UTC()
	g.ID = primitive.NewObjectID()
	g.Active = true
	if g.MemberIDs == nil {
		g.MemberIDs = []primitive.ObjectID{}
	}
	g.CreatedAt = now
	g.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, g); err != nil {
		return models.Group{}, err
	}
	return g, nil
}

// Replace overwrites name, description and the full member list,
// returning the updated group.
func (s *Store) Replace(ctx context.Context, id primitive.ObjectID, name, description string, memberIDs []primitive.ObjectID) (models.Group, error) {
	if memberIDs == nil {
		memberIDs = []primitive.ObjectID{}
	}
	var g models.Group
	err := s.c.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"name":        name,
			"description": description,
			"member_ids":  memberIDs,
			"updated_at":  time.Now().UTC(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&g)
	if err != nil {
		return models.Group{}, err
	}
	return g, nil
}

// AddMembers adds the given students with set semantics (duplicates in
// the existing member list are not re-added).
func (s *Store) AddMembers(ctx context.Context, id primitive.ObjectID, memberIDs []primitive.ObjectID) (models.Group, error) {
	var g models.Group
	err := s.c.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{
			"$addToSet": bson.M{"member_ids": bson.M{"$each": memberIDs}},
			"$set":      bson.M{"updated_at": time.Now().UTC()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&g)
	if err != nil {
		return models.Group{}, err
	}
	return g, nil
}

// Deactivate soft-deletes the group; historical lessons stay linked.
func (s *Store) Deactivate(ctx context.Context, id primitive.ObjectID) (models.Group, error) {
	var g models.Group
	err := s.c.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"active": false, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&g)
	if err != nil {
		return models.Group{}, err
	}
	return g, nil
}

// ListActive returns active groups sorted by name.
func (s *Store) ListActive(ctx context.Context) ([]models.Group, error) {
	cur, err := s.c.Find(ctx, bson.M{"active": true}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Group
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListAll returns every group, active or not; the backfill job scans
// all of them so inactive groups still get status repair.
func (s *Store) ListAll(ctx context.Context) ([]models.Group, error) {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Group
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ActiveGroupsForStudent returns the active groups that list the
// student as a member, in storage order.
func (s *Store) ActiveGroupsForStudent(ctx context.Context, studentID primitive.ObjectID) ([]models.Group, error) {
	cur, err := s.c.Find(
		ctx,
		bson.M{"active": true, "member_ids": studentID},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Group
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
