// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

/*
EnsureAll is called at startup. Index creation is idempotent; errors are
aggregated so every problem is visible and startup can fail fast.

The unique lesson index is the storage-layer backstop against duplicate
occurrences created by concurrent requests that slip past the existence
checks in the scheduling engine.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	ensure := func(coll string, models []mongo.IndexModel) {
		if err := createAll(ctx, db.Collection(coll), models); err != nil {
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("users", []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "role", Value: 1}}},
	})

	ensure("students", []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "name", Value: 1}}},
	})

	ensure("groups", []mongo.IndexModel{
		{Keys: bson.D{{Key: "member_ids", Value: 1}}},
		{Keys: bson.D{{Key: "active", Value: 1}, {Key: "name", Value: 1}}},
	})

	ensure("lessons", []mongo.IndexModel{
		{Keys: bson.D{{Key: "start", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "group_id", Value: 1}, {Key: "start", Value: 1}}},
		// Backstop uniqueness per (student, type, window). Partial so
		// demo lessons, which carry no student_id, stay out of it.
		{
			Keys: bson.D{
				{Key: "student_id", Value: 1},
				{Key: "type", Value: 1},
				{Key: "start", Value: 1},
				{Key: "end", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"student_id": bson.M{"$exists": true}}),
		},
	})

	ensure("homework", []mongo.IndexModel{
		{Keys: bson.D{{Key: "student_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})

	ensure("push_subscriptions", []mongo.IndexModel{
		{Keys: bson.D{{Key: "endpoint", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
	})

	ensure("notification_logs", []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "subscription_id", Value: 1},
				{Key: "lesson_id", Value: 1},
				{Key: "kind", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
	})

	ensure("accounts", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "provider", Value: 1}, {Key: "provider_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
	})

	ensure("refresh_tokens", []mongo.IndexModel{
		{Keys: bson.D{{Key: "token", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
	})

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func createAll(ctx context.Context, c *mongo.Collection, models []mongo.IndexModel) error {
	_, err := c.Indexes().CreateMany(ctx, models)
	if err != nil && isOptionsConflict(err) {
		// Same keys already exist under a different name or options;
		// leave the existing index in place.
		return nil
	}
	return err
}

// Mongo/DocDB returns IndexOptionsConflict when an index with the same
// keys already exists under a different name.
func isOptionsConflict(err error) bool {
	return err != nil && strings.Contains(err.Error(), "IndexOptionsConflict")
}
