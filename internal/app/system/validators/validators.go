// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	// helper: ensure collection exists (with truthful logging) and then validator (if provided)
	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			// DocumentDB or other deployments may not support collMod/validators.
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	// Core collections this app uses
	ensure("users", usersSchema())
	ensure("students", studentsSchema())
	ensure("groups", groupsSchema())
	ensure("lessons", lessonsSchema())
	ensure("homework", homeworkSchema())
	ensure("push_subscriptions", pushSubscriptionsSchema())

	// These don't strictly need validators; we still ensure the collections exist.
	ensure("accounts", nil)
	ensure("refresh_tokens", nil)
	ensure("notification_logs", nil)
	ensure("notification_settings", nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
// Uses ListCollectionNames to avoid "created collection" log when it didn't.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		// NamespaceExists / already exists is fine (race or prior run).
		if isNamespaceExistsErr(err) {
			zap.L().Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

func usersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"email", "password_hash", "role", "active"},
			"properties": bson.M{
				"email":                bson.M{"bsonType": "string", "minLength": 3, "pattern": ".+@.+"},
				"password_hash":        bson.M{"bsonType": "string", "minLength": 1},
				"role":                 bson.M{"enum": bson.A{"admin", "portal"}},
				"active":               bson.M{"bsonType": "bool"},
				"must_change_password": bson.M{"bsonType": "bool"},
			},
		},
	}
}

func studentsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"user_id", "name", "program", "active"},
			"properties": bson.M{
				"user_id":     bson.M{"bsonType": "objectId"},
				"name":        bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
				"program":     bson.M{"enum": bson.A{"One-on-one", "Group"}},
				"active":      bson.M{"bsonType": "bool"},
				"monthly_fee": bson.M{"bsonType": bson.A{"double", "int", "long", "decimal"}},
				"timezone":    bson.M{"bsonType": "string"},
				"default_slot": bson.M{
					"bsonType": "object",
					"properties": bson.M{
						"weekday": bson.M{"bsonType": "int", "minimum": 0, "maximum": 6},
						"time":    bson.M{"bsonType": "string", "pattern": "^[0-2][0-9]:[0-5][0-9]$"},
					},
				},
			},
		},
	}
}

func groupsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "member_ids", "active"},
			"properties": bson.M{
				"name":       bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
				"member_ids": bson.M{"bsonType": "array", "items": bson.M{"bsonType": "objectId"}},
				"active":     bson.M{"bsonType": "bool"},
			},
		},
	}
}

func lessonsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"type", "start", "end", "status"},
			"properties": bson.M{
				"student_id": bson.M{"bsonType": "objectId"},
				"group_id":   bson.M{"bsonType": "objectId"},
				"type":       bson.M{"enum": bson.A{"one", "group", "demo"}},
				"start":      bson.M{"bsonType": "date"},
				"end":        bson.M{"bsonType": "date"},
				"status":     bson.M{"enum": bson.A{"Scheduled", "Cancelled", "Completed"}},
				"notes":      bson.M{"bsonType": "string"},
				"demo_name":  bson.M{"bsonType": "string"},
			},
		},
	}
}

func homeworkSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"student_id", "text", "status"},
			"properties": bson.M{
				"student_id": bson.M{"bsonType": "objectId"},
				"text":       bson.M{"bsonType": "string", "minLength": 1},
				"status":     bson.M{"enum": bson.A{"Assigned", "Completed"}},
			},
		},
	}
}

func pushSubscriptionsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"user_id", "endpoint", "keys"},
			"properties": bson.M{
				"user_id":  bson.M{"bsonType": "objectId"},
				"endpoint": bson.M{"bsonType": "string", "minLength": 1},
				"keys": bson.M{
					"bsonType": "object",
					"required": bson.A{"p256dh", "auth"},
					"properties": bson.M{
						"p256dh": bson.M{"bsonType": "string", "minLength": 1},
						"auth":   bson.M{"bsonType": "string", "minLength": 1},
					},
				},
			},
		},
	}
}
