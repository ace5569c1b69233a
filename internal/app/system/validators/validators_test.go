package validators_test

import (
	"testing"
	"time"

	"github.com/harmonykeys/lessonhub/internal/app/system/validators"
	"github.com/harmonykeys/lessonhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestEnsureAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)

	// EnsureAll should succeed on a clean database
	err := validators.EnsureAll(ctx, db)
	if err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)

	// First call
	err := validators.EnsureAll(ctx, db)
	if err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}

	// Second call should also succeed (idempotent)
	err = validators.EnsureAll(ctx, db)
	if err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesCollections(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)

	err := validators.EnsureAll(ctx, db)
	if err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	// Verify collections exist
	expectedCollections := []string{
		"users",
		"students",
		"groups",
		"lessons",
		"homework",
		"push_subscriptions",
		"accounts",
		"refresh_tokens",
		"notification_logs",
		"notification_settings",
	}

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("ListCollectionNames failed: %v", err)
	}

	collMap := make(map[string]bool)
	for _, name := range names {
		collMap[name] = true
	}

	for _, expected := range expectedCollections {
		if !collMap[expected] {
			t.Errorf("expected collection %q to exist", expected)
		}
	}
}

func TestUsersValidator_RequiredFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)

	err := validators.EnsureAll(ctx, db)
	if err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	// Try to insert user without required fields - should fail
	_, err = db.Collection("users").InsertOne(ctx, bson.M{
		"email": "missing@example.com",
	})
	if err == nil {
		t.Error("expected validation error when inserting user without required fields")
	}
}

func TestUsersValidator_ValidUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)

	err := validators.EnsureAll(ctx, db)
	if err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	// Insert valid user - should succeed
	_, err = db.Collection("users").InsertOne(ctx, bson.M{
		"email":                "valid@example.com",
		"password_hash":        "x",
		"role":                 "portal",
		"active":               true,
		"must_change_password": false,
		"created_at":           time.Now().UTC(),
		"updated_at":           time.Now().UTC(),
	})
	if err != nil {
		t.Errorf("Insert valid user failed: %v", err)
	}
}

func TestUsersValidator_InvalidRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)

	err := validators.EnsureAll(ctx, db)
	if err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	_, err = db.Collection("users").InsertOne(ctx, bson.M{
		"email":         "role@example.com",
		"password_hash": "x",
		"role":          "superuser",
		"active":        true,
	})
	if err == nil {
		t.Error("expected validation error for unknown role")
	}
}

func TestLessonsValidator_InvalidStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)

	err := validators.EnsureAll(ctx, db)
	if err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	start := time.Date(2026, 10, 5, 16, 0, 0, 0, time.UTC)
	_, err = db.Collection("lessons").InsertOne(ctx, bson.M{
		"student_id": primitive.NewObjectID(),
		"type":       "one",
		"start":      start,
		"end":        start.Add(45 * time.Minute),
		"status":     "Pending",
	})
	if err == nil {
		t.Error("expected validation error for unknown lesson status")
	}
}

func TestLessonsValidator_ValidLesson(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)

	err := validators.EnsureAll(ctx, db)
	if err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	start := time.Date(2026, 10, 5, 16, 0, 0, 0, time.UTC)
	_, err = db.Collection("lessons").InsertOne(ctx, bson.M{
		"student_id": primitive.NewObjectID(),
		"group_id":   primitive.NewObjectID(),
		"type":       "group",
		"start":      start,
		"end":        start.Add(45 * time.Minute),
		"status":     "Scheduled",
		"created_at": time.Now().UTC(),
		"updated_at": time.Now().UTC(),
	})
	if err != nil {
		t.Errorf("Insert valid lesson failed: %v", err)
	}
}

func TestGroupsValidator_RequiredFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)

	err := validators.EnsureAll(ctx, db)
	if err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	_, err = db.Collection("groups").InsertOne(ctx, bson.M{
		"name": "Missing members",
	})
	if err == nil {
		t.Error("expected validation error when inserting group without member_ids")
	}
}

func TestHomeworkValidator_InvalidStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)

	err := validators.EnsureAll(ctx, db)
	if err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	_, err = db.Collection("homework").InsertOne(ctx, bson.M{
		"student_id": primitive.NewObjectID(),
		"text":       "Practice scales",
		"status":     "Done",
	})
	if err == nil {
		t.Error("expected validation error for unknown homework status")
	}
}

func TestRefreshTokens_NoValidator(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)

	err := validators.EnsureAll(ctx, db)
	if err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	// refresh_tokens has no schema attached; any shape should insert.
	_, err = db.Collection("refresh_tokens").InsertOne(ctx, bson.M{
		"anything": "goes",
	})
	if err != nil {
		t.Errorf("Insert into refresh_tokens failed: %v", err)
	}
}
