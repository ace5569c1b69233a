package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/harmonykeys/lessonhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates a test user with the given email and role.
func (f *Fixtures) CreateUser(ctx context.Context, email, role string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:           primitive.NewObjectID(),
		Email:        email,
		PasswordHash: "$2a$10$test-not-a-real-hash",
		Role:         role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateStudent creates an active test student linked to a portal user.
func (f *Fixtures) CreateStudent(ctx context.Context, userID primitive.ObjectID, name, program string) models.Student {
	f.t.Helper()

	now := time.Now().UTC()
	student := models.Student{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Name:      name,
		Program:   program,
		Active:    true,
		Timezone:  "America/New_York",
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("students").InsertOne(ctx, student); err != nil {
		f.t.Fatalf("failed to create test student: %v", err)
	}
	return student
}

// CreateStudentWithSlot creates an active student with a default
// weekly slot, as the month generator expects.
func (f *Fixtures) CreateStudentWithSlot(ctx context.Context, name, program string, weekday int, at string) models.Student {
	f.t.Helper()

	now := time.Now().UTC()
	student := models.Student{
		ID:          primitive.NewObjectID(),
		UserID:      primitive.NewObjectID(),
		Name:        name,
		Program:     program,
		Active:      true,
		Timezone:    "America/New_York",
		DefaultSlot: &models.DefaultSlot{Weekday: weekday, Time: at},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := f.db.Collection("students").InsertOne(ctx, student); err != nil {
		f.t.Fatalf("failed to create test student: %v", err)
	}
	return student
}

// CreateGroup creates an active test group with the given members.
func (f *Fixtures) CreateGroup(ctx context.Context, name string, memberIDs ...primitive.ObjectID) models.Group {
	f.t.Helper()

	if memberIDs == nil {
		memberIDs = []primitive.ObjectID{}
	}
	now := time.Now().UTC()
	group := models.Group{
		ID:        primitive.NewObjectID(),
		Name:      name,
		MemberIDs: memberIDs,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("groups").InsertOne(ctx, group); err != nil {
		f.t.Fatalf("failed to create test group: %v", err)
	}
	return group
}

// CreateLesson inserts a lesson document as-is, filling in id and
// timestamps when missing.
func (f *Fixtures) CreateLesson(ctx context.Context, lesson models.Lesson) models.Lesson {
	f.t.Helper()

	if lesson.ID.IsZero() {
		lesson.ID = primitive.NewObjectID()
	}
	if lesson.Status == "" {
		lesson.Status = models.StatusScheduled
	}
	now := time.Now().UTC()
	if lesson.CreatedAt.IsZero() {
		lesson.CreatedAt = now
	}
	if lesson.UpdatedAt.IsZero() {
		lesson.UpdatedAt = now
	}

	if _, err := f.db.Collection("lessons").InsertOne(ctx, lesson); err != nil {
		f.t.Fatalf("failed to create test lesson: %v", err)
	}
	return lesson
}

// GroupLesson is shorthand for a group-type lesson fixture.
func (f *Fixtures) GroupLesson(ctx context.Context, studentID primitive.ObjectID, groupID *primitive.ObjectID, start, end time.Time, status string) models.Lesson {
	f.t.Helper()
	sid := studentID
	return f.CreateLesson(ctx, models.Lesson{
		StudentID: &sid,
		GroupID:   groupID,
		Type:      models.LessonTypeGroup,
		Start:     start,
		End:       end,
		Status:    status,
	})
}
