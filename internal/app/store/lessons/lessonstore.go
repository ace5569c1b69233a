// internal/app/store/lessons/lessonstore.go
package lessonstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/harmonykeys/lessonhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

// ErrDuplicateLesson signals the unique (student, type, start, end)
// backstop index fired. Scheduling paths treat it as "already
// consistent", not a failure.
var ErrDuplicateLesson = errors.New("an identical lesson already exists")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("lessons")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Lesson, error) {
	var l models.Lesson
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&l); err != nil {
		return models.Lesson{}, err
	}
	return l, nil
}

func (s *Store) Create(ctx context.Context, l models.Lesson) (models.Lesson, error) {
	now := time.Now().UTC()
	l.ID = primitive.NewObjectID()
	if l.Status == "" {
		l.Status = models.StatusScheduled
	}
	l.CreatedAt = now
	l.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, l); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Lesson{}, ErrDuplicateLesson
		}
		return models.Lesson{}, err
	}
	return l, nil
}

// UpdateFields applies the $set fields to one lesson and returns the
// updated record.
func (s *Store) UpdateFields(ctx context.Context, id primitive.ObjectID, set bson.M) (models.Lesson, error) {
	set["updated_at"] = time.Now().UTC()
	var l models.Lesson
	err := s.c.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&l)
	if err != nil {
		return models.Lesson{}, err
	}
	return l, nil
}

func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListRange returns lessons with start in [from, to), sorted by start.
// studentIDs narrows the result to those students when non-empty.
func (s *Store) ListRange(ctx context.Context, from, to time.Time, studentIDs []primitive.ObjectID) ([]models.Lesson, error) {
	filter := bson.M{"start": bson.M{"$gte": from, "$lt": to}}
	if len(studentIDs) == 1 {
		filter["student_id"] = studentIDs[0]
	} else if len(studentIDs) > 1 {
		filter["student_id"] = bson.M{"$in": studentIDs}
	}
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "start", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Lesson
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
