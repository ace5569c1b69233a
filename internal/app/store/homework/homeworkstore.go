// internal/app/store/homework/homeworkstore.go
package homeworkstore

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
	return &Store{c: db.Collection("homework")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Homework, error) {
	var hw models.Homework
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&hw); err != nil {
		return models.Homework{}, err
	}
	return hw, nil
}

func (s *Store) Create(ctx context.Context, studentID primitive.ObjectID, text string) (models.Homework, error) {
	now := time.Now().UTC()
	hw := models.Homework{
		ID:        primitive.NewObjectID(),
		StudentID: studentID,
		Text:      text,
		Status:    models.HomeworkAssigned,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.c.InsertOne(ctx, hw); err != nil {
		return models.Homework{}, err
	}
	return hw, nil
}

func (s *Store) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (models.Homework, error) {
	set["updated_at"] = time.Now().UTC()
	var hw models.Homework
	err := s.c.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&hw)
	if err != nil {
		return models.Homework{}, err
	}
	return hw, nil
}

func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListByStudents returns homework for the given students, newest first.
func (s *Store) ListByStudents(ctx context.Context, studentIDs []primitive.ObjectID) ([]models.Homework, error) {
	if len(studentIDs) == 0 {
		return nil, nil
	}
	filter := bson.M{"student_id": bson.M{"$in": studentIDs}}
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Homework
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
