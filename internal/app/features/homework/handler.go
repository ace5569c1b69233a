// internal/app/features/homework/handler.go
package homework

import (
	homeworkstore "github.com/harmonykeys/lessonhub/internal/app/store/homework"
	studentstore "github.com/harmonykeys/lessonhub/internal/app/store/students"
	"github.com/harmonykeys/lessonhub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the feature-level handler for homework assignments.
type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	Tokens   *auth.Tokens
	Homework *homeworkstore.Store
	Students *studentstore.Store
}

func NewHandler(db *mongo.Database, tokens *auth.Tokens, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		Tokens:   tokens,
		Homework: homeworkstore.New(db),
		Students: studentstore.New(db),
	}
}
