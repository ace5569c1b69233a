// internal/app/features/students/handler.go
package students

import (
	studentstore "github.com/harmonykeys/lessonhub/internal/app/store/students"
	userstore "github.com/harmonykeys/lessonhub/internal/app/store/users"
	"github.com/harmonykeys/lessonhub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the feature-level handler for student records.
type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	Tokens   *auth.Tokens
	Students *studentstore.Store
	Users    *userstore.Store
}

func NewHandler(db *mongo.Database, tokens *auth.Tokens, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		Tokens:   tokens,
		Students: studentstore.New(db),
		Users:    userstore.New(db),
	}
}
