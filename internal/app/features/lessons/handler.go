// internal/app/features/lessons/handler.go
package lessons

import (
	"time"

	"github.com/harmonykeys/lessonhub/internal/app/scheduling"
	lessonstore "github.com/harmonykeys/lessonhub/internal/app/store/lessons"
	studentstore "github.com/harmonykeys/lessonhub/internal/app/store/students"
	"github.com/harmonykeys/lessonhub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the feature-level handler for lessons. Edits to group
// lessons go through the scheduling engine so shared fields stay in
// step across the whole occurrence.
type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	Tokens   *auth.Tokens
	Lessons  *lessonstore.Store
	Students *studentstore.Store
	Engine   *scheduling.Engine

	// Location anchors month generation and calendar ranges; the
	// studio's home timezone.
	Location *time.Location
}

func NewHandler(db *mongo.Database, tokens *auth.Tokens, engine *scheduling.Engine, loc *time.Location, logger *zap.Logger) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		DB:       db,
		Log:      logger,
		Tokens:   tokens,
		Lessons:  lessonstore.New(db),
		Students: studentstore.New(db),
		Engine:   engine,
		Location: loc,
	}
}
