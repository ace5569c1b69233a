// internal/app/features/groups/handler.go
package groups

import (
	"github.com/harmonykeys/lessonhub/internal/app/scheduling"
	groupstore "github.com/harmonykeys/lessonhub/internal/app/store/groups"
	lessonstore "github.com/harmonykeys/lessonhub/internal/app/store/lessons"
	"github.com/harmonykeys/lessonhub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the feature-level handler for groups. Membership edits go
// through the scheduling engine so the members' lesson instances stay
// consistent with the group.
type Handler struct {
	DB      *mongo.Database
	Log     *zap.Logger
	Tokens  *auth.Tokens
	Groups  *groupstore.Store
	Lessons *lessonstore.Store
	Engine  *scheduling.Engine
}

func NewHandler(db *mongo.Database, tokens *auth.Tokens, engine *scheduling.Engine, logger *zap.Logger) *Handler {
	return &Handler{
		DB:      db,
		Log:     logger,
		Tokens:  tokens,
		Groups:  groupstore.New(db),
		Lessons: lessonstore.New(db),
		Engine:  engine,
	}
}
