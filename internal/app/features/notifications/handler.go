// internal/app/features/notifications/handler.go
package notifications

import (
	pushsubstore "github.com/harmonykeys/lessonhub/internal/app/store/pushsubs"
	settingsstore "github.com/harmonykeys/lessonhub/internal/app/store/settings"
	userstore "github.com/harmonykeys/lessonhub/internal/app/store/users"
	"github.com/harmonykeys/lessonhub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler manages push subscriptions, per-user reminder preferences
// and the studio-wide notification settings.
type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	Tokens   *auth.Tokens
	Subs     *pushsubstore.Store
	Settings *settingsstore.Store
	Users    *userstore.Store

	// VAPIDPublicKey is handed to browsers for pushManager.subscribe.
	VAPIDPublicKey string
}

func NewHandler(db *mongo.Database, tokens *auth.Tokens, vapidPublicKey string, logger *zap.Logger) *Handler {
	return &Handler{
		DB:             db,
		Log:            logger,
		Tokens:         tokens,
		Subs:           pushsubstore.New(db),
		Settings:       settingsstore.New(db),
		Users:          userstore.New(db),
		VAPIDPublicKey: vapidPublicKey,
	}
}
