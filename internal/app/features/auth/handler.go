// internal/app/features/auth/handler.go
package auth

import (
	accountstore "github.com/harmonykeys/lessonhub/internal/app/store/accounts"
	refreshtokenstore "github.com/harmonykeys/lessonhub/internal/app/store/refreshtokens"
	userstore "github.com/harmonykeys/lessonhub/internal/app/store/users"
	"github.com/harmonykeys/lessonhub/internal/app/system/auth"
	"github.com/harmonykeys/lessonhub/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// Handler serves login, token refresh and Google sign-in.
type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	Tokens   *auth.Tokens
	Users    *userstore.Store
	Refresh  *refreshtokenstore.Store
	Accounts *accountstore.Store
	Limiter  *ratelimit.LoginLimiter

	// Google is nil when Google sign-in is not configured.
	Google *oauth2.Config
}

func NewHandler(db *mongo.Database, tokens *auth.Tokens, google *oauth2.Config, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		Tokens:   tokens,
		Users:    userstore.New(db),
		Refresh:  refreshtokenstore.New(db),
		Accounts: accountstore.New(db),
		Limiter:  ratelimit.NewLoginLimiter(),
		Google:   google,
	}
}
