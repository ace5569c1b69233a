// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	authfeature "github.com/harmonykeys/lessonhub/internal/app/features/auth"
	groupsfeature "github.com/harmonykeys/lessonhub/internal/app/features/groups"
	healthfeature "github.com/harmonykeys/lessonhub/internal/app/features/health"
	homeworkfeature "github.com/harmonykeys/lessonhub/internal/app/features/homework"
	lessonsfeature "github.com/harmonykeys/lessonhub/internal/app/features/lessons"
	notificationsfeature "github.com/harmonykeys/lessonhub/internal/app/features/notifications"
	reminderjobfeature "github.com/harmonykeys/lessonhub/internal/app/features/reminderjob"
	studentsfeature "github.com/harmonykeys/lessonhub/internal/app/features/students"
	"github.com/harmonykeys/lessonhub/internal/app/scheduling"
	"github.com/harmonykeys/lessonhub/internal/app/system/auth"
	"github.com/harmonykeys/lessonhub/internal/app/system/push"
	"github.com/harmonykeys/lessonhub/internal/app/system/reminders"
)

// BuildHandler constructs the root HTTP handler for this WAFFLE app.
// WAFFLE calls this after configuration, DB connection, schema setup
// and Startup have completed.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	tokens := auth.NewTokens(appCfg.JWTSecret, appCfg.AccessTTL)
	engine := scheduling.NewEngine(db, logger)

	// Validated in ValidateConfig.
	loc, err := time.LoadLocation(appCfg.DefaultTimezone)
	if err != nil {
		return nil, err
	}

	var googleCfg *oauth2.Config
	if appCfg.GoogleClientID != "" {
		googleCfg = &oauth2.Config{
			ClientID:     appCfg.GoogleClientID,
			ClientSecret: appCfg.GoogleClientSecret,
			RedirectURL:  appCfg.BaseURL + "/auth/google/callback",
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
	}

	sender := push.NewSender(appCfg.VAPIDPublicKey, appCfg.VAPIDPrivateKey, appCfg.VAPIDSubscriber)
	reminderEngine := reminders.NewEngine(db, sender, appCfg.DefaultTimezone, logger)

	r := chi.NewRouter()

	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	authHandler := authfeature.NewHandler(db, tokens, googleCfg, logger)
	r.Mount("/auth", authfeature.Routes(authHandler))


	groupsHandler := groupsfeature.NewHandler(db, tokens, engine, logger)
	r.Mount("/groups", groupsfeature.Routes(groupsHandler))

	lessonsHandler := lessonsfeature.NewHandler(db, tokens, engine, loc, logger)
	r.Mount("/lessons", lessonsfeature.Routes(lessonsHandler))

	homeworkHandler := homeworkfeature.NewHandler(db, tokens, logger)
	r.Mount("/homework", homeworkfeature.Routes(homeworkHandler))

	studentsHandler := studentsfeature.NewHandler(db, tokens, logger)
	r.Mount("/students", studentsfeature.Routes(studentsHandler, homeworkfeature.StudentRoutes(homeworkHandler)))

	notificationsHandler := notificationsfeature.NewHandler(db, tokens, appCfg.VAPIDPublicKey, logger)
	r.Mount("/notifications", notificationsfeature.Routes(notificationsHandler))

	reminderHandler := reminderjobfeature.NewHandler(reminderEngine, appCfg.CronToken, logger)
	r.Mount("/reminders", reminderjobfeature.Routes(reminderHandler))

	return r, nil
}
