// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if appCfg.CronToken == "" {
		logger.Warn("cron_token is not set; /reminders/send will refuse requests")
	}
	if appCfg.VAPIDPublicKey == "" {
		logger.Warn("VAPID keys are not set; push reminders are disabled")
	}
	return nil
}
