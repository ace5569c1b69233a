// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (ports, TLS,
// logging, CORS). AppConfig is everything specific to this
// application: database connection, token signing, push keys, and the
// studio defaults the scheduling engine needs.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Bearer-token auth
	JWTSecret string
	AccessTTL time.Duration

	// Static token the cron scheduler presents to /reminders/send
	CronToken string

	// Web Push (VAPID) configuration
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	VAPIDSubscriber string

	// Studio defaults
	DefaultTimezone string

	// Google OAuth configuration (sign-in is disabled when blank)
	GoogleClientID     string
	GoogleClientSecret string

	// Base URL for the OAuth callback
	BaseURL string
}
