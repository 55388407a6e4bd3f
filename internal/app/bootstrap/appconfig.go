// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration: WAFFLE's CoreConfig
// handles framework-level settings like HTTP ports, TLS, logging level,
// and request limits. AppConfig is where everything specific to this
// application lives.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: choirhub-session)
	SessionDomain string // Cookie domain (blank means current host)

	// Base URL for OAuth redirect construction
	BaseURL string // e.g., "https://choirhub.app" or "http://localhost:3000"

	// Google OAuth configuration
	GoogleClientID     string
	GoogleClientSecret string

	// SuperAdmin allow-list. Accounts with one of these emails get the
	// super_admin claim on sync.
	SuperAdminEmails []string

	// Notification delivery-record retention
	NotificationRetention       time.Duration // how long delivery records are kept
	NotificationCleanupInterval time.Duration // how often the cleanup worker runs
}
