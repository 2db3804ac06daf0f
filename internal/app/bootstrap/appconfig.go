// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers the
// framework-level settings (ports, TLS, logging, CORS); everything specific
// to Collabify lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: collabify-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Cookie lifetime

	// BaseURL is the public origin, used as the provider logout landing page.
	BaseURL string

	// Identity provider (regular web app for login, M2M app for the Management API)
	IdPDomain          string
	IdPClientID        string
	IdPClientSecret    string
	IdPM2MClientID     string
	IdPM2MClientSecret string
	IdPRolesClaim      string // namespaced claim carrying global roles

	// JWTSecret verifies bearer tokens; blank disables bearer auth.
	JWTSecret string

	// Generative assistant
	AIAPIKey   string
	AIBaseURL  string
	AIModels   []string      // fallback model order
	AIModelTTL time.Duration // how long the provider model list is cached

	ChatRatePerMinute int           // chat requests per user per minute
	LogSyncInterval   time.Duration // identity provider log mirror interval; 0 disables

	// Audit logging: "all" (db+log), "db", "log", or "off"
	AuditLogAuth    string
	AuditLogProject string
	AuditLogAdmin   string

	// Store operation timeouts
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
}
