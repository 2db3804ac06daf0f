// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/collabify/internal/app/system/aichat"
	"github.com/dalemusser/collabify/internal/app/system/auth"
	"github.com/dalemusser/collabify/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// devSessionKey is the default key; it is rejected outside dev.
const devSessionKey = "dev-only-change-me-please-0123456789ABCDEF"

// appConfigKeys defines the configuration keys for Collabify.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: COLLABIFY_MONGO_URI, COLLABIFY_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "collabify", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "session_key", Default: devSessionKey, Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: auth.DefaultSessionName, Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "24h", Desc: "Session cookie lifetime"},

	{Name: "base_url", Default: "http://localhost:8080", Desc: "Public base URL (logout landing page)"},

	// Identity provider
	{Name: "idp_domain", Default: "", Desc: "Identity provider tenant domain (e.g., collabify.us.auth0.com)"},
	{Name: "idp_client_id", Default: "", Desc: "Login application client ID"},
	{Name: "idp_client_secret", Default: "", Desc: "Login application client secret"},
	{Name: "idp_m2m_client_id", Default: "", Desc: "Management API client ID"},
	{Name: "idp_m2m_client_secret", Default: "", Desc: "Management API client secret"},
	{Name: "idp_roles_claim", Default: auth.DefaultRolesClaim, Desc: "Namespaced claim carrying global roles"},
	{Name: "jwt_secret", Default: "", Desc: "HMAC secret for bearer tokens (blank disables bearer auth)"},

	// Assistant
	{Name: "ai_api_key", Default: "", Desc: "Generative AI API key (blank disables /chat)"},
	{Name: "ai_base_url", Default: aichat.DefaultBaseURL, Desc: "Generative AI API base URL"},
	{Name: "ai_models", Default: strings.Join(aichat.DefaultModels, ","), Desc: "Comma-separated fallback model order"},
	{Name: "ai_model_ttl", Default: "1h", Desc: "How long the provider model list is cached"},
	{Name: "chat_rate_per_minute", Default: 20, Desc: "Chat requests allowed per user per minute"},

	// Background jobs
	{Name: "log_sync_interval", Default: "5m", Desc: "Identity provider log mirror interval (0 disables)"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_project", Default: "all", Desc: "Project event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Timeouts
	{Name: "timeout_short", Default: "5s", Desc: "Timeout for single-document operations"},
	{Name: "timeout_medium", Default: "10s", Desc: "Timeout for list and search operations"},
	{Name: "timeout_long", Default: "30s", Desc: "Timeout for schema setup and batch operations"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, COLLABIFY_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "COLLABIFY", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 24*time.Hour),

		BaseURL: appValues.String("base_url"),

		IdPDomain:          appValues.String("idp_domain"),
		IdPClientID:        appValues.String("idp_client_id"),
		IdPClientSecret:    appValues.String("idp_client_secret"),
		IdPM2MClientID:     appValues.String("idp_m2m_client_id"),
		IdPM2MClientSecret: appValues.String("idp_m2m_client_secret"),
		IdPRolesClaim:      appValues.String("idp_roles_claim"),
		JWTSecret:          appValues.String("jwt_secret"),

		AIAPIKey:          appValues.String("ai_api_key"),
		AIBaseURL:         appValues.String("ai_base_url"),
		AIModels:          splitList(appValues.String("ai_models")),
		AIModelTTL:        appValues.Duration("ai_model_ttl", time.Hour),
		ChatRatePerMinute: appValues.Int("chat_rate_per_minute"),

		LogSyncInterval: appValues.Duration("log_sync_interval", 5*time.Minute),

		AuditLogAuth:    appValues.String("audit_log_auth"),
		AuditLogProject: appValues.String("audit_log_project"),
		AuditLogAdmin:   appValues.String("audit_log_admin"),

		TimeoutShort:  appValues.Duration("timeout_short", 0),
		TimeoutMedium: appValues.Duration("timeout_medium", 0),
		TimeoutLong:   appValues.Duration("timeout_long", 0),
	}

	// Store timeouts apply from the first connection attempt onward.
	timeouts.Configure(timeouts.Config{
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
		Long:   appCfg.TimeoutLong,
	})

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Collabify validates the MongoDB URI format to catch configuration errors
// before attempting to connect, and refuses a weak session key outside dev.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if strings.TrimSpace(appCfg.MongoDatabase) == "" {
		return fmt.Errorf("mongo_database is required")
	}
	return validateSessionKey(coreCfg.Env, appCfg.SessionKey)
}

func validateSessionKey(env, key string) error {
	if env == "dev" {
		return nil
	}
	if key == devSessionKey {
		return fmt.Errorf("session_key must be changed from the development default in %s", env)
	}
	if len(key) < 32 {
		return fmt.Errorf("session_key must be at least 32 characters in %s (got %d)", env, len(key))
	}
	return nil
}

// splitList parses a comma-separated value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
