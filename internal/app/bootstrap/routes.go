// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	adminfeature "github.com/dalemusser/collabify/internal/app/features/admin"
	auditlogfeature "github.com/dalemusser/collabify/internal/app/features/auditlog"
	authidpfeature "github.com/dalemusser/collabify/internal/app/features/authidp"
	chatfeature "github.com/dalemusser/collabify/internal/app/features/chat"
	dashboardfeature "github.com/dalemusser/collabify/internal/app/features/dashboard"
	healthfeature "github.com/dalemusser/collabify/internal/app/features/health"
	idplogsfeature "github.com/dalemusser/collabify/internal/app/features/idplogs"
	projectsfeature "github.com/dalemusser/collabify/internal/app/features/projects"
	tasksfeature "github.com/dalemusser/collabify/internal/app/features/tasks"
	usersfeature "github.com/dalemusser/collabify/internal/app/features/users"
	"github.com/dalemusser/collabify/internal/app/store/audit"
	"github.com/dalemusser/collabify/internal/app/store/oauthstate"
	userprofilestore "github.com/dalemusser/collabify/internal/app/store/userprofiles"
	"github.com/dalemusser/collabify/internal/app/system/aichat"
	"github.com/dalemusser/collabify/internal/app/system/apierr"
	"github.com/dalemusser/collabify/internal/app/system/auditlog"
	"github.com/dalemusser/collabify/internal/app/system/auth"
	"github.com/dalemusser/collabify/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Version is reported by /health. Release builds set it with -ldflags.
var Version = "dev"

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. Collabify builds the session manager and
// the shared clients (identity provider, assistant, audit logger), then
// mounts one router per feature. Every router answers in JSON, including
// 404 and 405.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}
	if appCfg.JWTSecret != "" {
		sessionMgr.SetBearerVerifier(auth.NewBearerVerifier(appCfg.JWTSecret, appCfg.IdPRolesClaim))
	}

	db := deps.MongoDatabase
	idpClient := newIdPClient(appCfg, logger)
	auditLog := auditlog.New(audit.New(db), logger, auditlog.Config{
		Auth:    appCfg.AuditLogAuth,
		Project: appCfg.AuditLogProject,
		Admin:   appCfg.AuditLogAdmin,
	})
	models := appCfg.AIModels
	if len(models) == 0 {
		models = aichat.DefaultModels
	}
	assistant := aichat.New(aichat.Config{
		APIKey:  appCfg.AIAPIKey,
		BaseURL: appCfg.AIBaseURL,
		Models:  models,
		Cache:   aichat.NewModelCache(appCfg.AIModelTTL, models),
		Logger:  logger,
	})

	r := chi.NewRouter()
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		apierr.Write(w, logger, apierr.NotFound("Not found"))
	})
	r.MethodNotAllowed(apierr.MethodNotAllowedHandler)

	// Global auth middleware: loads SessionUser into context if signed in,
	// from the session cookie or a bearer token.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, Version, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication
	authHandler := authidpfeature.NewHandler(sessionMgr, auditLog, oauthstate.New(db), userprofilestore.New(db), idpClient, appCfg.BaseURL, logger)
	r.Mount("/auth", authidpfeature.Routes(authHandler))

	// Projects and their tasks
	projectsHandler := projectsfeature.NewHandler(db, auditLog, logger)
	r.Mount("/projects", projectsfeature.Routes(projectsHandler, sessionMgr))

	tasksHandler := tasksfeature.NewHandler(db, auditLog, logger)
	r.Mount("/projects/{id}/tasks", tasksfeature.Routes(tasksHandler, sessionMgr))

	dashboardHandler := dashboardfeature.NewHandler(db, logger)
	r.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler, sessionMgr))

	// Users and identity provider administration
	usersHandler := usersfeature.NewHandler(db, idpClient, auditLog, logger)
	r.Mount("/users", usersfeature.Routes(usersHandler, sessionMgr))

	adminHandler := adminfeature.NewHandler(idpClient, auditLog, logger)
	r.Mount("/admin", adminfeature.Routes(adminHandler, sessionMgr))

	idpLogsHandler := idplogsfeature.NewHandler(db, logger)
	r.Mount("/logs", idplogsfeature.Routes(idpLogsHandler, sessionMgr))

	auditHandler := auditlogfeature.NewHandler(db, logger)
	r.Mount("/audit", auditlogfeature.Routes(auditHandler, sessionMgr))

	// Assistant
	chatHandler := chatfeature.NewHandler(assistant, ratelimit.PerMinute(appCfg.ChatRatePerMinute), logger)
	r.Mount("/chat", chatfeature.Routes(chatHandler, sessionMgr))

	return r, nil
}
