// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"strings"
	"sync"

	idplogstore "github.com/dalemusser/collabify/internal/app/store/idplogs"
	"github.com/dalemusser/collabify/internal/app/store/oauthstate"
	"github.com/dalemusser/collabify/internal/app/system/idp"
	"github.com/dalemusser/collabify/internal/app/system/tasks"
	"github.com/dalemusser/collabify/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

var (
	runnerMu sync.Mutex
	runner   *workers.Runner
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. Collabify
// starts its background jobs here: the identity provider log mirror and
// expired login state cleanup.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	jobs := []tasks.Job{
		tasks.OAuthStateCleanupJob(oauthstate.New(deps.MongoDatabase), logger),
	}

	client := newIdPClient(appCfg, logger)
	if appCfg.IdPM2MClientID != "" && appCfg.LogSyncInterval > 0 {
		jobs = append(jobs, tasks.IdPLogSyncJob(client, idplogstore.New(deps.MongoDatabase), logger, appCfg.LogSyncInterval))
	} else {
		logger.Info("identity provider log sync disabled")
	}

	r := workers.NewRunner(logger, jobs...)
	r.Start()

	runnerMu.Lock()
	runner = r
	runnerMu.Unlock()
	return nil
}

// stopWorkers stops the background jobs started by Startup, if any.
func stopWorkers() {
	runnerMu.Lock()
	r := runner
	runner = nil
	runnerMu.Unlock()
	if r != nil {
		r.Stop()
	}
}

// newIdPClient builds the identity provider client from app config.
func newIdPClient(appCfg AppConfig, logger *zap.Logger) *idp.Client {
	base := strings.TrimRight(appCfg.BaseURL, "/")
	return idp.New(idp.Config{
		Domain:          appCfg.IdPDomain,
		ClientID:        appCfg.IdPClientID,
		ClientSecret:    appCfg.IdPClientSecret,
		RedirectURL:     base + "/auth/callback",
		M2MClientID:     appCfg.IdPM2MClientID,
		M2MClientSecret: appCfg.IdPM2MClientSecret,
		RolesClaim:      appCfg.IdPRolesClaim,
	}, logger)
}
