// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	idplogstore "github.com/dalemusser/collabify/internal/app/store/idplogs"
	"github.com/dalemusser/collabify/internal/app/store/oauthstate"
	"github.com/dalemusser/collabify/internal/domain/models"
	"go.uber.org/zap"
)

// Job is a named unit of periodic background work.
type Job struct {
	Name     string
	Interval time.Duration
	// RunAtStart runs the job once immediately instead of waiting a full
	// interval.
	RunAtStart bool
	Run        func(ctx context.Context) error
}

// LogSource fetches the newest identity provider log events.
type LogSource interface {
	RecentLogs(ctx context.Context) ([]models.IdPLog, error)
}

// IdPLogSyncJob mirrors the newest identity provider logs into idp_logs.
// Events already stored are replaced, so overlapping windows are safe.
func IdPLogSyncJob(src LogSource, logs *idplogstore.Store, logger *zap.Logger, interval time.Duration) Job {
	return Job{
		Name:       "idp-log-sync",
		Interval:   interval,
		RunAtStart: true,
		Run: func(ctx context.Context) error {
			fetched, err := src.RecentLogs(ctx)
			if err != nil {
				return err
			}
			n, err := logs.UpsertMany(ctx, fetched)
			if err != nil {
				return err
			}
			if n > 0 {
				logger.Info("mirrored identity provider logs",
					zap.Int64("new", n),
					zap.Int("fetched", len(fetched)))
			}
			return nil
		},
	}
}

// OAuthStateCleanupJob creates a job that removes expired OAuth state tokens.
// This is a backup for when MongoDB's TTL index cleanup is delayed.
func OAuthStateCleanupJob(stateStore *oauthstate.Store, logger *zap.Logger) Job {
	return Job{
		Name:     "oauth-state-cleanup",
		Interval: 1 * time.Hour,
		Run: func(ctx context.Context) error {
			count, err := stateStore.CleanupExpired(ctx)
			if err != nil {
				return err
			}
			if count > 0 {
				logger.Debug("cleaned up expired OAuth states", zap.Int64("count", count))
			}
			return nil
		},
	}
}
