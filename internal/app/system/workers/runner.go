// internal/app/system/workers/runner.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/collabify/internal/app/system/tasks"
	"github.com/dalemusser/collabify/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Runner runs background jobs on their intervals until stopped.
type Runner struct {
	jobs   []tasks.Job
	log    *zap.Logger
	stopCh chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// NewRunner creates a runner for jobs. Jobs with a non-positive interval
// are skipped.
func NewRunner(logger *zap.Logger, jobs ...tasks.Job) *Runner {
	return &Runner{
		jobs:   jobs,
		log:    logger,
		stopCh: make(chan struct{}),
	}
}

// Start launches one goroutine per job.
func (w *Runner) Start() {
	for _, job := range w.jobs {
		if job.Interval <= 0 || job.Run == nil {
			w.log.Warn("background job disabled", zap.String("job", job.Name))
			continue
		}
		w.wg.Add(1)
		go w.run(job)
		w.log.Info("background job started",
			zap.String("job", job.Name),
			zap.Duration("interval", job.Interval))
	}
}

// Stop signals every job to stop and waits for in-flight runs to finish.
// It is safe to call more than once.
func (w *Runner) Stop() {
	w.once.Do(func() {
		close(w.stopCh)
		w.wg.Wait()
		w.log.Info("background jobs stopped")
	})
}

func (w *Runner) run(job tasks.Job) {
	defer w.wg.Done()

	if job.RunAtStart {
		w.runOnce(job)
	}

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.runOnce(job)
		}
	}
}

func (w *Runner) runOnce(job tasks.Job) {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Long())
	defer cancel()

	// Abort the run when Stop is called mid-flight.
	go func() {
		select {
		case <-w.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := job.Run(ctx); err != nil {
		w.log.Error("background job failed",
			zap.String("job", job.Name),
			zap.Error(err))
	}
}
