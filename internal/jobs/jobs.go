// Package jobs runs the periodic maintenance of the notifier on cron schedules.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/wb-go/wbf/zlog"
)

// Job is one unit of periodic work.
type Job func(ctx context.Context) error

// Scheduler runs registered jobs on cron specs. A run never overlaps the
// previous run of the same job.
type Scheduler struct {
	cron *cron.Cron
	ctx  context.Context
}

func New() *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger))),
		ctx:  context.Background(),
	}
}

// Add registers job under name. spec accepts the standard five fields and
// descriptors such as "@every 1h".
func (s *Scheduler) Add(spec, name string, job Job) error {
	_, err := s.cron.AddFunc(spec, func() {
		start := time.Now()
		if err := job(s.ctx); err != nil {
			zlog.Logger.Error().Err(err).Str("job", name).Msg("job failed")
			return
		}
		zlog.Logger.Debug().Str("job", name).Dur("took", time.Since(start)).Msg("job finished")
	})
	if err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}

	zlog.Logger.Info().Str("job", name).Str("spec", spec).Msg("job scheduled")

	return nil
}

// Len returns the number of registered jobs.
func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

// Run starts the jobs and blocks until ctx is done, then waits for running jobs.
func (s *Scheduler) Run(ctx context.Context) {
	s.ctx = ctx
	s.cron.Start()

	<-ctx.Done()

	<-s.cron.Stop().Done()
	zlog.Logger.Info().Msg("jobs stopped")
}

type pruner interface {
	PruneArchived(ctx context.Context, retention time.Duration) (int, error)
}

// PruneArchived removes archived notifications older than retention.
func PruneArchived(p pruner, retention time.Duration) Job {
	return func(ctx context.Context) error {
		n, err := p.PruneArchived(ctx, retention)
		if err != nil {
			return err
		}
		if n > 0 {
			zlog.Logger.Info().Int("removed", n).Dur("retention", retention).Msg("archived notifications pruned")
		}
		return nil
	}
}

type cleaner interface {
	Cleanup(ctx context.Context) error
}

// BoundaryCleanup posts the periodic cleanup event to a device boundary.
func BoundaryCleanup(c cleaner) Job {
	return c.Cleanup
}

type prober interface {
	Check(ctx context.Context) bool
}

// Connectivity probes the backend; the monitor triggers a sync when it comes back.
func Connectivity(p prober) Job {
	return func(ctx context.Context) error {
		p.Check(ctx)
		return nil
	}
}
