// Package scheduler runs the periodic background jobs of the directory service.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	domain "samaj-directory/internal/domain/directory"
)

// JobCountsRefresh is the name the counts job reports under.
const JobCountsRefresh = "counts_refresh"

// CountsRefresher recomputes and caches the directory totals.
type CountsRefresher interface {
	RefreshCounts(ctx context.Context) (*domain.Counts, error)
}

// JobObserver records job outcomes. *metrics.Metrics implements it.
type JobObserver interface {
	ObserveJob(job string, err error)
}

// Scheduler wraps a cron runner with recovery and overlap protection.
type Scheduler struct {
	cron *cron.Cron
	jobs JobObserver
	log  *zap.Logger
}

// New creates a stopped scheduler. jobs may be nil.
func New(jobs JobObserver, log *zap.Logger) *Scheduler {
	cl := cronLogger{log: log.Sugar()}
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cl),
			cron.SkipIfStillRunning(cl),
		), cron.WithLogger(cl)),
		jobs: jobs,
		log:  log,
	}
}

// AddCountsRefresh schedules r on spec, e.g. "@every 5m" or "0 */5 * * *".
func (s *Scheduler) AddCountsRefresh(spec string, r CountsRefresher, timeout time.Duration) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.run(JobCountsRefresh, timeout, func(ctx context.Context) error {
			counts, err := r.RefreshCounts(ctx)
			if err == nil {
				s.log.Debug("counts refreshed",
					zap.Int64("families", counts.Families),
					zap.Int64("members", counts.Members),
				)
			}
			return err
		})
	})
	if err != nil {
		return fmt.Errorf("schedule %s %q: %w", JobCountsRefresh, spec, err)
	}
	return nil
}

func (s *Scheduler) run(job string, timeout time.Duration, fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	if s.jobs != nil {
		s.jobs.ObserveJob(job, err)
	}
	if err != nil {
		s.log.Error("scheduled job failed", zap.String("job", job), zap.Error(err))
		return
	}
	s.log.Info("scheduled job finished", zap.String("job", job), zap.Duration("took", time.Since(start)))
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.log.Info("Scheduler started", zap.Int("jobs", len(s.cron.Entries())))
	s.cron.Start()
}

// Stop prevents new runs and waits for running jobs or ctx, whichever ends first.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.log.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler stop: %w", ctx.Err())
	}
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
