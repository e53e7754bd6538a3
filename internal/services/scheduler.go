package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/taskbot/usecase/maintenance"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// Purger removes expired tasks across workspaces.
type Purger interface {
	PurgeAll(ctx context.Context) (maintenance.Report, error)
}

// JournalCleaner drops journal entries older than a cutoff.
type JournalCleaner interface {
	Cleanup(olderThan time.Time) (int, error)
}

// SchedulerConfig controls how often maintenance runs. Spec, when set, is a
// six-field cron expression (seconds first) and takes precedence over Interval.
type SchedulerConfig struct {
	Interval         time.Duration
	Spec             string
	JournalRetention time.Duration
}

// Scheduler periodically purges old tasks and trims the exchange journal.
type Scheduler struct {
	purger  Purger
	journal JournalCleaner
	monitor ConnectionHealth
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     SchedulerConfig
	now     func() time.Time
}

// NewScheduler wires the maintenance job. journal and monitor may be nil.
func NewScheduler(purger Purger, journal JournalCleaner, monitor ConnectionHealth, logger *zap.Logger, cfg SchedulerConfig) (*Scheduler, error) {
	if cfg.Interval < time.Second {
		cfg.Interval = time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Scheduler{
		purger:  purger,
		journal: journal,
		monitor: monitor,
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(cron.WithSeconds()),
		now:     time.Now,
	}

	schedule := cfg.Spec
	if schedule == "" {
		schedule = fmt.Sprintf("@every %s", cfg.Interval.Round(time.Second))
	}
	if _, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := s.RunOnce(ctx); err != nil {
			s.logger.Error("maintenance run failed", zap.Error(err))
		}
	}); err != nil {
		return nil, fmt.Errorf("maintenance schedule %q: %w", schedule, err)
	}

	return s, nil
}

// Start launches the cron scheduler.
func (s *Scheduler) Start() {
	if s == nil || s.cron == nil {
		return
	}
	s.cron.Start()
	s.logger.Info("maintenance scheduler started",
		zap.Duration("interval", s.cfg.Interval),
		zap.String("spec", s.cfg.Spec))
}

// Stop waits for a running job to finish or for ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	if s == nil || s.cron == nil {
		return
	}
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	s.logger.Info("maintenance scheduler stopped")
}

// RunOnce performs a single maintenance pass synchronously.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	if s.monitor != nil && !s.monitor.IsOnline() {
		s.logger.Debug("skipping maintenance (offline)")
		return nil
	}

	var result error
	if s.purger != nil {
		report, err := s.purger.PurgeAll(ctx)
		if err != nil {
			result = err
		}
		s.logger.Debug("task purge finished",
			zap.Int("workspaces", report.Workspaces),
			zap.Int64("purged", report.Total()))
	}

	if s.journal != nil && s.cfg.JournalRetention > 0 {
		removed, err := s.journal.Cleanup(s.now().Add(-s.cfg.JournalRetention))
		if err != nil {
			s.logger.Warn("journal cleanup failed", zap.Error(err))
		} else if removed > 0 {
			s.logger.Info("journal trimmed", zap.Int("removed", removed))
		}
	}
	return result
}
