package scheduler

import (
	"context"
	"fmt"
	"time"

	"ecg-academy/internal/dto"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// refreshTimeout bounds one leaderboard recomputation.
const refreshTimeout = 2 * time.Minute

// StatsRefresher recomputes and caches the admin leaderboard.
type StatsRefresher interface {
	RefreshUserStats(ctx context.Context) ([]dto.AdminUserStatRow, error)
}

// Scheduler manages periodic background jobs.
type Scheduler struct {
	scheduler *gocron.Scheduler
	refresher StatsRefresher
	interval  time.Duration
	logger    *zap.Logger
}

// New creates a scheduler that refreshes admin stats every interval.
func New(refresher StatsRefresher, interval time.Duration, logger *zap.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		refresher: refresher,
		interval:  interval,
		logger:    logger,
	}
}

// Start registers the jobs and runs them in the background. The first refresh runs immediately.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		return fmt.Errorf("invalid stats refresh interval %s", s.interval)
	}
	if _, err := s.scheduler.Every(s.interval).Do(s.RefreshStats); err != nil {
		return fmt.Errorf("failed to schedule stats refresh: %w", err)
	}
	s.scheduler.StartAsync()
	s.logger.Info("Scheduler started", zap.Duration("stats_refresh_interval", s.interval))
	return nil
}

// Stop terminates all scheduled jobs.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// RefreshStats runs one leaderboard refresh. Failures are logged and retried on the next tick.
func (s *Scheduler) RefreshStats() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	start := time.Now()
	rows, err := s.refresher.RefreshUserStats(ctx)
	if err != nil {
		s.logger.Error("admin stats refresh failed", zap.Error(err))
		return
	}
	s.logger.Info("admin stats refreshed", zap.Int("users", len(rows)), zap.Duration("took", time.Since(start)))
}
