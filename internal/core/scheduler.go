package core

// scheduler.go provides background maintenance of the calculation history.
//
// The retention job deletes history entries older than the retention window.
// It is long-running and context-aware for graceful shutdown, and logs but
// never fails the application when a purge fails.

import (
	"context"
	"log/slog"
	"time"
)

// RetentionConfig holds configuration for the retention scheduler.
// Zero fields take the defaults below.
type RetentionConfig struct {
	RetentionDays int           // Days to keep history (default: 90)
	CheckInterval time.Duration // How often to run (default: 24h)
}

func (c RetentionConfig) withDefaults() RetentionConfig {
	if c.RetentionDays <= 0 {
		c.RetentionDays = 90
	}
	if c.CheckInterval <= 0 {
		c.CheckInterval = 24 * time.Hour
	}
	return c
}

// StartRetentionScheduler periodically purges history older than the
// retention window. It runs immediately, then every CheckInterval, until ctx
// is cancelled. It returns at once when history is disabled.
func (s *Service) StartRetentionScheduler(ctx context.Context, cfg RetentionConfig) {
	if s.history == nil {
		return
	}
	cfg = cfg.withDefaults()

	slog.Info("retention scheduler started",
		"retention_days", cfg.RetentionDays,
		"check_interval", cfg.CheckInterval.String(),
	)

	s.runRetentionJob(ctx, cfg)

	ticker := time.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("retention scheduler stopped")
			return
		case <-ticker.C:
			s.runRetentionJob(ctx, cfg)
		}
	}
}

// runRetentionJob performs one purge cycle and returns the number removed.
func (s *Service) runRetentionJob(ctx context.Context, cfg RetentionConfig) int64 {
	start := time.Now()
	cutoff := s.calc.Now().AddDate(0, 0, -cfg.RetentionDays)

	purged, err := s.history.Purge(ctx, cutoff)
	if err != nil {
		slog.Error("history purge failed", "error", err)
		return 0
	}

	s.metrics.AddHistoryPurged(purged)
	slog.Info("purged old history entries",
		"entries_purged", purged,
		"cutoff", cutoff.Format(time.RFC3339),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return purged
}
