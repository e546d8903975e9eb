package core

// scheduler.go runs the import history purge.
//
// The job runs once at start, then every CheckInterval, and stops when
// the context is cancelled. A failed purge is logged and retried on the
// next tick.

import (
	"context"
	"log/slog"
	"time"
)

// PurgeConfig controls the history purge job.
type PurgeConfig struct {
	RetentionDays int           // Days to keep history entries (default: 180)
	CheckInterval time.Duration // How often to run (default: 24h)
}

func (c PurgeConfig) withDefaults() PurgeConfig {
	if c.RetentionDays <= 0 {
		c.RetentionDays = 180
	}
	if c.CheckInterval <= 0 {
		c.CheckInterval = 24 * time.Hour
	}
	return c
}

// StartHistoryPurge blocks, purging old history entries until ctx is
// cancelled. Run it in its own goroutine.
func (s *Service) StartHistoryPurge(ctx context.Context, cfg PurgeConfig) {
	if s.history == nil {
		return
	}
	cfg = cfg.withDefaults()

	slog.Info("history purge started",
		"retention_days", cfg.RetentionDays,
		"interval", cfg.CheckInterval.String(),
	)

	s.runPurge(ctx, cfg)

	ticker := time.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("history purge stopped")
			return
		case <-ticker.C:
			s.runPurge(ctx, cfg)
		}
	}
}

// runPurge performs one purge cycle.
func (s *Service) runPurge(ctx context.Context, cfg PurgeConfig) {
	start := time.Now()
	cutoff := s.now().AddDate(0, 0, -cfg.RetentionDays)

	purged, err := s.history.Purge(ctx, cutoff)
	if err != nil {
		slog.Error("history purge failed", "error", err)
		return
	}

	slog.Info("purged import history",
		"entries_purged", purged,
		"cutoff", cutoff.Format(time.RFC3339),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
