// README: Periodic discovery runner (ticker loop started from main).
package discovery

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// RunScheduler triggers a discovery run every configured interval,
// skipping ticks where the trip corpus is not ready. Failed runs are
// logged and retried on the next tick, never retried immediately.
// Returns when ctx is cancelled.
func (s *Service) RunScheduler(ctx context.Context) {
	interval := time.Duration(s.cfg.IntervalHours) * time.Hour
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.log.Info("discovery scheduler started", slog.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			s.log.Info("discovery scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Service) tick(ctx context.Context) {
	stats, err := s.Stats(ctx)
	if err != nil {
		s.log.Error("discovery readiness check failed", slog.String("error", err.Error()))
		return
	}
	if !stats.ReadyForDiscovery {
		s.log.Info("skipping discovery, not enough trips",
			slog.Int("trips_with_gps", stats.TripsWithGPS),
			slog.Int("required", stats.MinTripsRequired))
		return
	}

	report, err := s.DiscoverRoutes(ctx, 0, 0)
	if errors.Is(err, ErrAlreadyRunning) {
		return
	}
	if err != nil {
		s.log.Error("scheduled discovery failed", slog.String("error", err.Error()))
		return
	}
	s.log.Info("scheduled discovery finished",
		slog.Bool("success", report.Success),
		slog.Int("routes_discovered", report.RoutesDiscovered),
		slog.Int("routes_updated", report.RoutesUpdated),
		slog.Int("trips_processed", report.TripsProcessed))
}
