// README: Discovery readiness statistics for the stats endpoint and scheduler.
package discovery

import (
	"context"
	"math"
	"time"
)

// Stats describes how ready the trip corpus is for a discovery run.
type Stats struct {
	TotalTrips         int     `json:"total_trips"`
	TripsWithGPS       int     `json:"trips_with_gps"`
	GPSCoveragePercent float64 `json:"gps_coverage_percent"`
	RecentTrips7d      int     `json:"recent_trips_7d"`
	TotalRoutes        int     `json:"total_routes"`
	ActiveRoutes       int     `json:"active_routes"`
	ReadyForDiscovery  bool    `json:"ready_for_discovery"`
	MinTripsRequired   int     `json:"min_trips_required"`
	Params             Params  `json:"dbscan_params"`
}

// Params echoes the clustering configuration for operators.
type Params struct {
	EpsilonMeters float64 `json:"epsilon_meters"`
	MinSamples    int     `json:"min_samples"`
	MinGPSPoints  int     `json:"min_gps_points"`
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	totalTrips, err := s.trips.CountAll(ctx)
	if err != nil {
		return Stats{}, err
	}
	withGPS, err := s.trips.CountWithGPS(ctx, s.cfg.MinGPSPoints)
	if err != nil {
		return Stats{}, err
	}
	recent, err := s.trips.CountSince(ctx, time.Now().UTC().AddDate(0, 0, -7))
	if err != nil {
		return Stats{}, err
	}
	totalRoutes, err := s.routes.CountAll(ctx)
	if err != nil {
		return Stats{}, err
	}
	activeRoutes, err := s.routes.CountActive(ctx)
	if err != nil {
		return Stats{}, err
	}

	coverage := 0.0
	if totalTrips > 0 {
		coverage = math.Round(float64(withGPS)/float64(totalTrips)*1000) / 10
	}
	return Stats{
		TotalTrips:         totalTrips,
		TripsWithGPS:       withGPS,
		GPSCoveragePercent: coverage,
		RecentTrips7d:      recent,
		TotalRoutes:        totalRoutes,
		ActiveRoutes:       activeRoutes,
		ReadyForDiscovery:  withGPS >= s.cfg.MinTrips,
		MinTripsRequired:   s.cfg.MinTrips,
		Params: Params{
			EpsilonMeters: s.cfg.EpsilonMeters,
			MinSamples:    s.cfg.MinSamples,
			MinGPSPoints:  s.cfg.MinGPSPoints,
		},
	}, nil
}
