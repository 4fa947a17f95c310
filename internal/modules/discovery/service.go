// README: Discovery orchestrator; batch pipeline from trips to route upserts.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"dnerve/internal/config"
	"dnerve/internal/modules/route"
	"dnerve/internal/modules/trip"
	"dnerve/internal/types"
)

// farePerKmEGP is the flat fare estimate applied to newly discovered
// routes; tuning it is a product decision, not a code one.
const farePerKmEGP = 0.5

// ErrAlreadyRunning is returned when a discovery run is requested while
// another is in flight in this process. Cross-process exclusion is the
// deployment's responsibility.
var ErrAlreadyRunning = errors.New("discovery run already in progress")

// TripSource is the trip store as discovery sees it.
type TripSource interface {
	FetchWithGPS(ctx context.Context, since time.Time, minPoints int) ([]trip.Trip, error)
	CountAll(ctx context.Context) (int, error)
	CountWithGPS(ctx context.Context, minPoints int) (int, error)
	CountSince(ctx context.Context, cutoff time.Time) (int, error)
}

// RouteStore is the route store as discovery sees it. Discovery only
// requests upserts; the store owns the persisted state.
type RouteStore interface {
	FindByEndpoints(ctx context.Context, origin, destination string) (*route.Route, error)
	Insert(ctx context.Context, r *route.Route) error
	Update(ctx context.Context, r *route.Route) error
	CountAll(ctx context.Context) (int, error)
	CountActive(ctx context.Context) (int, error)
}

// ReportSink receives the outcome of each run.
type ReportSink interface {
	SaveLast(ctx context.Context, r Report) error
	LoadLast(ctx context.Context) (Report, bool, error)
}

type Service struct {
	trips     TripSource
	routes    RouteStore
	reports   ReportSink
	clusterer *Clusterer
	synth     *Synthesizer
	cfg       config.DiscoveryConfig
	log       *slog.Logger
	running   atomic.Bool
}

func NewService(trips TripSource, routes RouteStore, reports ReportSink, cfg config.DiscoveryConfig) *Service {
	return &Service{
		trips:     trips,
		routes:    routes,
		reports:   reports,
		clusterer: NewClusterer(cfg),
		synth:     NewSynthesizer(NewHubRegistry(), cfg.HubSnapKm),
		cfg:       cfg,
		log:       slog.Default().With(slog.String("component", "route_discovery")),
	}
}

// DiscoverRoutes runs the batch pipeline: fetch recent trips, extract
// trajectories, cluster, synthesize, and upsert routes. daysBack and
// minTrips fall back to the configured defaults when non-positive.
//
// A returned error means the run failed systemically (store failure);
// some upserts may already have taken effect, there is no all-or-nothing
// guarantee. Insufficient data returns a Success=false report and a nil
// error.
func (s *Service) DiscoverRoutes(ctx context.Context, daysBack, minTrips int) (Report, error) {
	if !s.running.CompareAndSwap(false, true) {
		return Report{}, ErrAlreadyRunning
	}
	defer s.running.Store(false)

	if daysBack <= 0 {
		daysBack = s.cfg.DaysBack
	}
	if minTrips <= 0 {
		minTrips = s.cfg.MinTrips
	}
	s.log.Info("starting route discovery", slog.Int("days_back", daysBack), slog.Int("min_trips", minTrips))

	cutoff := time.Now().UTC().AddDate(0, 0, -daysBack)
	trips, err := s.trips.FetchWithGPS(ctx, cutoff, s.cfg.MinGPSPoints)
	if err != nil {
		return Report{}, fmt.Errorf("fetch trips: %w", err)
	}
	s.log.Info("fetched trips with gps data", slog.Int("count", len(trips)))

	if len(trips) < minTrips {
		return s.finish(ctx, Report{
			TripsProcessed: len(trips),
			Message:        fmt.Sprintf("not enough trips (%d/%d); need more data", len(trips), minTrips),
		})
	}

	trajectories := make([]Trajectory, 0, len(trips))
	validTrips := make([]trip.Trip, 0, len(trips))
	skipped := 0
	for _, t := range trips {
		fixes, err := trip.ParseGPSPayload(t.GPSPayload)
		if err != nil {
			s.log.Warn("skipping trip with bad gps payload",
				slog.String("trip_id", string(t.ID)),
				slog.String("error", err.Error()))
			skipped++
			continue
		}
		summary, ok := ExtractTrajectory(fixes, s.cfg.MinGPSPoints)
		if !ok {
			skipped++
			continue
		}
		trajectories = append(trajectories, summary)
		validTrips = append(validTrips, t)
	}
	s.log.Info("extracted trajectories",
		slog.Int("valid", len(trajectories)),
		slog.Int("skipped", skipped))

	if len(trajectories) < s.cfg.MinSamples {
		return s.finish(ctx, Report{
			TripsProcessed: len(trips),
			Message:        fmt.Sprintf("not enough valid trajectories (%d)", len(trajectories)),
		})
	}

	clusters := s.clusterer.Cluster(trajectories)
	if len(clusters) == 0 {
		return s.finish(ctx, Report{
			TripsProcessed: len(trips),
			Message:        "no clusters found; trips may be too diverse",
		})
	}

	discovered := 0
	updated := 0
	for _, clusterID := range sortedClusterIDs(clusters) {
		indices := clusters[clusterID]
		clusterTrajectories := make([]Trajectory, len(indices))
		durations := make([]float64, len(indices))
		for i, idx := range indices {
			clusterTrajectories[i] = trajectories[idx]
			durations[i] = validTrips[idx].DurationMinutes
		}

		cand, ok := s.synth.Synthesize(clusterTrajectories, durations)
		if !ok {
			continue
		}
		didInsert, err := s.upsert(ctx, cand)
		if err != nil {
			// Earlier upserts in this run may already have landed.
			return Report{}, fmt.Errorf("upsert route %s - %s: %w", cand.Origin, cand.Destination, err)
		}
		if didInsert {
			discovered++
		} else {
			updated++
		}
	}

	return s.finish(ctx, Report{
		Success:          true,
		RoutesDiscovered: discovered,
		RoutesUpdated:    updated,
		TripsProcessed:   len(trips),
		ClustersFound:    len(clusters),
		Message:          fmt.Sprintf("discovery complete: %d new routes, %d updated", discovered, updated),
	})
}

// upsert merges a candidate into the route store. Existing routes keyed
// by (origin, destination) get their trip count incremented and their
// duration set to the plain two-point average of old and new. That
// biases toward recent batches when batch sizes differ; it is a known
// simplification carried over deliberately.
func (s *Service) upsert(ctx context.Context, cand Candidate) (inserted bool, err error) {
	existing, err := s.routes.FindByEndpoints(ctx, cand.Origin, cand.Destination)
	switch {
	case errors.Is(err, route.ErrNotFound):
		now := time.Now().UTC()
		r := &route.Route{
			ID:                 newRouteID(),
			Name:               cand.Origin + " - " + cand.Destination,
			Origin:             cand.Origin,
			Destination:        cand.Destination,
			OriginPos:          cand.OriginPos,
			DestPos:            cand.DestPos,
			DistanceKm:         cand.DistanceKm,
			AvgDurationMinutes: cand.AvgDurationMinutes,
			FareEGP:            math.Round(cand.DistanceKm * farePerKmEGP),
			TripCount:          cand.TripCount,
			Active:             true,
			DiscoveredAt:       now,
			UpdatedAt:          now,
		}
		if err := s.routes.Insert(ctx, r); err != nil {
			return false, err
		}
		s.log.Info("discovered new route", slog.String("route", r.Name))
		return true, nil
	case err != nil:
		return false, err
	default:
		existing.TripCount += cand.TripCount
		existing.AvgDurationMinutes = (existing.AvgDurationMinutes + cand.AvgDurationMinutes) / 2
		existing.UpdatedAt = time.Now().UTC()
		if err := s.routes.Update(ctx, existing); err != nil {
			return false, err
		}
		s.log.Info("updated existing route", slog.String("route", existing.Name))
		return false, nil
	}
}

func (s *Service) finish(ctx context.Context, r Report) (Report, error) {
	r.RanAt = time.Now().UTC()
	if s.reports != nil {
		if err := s.reports.SaveLast(ctx, r); err != nil {
			s.log.Warn("failed to save discovery report", slog.String("error", err.Error()))
		}
	}
	if r.Success {
		s.log.Info("discovery run complete", slog.String("message", r.Message))
	} else {
		s.log.Warn("discovery run aborted", slog.String("message", r.Message))
	}
	return r, nil
}

// LastReport returns the most recent run's report, if any.
func (s *Service) LastReport(ctx context.Context) (Report, bool, error) {
	if s.reports == nil {
		return Report{}, false, nil
	}
	return s.reports.LoadLast(ctx)
}

func sortedClusterIDs(clusters map[int][]int) []int {
	ids := make([]int, 0, len(clusters))
	for id := range clusters {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func newRouteID() types.ID {
	return types.ID("route_" + uuid.NewString())
}
