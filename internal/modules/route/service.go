// README: Route read service (listing, proximity search, commuter ETA).
package route

import (
	"context"
	"math"

	"dnerve/internal/geo"
	"dnerve/internal/types"
)

// walkSpeedKmh is the assumed commuter walking speed for ETA estimates.
const walkSpeedKmh = 5.0

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

func (s *Service) List(ctx context.Context, activeOnly bool, limit, offset int) ([]Route, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.List(ctx, activeOnly, limit, offset)
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Route, error) {
	return s.store.Get(ctx, id)
}

// NearbyRoute is a route annotated with the distance from the queried
// location to its origin.
type NearbyRoute struct {
	Route
	DistanceKm float64
}

// Nearby returns active routes whose origin lies within radiusKm of the
// given location, closest first.
func (s *Service) Nearby(ctx context.Context, lat, lon, radiusKm float64) ([]NearbyRoute, error) {
	routes, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return nearbyRoutes(routes, lat, lon, radiusKm), nil
}

// SearchQuery asks for routes running between two coordinate areas.
type SearchQuery struct {
	Origin   types.Point
	Dest     types.Point
	RadiusKm float64
}

// SearchResult annotates a route with endpoint distances from the query.
type SearchResult struct {
	Route
	OriginDistanceKm float64
	DestDistanceKm   float64
}

// Search returns active routes whose endpoints both fall within the
// query radius, sorted by combined endpoint distance.
func (s *Service) Search(ctx context.Context, q SearchQuery) ([]SearchResult, error) {
	if !q.Origin.Valid() || !q.Dest.Valid() || q.RadiusKm <= 0 {
		return nil, ErrBadRequest
	}
	routes, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return searchRoutes(routes, q), nil
}

// ETA estimates door-to-door time for a commuter: walk to the route
// origin at walking speed, then ride for the route's average duration.
type ETA struct {
	RouteID         types.ID
	RouteName       string
	WalkDistanceKm  float64
	WalkTimeMinutes float64
	RideMinutes     float64
	TotalMinutes    float64
}

func (s *Service) EstimateETA(ctx context.Context, id types.ID, from types.Point) (*ETA, error) {
	if !from.Valid() {
		return nil, ErrBadRequest
	}
	r, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	walkKm := geo.DistanceKm(from.Lat, from.Lon, r.OriginPos.Lat, r.OriginPos.Lon)
	walkMin := walkKm / walkSpeedKmh * 60
	return &ETA{
		RouteID:         r.ID,
		RouteName:       r.Name,
		WalkDistanceKm:  round2(walkKm),
		WalkTimeMinutes: round1(walkMin),
		RideMinutes:     r.AvgDurationMinutes,
		TotalMinutes:    round1(walkMin + r.AvgDurationMinutes),
	}, nil
}

func nearbyRoutes(routes []Route, lat, lon, radiusKm float64) []NearbyRoute {
	var out []NearbyRoute
	for _, r := range routes {
		d := geo.DistanceKm(lat, lon, r.OriginPos.Lat, r.OriginPos.Lon)
		if d <= radiusKm {
			out = append(out, NearbyRoute{Route: r, DistanceKm: round2(d)})
		}
	}
	sortByKey(out, func(n NearbyRoute) float64 { return n.DistanceKm })
	return out
}

func searchRoutes(routes []Route, q SearchQuery) []SearchResult {
	var out []SearchResult
	for _, r := range routes {
		originDist := geo.DistanceKm(q.Origin.Lat, q.Origin.Lon, r.OriginPos.Lat, r.OriginPos.Lon)
		destDist := geo.DistanceKm(q.Dest.Lat, q.Dest.Lon, r.DestPos.Lat, r.DestPos.Lon)
		if originDist <= q.RadiusKm && destDist <= q.RadiusKm {
			out = append(out, SearchResult{
				Route:            r,
				OriginDistanceKm: round2(originDist),
				DestDistanceKm:   round2(destDist),
			})
		}
	}
	sortByKey(out, func(sr SearchResult) float64 { return sr.OriginDistanceKm + sr.DestDistanceKm })
	return out
}

// sortByKey performs an insertion sort (fine for small N) on any slice
// where each element exposes a sort key via the accessor function.
func sortByKey[T any](items []T, key func(T) float64) {
	for i := 1; i < len(items); i++ {
		k := items[i]
		j := i - 1
		for j >= 0 && key(items[j]) > key(k) {
			items[j+1] = items[j]
			j--
		}
		items[j+1] = k
	}
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
