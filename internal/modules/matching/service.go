// README: Route matcher; scores free-text origin/destination pairs against known routes.
package matching

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"

	"dnerve/internal/geo"
	"dnerve/internal/modules/route"
	"dnerve/internal/types"
)

var ErrBadRequest = errors.New("bad request")

// Match confidence scores, strictly ordered.
const (
	scoreExact       = 1.0
	scorePartialBoth = 0.8
	scorePartialOne  = 0.4
)

// RouteSource is the route store as the matcher sees it. The matcher
// tolerates slightly stale lists; it never writes.
type RouteSource interface {
	ListActive(ctx context.Context) ([]route.Route, error)
}

type Service struct {
	routes RouteSource
	log    *slog.Logger
}

func NewService(routes RouteSource) *Service {
	return &Service{
		routes: routes,
		log:    slog.Default().With(slog.String("component", "route_matcher")),
	}
}

// RouteSummary is the matched route as returned to callers.
type RouteSummary struct {
	RouteID            types.ID `json:"route_id"`
	Name               string   `json:"name"`
	Origin             string   `json:"origin"`
	Destination        string   `json:"destination"`
	DistanceKm         float64  `json:"distance_km"`
	AvgDurationMinutes float64  `json:"avg_duration_minutes"`
	FareEGP            float64  `json:"fare_egp"`
}

type MatchResult struct {
	Matched    bool          `json:"matched"`
	Route      *RouteSummary `json:"route,omitempty"`
	MatchType  string        `json:"match_type"`
	Confidence float64       `json:"confidence"`
	Suggestion string        `json:"suggestion,omitempty"`
}

// MatchRoute scores the origin/destination texts against every active
// route and returns the best match. Scores: 1.0 when both texts resolve
// to the route's canonical endpoint names, 0.8 when both endpoints pass
// the loose substring test, 0.4 when exactly one does. The strictly
// highest score wins; ties keep the earlier route in store order.
func (s *Service) MatchRoute(ctx context.Context, originText, destText string) (MatchResult, error) {
	q := newQuery(originText, destText)
	if q.originNorm == "" || q.destNorm == "" {
		return MatchResult{}, ErrBadRequest
	}

	routes, err := s.routes.ListActive(ctx)
	if err != nil {
		return MatchResult{}, err
	}

	var best *route.Route
	bestScore := 0.0
	for i := range routes {
		score := scoreRoute(&routes[i], q)
		if score > bestScore {
			bestScore = score
			best = &routes[i]
		}
	}

	if best == nil || bestScore < scorePartialOne {
		return MatchResult{
			MatchType:  "none",
			Suggestion: "No matching route found. Try selecting from popular routes.",
		}, nil
	}

	matchType := "partial"
	if bestScore == scoreExact {
		matchType = "exact"
	}
	return MatchResult{
		Matched: true,
		Route: &RouteSummary{
			RouteID:            best.ID,
			Name:               best.Name,
			Origin:             best.Origin,
			Destination:        best.Destination,
			DistanceKm:         best.DistanceKm,
			AvgDurationMinutes: best.AvgDurationMinutes,
			FareEGP:            best.FareEGP,
		},
		MatchType:  matchType,
		Confidence: bestScore,
	}, nil
}

type query struct {
	originNorm    string
	destNorm      string
	originCanon   string
	originCanonOK bool
	destCanon     string
	destCanonOK   bool
}

func newQuery(originText, destText string) query {
	q := query{
		originNorm: NormalizeText(originText),
		destNorm:   NormalizeText(destText),
	}
	q.originCanon, q.originCanonOK = CanonicalName(originText)
	q.destCanon, q.destCanonOK = CanonicalName(destText)
	return q
}

func scoreRoute(r *route.Route, q query) float64 {
	routeOrigin := NormalizeText(r.Origin)
	routeDest := NormalizeText(r.Destination)

	if q.originCanonOK && q.destCanonOK {
		routeOriginCanon, originOK := CanonicalName(r.Origin)
		routeDestCanon, destOK := CanonicalName(r.Destination)
		if originOK && destOK && q.originCanon == routeOriginCanon && q.destCanon == routeDestCanon {
			return scoreExact
		}
	}

	originMatch := looseMatch(q.originNorm, routeOrigin, q.originCanon, q.originCanonOK)
	destMatch := looseMatch(q.destNorm, routeDest, q.destCanon, q.destCanonOK)
	switch {
	case originMatch && destMatch:
		return scorePartialBoth
	case originMatch || destMatch:
		return scorePartialOne
	default:
		return 0
	}
}

// looseMatch is the substring test: query text inside the route name,
// route name inside the query text, or the query's canonical name inside
// the route name.
func looseMatch(queryNorm, routeNorm, canon string, canonOK bool) bool {
	if strings.Contains(routeNorm, queryNorm) || strings.Contains(queryNorm, routeNorm) {
		return true
	}
	return canonOK && strings.Contains(routeNorm, canon)
}

// EstimateDistance estimates road distance between two coordinate pairs
// using the straight-line distance and the fixed road factor.
func EstimateDistance(originLat, originLon, destLat, destLon float64) float64 {
	return math.Round(geo.RoadDistanceKm(originLat, originLon, destLat, destLon)*100) / 100
}

// NearestHub is a deduplicated route origin close to a query point.
type NearestHub struct {
	Name       string      `json:"name"`
	Pos        types.Point `json:"pos"`
	DistanceKm float64     `json:"distance_km"`
}

// FindNearestHub scans distinct active route origins and returns the
// closest one within maxKm, using road-factor-adjusted distance.
func (s *Service) FindNearestHub(ctx context.Context, lat, lon, maxKm float64) (NearestHub, bool, error) {
	routes, err := s.routes.ListActive(ctx)
	if err != nil {
		return NearestHub{}, false, err
	}

	seen := make(map[string]struct{})
	var nearest NearestHub
	found := false
	minDist := math.Inf(1)
	for _, r := range routes {
		if _, ok := seen[r.Origin]; ok {
			continue
		}
		seen[r.Origin] = struct{}{}

		d := EstimateDistance(lat, lon, r.OriginPos.Lat, r.OriginPos.Lon)
		if d < minDist && d <= maxKm {
			minDist = d
			nearest = NearestHub{Name: r.Origin, Pos: r.OriginPos, DistanceKm: d}
			found = true
		}
	}
	return nearest, found, nil
}
