// README: Canonical route synthesis from one trajectory cluster.
package discovery

import (
	"math"

	"dnerve/internal/types"
)

// fallbackMinutesPerKm estimates trip duration when no trip in the
// cluster recorded one.
const fallbackMinutesPerKm = 3.0

// Candidate is a synthesized route descriptor, not yet persisted. The
// coordinates are the snapped hub coordinates, not the cluster means.
type Candidate struct {
	Origin             string
	Destination        string
	OriginPos          types.Point
	DestPos            types.Point
	DistanceKm         float64
	AvgDurationMinutes float64
	TripCount          int
}

// Synthesizer converts clusters into route candidates by snapping
// averaged endpoints to the hub registry.
type Synthesizer struct {
	hubs   *HubRegistry
	snapKm float64
}

func NewSynthesizer(hubs *HubRegistry, snapKm float64) *Synthesizer {
	if snapKm <= 0 {
		snapKm = DefaultSnapKm
	}
	return &Synthesizer{hubs: hubs, snapKm: snapKm}
}

// Synthesize averages the cluster's endpoints, snaps them to hubs, and
// aggregates distance and duration. durations carries the raw trip
// durations in minutes, index-aligned with trajectories; non-positive
// entries mean the trip recorded none. It returns false when either
// endpoint fails to snap or both snap to the same hub; such clusters
// are dropped silently, they are not errors.
func (s *Synthesizer) Synthesize(trajectories []Trajectory, durations []float64) (Candidate, bool) {
	if len(trajectories) == 0 {
		return Candidate{}, false
	}

	var startLat, startLon, endLat, endLon, dist float64
	for _, t := range trajectories {
		startLat += t.Start.Lat
		startLon += t.Start.Lon
		endLat += t.End.Lat
		endLon += t.End.Lon
		dist += t.DistanceKm
	}
	// Component-wise arithmetic mean, not a geodesic mean. Fine for
	// clusters whose spread is tiny relative to Earth's radius.
	n := float64(len(trajectories))
	startLat /= n
	startLon /= n
	endLat /= n
	endLon /= n
	avgDistance := dist / n

	origin, ok := s.hubs.Nearest(startLat, startLon, s.snapKm)
	if !ok {
		return Candidate{}, false
	}
	dest, ok := s.hubs.Nearest(endLat, endLon, s.snapKm)
	if !ok {
		return Candidate{}, false
	}
	if origin.Name == dest.Name {
		// Self-loop route, not meaningful.
		return Candidate{}, false
	}

	var durSum float64
	durCount := 0
	for _, d := range durations {
		if d > 0 {
			durSum += d
			durCount++
		}
	}
	avgDuration := avgDistance * fallbackMinutesPerKm
	if durCount > 0 {
		avgDuration = durSum / float64(durCount)
	}

	return Candidate{
		Origin:             origin.Name,
		Destination:        dest.Name,
		OriginPos:          origin.Pos,
		DestPos:            dest.Pos,
		DistanceKm:         math.Round(avgDistance*10) / 10,
		AvgDurationMinutes: math.Round(avgDuration),
		TripCount:          len(trajectories),
	}, true
}
