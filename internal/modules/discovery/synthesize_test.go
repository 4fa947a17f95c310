// README: Route synthesis tests (snapping, rejection, aggregation).
package discovery

import (
	"math"
	"testing"

	"dnerve/internal/types"
)

func newTestSynthesizer() *Synthesizer {
	return NewSynthesizer(NewHubRegistry(), DefaultSnapKm)
}

func clusterOf(n int, startLat, startLon, endLat, endLon, distanceKm float64) []Trajectory {
	out := make([]Trajectory, n)
	for i := range out {
		out[i] = Trajectory{
			Start:      types.Point{Lat: startLat, Lon: startLon},
			End:        types.Point{Lat: endLat, Lon: endLon},
			DistanceKm: distanceKm,
			PointCount: 15,
		}
	}
	return out
}

func TestSynthesize_SnapsToHubs(t *testing.T) {
	s := newTestSynthesizer()
	trajectories := clusterOf(5, 30.0450, 31.2350, 30.0625, 31.2470, 2.8)
	durations := []float64{12, 14, 0, 16, 13}

	cand, ok := s.Synthesize(trajectories, durations)
	if !ok {
		t.Fatal("expected a candidate")
	}
	if cand.Origin != "Tahrir Square" {
		t.Errorf("origin = %q, want Tahrir Square", cand.Origin)
	}
	if cand.Destination != "Ramses Square" {
		t.Errorf("destination = %q, want Ramses Square", cand.Destination)
	}
	// Coordinates are the hub's, not the cluster mean's.
	if cand.OriginPos != (types.Point{Lat: 30.0444, Lon: 31.2357}) {
		t.Errorf("origin pos = %+v, want hub coordinates", cand.OriginPos)
	}
	if cand.TripCount != 5 {
		t.Errorf("trip count = %d, want 5", cand.TripCount)
	}
	if cand.DistanceKm != 2.8 {
		t.Errorf("distance = %f, want 2.8", cand.DistanceKm)
	}
	// Mean of the four positive durations: (12+14+16+13)/4 = 13.75 → 14.
	if cand.AvgDurationMinutes != 14 {
		t.Errorf("duration = %f, want 14", cand.AvgDurationMinutes)
	}
}

func TestSynthesize_SameHubRejected(t *testing.T) {
	s := newTestSynthesizer()
	// Start and end both within Tahrir's snap radius.
	trajectories := clusterOf(4, 30.0444, 31.2357, 30.0450, 31.2360, 0.3)
	if _, ok := s.Synthesize(trajectories, nil); ok {
		t.Fatal("expected rejection when both endpoints snap to the same hub")
	}
}

func TestSynthesize_NoHubInRange(t *testing.T) {
	s := newTestSynthesizer()
	// Start in Alexandria, far outside the registry.
	trajectories := clusterOf(4, 31.2001, 29.9187, 30.0619, 31.2466, 180)
	if _, ok := s.Synthesize(trajectories, nil); ok {
		t.Fatal("expected rejection when the start fails to snap")
	}
}

func TestSynthesize_DurationFallback(t *testing.T) {
	s := newTestSynthesizer()
	trajectories := clusterOf(3, 30.0444, 31.2357, 30.0619, 31.2466, 4.0)

	cand, ok := s.Synthesize(trajectories, []float64{0, 0, 0})
	if !ok {
		t.Fatal("expected a candidate")
	}
	// No recorded durations: estimate 3 minutes per kilometre.
	if math.Abs(cand.AvgDurationMinutes-12) > 0.001 {
		t.Errorf("duration = %f, want 12 (3 min/km fallback)", cand.AvgDurationMinutes)
	}
}

func TestSynthesize_EmptyCluster(t *testing.T) {
	if _, ok := newTestSynthesizer().Synthesize(nil, nil); ok {
		t.Fatal("expected rejection for an empty cluster")
	}
}
