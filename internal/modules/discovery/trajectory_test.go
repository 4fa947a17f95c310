// README: Trajectory extraction tests (ordering, thresholds, path length).
package discovery

import (
	"math"
	"testing"
	"time"

	"dnerve/internal/modules/trip"
)

func fixAt(lat, lon float64, offsetSec int) trip.GPSFix {
	base := time.Date(2026, 8, 1, 8, 0, 0, 0, time.UTC)
	return trip.GPSFix{
		Latitude:  lat,
		Longitude: lon,
		Timestamp: base.Add(time.Duration(offsetSec) * time.Second),
	}
}

// straightFixes builds n fixes interpolated between two points, in
// timestamp order.
func straightFixes(n int, fromLat, fromLon, toLat, toLon float64) []trip.GPSFix {
	fixes := make([]trip.GPSFix, n)
	for i := 0; i < n; i++ {
		f := float64(i) / float64(n-1)
		fixes[i] = fixAt(fromLat+(toLat-fromLat)*f, fromLon+(toLon-fromLon)*f, i*30)
	}
	return fixes
}

func TestExtractTrajectory_TooFewPoints(t *testing.T) {
	fixes := straightFixes(9, 30.0444, 31.2357, 30.0619, 31.2466)
	if _, ok := ExtractTrajectory(fixes, 10); ok {
		t.Fatal("expected no summary for 9 fixes with a threshold of 10")
	}
	if _, ok := ExtractTrajectory(nil, 10); ok {
		t.Fatal("expected no summary for empty input")
	}
}

func TestExtractTrajectory_Endpoints(t *testing.T) {
	fixes := straightFixes(12, 30.0444, 31.2357, 30.0619, 31.2466)
	summary, ok := ExtractTrajectory(fixes, 10)
	if !ok {
		t.Fatal("expected a summary")
	}
	if summary.Start.Lat != 30.0444 || summary.Start.Lon != 31.2357 {
		t.Errorf("unexpected start: %+v", summary.Start)
	}
	if summary.End.Lat != 30.0619 || summary.End.Lon != 31.2466 {
		t.Errorf("unexpected end: %+v", summary.End)
	}
	if summary.PointCount != 12 {
		t.Errorf("point count = %d, want 12", summary.PointCount)
	}
	// Straight interpolated path: cumulative length equals the direct
	// distance (~2.1 km) within float tolerance.
	if math.Abs(summary.DistanceKm-2.1) > 0.3 {
		t.Errorf("distance = %f, want ~2.1", summary.DistanceKm)
	}
}

func TestExtractTrajectory_OrderIndependent(t *testing.T) {
	ordered := straightFixes(15, 30.0444, 31.2357, 30.0619, 31.2466)

	shuffled := make([]trip.GPSFix, len(ordered))
	copy(shuffled, ordered)
	// Deterministic scramble: reverse, then swap a few interior pairs.
	for i, j := 0, len(shuffled)-1; i < j; i, j = i+1, j-1 {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	shuffled[2], shuffled[9] = shuffled[9], shuffled[2]
	shuffled[4], shuffled[12] = shuffled[12], shuffled[4]

	a, okA := ExtractTrajectory(ordered, 10)
	b, okB := ExtractTrajectory(shuffled, 10)
	if !okA || !okB {
		t.Fatal("expected summaries for both inputs")
	}
	if a != b {
		t.Errorf("summaries differ:\n ordered: %+v\n shuffled: %+v", a, b)
	}
}

func TestExtractTrajectory_DoesNotMutateInput(t *testing.T) {
	fixes := straightFixes(10, 30.0444, 31.2357, 30.0619, 31.2466)
	// Reverse so the extractor has sorting work to do.
	for i, j := 0, len(fixes)-1; i < j; i, j = i+1, j-1 {
		fixes[i], fixes[j] = fixes[j], fixes[i]
	}
	first := fixes[0]

	if _, ok := ExtractTrajectory(fixes, 10); !ok {
		t.Fatal("expected a summary")
	}
	if fixes[0] != first {
		t.Error("input slice was reordered")
	}
}
