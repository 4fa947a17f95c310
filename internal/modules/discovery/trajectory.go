// README: Trajectory summarization from raw GPS fix sequences.
package discovery

import (
	"sort"

	"dnerve/internal/geo"
	"dnerve/internal/modules/trip"
	"dnerve/internal/types"
)

// Trajectory is the per-trip summary the clusterer works on. It is an
// intermediate artifact of one discovery batch and is never persisted.
type Trajectory struct {
	Start      types.Point
	End        types.Point
	DistanceKm float64
	PointCount int
}

// ExtractTrajectory summarizes one trip's fixes: endpoints after sorting
// by timestamp and the cumulative great-circle path length. Trips with
// fewer than minPoints fixes produce no summary. The input slice is not
// mutated; the sort works on a copy, and it is stable so equal
// timestamps keep their relative input order.
func ExtractTrajectory(fixes []trip.GPSFix, minPoints int) (Trajectory, bool) {
	if len(fixes) < minPoints {
		return Trajectory{}, false
	}

	sorted := make([]trip.GPSFix, len(fixes))
	copy(sorted, fixes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	total := 0.0
	for i := 1; i < len(sorted); i++ {
		total += geo.DistanceKm(
			sorted[i-1].Latitude, sorted[i-1].Longitude,
			sorted[i].Latitude, sorted[i].Longitude,
		)
	}

	first := sorted[0]
	last := sorted[len(sorted)-1]
	return Trajectory{
		Start:      types.Point{Lat: first.Latitude, Lon: first.Longitude},
		End:        types.Point{Lat: last.Latitude, Lon: last.Longitude},
		DistanceKm: total,
		PointCount: len(sorted),
	}, true
}
