// README: Pure geographic computation helpers (haversine + road factor).
package geo

import "math"

const earthRadiusKm = 6371.0

// RoadFactor approximates the ratio of real road distance to the
// straight-line distance between two points in the metro area.
const RoadFactor = 1.35

// DistanceKm returns the great-circle distance in kilometres between two
// points specified in decimal degrees. Behaviour for out-of-range
// coordinates is undefined; callers validate at the boundary.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLon := degreesToRadians(lon2 - lon1)

	rLat1 := degreesToRadians(lat1)
	rLat2 := degreesToRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// RoadDistanceKm estimates the road distance between two points as the
// great-circle distance scaled by RoadFactor. Not a shortest-path
// computation.
func RoadDistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	return DistanceKm(lat1, lon1, lat2, lon2) * RoadFactor
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
