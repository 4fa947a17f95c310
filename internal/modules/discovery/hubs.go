// README: Fixed registry of Cairo transit hubs used to snap route endpoints.
package discovery

import (
	"math"

	"dnerve/internal/geo"
	"dnerve/internal/types"
)

type Hub struct {
	Name string
	Pos  types.Point
}

// HubRegistry is a read-only table of named reference locations. The
// entries change only with a code update, never at runtime.
type HubRegistry struct {
	hubs []Hub
}

// DefaultSnapKm bounds how far a cluster centroid may sit from a hub and
// still snap to it.
const DefaultSnapKm = 2.0

// NewHubRegistry returns the Cairo hub table. Iteration order is the
// declaration order below; exact distance ties resolve to the earlier
// entry.
func NewHubRegistry() *HubRegistry {
	return &HubRegistry{hubs: []Hub{
		{"Ramses Square", types.Point{Lat: 30.0619, Lon: 31.2466}},
		{"Tahrir Square", types.Point{Lat: 30.0444, Lon: 31.2357}},
		{"Giza Square", types.Point{Lat: 30.0131, Lon: 31.2089}},
		{"Ataba Square", types.Point{Lat: 30.0531, Lon: 31.2469}},
		{"Maadi", types.Point{Lat: 29.9602, Lon: 31.2569}},
		{"Heliopolis", types.Point{Lat: 30.0866, Lon: 31.3225}},
		{"Nasr City", types.Point{Lat: 30.0511, Lon: 31.3656}},
		{"Shubra", types.Point{Lat: 30.0986, Lon: 31.2422}},
		{"Mohandessin", types.Point{Lat: 30.0609, Lon: 31.2003}},
		{"Dokki", types.Point{Lat: 30.0392, Lon: 31.2125}},
		{"Ain Shams", types.Point{Lat: 30.1311, Lon: 31.3194}},
		{"Zeitoun", types.Point{Lat: 30.1167, Lon: 31.3000}},
		{"Abbassia", types.Point{Lat: 30.0722, Lon: 31.2833}},
		{"Imbaba", types.Point{Lat: 30.0758, Lon: 31.2078}},
		{"Dar El Salam", types.Point{Lat: 29.9833, Lon: 31.2417}},
		{"6th October City", types.Point{Lat: 29.9389, Lon: 30.9167}},
		{"New Cairo", types.Point{Lat: 30.0300, Lon: 31.4700}},
		{"Helwan", types.Point{Lat: 29.8500, Lon: 31.3340}},
		{"Zamalek", types.Point{Lat: 30.0609, Lon: 31.2194}},
		{"Downtown", types.Point{Lat: 30.0459, Lon: 31.2394}},
	}}
}

// Nearest scans every hub and returns the closest one within maxKm. The
// strict comparison keeps the earlier entry on an exact distance tie.
func (r *HubRegistry) Nearest(lat, lon, maxKm float64) (Hub, bool) {
	var nearest Hub
	found := false
	minDist := math.Inf(1)
	for _, h := range r.hubs {
		d := geo.DistanceKm(lat, lon, h.Pos.Lat, h.Pos.Lon)
		if d < minDist && d <= maxKm {
			minDist = d
			nearest = h
			found = true
		}
	}
	return nearest, found
}

// Hubs returns the registry contents in declaration order.
func (r *HubRegistry) Hubs() []Hub {
	out := make([]Hub, len(r.hubs))
	copy(out, r.hubs)
	return out
}
