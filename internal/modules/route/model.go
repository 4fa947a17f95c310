// README: Route aggregate for discovered microbus routes.
package route

import (
	"errors"
	"time"

	"dnerve/internal/types"
)

var (
	ErrNotFound   = errors.New("route not found")
	ErrBadRequest = errors.New("bad request")
)

type Route struct {
	ID                 types.ID
	Name               string
	Origin             string
	Destination        string
	OriginPos          types.Point
	DestPos            types.Point
	DistanceKm         float64
	AvgDurationMinutes float64
	FareEGP            float64
	TripCount          int
	Active             bool
	DiscoveredAt       time.Time
	UpdatedAt          time.Time
}
