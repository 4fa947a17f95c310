// README: Trip aggregate and GPS fix payload types.
package trip

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dnerve/internal/types"
)

var (
	ErrNotFound         = errors.New("trip not found")
	ErrBadRequest       = errors.New("bad request")
	ErrMalformedPayload = errors.New("malformed gps payload")
)

// GPSFix is a single recorded position. Fixes arrive from driver phones
// and are validated once at the boundary; downstream code trusts them.
type GPSFix struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
	Accuracy  *float64  `json:"accuracy,omitempty"`
	Speed     *float64  `json:"speed,omitempty"`
}

type Trip struct {
	ID              types.ID
	DriverID        types.ID
	RouteID         *types.ID
	StartTime       time.Time
	EndTime         time.Time
	DurationMinutes float64
	PointCount      int
	GPSPayload      []byte
	DistanceKm      *float64
	CreatedAt       time.Time
}

// ParseGPSPayload decodes a raw JSON fix array and validates every fix.
// A payload with any out-of-range coordinate or missing timestamp is
// rejected whole; partial trajectories are worse than no trajectory.
func ParseGPSPayload(raw []byte) ([]GPSFix, error) {
	if len(raw) == 0 {
		return nil, ErrMalformedPayload
	}
	var fixes []GPSFix
	if err := json.Unmarshal(raw, &fixes); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	for i, f := range fixes {
		if err := validateFix(f); err != nil {
			return nil, fmt.Errorf("%w: fix %d: %v", ErrMalformedPayload, i, err)
		}
	}
	return fixes, nil
}

func validateFix(f GPSFix) error {
	if f.Latitude < -90 || f.Latitude > 90 {
		return fmt.Errorf("latitude %f out of range", f.Latitude)
	}
	if f.Longitude < -180 || f.Longitude > 180 {
		return fmt.Errorf("longitude %f out of range", f.Longitude)
	}
	if f.Timestamp.IsZero() {
		return errors.New("missing timestamp")
	}
	return nil
}
