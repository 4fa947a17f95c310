// README: Trip service handles submission validation and reads.
package trip

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"dnerve/internal/types"
)

type Service struct {
	store *Store
	log   *slog.Logger
}

func NewService(store *Store) *Service {
	return &Service{
		store: store,
		log:   slog.Default().With(slog.String("component", "trip_service")),
	}
}

type SubmitCommand struct {
	DriverID  types.ID
	StartTime time.Time
	EndTime   time.Time
	Fixes     []GPSFix
}

// Submit validates and persists a driver trip log. Fixes are validated
// here once; discovery consumes the stored payload without re-checking
// field presence.
func (s *Service) Submit(ctx context.Context, cmd SubmitCommand) (types.ID, error) {
	if cmd.DriverID == "" || len(cmd.Fixes) == 0 {
		return "", ErrBadRequest
	}
	if cmd.EndTime.Before(cmd.StartTime) {
		return "", ErrBadRequest
	}
	for _, f := range cmd.Fixes {
		if err := validateFix(f); err != nil {
			return "", ErrBadRequest
		}
	}

	payload, err := json.Marshal(cmd.Fixes)
	if err != nil {
		return "", err
	}

	id := types.ID("trip_" + uuid.NewString())
	t := &Trip{
		ID:              id,
		DriverID:        cmd.DriverID,
		StartTime:       cmd.StartTime,
		EndTime:         cmd.EndTime,
		DurationMinutes: cmd.EndTime.Sub(cmd.StartTime).Minutes(),
		PointCount:      len(cmd.Fixes),
		GPSPayload:      payload,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.store.Create(ctx, t); err != nil {
		return "", err
	}
	s.log.Info("trip submitted",
		slog.String("trip_id", string(id)),
		slog.String("driver_id", string(cmd.DriverID)),
		slog.Int("points", t.PointCount))
	return id, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Trip, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) ListByDriver(ctx context.Context, driverID types.ID, limit int) ([]Trip, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.store.ListByDriver(ctx, driverID, limit)
}
