// README: Trip store backed by PostgreSQL.
package trip

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dnerve/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, t *Trip) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO trips (
			id, driver_id, route_id, start_time, end_time,
			duration_minutes, point_count, gps_payload, distance_km, created_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10
		)`,
		string(t.ID),
		string(t.DriverID),
		toStringPtr(t.RouteID),
		t.StartTime,
		t.EndTime,
		t.DurationMinutes,
		t.PointCount,
		t.GPSPayload,
		t.DistanceKm,
		t.CreatedAt,
	)
	return err
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Trip, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, driver_id, route_id, start_time, end_time,
		       duration_minutes, point_count, gps_payload, distance_km, created_at
		FROM trips
		WHERE id = $1`, string(id),
	)
	t, err := scanTrip(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

func (s *Store) ListByDriver(ctx context.Context, driverID types.ID, limit int) ([]Trip, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, driver_id, route_id, start_time, end_time,
		       duration_minutes, point_count, gps_payload, distance_km, created_at
		FROM trips
		WHERE driver_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, string(driverID), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTrips(rows)
}

// FetchWithGPS returns trips created at or after the cutoff that carry a
// non-null GPS payload with at least minPoints recorded fixes. This is
// the discovery batch input query.
func (s *Store) FetchWithGPS(ctx context.Context, since time.Time, minPoints int) ([]Trip, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, driver_id, route_id, start_time, end_time,
		       duration_minutes, point_count, gps_payload, distance_km, created_at
		FROM trips
		WHERE created_at >= $1
		  AND point_count >= $2
		  AND gps_payload IS NOT NULL
		ORDER BY created_at`, since, minPoints,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTrips(rows)
}

func (s *Store) CountAll(ctx context.Context) (int, error) {
	return s.countWhere(ctx, `SELECT COUNT(*) FROM trips`)
}

func (s *Store) CountWithGPS(ctx context.Context, minPoints int) (int, error) {
	return s.countWhere(ctx, `SELECT COUNT(*) FROM trips WHERE point_count >= $1 AND gps_payload IS NOT NULL`, minPoints)
}

func (s *Store) CountSince(ctx context.Context, cutoff time.Time) (int, error) {
	return s.countWhere(ctx, `SELECT COUNT(*) FROM trips WHERE created_at >= $1`, cutoff)
}

func (s *Store) countWhere(ctx context.Context, sql string, args ...any) (int, error) {
	var n int
	if err := s.db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func collectTrips(rows pgx.Rows) ([]Trip, error) {
	var trips []Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, *t)
	}
	return trips, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrip(row rowScanner) (*Trip, error) {
	var t Trip
	var routeID *string
	err := row.Scan(
		&t.ID, &t.DriverID, &routeID, &t.StartTime, &t.EndTime,
		&t.DurationMinutes, &t.PointCount, &t.GPSPayload, &t.DistanceKm, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if routeID != nil {
		id := types.ID(*routeID)
		t.RouteID = &id
	}
	return &t, nil
}

func toStringPtr(v *types.ID) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}
