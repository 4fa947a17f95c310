// README: Route store backed by PostgreSQL with a Redis active-list cache.
package route

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"dnerve/internal/types"
)

const (
	activeRoutesKey = "routes:active"
	// Matching tolerates slightly stale route lists, so a short TTL is
	// enough to keep reads off Postgres between discovery runs.
	activeRoutesTTL = 60 * time.Second
)

type Store struct {
	db    *pgxpool.Pool
	redis *redis.Client
	log   *slog.Logger
}

func NewStore(db *pgxpool.Pool, redis *redis.Client) *Store {
	return &Store{
		db:    db,
		redis: redis,
		log:   slog.Default().With(slog.String("component", "route_store")),
	}
}

func (s *Store) Insert(ctx context.Context, r *Route) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO routes (
			id, name, origin, destination,
			origin_lat, origin_lon, dest_lat, dest_lon,
			distance_km, avg_duration_minutes, fare_egp,
			trip_count, is_active, discovered_at, updated_at
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8,
			$9, $10, $11,
			$12, $13, $14, $15
		)`,
		string(r.ID), r.Name, r.Origin, r.Destination,
		r.OriginPos.Lat, r.OriginPos.Lon, r.DestPos.Lat, r.DestPos.Lon,
		r.DistanceKm, r.AvgDurationMinutes, r.FareEGP,
		r.TripCount, r.Active, r.DiscoveredAt, r.UpdatedAt,
	)
	if err != nil {
		return err
	}
	s.invalidateActive(ctx)
	return nil
}

// Update writes back the mutable aggregate fields after a discovery
// merge (trip count and averaged duration).
func (s *Store) Update(ctx context.Context, r *Route) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE routes
		SET trip_count = $1,
		    avg_duration_minutes = $2,
		    updated_at = $3
		WHERE id = $4`,
		r.TripCount, r.AvgDurationMinutes, r.UpdatedAt, string(r.ID),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	s.invalidateActive(ctx)
	return nil
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Route, error) {
	row := s.db.QueryRow(ctx, selectColumns+` WHERE id = $1`, string(id))
	r, err := scanRoute(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return r, err
}

// FindByEndpoints looks up a route by its exact (origin, destination)
// name pair, the identity discovery merges on.
func (s *Store) FindByEndpoints(ctx context.Context, origin, destination string) (*Route, error) {
	row := s.db.QueryRow(ctx, selectColumns+` WHERE origin = $1 AND destination = $2`, origin, destination)
	r, err := scanRoute(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return r, err
}

// ListActive returns all active routes, serving from the Redis cache
// when it is warm. Cache failures degrade to Postgres, never to errors.
func (s *Store) ListActive(ctx context.Context) ([]Route, error) {
	if cached, err := s.redis.Get(ctx, activeRoutesKey).Bytes(); err == nil {
		var routes []Route
		if json.Unmarshal(cached, &routes) == nil {
			return routes, nil
		}
	}

	rows, err := s.db.Query(ctx, selectColumns+` WHERE is_active ORDER BY trip_count DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	routes, err := collectRoutes(rows)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(routes); err == nil {
		if err := s.redis.Set(ctx, activeRoutesKey, payload, activeRoutesTTL).Err(); err != nil {
			s.log.Warn("active route cache write failed", slog.String("error", err.Error()))
		}
	}
	return routes, nil
}

func (s *Store) List(ctx context.Context, activeOnly bool, limit, offset int) ([]Route, int, error) {
	where := ``
	if activeOnly {
		where = ` WHERE is_active`
	}
	var total int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM routes`+where).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.db.Query(ctx, selectColumns+where+` ORDER BY trip_count DESC, id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	routes, err := collectRoutes(rows)
	return routes, total, err
}

func (s *Store) CountAll(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM routes`).Scan(&n)
	return n, err
}

func (s *Store) CountActive(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM routes WHERE is_active`).Scan(&n)
	return n, err
}

func (s *Store) invalidateActive(ctx context.Context) {
	if err := s.redis.Del(ctx, activeRoutesKey).Err(); err != nil {
		s.log.Warn("active route cache invalidation failed", slog.String("error", err.Error()))
	}
}

const selectColumns = `
	SELECT id, name, origin, destination,
	       origin_lat, origin_lon, dest_lat, dest_lon,
	       distance_km, avg_duration_minutes, fare_egp,
	       trip_count, is_active, discovered_at, updated_at
	FROM routes`

func collectRoutes(rows pgx.Rows) ([]Route, error) {
	var routes []Route
	for rows.Next() {
		r, err := scanRoute(rows)
		if err != nil {
			return nil, err
		}
		routes = append(routes, *r)
	}
	return routes, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoute(row rowScanner) (*Route, error) {
	var r Route
	err := row.Scan(
		&r.ID, &r.Name, &r.Origin, &r.Destination,
		&r.OriginPos.Lat, &r.OriginPos.Lon, &r.DestPos.Lat, &r.DestPos.Lon,
		&r.DistanceKm, &r.AvgDurationMinutes, &r.FareEGP,
		&r.TripCount, &r.Active, &r.DiscoveredAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
