// README: Discovery run reports and their Redis-backed snapshot store.
package discovery

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Report is the structured outcome of one discovery run. Insufficient
// data is a normal negative outcome, not an error: Success is false and
// Message says why, but the run itself did not fail.
type Report struct {
	Success          bool      `json:"success"`
	RoutesDiscovered int       `json:"routes_discovered"`
	RoutesUpdated    int       `json:"routes_updated"`
	TripsProcessed   int       `json:"trips_processed"`
	ClustersFound    int       `json:"clusters_found"`
	Message          string    `json:"message"`
	RanAt            time.Time `json:"ran_at"`
}

const (
	lastReportKey = "discovery:last_report"
	lastReportTTL = 7 * 24 * time.Hour
)

// ReportStore keeps the latest run report in Redis for the health and
// stats endpoints.
type ReportStore struct {
	redis *redis.Client
}

func NewReportStore(redis *redis.Client) *ReportStore {
	return &ReportStore{redis: redis}
}

func (s *ReportStore) SaveLast(ctx context.Context, r Report) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, lastReportKey, payload, lastReportTTL).Err()
}

func (s *ReportStore) LoadLast(ctx context.Context) (Report, bool, error) {
	val, err := s.redis.Get(ctx, lastReportKey).Bytes()
	if err == redis.Nil {
		return Report{}, false, nil
	}
	if err != nil {
		return Report{}, false, err
	}
	var r Report
	if err := json.Unmarshal(val, &r); err != nil {
		return Report{}, false, err
	}
	return r, true, nil
}
