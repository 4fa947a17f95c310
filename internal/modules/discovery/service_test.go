// README: Discovery pipeline tests against in-memory stores.
package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"dnerve/internal/config"
	"dnerve/internal/modules/route"
	"dnerve/internal/modules/trip"
	"dnerve/internal/types"
)

func testDiscoveryConfig() config.DiscoveryConfig {
	return config.DiscoveryConfig{
		EpsilonMeters: 200,
		MinSamples:    3,
		MinGPSPoints:  10,
		DaysBack:      30,
		MinTrips:      50,
		HubSnapKm:     2.0,
	}
}

type fakeTripSource struct {
	trips []trip.Trip
}

func (f *fakeTripSource) FetchWithGPS(ctx context.Context, since time.Time, minPoints int) ([]trip.Trip, error) {
	return f.trips, nil
}

func (f *fakeTripSource) CountAll(ctx context.Context) (int, error) { return len(f.trips), nil }

func (f *fakeTripSource) CountWithGPS(ctx context.Context, minPoints int) (int, error) {
	return len(f.trips), nil
}

func (f *fakeTripSource) CountSince(ctx context.Context, cutoff time.Time) (int, error) {
	return len(f.trips), nil
}

type fakeRouteStore struct {
	routes  map[string]*route.Route
	inserts int
	updates int
}

func newFakeRouteStore() *fakeRouteStore {
	return &fakeRouteStore{routes: make(map[string]*route.Route)}
}

func endpointKey(origin, destination string) string {
	return origin + "|" + destination
}

func (f *fakeRouteStore) FindByEndpoints(ctx context.Context, origin, destination string) (*route.Route, error) {
	r, ok := f.routes[endpointKey(origin, destination)]
	if !ok {
		return nil, route.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRouteStore) Insert(ctx context.Context, r *route.Route) error {
	cp := *r
	f.routes[endpointKey(r.Origin, r.Destination)] = &cp
	f.inserts++
	return nil
}

func (f *fakeRouteStore) Update(ctx context.Context, r *route.Route) error {
	key := endpointKey(r.Origin, r.Destination)
	if _, ok := f.routes[key]; !ok {
		return route.ErrNotFound
	}
	cp := *r
	f.routes[key] = &cp
	f.updates++
	return nil
}

func (f *fakeRouteStore) CountAll(ctx context.Context) (int, error) { return len(f.routes), nil }

func (f *fakeRouteStore) CountActive(ctx context.Context) (int, error) {
	n := 0
	for _, r := range f.routes {
		if r.Active {
			n++
		}
	}
	return n, nil
}

type fakeReportSink struct {
	last  Report
	saved bool
}

func (f *fakeReportSink) SaveLast(ctx context.Context, r Report) error {
	f.last = r
	f.saved = true
	return nil
}

func (f *fakeReportSink) LoadLast(ctx context.Context) (Report, bool, error) {
	return f.last, f.saved, nil
}

// makeTrip builds a trip whose payload interpolates pointCount fixes on
// a straight line between the two endpoints.
func makeTrip(t *testing.T, i int, start, end types.Point, durationMin float64) trip.Trip {
	t.Helper()
	const pointCount = 12
	base := time.Date(2026, 8, 20, 8, 0, 0, 0, time.UTC)
	fixes := make([]trip.GPSFix, pointCount)
	for j := range fixes {
		frac := float64(j) / float64(pointCount-1)
		fixes[j] = trip.GPSFix{
			Latitude:  start.Lat + (end.Lat-start.Lat)*frac,
			Longitude: start.Lon + (end.Lon-start.Lon)*frac,
			Timestamp: base.Add(time.Duration(j) * time.Minute),
		}
	}
	payload, err := json.Marshal(fixes)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return trip.Trip{
		ID:              types.ID(fmt.Sprintf("trip_%d", i)),
		DriverID:        "driver_1",
		StartTime:       base,
		EndTime:         base.Add(time.Duration(durationMin) * time.Minute),
		DurationMinutes: durationMin,
		PointCount:      pointCount,
		GPSPayload:      payload,
		CreatedAt:       base,
	}
}

// tahrirRamsesTrips builds n trips between Tahrir and Ramses squares
// with small deterministic jitter so they form a single cluster.
func tahrirRamsesTrips(t *testing.T, n int) []trip.Trip {
	t.Helper()
	trips := make([]trip.Trip, n)
	for i := range trips {
		off := float64(i%5-2) * 0.0003
		start := types.Point{Lat: 30.0444 + off, Lon: 31.2357}
		end := types.Point{Lat: 30.0619 + off, Lon: 31.2466}
		trips[i] = makeTrip(t, i, start, end, 15)
	}
	return trips
}

func TestDiscoverRoutes_NewRouteFromClusteredTrips(t *testing.T) {
	trips := &fakeTripSource{trips: tahrirRamsesTrips(t, 60)}
	routes := newFakeRouteStore()
	reports := &fakeReportSink{}
	svc := NewService(trips, routes, reports, testDiscoveryConfig())

	report, err := svc.DiscoverRoutes(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("DiscoverRoutes: %v", err)
	}
	if !report.Success {
		t.Fatalf("report not successful: %s", report.Message)
	}
	if report.RoutesDiscovered != 1 || report.RoutesUpdated != 0 {
		t.Errorf("discovered/updated = %d/%d, want 1/0", report.RoutesDiscovered, report.RoutesUpdated)
	}
	if report.TripsProcessed != 60 {
		t.Errorf("trips processed = %d, want 60", report.TripsProcessed)
	}
	if report.ClustersFound != 1 {
		t.Errorf("clusters found = %d, want 1", report.ClustersFound)
	}

	r, err := routes.FindByEndpoints(context.Background(), "Tahrir Square", "Ramses Square")
	if err != nil {
		t.Fatalf("route not persisted: %v", err)
	}
	if !r.Active {
		t.Error("new route should be active")
	}
	if r.TripCount != 60 {
		t.Errorf("trip count = %d, want 60", r.TripCount)
	}
	if r.AvgDurationMinutes != 15 {
		t.Errorf("avg duration = %f, want 15", r.AvgDurationMinutes)
	}
	if !strings.HasPrefix(string(r.ID), "route_") {
		t.Errorf("route id %q lacks route_ prefix", r.ID)
	}
	if r.Name != "Tahrir Square - Ramses Square" {
		t.Errorf("route name = %q", r.Name)
	}
	// Fare derives from the rounded distance, 0.5 EGP per km.
	if r.FareEGP != 1 {
		t.Errorf("fare = %f, want 1", r.FareEGP)
	}
	if !reports.saved || reports.last.RanAt.IsZero() {
		t.Error("report was not saved with a run timestamp")
	}
}

func TestDiscoverRoutes_InsufficientTrips(t *testing.T) {
	trips := &fakeTripSource{trips: tahrirRamsesTrips(t, 30)}
	routes := newFakeRouteStore()
	reports := &fakeReportSink{}
	svc := NewService(trips, routes, reports, testDiscoveryConfig())

	report, err := svc.DiscoverRoutes(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("DiscoverRoutes: %v", err)
	}
	if report.Success {
		t.Error("expected an unsuccessful report")
	}
	if report.TripsProcessed != 30 {
		t.Errorf("trips processed = %d, want 30", report.TripsProcessed)
	}
	if routes.inserts != 0 || routes.updates != 0 {
		t.Errorf("store writes = %d inserts, %d updates, want none", routes.inserts, routes.updates)
	}
	if !reports.saved {
		t.Error("aborted runs still record a report")
	}
}

func TestDiscoverRoutes_UpdatesExistingRoute(t *testing.T) {
	trips := &fakeTripSource{trips: tahrirRamsesTrips(t, 60)}
	routes := newFakeRouteStore()
	existing := &route.Route{
		ID:                 "route_existing",
		Name:               "Tahrir Square - Ramses Square",
		Origin:             "Tahrir Square",
		Destination:        "Ramses Square",
		AvgDurationMinutes: 25,
		TripCount:          100,
		Active:             true,
	}
	if err := routes.Insert(context.Background(), existing); err != nil {
		t.Fatal(err)
	}
	routes.inserts = 0
	svc := NewService(trips, routes, &fakeReportSink{}, testDiscoveryConfig())

	report, err := svc.DiscoverRoutes(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("DiscoverRoutes: %v", err)
	}
	if report.RoutesDiscovered != 0 || report.RoutesUpdated != 1 {
		t.Errorf("discovered/updated = %d/%d, want 0/1", report.RoutesDiscovered, report.RoutesUpdated)
	}

	r, err := routes.FindByEndpoints(context.Background(), "Tahrir Square", "Ramses Square")
	if err != nil {
		t.Fatal(err)
	}
	if r.TripCount != 160 {
		t.Errorf("trip count = %d, want 160", r.TripCount)
	}
	// Two-point average of the stored 25 and the batch's 15.
	if r.AvgDurationMinutes != 20 {
		t.Errorf("avg duration = %f, want 20", r.AvgDurationMinutes)
	}
	if r.ID != "route_existing" {
		t.Errorf("route id changed to %q", r.ID)
	}
}

func TestDiscoverRoutes_SkipsMalformedPayloads(t *testing.T) {
	all := tahrirRamsesTrips(t, 55)
	for i := 0; i < 5; i++ {
		bad := makeTrip(t, 100+i, types.Point{Lat: 30.0444, Lon: 31.2357}, types.Point{Lat: 30.0619, Lon: 31.2466}, 15)
		bad.GPSPayload = []byte("not json")
		all = append(all, bad)
	}
	routes := newFakeRouteStore()
	svc := NewService(&fakeTripSource{trips: all}, routes, &fakeReportSink{}, testDiscoveryConfig())

	report, err := svc.DiscoverRoutes(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("DiscoverRoutes: %v", err)
	}
	if !report.Success {
		t.Fatalf("report not successful: %s", report.Message)
	}
	if report.TripsProcessed != 60 {
		t.Errorf("trips processed = %d, want 60", report.TripsProcessed)
	}
	r, err := routes.FindByEndpoints(context.Background(), "Tahrir Square", "Ramses Square")
	if err != nil {
		t.Fatal(err)
	}
	if r.TripCount != 55 {
		t.Errorf("trip count = %d, want 55 valid trips", r.TripCount)
	}
}

func TestDiscoverRoutes_RejectsConcurrentRun(t *testing.T) {
	svc := NewService(&fakeTripSource{}, newFakeRouteStore(), &fakeReportSink{}, testDiscoveryConfig())
	svc.running.Store(true)

	_, err := svc.DiscoverRoutes(context.Background(), 0, 0)
	if !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("err = %v, want ErrAlreadyRunning", err)
	}
}

func TestStats_Readiness(t *testing.T) {
	cfg := testDiscoveryConfig()
	svc := NewService(&fakeTripSource{trips: tahrirRamsesTrips(t, 60)}, newFakeRouteStore(), &fakeReportSink{}, cfg)

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if !stats.ReadyForDiscovery {
		t.Error("60 trips with gps should be ready")
	}
	if stats.TotalTrips != 60 || stats.TripsWithGPS != 60 {
		t.Errorf("counts = %d/%d, want 60/60", stats.TotalTrips, stats.TripsWithGPS)
	}
	if stats.GPSCoveragePercent != 100 {
		t.Errorf("coverage = %f, want 100", stats.GPSCoveragePercent)
	}

	svc = NewService(&fakeTripSource{trips: tahrirRamsesTrips(t, 10)}, newFakeRouteStore(), &fakeReportSink{}, cfg)
	stats, err = svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.ReadyForDiscovery {
		t.Error("10 trips should not be ready")
	}
}
