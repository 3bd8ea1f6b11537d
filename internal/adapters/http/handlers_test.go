package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	handler "github.com/samirrijal/sightseer/internal/adapters/http"
	"github.com/samirrijal/sightseer/internal/core/domain"
	"github.com/samirrijal/sightseer/internal/core/ports"
	"github.com/samirrijal/sightseer/internal/core/usecases"
)

// ---- Mock repositories ----

type mockStationRepo struct {
	stations map[string]domain.Station
	createFn func(ctx context.Context, st *domain.Station) error
	boundsFn func(ctx context.Context, minLat, minLon, maxLat, maxLon float64) ([]domain.Station, error)
}

func (m *mockStationRepo) Create(ctx context.Context, st *domain.Station) error {
	if m.createFn != nil {
		return m.createFn(ctx, st)
	}
	st.ID = "c0ffee00-0000-4000-8000-000000000001"
	return nil
}

func (m *mockStationRepo) GetByID(ctx context.Context, id string) (*domain.Station, error) {
	if st, ok := m.stations[id]; ok {
		return &st, nil
	}
	return nil, ports.ErrNotFound
}

func (m *mockStationRepo) GetByIDs(ctx context.Context, ids []string) ([]domain.Station, error) {
	var out []domain.Station
	for _, id := range ids {
		if st, ok := m.stations[id]; ok {
			out = append(out, st)
		}
	}
	return out, nil
}

func (m *mockStationRepo) List(ctx context.Context) ([]domain.Station, error) {
	out := make([]domain.Station, 0, len(m.stations))
	for _, st := range m.stations {
		out = append(out, st)
	}
	return out, nil
}

func (m *mockStationRepo) WithinBounds(ctx context.Context, minLat, minLon, maxLat, maxLon float64) ([]domain.Station, error) {
	if m.boundsFn != nil {
		return m.boundsFn(ctx, minLat, minLon, maxLat, maxLon)
	}
	return nil, nil
}

func (m *mockStationRepo) PointsOfInterest(ctx context.Context, stationID string) ([]domain.PointOfInterest, error) {
	return nil, nil
}

type mockRouteRepo struct {
	routes map[string]domain.Route
}

func (m *mockRouteRepo) Create(ctx context.Context, r *domain.Route) error {
	r.ID = "c0ffee00-0000-4000-8000-000000000002"
	return nil
}

func (m *mockRouteRepo) GetByID(ctx context.Context, id string) (*domain.Route, error) {
	if r, ok := m.routes[id]; ok {
		return &r, nil
	}
	return nil, ports.ErrNotFound
}

func (m *mockRouteRepo) ListByTour(ctx context.Context, tourID string) ([]domain.Route, error) {
	var out []domain.Route
	for _, r := range m.routes {
		if r.TourID == tourID {
			out = append(out, r)
		}
	}
	return out, nil
}

type mockSegmentRepo struct {
	mu      sync.Mutex
	byRoute map[string][]domain.Segment
}

func (m *mockSegmentRepo) ListByRoute(ctx context.Context, routeID string) ([]domain.Segment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Segment(nil), m.byRoute[routeID]...), nil
}

func (m *mockSegmentRepo) ReplaceForRoute(ctx context.Context, routeID string, segs []domain.Segment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.byRoute == nil {
		m.byRoute = make(map[string][]domain.Segment)
	}
	m.byRoute[routeID] = append([]domain.Segment(nil), segs...)
	return nil
}

func (m *mockSegmentRepo) GetByID(ctx context.Context, id string) (*domain.Segment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, segs := range m.byRoute {
		for _, s := range segs {
			if s.ID == id {
				return &s, nil
			}
		}
	}
	return nil, ports.ErrNotFound
}

func (m *mockSegmentRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for route, segs := range m.byRoute {
		for i, s := range segs {
			if s.ID == id {
				m.byRoute[route] = append(segs[:i:i], segs[i+1:]...)
				return nil
			}
		}
	}
	return ports.ErrNotFound
}

type mockTourRepo struct {
	tours    []domain.Tour
	createFn func(ctx context.Context, t *domain.Tour) error
}

func (m *mockTourRepo) Create(ctx context.Context, t *domain.Tour) error {
	if m.createFn != nil {
		return m.createFn(ctx, t)
	}
	t.ID = "c0ffee00-0000-4000-8000-000000000003"
	return nil
}

func (m *mockTourRepo) GetBySlug(ctx context.Context, slug string) (*domain.Tour, error) {
	for _, t := range m.tours {
		if t.Slug == slug {
			return &t, nil
		}
	}
	return nil, ports.ErrNotFound
}

func (m *mockTourRepo) List(ctx context.Context) ([]domain.Tour, error) { return m.tours, nil }

func (m *mockTourRepo) UpcomingSchedules(ctx context.Context, tourID string, limit int) ([]domain.Schedule, error) {
	return nil, nil
}

type mockBusRepo struct{}

func (m *mockBusRepo) GetByID(ctx context.Context, id string) (*domain.Bus, error) {
	return nil, ports.ErrNotFound
}

func (m *mockBusRepo) List(ctx context.Context) ([]domain.Bus, error) { return nil, nil }

type mockPinger struct{ err error }

func (m mockPinger) Ping(ctx context.Context) error { return m.err }

// ---- Fixture ----

const (
	tourID   = "7a1c0000-0000-4000-8000-000000000001"
	routeID  = "7a1c0000-0000-4000-8000-0000000000a1"
	stationA = "7a1c0000-0000-4000-8000-00000000000a"
	stationB = "7a1c0000-0000-4000-8000-00000000000b"
	stationC = "7a1c0000-0000-4000-8000-00000000000c"
	stationD = "7a1c0000-0000-4000-8000-00000000000d"
	segAB    = "7a1c0000-0000-4000-8000-0000000000ab"
	segBC    = "7a1c0000-0000-4000-8000-0000000000bc"
	segCD    = "7a1c0000-0000-4000-8000-0000000000cd"
)

type fixture struct {
	stations *mockStationRepo
	routes   *mockRouteRepo
	segments *mockSegmentRepo
	tours    *mockTourRepo
}

func newFixture() *fixture {
	st := func(id, code string, lat, lon float64) domain.Station {
		return domain.Station{ID: id, Code: code, Name: code, Location: domain.GeoPoint{Lat: lat, Lon: lon}, Active: true}
	}
	return &fixture{
		stations: &mockStationRepo{stations: map[string]domain.Station{
			stationA: st(stationA, "ABA", 43.2630, -2.9350),
			stationB: st(stationB, "GUG", 43.2687, -2.9340),
			stationC: st(stationC, "ZUB", 43.2700, -2.9250),
			stationD: st(stationD, "CAS", 43.2590, -2.9230),
		}},
		routes: &mockRouteRepo{routes: map[string]domain.Route{
			routeID: {ID: routeID, TourID: tourID, Name: "Old Town Loop", StartStationID: stationA, Active: true},
		}},
		segments: &mockSegmentRepo{},
		tours: &mockTourRepo{tours: []domain.Tour{
			{ID: tourID, Slug: "old-town", Name: "Old Town", Price: decimal.RequireFromString("24.50"), Currency: "EUR", Active: true},
		}},
	}
}

// storeShuffled stores B→C, C→D, A→B in that order.
func (f *fixture) storeShuffled() {
	f.segments.byRoute = map[string][]domain.Segment{
		routeID: {
			{ID: segBC, RouteID: routeID, DepartureStationID: stationB, EndStationID: stationC, Status: domain.SegmentActive},
			{ID: segCD, RouteID: routeID, DepartureStationID: stationC, EndStationID: stationD, Status: domain.SegmentActive},
			{ID: segAB, RouteID: routeID, DepartureStationID: stationA, EndStationID: stationB, Status: domain.SegmentActive},
		},
	}
}

func (f *fixture) deps(opts ...func(*handler.Dependencies)) *handler.Dependencies {
	routes := usecases.NewRouteService(f.routes, f.segments, f.stations, nil, 0)
	d := &handler.Dependencies{
		Stations: usecases.NewStationService(f.stations, nil),
		Routes:   routes,
		Segments: usecases.NewSegmentService(f.routes, f.segments, f.stations, routes, nil),
		Tours:    usecases.NewTourService(f.tours),
		Buses:    usecases.NewBusService(&mockBusRepo{}),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

func readBody(t *testing.T, body io.Reader) []byte {
	t.Helper()
	b, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return b
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, readBody(t, resp.Body)
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var apiErr handler.APIError
	if err := json.Unmarshal(body, &apiErr); err != nil {
		t.Fatalf("decode error body %s: %v", body, err)
	}
	return apiErr.Code
}

// ---- Health ----

func TestHealth(t *testing.T) {
	app := setupApp(newFixture().deps())

	code, body := doJSON(t, app, "GET", "/v1/health", nil)
	if code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}
	var result map[string]string
	json.Unmarshal(body, &result)
	if result["status"] != "healthy" {
		t.Errorf("expected healthy, got %s", result["status"])
	}
	if result["version"] != "dev" {
		t.Errorf("expected default version dev, got %s", result["version"])
	}
}

func TestReady_DatabaseRequired(t *testing.T) {
	app := setupApp(newFixture().deps())

	code, _ := doJSON(t, app, "GET", "/v1/ready", nil)
	if code != 503 {
		t.Fatalf("expected 503 without a database, got %d", code)
	}
}

func TestReady_OptionalDependencyFailing(t *testing.T) {
	app := setupApp(newFixture().deps(func(d *handler.Dependencies) {
		d.DB = mockPinger{}
		d.Cache = mockPinger{err: errors.New("connection refused")}
	}))

	code, body := doJSON(t, app, "GET", "/v1/ready", nil)
	if code != 503 {
		t.Fatalf("expected 503, got %d", code)
	}
	var result struct {
		Checks map[string]string `json:"checks"`
	}
	json.Unmarshal(body, &result)
	if result.Checks["database"] != "ok" {
		t.Errorf("expected database ok, got %q", result.Checks["database"])
	}
	if result.Checks["nats"] != "not configured" {
		t.Errorf("expected nats not configured, got %q", result.Checks["nats"])
	}
}

func TestReady_OK(t *testing.T) {
	app := setupApp(newFixture().deps(func(d *handler.Dependencies) {
		d.DB = mockPinger{}
	}))

	code, _ := doJSON(t, app, "GET", "/v1/ready", nil)
	if code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}
}

// ---- Stations ----

func TestListStations_Pagination(t *testing.T) {
	app := setupApp(newFixture().deps())

	req := httptest.NewRequest("GET", "/v1/stations?offset=1&limit=2", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Link") == "" {
		t.Error("expected Link header")
	}

	var result struct {
		Data       []domain.Station   `json:"data"`
		Pagination handler.Pagination `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result.Pagination.Total != 4 {
		t.Errorf("expected total 4, got %d", result.Pagination.Total)
	}
	if len(result.Data) != 2 {
		t.Errorf("expected 2 stations in page, got %d", len(result.Data))
	}
	if result.Pagination.Offset != 1 {
		t.Errorf("expected offset 1, got %d", result.Pagination.Offset)
	}
}

func TestGetStation(t *testing.T) {
	app := setupApp(newFixture().deps())

	code, body := doJSON(t, app, "GET", "/v1/stations/"+stationB, nil)
	if code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}
	var st domain.Station
	json.Unmarshal(body, &st)
	if st.Code != "GUG" {
		t.Errorf("expected GUG, got %s", st.Code)
	}
}

func TestGetStation_BadID(t *testing.T) {
	app := setupApp(newFixture().deps())

	code, body := doJSON(t, app, "GET", "/v1/stations/not-a-uuid", nil)
	if code != 400 {
		t.Fatalf("expected 400, got %d", code)
	}
	if c := errorCode(t, body); c != "bad_request" {
		t.Errorf("expected bad_request, got %s", c)
	}
}

func TestGetStation_NotFound(t *testing.T) {
	app := setupApp(newFixture().deps())

	code, body := doJSON(t, app, "GET", "/v1/stations/00000000-0000-4000-8000-000000000000", nil)
	if code != 404 {
		t.Fatalf("expected 404, got %d", code)
	}
	if c := errorCode(t, body); c != "not_found" {
		t.Errorf("expected not_found, got %s", c)
	}
}

func TestNearbyStations(t *testing.T) {
	f := newFixture()
	f.stations.boundsFn = func(ctx context.Context, minLat, minLon, maxLat, maxLon float64) ([]domain.Station, error) {
		return []domain.Station{f.stations.stations[stationB], f.stations.stations[stationA]}, nil
	}
	app := setupApp(f.deps())

	code, body := doJSON(t, app, "GET", "/v1/stations/nearby?lat=43.263&lon=-2.935&radius=1000", nil)
	if code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}
	var stations []domain.Station
	json.Unmarshal(body, &stations)
	if len(stations) != 2 {
		t.Fatalf("expected 2 stations, got %d", len(stations))
	}
	if stations[0].ID != stationA {
		t.Errorf("expected closest station first, got %s", stations[0].Code)
	}
	if stations[0].Distance == nil {
		t.Error("expected distance to be set")
	}
}

func TestNearbyStations_MissingParams(t *testing.T) {
	app := setupApp(newFixture().deps())

	code, body := doJSON(t, app, "GET", "/v1/stations/nearby", nil)
	if code != 400 {
		t.Fatalf("expected 400, got %d", code)
	}
	if c := errorCode(t, body); c != "bad_request" {
		t.Errorf("expected bad_request, got %s", c)
	}
}

func TestNearbyStations_BadRadius(t *testing.T) {
	app := setupApp(newFixture().deps())

	code, _ := doJSON(t, app, "GET", "/v1/stations/nearby?lat=43.26&lon=-2.93&radius=50000", nil)
	if code != 400 {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestCreateStation(t *testing.T) {
	app := setupApp(newFixture().deps())

	code, body := doJSON(t, app, "POST", "/v1/stations", map[string]interface{}{
		"code":     "MUS",
		"name":     "Guggenheim Museum",
		"location": map[string]float64{"lat": 43.2687, "lon": -2.9340},
	})
	if code != 201 {
		t.Fatalf("expected 201, got %d: %s", code, body)
	}
	var st domain.Station
	json.Unmarshal(body, &st)
	if st.ID == "" || !st.Active {
		t.Errorf("expected stored active station, got %+v", st)
	}
}

func TestCreateStation_Conflict(t *testing.T) {
	f := newFixture()
	f.stations.createFn = func(ctx context.Context, st *domain.Station) error {
		return fmt.Errorf("insert station: %w", ports.ErrConflict)
	}
	app := setupApp(f.deps())

	code, body := doJSON(t, app, "POST", "/v1/stations", map[string]interface{}{
		"code":     "ABA",
		"name":     "Abando",
		"location": map[string]float64{"lat": 43.263, "lon": -2.935},
	})
	if code != 409 {
		t.Fatalf("expected 409, got %d", code)
	}
	if c := errorCode(t, body); c != "conflict" {
		t.Errorf("expected conflict, got %s", c)
	}
}

// ---- Routes ----

func TestRouteChain_Complete(t *testing.T) {
	f := newFixture()
	f.storeShuffled()
	app := setupApp(f.deps())

	code, body := doJSON(t, app, "GET", "/v1/routes/"+routeID+"/chain", nil)
	if code != 200 {
		t.Fatalf("expected 200, got %d: %s", code, body)
	}
	var chain domain.RouteChain
	if err := json.Unmarshal(body, &chain); err != nil {
		t.Fatal(err)
	}
	if !chain.Complete {
		t.Fatalf("expected complete chain, got outcome %s", chain.Outcome)
	}
	want := []string{segAB, segBC, segCD}
	for i, seg := range chain.Segments {
		if seg.ID != want[i] {
			t.Errorf("segment %d: expected %s, got %s", i, want[i], seg.ID)
		}
	}
	if len(chain.Stations) != 4 || chain.Stations[0] != stationA || chain.Stations[3] != stationD {
		t.Errorf("unexpected station order %v", chain.Stations)
	}
	if chain.LengthMeters <= 0 {
		t.Errorf("expected positive length, got %f", chain.LengthMeters)
	}
}

func TestRouteChain_BrokenStillOK(t *testing.T) {
	f := newFixture()
	f.storeShuffled()
	f.segments.byRoute[routeID] = f.segments.byRoute[routeID][:2] // drop A→B
	app := setupApp(f.deps())

	code, body := doJSON(t, app, "GET", "/v1/routes/"+routeID+"/chain", nil)
	if code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}
	var chain domain.RouteChain
	json.Unmarshal(body, &chain)
	if chain.Complete {
		t.Fatal("expected incomplete chain")
	}
	if chain.Outcome != "start_not_found" {
		t.Errorf("expected start_not_found, got %s", chain.Outcome)
	}
	if chain.Unreached != 2 {
		t.Errorf("expected 2 unreached, got %d", chain.Unreached)
	}
}

func TestRouteChain_UnknownRoute(t *testing.T) {
	app := setupApp(newFixture().deps())

	code, _ := doJSON(t, app, "GET", "/v1/routes/00000000-0000-4000-8000-000000000000/chain", nil)
	if code != 404 {
		t.Fatalf("expected 404, got %d", code)
	}
}

func TestRouteStops(t *testing.T) {
	f := newFixture()
	f.storeShuffled()
	app := setupApp(f.deps())

	code, body := doJSON(t, app, "GET", "/v1/routes/"+routeID+"/stops", nil)
	if code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}
	var stops []domain.Station
	json.Unmarshal(body, &stops)
	codes := ""
	for _, s := range stops {
		codes += s.Code + " "
	}
	if codes != "ABA GUG ZUB CAS " {
		t.Errorf("unexpected stop order %q", codes)
	}
}

func segmentBody(pairs ...[2]string) map[string]interface{} {
	segs := make([]map[string]string, 0, len(pairs))
	for _, p := range pairs {
		segs = append(segs, map[string]string{"departure_station_id": p[0], "end_station_id": p[1]})
	}
	return map[string]interface{}{"segments": segs}
}

func TestReplaceRouteSegments(t *testing.T) {
	f := newFixture()
	app := setupApp(f.deps())

	code, body := doJSON(t, app, "PUT", "/v1/routes/"+routeID+"/segments",
		segmentBody([2]string{stationC, stationD}, [2]string{stationA, stationB}, [2]string{stationB, stationC}))
	if code != 200 {
		t.Fatalf("expected 200, got %d: %s", code, body)
	}
	var ordered []domain.Segment
	json.Unmarshal(body, &ordered)
	if len(ordered) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(ordered))
	}
	for i, seg := range ordered {
		if seg.Sequence != i {
			t.Errorf("segment %d has sequence %d", i, seg.Sequence)
		}
	}
	if ordered[0].DepartureStationID != stationA || ordered[2].EndStationID != stationD {
		t.Errorf("segments not in driving order: %+v", ordered)
	}

	stored, _ := f.segments.ListByRoute(context.Background(), routeID)
	if len(stored) != 3 {
		t.Errorf("expected 3 stored segments, got %d", len(stored))
	}
}

func TestReplaceRouteSegments_Rejected(t *testing.T) {
	tests := []struct {
		name     string
		body     interface{}
		wantCode int
		wantErr  string
	}{
		{
			name:     "branching",
			body:     segmentBody([2]string{stationA, stationB}, [2]string{stationB, stationC}, [2]string{stationB, stationD}),
			wantCode: 422,
			wantErr:  "invalid_route_topology",
		},
		{
			name:     "self loop",
			body:     segmentBody([2]string{stationA, stationA}),
			wantCode: 422,
			wantErr:  "invalid_route_topology",
		},
		{
			name:     "does not start at start station",
			body:     segmentBody([2]string{stationB, stationC}, [2]string{stationC, stationD}),
			wantCode: 422,
			wantErr:  "invalid_route_topology",
		},
		{
			name:     "unknown station",
			body:     segmentBody([2]string{stationA, "7a1c0000-0000-4000-8000-0000000000ff"}),
			wantCode: 400,
			wantErr:  "bad_request",
		},
		{
			name:     "station id not a uuid",
			body:     segmentBody([2]string{stationA, "abando"}),
			wantCode: 400,
			wantErr:  "bad_request",
		},
		{
			name:     "empty",
			body:     map[string]interface{}{"segments": []interface{}{}},
			wantCode: 400,
			wantErr:  "bad_request",
		},
		{
			name: "unknown status",
			body: map[string]interface{}{"segments": []map[string]string{
				{"departure_station_id": stationA, "end_station_id": stationB, "status": "closed"},
			}},
			wantCode: 400,
			wantErr:  "bad_request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			app := setupApp(f.deps())

			code, body := doJSON(t, app, "PUT", "/v1/routes/"+routeID+"/segments", tt.body)
			if code != tt.wantCode {
				t.Fatalf("expected %d, got %d: %s", tt.wantCode, code, body)
			}
			if c := errorCode(t, body); c != tt.wantErr {
				t.Errorf("expected %s, got %s", tt.wantErr, c)
			}
			if stored, _ := f.segments.ListByRoute(context.Background(), routeID); len(stored) != 0 {
				t.Errorf("rejected set must not be stored, found %d segments", len(stored))
			}
		})
	}
}

func TestReplaceRouteSegments_BadBody(t *testing.T) {
	app := setupApp(newFixture().deps())

	req := httptest.NewRequest("PUT", "/v1/routes/"+routeID+"/segments", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestDeleteSegment(t *testing.T) {
	f := newFixture()
	f.storeShuffled()
	app := setupApp(f.deps())

	code, _ := doJSON(t, app, "DELETE", "/v1/segments/"+segBC, nil)
	if code != 204 {
		t.Fatalf("expected 204, got %d", code)
	}

	code, body := doJSON(t, app, "GET", "/v1/routes/"+routeID+"/chain", nil)
	if code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}
	var chain domain.RouteChain
	json.Unmarshal(body, &chain)
	if chain.Complete {
		t.Error("expected chain to be incomplete after removing a middle segment")
	}

	code, _ = doJSON(t, app, "DELETE", "/v1/segments/"+segBC, nil)
	if code != 404 {
		t.Fatalf("expected 404 on second delete, got %d", code)
	}
}

func TestCreateRoute_UnknownStartStation(t *testing.T) {
	app := setupApp(newFixture().deps())

	code, _ := doJSON(t, app, "POST", "/v1/routes", map[string]string{
		"tour_id":          tourID,
		"name":             "Riverside",
		"start_station_id": "00000000-0000-4000-8000-000000000000",
	})
	if code != 404 {
		t.Fatalf("expected 404, got %d", code)
	}
}

func TestCreateRoute(t *testing.T) {
	app := setupApp(newFixture().deps())

	code, body := doJSON(t, app, "POST", "/v1/routes", map[string]string{
		"tour_id":          tourID,
		"name":             "Riverside",
		"start_station_id": stationA,
	})
	if code != 201 {
		t.Fatalf("expected 201, got %d: %s", code, body)
	}
}

// ---- Tours ----

func TestCreateTour(t *testing.T) {
	app := setupApp(newFixture().deps())

	code, body := doJSON(t, app, "POST", "/v1/tours", map[string]interface{}{
		"slug":             "Night-Lights",
		"name":             "Night Lights",
		"price":            "19.999",
		"currency":         "eur",
		"duration_minutes": 90,
	})
	if code != 201 {
		t.Fatalf("expected 201, got %d: %s", code, body)
	}
	var tour domain.Tour
	json.Unmarshal(body, &tour)
	if tour.Slug != "night-lights" || tour.Currency != "EUR" {
		t.Errorf("expected normalised slug and currency, got %s %s", tour.Slug, tour.Currency)
	}
	if !tour.Price.Equal(decimal.RequireFromString("20.00")) {
		t.Errorf("expected price rounded to 20.00, got %s", tour.Price)
	}
}

func TestCreateTour_Invalid(t *testing.T) {
	app := setupApp(newFixture().deps())

	code, body := doJSON(t, app, "POST", "/v1/tours", map[string]interface{}{
		"slug":     "bad slug!",
		"name":     "Bad",
		"price":    "10",
		"currency": "EUR",
	})
	if code != 400 {
		t.Fatalf("expected 400, got %d", code)
	}
	if c := errorCode(t, body); c != "bad_request" {
		t.Errorf("expected bad_request, got %s", c)
	}
}

func TestTourRoutes(t *testing.T) {
	app := setupApp(newFixture().deps())

	code, body := doJSON(t, app, "GET", "/v1/tours/old-town/routes", nil)
	if code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}
	var routes []domain.Route
	json.Unmarshal(body, &routes)
	if len(routes) != 1 || routes[0].ID != routeID {
		t.Errorf("expected the Old Town route, got %+v", routes)
	}
}

func TestGetBus_NotFound(t *testing.T) {
	app := setupApp(newFixture().deps())

	code, _ := doJSON(t, app, "GET", "/v1/buses/00000000-0000-4000-8000-000000000000", nil)
	if code != 404 {
		t.Fatalf("expected 404, got %d", code)
	}
}

// ---- GraphQL ----

func TestGraphQL_RouteChain(t *testing.T) {
	f := newFixture()
	f.storeShuffled()
	app := setupApp(f.deps())

	code, body := doJSON(t, app, "POST", "/graphql", map[string]string{
		"query": fmt.Sprintf(`{ routeChain(id: %q) { outcome complete stations } }`, routeID),
	})
	if code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}
	var result struct {
		Data struct {
			RouteChain struct {
				Outcome  string   `json:"outcome"`
				Complete bool     `json:"complete"`
				Stations []string `json:"stations"`
			} `json:"routeChain"`
		} `json:"data"`
		Errors []interface{} `json:"errors"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatal(err)
	}
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if !result.Data.RouteChain.Complete || result.Data.RouteChain.Outcome != "complete" {
		t.Errorf("expected complete chain, got %+v", result.Data.RouteChain)
	}
	if len(result.Data.RouteChain.Stations) != 4 {
		t.Errorf("expected 4 stations, got %d", len(result.Data.RouteChain.Stations))
	}
}

func TestGraphQL_TourPrice(t *testing.T) {
	app := setupApp(newFixture().deps())

	code, body := doJSON(t, app, "POST", "/graphql", map[string]string{
		"query": `{ tour(slug: "old-town") { name price routes { name } } }`,
	})
	if code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}
	var result struct {
		Data struct {
			Tour struct {
				Price  string `json:"price"`
				Routes []struct {
					Name string `json:"name"`
				} `json:"routes"`
			} `json:"tour"`
		} `json:"data"`
	}
	json.Unmarshal(body, &result)
	if result.Data.Tour.Price != "24.50" {
		t.Errorf("expected price 24.50, got %q", result.Data.Tour.Price)
	}
	if len(result.Data.Tour.Routes) != 1 {
		t.Errorf("expected 1 route, got %d", len(result.Data.Tour.Routes))
	}
}

func TestGraphQL_EmptyQuery(t *testing.T) {
	app := setupApp(newFixture().deps())

	code, _ := doJSON(t, app, "POST", "/graphql", map[string]string{"query": ""})
	if code != 400 {
		t.Fatalf("expected 400, got %d", code)
	}
}

// ---- Middleware ----

func TestSecurityHeaders(t *testing.T) {
	app := setupApp(newFixture().deps(func(d *handler.Dependencies) {
		d.Options.Version = "1.4.0"
	}))

	req := httptest.NewRequest("GET", "/v1/health", nil)
	resp, _ := app.Test(req, -1)
	if got := resp.Header.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("expected nosniff, got %q", got)
	}
	if got := resp.Header.Get("X-API-Version"); got != "1.4.0" {
		t.Errorf("expected version header 1.4.0, got %q", got)
	}
	if resp.Header.Get("X-Request-Id") == "" {
		t.Error("expected request id header")
	}
}

// ---- Docs ----

func TestDocs(t *testing.T) {
	app := setupApp(newFixture().deps(func(d *handler.Dependencies) {
		d.Options.DocsPath = "../../../api/openapi.yaml"
	}))

	code, body := doJSON(t, app, "GET", "/docs/openapi.yaml", nil)
	if code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}
	if !bytes.Contains(body, []byte("Sightseer Tour API")) {
		t.Error("expected the OpenAPI document")
	}

	code, _ = doJSON(t, app, "GET", "/docs", nil)
	if code != 200 {
		t.Fatalf("expected 200 for Swagger UI, got %d", code)
	}
}

func TestDocs_MissingDocument(t *testing.T) {
	app := setupApp(newFixture().deps(func(d *handler.Dependencies) {
		d.Options.DocsPath = "does/not/exist.yaml"
	}))

	code, body := doJSON(t, app, "GET", "/docs/openapi.yaml", nil)
	if code != 404 {
		t.Fatalf("expected 404, got %d", code)
	}
	if c := errorCode(t, body); c != "not_found" {
		t.Errorf("expected not_found, got %s", c)
	}
}
