package usecases_test

import (
	"context"
	"sync"

	"github.com/samirrijal/sightseer/internal/core/domain"
	"github.com/samirrijal/sightseer/internal/core/ports"
)

// --- Mock StationRepository ---

type mockStationRepo struct {
	createFn       func(ctx context.Context, st *domain.Station) error
	getByIDFn      func(ctx context.Context, id string) (*domain.Station, error)
	getByIDsFn     func(ctx context.Context, ids []string) ([]domain.Station, error)
	listFn         func(ctx context.Context) ([]domain.Station, error)
	withinBoundsFn func(ctx context.Context, minLat, minLon, maxLat, maxLon float64) ([]domain.Station, error)
	poisFn         func(ctx context.Context, stationID string) ([]domain.PointOfInterest, error)
}

func (m *mockStationRepo) Create(ctx context.Context, st *domain.Station) error {
	if m.createFn != nil {
		return m.createFn(ctx, st)
	}
	return nil
}

func (m *mockStationRepo) GetByID(ctx context.Context, id string) (*domain.Station, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return &domain.Station{ID: id}, nil
}

func (m *mockStationRepo) GetByIDs(ctx context.Context, ids []string) ([]domain.Station, error) {
	if m.getByIDsFn != nil {
		return m.getByIDsFn(ctx, ids)
	}
	seen := map[string]bool{}
	var out []domain.Station
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, domain.Station{ID: id})
		}
	}
	return out, nil
}

func (m *mockStationRepo) List(ctx context.Context) ([]domain.Station, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockStationRepo) WithinBounds(ctx context.Context, minLat, minLon, maxLat, maxLon float64) ([]domain.Station, error) {
	if m.withinBoundsFn != nil {
		return m.withinBoundsFn(ctx, minLat, minLon, maxLat, maxLon)
	}
	return nil, nil
}

func (m *mockStationRepo) PointsOfInterest(ctx context.Context, stationID string) ([]domain.PointOfInterest, error) {
	if m.poisFn != nil {
		return m.poisFn(ctx, stationID)
	}
	return nil, nil
}

// --- Mock RouteRepository ---

type mockRouteRepo struct {
	createFn     func(ctx context.Context, r *domain.Route) error
	getByIDFn    func(ctx context.Context, id string) (*domain.Route, error)
	listByTourFn func(ctx context.Context, tourID string) ([]domain.Route, error)
}

func (m *mockRouteRepo) Create(ctx context.Context, r *domain.Route) error {
	if m.createFn != nil {
		return m.createFn(ctx, r)
	}
	return nil
}

func (m *mockRouteRepo) GetByID(ctx context.Context, id string) (*domain.Route, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, ports.ErrNotFound
}

func (m *mockRouteRepo) ListByTour(ctx context.Context, tourID string) ([]domain.Route, error) {
	if m.listByTourFn != nil {
		return m.listByTourFn(ctx, tourID)
	}
	return nil, nil
}

// --- Mock SegmentRepository ---

// mockSegmentRepo keeps segments in memory per route. afterList, when set,
// runs once after the next ListByRoute has taken its snapshot.
type mockSegmentRepo struct {
	mu         sync.Mutex
	byRoute    map[string][]domain.Segment
	listCalls  int
	replaceErr error
	afterList  func()
}

func newMockSegmentRepo(routeID string, segs ...domain.Segment) *mockSegmentRepo {
	return &mockSegmentRepo{byRoute: map[string][]domain.Segment{routeID: segs}}
}

func (m *mockSegmentRepo) ListByRoute(ctx context.Context, routeID string) ([]domain.Segment, error) {
	m.mu.Lock()
	m.listCalls++
	out := append([]domain.Segment(nil), m.byRoute[routeID]...)
	hook := m.afterList
	m.afterList = nil
	m.mu.Unlock()

	if hook != nil {
		hook()
	}
	return out, nil
}

func (m *mockSegmentRepo) ReplaceForRoute(ctx context.Context, routeID string, segs []domain.Segment) error {
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byRoute[routeID] = append([]domain.Segment(nil), segs...)
	return nil
}

func (m *mockSegmentRepo) GetByID(ctx context.Context, id string) (*domain.Segment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, segs := range m.byRoute {
		for _, s := range segs {
			if s.ID == id {
				s := s
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

// --- Mock TourRepository ---

type mockTourRepo struct {
	createFn    func(ctx context.Context, t *domain.Tour) error
	getBySlugFn func(ctx context.Context, slug string) (*domain.Tour, error)
	listFn      func(ctx context.Context) ([]domain.Tour, error)
	schedulesFn func(ctx context.Context, tourID string, limit int) ([]domain.Schedule, error)
}

func (m *mockTourRepo) Create(ctx context.Context, t *domain.Tour) error {
	if m.createFn != nil {
		return m.createFn(ctx, t)
	}
	return nil
}

func (m *mockTourRepo) GetBySlug(ctx context.Context, slug string) (*domain.Tour, error) {
	if m.getBySlugFn != nil {
		return m.getBySlugFn(ctx, slug)
	}
	return nil, ports.ErrNotFound
}

func (m *mockTourRepo) List(ctx context.Context) ([]domain.Tour, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockTourRepo) UpcomingSchedules(ctx context.Context, tourID string, limit int) ([]domain.Schedule, error) {
	if m.schedulesFn != nil {
		return m.schedulesFn(ctx, tourID, limit)
	}
	return nil, nil
}

// --- Mock BusRepository ---

type mockBusRepo struct {
	getByIDFn func(ctx context.Context, id string) (*domain.Bus, error)
	listFn    func(ctx context.Context) ([]domain.Bus, error)
}

func (m *mockBusRepo) GetByID(ctx context.Context, id string) (*domain.Bus, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, ports.ErrNotFound
}

func (m *mockBusRepo) List(ctx context.Context) ([]domain.Bus, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

// --- Mock CacheService ---

type mockCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	ttls    map[string]int
	deletes []string
}

func newMockCache() *mockCache {
	return &mockCache{data: map[string][]byte{}, ttls: map[string]int{}}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return v, nil
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.ttls[key] = ttlSeconds
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	m.deletes = append(m.deletes, key)
	return nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	mu       sync.Mutex
	updated  []string
	deleted  []string
	failWith error
}

func (m *mockPublisher) PublishRouteUpdated(ctx context.Context, routeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updated = append(m.updated, routeID)
	return m.failWith
}

func (m *mockPublisher) PublishSegmentDeleted(ctx context.Context, routeID, segmentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, segmentID)
	return m.failWith
}
