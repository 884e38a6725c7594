package usecases_test

import (
	"context"
	"errors"
	"sync"

	"github.com/KRVIMAL/routeye-sub001/internal/core/domain"
)

// --- Mock GeozoneSource ---

type mockGeozoneSource struct {
	mu     sync.Mutex
	calls  int
	listFn func(ctx context.Context) ([]domain.Geozone, error)
}

func (m *mockGeozoneSource) ListGeozones(ctx context.Context) ([]domain.Geozone, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockGeozoneSource) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func staticSource(list ...domain.Geozone) *mockGeozoneSource {
	return &mockGeozoneSource{listFn: func(ctx context.Context) ([]domain.Geozone, error) { return list, nil }}
}

// --- Recording MapSurface ---

type recordingSurface struct {
	mu   sync.Mutex
	cmds []domain.MapCommand
}

func (s *recordingSurface) Apply(cmds ...domain.MapCommand) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cmds = append(s.cmds, cmds...)
}

func (s *recordingSurface) Take() []domain.MapCommand {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.cmds
	s.cmds = nil
	return out
}

// --- Recording SessionSink ---

type recordingSink struct {
	mu      sync.Mutex
	updates []domain.SessionUpdate
	ch      chan domain.SessionUpdate
}

func newRecordingSink() *recordingSink {
	return &recordingSink{ch: make(chan domain.SessionUpdate, 256)}
}

func (s *recordingSink) Notify(u domain.SessionUpdate) {
	s.mu.Lock()
	s.updates = append(s.updates, u)
	s.mu.Unlock()
	select {
	case s.ch <- u:
	default:
	}
}

func (s *recordingSink) Errors() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, u := range s.updates {
		if u.Kind == domain.UpdateError {
			out = append(out, u.Message)
		}
	}
	return out
}

// --- Mock RouteRepository ---

type mockRouteRepo struct {
	createFn   func(ctx context.Context, r *domain.Route) error
	updateFn   func(ctx context.Context, r *domain.Route) error
	deleteFn   func(ctx context.Context, id string) error
	getByIDFn  func(ctx context.Context, id string) (*domain.Route, error)
	listPageFn func(ctx context.Context, offset, limit int) ([]domain.Route, int, error)
	searchFn   func(ctx context.Context, q string, limit int) ([]domain.Route, error)
}

func (m *mockRouteRepo) Create(ctx context.Context, r *domain.Route) error {
	if m.createFn != nil {
		return m.createFn(ctx, r)
	}
	r.ID = "route-new"
	return nil
}

func (m *mockRouteRepo) Update(ctx context.Context, r *domain.Route) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, r)
	}
	return nil
}

func (m *mockRouteRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockRouteRepo) GetByID(ctx context.Context, id string) (*domain.Route, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockRouteRepo) ListPage(ctx context.Context, offset, limit int) ([]domain.Route, int, error) {
	if m.listPageFn != nil {
		return m.listPageFn(ctx, offset, limit)
	}
	return nil, 0, nil
}

func (m *mockRouteRepo) Search(ctx context.Context, q string, limit int) ([]domain.Route, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, q, limit)
	}
	return nil, nil
}

// --- Mock GeozoneRepository ---

type mockGeozoneRepo struct {
	createFn func(ctx context.Context, gz *domain.Geozone) error
	deleteFn func(ctx context.Context, id string) error
	listFn   func(ctx context.Context) ([]domain.Geozone, error)
}

func (m *mockGeozoneRepo) Create(ctx context.Context, gz *domain.Geozone) error {
	if m.createFn != nil {
		return m.createFn(ctx, gz)
	}
	gz.ID = "gz-new"
	return nil
}

func (m *mockGeozoneRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockGeozoneRepo) GetByID(ctx context.Context, id string) (*domain.Geozone, error) {
	return nil, domain.ErrNotFound
}

func (m *mockGeozoneRepo) List(ctx context.Context) ([]domain.Geozone, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

// --- Mock CacheService ---

type mockCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	deleted []string
}

func newMockCache() *mockCache { return &mockCache{data: make(map[string][]byte)} }

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, errors.New("cache miss")
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	m.deleted = append(m.deleted, key)
	return nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	mu       sync.Mutex
	saved    []string
	deleted  []string
	geozones []string
	err      error
}

func (m *mockPublisher) PublishRouteSaved(ctx context.Context, r *domain.Route) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, r.ID)
	return m.err
}

func (m *mockPublisher) PublishRouteDeleted(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, id)
	return m.err
}

func (m *mockPublisher) PublishGeozoneCreated(ctx context.Context, gz *domain.Geozone) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.geozones = append(m.geozones, gz.ID)
	return m.err
}

func (m *mockPublisher) PublishBroadcast(ctx context.Context, data []byte) error { return m.err }

// --- Mock Router ---

type mockRouter struct {
	directionsFn func(ctx context.Context, req domain.DirectionsRequest) (*domain.DirectionsResult, error)
}

func (m *mockRouter) Directions(ctx context.Context, req domain.DirectionsRequest) (*domain.DirectionsResult, error) {
	if m.directionsFn != nil {
		return m.directionsFn(ctx, req)
	}
	return straightLine(req), nil
}

// straightLine returns a single alternative through every requested stop.
func straightLine(req domain.DirectionsRequest) *domain.DirectionsResult {
	stops := append([]domain.Coordinate{req.Origin}, req.Waypoints...)
	stops = append(stops, req.Destination)
	alt := domain.PathAlternative{Summary: "direct", OverviewPath: stops}
	for i := 0; i+1 < len(stops); i++ {
		alt.Legs = append(alt.Legs, domain.Leg{
			StartCoordinate: stops[i], EndCoordinate: stops[i+1],
			DistanceMeters: 1000, DurationSeconds: 120,
		})
	}
	return &domain.DirectionsResult{Alternatives: []domain.PathAlternative{alt}}
}

// --- Mock Geocoder ---

type mockGeocoder struct {
	geocodeFn func(ctx context.Context, q string) (*domain.GeocodeCandidate, error)
	reverseFn func(ctx context.Context, c domain.Coordinate) (string, error)
}

func (m *mockGeocoder) Geocode(ctx context.Context, q string) (*domain.GeocodeCandidate, error) {
	if m.geocodeFn != nil {
		return m.geocodeFn(ctx, q)
	}
	return nil, domain.ErrNotFound
}

func (m *mockGeocoder) ReverseGeocode(ctx context.Context, c domain.Coordinate) (string, error) {
	if m.reverseFn != nil {
		return m.reverseFn(ctx, c)
	}
	return "", domain.ErrNotFound
}

// --- Mock GeozoneProvisioner ---

type mockProvisioner struct {
	provisionFn func(ctx context.Context, in domain.GeozoneInput) (*domain.Geozone, error)
}

func (m *mockProvisioner) Provision(ctx context.Context, in domain.GeozoneInput) (*domain.Geozone, error) {
	if m.provisionFn != nil {
		return m.provisionFn(ctx, in)
	}
	gz := in.ToGeozone()
	gz.ID = "gz-drawn"
	return &gz, nil
}

// --- fixtures ---

var (
	pointA = domain.Coordinate{Lat: 12.95, Lng: 77.55}
	pointB = domain.Coordinate{Lat: 12.85, Lng: 77.65}
	z1     = domain.Coordinate{Lat: 12.9, Lng: 77.6}
)

func circleZone(id, name string, center domain.Coordinate, radius float64) domain.Geozone {
	return domain.Geozone{ID: id, Name: name, FinalAddress: name + " address", Geometry: domain.NewCircle(center, radius)}
}
