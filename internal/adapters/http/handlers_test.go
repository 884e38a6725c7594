package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	handler "github.com/KRVIMAL/routeye-sub001/internal/adapters/http"
	"github.com/KRVIMAL/routeye-sub001/internal/core/domain"
	"github.com/KRVIMAL/routeye-sub001/internal/core/usecases"
)

// ---- Mock repositories ----

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

type mockGeozoneRepo struct {
	mu        sync.Mutex
	listCalls int
	createFn  func(ctx context.Context, gz *domain.Geozone) error
	deleteFn  func(ctx context.Context, id string) error
	getByIDFn func(ctx context.Context, id string) (*domain.Geozone, error)
	listFn    func(ctx context.Context) ([]domain.Geozone, error)
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
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}
func (m *mockGeozoneRepo) List(ctx context.Context) ([]domain.Geozone, error) {
	m.mu.Lock()
	m.listCalls++
	m.mu.Unlock()
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockGeozoneRepo) ListCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listCalls
}

type mockProvisioner struct {
	provisionFn func(ctx context.Context, in domain.GeozoneInput) (*domain.Geozone, error)
}

func (m *mockProvisioner) Provision(ctx context.Context, in domain.GeozoneInput) (*domain.Geozone, error) {
	if m.provisionFn != nil {
		return m.provisionFn(ctx, in)
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	gz := in.ToGeozone()
	gz.ID = "gz-provisioned"
	return &gz, nil
}

// ---- Test helpers ----

type testEnv struct {
	routes   *mockRouteRepo
	geozones *mockGeozoneRepo
	prov     *mockProvisioner
}

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

func makeDeps(env *testEnv) *handler.Dependencies {
	if env.routes == nil {
		env.routes = &mockRouteRepo{}
	}
	if env.geozones == nil {
		env.geozones = &mockGeozoneRepo{}
	}
	if env.prov == nil {
		env.prov = &mockProvisioner{}
	}
	geozones := usecases.NewGeozoneService(env.geozones, nil, nil, nil)
	catalog := usecases.NewGeozoneCatalog(geozones, nil)
	resolver := usecases.NewShapeResolver(catalog, nil)
	return &handler.Dependencies{
		Routes:      usecases.NewRouteService(env.routes, resolver, nil, nil, nil),
		Geozones:    geozones,
		Catalog:     catalog,
		Provisioner: env.prov,
	}
}

func readBody(t *testing.T, body io.Reader) []byte {
	t.Helper()
	b, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return b
}

func sampleRoute(id string) domain.Route {
	return domain.Route{
		ID:          id,
		Name:        "Depot to Airport",
		TravelMode:  domain.TravelDriving,
		Origin:      domain.PlainLocation("Depot", domain.Coordinate{Lat: 12.95, Lng: 77.55}),
		Destination: domain.PlainLocation("Airport", domain.Coordinate{Lat: 13.19, Lng: 77.70}),
		Path:        []domain.Coordinate{{Lat: 12.95, Lng: 77.55}, {Lat: 13.19, Lng: 77.70}},
		Distance:    domain.Metric{Value: 31200, Text: "31.2 km"},
		Duration:    domain.Metric{Value: 2400, Text: "40 mins"},
	}
}

func circleGeozone(id, name string) domain.Geozone {
	return domain.Geozone{
		ID:        id,
		Name:      name,
		Geometry:  domain.NewCircle(domain.Coordinate{Lat: 12.97, Lng: 77.59}, 250),
		IsPublic:  true,
		CreatedBy: "ops",
		CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

type apiError struct {
	Status  int      `json:"status"`
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details"`
}

// ---- Route handler tests ----

func TestListRoutes_Success(t *testing.T) {
	env := &testEnv{routes: &mockRouteRepo{
		listPageFn: func(ctx context.Context, offset, limit int) ([]domain.Route, int, error) {
			return []domain.Route{sampleRoute("r1"), sampleRoute("r2")}, 7, nil
		},
	}}
	app := setupApp(makeDeps(env))

	req := httptest.NewRequest("GET", "/v1/routes?offset=2&limit=2", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Success    bool           `json:"success"`
		Data       []domain.Route `json:"data"`
		Pagination struct {
			Offset int `json:"offset"`
			Limit  int `json:"limit"`
			Total  int `json:"total"`
		} `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if !result.Success {
		t.Error("expected success=true")
	}
	if len(result.Data) != 2 {
		t.Errorf("expected 2 routes, got %d", len(result.Data))
	}
	if result.Pagination.Total != 7 || result.Pagination.Offset != 2 || result.Pagination.Limit != 2 {
		t.Errorf("unexpected pagination %+v", result.Pagination)
	}
	if link := resp.Header.Get("Link"); !strings.Contains(link, `rel="next"`) {
		t.Errorf("expected next link, got %q", link)
	}
}

func TestListRoutes_EmptyIsArray(t *testing.T) {
	app := setupApp(makeDeps(&testEnv{}))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/routes", nil), -1)
	body := string(readBody(t, resp.Body))
	if !strings.Contains(body, `"data":[]`) {
		t.Errorf("expected empty data array, got %s", body)
	}
}

func TestSearchRoutes_MissingQuery(t *testing.T) {
	app := setupApp(makeDeps(&testEnv{}))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/routes/search", nil), -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	var e apiError
	json.NewDecoder(resp.Body).Decode(&e)
	if e.Code != "bad_request" {
		t.Errorf("expected bad_request, got %s", e.Code)
	}
}

func TestSearchRoutes_QueryTooLong(t *testing.T) {
	app := setupApp(makeDeps(&testEnv{}))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/routes/search?q="+strings.Repeat("a", 201), nil), -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestSearchRoutes_Success(t *testing.T) {
	var gotQuery string
	env := &testEnv{routes: &mockRouteRepo{
		searchFn: func(ctx context.Context, q string, limit int) ([]domain.Route, error) {
			gotQuery = q
			return []domain.Route{sampleRoute("r1")}, nil
		},
	}}
	app := setupApp(makeDeps(env))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/routes/search?q=airport", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if gotQuery != "airport" {
		t.Errorf("expected query airport, got %q", gotQuery)
	}
}

func TestGetRoute_NotFound(t *testing.T) {
	app := setupApp(makeDeps(&testEnv{}))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/routes/missing", nil), -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	var e apiError
	json.NewDecoder(resp.Body).Decode(&e)
	if e.Message != "route not found" {
		t.Errorf("unexpected message %q", e.Message)
	}
}

func TestGetRoute_Success(t *testing.T) {
	env := &testEnv{routes: &mockRouteRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Route, error) {
			r := sampleRoute(id)
			return &r, nil
		},
	}}
	app := setupApp(makeDeps(env))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/routes/r1", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var result struct {
		Data domain.Route `json:"data"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Data.ID != "r1" || result.Data.Origin.Name != "Depot" {
		t.Errorf("unexpected route %+v", result.Data)
	}
}

func TestCreateRoute_Created(t *testing.T) {
	var created *domain.Route
	env := &testEnv{routes: &mockRouteRepo{
		createFn: func(ctx context.Context, r *domain.Route) error {
			r.ID = "r-42"
			created = r
			return nil
		},
	}}
	app := setupApp(makeDeps(env))

	body, _ := json.Marshal(sampleRoute("client-supplied"))
	req := httptest.NewRequest("POST", "/v1/routes", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}
	if loc := resp.Header.Get("Location"); loc != "/v1/routes/r-42" {
		t.Errorf("unexpected Location %q", loc)
	}
	if created == nil {
		t.Fatal("expected Create to be called")
	}
}

func TestCreateRoute_ValidationFailed(t *testing.T) {
	app := setupApp(makeDeps(&testEnv{}))

	req := httptest.NewRequest("POST", "/v1/routes", strings.NewReader(`{"name":""}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	var e apiError
	json.NewDecoder(resp.Body).Decode(&e)
	if len(e.Details) != 4 {
		t.Errorf("expected 4 problems, got %v", e.Details)
	}
}

func TestUpdateRoute_UsesPathID(t *testing.T) {
	var updatedID string
	env := &testEnv{routes: &mockRouteRepo{
		updateFn: func(ctx context.Context, r *domain.Route) error {
			updatedID = r.ID
			return nil
		},
	}}
	app := setupApp(makeDeps(env))

	body, _ := json.Marshal(sampleRoute("other"))
	req := httptest.NewRequest("PUT", "/v1/routes/r-7", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if updatedID != "r-7" {
		t.Errorf("expected update of r-7, got %q", updatedID)
	}
}

func TestDeleteRoute_NotFound(t *testing.T) {
	env := &testEnv{routes: &mockRouteRepo{
		deleteFn: func(ctx context.Context, id string) error { return domain.ErrNotFound },
	}}
	app := setupApp(makeDeps(env))

	resp, _ := app.Test(httptest.NewRequest("DELETE", "/v1/routes/nope", nil), -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestRouteKML(t *testing.T) {
	env := &testEnv{routes: &mockRouteRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Route, error) {
			r := sampleRoute(id)
			return &r, nil
		},
	}}
	app := setupApp(makeDeps(env))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/routes/r1/kml", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/vnd.google-earth.kml+xml") {
		t.Errorf("unexpected content type %q", ct)
	}
	body := string(readBody(t, resp.Body))
	for _, want := range []string{"<LineString>", "Origin: Depot", "Destination: Airport"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in KML", want)
		}
	}
}

// ---- Geozone handler tests ----

func TestListGeozones_Filter(t *testing.T) {
	env := &testEnv{geozones: &mockGeozoneRepo{
		listFn: func(ctx context.Context) ([]domain.Geozone, error) {
			return []domain.Geozone{circleGeozone("g1", "North Depot"), circleGeozone("g2", "Airport Gate")}, nil
		},
	}}
	app := setupApp(makeDeps(env))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/geozones?q=depot", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var result struct {
		Data []domain.Geozone `json:"data"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if len(result.Data) != 1 || result.Data[0].ID != "g1" {
		t.Errorf("unexpected geozones %+v", result.Data)
	}
	if cc := resp.Header.Get("Cache-Control"); cc != "public, max-age=60" {
		t.Errorf("unexpected Cache-Control %q", cc)
	}
}

func TestCreateGeozone_RefreshesCatalog(t *testing.T) {
	env := &testEnv{}
	app := setupApp(makeDeps(env))

	body := `{"name":"Yard","created_by":"ops","is_public":true,
		"geometry":{"type":"circle","center":{"lat":12.9,"lng":77.6},"radius":150}}`
	req := httptest.NewRequest("POST", "/v1/geozones", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}
	if loc := resp.Header.Get("Location"); loc != "/v1/geozones/gz-provisioned" {
		t.Errorf("unexpected Location %q", loc)
	}
	if env.geozones.ListCalls() != 1 {
		t.Errorf("expected catalog refresh, list called %d times", env.geozones.ListCalls())
	}
}

func TestCreateGeozone_Invalid(t *testing.T) {
	app := setupApp(makeDeps(&testEnv{}))

	body := `{"name":"Yard","created_by":"ops","is_public":true,"is_private":true,
		"geometry":{"type":"circle","center":{"lat":12.9,"lng":77.6},"radius":0}}`
	req := httptest.NewRequest("POST", "/v1/geozones", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	var e apiError
	json.NewDecoder(resp.Body).Decode(&e)
	if len(e.Details) != 2 {
		t.Errorf("expected 2 problems, got %v", e.Details)
	}
}

func TestGetGeozone_NotFound(t *testing.T) {
	app := setupApp(makeDeps(&testEnv{}))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/geozones/missing", nil), -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestGeofencesAlias_Deprecated(t *testing.T) {
	app := setupApp(makeDeps(&testEnv{}))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/geofences", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Deprecation") != "true" {
		t.Error("expected Deprecation header")
	}
	if link := resp.Header.Get("Link"); !strings.Contains(link, "/v1/geozones") {
		t.Errorf("expected successor link, got %q", link)
	}
}

func TestGeozonesKML(t *testing.T) {
	env := &testEnv{geozones: &mockGeozoneRepo{
		listFn: func(ctx context.Context) ([]domain.Geozone, error) {
			return []domain.Geozone{circleGeozone("g1", "North Depot")}, nil
		},
	}}
	app := setupApp(makeDeps(env))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/geozones/kml", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := string(readBody(t, resp.Body))
	if !strings.Contains(body, "North Depot") || !strings.Contains(body, "<Polygon>") {
		t.Errorf("unexpected KML %s", body)
	}
}

func TestCatalogStatus(t *testing.T) {
	env := &testEnv{geozones: &mockGeozoneRepo{
		listFn: func(ctx context.Context) ([]domain.Geozone, error) {
			return []domain.Geozone{circleGeozone("g1", "A"), circleGeozone("g2", "B")}, nil
		},
	}}
	deps := makeDeps(env)
	if err := deps.Catalog.Initialize(context.Background(), false); err != nil {
		t.Fatal(err)
	}
	app := setupApp(deps)

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/geozones/catalog", nil), -1)
	var result struct {
		Data struct {
			Loaded bool `json:"loaded"`
			Size   int  `json:"size"`
		} `json:"data"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if !result.Data.Loaded || result.Data.Size != 2 {
		t.Errorf("unexpected catalog status %+v", result.Data)
	}
}

// ---- Health, GraphQL, WebSocket ----

func TestHealth(t *testing.T) {
	app := setupApp(makeDeps(&testEnv{}))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/health", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-Id") == "" {
		t.Error("expected X-Request-Id header")
	}
}

func TestReady_NoDatabase(t *testing.T) {
	app := setupApp(makeDeps(&testEnv{}))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/ready", nil), -1)
	if resp.StatusCode != 503 {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
}

func TestGraphQL_Routes(t *testing.T) {
	env := &testEnv{routes: &mockRouteRepo{
		listPageFn: func(ctx context.Context, offset, limit int) ([]domain.Route, int, error) {
			return []domain.Route{sampleRoute("r1")}, 1, nil
		},
	}}
	app := setupApp(makeDeps(env))

	req := httptest.NewRequest("POST", "/graphql",
		strings.NewReader(`{"query":"{ routes(limit: 5) { id name origin { name } distance { text } } }"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data struct {
			Routes []struct {
				ID     string `json:"id"`
				Name   string `json:"name"`
				Origin struct {
					Name string `json:"name"`
				} `json:"origin"`
				Distance struct {
					Text string `json:"text"`
				} `json:"distance"`
			} `json:"routes"`
		} `json:"data"`
		Errors []any `json:"errors"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if len(result.Errors) > 0 {
		t.Fatalf("graphql errors: %v", result.Errors)
	}
	if len(result.Data.Routes) != 1 || result.Data.Routes[0].Origin.Name != "Depot" || result.Data.Routes[0].Distance.Text != "31.2 km" {
		t.Errorf("unexpected graphql data %+v", result.Data)
	}
}

func TestGraphQL_GeozonesAt(t *testing.T) {
	env := &testEnv{geozones: &mockGeozoneRepo{
		listFn: func(ctx context.Context) ([]domain.Geozone, error) {
			return []domain.Geozone{circleGeozone("g1", "Warehouse")}, nil
		},
	}}
	deps := makeDeps(env)
	if err := deps.Catalog.Initialize(context.Background(), false); err != nil {
		t.Fatal(err)
	}
	app := setupApp(deps)

	query := func(lat, lng string) []string {
		body := `{"query":"{ geozonesAt(lat: ` + lat + `, lng: ` + lng + `) { id } }"}`
		req := httptest.NewRequest("POST", "/graphql", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req, -1)
		var result struct {
			Data struct {
				GeozonesAt []struct {
					ID string `json:"id"`
				} `json:"geozonesAt"`
			} `json:"data"`
		}
		json.NewDecoder(resp.Body).Decode(&result)
		var ids []string
		for _, gz := range result.Data.GeozonesAt {
			ids = append(ids, gz.ID)
		}
		return ids
	}

	if ids := query("12.9705", "77.5905"); len(ids) != 1 || ids[0] != "g1" {
		t.Errorf("expected [g1] inside the warehouse, got %v", ids)
	}
	if ids := query("13.5", "77.59"); len(ids) != 0 {
		t.Errorf("expected no geozones far away, got %v", ids)
	}
}

func TestGraphQL_EmptyQuery(t *testing.T) {
	app := setupApp(makeDeps(&testEnv{}))

	req := httptest.NewRequest("POST", "/graphql", strings.NewReader(`{"query":""}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestEditorSocket_RequiresUpgrade(t *testing.T) {
	app := setupApp(makeDeps(&testEnv{}))

	resp, _ := app.Test(httptest.NewRequest("GET", "/ws/editor", nil), -1)
	if resp.StatusCode != fiber.StatusUpgradeRequired {
		t.Fatalf("expected 426, got %d", resp.StatusCode)
	}
}

func TestReady_ReportsEachCheck(t *testing.T) {
	app := setupApp(makeDeps(&testEnv{}))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/ready", nil), -1)
	var result struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	if err := json.Unmarshal(readBody(t, resp.Body), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Status != "not ready" {
		t.Errorf("expected status 'not ready', got %q", result.Status)
	}
	if result.Checks["database"] != "error: not configured" {
		t.Errorf("unexpected database check %q", result.Checks["database"])
	}
	if result.Checks["nats"] != "not configured" || result.Checks["cache"] != "not configured" {
		t.Errorf("optional checks should report not configured, got %v", result.Checks)
	}
}
