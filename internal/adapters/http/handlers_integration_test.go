//go:build integration
// +build integration

package http_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/KRVIMAL/routeye-sub001/internal/adapters/http"
	"github.com/KRVIMAL/routeye-sub001/internal/adapters/postgres"
	"github.com/KRVIMAL/routeye-sub001/internal/core/domain"
	"github.com/KRVIMAL/routeye-sub001/internal/core/usecases"
	"github.com/KRVIMAL/routeye-sub001/internal/pkg/config"
)

// setupTestDB connects to the test database. Migrations must already be applied.
func setupTestDB(t *testing.T) *postgres.DB {
	cfg, err := config.Load("routeye-test")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	pool, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("ping db: %v", err)
	}

	return &postgres.DB{Pool: pool}
}

// setupTestDeps creates dependencies with real DB and repos, no cache or broker.
func setupTestDeps(t *testing.T, db *postgres.DB) *http.Dependencies {
	geozones := usecases.NewGeozoneService(postgres.NewGeozoneRepo(db), nil, nil, nil)
	catalog := usecases.NewGeozoneCatalog(geozones, nil)
	if err := catalog.Initialize(context.Background(), true); err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	resolver := usecases.NewShapeResolver(catalog, nil)

	return &http.Dependencies{
		Routes:      usecases.NewRouteService(postgres.NewRouteRepo(db), resolver, nil, nil, nil),
		Geozones:    geozones,
		Catalog:     catalog,
		Provisioner: geozones,
		DB:          db,
	}
}

// TestRouteLifecycle_Integration creates, reads, searches and deletes a route.
func TestRouteLifecycle_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Pool.Close()

	app := setupApp(setupTestDeps(t, db))

	name := "integ route " + time.Now().Format("20060102150405")
	route := sampleRoute("")
	route.Name = name
	body, _ := json.Marshal(route)

	req := httptest.NewRequest("POST", "/v1/routes", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}
	var created struct {
		Data domain.Route `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	id := created.Data.ID
	if id == "" {
		t.Fatal("expected generated id")
	}

	resp, _ = app.Test(httptest.NewRequest("GET", "/v1/routes/"+id, nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var got struct {
		Data domain.Route `json:"data"`
	}
	json.NewDecoder(resp.Body).Decode(&got)
	if len(got.Data.Path) != len(route.Path) {
		t.Errorf("expected %d path points, got %d", len(route.Path), len(got.Data.Path))
	}

	resp, _ = app.Test(httptest.NewRequest("GET", "/v1/routes/search?q=integ", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	resp, _ = app.Test(httptest.NewRequest("DELETE", "/v1/routes/"+id, nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	resp, _ = app.Test(httptest.NewRequest("GET", "/v1/routes/"+id, nil), -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404 after delete, got %d", resp.StatusCode)
	}
}

// TestGetRoute_Integration_MalformedID checks that a non-UUID id is a 404.
func TestGetRoute_Integration_MalformedID(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Pool.Close()

	app := setupApp(setupTestDeps(t, db))
	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/routes/not-a-uuid", nil), -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

// TestGeozoneCreate_Integration provisions a polygon geozone and reads it back.
func TestGeozoneCreate_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Pool.Close()

	deps := setupTestDeps(t, db)
	app := setupApp(deps)
	before := deps.Catalog.Size()

	body := `{"name":"integ yard","created_by":"integration","is_public":true,
		"geometry":{"type":"polygon","vertices":[{"lat":12.9,"lng":77.6},{"lat":12.91,"lng":77.6},{"lat":12.91,"lng":77.61}]}}`
	req := httptest.NewRequest("POST", "/v1/geozones", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}
	var created struct {
		Data domain.Geozone `json:"data"`
	}
	json.NewDecoder(resp.Body).Decode(&created)
	defer deps.Geozones.Delete(context.Background(), created.Data.ID)

	if deps.Catalog.Size() != before+1 {
		t.Errorf("expected catalog size %d, got %d", before+1, deps.Catalog.Size())
	}
	if n := len(created.Data.Geometry.Vertices); n != 4 {
		t.Errorf("expected closed ring of 4 vertices, got %d", n)
	}
}
