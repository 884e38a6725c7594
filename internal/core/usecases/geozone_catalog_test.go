package usecases_test

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/KRVIMAL/routeye-sub001/internal/core/domain"
	"github.com/KRVIMAL/routeye-sub001/internal/core/usecases"
)

func TestGeozoneCatalog_InitializeIsIdempotent(t *testing.T) {
	src := staticSource(circleZone("z1", "Z1", z1, 150))
	cat := usecases.NewGeozoneCatalog(src, nil)

	if cat.Loaded() {
		t.Fatal("expected empty catalog before Initialize")
	}
	for i := 0; i < 3; i++ {
		if err := cat.Initialize(context.Background(), false); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if src.Calls() != 1 {
		t.Errorf("expected 1 fetch, got %d", src.Calls())
	}
	if cat.Size() != 1 {
		t.Errorf("expected 1 geozone, got %d", cat.Size())
	}
	if cat.RefreshedAt().IsZero() {
		t.Error("expected refresh time to be set")
	}
}

func TestGeozoneCatalog_ForceRefreshSwapsSnapshot(t *testing.T) {
	var mu sync.Mutex
	list := []domain.Geozone{circleZone("z1", "Z1", z1, 150)}
	src := &mockGeozoneSource{listFn: func(ctx context.Context) ([]domain.Geozone, error) {
		mu.Lock()
		defer mu.Unlock()
		return list, nil
	}}
	cat := usecases.NewGeozoneCatalog(src, nil)
	_ = cat.Initialize(context.Background(), false)

	mu.Lock()
	list = []domain.Geozone{circleZone("z2", "Z2", pointA, 80)}
	mu.Unlock()

	if err := cat.Initialize(context.Background(), true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := cat.FindByID("z1"); ok {
		t.Error("z1 should be gone after refresh")
	}
	gz, ok := cat.ResolveReference("z2")
	if !ok {
		t.Fatal("expected z2 to resolve")
	}
	if gz.Name != "Z2" {
		t.Errorf("expected Z2, got %s", gz.Name)
	}
}

func TestGeozoneCatalog_FetchFailureKeepsSnapshot(t *testing.T) {
	fail := false
	src := &mockGeozoneSource{listFn: func(ctx context.Context) ([]domain.Geozone, error) {
		if fail {
			return nil, errors.New("db down")
		}
		return []domain.Geozone{circleZone("z1", "Z1", z1, 150)}, nil
	}}
	cat := usecases.NewGeozoneCatalog(src, nil)
	_ = cat.Initialize(context.Background(), false)

	fail = true
	if err := cat.Initialize(context.Background(), true); err == nil {
		t.Fatal("expected refresh error")
	}
	if _, ok := cat.FindByID("z1"); !ok {
		t.Error("previous snapshot should survive a failed refresh")
	}
}

func TestGeozoneCatalog_EmptyWhenFirstFetchFails(t *testing.T) {
	src := &mockGeozoneSource{listFn: func(ctx context.Context) ([]domain.Geozone, error) {
		return nil, errors.New("db down")
	}}
	cat := usecases.NewGeozoneCatalog(src, nil)
	_ = cat.Initialize(context.Background(), false)

	if cat.Loaded() {
		t.Error("catalog should not report loaded")
	}
	if got := cat.List(); len(got) != 0 {
		t.Errorf("expected no geozones, got %d", len(got))
	}
	if _, ok := cat.ResolveReference("z1"); ok {
		t.Error("nothing should resolve in an empty catalog")
	}
}

func TestGeozoneCatalog_ListReturnsCopies(t *testing.T) {
	cat := usecases.NewGeozoneCatalog(staticSource(circleZone("z1", "Z1", z1, 150)), nil)
	_ = cat.Initialize(context.Background(), false)

	list := cat.List()
	list[0].Geometry.Center.Lat = 0
	list[0].Name = "mutated"

	gz, _ := cat.FindByID("z1")
	want := circleZone("z1", "Z1", z1, 150)
	if diff := cmp.Diff(want, gz); diff != "" {
		t.Errorf("catalog entry changed (-want +got):\n%s", diff)
	}
}

func TestGeozoneCatalog_Containing(t *testing.T) {
	far := domain.Coordinate{Lat: 13.2, Lng: 77.9}
	cat := usecases.NewGeozoneCatalog(staticSource(
		circleZone("z1", "Z1", z1, 150),
		circleZone("z2", "Z2", far, 150),
		circleZone("z3", "Z3", z1, 5000),
	), nil)
	_ = cat.Initialize(context.Background(), false)

	var ids []string
	for _, gz := range cat.Containing(z1) {
		ids = append(ids, gz.ID)
	}
	if diff := cmp.Diff([]string{"z1", "z3"}, ids); diff != "" {
		t.Errorf("containing ids (-want +got):\n%s", diff)
	}
	if got := cat.Containing(domain.Coordinate{Lat: -30, Lng: 10}); len(got) != 0 {
		t.Errorf("expected no geozones, got %d", len(got))
	}
}

func TestGeozoneCatalog_ConcurrentReadsDuringRefresh(t *testing.T) {
	cat := usecases.NewGeozoneCatalog(staticSource(circleZone("z1", "Z1", z1, 150)), nil)
	_ = cat.Initialize(context.Background(), false)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = cat.Initialize(context.Background(), true)
		}()
		go func() {
			defer wg.Done()
			if _, ok := cat.FindByID("z1"); !ok {
				t.Error("z1 should always resolve")
			}
		}()
	}
	wg.Wait()
}

func TestGeozoneCatalog_ForceRefreshSeesWritesAfterInFlightFetch(t *testing.T) {
	var (
		mu    sync.Mutex
		calls int
	)
	started := make(chan struct{})
	release := make(chan struct{})
	before := []domain.Geozone{circleZone("z1", "Z1", z1, 150)}
	after := append(before, circleZone("new", "New", pointA, 80))

	src := &mockGeozoneSource{listFn: func(ctx context.Context) ([]domain.Geozone, error) {
		mu.Lock()
		calls++
		call := calls
		mu.Unlock()
		if call == 1 {
			close(started)
			<-release
			return before, nil
		}
		return after, nil
	}}
	cat := usecases.NewGeozoneCatalog(src, nil)

	slow := make(chan error, 1)
	go func() { slow <- cat.Initialize(context.Background(), true) }()
	<-started

	if err := cat.Initialize(context.Background(), true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := cat.FindByID("new"); !ok {
		t.Fatal("new geozone should be visible once the forced refresh returns")
	}

	close(release)
	if err := <-slow; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := cat.FindByID("new"); !ok {
		t.Error("an older fetch finishing late must not replace the newer snapshot")
	}
	if cat.Size() != 2 {
		t.Errorf("expected 2 geozones, got %d", cat.Size())
	}
	if src.Calls() != 2 {
		t.Errorf("expected 2 fetches, got %d", src.Calls())
	}
}

func TestGeozoneCatalog_ConcurrentFirstLoadsShareFetch(t *testing.T) {
	release := make(chan struct{})
	src := &mockGeozoneSource{listFn: func(ctx context.Context) ([]domain.Geozone, error) {
		<-release
		return []domain.Geozone{circleZone("z1", "Z1", z1, 150)}, nil
	}}
	cat := usecases.NewGeozoneCatalog(src, nil)

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = cat.Initialize(context.Background(), false)
		}()
	}
	for src.Calls() == 0 {
		runtime.Gosched()
	}
	close(release)
	wg.Wait()

	if !cat.Loaded() {
		t.Fatal("expected catalog to be loaded")
	}
	if src.Calls() != 1 {
		t.Errorf("expected 1 shared fetch, got %d", src.Calls())
	}
}
