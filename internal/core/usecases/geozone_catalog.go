package usecases

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/KRVIMAL/routeye-sub001/internal/core/domain"
	"github.com/KRVIMAL/routeye-sub001/internal/core/ports"
	"github.com/KRVIMAL/routeye-sub001/internal/pkg/geospatial"
	"github.com/KRVIMAL/routeye-sub001/internal/pkg/logging"
	"github.com/KRVIMAL/routeye-sub001/internal/pkg/metrics"
)

// GeozoneCatalog is the in-memory, read-mostly index of geozones used while
// editing. Readers always see a complete snapshot; refreshes replace the
// snapshot wholesale, and a fetch never replaces a snapshot from a fetch
// that started after it.
type GeozoneCatalog struct {
	source ports.GeozoneSource
	logger *slog.Logger
	snap   atomic.Pointer[catalogSnapshot]
	gen    atomic.Uint64
	group  singleflight.Group
	now    func() time.Time
}

type catalogSnapshot struct {
	gen         uint64
	list        []domain.Geozone
	byID        map[string]int
	refreshedAt time.Time
}

// NewGeozoneCatalog creates an empty catalog backed by source.
func NewGeozoneCatalog(source ports.GeozoneSource, logger *slog.Logger) *GeozoneCatalog {
	return &GeozoneCatalog{
		source: source,
		logger: logging.Component(logger, "geozone_catalog"),
		now:    time.Now,
	}
}

// Initialize loads the catalog. It is a no-op once loaded unless
// forceRefresh is set. Concurrent first loads share one fetch; a forced
// refresh always runs its own fetch so it observes every write committed
// before the call. On fetch failure the previous snapshot is kept and the
// error is returned for the caller to log or ignore.
func (c *GeozoneCatalog) Initialize(ctx context.Context, forceRefresh bool) error {
	if forceRefresh {
		return c.fetch(ctx)
	}
	if c.snap.Load() != nil {
		return nil
	}
	_, err, _ := c.group.Do("load", func() (any, error) {
		if c.snap.Load() != nil {
			return nil, nil
		}
		return nil, c.fetch(ctx)
	})
	return err
}

func (c *GeozoneCatalog) fetch(ctx context.Context) error {
	gen := c.gen.Add(1)
	list, err := c.source.ListGeozones(ctx)
	if err != nil {
		metrics.CatalogRefreshes.WithLabelValues("error").Inc()
		c.logger.Warn("geozone catalog fetch failed, keeping previous snapshot", "error", err)
		return err
	}
	if !c.store(gen, list) {
		metrics.CatalogRefreshes.WithLabelValues("superseded").Inc()
		c.logger.Debug("geozone catalog fetch superseded", "generation", gen)
		return nil
	}
	metrics.CatalogRefreshes.WithLabelValues("ok").Inc()
	c.logger.Debug("geozone catalog refreshed", "geozones", len(list), "generation", gen)
	return nil
}

// store installs list unless a newer fetch already did.
func (c *GeozoneCatalog) store(gen uint64, list []domain.Geozone) bool {
	s := &catalogSnapshot{
		gen:         gen,
		list:        make([]domain.Geozone, len(list)),
		byID:        make(map[string]int, len(list)),
		refreshedAt: c.now(),
	}
	for i, gz := range list {
		gz.Geometry = gz.Geometry.Clone()
		s.list[i] = gz
		s.byID[gz.ID] = i
	}
	for {
		cur := c.snap.Load()
		if cur != nil && cur.gen > gen {
			return false
		}
		if c.snap.CompareAndSwap(cur, s) {
			metrics.CatalogSize.Set(float64(len(list)))
			return true
		}
	}
}

// List returns a copy of every geozone in the current snapshot.
func (c *GeozoneCatalog) List() []domain.Geozone {
	s := c.snap.Load()
	if s == nil {
		return nil
	}
	out := make([]domain.Geozone, len(s.list))
	for i, gz := range s.list {
		gz.Geometry = gz.Geometry.Clone()
		out[i] = gz
	}
	return out
}

// FindByID looks up a geozone by id.
func (c *GeozoneCatalog) FindByID(id string) (domain.Geozone, bool) {
	s := c.snap.Load()
	if s == nil || id == "" {
		return domain.Geozone{}, false
	}
	i, ok := s.byID[id]
	if !ok {
		return domain.Geozone{}, false
	}
	gz := s.list[i]
	gz.Geometry = gz.Geometry.Clone()
	return gz, true
}

// Containing returns the geozones whose area covers c, in catalog order.
func (c *GeozoneCatalog) Containing(at domain.Coordinate) []domain.Geozone {
	s := c.snap.Load()
	if s == nil {
		return nil
	}
	var out []domain.Geozone
	for _, gz := range s.list {
		if geospatial.Contains(gz.Geometry, at) {
			gz.Geometry = gz.Geometry.Clone()
			out = append(out, gz)
		}
	}
	return out
}

// ResolveReference looks up the geozone a location refers to.
func (c *GeozoneCatalog) ResolveReference(ref domain.GeozoneRef) (domain.Geozone, bool) {
	return c.FindByID(string(ref))
}

// Loaded reports whether at least one fetch has succeeded.
func (c *GeozoneCatalog) Loaded() bool {
	return c.snap.Load() != nil
}

// RefreshedAt returns when the current snapshot was taken.
func (c *GeozoneCatalog) RefreshedAt() time.Time {
	if s := c.snap.Load(); s != nil {
		return s.refreshedAt
	}
	return time.Time{}
}

// Size returns the number of geozones in the current snapshot.
func (c *GeozoneCatalog) Size() int {
	if s := c.snap.Load(); s != nil {
		return len(s.list)
	}
	return 0
}

// RunRefresher force-refreshes the catalog every interval until ctx is done.
func (c *GeozoneCatalog) RunRefresher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = c.Initialize(ctx, true)
		}
	}
}
