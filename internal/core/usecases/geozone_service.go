package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/KRVIMAL/routeye-sub001/internal/core/domain"
	"github.com/KRVIMAL/routeye-sub001/internal/core/ports"
	"github.com/KRVIMAL/routeye-sub001/internal/pkg/logging"
	"github.com/KRVIMAL/routeye-sub001/internal/pkg/metrics"
)

const geozoneListKey = "geozones:all"

// GeozoneService handles geozone-related business logic.
type GeozoneService struct {
	geozones ports.GeozoneRepository
	cache    ports.CacheService
	events   ports.EventPublisher
	logger   *slog.Logger
}

// NewGeozoneService creates a new GeozoneService. cache and events may be nil.
func NewGeozoneService(geozones ports.GeozoneRepository, cache ports.CacheService, events ports.EventPublisher, logger *slog.Logger) *GeozoneService {
	return &GeozoneService{
		geozones: geozones,
		cache:    cache,
		events:   events,
		logger:   logging.Component(logger, "geozone_service"),
	}
}

// List returns every geozone, served from cache when possible.
func (s *GeozoneService) List(ctx context.Context) ([]domain.Geozone, error) {
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, geozoneListKey); err == nil {
			var list []domain.Geozone
			if err := json.Unmarshal(data, &list); err == nil {
				metrics.CacheHits.WithLabelValues("geozones_list").Inc()
				return list, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("geozones_list").Inc()
	}

	list, err := s.geozones.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list geozones: %w", err)
	}

	// Cache for 5 minutes; creation and deletion invalidate it.
	if s.cache != nil {
		if data, err := json.Marshal(list); err == nil {
			_ = s.cache.Set(ctx, geozoneListKey, data, 300)
		}
	}
	return list, nil
}

// ListGeozones feeds the geozone catalog.
func (s *GeozoneService) ListGeozones(ctx context.Context) ([]domain.Geozone, error) {
	return s.List(ctx)
}

// GetByID returns a single geozone.
func (s *GeozoneService) GetByID(ctx context.Context, id string) (*domain.Geozone, error) {
	return s.geozones.GetByID(ctx, id)
}

// Store validates and persists a geozone without announcing it.
func (s *GeozoneService) Store(ctx context.Context, in domain.GeozoneInput) (*domain.Geozone, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	gz := in.ToGeozone()
	if err := s.geozones.Create(ctx, &gz); err != nil {
		return nil, fmt.Errorf("create geozone: %w", err)
	}
	return &gz, nil
}

// InvalidateCache drops the cached geozone list.
func (s *GeozoneService) InvalidateCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, geozoneListKey)
}

// Announce publishes a geozone.created event so every catalog refreshes.
func (s *GeozoneService) Announce(ctx context.Context, gz *domain.Geozone) error {
	if s.events == nil {
		return nil
	}
	return s.events.PublishGeozoneCreated(ctx, gz)
}

// Provision stores, invalidates and announces a geozone in-process. Cache
// and broker failures are logged; the geozone is already stored.
func (s *GeozoneService) Provision(ctx context.Context, in domain.GeozoneInput) (*domain.Geozone, error) {
	gz, err := s.Store(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := s.InvalidateCache(ctx); err != nil {
		s.logger.Warn("invalidate geozone cache", "geozone_id", gz.ID, "error", err)
	}
	if err := s.Announce(ctx, gz); err != nil {
		s.logger.Warn("publish geozone.created", "geozone_id", gz.ID, "error", err)
	}
	return gz, nil
}

// Delete removes a geozone.
func (s *GeozoneService) Delete(ctx context.Context, id string) error {
	if err := s.geozones.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.InvalidateCache(ctx); err != nil {
		s.logger.Warn("invalidate geozone cache", "geozone_id", id, "error", err)
	}
	return nil
}
