package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/KRVIMAL/routeye-sub001/internal/core/domain"
	"github.com/KRVIMAL/routeye-sub001/internal/core/ports"
	"github.com/KRVIMAL/routeye-sub001/internal/pkg/logging"
	"github.com/KRVIMAL/routeye-sub001/internal/pkg/geospatial"
	"github.com/KRVIMAL/routeye-sub001/internal/pkg/metrics"
	"github.com/KRVIMAL/routeye-sub001/internal/pkg/telemetry"
)

// RouteService handles route-related business logic.
type RouteService struct {
	routes   ports.RouteRepository
	resolver *ShapeResolver
	cache    ports.CacheService
	events   ports.EventPublisher
	logger   *slog.Logger
}

// NewRouteService creates a new RouteService. cache and events may be nil.
func NewRouteService(routes ports.RouteRepository, resolver *ShapeResolver, cache ports.CacheService, events ports.EventPublisher, logger *slog.Logger) *RouteService {
	return &RouteService{
		routes:   routes,
		resolver: resolver,
		cache:    cache,
		events:   events,
		logger:   logging.Component(logger, "route_service"),
	}
}

func routeKey(id string) string { return "routes:id:" + id }

// GetByID returns a route by its UUID.
func (s *RouteService) GetByID(ctx context.Context, id string) (*domain.Route, error) {
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, routeKey(id)); err == nil {
			var route domain.Route
			if err := json.Unmarshal(data, &route); err == nil {
				metrics.CacheHits.WithLabelValues("route").Inc()
				return &route, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("route").Inc()
	}

	route, err := s.routes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(route); err == nil {
			_ = s.cache.Set(ctx, routeKey(id), data, 600) // 10 min for single route
		}
	}
	return route, nil
}

// List returns one page of routes and the total count.
func (s *RouteService) List(ctx context.Context, offset, limit int) ([]domain.Route, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.routes.ListPage(ctx, offset, limit)
}

// Search finds routes by name or stop name.
func (s *RouteService) Search(ctx context.Context, query string, limit int) ([]domain.Route, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search query must not be empty", domain.ErrValidation)
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return s.routes.Search(ctx, query, limit)
}

// Save validates and persists route, creating it when it has no id. Every
// stop is stripped of geometry payloads first.
func (s *RouteService) Save(ctx context.Context, route *domain.Route) (*domain.Route, error) {
	ctx, span := otel.Tracer(telemetry.TracerUsecases).Start(ctx, telemetry.SpanRouteSave)
	defer span.End()

	if err := route.ValidateForSave(); err != nil {
		span.SetStatus(codes.Error, "validation")
		return nil, err
	}
	out := s.resolver.StripRoute(route)
	if out.TravelMode == "" {
		out.TravelMode = domain.TravelDriving
	}
	if out.Distance.Value == 0 && len(out.Path) > 1 {
		out.Distance = domain.DistanceMetric(geospatial.PathLengthMeters(out.Path))
	}
	span.SetAttributes(
		attribute.Bool("route.update", out.IsSaved()),
		attribute.Int("route.waypoints", len(out.Waypoints)),
		attribute.Int("route.path_points", len(out.Path)),
	)

	var err error
	if out.IsSaved() {
		err = s.routes.Update(ctx, out)
	} else {
		err = s.routes.Create(ctx, out)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("save route: %w", err)
	}
	span.SetAttributes(attribute.String(telemetry.AttrRouteID, out.ID))

	if s.cache != nil {
		_ = s.cache.Delete(ctx, routeKey(out.ID))
	}
	if s.events != nil {
		if err := s.events.PublishRouteSaved(ctx, out); err != nil {
			s.logger.Warn("publish route.saved", "route_id", out.ID, "error", err)
		}
	}
	return out, nil
}

// Delete removes a route.
func (s *RouteService) Delete(ctx context.Context, id string) error {
	if err := s.routes.Delete(ctx, id); err != nil {
		return err
	}
	if s.cache != nil {
		_ = s.cache.Delete(ctx, routeKey(id))
	}
	if s.events != nil {
		if err := s.events.PublishRouteDeleted(ctx, id); err != nil {
			s.logger.Warn("publish route.deleted", "route_id", id, "error", err)
		}
	}
	return nil
}
