package ports

import (
	"context"

	"github.com/KRVIMAL/routeye-sub001/internal/core/domain"
)

// Router computes path alternatives through a sequence of stops.
type Router interface {
	Directions(ctx context.Context, req domain.DirectionsRequest) (*domain.DirectionsResult, error)
}

// Geocoder turns typed addresses into coordinates and back.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (*domain.GeocodeCandidate, error)
	ReverseGeocode(ctx context.Context, c domain.Coordinate) (string, error)
}

// GeozoneProvisioner creates a geozone and propagates it to every catalog.
type GeozoneProvisioner interface {
	Provision(ctx context.Context, in domain.GeozoneInput) (*domain.Geozone, error)
}

// MapSurface renders markers, shapes, paths and the drawing tool for one
// editing session. Apply must not block.
type MapSurface interface {
	Apply(cmds ...domain.MapCommand)
}

// SessionSink receives UI notifications for one editing session. Notify must not block.
type SessionSink interface {
	Notify(update domain.SessionUpdate)
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishRouteSaved(ctx context.Context, route *domain.Route) error
	PublishRouteDeleted(ctx context.Context, id string) error
	PublishGeozoneCreated(ctx context.Context, gz *domain.Geozone) error
	PublishBroadcast(ctx context.Context, data []byte) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeGeozoneCreated(ctx context.Context, handler func(ctx context.Context, gz *domain.Geozone) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
