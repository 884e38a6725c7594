package ports

import (
	"context"

	"github.com/KRVIMAL/routeye-sub001/internal/core/domain"
)

// RouteRepository persists routes.
type RouteRepository interface {
	Create(ctx context.Context, route *domain.Route) error
	Update(ctx context.Context, route *domain.Route) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Route, error)
	// ListPage returns one page ordered by most recently updated, and the total count.
	ListPage(ctx context.Context, offset, limit int) ([]domain.Route, int, error)
	Search(ctx context.Context, query string, limit int) ([]domain.Route, error)
}

// GeozoneRepository persists geozones.
type GeozoneRepository interface {
	Create(ctx context.Context, gz *domain.Geozone) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Geozone, error)
	List(ctx context.Context) ([]domain.Geozone, error)
}

// GeozoneSource feeds the in-memory geozone catalog.
type GeozoneSource interface {
	ListGeozones(ctx context.Context) ([]domain.Geozone, error)
}
