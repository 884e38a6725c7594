package usecases

import (
	"log/slog"

	"github.com/KRVIMAL/routeye-sub001/internal/core/domain"
	"github.com/KRVIMAL/routeye-sub001/internal/pkg/logging"
)

// GeozoneLookup resolves geofence references. *GeozoneCatalog implements it.
type GeozoneLookup interface {
	ResolveReference(ref domain.GeozoneRef) (domain.Geozone, bool)
}

// ShapeResolver converts between geozones and route locations and keeps the
// transient geometry payload out of storage.
type ShapeResolver struct {
	lookup GeozoneLookup
	logger *slog.Logger
}

// NewShapeResolver creates a resolver over lookup.
func NewShapeResolver(lookup GeozoneLookup, logger *slog.Logger) *ShapeResolver {
	return &ShapeResolver{lookup: lookup, logger: logging.Component(logger, "shape_resolver")}
}

// LocationFromGeozone builds a geofence-enabled location for g. The name is
// the geozone's name, never its address.
func LocationFromGeozone(g domain.Geozone) domain.Location {
	geom := g.Geometry.Clone()
	anchor, _ := geom.Anchor()
	return domain.Location{
		Name:              g.Name,
		Coordinate:        anchor,
		IsGeofenceEnabled: true,
		GeofenceRef:       domain.GeozoneRef(g.ID),
		Geometry:          &geom,
	}
}

// EnsureGeometryPayload re-attaches the geometry payload to a
// geofence-enabled location that lacks it. Unresolvable references are
// returned unchanged.
func (r *ShapeResolver) EnsureGeometryPayload(loc domain.Location) domain.Location {
	if !loc.IsGeofenceEnabled || loc.Geometry != nil {
		return loc
	}
	gz, ok := r.lookup.ResolveReference(loc.GeofenceRef)
	if !ok {
		r.logger.Debug("geofence reference not in catalog", "ref", loc.GeofenceRef, "name", loc.Name)
		return loc
	}
	out := loc
	geom := gz.Geometry.Clone()
	out.Geometry = &geom
	if out.Coordinate.IsZero() {
		out.Coordinate, _ = geom.Anchor()
	}
	return out
}

// StripForPersistence returns the location as it must be stored: no
// geometry payload, and for geofence-enabled locations the catalog name of
// the geozone when it can be resolved. Applying it twice is the same as once.
func (r *ShapeResolver) StripForPersistence(loc domain.Location) domain.Location {
	out := loc
	out.Geometry = nil
	if !loc.IsGeofenceEnabled {
		return out
	}
	if gz, ok := r.lookup.ResolveReference(loc.GeofenceRef); ok {
		out.Name = gz.Name
	}
	return out
}

// StripRoute returns a copy of route with every stop stripped for persistence.
func (r *ShapeResolver) StripRoute(route *domain.Route) *domain.Route {
	out := route.Clone()
	out.Origin = r.StripForPersistence(out.Origin)
	out.Destination = r.StripForPersistence(out.Destination)
	for i := range out.Waypoints {
		out.Waypoints[i] = r.StripForPersistence(out.Waypoints[i])
	}
	return out
}

// HydrateRoute returns a copy of route with geometry payloads attached to
// every resolvable geofence-enabled stop.
func (r *ShapeResolver) HydrateRoute(route *domain.Route) *domain.Route {
	out := route.Clone()
	out.Origin = r.EnsureGeometryPayload(out.Origin)
	out.Destination = r.EnsureGeometryPayload(out.Destination)
	for i := range out.Waypoints {
		out.Waypoints[i] = r.EnsureGeometryPayload(out.Waypoints[i])
	}
	return out
}
