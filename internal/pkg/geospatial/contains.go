package geospatial

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/KRVIMAL/routeye-sub001/internal/core/domain"
)

// Contains reports whether c lies inside g. Circles use great-circle
// distance, polygons and rectangles a planar ring test. Points and
// polylines have no area and never contain anything.
func Contains(g domain.Geometry, c domain.Coordinate) bool {
	switch g.Kind {
	case domain.KindCircle:
		return g.Center != nil && DistanceMeters(*g.Center, c) <= g.Radius
	case domain.KindPolygon:
		if len(g.Vertices) < 3 {
			return false
		}
		ring := orb.Ring(ToLineString(g.ClosedRing()))
		return planar.RingContains(ring, orb.Point{c.Lng, c.Lat})
	case domain.KindRectangle:
		if g.NorthEast == nil || g.SouthWest == nil {
			return false
		}
		b := g.Bounds()
		return c.Lat >= b.MinLat && c.Lat <= b.MaxLat && c.Lng >= b.MinLng && c.Lng <= b.MaxLng
	}
	return false
}
