package domain

import (
	"fmt"
	"math"
)

// GeometryKind tags the shape carried by a Geometry.
type GeometryKind string

const (
	KindPoint     GeometryKind = "point"
	KindCircle    GeometryKind = "circle"
	KindPolygon   GeometryKind = "polygon"
	KindPolyline  GeometryKind = "polyline"
	KindRectangle GeometryKind = "rectangle"
)

// Valid reports whether k is one of the known shape kinds.
func (k GeometryKind) Valid() bool {
	switch k {
	case KindPoint, KindCircle, KindPolygon, KindPolyline, KindRectangle:
		return true
	}
	return false
}

// Geometry is the shape of a geozone. Which fields are meaningful depends on Kind:
// Center for point and circle, Radius (meters) for circle, Vertices for polygon
// and polyline, NorthEast/SouthWest for rectangle.
type Geometry struct {
	Kind      GeometryKind `json:"type"`
	Center    *Coordinate  `json:"center,omitempty"`
	Radius    float64      `json:"radius,omitempty"`
	Vertices  []Coordinate `json:"vertices,omitempty"`
	NorthEast *Coordinate  `json:"north_east,omitempty"`
	SouthWest *Coordinate  `json:"south_west,omitempty"`
}

// NewPoint returns a point geometry.
func NewPoint(c Coordinate) Geometry {
	return Geometry{Kind: KindPoint, Center: &c}
}

// NewCircle returns a circle geometry with radius in meters.
func NewCircle(center Coordinate, radius float64) Geometry {
	return Geometry{Kind: KindCircle, Center: &center, Radius: radius}
}

// NewPolygon returns a polygon geometry. The ring is implicitly closed.
func NewPolygon(vertices []Coordinate) Geometry {
	return Geometry{Kind: KindPolygon, Vertices: append([]Coordinate(nil), vertices...)}
}

// NewPolyline returns an open polyline geometry.
func NewPolyline(vertices []Coordinate) Geometry {
	return Geometry{Kind: KindPolyline, Vertices: append([]Coordinate(nil), vertices...)}
}

// NewRectangle returns a rectangle geometry from two opposite corners.
func NewRectangle(northEast, southWest Coordinate) Geometry {
	return Geometry{Kind: KindRectangle, NorthEast: &northEast, SouthWest: &southWest}
}

// Anchor returns the representative coordinate used for centering and
// distance comparisons: the point/center for Point and Circle, the first
// vertex for Polygon and Polyline, the north-east corner for Rectangle.
// The boolean is false when the geometry lacks the field its kind requires.
func (g Geometry) Anchor() (Coordinate, bool) {
	switch g.Kind {
	case KindPoint, KindCircle:
		if g.Center != nil {
			return *g.Center, true
		}
	case KindPolygon, KindPolyline:
		if len(g.Vertices) > 0 {
			return g.Vertices[0], true
		}
	case KindRectangle:
		if g.NorthEast != nil {
			return *g.NorthEast, true
		}
	}
	return Coordinate{}, false
}

// ClosedRing returns the polygon's vertices with the first vertex
// re-appended when the ring is not already closed.
func (g Geometry) ClosedRing() []Coordinate {
	ring := append([]Coordinate(nil), g.Vertices...)
	if len(ring) > 0 && ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}
	return ring
}

// Bounds returns the bounding box covering the geometry.
func (g Geometry) Bounds() Bounds {
	switch g.Kind {
	case KindPoint:
		if g.Center != nil {
			return BoundsOf([]Coordinate{*g.Center})
		}
	case KindCircle:
		if g.Center != nil {
			latDelta := g.Radius / 111320.0
			lngDelta := g.Radius / (111320.0 * math.Cos(g.Center.Lat*math.Pi/180))
			return Bounds{
				MinLat: g.Center.Lat - latDelta, MinLng: g.Center.Lng - lngDelta,
				MaxLat: g.Center.Lat + latDelta, MaxLng: g.Center.Lng + lngDelta,
			}
		}
	case KindPolygon, KindPolyline:
		return BoundsOf(g.Vertices)
	case KindRectangle:
		if g.NorthEast != nil && g.SouthWest != nil {
			return BoundsOf([]Coordinate{*g.NorthEast, *g.SouthWest})
		}
	}
	return Bounds{}
}

// Clone returns a deep copy.
func (g Geometry) Clone() Geometry {
	out := Geometry{Kind: g.Kind, Radius: g.Radius}
	if g.Center != nil {
		c := *g.Center
		out.Center = &c
	}
	if g.NorthEast != nil {
		c := *g.NorthEast
		out.NorthEast = &c
	}
	if g.SouthWest != nil {
		c := *g.SouthWest
		out.SouthWest = &c
	}
	if g.Vertices != nil {
		out.Vertices = append([]Coordinate(nil), g.Vertices...)
	}
	return out
}

// Validate checks the kind-specific shape rules.
func (g Geometry) Validate() error {
	switch g.Kind {
	case KindPoint:
		if g.Center == nil || !g.Center.Valid() {
			return fmt.Errorf("%w: point requires a valid center", ErrValidation)
		}
	case KindCircle:
		if g.Center == nil || !g.Center.Valid() {
			return fmt.Errorf("%w: circle requires a valid center", ErrValidation)
		}
		if g.Radius <= 0 {
			return fmt.Errorf("%w: circle radius must be positive, got %g", ErrValidation, g.Radius)
		}
	case KindPolygon:
		if distinct(g.Vertices) < 3 {
			return fmt.Errorf("%w: polygon requires at least 3 distinct vertices", ErrValidation)
		}
	case KindPolyline:
		if len(g.Vertices) < 2 {
			return fmt.Errorf("%w: polyline requires at least 2 vertices", ErrValidation)
		}
	case KindRectangle:
		if g.NorthEast == nil || g.SouthWest == nil {
			return fmt.Errorf("%w: rectangle requires both corners", ErrValidation)
		}
		if g.NorthEast.Lat < g.SouthWest.Lat {
			return fmt.Errorf("%w: rectangle north-east corner is south of south-west corner", ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown geometry type %q", ErrValidation, g.Kind)
	}
	for _, v := range g.Vertices {
		if !v.Valid() {
			return fmt.Errorf("%w: vertex %s out of range", ErrValidation, v)
		}
	}
	return nil
}

func distinct(coords []Coordinate) int {
	seen := make(map[Coordinate]struct{}, len(coords))
	for _, c := range coords {
		seen[c] = struct{}{}
	}
	return len(seen)
}
