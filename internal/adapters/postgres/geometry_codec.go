package postgres

import (
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/KRVIMAL/routeye-sub001/internal/core/domain"
	"github.com/KRVIMAL/routeye-sub001/internal/pkg/geospatial"
)

// Geozone geometry is stored as a GeoJSON Feature. GeoJSON has no circle or
// rectangle, so the feature carries a "kind" property: circles are a Point
// with a "radius" property (meters), rectangles a Polygon of their bound.

const (
	propKind   = "kind"
	propRadius = "radius"
)

func point(c domain.Coordinate) orb.Point { return orb.Point{c.Lng, c.Lat} }

func coord(p orb.Point) domain.Coordinate { return domain.Coordinate{Lat: p.Lat(), Lng: p.Lon()} }

// EncodeGeometry converts g into a GeoJSON Feature.
func EncodeGeometry(g domain.Geometry) ([]byte, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	var geom orb.Geometry
	switch g.Kind {
	case domain.KindPoint, domain.KindCircle:
		geom = point(*g.Center)
	case domain.KindPolygon:
		ring := make(orb.Ring, 0, len(g.Vertices)+1)
		for _, v := range g.ClosedRing() {
			ring = append(ring, point(v))
		}
		geom = orb.Polygon{ring}
	case domain.KindPolyline:
		geom = geospatial.ToLineString(g.Vertices)
	case domain.KindRectangle:
		geom = orb.Bound{Min: point(*g.SouthWest), Max: point(*g.NorthEast)}.ToPolygon()
	}

	f := geojson.NewFeature(geom)
	f.Properties[propKind] = string(g.Kind)
	if g.Kind == domain.KindCircle {
		f.Properties[propRadius] = g.Radius
	}
	return json.Marshal(f)
}

// DecodeGeometry converts a stored GeoJSON Feature back into a Geometry.
func DecodeGeometry(data []byte) (domain.Geometry, error) {
	f, err := geojson.UnmarshalFeature(data)
	if err != nil {
		return domain.Geometry{}, fmt.Errorf("decode geozone geometry: %w", err)
	}
	kind := domain.GeometryKind(f.Properties.MustString(propKind, ""))

	switch geom := f.Geometry.(type) {
	case orb.Point:
		c := coord(geom)
		if kind == domain.KindCircle {
			return domain.NewCircle(c, f.Properties.MustFloat64(propRadius, 0)), nil
		}
		return domain.NewPoint(c), nil
	case orb.Polygon:
		if len(geom) == 0 {
			return domain.Geometry{}, fmt.Errorf("decode geozone geometry: empty polygon")
		}
		if kind == domain.KindRectangle {
			b := geom.Bound()
			return domain.NewRectangle(coord(b.Max), coord(b.Min)), nil
		}
		vertices := make([]domain.Coordinate, len(geom[0]))
		for i, p := range geom[0] {
			vertices[i] = coord(p)
		}
		return domain.NewPolygon(vertices), nil
	case orb.LineString:
		return domain.NewPolyline(geospatial.FromLineString(geom)), nil
	}
	return domain.Geometry{}, fmt.Errorf("decode geozone geometry: unsupported %s", f.Geometry.GeoJSONType())
}
