package http

import (
	"bytes"
	"fmt"

	"github.com/twpayne/go-kml"

	"github.com/KRVIMAL/routeye-sub001/internal/core/domain"
	"github.com/KRVIMAL/routeye-sub001/internal/pkg/geospatial"
)

const (
	kmlContentType = "application/vnd.google-earth.kml+xml"
	circleSegments = 48
)

func kmlCoords(cs []domain.Coordinate) *kml.CoordinatesElement {
	out := make([]kml.Coordinate, len(cs))
	for i, c := range cs {
		out[i] = kml.Coordinate{Lon: c.Lng, Lat: c.Lat}
	}
	return kml.Coordinates(out...)
}

func kmlPoint(c domain.Coordinate) kml.Element {
	return kml.Point(kmlCoords([]domain.Coordinate{c}))
}

func kmlRing(ring []domain.Coordinate) kml.Element {
	return kml.Polygon(kml.OuterBoundaryIs(kml.LinearRing(kmlCoords(ring))))
}

// geometryKML renders a geozone geometry. KML has no circle, so circles
// are approximated by a polygon.
func geometryKML(g domain.Geometry) (kml.Element, error) {
	switch g.Kind {
	case domain.KindPoint:
		return kmlPoint(*g.Center), nil
	case domain.KindCircle:
		return kmlRing(geospatial.CircleRing(*g.Center, g.Radius, circleSegments)), nil
	case domain.KindPolygon:
		return kmlRing(g.ClosedRing()), nil
	case domain.KindPolyline:
		return kml.LineString(kml.Tessellate(true), kmlCoords(g.Vertices)), nil
	case domain.KindRectangle:
		ne, sw := *g.NorthEast, *g.SouthWest
		return kmlRing([]domain.Coordinate{
			sw, {Lat: sw.Lat, Lng: ne.Lng}, ne, {Lat: ne.Lat, Lng: sw.Lng}, sw,
		}), nil
	}
	return nil, fmt.Errorf("%w: unsupported geometry %q", domain.ErrValidation, g.Kind)
}

func stopPlacemark(label string, loc domain.Location) kml.Element {
	desc := loc.Coordinate.String()
	if loc.IsGeofenceEnabled && loc.GeofenceRef != "" {
		desc += " (geozone " + string(loc.GeofenceRef) + ")"
	}
	return kml.Placemark(
		kml.Name(label+": "+loc.Name),
		kml.Description(desc),
		kmlPoint(loc.Coordinate),
	)
}

// routeKML renders the path and every stop of a route.
func routeKML(r *domain.Route) ([]byte, error) {
	children := []kml.Element{
		kml.Name(r.Name),
		kml.Description(fmt.Sprintf("%s, %s (%s)", r.Distance.Text, r.Duration.Text, r.TravelMode)),
	}
	if len(r.Path) > 0 {
		children = append(children, kml.Placemark(
			kml.Name(r.Name),
			kml.LineString(kml.Tessellate(true), kmlCoords(r.Path)),
		))
	}
	children = append(children, stopPlacemark("Origin", r.Origin))
	for i, w := range r.Waypoints {
		children = append(children, stopPlacemark(fmt.Sprintf("Waypoint %d", i+1), w))
	}
	children = append(children, stopPlacemark("Destination", r.Destination))
	return writeKML(kml.Document(children...))
}

// geozonesKML renders a folder of geozone shapes.
func geozonesKML(list []domain.Geozone) ([]byte, error) {
	placemarks := []kml.Element{kml.Name("Geozones")}
	for _, gz := range list {
		shape, err := geometryKML(gz.Geometry)
		if err != nil {
			return nil, fmt.Errorf("geozone %s: %w", gz.ID, err)
		}
		placemarks = append(placemarks, kml.Placemark(
			kml.Name(gz.Name),
			kml.Description(gz.FinalAddress),
			shape,
		))
	}
	return writeKML(kml.Document(kml.Folder(placemarks...)))
}

func writeKML(doc kml.Element) ([]byte, error) {
	var buf bytes.Buffer
	if err := kml.KML(doc).WriteIndent(&buf, "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
