package geospatial

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/KRVIMAL/routeye-sub001/internal/core/domain"
)

const earthRadiusKm = 6371.0

// Haversine calculates the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c * 1000 // meters
}

// DistanceKm is the haversine distance between two coordinates in kilometers.
func DistanceKm(a, b domain.Coordinate) float64 {
	return Haversine(a.Lat, a.Lng, b.Lat, b.Lng) / 1000
}

// DistanceMeters is the haversine distance between two coordinates in meters.
func DistanceMeters(a, b domain.Coordinate) float64 {
	return Haversine(a.Lat, a.Lng, b.Lat, b.Lng)
}

// PathLengthMeters sums the great-circle length of a path.
func PathLengthMeters(path []domain.Coordinate) float64 {
	if len(path) < 2 {
		return 0
	}
	return geo.LengthHaversine(ToLineString(path))
}

// ToLineString converts a path to an orb line string (lng, lat order).
func ToLineString(path []domain.Coordinate) orb.LineString {
	ls := make(orb.LineString, len(path))
	for i, c := range path {
		ls[i] = orb.Point{c.Lng, c.Lat}
	}
	return ls
}

// FromLineString converts an orb line string back to coordinates.
func FromLineString(ls orb.LineString) []domain.Coordinate {
	out := make([]domain.Coordinate, len(ls))
	for i, p := range ls {
		out[i] = domain.Coordinate{Lat: p.Lat(), Lng: p.Lon()}
	}
	return out
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// CircleRing approximates a circle with a closed ring of segments+1 points.
func CircleRing(center domain.Coordinate, radiusMeters float64, segments int) []domain.Coordinate {
	segments = max(segments, 3)
	c := orb.Point{center.Lng, center.Lat}
	ring := make([]domain.Coordinate, 0, segments+1)
	for i := 0; i < segments; i++ {
		p := geo.PointAtBearingAndDistance(c, 360*float64(i)/float64(segments), radiusMeters)
		ring = append(ring, domain.Coordinate{Lat: p.Lat(), Lng: p.Lon()})
	}
	return append(ring, ring[0])
}
