package postgres

import (
	"fmt"

	"github.com/twpayne/go-polyline"

	"github.com/KRVIMAL/routeye-sub001/internal/core/domain"
)

// EncodePath stores a route path as an encoded polyline.
func EncodePath(path []domain.Coordinate) string {
	if len(path) == 0 {
		return ""
	}
	coords := make([][]float64, len(path))
	for i, c := range path {
		coords[i] = []float64{c.Lat, c.Lng}
	}
	return string(polyline.EncodeCoords(coords))
}

// DecodePath reverses EncodePath.
func DecodePath(s string) ([]domain.Coordinate, error) {
	if s == "" {
		return nil, nil
	}
	coords, _, err := polyline.DecodeCoords([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("decode path: %w", err)
	}
	path := make([]domain.Coordinate, len(coords))
	for i, c := range coords {
		path[i] = domain.Coordinate{Lat: c[0], Lng: c[1]}
	}
	return path, nil
}
