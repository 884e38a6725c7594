package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Coordinate represents a geographic coordinate (WGS 84).
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the coordinate is inside the WGS 84 range.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180 &&
		!math.IsNaN(c.Lat) && !math.IsNaN(c.Lng)
}

// IsZero reports whether the coordinate is the zero value.
func (c Coordinate) IsZero() bool {
	return c.Lat == 0 && c.Lng == 0
}

// String renders the coordinate as "lat,lng".
func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lng)
}

// ParseCoordinate parses "lat,lng" text such as "12.9716, 77.5946".
func ParseCoordinate(s string) (Coordinate, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Coordinate{}, fmt.Errorf("coordinate %q: expected \"lat,lng\"", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("coordinate %q: latitude: %w", s, err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("coordinate %q: longitude: %w", s, err)
	}
	c := Coordinate{Lat: lat, Lng: lng}
	if !c.Valid() {
		return Coordinate{}, fmt.Errorf("coordinate %q: out of range", s)
	}
	return c, nil
}

// Bounds represents a geographic bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLat float64 `json:"max_lat"`
	MaxLng float64 `json:"max_lng"`
}

// BoundsOf returns the bounding box of the given coordinates.
func BoundsOf(coords []Coordinate) Bounds {
	if len(coords) == 0 {
		return Bounds{}
	}
	b := Bounds{MinLat: coords[0].Lat, MaxLat: coords[0].Lat, MinLng: coords[0].Lng, MaxLng: coords[0].Lng}
	for _, c := range coords[1:] {
		b.MinLat = math.Min(b.MinLat, c.Lat)
		b.MaxLat = math.Max(b.MaxLat, c.Lat)
		b.MinLng = math.Min(b.MinLng, c.Lng)
		b.MaxLng = math.Max(b.MaxLng, c.Lng)
	}
	return b
}
