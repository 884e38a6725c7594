package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/KRVIMAL/routeye-sub001/internal/core/domain"
	"github.com/KRVIMAL/routeye-sub001/internal/core/ports"
	"github.com/KRVIMAL/routeye-sub001/internal/pkg/metrics"
)

const geocodeTTLSeconds = 24 * 60 * 60

// CachedGeocoder memoizes forward and reverse lookups in the shared cache.
// Failed and empty answers are not cached.
type CachedGeocoder struct {
	next  ports.Geocoder
	cache ports.CacheService
}

// NewCachedGeocoder wraps next. A nil cache returns next unchanged.
func NewCachedGeocoder(next ports.Geocoder, cache ports.CacheService) ports.Geocoder {
	if cache == nil {
		return next
	}
	return &CachedGeocoder{next: next, cache: cache}
}

func geocodeKey(query string) string {
	return "geocode:" + strings.ToLower(strings.Join(strings.Fields(query), " "))
}

// Reverse lookups are keyed at ~1 m precision.
func reverseKey(c domain.Coordinate) string {
	return fmt.Sprintf("revgeo:%.5f,%.5f", c.Lat, c.Lng)
}

func (g *CachedGeocoder) Geocode(ctx context.Context, query string) (*domain.GeocodeCandidate, error) {
	key := geocodeKey(query)
	if data, err := g.cache.Get(ctx, key); err == nil {
		var cand domain.GeocodeCandidate
		if json.Unmarshal(data, &cand) == nil {
			metrics.CacheHits.WithLabelValues("geocode").Inc()
			return &cand, nil
		}
	}
	metrics.CacheMisses.WithLabelValues("geocode").Inc()

	cand, err := g.next.Geocode(ctx, query)
	if err != nil || cand == nil {
		return cand, err
	}
	if data, err := json.Marshal(cand); err == nil {
		_ = g.cache.Set(ctx, key, data, geocodeTTLSeconds)
	}
	return cand, nil
}

func (g *CachedGeocoder) ReverseGeocode(ctx context.Context, c domain.Coordinate) (string, error) {
	key := reverseKey(c)
	if data, err := g.cache.Get(ctx, key); err == nil {
		metrics.CacheHits.WithLabelValues("reverse_geocode").Inc()
		return string(data), nil
	}
	metrics.CacheMisses.WithLabelValues("reverse_geocode").Inc()

	name, err := g.next.ReverseGeocode(ctx, c)
	if err != nil {
		return "", err
	}
	if name != "" {
		_ = g.cache.Set(ctx, key, []byte(name), geocodeTTLSeconds)
	}
	return name, nil
}

var _ ports.Geocoder = (*CachedGeocoder)(nil)

