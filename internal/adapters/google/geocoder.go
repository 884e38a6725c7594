package google

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/KRVIMAL/routeye-sub001/internal/core/domain"
)

// Geocoder implements ports.Geocoder with the Geocoding API.
type Geocoder struct {
	c *Client
}

func NewGeocoder(c *Client) *Geocoder { return &Geocoder{c: c} }

type geocodeResponse struct {
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
			LocationType string `json:"location_type"` // ROOFTOP, RANGE_INTERPOLATED, GEOMETRIC_CENTER, APPROXIMATE
		} `json:"geometry"`
		FormattedAddress string `json:"formatted_address"`
	} `json:"results"`
	Status       string `json:"status"` // OK, ZERO_RESULTS, etc.
	ErrorMessage string `json:"error_message"`
}

// Geocode returns the best match for an address. ZERO_RESULTS maps to
// domain.ErrNotFound.
func (g *Geocoder) Geocode(ctx context.Context, query string) (*domain.GeocodeCandidate, error) {
	params := url.Values{}
	params.Set("address", query)
	resp, err := g.call(ctx, params)
	if err != nil {
		return nil, err
	}
	r := resp.Results[0]
	return &domain.GeocodeCandidate{
		Coordinate:    domain.Coordinate{Lat: r.Geometry.Location.Lat, Lng: r.Geometry.Location.Lng},
		FormattedName: r.FormattedAddress,
	}, nil
}

// ReverseGeocode names the place at c.
func (g *Geocoder) ReverseGeocode(ctx context.Context, c domain.Coordinate) (string, error) {
	params := url.Values{}
	params.Set("latlng", fmt.Sprintf("%f,%f", c.Lat, c.Lng))
	resp, err := g.call(ctx, params)
	if err != nil {
		return "", err
	}
	return resp.Results[0].FormattedAddress, nil
}

func (g *Geocoder) call(ctx context.Context, params url.Values) (*geocodeResponse, error) {
	params.Set("key", g.c.apiKey)
	if g.c.language != "" {
		params.Set("language", g.c.language)
	}
	if g.c.region != "" {
		params.Set("region", g.c.region)
	}
	reqURL := strings.TrimRight(g.c.geocodeURL, "/") + "/maps/api/geocode/json?" + params.Encode()
	req, err := http.NewRequest(http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	var resp geocodeResponse
	if err := g.c.do(ctx, req, &resp); err != nil {
		return nil, fmt.Errorf("geocode: %w", err)
	}
	switch resp.Status {
	case "OK":
	case "ZERO_RESULTS":
		return nil, fmt.Errorf("geocode: %w", domain.ErrNotFound)
	default:
		return nil, fmt.Errorf("geocode: google maps status %s: %s", resp.Status, resp.ErrorMessage)
	}
	if len(resp.Results) == 0 {
		return nil, fmt.Errorf("geocode: %w", domain.ErrNotFound)
	}
	return &resp, nil
}
