package google

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/twpayne/go-polyline"

	"github.com/KRVIMAL/routeye-sub001/internal/core/domain"
)

// routesFieldMask limits the computeRoutes response to what the editor uses.
const routesFieldMask = "routes.description,routes.polyline.encodedPolyline," +
	"routes.legs.distanceMeters,routes.legs.duration,routes.legs.startLocation,routes.legs.endLocation"

// Router implements ports.Router with the Routes API v2.
type Router struct {
	c *Client
}

func NewRouter(c *Client) *Router { return &Router{c: c} }

type latLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type waypoint struct {
	Location struct {
		LatLng latLng `json:"latLng"`
	} `json:"location"`
}

func toWaypoint(c domain.Coordinate) waypoint {
	var w waypoint
	w.Location.LatLng = latLng{Latitude: c.Lat, Longitude: c.Lng}
	return w
}

func (l latLng) coordinate() domain.Coordinate {
	return domain.Coordinate{Lat: l.Latitude, Lng: l.Longitude}
}

type computeRoutesRequest struct {
	Origin                   waypoint   `json:"origin"`
	Destination              waypoint   `json:"destination"`
	Intermediates            []waypoint `json:"intermediates,omitempty"`
	TravelMode               string     `json:"travelMode"`
	ComputeAlternativeRoutes bool       `json:"computeAlternativeRoutes,omitempty"`
	LanguageCode             string     `json:"languageCode,omitempty"`
	RegionCode               string     `json:"regionCode,omitempty"`
}

type computeRoutesResponse struct {
	Routes []struct {
		Description string `json:"description"`
		Polyline    struct {
			EncodedPolyline string `json:"encodedPolyline"`
		} `json:"polyline"`
		Legs []struct {
			DistanceMeters float64 `json:"distanceMeters"`
			Duration       string  `json:"duration"`
			StartLocation  struct {
				LatLng latLng `json:"latLng"`
			} `json:"startLocation"`
			EndLocation struct {
				LatLng latLng `json:"latLng"`
			} `json:"endLocation"`
		} `json:"legs"`
	} `json:"routes"`
}

func travelMode(m domain.TravelMode) string {
	switch m {
	case domain.TravelWalking:
		return "WALK"
	case domain.TravelBicycling:
		return "BICYCLE"
	case domain.TravelTransit:
		return "TRANSIT"
	}
	return "DRIVE"
}

// Directions calls computeRoutes. The API only offers alternatives for
// routes without intermediates, so they are requested only then. An empty
// response yields a result with no alternatives.
func (r *Router) Directions(ctx context.Context, req domain.DirectionsRequest) (*domain.DirectionsResult, error) {
	body := computeRoutesRequest{
		Origin:                   toWaypoint(req.Origin),
		Destination:              toWaypoint(req.Destination),
		TravelMode:               travelMode(req.TravelMode),
		ComputeAlternativeRoutes: req.WantAlternatives && len(req.Waypoints) == 0,
		LanguageCode:             r.c.language,
		RegionCode:               r.c.region,
	}
	for _, w := range req.Waypoints {
		body.Intermediates = append(body.Intermediates, toWaypoint(w))
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequest(http.MethodPost, strings.TrimRight(r.c.routesURL, "/")+"/directions/v2:computeRoutes", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Goog-Api-Key", r.c.apiKey)
	httpReq.Header.Set("X-Goog-FieldMask", routesFieldMask)

	var resp computeRoutesResponse
	if err := r.c.do(ctx, httpReq, &resp); err != nil {
		return nil, fmt.Errorf("compute routes: %w", err)
	}

	out := &domain.DirectionsResult{Alternatives: make([]domain.PathAlternative, 0, len(resp.Routes))}
	for i, rt := range resp.Routes {
		alt := domain.PathAlternative{Summary: rt.Description}
		if alt.Summary == "" {
			alt.Summary = fmt.Sprintf("Route %d", i+1)
		}
		path, err := decodePolyline(rt.Polyline.EncodedPolyline)
		if err != nil {
			return nil, fmt.Errorf("compute routes: route %d: %w", i, err)
		}
		if len(path) == 0 {
			continue
		}
		alt.OverviewPath = path
		for _, l := range rt.Legs {
			d, err := parseDuration(l.Duration)
			if err != nil {
				return nil, fmt.Errorf("compute routes: route %d: %w", i, err)
			}
			alt.Legs = append(alt.Legs, domain.Leg{
				StartCoordinate: l.StartLocation.LatLng.coordinate(),
				EndCoordinate:   l.EndLocation.LatLng.coordinate(),
				DistanceMeters:  l.DistanceMeters,
				DurationSeconds: d.Seconds(),
			})
		}
		out.Alternatives = append(out.Alternatives, alt)
	}
	return out, nil
}

func decodePolyline(s string) ([]domain.Coordinate, error) {
	if s == "" {
		return nil, nil
	}
	coords, _, err := polyline.DecodeCoords([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("decode polyline: %w", err)
	}
	path := make([]domain.Coordinate, len(coords))
	for i, c := range coords {
		path[i] = domain.Coordinate{Lat: c[0], Lng: c[1]}
	}
	return path, nil
}

// parseDuration reads the protobuf JSON duration form, e.g. "165s".
func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	return d, nil
}
