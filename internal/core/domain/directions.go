package domain

// DirectionsRequest asks the routing provider for paths through the stops.
type DirectionsRequest struct {
	Origin           Coordinate   `json:"origin"`
	Destination      Coordinate   `json:"destination"`
	Waypoints        []Coordinate `json:"waypoints,omitempty"`
	TravelMode       TravelMode   `json:"travel_mode"`
	WantAlternatives bool         `json:"want_alternatives"`
}

// DirectionsResult holds every alternative the provider returned, in
// provider order. Neither order nor identity is stable across requests.
type DirectionsResult struct {
	Alternatives []PathAlternative `json:"alternatives"`
}

// PathAlternative is a single candidate path.
type PathAlternative struct {
	Summary      string       `json:"summary"`
	Legs         []Leg        `json:"legs"`
	OverviewPath []Coordinate `json:"overview_path"`
}

// Leg is the stretch between two consecutive stops.
type Leg struct {
	StartCoordinate Coordinate `json:"start_coordinate"`
	EndCoordinate   Coordinate `json:"end_coordinate"`
	StartName       string     `json:"start_name,omitempty"`
	EndName         string     `json:"end_name,omitempty"`
	DistanceMeters  float64    `json:"distance_meters"`
	DurationSeconds float64    `json:"duration_seconds"`
}

// Totals sums distance and duration across the legs.
func (p PathAlternative) Totals() (meters, seconds float64) {
	for _, l := range p.Legs {
		meters += l.DistanceMeters
		seconds += l.DurationSeconds
	}
	return meters, seconds
}

// Option summarizes the alternative for display.
func (p PathAlternative) Option(index int) RouteOption {
	meters, seconds := p.Totals()
	return RouteOption{
		Index:        index,
		Summary:      p.Summary,
		DistanceText: DistanceMetric(meters).Text,
		DurationText: DurationMetric(seconds).Text,
	}
}

// GeocodeCandidate is the best match for a forward geocoding query.
type GeocodeCandidate struct {
	Coordinate    Coordinate `json:"coordinate"`
	FormattedName string     `json:"formatted_name"`
}
