package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// TravelMode is the mode of transport a route is computed for.
type TravelMode string

const (
	TravelDriving   TravelMode = "driving"
	TravelWalking   TravelMode = "walking"
	TravelBicycling TravelMode = "bicycling"
	TravelTransit   TravelMode = "transit"
)

// ParseTravelMode accepts the lower- or upper-case mode name. Empty means driving.
func ParseTravelMode(s string) (TravelMode, error) {
	switch m := TravelMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return TravelDriving, nil
	case TravelDriving, TravelWalking, TravelBicycling, TravelTransit:
		return m, nil
	}
	return "", fmt.Errorf("%w: unknown travel mode %q", ErrValidation, s)
}

// Metric is a numeric value with its display text, e.g. {12400, "12.4 km"}.
type Metric struct {
	Value float64 `json:"value"`
	Text  string  `json:"text"`
}

// DistanceMetric builds a distance metric from meters.
func DistanceMetric(meters float64) Metric {
	return Metric{Value: meters, Text: FormatDistance(meters)}
}

// DurationMetric builds a duration metric from seconds.
func DurationMetric(seconds float64) Metric {
	return Metric{Value: seconds, Text: FormatDuration(time.Duration(seconds) * time.Second)}
}

// FormatDistance renders meters the way map providers do: "850 m", "12.4 km".
func FormatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%.0f m", meters)
	}
	km := meters / 1000
	if km >= 100 {
		return fmt.Sprintf("%.0f km", km)
	}
	return fmt.Sprintf("%.1f km", km)
}

// FormatDuration renders a duration as "5 mins", "1 hour 5 mins" or "2 days 3 hours".
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return "0 mins"
	}
	mins := int(math.Round(d.Minutes()))
	if mins < 1 {
		return "1 min"
	}
	days, hours := mins/(24*60), (mins/60)%24
	mins %= 60
	switch {
	case days > 0:
		return joinUnits(days, "day", hours, "hour")
	case hours > 0:
		return joinUnits(hours, "hour", mins, "min")
	}
	return plural(mins, "min")
}

func joinUnits(major int, majorUnit string, minor int, minorUnit string) string {
	if minor == 0 {
		return plural(major, majorUnit)
	}
	return plural(major, majorUnit) + " " + plural(minor, minorUnit)
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// Route is a multi-stop route as edited by an operator and persisted.
type Route struct {
	ID          string       `json:"id,omitempty"`
	Name        string       `json:"name"`
	TravelMode  TravelMode   `json:"travel_mode"`
	Origin      Location     `json:"origin"`
	Destination Location     `json:"destination"`
	Waypoints   []Location   `json:"waypoints"`
	Path        []Coordinate `json:"path"`
	Distance    Metric       `json:"distance"`
	Duration    Metric       `json:"duration"`
	CreatedAt   time.Time    `json:"created_at,omitempty"`
	UpdatedAt   time.Time    `json:"updated_at,omitempty"`
}

// IsSaved reports whether the route already exists in storage.
func (r *Route) IsSaved() bool { return r.ID != "" }

// Clone returns a deep copy.
func (r *Route) Clone() *Route {
	out := *r
	out.Origin = r.Origin.Clone()
	out.Destination = r.Destination.Clone()
	if r.Waypoints != nil {
		out.Waypoints = make([]Location, len(r.Waypoints))
		for i, w := range r.Waypoints {
			out.Waypoints[i] = w.Clone()
		}
	}
	if r.Path != nil {
		out.Path = append([]Coordinate(nil), r.Path...)
	}
	return &out
}

// Slots lists every stop slot in route order.
func (r *Route) Slots() []Slot {
	slots := make([]Slot, 0, len(r.Waypoints)+2)
	slots = append(slots, SlotOrigin)
	for i := range r.Waypoints {
		slots = append(slots, WaypointSlot(i))
	}
	return append(slots, SlotDestination)
}

// Location returns the stop held by slot.
func (r *Route) Location(slot Slot) (Location, bool) {
	switch slot {
	case SlotOrigin:
		return r.Origin, true
	case SlotDestination:
		return r.Destination, true
	}
	if i, ok := slot.WaypointIndex(); ok && i < len(r.Waypoints) {
		return r.Waypoints[i], true
	}
	return Location{}, false
}

// SetLocation replaces the stop held by slot.
func (r *Route) SetLocation(slot Slot, loc Location) error {
	switch slot {
	case SlotOrigin:
		r.Origin = loc
		return nil
	case SlotDestination:
		r.Destination = loc
		return nil
	}
	if i, ok := slot.WaypointIndex(); ok && i < len(r.Waypoints) {
		r.Waypoints[i] = loc
		return nil
	}
	return fmt.Errorf("%w: no stop at slot %q", ErrValidation, slot)
}

// Routable reports whether origin and destination are set, which is the
// minimum needed to ask for directions.
func (r *Route) Routable() bool {
	return !r.Origin.IsEmpty() && !r.Destination.IsEmpty()
}

// ValidateForSave checks the rules that block saving.
func (r *Route) ValidateForSave() error {
	verr := &ValidationError{}
	if strings.TrimSpace(r.Name) == "" {
		verr.Add("route name is required")
	}
	if strings.TrimSpace(r.Origin.Name) == "" {
		verr.Add("origin is required")
	}
	if strings.TrimSpace(r.Destination.Name) == "" {
		verr.Add("destination is required")
	}
	if len(r.Path) == 0 {
		verr.Add("route has no computed path")
	}
	return verr.OrNil()
}

// RouteOption is one alternative returned by a route computation. It is
// never persisted.
type RouteOption struct {
	Index        int    `json:"index"`
	Summary      string `json:"summary"`
	DistanceText string `json:"distance_text"`
	DurationText string `json:"duration_text"`
}
