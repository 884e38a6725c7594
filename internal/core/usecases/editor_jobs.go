package usecases

import (
	"github.com/KRVIMAL/routeye-sub001/internal/core/domain"
)

// Job is blocking work requested by a Composer.
type Job interface {
	JobName() string
}

// ComputeRouteJob asks the router for directions. Seq identifies the request.
type ComputeRouteJob struct {
	Seq     uint64
	Request domain.DirectionsRequest
}

// GeocodeJob resolves typed text for a slot.
type GeocodeJob struct {
	Slot  domain.Slot
	Query string
}

// ReverseGeocodeJob names a dragged stop.
type ReverseGeocodeJob struct {
	Slot       domain.Slot
	Coordinate domain.Coordinate
}

// CreateGeozoneJob provisions a drawn geofence.
type CreateGeozoneJob struct {
	Slot  domain.Slot
	Input domain.GeozoneInput
}

// SaveRouteJob persists an already stripped route.
type SaveRouteJob struct {
	Route *domain.Route
}

func (ComputeRouteJob) JobName() string   { return "compute_route" }
func (GeocodeJob) JobName() string        { return "geocode" }
func (ReverseGeocodeJob) JobName() string { return "reverse_geocode" }
func (CreateGeozoneJob) JobName() string  { return "create_geozone" }
func (SaveRouteJob) JobName() string      { return "save_route" }

// Result is the outcome of a Job, applied back on the session goroutine.
type Result interface {
	result()
}

// RouteComputed carries directions for request Seq.
type RouteComputed struct {
	Seq    uint64
	Result *domain.DirectionsResult
	Err    error
}

// AddressResolved carries the geocoding outcome for a slot.
type AddressResolved struct {
	Slot      domain.Slot
	Query     string
	Candidate *domain.GeocodeCandidate
	Err       error
}

// LocationNamed carries the reverse-geocoded name of a dragged stop.
type LocationNamed struct {
	Slot       domain.Slot
	Coordinate domain.Coordinate
	Name       string
	Err        error
}

// GeozoneCreated reports a provisioned geofence.
type GeozoneCreated struct {
	Slot    domain.Slot
	Geozone domain.Geozone
}

// GeozoneCreateFailed reports a failed provisioning.
type GeozoneCreateFailed struct {
	Slot domain.Slot
	Err  error
}

// RouteSaved reports a persisted route.
type RouteSaved struct {
	Route *domain.Route
}

// RouteSaveFailed reports a failed save. The edit is kept for retry.
type RouteSaveFailed struct {
	Err error
}

func (RouteComputed) result()       {}
func (AddressResolved) result()     {}
func (LocationNamed) result()       {}
func (GeozoneCreated) result()      {}
func (GeozoneCreateFailed) result() {}
func (RouteSaved) result()          {}
func (RouteSaveFailed) result()     {}

// Command is an operator action executed on the session goroutine.
type Command interface {
	Execute(c *Composer) error
}

type (
	SetNameCommand         struct{ Name string }
	SetTravelModeCommand   struct{ Mode domain.TravelMode }
	SetLocationCommand     struct {
		Slot     domain.Slot
		Location domain.Location
	}
	SelectGeozoneCommand struct {
		Slot      domain.Slot
		GeozoneID string
	}
	SetAddressCommand struct {
		Slot domain.Slot
		Text string
	}
	AddWaypointCommand     struct{ Location domain.Location }
	RemoveWaypointCommand  struct{ Index int }
	ReorderWaypointCommand struct{ From, To int }
	SelectOptionCommand    struct{ Index int }
	RecomputeCommand       struct{}
	SurfaceEventCommand    struct{ Event domain.SurfaceEvent }
	StartDrawingCommand    struct{ Kind domain.GeometryKind }
	KeepPlainCommand       struct{}
	SubmitGeofenceCommand  struct{ Form domain.GeofenceDraftForm }
	CancelDrawingCommand   struct{}
	SaveCommand            struct{}
	CancelCommand          struct{}
)

func (cmd SetNameCommand) Execute(c *Composer) error       { return c.SetName(cmd.Name) }
func (cmd SetTravelModeCommand) Execute(c *Composer) error { return c.SetTravelMode(cmd.Mode) }
func (cmd SetLocationCommand) Execute(c *Composer) error {
	return c.SetLocation(cmd.Slot, cmd.Location)
}
func (cmd SelectGeozoneCommand) Execute(c *Composer) error {
	return c.SelectGeozone(cmd.Slot, cmd.GeozoneID)
}
func (cmd SetAddressCommand) Execute(c *Composer) error     { return c.SetAddress(cmd.Slot, cmd.Text) }
func (cmd AddWaypointCommand) Execute(c *Composer) error    { return c.AddWaypoint(cmd.Location) }
func (cmd RemoveWaypointCommand) Execute(c *Composer) error { return c.RemoveWaypoint(cmd.Index) }
func (cmd ReorderWaypointCommand) Execute(c *Composer) error {
	return c.ReorderWaypoint(cmd.From, cmd.To)
}
func (cmd SelectOptionCommand) Execute(c *Composer) error   { return c.SelectOption(cmd.Index) }
func (RecomputeCommand) Execute(c *Composer) error          { return c.Recompute() }
func (cmd SurfaceEventCommand) Execute(c *Composer) error   { return c.HandleSurfaceEvent(cmd.Event) }
func (cmd StartDrawingCommand) Execute(c *Composer) error   { return c.StartDrawing(cmd.Kind) }
func (KeepPlainCommand) Execute(c *Composer) error          { return c.KeepPlain() }
func (cmd SubmitGeofenceCommand) Execute(c *Composer) error { return c.SubmitGeofence(cmd.Form) }
func (CancelDrawingCommand) Execute(c *Composer) error      { return c.CancelDrawing() }
func (SaveCommand) Execute(c *Composer) error               { return c.Save() }
func (CancelCommand) Execute(c *Composer) error             { return c.Cancel() }
