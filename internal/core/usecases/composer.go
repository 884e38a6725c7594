package usecases

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/KRVIMAL/routeye-sub001/internal/core/domain"
	"github.com/KRVIMAL/routeye-sub001/internal/core/ports"
	"github.com/KRVIMAL/routeye-sub001/internal/pkg/logging"
	"github.com/KRVIMAL/routeye-sub001/internal/pkg/metrics"
)

// GeozoneIndex is the catalog view the composer needs.
type GeozoneIndex interface {
	GeozoneLookup
	FindByID(id string) (domain.Geozone, bool)
	List() []domain.Geozone
}

// ComposerDeps wires a Composer.
type ComposerDeps struct {
	Catalog      GeozoneIndex
	Surface      ports.MapSurface
	Sink         ports.SessionSink
	Logger       *slog.Logger
	MaxWaypoints int
}

// Composer is the editing session state machine for one route. It is not
// safe for concurrent use: every method must be called from the session's
// own goroutine. Blocking work is handed out as jobs via DrainJobs and its
// outcome fed back through Apply.
type Composer struct {
	catalog      GeozoneIndex
	resolver     *ShapeResolver
	markers      *MarkerSynchronizer
	sink         ports.SessionSink
	logger       *slog.Logger
	maxWaypoints int

	route     *domain.Route
	state     domain.EditorState
	savedPath []domain.Coordinate
	matched   bool

	seq          uint64
	alternatives []domain.PathAlternative
	options      []domain.RouteOption
	selected     int

	promptSlot domain.Slot
	draft      *geofenceDraft

	jobs []Job
}

type geofenceDraft struct {
	slot     domain.Slot
	kind     domain.GeometryKind
	center   *domain.Coordinate
	radius   float64
	vertices []domain.Coordinate
	pending  bool
}

// NewComposer creates an idle composer. Call Open before anything else.
func NewComposer(deps ComposerDeps) *Composer {
	logger := logging.Component(deps.Logger, "composer")
	resolver := NewShapeResolver(deps.Catalog, deps.Logger)
	return &Composer{
		catalog:      deps.Catalog,
		resolver:     resolver,
		markers:      NewMarkerSynchronizer(resolver, deps.Surface, deps.Logger),
		sink:         deps.Sink,
		logger:       logger,
		maxWaypoints: deps.MaxWaypoints,
		state:        domain.StateIdle,
	}
}

// Open starts editing route, or a new empty route when nil. A saved route
// keeps its stored path so the first computation can pick the matching
// alternative.
func (c *Composer) Open(route *domain.Route) {
	if route == nil {
		route = &domain.Route{TravelMode: domain.TravelDriving}
	}
	c.route = c.resolver.HydrateRoute(route)
	if c.route.TravelMode == "" {
		c.route.TravelMode = domain.TravelDriving
	}
	if c.route.IsSaved() {
		c.savedPath = append([]domain.Coordinate(nil), route.Path...)
	}
	c.markers.PlaceRoute(c.route)
	if len(c.route.Path) > 0 {
		c.markers.DrawPath(c.route.Path)
	}
	c.sink.Notify(domain.SessionUpdate{Kind: domain.UpdateGeozones, Geozones: c.catalog.List()})
	c.notifyRoute()
	if c.route.Routable() {
		c.requestCompute()
		return
	}
	c.setState(domain.StateIdle)
}

// State returns the lifecycle state.
func (c *Composer) State() domain.EditorState { return c.state }

// Drawing reports whether a geofence is being drawn.
func (c *Composer) Drawing() bool { return c.draft != nil }

// Route returns a copy of the route being edited.
func (c *Composer) Route() *domain.Route { return c.route.Clone() }

// Options returns the alternatives of the latest computation and the selected index.
func (c *Composer) Options() ([]domain.RouteOption, int) {
	return append([]domain.RouteOption(nil), c.options...), c.selected
}

// Markers exposes the synchronizer for inspection.
func (c *Composer) Markers() *MarkerSynchronizer { return c.markers }

// DrainJobs returns the jobs queued since the last call.
func (c *Composer) DrainJobs() []Job {
	jobs := c.jobs
	c.jobs = nil
	return jobs
}

func (c *Composer) editable() error {
	switch c.state {
	case domain.StateIdle, domain.StateComputingRoute, domain.StateRouteReady:
		return nil
	}
	return fmt.Errorf("%w: cannot edit while %s", domain.ErrInvalidState, c.state)
}

// SetName renames the route.
func (c *Composer) SetName(name string) error {
	if err := c.editable(); err != nil {
		return err
	}
	c.route.Name = strings.TrimSpace(name)
	c.notifyRoute()
	return nil
}

// SetTravelMode changes the travel mode and recomputes.
func (c *Composer) SetTravelMode(mode domain.TravelMode) error {
	if err := c.editable(); err != nil {
		return err
	}
	if _, err := domain.ParseTravelMode(string(mode)); err != nil {
		return err
	}
	c.route.TravelMode = mode
	c.notifyRoute()
	c.recomputeIfRoutable()
	return nil
}

// SetLocation replaces the stop at slot.
func (c *Composer) SetLocation(slot domain.Slot, loc domain.Location) error {
	if err := c.editable(); err != nil {
		return err
	}
	if c.draft != nil && c.draft.slot == slot {
		return fmt.Errorf("%w: slot %s is being drawn", domain.ErrInvalidState, slot)
	}
	if loc.IsGeofenceEnabled {
		loc = c.resolver.EnsureGeometryPayload(loc)
	} else {
		loc.Geometry = nil
		loc.GeofenceRef = ""
	}
	if err := c.route.SetLocation(slot, loc); err != nil {
		return err
	}
	if c.promptSlot == slot {
		c.promptSlot = ""
	}
	c.markers.Place(slot, loc)
	c.notifyRoute()
	c.recomputeIfRoutable()
	return nil
}

// SelectGeozone points slot at a catalog geozone.
func (c *Composer) SelectGeozone(slot domain.Slot, id string) error {
	gz, ok := c.catalog.FindByID(id)
	if !ok {
		return fmt.Errorf("geozone %s: %w", id, domain.ErrNotFound)
	}
	return c.SetLocation(slot, LocationFromGeozone(gz))
}

// SetAddress sets slot from typed text. "lat,lng" text is applied
// directly; anything else is geocoded.
func (c *Composer) SetAddress(slot domain.Slot, text string) error {
	if err := c.editable(); err != nil {
		return err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("%w: address is empty", domain.ErrValidation)
	}
	if _, ok := c.route.Location(slot); !ok {
		return fmt.Errorf("%w: no stop at slot %q", domain.ErrValidation, slot)
	}
	if coord, err := domain.ParseCoordinate(text); err == nil {
		return c.SetLocation(slot, domain.PlainLocation(coord.String(), coord))
	}
	c.jobs = append(c.jobs, GeocodeJob{Slot: slot, Query: text})
	return nil
}

// AddWaypoint appends a waypoint before the destination.
func (c *Composer) AddWaypoint(loc domain.Location) error {
	if err := c.editable(); err != nil {
		return err
	}
	if c.maxWaypoints > 0 && len(c.route.Waypoints) >= c.maxWaypoints {
		return fmt.Errorf("%w: at most %d waypoints", domain.ErrValidation, c.maxWaypoints)
	}
	if loc.IsGeofenceEnabled {
		loc = c.resolver.EnsureGeometryPayload(loc)
	}
	c.route.Waypoints = append(c.route.Waypoints, loc)
	c.markers.Place(domain.WaypointSlot(len(c.route.Waypoints)-1), loc)
	c.notifyRoute()
	c.recomputeIfRoutable()
	return nil
}

// RemoveWaypoint deletes the waypoint at index i and shifts the rest down.
func (c *Composer) RemoveWaypoint(i int) error {
	if err := c.editable(); err != nil {
		return err
	}
	n := len(c.route.Waypoints)
	if i < 0 || i >= n {
		return fmt.Errorf("%w: waypoint %d out of range", domain.ErrValidation, i)
	}
	if c.draft != nil {
		return fmt.Errorf("%w: finish drawing first", domain.ErrInvalidState)
	}
	c.route.Waypoints = append(c.route.Waypoints[:i], c.route.Waypoints[i+1:]...)
	c.markers.Reindex(i, i, c.route.Waypoints, n)
	c.promptSlot = ""
	c.notifyRoute()
	c.recomputeIfRoutable()
	return nil
}

// ReorderWaypoint moves the waypoint at from to index to.
func (c *Composer) ReorderWaypoint(from, to int) error {
	if err := c.editable(); err != nil {
		return err
	}
	n := len(c.route.Waypoints)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: reorder %d to %d out of range", domain.ErrValidation, from, to)
	}
	if c.draft != nil {
		return fmt.Errorf("%w: finish drawing first", domain.ErrInvalidState)
	}
	if from == to {
		return nil
	}
	moved := c.route.Waypoints[from]
	wps := append(c.route.Waypoints[:from:from], c.route.Waypoints[from+1:]...)
	wps = append(wps[:to], append([]domain.Location{moved}, wps[to:]...)...)
	c.route.Waypoints = wps
	c.markers.Reindex(from, to, c.route.Waypoints, n)
	c.promptSlot = ""
	c.notifyRoute()
	c.recomputeIfRoutable()
	return nil
}

// SelectOption switches to another alternative of the latest computation.
func (c *Composer) SelectOption(index int) error {
	if c.state != domain.StateRouteReady {
		return fmt.Errorf("%w: no computed route to choose from", domain.ErrInvalidState)
	}
	if index < 0 || index >= len(c.alternatives) {
		return fmt.Errorf("%w: option %d out of range", domain.ErrValidation, index)
	}
	c.selectAlternative(index)
	c.notifyOptions()
	c.notifyRoute()
	return nil
}

// Recompute asks for fresh directions.
func (c *Composer) Recompute() error {
	if err := c.editable(); err != nil {
		return err
	}
	if !c.route.Routable() {
		return fmt.Errorf("%w: origin and destination are required", domain.ErrValidation)
	}
	c.requestCompute()
	return nil
}

func (c *Composer) recomputeIfRoutable() {
	if c.route.Routable() {
		c.requestCompute()
	}
}

func (c *Composer) requestCompute() {
	c.seq++
	req := domain.DirectionsRequest{
		Origin:           c.route.Origin.Coordinate,
		Destination:      c.route.Destination.Coordinate,
		TravelMode:       c.route.TravelMode,
		WantAlternatives: true,
	}
	for _, w := range c.route.Waypoints {
		req.Waypoints = append(req.Waypoints, w.Coordinate)
	}
	c.jobs = append(c.jobs, ComputeRouteJob{Seq: c.seq, Request: req})
	c.setState(domain.StateComputingRoute)
}

// HandleSurfaceEvent processes an event from the map surface.
func (c *Composer) HandleSurfaceEvent(ev domain.SurfaceEvent) error {
	if upd, ok := ev.(domain.ShapeUpdated); ok {
		return c.updateDraft(upd)
	}
	n, ok := c.markers.Translate(ev)
	if !ok {
		return nil
	}
	switch n := n.(type) {
	case domain.LocationMoved:
		if err := c.SetLocation(n.Slot, domain.PlainLocation(n.Name, n.Coordinate)); err != nil {
			return err
		}
		c.jobs = append(c.jobs, ReverseGeocodeJob{Slot: n.Slot, Coordinate: n.Coordinate})
	case domain.LocationClicked:
		loc, ok := c.route.Location(n.Slot)
		if !ok || loc.IsGeofenceEnabled || c.state != domain.StateRouteReady || c.draft != nil {
			return nil
		}
		c.promptSlot = n.Slot
		c.sink.Notify(domain.SessionUpdate{
			Kind:    domain.UpdatePrompt,
			Slot:    n.Slot,
			Message: fmt.Sprintf("Convert %q into a geofence?", loc.Name),
		})
	}
	return nil
}

// StartDrawing answers the conversion prompt by drawing a geofence of kind
// around the prompted stop.
func (c *Composer) StartDrawing(kind domain.GeometryKind) error {
	if c.state != domain.StateRouteReady {
		return fmt.Errorf("%w: drawing requires a computed route", domain.ErrInvalidState)
	}
	if c.draft != nil {
		return fmt.Errorf("%w: already drawing", domain.ErrInvalidState)
	}
	if c.promptSlot == "" {
		return fmt.Errorf("%w: no stop selected for conversion", domain.ErrInvalidState)
	}
	if kind != domain.KindCircle && kind != domain.KindPolygon {
		return fmt.Errorf("%w: cannot draw %q", domain.ErrValidation, kind)
	}
	loc, _ := c.route.Location(c.promptSlot)
	d := &geofenceDraft{slot: c.promptSlot, kind: kind}
	if kind == domain.KindCircle {
		center := loc.Coordinate
		d.center = &center
	}
	c.draft = d
	c.promptSlot = ""
	c.markers.EnterDrawingMode(kind)
	c.notifyDrawing()
	return nil
}

// KeepPlain declines the conversion prompt.
func (c *Composer) KeepPlain() error {
	c.promptSlot = ""
	return nil
}

func (c *Composer) updateDraft(upd domain.ShapeUpdated) error {
	if c.draft == nil || c.draft.pending {
		return nil
	}
	switch c.draft.kind {
	case domain.KindCircle:
		if upd.Center != nil {
			center := *upd.Center
			c.draft.center = &center
		}
		if upd.Radius > 0 {
			c.draft.radius = upd.Radius
		}
	case domain.KindPolygon:
		if len(upd.Vertices) > 0 {
			c.draft.vertices = append([]domain.Coordinate(nil), upd.Vertices...)
		}
	}
	return nil
}

func (d *geofenceDraft) geometry() domain.Geometry {
	if d.kind == domain.KindCircle {
		var center domain.Coordinate
		if d.center != nil {
			center = *d.center
		}
		return domain.NewCircle(center, d.radius)
	}
	g := domain.NewPolygon(d.vertices)
	g.Vertices = g.ClosedRing()
	return g
}

// SubmitGeofence turns the current draft into a catalog geozone.
func (c *Composer) SubmitGeofence(form domain.GeofenceDraftForm) error {
	if c.draft == nil {
		return fmt.Errorf("%w: nothing is being drawn", domain.ErrInvalidState)
	}
	if c.draft.pending {
		return fmt.Errorf("%w: geofence already submitted", domain.ErrInvalidState)
	}
	name := strings.TrimSpace(form.Name)
	if name == "" {
		loc, _ := c.route.Location(c.draft.slot)
		name = loc.Name
	}
	in := domain.GeozoneInput{
		Name:          name,
		Geometry:      c.draft.geometry(),
		Address:       form.Address,
		ContactNumber: form.ContactNumber,
		IsPublic:      form.IsPublic,
		IsPrivate:     form.IsPrivate,
		CreatedBy:     form.CreatedBy,
	}
	if err := in.Validate(); err != nil {
		return err
	}
	c.draft.pending = true
	c.jobs = append(c.jobs, CreateGeozoneJob{Slot: c.draft.slot, Input: in})
	c.notifyDrawing()
	return nil
}

// CancelDrawing discards the draft and releases the drawing tool.
func (c *Composer) CancelDrawing() error {
	if c.draft == nil {
		return nil
	}
	c.draft = nil
	c.markers.ExitDrawingMode()
	c.notifyDrawing()
	return nil
}

// Save validates the route and queues it for persistence with every stop
// stripped of its geometry payload.
func (c *Composer) Save() error {
	if c.state != domain.StateRouteReady {
		return fmt.Errorf("%w: cannot save while %s", domain.ErrInvalidState, c.state)
	}
	if c.draft != nil {
		return fmt.Errorf("%w: finish drawing first", domain.ErrInvalidState)
	}
	if err := c.route.ValidateForSave(); err != nil {
		return err
	}
	c.jobs = append(c.jobs, SaveRouteJob{Route: c.resolver.StripRoute(c.route)})
	c.setState(domain.StateSaving)
	return nil
}

// Cancel ends the session. Pending job results will be ignored.
func (c *Composer) Cancel() error {
	if c.state.Terminal() {
		return nil
	}
	if c.draft != nil {
		c.draft = nil
		c.markers.ExitDrawingMode()
	}
	c.promptSlot = ""
	c.jobs = nil
	c.markers.Clear()
	c.setState(domain.StateCancelled)
	return nil
}

// Apply feeds the outcome of a job back into the session. It returns
// ErrStaleResponse for route computations superseded by a newer request.
func (c *Composer) Apply(res Result) error {
	if c.state == domain.StateCancelled {
		return nil
	}
	switch r := res.(type) {
	case RouteComputed:
		return c.applyRouteComputed(r)
	case AddressResolved:
		if r.Err != nil {
			c.notifyError(fmt.Sprintf("Could not find %q", r.Query), r.Err)
			return nil
		}
		if c.editable() != nil {
			return nil
		}
		return c.SetLocation(r.Slot, domain.PlainLocation(r.Candidate.FormattedName, r.Candidate.Coordinate))
	case LocationNamed:
		loc, ok := c.route.Location(r.Slot)
		if r.Err != nil || !ok || loc.IsGeofenceEnabled || loc.Coordinate != r.Coordinate || r.Name == "" {
			if r.Err != nil {
				c.logger.Debug("reverse geocoding failed", "slot", r.Slot, "error", r.Err)
			}
			return nil
		}
		loc.Name = r.Name
		_ = c.route.SetLocation(r.Slot, loc)
		c.markers.Place(r.Slot, loc)
		c.notifyRoute()
	case GeozoneCreated:
		if c.draft == nil || c.draft.slot != r.Slot {
			return nil
		}
		c.draft = nil
		c.markers.ExitDrawingMode()
		c.notifyDrawing()
		c.sink.Notify(domain.SessionUpdate{Kind: domain.UpdateGeozones, Geozones: c.catalog.List()})
		return c.SetLocation(r.Slot, LocationFromGeozone(r.Geozone))
	case GeozoneCreateFailed:
		if c.draft != nil && c.draft.slot == r.Slot {
			c.draft.pending = false
		}
		c.notifyError("Could not create geofence", r.Err)
	case RouteSaved:
		if c.state != domain.StateSaving {
			return nil
		}
		c.route.ID = r.Route.ID
		c.route.CreatedAt = r.Route.CreatedAt
		c.route.UpdatedAt = r.Route.UpdatedAt
		c.setState(domain.StateSaved)
		c.sink.Notify(domain.SessionUpdate{Kind: domain.UpdateSaved, State: c.state, Route: r.Route.Clone()})
	case RouteSaveFailed:
		if c.state != domain.StateSaving {
			return nil
		}
		c.setState(domain.StateRouteReady)
		c.notifyError("Could not save route", r.Err)
	default:
		return fmt.Errorf("unknown result %T", res)
	}
	return nil
}

func (c *Composer) applyRouteComputed(r RouteComputed) error {
	if r.Seq != c.seq || c.state != domain.StateComputingRoute {
		metrics.StaleResponsesDropped.Inc()
		return domain.ErrStaleResponse
	}
	err := r.Err
	alts := usableAlternatives(r.Result)
	if err == nil && len(alts) == 0 {
		err = domain.ErrNoRoute
	}
	if err != nil {
		metrics.RouteComputations.WithLabelValues("error").Inc()
		c.setState(domain.StateRouteReady)
		msg := "Could not compute route"
		if errors.Is(err, domain.ErrNoRoute) {
			msg = "No route found between these stops"
		}
		c.notifyError(msg, err)
		return nil
	}
	metrics.RouteComputations.WithLabelValues("ok").Inc()

	c.alternatives = alts
	c.options = make([]domain.RouteOption, len(c.alternatives))
	for i, alt := range c.alternatives {
		c.options[i] = alt.Option(i)
	}
	index := 0
	if !c.matched && len(c.savedPath) > 0 {
		paths := make([][]domain.Coordinate, len(c.alternatives))
		for i, alt := range c.alternatives {
			paths[i] = alt.OverviewPath
		}
		index = SelectBestMatch(paths, c.savedPath)
		metrics.MatcherSelections.WithLabelValues(fmt.Sprint(index == 0)).Inc()
		c.logger.Debug("matched saved path", "route_id", c.route.ID, "index", index, "alternatives", len(paths))
	}
	c.matched = true
	c.selectAlternative(index)
	c.setState(domain.StateRouteReady)
	c.notifyOptions()
	c.notifyRoute()
	return nil
}

// usableAlternatives drops alternatives that carry no path.
func usableAlternatives(res *domain.DirectionsResult) []domain.PathAlternative {
	if res == nil {
		return nil
	}
	out := make([]domain.PathAlternative, 0, len(res.Alternatives))
	for _, alt := range res.Alternatives {
		if len(alt.OverviewPath) > 0 {
			out = append(out, alt)
		}
	}
	return out
}

// selectAlternative copies the chosen path and totals onto the route. Leg
// endpoints never overwrite the stops.
func (c *Composer) selectAlternative(index int) {
	alt := c.alternatives[index]
	c.selected = index
	meters, seconds := alt.Totals()
	c.route.Path = append([]domain.Coordinate(nil), alt.OverviewPath...)
	c.route.Distance = domain.DistanceMetric(meters)
	c.route.Duration = domain.DurationMetric(seconds)
	c.markers.DrawPath(c.route.Path)
}

func (c *Composer) setState(s domain.EditorState) {
	c.state = s
	c.sink.Notify(domain.SessionUpdate{Kind: domain.UpdateState, State: s, Drawing: c.draft != nil})
}

func (c *Composer) notifyRoute() {
	c.sink.Notify(domain.SessionUpdate{Kind: domain.UpdateRoute, Route: c.route.Clone()})
}

func (c *Composer) notifyOptions() {
	c.sink.Notify(domain.SessionUpdate{Kind: domain.UpdateOptions, Options: append([]domain.RouteOption(nil), c.options...), Selected: c.selected})
}

func (c *Composer) notifyDrawing() {
	u := domain.SessionUpdate{Kind: domain.UpdateDrawing, State: c.state, Drawing: c.draft != nil}
	if c.draft != nil {
		u.Slot = c.draft.slot
	}
	c.sink.Notify(u)
}

func (c *Composer) notifyError(msg string, err error) {
	c.logger.Warn(msg, "route_id", c.route.ID, "error", err)
	c.sink.Notify(domain.SessionUpdate{Kind: domain.UpdateError, State: c.state, Message: msg})
}
