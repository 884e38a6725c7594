package telemetry

// Tracer and span names used for instrumentation.
const (
	TracerUsecases = "routeye/usecases"

	// Editor
	SpanComputeRoute = "editor.compute_route"

	// Persistence
	SpanRouteSave = "route.save"
)

// Span attribute keys.
const (
	AttrEditorSeq        = "editor.seq"
	AttrEditorWaypoints  = "editor.waypoints"
	AttrEditorTravelMode = "editor.travel_mode"
	AttrRouteID          = "route.id"
)
