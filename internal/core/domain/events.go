package domain

import (
	"encoding/json"
	"fmt"
)

// MapCommand is an instruction for the map surface (server to client).
type MapCommand interface {
	CommandType() string
}

// PlaceMarker draws or moves the point marker for a slot.
type PlaceMarker struct {
	Slot       Slot       `json:"slot"`
	Coordinate Coordinate `json:"coordinate"`
	Label      string     `json:"label"`
	Draggable  bool       `json:"draggable"`
}

// RemoveMarker removes the point marker for a slot.
type RemoveMarker struct {
	Slot Slot `json:"slot"`
}

// DrawShape draws or replaces the non-interactive geozone shape for a slot.
type DrawShape struct {
	Slot       Slot       `json:"slot"`
	GeozoneRef GeozoneRef `json:"geozone_ref"`
	Geometry   Geometry   `json:"geometry"`
}

// RemoveShape removes the geozone shape drawn for a slot.
type RemoveShape struct {
	Slot       Slot       `json:"slot"`
	GeozoneRef GeozoneRef `json:"geozone_ref"`
}

// DrawPath replaces the rendered route path.
type DrawPath struct {
	Path []Coordinate `json:"path"`
}

// EnterDrawingMode activates the interactive drawing tool.
type EnterDrawingMode struct {
	Kind GeometryKind `json:"kind"`
}

// ExitDrawingMode releases the drawing tool and discards its overlay.
type ExitDrawingMode struct{}

func (PlaceMarker) CommandType() string      { return "place_marker" }
func (RemoveMarker) CommandType() string     { return "remove_marker" }
func (DrawShape) CommandType() string        { return "draw_shape" }
func (RemoveShape) CommandType() string      { return "remove_shape" }
func (DrawPath) CommandType() string         { return "draw_path" }
func (EnterDrawingMode) CommandType() string { return "enter_drawing_mode" }
func (ExitDrawingMode) CommandType() string  { return "exit_drawing_mode" }

// Envelope is the wire form of commands and events: {"type": ..., "payload": ...}.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// EncodeMapCommand wraps cmd in an Envelope.
func EncodeMapCommand(cmd MapCommand) ([]byte, error) {
	payload, err := json.Marshal(cmd)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: cmd.CommandType(), Payload: payload})
}

// SurfaceEvent is something the operator did on the map (client to server).
type SurfaceEvent interface {
	surfaceEvent()
}

// MarkerDragEnd fires when a draggable marker is dropped.
type MarkerDragEnd struct {
	Slot       Slot       `json:"slot"`
	Coordinate Coordinate `json:"coordinate"`
}

// MarkerClicked fires when a marker is clicked.
type MarkerClicked struct {
	Slot Slot `json:"slot"`
}

// ShapeUpdated carries live drawing-tool output: center and radius for
// circles, the vertex list for polygons.
type ShapeUpdated struct {
	Center   *Coordinate  `json:"center,omitempty"`
	Radius   float64      `json:"radius,omitempty"`
	Vertices []Coordinate `json:"vertices,omitempty"`
}

func (MarkerDragEnd) surfaceEvent() {}
func (MarkerClicked) surfaceEvent() {}
func (ShapeUpdated) surfaceEvent()  {}

// DecodeSurfaceEvent decodes a client map event.
func DecodeSurfaceEvent(env Envelope) (SurfaceEvent, error) {
	var ev SurfaceEvent
	switch env.Type {
	case "marker_drag_end":
		var e MarkerDragEnd
		if err := json.Unmarshal(env.Payload, &e); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Type, err)
		}
		slot, err := ParseSlot(string(e.Slot))
		if err != nil {
			return nil, err
		}
		e.Slot = slot
		ev = e
	case "marker_clicked":
		var e MarkerClicked
		if err := json.Unmarshal(env.Payload, &e); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Type, err)
		}
		slot, err := ParseSlot(string(e.Slot))
		if err != nil {
			return nil, err
		}
		e.Slot = slot
		ev = e
	case "shape_updated":
		var e ShapeUpdated
		if err := json.Unmarshal(env.Payload, &e); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Type, err)
		}
		ev = e
	default:
		return nil, fmt.Errorf("%w: unknown surface event %q", ErrValidation, env.Type)
	}
	return ev, nil
}

// Notification is what the marker synchronizer reports to the composer
// after translating a surface event.
type Notification interface {
	notification()
}

// LocationMoved reports a dragged stop. Name is a best-effort label.
type LocationMoved struct {
	Slot       Slot
	Coordinate Coordinate
	Name       string
}

// LocationClicked reports a click on a stop's marker.
type LocationClicked struct {
	Slot Slot
}

func (LocationMoved) notification()   {}
func (LocationClicked) notification() {}
