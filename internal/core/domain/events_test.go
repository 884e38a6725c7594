package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeMapCommand(t *testing.T) {
	raw, err := EncodeMapCommand(PlaceMarker{Slot: SlotOrigin, Coordinate: Coordinate{Lat: 1, Lng: 2}, Label: "A", Draggable: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"place_marker","payload":{"slot":"origin","coordinate":{"lat":1,"lng":2},"label":"A","draggable":true}}`, string(raw))

	raw, err = EncodeMapCommand(ExitDrawingMode{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"exit_drawing_mode","payload":{}}`, string(raw))
}

func TestDecodeSurfaceEvent(t *testing.T) {
	var env Envelope
	require.NoError(t, json.Unmarshal([]byte(`{"type":"marker_drag_end","payload":{"slot":"waypoint-0","coordinate":{"lat":12.9,"lng":77.6}}}`), &env))
	ev, err := DecodeSurfaceEvent(env)
	require.NoError(t, err)
	assert.Equal(t, MarkerDragEnd{Slot: WaypointSlot(0), Coordinate: Coordinate{Lat: 12.9, Lng: 77.6}}, ev)

	ev, err = DecodeSurfaceEvent(Envelope{Type: "shape_updated", Payload: []byte(`{"center":{"lat":1,"lng":1},"radius":80}`)})
	require.NoError(t, err)
	upd, ok := ev.(ShapeUpdated)
	require.True(t, ok)
	assert.Equal(t, 80.0, upd.Radius)

	_, err = DecodeSurfaceEvent(Envelope{Type: "zoom"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = DecodeSurfaceEvent(Envelope{Type: "marker_clicked", Payload: []byte(`{"slot":"waypoint-00"}`)})
	assert.ErrorIs(t, err, ErrValidation)
}
