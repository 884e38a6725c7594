package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/KRVIMAL/routeye-sub001/internal/core/domain"
	"github.com/KRVIMAL/routeye-sub001/internal/core/usecases"
)

func envelope(t *testing.T, typ, payload string) domain.Envelope {
	t.Helper()
	env := domain.Envelope{Type: typ}
	if payload != "" {
		env.Payload = json.RawMessage(payload)
	}
	return env
}

func TestDecodeEditorCommand(t *testing.T) {
	tests := []struct {
		typ     string
		payload string
		want    usecases.Command
	}{
		{"set_name", `{"name":"Night run"}`, usecases.SetNameCommand{Name: "Night run"}},
		{"set_travel_mode", `{"mode":"WALKING"}`, usecases.SetTravelModeCommand{Mode: domain.TravelWalking}},
		{"select_geozone", `{"slot":"waypoint-1","geozone_id":"gz-9"}`,
			usecases.SelectGeozoneCommand{Slot: domain.WaypointSlot(1), GeozoneID: "gz-9"}},
		{"set_address", `{"slot":"origin","text":"MG Road"}`,
			usecases.SetAddressCommand{Slot: domain.SlotOrigin, Text: "MG Road"}},
		{"remove_waypoint", `{"index":2}`, usecases.RemoveWaypointCommand{Index: 2}},
		{"reorder_waypoint", `{"from":0,"to":3}`, usecases.ReorderWaypointCommand{From: 0, To: 3}},
		{"select_option", `{"index":1}`, usecases.SelectOptionCommand{Index: 1}},
		{"start_drawing", `{"kind":"polygon"}`, usecases.StartDrawingCommand{Kind: domain.KindPolygon}},
		{"recompute", "", usecases.RecomputeCommand{}},
		{"keep_plain", "", usecases.KeepPlainCommand{}},
		{"cancel_drawing", "", usecases.CancelDrawingCommand{}},
		{"save", "", usecases.SaveCommand{}},
		{"cancel", "", usecases.CancelCommand{}},
		{"marker_clicked", `{"slot":"destination"}`,
			usecases.SurfaceEventCommand{Event: domain.MarkerClicked{Slot: domain.SlotDestination}}},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			got, err := decodeEditorCommand(envelope(t, tt.typ, tt.payload))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestDecodeEditorCommand_Location(t *testing.T) {
	got, err := decodeEditorCommand(envelope(t, "set_location",
		`{"slot":"destination","location":{"name":"Hub","coordinate":{"lat":12.9,"lng":77.6},"geofence_ref":{"_id":"gz-4"}}}`))
	if err != nil {
		t.Fatal(err)
	}
	cmd, ok := got.(usecases.SetLocationCommand)
	if !ok {
		t.Fatalf("unexpected command %T", got)
	}
	if cmd.Slot != domain.SlotDestination || cmd.Location.GeofenceRef != "gz-4" || cmd.Location.Name != "Hub" {
		t.Errorf("unexpected command %+v", cmd)
	}
}

func TestDecodeEditorCommand_SubmitGeofence(t *testing.T) {
	got, err := decodeEditorCommand(envelope(t, "submit_geofence",
		`{"name":"Yard","created_by":"ops","is_private":true,"address":{"city":"Pune"}}`))
	if err != nil {
		t.Fatal(err)
	}
	cmd := got.(usecases.SubmitGeofenceCommand)
	if cmd.Form.Name != "Yard" || !cmd.Form.IsPrivate || cmd.Form.Address.City != "Pune" {
		t.Errorf("unexpected form %+v", cmd.Form)
	}
}

func TestDecodeEditorCommand_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		typ     string
		payload string
	}{
		{"unknown type", "teleport", ""},
		{"bad slot", "set_address", `{"slot":"middle","text":"x"}`},
		{"padded waypoint slot", "set_location", `{"slot":"waypoint-01","location":{"name":"x"}}`},
		{"signed waypoint slot", "select_geozone", `{"slot":"waypoint-+1","geozone_id":"z1"}`},
		{"bad mode", "set_travel_mode", `{"mode":"flying"}`},
		{"missing geozone", "select_geozone", `{"slot":"origin"}`},
		{"bad kind", "start_drawing", `{"kind":"hexagon"}`},
		{"bad payload", "set_name", `{"name":42}`},
		{"bad surface event", "marker_drag_end", `[]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeEditorCommand(envelope(t, tt.typ, tt.payload))
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestEditorSession_FullOutboxDropsSessionUpdates(t *testing.T) {
	sess := newEditorSession(slog.Default())
	for i := 0; i < editorOutboxSize+10; i++ {
		sess.Notify(domain.SessionUpdate{Kind: domain.UpdateState, State: domain.StateIdle})
	}
	if len(sess.out) != editorOutboxSize {
		t.Fatalf("expected full outbox of %d, got %d", editorOutboxSize, len(sess.out))
	}
	select {
	case <-sess.Desynced():
		t.Fatal("session updates must not desync the map")
	default:
	}
}

func TestEditorSession_LostMapCommandDesyncs(t *testing.T) {
	sess := newEditorSession(slog.Default())
	for i := 0; i < editorOutboxSize; i++ {
		sess.Apply(domain.PlaceMarker{Slot: domain.SlotOrigin})
	}
	select {
	case <-sess.Desynced():
		t.Fatal("desynced before any command was lost")
	default:
	}

	sess.Apply(domain.RemoveMarker{Slot: domain.SlotOrigin})
	sess.Apply(domain.RemoveShape{Slot: domain.SlotOrigin})

	select {
	case <-sess.Desynced():
	default:
		t.Fatal("expected session to be desynced after losing a map command")
	}
}

func TestEditorSession_MapFrame(t *testing.T) {
	sess := newEditorSession(slog.Default())
	sess.Apply(domain.RemoveMarker{Slot: domain.SlotOrigin})

	var frame struct {
		Channel string          `json:"channel"`
		Session string          `json:"session"`
		Data    domain.Envelope `json:"data"`
	}
	if err := json.Unmarshal(<-sess.out, &frame); err != nil {
		t.Fatal(err)
	}
	if frame.Channel != editorChannelMap || frame.Session != sess.id || frame.Data.Type != "remove_marker" {
		t.Errorf("unexpected frame %+v", frame)
	}
}
