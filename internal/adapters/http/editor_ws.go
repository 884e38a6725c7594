package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/KRVIMAL/routeye-sub001/internal/core/domain"
	"github.com/KRVIMAL/routeye-sub001/internal/core/usecases"
	"github.com/KRVIMAL/routeye-sub001/internal/pkg/metrics"
)

const (
	editorRouteLocal  = "editor_route"
	editorOutboxSize  = 256
	editorCloseWait   = time.Second
	editorChannelMap  = "map"
	editorChannelSess = "session"
)

// editorFrame is every server to client message on /ws/editor.
type editorFrame struct {
	Channel string `json:"channel"`
	Session string `json:"session"`
	Data    any    `json:"data"`
}

// editorSession is the map surface and UI sink of one editing session.
// Frames are queued without blocking; the socket writer drains them. A map
// command that cannot be queued leaves the client's map out of step with the
// route, so the session is marked desynced and the writer ends it.
type editorSession struct {
	id         string
	out        chan []byte
	desync     chan struct{}
	desyncOnce sync.Once
	logger     *slog.Logger
}

func newEditorSession(logger *slog.Logger) *editorSession {
	id := uuid.NewString()
	return &editorSession{
		id:     id,
		out:    make(chan []byte, editorOutboxSize),
		desync: make(chan struct{}),
		logger: logger.With("session_id", id),
	}
}

// Desynced is closed once a map command has been lost.
func (s *editorSession) Desynced() <-chan struct{} { return s.desync }

func (s *editorSession) Apply(cmds ...domain.MapCommand) {
	for _, cmd := range cmds {
		data, err := domain.EncodeMapCommand(cmd)
		if err != nil {
			s.logger.Error("encode map command", "command", cmd.CommandType(), "error", err)
			continue
		}
		s.send(editorChannelMap, json.RawMessage(data))
	}
}

func (s *editorSession) Notify(u domain.SessionUpdate) {
	s.send(editorChannelSess, u)
}

func (s *editorSession) send(channel string, data any) {
	frame, err := json.Marshal(editorFrame{Channel: channel, Session: s.id, Data: data})
	if err != nil {
		s.logger.Error("encode editor frame", "channel", channel, "error", err)
		return
	}
	select {
	case s.out <- frame:
		return
	default:
	}
	if channel != editorChannelMap {
		s.logger.Warn("editor outbox full, frame dropped", "channel", channel)
		return
	}
	s.desyncOnce.Do(func() {
		metrics.EditorDesyncs.Inc()
		s.logger.Warn("editor outbox full, map command lost, ending session")
		close(s.desync)
	})
}

// EditorUpgradeHandler validates an /ws/editor request before the upgrade and
// loads the route named by ?route_id. Without route_id a new route is edited.
func EditorUpgradeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		if deps.Editor.Router == nil || deps.Editor.Geocoder == nil {
			return newError(c, fiber.StatusServiceUnavailable, "EDITOR_UNAVAILABLE", "route editing is not configured")
		}
		if id := c.Query("route_id"); id != "" {
			route, err := deps.Routes.GetByID(c.UserContext(), id)
			if err != nil {
				return errFromDomain(c, err, "route")
			}
			c.Locals(editorRouteLocal, route)
		}
		return c.Next()
	}
}

// EditorSocketHandler runs one editing session per connection. Client frames
// are {"type": ..., "payload": ...} envelopes carrying operator commands or
// map surface events.
func EditorSocketHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		route, _ := c.Locals(editorRouteLocal).(*domain.Route)
		sess := newEditorSession(deps.logger().With("remote_addr", c.RemoteAddr().String()))
		sess.logger.Info("editor session opened", "route_id", routeID(route))
		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		composer := usecases.NewComposer(usecases.ComposerDeps{
			Catalog:      deps.Catalog,
			Surface:      sess,
			Sink:         sess,
			Logger:       sess.logger,
			MaxWaypoints: deps.Editor.MaxWaypoints,
		})
		loop := usecases.NewEditorLoop(usecases.EditorLoopDeps{
			Composer:       composer,
			Router:         deps.Editor.Router,
			Geocoder:       deps.Editor.Geocoder,
			Routes:         deps.Routes,
			Provisioner:    deps.Provisioner,
			Catalog:        deps.Catalog,
			Sink:           sess,
			Logger:         sess.logger,
			ComputeTimeout: deps.Editor.ComputeTimeout,
			InboxSize:      deps.Editor.InboxSize,
		})

		sess.send("hello", fiber.Map{"session": sess.id})

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			if err := loop.Run(ctx, route); err != nil && !errors.Is(err, context.Canceled) {
				sess.logger.Warn("editor loop stopped", "error", err)
			}
		}()

		writerDone := make(chan struct{})
		go func() {
			defer close(writerDone)
			writeEditorFrames(c, sess, loop.Done())
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}
			var env domain.Envelope
			if err := json.Unmarshal(msg, &env); err != nil {
				sess.Notify(domain.SessionUpdate{Kind: domain.UpdateError, Message: "invalid JSON"})
				continue
			}
			cmd, err := decodeEditorCommand(env)
			if err != nil {
				sess.Notify(domain.SessionUpdate{Kind: domain.UpdateError, Message: err.Error()})
				continue
			}
			if err := loop.Submit(ctx, cmd); err != nil {
				break
			}
		}

		cancel()
		<-writerDone
		sess.logger.Info("editor session closed")
	}
}

// writeEditorFrames owns all writes to c. When the session ends it flushes
// queued frames and closes the socket, which unblocks the reader. A desynced
// session is closed at once with 1013 so the client reconnects and receives
// the full route again.
func writeEditorFrames(c *websocket.Conn, sess *editorSession, done <-chan struct{}) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	for {
		select {
		case frame := <-sess.out:
			if err := c.WriteMessage(websocket.TextMessage, frame); err != nil {
				sess.logger.Debug("editor write failed", "error", err)
			}
		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
				sess.logger.Debug("editor ping failed", "error", err)
			}
		case <-sess.Desynced():
			_ = c.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "map out of sync, reconnect"),
				time.Now().Add(editorCloseWait))
			_ = c.Close()
			return
		case <-done:
			for {
				select {
				case frame := <-sess.out:
					_ = c.WriteMessage(websocket.TextMessage, frame)
					continue
				default:
				}
				break
			}
			_ = c.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"),
				time.Now().Add(editorCloseWait))
			_ = c.Close()
			return
		}
	}
}

func routeID(r *domain.Route) string {
	if r == nil {
		return ""
	}
	return r.ID
}

// editorPayload is the union of every command payload field.
type editorPayload struct {
	Name      string              `json:"name"`
	Mode      string              `json:"mode"`
	Slot      string              `json:"slot"`
	Location  domain.Location     `json:"location"`
	GeozoneID string              `json:"geozone_id"`
	Text      string              `json:"text"`
	Index     int                 `json:"index"`
	From      int                 `json:"from"`
	To        int                 `json:"to"`
	Kind      domain.GeometryKind `json:"kind"`
}

// decodeEditorCommand turns a client envelope into a session command.
func decodeEditorCommand(env domain.Envelope) (usecases.Command, error) {
	switch env.Type {
	case "marker_drag_end", "marker_clicked", "shape_updated":
		ev, err := domain.DecodeSurfaceEvent(env)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		return usecases.SurfaceEventCommand{Event: ev}, nil
	case "submit_geofence":
		var form domain.GeofenceDraftForm
		if err := unmarshalPayload(env, &form); err != nil {
			return nil, err
		}
		return usecases.SubmitGeofenceCommand{Form: form}, nil
	}

	var p editorPayload
	if err := unmarshalPayload(env, &p); err != nil {
		return nil, err
	}

	switch env.Type {
	case "set_name":
		return usecases.SetNameCommand{Name: p.Name}, nil
	case "set_travel_mode":
		mode, err := domain.ParseTravelMode(p.Mode)
		if err != nil {
			return nil, err
		}
		return usecases.SetTravelModeCommand{Mode: mode}, nil
	case "set_location":
		slot, err := domain.ParseSlot(p.Slot)
		if err != nil {
			return nil, err
		}
		return usecases.SetLocationCommand{Slot: slot, Location: p.Location}, nil
	case "select_geozone":
		slot, err := domain.ParseSlot(p.Slot)
		if err != nil {
			return nil, err
		}
		if p.GeozoneID == "" {
			return nil, fmt.Errorf("%w: geozone_id is required", domain.ErrValidation)
		}
		return usecases.SelectGeozoneCommand{Slot: slot, GeozoneID: p.GeozoneID}, nil
	case "set_address":
		slot, err := domain.ParseSlot(p.Slot)
		if err != nil {
			return nil, err
		}
		return usecases.SetAddressCommand{Slot: slot, Text: p.Text}, nil
	case "add_waypoint":
		return usecases.AddWaypointCommand{Location: p.Location}, nil
	case "remove_waypoint":
		return usecases.RemoveWaypointCommand{Index: p.Index}, nil
	case "reorder_waypoint":
		return usecases.ReorderWaypointCommand{From: p.From, To: p.To}, nil
	case "select_option":
		return usecases.SelectOptionCommand{Index: p.Index}, nil
	case "recompute":
		return usecases.RecomputeCommand{}, nil
	case "start_drawing":
		if !p.Kind.Valid() {
			return nil, fmt.Errorf("%w: unknown shape kind %q", domain.ErrValidation, p.Kind)
		}
		return usecases.StartDrawingCommand{Kind: p.Kind}, nil
	case "keep_plain":
		return usecases.KeepPlainCommand{}, nil
	case "cancel_drawing":
		return usecases.CancelDrawingCommand{}, nil
	case "save":
		return usecases.SaveCommand{}, nil
	case "cancel":
		return usecases.CancelCommand{}, nil
	}
	return nil, fmt.Errorf("%w: unknown command %q", domain.ErrValidation, env.Type)
}

func unmarshalPayload(env domain.Envelope, v any) error {
	if len(env.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Payload, v); err != nil {
		return fmt.Errorf("%w: decode %s: %v", domain.ErrValidation, env.Type, err)
	}
	return nil
}
