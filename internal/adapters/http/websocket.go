package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/KRVIMAL/routeye-sub001/internal/adapters/nats"
	"github.com/KRVIMAL/routeye-sub001/internal/pkg/metrics"
)

const wsPingInterval = 30 * time.Second

// wsMessage is a client request on the event relay socket.
type wsMessage struct {
	Action  string `json:"action"`   // subscribe | unsubscribe
	Channel string `json:"channel"`  // routes (default) | geozones | broadcast
	RouteID string `json:"route_id"` // routes only; empty means every route
}

// wsReply acknowledges a wsMessage.
type wsReply struct {
	Status  string `json:"status,omitempty"`
	Subject string `json:"subject,omitempty"`
	Error   string `json:"error,omitempty"`
}

// relaySubject maps a subscription request to a NATS subject.
func relaySubject(m wsMessage) (string, bool) {
	switch m.Channel {
	case "", "routes":
		if m.RouteID != "" {
			return natsadapter.SubjectRouteEventsFor(m.RouteID), true
		}
		return natsadapter.SubjectRouteEvents, true
	case "geozones":
		return natsadapter.SubjectGeozoneCreatedAll, true
	case "broadcast":
		return natsadapter.SubjectBroadcast, true
	}
	return "", false
}

// eventRelay forwards NATS messages to one websocket client.
type eventRelay struct {
	conn *websocket.Conn
	nc   *nats.Conn

	writeMu sync.Mutex
	subs    map[string]*nats.Subscription
}

func (r *eventRelay) write(messageType int, data []byte) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	return r.conn.WriteMessage(messageType, data)
}

func (r *eventRelay) reply(v wsReply) {
	data, _ := json.Marshal(v)
	_ = r.write(websocket.TextMessage, data)
}

func (r *eventRelay) subscribe(subject string) wsReply {
	if _, ok := r.subs[subject]; ok {
		return wsReply{Status: "already subscribed", Subject: subject}
	}
	s, err := r.nc.Subscribe(subject, func(msg *nats.Msg) {
		_ = r.write(websocket.TextMessage, msg.Data)
	})
	if err != nil {
		return wsReply{Error: "subscribe failed: " + err.Error(), Subject: subject}
	}
	r.subs[subject] = s
	return wsReply{Status: "subscribed", Subject: subject}
}

func (r *eventRelay) unsubscribe(subject string) wsReply {
	s, ok := r.subs[subject]
	if !ok {
		return wsReply{Error: "not subscribed", Subject: subject}
	}
	_ = s.Unsubscribe()
	delete(r.subs, subject)
	return wsReply{Status: "unsubscribed", Subject: subject}
}

func (r *eventRelay) handle(m wsMessage) wsReply {
	subject, ok := relaySubject(m)
	if !ok {
		return wsReply{Error: "unknown channel: " + m.Channel}
	}
	switch m.Action {
	case "subscribe":
		return r.subscribe(subject)
	case "unsubscribe":
		return r.unsubscribe(subject)
	}
	return wsReply{Error: "unknown action: " + m.Action}
}

func (r *eventRelay) keepAlive(stop <-chan struct{}) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := r.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (r *eventRelay) close() {
	for _, s := range r.subs {
		_ = s.Unsubscribe()
	}
	r.subs = nil
}

// WebSocketHandler relays route and geozone events from NATS to a client.
// Every client starts subscribed to all route events and may narrow or
// widen that with {"action":"subscribe","channel":"routes","route_id":"..."}.
func WebSocketHandler(nc *nats.Conn, logger *slog.Logger) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		log := logger.With("remote_addr", c.RemoteAddr().String())
		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		relay := &eventRelay{conn: c, nc: nc, subs: make(map[string]*nats.Subscription)}
		defer relay.close()

		if rep := relay.subscribe(natsadapter.SubjectRouteEvents); rep.Error != "" {
			log.Error("event relay default subscription failed", "error", rep.Error)
			return
		}
		log.Info("event relay client connected")

		stop := make(chan struct{})
		defer close(stop)
		go relay.keepAlive(stop)

		for {
			_, raw, err := c.ReadMessage()
			if err != nil {
				log.Info("event relay client disconnected", "reason", err)
				return
			}
			var m wsMessage
			if err := json.Unmarshal(raw, &m); err != nil {
				relay.reply(wsReply{Error: "invalid JSON"})
				continue
			}
			relay.reply(relay.handle(m))
		}
	}
}
