package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/KRVIMAL/routeye-sub001/internal/core/domain"
)

// RouteDeletedEvent is the payload published when a route is removed.
type RouteDeletedEvent struct {
	ID string `json:"id"`
}

// Publisher publishes route and geozone lifecycle events to JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects and makes sure the event streams exist.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	if err := ensureStreams(js); err != nil {
		conn.Close()
		return nil, err
	}
	return &Publisher{conn: conn, js: js}, nil
}

// publish sends v as JSON. msgID lets JetStream drop retried duplicates
// inside the dedup window. Subjects outside every stream go over core NATS.
func (p *Publisher) publish(ctx context.Context, subject, msgID string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", subject, err)
	}
	if streamFor(subject) == "" {
		return p.conn.Publish(subject, data)
	}
	if _, err := p.js.Publish(subject, data, nats.Context(ctx), nats.MsgId(msgID)); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

func (p *Publisher) PublishRouteSaved(ctx context.Context, r *domain.Route) error {
	return p.publish(ctx, SubjectRouteSaved(r.ID), revisionID("route.saved", r.ID, r.UpdatedAt), r)
}

func (p *Publisher) PublishRouteDeleted(ctx context.Context, id string) error {
	return p.publish(ctx, SubjectRouteDeleted(id), "route.deleted."+id, RouteDeletedEvent{ID: id})
}

func (p *Publisher) PublishGeozoneCreated(ctx context.Context, gz *domain.Geozone) error {
	return p.publish(ctx, SubjectGeozoneCreated(gz.ID), "geozone.created."+gz.ID, gz)
}

// PublishBroadcast is core NATS, not persisted.
func (p *Publisher) PublishBroadcast(ctx context.Context, data []byte) error {
	return p.conn.Publish(SubjectBroadcast, data)
}

// Conn exposes the underlying connection for health checks.
func (p *Publisher) Conn() *nats.Conn { return p.conn }

// Close flushes pending publishes and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

func revisionID(kind, id string, at time.Time) string {
	return kind + "." + id + "." + strconv.FormatInt(at.UnixNano(), 36)
}

// RawConn opens a core NATS connection that keeps reconnecting forever.
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("routeye"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
