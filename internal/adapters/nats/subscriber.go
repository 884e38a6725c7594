package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/KRVIMAL/routeye-sub001/internal/core/domain"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber with its own NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeGeozoneCreated delivers every new geozone to handler. The
// consumer is ephemeral so that each API replica sees every event and can
// refresh its own catalog.
func (s *Subscriber) SubscribeGeozoneCreated(ctx context.Context, handler func(ctx context.Context, gz *domain.Geozone) error) error {
	sub, err := s.js.Subscribe(SubjectGeozoneCreatedAll, func(msg *nats.Msg) {
		var gz domain.Geozone
		if err := json.Unmarshal(msg.Data, &gz); err != nil {
			// Redelivery cannot fix a malformed payload.
			_ = msg.Term()
			return
		}
		if err := handler(ctx, &gz); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.DeliverNew(),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
