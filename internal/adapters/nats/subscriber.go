package natsadapter

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
)

// CacheWarmerDurable is the durable consumer name of the chain cache warmer.
const CacheWarmerDurable = "route-cache-warmer"

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
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	if err := EnsureStream(js); err != nil {
		conn.Close()
		return nil, err
	}
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeRouteUpdates calls handler with the route id of every route event.
// Messages are redelivered up to three times when handler fails.
func (s *Subscriber) SubscribeRouteUpdates(ctx context.Context, handler func(ctx context.Context, routeID string) error) error {
	sub, err := s.js.Subscribe(RouteSubjects, func(msg *nats.Msg) {
		ev, err := DecodeRouteEvent(msg.Subject, msg.Data)
		if err != nil {
			_ = msg.Term()
			return
		}
		if err := handler(ctx, ev.RouteID); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable(CacheWarmerDurable),
		nats.ManualAck(),
		nats.MaxDeliver(3),
		nats.DeliverNew(),
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
