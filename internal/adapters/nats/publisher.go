package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/sightseer/internal/core/domain"
	"github.com/samirrijal/sightseer/internal/pkg/metrics"
)

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	now  func() time.Time
}

// NewPublisher connects to NATS and ensures the route event stream exists.
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

	if err := EnsureStream(js); err != nil {
		conn.Close()
		return nil, err
	}

	return &Publisher{conn: conn, js: js, now: time.Now}, nil
}

// EnsureStream creates or updates the route event stream.
func EnsureStream(js nats.JetStreamContext) error {
	cfg := &nats.StreamConfig{
		Name:      RouteStream,
		Subjects:  []string{RouteSubjects},
		Retention: nats.LimitsPolicy,
		MaxAge:    24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(cfg); err != nil {
		// Stream may already exist, try update
		if _, err := js.UpdateStream(cfg); err != nil {
			return fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}
	return nil
}

func (p *Publisher) PublishRouteUpdated(ctx context.Context, routeID string) error {
	return p.publish(ctx, domain.RouteEvent{Type: domain.RouteUpdated, RouteID: routeID})
}

func (p *Publisher) PublishSegmentDeleted(ctx context.Context, routeID, segmentID string) error {
	return p.publish(ctx, domain.RouteEvent{Type: domain.SegmentDeleted, RouteID: routeID, SegmentID: segmentID})
}

func (p *Publisher) publish(ctx context.Context, ev domain.RouteEvent) error {
	ev.OccurredAt = p.now().UTC()
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := p.js.Publish(RouteSubject(ev.Type, ev.RouteID), data, nats.Context(ctx)); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	metrics.RouteEventsPublished.WithLabelValues(string(ev.Type)).Inc()
	return nil
}

// Ping reports whether the connection is up.
func (p *Publisher) Ping(ctx context.Context) error {
	if !p.conn.IsConnected() {
		return fmt.Errorf("nats not connected: %s", p.conn.Status())
	}
	return nil
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
