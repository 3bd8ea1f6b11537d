package http

import (
	"context"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/sightseer/internal/core/usecases"
)

// Pinger is a dependency that can report its health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Stations *usecases.StationService
	Routes   *usecases.RouteService
	Segments *usecases.SegmentService
	Tours    *usecases.TourService
	Buses    *usecases.BusService

	// NATS feeds the WebSocket relay; nil disables /ws subscriptions.
	NATS *nats.Conn

	// Readiness probes; nil means not configured.
	DB     Pinger
	Broker Pinger
	Cache  Pinger

	Options Options
}
