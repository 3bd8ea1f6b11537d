package ports

import (
	"context"
	"errors"

	"github.com/samirrijal/sightseer/internal/core/domain"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is returned when a write is rejected by validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrConflict is returned when a write collides with an existing record.
	ErrConflict = errors.New("conflict")
)

// StationRepository persists stations and their points of interest.
type StationRepository interface {
	Create(ctx context.Context, station *domain.Station) error
	GetByID(ctx context.Context, id string) (*domain.Station, error)
	GetByIDs(ctx context.Context, ids []string) ([]domain.Station, error)
	List(ctx context.Context) ([]domain.Station, error)
	// WithinBounds returns active stations inside the bounding box.
	WithinBounds(ctx context.Context, minLat, minLon, maxLat, maxLon float64) ([]domain.Station, error)
	PointsOfInterest(ctx context.Context, stationID string) ([]domain.PointOfInterest, error)
}

// RouteRepository persists routes.
type RouteRepository interface {
	Create(ctx context.Context, route *domain.Route) error
	GetByID(ctx context.Context, id string) (*domain.Route, error)
	ListByTour(ctx context.Context, tourID string) ([]domain.Route, error)
}

// SegmentRepository persists route segments.
type SegmentRepository interface {
	// ListByRoute returns the segments of a route in storage order, which is
	// not guaranteed to be driving order.
	ListByRoute(ctx context.Context, routeID string) ([]domain.Segment, error)
	// ReplaceForRoute swaps the segments of a route atomically.
	ReplaceForRoute(ctx context.Context, routeID string, segments []domain.Segment) error
	GetByID(ctx context.Context, id string) (*domain.Segment, error)
	Delete(ctx context.Context, id string) error
}

// TourRepository persists tours and their schedules.
type TourRepository interface {
	Create(ctx context.Context, tour *domain.Tour) error
	GetBySlug(ctx context.Context, slug string) (*domain.Tour, error)
	List(ctx context.Context) ([]domain.Tour, error)
	UpcomingSchedules(ctx context.Context, tourID string, limit int) ([]domain.Schedule, error)
}

// BusRepository persists the bus fleet.
type BusRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Bus, error)
	List(ctx context.Context) ([]domain.Bus, error)
}
