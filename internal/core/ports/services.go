package ports

import (
	"context"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishRouteUpdated(ctx context.Context, routeID string) error
	PublishSegmentDeleted(ctx context.Context, routeID, segmentID string) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeRouteUpdates(ctx context.Context, handler func(ctx context.Context, routeID string) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
