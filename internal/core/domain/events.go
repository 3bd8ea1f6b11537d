package domain

import "time"

// RouteEventType names a change to a route's segments.
type RouteEventType string

const (
	RouteUpdated   RouteEventType = "route.updated"
	SegmentDeleted RouteEventType = "segment.deleted"
)

// RouteEvent is broadcast whenever the stored segments of a route change.
type RouteEvent struct {
	Type       RouteEventType `json:"type"`
	RouteID    string         `json:"route_id"`
	SegmentID  string         `json:"segment_id,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}
