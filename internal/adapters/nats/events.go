package natsadapter

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samirrijal/sightseer/internal/core/domain"
)

const (
	// RouteStream holds every route event.
	RouteStream = "ROUTE_EVENTS"
	// RouteSubjects matches all route event subjects.
	RouteSubjects = "tour.route.>"

	routeSubjectPrefix = "tour.route."
)

// RouteSubject returns the subject for an event about routeID, e.g.
// tour.route.updated.<id>.
func RouteSubject(t domain.RouteEventType, routeID string) string {
	var kind string
	switch t {
	case domain.SegmentDeleted:
		kind = "segment_deleted"
	default:
		kind = "updated"
	}
	return routeSubjectPrefix + kind + "." + routeID
}

// DecodeRouteEvent parses a message published on a route subject. The route
// id falls back to the last subject token when the payload omits it.
func DecodeRouteEvent(subject string, data []byte) (domain.RouteEvent, error) {
	var ev domain.RouteEvent
	if len(data) > 0 {
		if err := json.Unmarshal(data, &ev); err != nil {
			return ev, fmt.Errorf("decode route event: %w", err)
		}
	}
	if ev.RouteID == "" {
		if !strings.HasPrefix(subject, routeSubjectPrefix) {
			return ev, fmt.Errorf("subject %q is not a route subject", subject)
		}
		ev.RouteID = subject[strings.LastIndex(subject, ".")+1:]
	}
	if ev.Type == "" {
		ev.Type = domain.RouteUpdated
	}
	return ev, nil
}
