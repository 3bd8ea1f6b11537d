package workflows

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/samirrijal/sightseer/internal/core/domain"
	"github.com/samirrijal/sightseer/internal/core/ports"
	"github.com/samirrijal/sightseer/internal/core/usecases"
	"github.com/samirrijal/sightseer/internal/pkg/telemetry"
)

// ErrTypeRejected marks activity errors that retrying cannot fix.
const ErrTypeRejected = "RouteImportRejected"

// ImportActivities holds the activity implementations for the route-import workflow.
type ImportActivities struct {
	Segments  *usecases.SegmentService
	Routes    *usecases.RouteService
	Publisher ports.EventPublisher
}

// ValidateSegments checks the segment set and returns it in driving order.
// Validation failures are not retried.
func (a *ImportActivities) ValidateSegments(ctx context.Context, routeID string, segs []domain.Segment) ([]domain.Segment, error) {
	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanImportActivity, telemetry.AttrRouteID.String(routeID))
	defer span.End()

	ordered, err := a.Segments.Prepare(ctx, routeID, segs)
	if err != nil {
		if errors.Is(err, ports.ErrInvalidInput) || errors.Is(err, ports.ErrNotFound) {
			return nil, temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeRejected, err)
		}
		return nil, fmt.Errorf("prepare segments: %w", err)
	}
	return ordered, nil
}

// StoreSegments replaces the route's segments and returns the previous set.
func (a *ImportActivities) StoreSegments(ctx context.Context, routeID string, segs []domain.Segment) ([]domain.Segment, error) {
	previous, err := a.Segments.Store(ctx, routeID, segs)
	if err != nil {
		return nil, err
	}
	activity.GetLogger(ctx).Info("segments stored", "route_id", routeID, "segments", len(segs), "previous", len(previous))
	return previous, nil
}

// WarmChain rebuilds the route's chain so the next read is served from cache.
func (a *ImportActivities) WarmChain(ctx context.Context, routeID string) (string, error) {
	chain, err := a.Routes.BuildChain(ctx, routeID)
	if err != nil {
		return "", fmt.Errorf("build chain: %w", err)
	}
	return chain.Outcome, nil
}

// PublishRouteUpdated announces the new segment set.
func (a *ImportActivities) PublishRouteUpdated(ctx context.Context, routeID string) error {
	if a.Publisher == nil {
		activity.GetLogger(ctx).Warn("no publisher configured, route update not announced", "route_id", routeID)
		return nil
	}
	return a.Publisher.PublishRouteUpdated(ctx, routeID)
}

// RestoreSegments puts back the segment set that was replaced (saga compensation).
func (a *ImportActivities) RestoreSegments(ctx context.Context, routeID string, previous []domain.Segment) error {
	if _, err := a.Segments.Store(ctx, routeID, previous); err != nil {
		return fmt.Errorf("restore segments of route %s: %w", routeID, err)
	}
	activity.GetLogger(ctx).Info("segments restored", "route_id", routeID, "segments", len(previous))
	return nil
}
