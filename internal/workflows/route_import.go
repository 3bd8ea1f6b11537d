package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/sightseer/internal/core/domain"
)

// RouteImportInput is the input for the route-import workflow.
type RouteImportInput struct {
	RouteID  string
	Segments []domain.Segment
}

// RouteImportResult reports what the workflow stored.
type RouteImportResult struct {
	RouteID  string
	Segments int
	Outcome  string
}

// WorkflowID returns the workflow id for importing a route. One import per
// route runs at a time.
func WorkflowID(routeID string) string {
	return "route-import-" + routeID
}

// RouteImportWorkflow validates a segment set, stores it, warms the chain cache
// and announces the update. If the announcement fails, the previous segments are
// restored (saga compensation).
func RouteImportWorkflow(ctx workflow.Context, input RouteImportInput) (*RouteImportResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting route import", "route_id", input.RouteID, "segments", len(input.Segments))

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts:        3,
			NonRetryableErrorTypes: []string{ErrTypeRejected},
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	var a *ImportActivities

	// Step 1: Validate and order
	var ordered []domain.Segment
	if err := workflow.ExecuteActivity(ctx, a.ValidateSegments, input.RouteID, input.Segments).Get(ctx, &ordered); err != nil {
		return nil, err
	}

	// Step 2: Store, keeping the previous set for rollback
	var previous []domain.Segment
	if err := workflow.ExecuteActivity(ctx, a.StoreSegments, input.RouteID, ordered).Get(ctx, &previous); err != nil {
		return nil, err
	}

	// Step 3: Warm the chain cache. A cold cache only costs a rebuild on read.
	var outcome string
	if err := workflow.ExecuteActivity(ctx, a.WarmChain, input.RouteID).Get(ctx, &outcome); err != nil {
		logger.Warn("chain warm-up failed", "route_id", input.RouteID, "error", err)
	}

	// Step 4: Announce
	if err := workflow.ExecuteActivity(ctx, a.PublishRouteUpdated, input.RouteID).Get(ctx, nil); err != nil {
		logger.Warn("publish failed, restoring previous segments", "route_id", input.RouteID, "error", err)
		if rerr := workflow.ExecuteActivity(ctx, a.RestoreSegments, input.RouteID, previous).Get(ctx, nil); rerr != nil {
			logger.Error("restore failed", "route_id", input.RouteID, "error", rerr)
		}
		return nil, err
	}

	logger.Info("Route import finished", "route_id", input.RouteID, "outcome", outcome)
	return &RouteImportResult{RouteID: input.RouteID, Segments: len(ordered), Outcome: outcome}, nil
}
