package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/samirrijal/sightseer/internal/core/domain"
	"github.com/samirrijal/sightseer/internal/core/ports"
	"github.com/samirrijal/sightseer/internal/pkg/logging"
	"github.com/samirrijal/sightseer/internal/pkg/metrics"
	"github.com/samirrijal/sightseer/internal/pkg/routechain"
	"github.com/samirrijal/sightseer/internal/pkg/telemetry"
)

// ErrIncompleteChain is returned when a segment set does not form a single
// path from the route's start station.
var ErrIncompleteChain = errors.New("segments do not form a complete chain")

// SegmentService handles writes to route segments.
type SegmentService struct {
	routes    ports.RouteRepository
	segments  ports.SegmentRepository
	stations  ports.StationRepository
	chains    *RouteService
	publisher ports.EventPublisher
}

// NewSegmentService creates a new SegmentService. publisher may be nil.
func NewSegmentService(
	routes ports.RouteRepository,
	segments ports.SegmentRepository,
	stations ports.StationRepository,
	chains *RouteService,
	publisher ports.EventPublisher,
) *SegmentService {
	return &SegmentService{
		routes:    routes,
		segments:  segments,
		stations:  stations,
		chains:    chains,
		publisher: publisher,
	}
}

// ListByRoute returns a route's segments in storage order.
func (s *SegmentService) ListByRoute(ctx context.Context, routeID string) ([]domain.Segment, error) {
	if _, err := s.routes.GetByID(ctx, routeID); err != nil {
		return nil, err
	}
	return s.segments.ListByRoute(ctx, routeID)
}

// Prepare checks a candidate segment set for a route and returns it in
// driving order with ids, route and sequence filled in.
func (s *SegmentService) Prepare(ctx context.Context, routeID string, segs []domain.Segment) ([]domain.Segment, error) {
	route, err := s.routes.GetByID(ctx, routeID)
	if err != nil {
		return nil, err
	}
	if len(segs) == 0 {
		return nil, fmt.Errorf("at least one segment is required: %w", ports.ErrInvalidInput)
	}

	prepared := make([]domain.Segment, len(segs))
	for i, seg := range segs {
		if seg.ID == "" {
			seg.ID = uuid.NewString()
		}
		if seg.Status == "" {
			seg.Status = domain.SegmentActive
		}
		seg.RouteID = routeID
		prepared[i] = seg
	}

	if err := routechain.Validate(prepared); err != nil {
		return nil, fmt.Errorf("%w: %w", ports.ErrInvalidInput, err)
	}

	res := routechain.Resolve(prepared, route.StartStationID)
	if !res.Complete() {
		return nil, fmt.Errorf("%w: %s, %d unreached: %w", ErrIncompleteChain, res.Outcome, res.Unreached, ports.ErrInvalidInput)
	}

	ids := routechain.Stations(res.Links)
	found, err := s.stations.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load stations: %w", err)
	}
	if len(found) != len(uniqueStrings(ids)) {
		return nil, fmt.Errorf("segments reference unknown stations: %w", ports.ErrInvalidInput)
	}

	ordered := res.Links
	for i := range ordered {
		ordered[i].Sequence = i
	}
	return ordered, nil
}

// Store swaps the stored segments of a route and returns the previous set.
func (s *SegmentService) Store(ctx context.Context, routeID string, segs []domain.Segment) ([]domain.Segment, error) {
	previous, err := s.segments.ListByRoute(ctx, routeID)
	if err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}
	if err := s.segments.ReplaceForRoute(ctx, routeID, segs); err != nil {
		return nil, fmt.Errorf("replace segments: %w", err)
	}
	if err := s.chains.InvalidateChain(ctx, routeID); err != nil {
		logging.FromContext(ctx).Warn("chain cache invalidation failed", "route_id", routeID, "error", err)
	}
	return previous, nil
}

// ReplaceRouteSegments validates and stores a full segment set for a route,
// then announces the change.
func (s *SegmentService) ReplaceRouteSegments(ctx context.Context, routeID string, segs []domain.Segment) ([]domain.Segment, error) {
	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanSegmentReplace,
		telemetry.AttrRouteID.String(routeID),
		telemetry.AttrSegments.Int(len(segs)),
	)
	defer span.End()

	ordered, err := s.Prepare(ctx, routeID, segs)
	if err != nil {
		metrics.RouteImports.WithLabelValues("rejected").Inc()
		return nil, err
	}
	if _, err := s.Store(ctx, routeID, ordered); err != nil {
		metrics.RouteImports.WithLabelValues("failed").Inc()
		return nil, err
	}
	metrics.RouteImports.WithLabelValues("stored").Inc()

	if s.publisher != nil {
		if err := s.publisher.PublishRouteUpdated(ctx, routeID); err != nil {
			logging.FromContext(ctx).Warn("publish route update failed", "route_id", routeID, "error", err)
		}
	}
	return ordered, nil
}

// Delete removes a single segment. The route's chain may become incomplete.
func (s *SegmentService) Delete(ctx context.Context, id string) error {
	seg, err := s.segments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.segments.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.chains.InvalidateChain(ctx, seg.RouteID); err != nil {
		logging.FromContext(ctx).Warn("chain cache invalidation failed", "route_id", seg.RouteID, "error", err)
	}
	if s.publisher != nil {
		if err := s.publisher.PublishSegmentDeleted(ctx, seg.RouteID, id); err != nil {
			logging.FromContext(ctx).Warn("publish segment deletion failed", "segment_id", id, "error", err)
		}
	}
	return nil
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
