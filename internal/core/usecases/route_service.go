package usecases

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/samirrijal/sightseer/internal/core/domain"
	"github.com/samirrijal/sightseer/internal/core/ports"
	"github.com/samirrijal/sightseer/internal/pkg/geospatial"
	"github.com/samirrijal/sightseer/internal/pkg/logging"
	"github.com/samirrijal/sightseer/internal/pkg/metrics"
	"github.com/samirrijal/sightseer/internal/pkg/routechain"
	"github.com/samirrijal/sightseer/internal/pkg/telemetry"
)

// DefaultChainTTL is used when no chain TTL is configured (seconds).
const DefaultChainTTL = 600

// RouteService handles route-related business logic.
type RouteService struct {
	routes   ports.RouteRepository
	segments ports.SegmentRepository
	stations ports.StationRepository
	cache    ports.CacheService
	chainTTL int
}

// NewRouteService creates a new RouteService. cache may be nil.
func NewRouteService(
	routes ports.RouteRepository,
	segments ports.SegmentRepository,
	stations ports.StationRepository,
	cache ports.CacheService,
	chainTTL int,
) *RouteService {
	if chainTTL <= 0 {
		chainTTL = DefaultChainTTL
	}
	return &RouteService{
		routes:   routes,
		segments: segments,
		stations: stations,
		cache:    cache,
		chainTTL: chainTTL,
	}
}

// GetByID returns a route by its UUID.
func (s *RouteService) GetByID(ctx context.Context, id string) (*domain.Route, error) {
	return s.routes.GetByID(ctx, id)
}

// ListByTour returns all routes driven by a tour.
func (s *RouteService) ListByTour(ctx context.Context, tourID string) ([]domain.Route, error) {
	return s.routes.ListByTour(ctx, tourID)
}

// Create stores a new route. The start station must exist.
func (s *RouteService) Create(ctx context.Context, route *domain.Route) error {
	if route.Name == "" {
		return fmt.Errorf("route name is required: %w", ports.ErrInvalidInput)
	}
	if route.TourID == "" || route.StartStationID == "" {
		return fmt.Errorf("tour_id and start_station_id are required: %w", ports.ErrInvalidInput)
	}
	if _, err := s.stations.GetByID(ctx, route.StartStationID); err != nil {
		return fmt.Errorf("start station %s: %w", route.StartStationID, err)
	}
	return s.routes.Create(ctx, route)
}

// Chain returns the route's segments in driving order, served from cache
// when possible.
func (s *RouteService) Chain(ctx context.Context, routeID string) (*domain.RouteChain, error) {
	gen := s.generation(ctx, routeID)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, chainCacheKey(routeID, gen)); err == nil {
			var chain domain.RouteChain
			if err := json.Unmarshal(data, &chain); err == nil {
				metrics.CacheHits.WithLabelValues("route_chain").Inc()
				return &chain, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("route_chain").Inc()
	}

	return s.buildChain(ctx, routeID, gen)
}

// BuildChain rebuilds the chain from storage and refreshes the cache.
func (s *RouteService) BuildChain(ctx context.Context, routeID string) (*domain.RouteChain, error) {
	return s.buildChain(ctx, routeID, s.generation(ctx, routeID))
}

// buildChain caches the result under gen, which must be read before the
// segments are loaded. A write that lands in between bumps the generation, so
// the stale chain is stored under a key no reader asks for.
func (s *RouteService) buildChain(ctx context.Context, routeID, gen string) (*domain.RouteChain, error) {
	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanRouteChain, telemetry.AttrRouteID.String(routeID))
	defer span.End()

	route, err := s.routes.GetByID(ctx, routeID)
	if err != nil {
		return nil, err
	}

	segments, err := s.segments.ListByRoute(ctx, routeID)
	if err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}

	res := routechain.Resolve(segments, route.StartStationID)
	span.SetAttributes(
		telemetry.AttrOutcome.String(string(res.Outcome)),
		telemetry.AttrSegments.Int(len(segments)),
	)
	metrics.ChainBuilds.WithLabelValues(string(res.Outcome)).Inc()
	metrics.ChainLength.Observe(float64(len(res.Links)))

	if !res.Complete() && res.Outcome != routechain.OutcomeEmptyInput {
		logging.FromContext(ctx).Warn("route chain incomplete",
			"route_id", routeID,
			"outcome", res.Outcome,
			"segments", len(segments),
			"unreached", res.Unreached,
		)
	}

	chain := &domain.RouteChain{
		Route:     route,
		Segments:  res.Links,
		Stations:  routechain.Stations(res.Links),
		Outcome:   string(res.Outcome),
		Complete:  res.Complete(),
		Unreached: res.Unreached,
	}

	stations, err := s.stationIndex(ctx, chain.Stations)
	if err != nil {
		return nil, err
	}
	chain.Path = assemblePath(res.Links, stations)
	if chain.Path != nil {
		pts := make([][2]float64, 0, len(chain.Path.Coordinates))
		for _, p := range chain.Path.Coordinates {
			pts = append(pts, [2]float64{p.Lat, p.Lon})
		}
		chain.LengthMeters = geospatial.PathLength(pts)
	}

	if s.cache != nil {
		if data, err := json.Marshal(chain); err == nil {
			_ = s.cache.Set(ctx, chainCacheKey(routeID, gen), data, s.chainTTL)
		}
	}

	return chain, nil
}

// InvalidateChain moves the route to a new cache generation and drops the
// chain cached under the previous one. Call it after the segments are written.
func (s *RouteService) InvalidateChain(ctx context.Context, routeID string) error {
	if s.cache == nil {
		return nil
	}
	prev := s.generation(ctx, routeID)
	if err := s.cache.Set(ctx, chainGenKey(routeID), []byte(uuid.NewString()), 0); err != nil {
		return fmt.Errorf("bump chain generation: %w", err)
	}
	return s.cache.Delete(ctx, chainCacheKey(routeID, prev))
}

// generation returns the route's current cache generation, "0" when none
// has been recorded.
func (s *RouteService) generation(ctx context.Context, routeID string) string {
	if s.cache == nil {
		return "0"
	}
	data, err := s.cache.Get(ctx, chainGenKey(routeID))
	if err != nil || len(data) == 0 {
		return "0"
	}
	return string(data)
}

// Stops returns the stations of a route in the order they are visited.
func (s *RouteService) Stops(ctx context.Context, routeID string) ([]domain.Station, error) {
	chain, err := s.Chain(ctx, routeID)
	if err != nil {
		return nil, err
	}

	index, err := s.stationIndex(ctx, chain.Stations)
	if err != nil {
		return nil, err
	}

	stops := make([]domain.Station, 0, len(chain.Stations))
	for _, id := range chain.Stations {
		if st, ok := index[id]; ok {
			stops = append(stops, st)
		}
	}
	return stops, nil
}

func (s *RouteService) stationIndex(ctx context.Context, ids []string) (map[string]domain.Station, error) {
	index := make(map[string]domain.Station, len(ids))
	if len(ids) == 0 {
		return index, nil
	}
	stations, err := s.stations.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load stations: %w", err)
	}
	for _, st := range stations {
		index[st.ID] = st
	}
	return index, nil
}

// assemblePath joins segment geometries into one line. Segments without
// geometry contribute a straight line between their stations.
func assemblePath(chain []domain.Segment, stations map[string]domain.Station) *domain.GeoLineString {
	if len(chain) == 0 {
		return nil
	}

	var coords []domain.GeoPoint
	add := func(p domain.GeoPoint) {
		if n := len(coords); n > 0 && coords[n-1] == p {
			return
		}
		coords = append(coords, p)
	}

	for _, seg := range chain {
		if seg.Geometry != nil && len(seg.Geometry.Coordinates) > 0 {
			for _, p := range seg.Geometry.Coordinates {
				add(p)
			}
			continue
		}
		if from, ok := stations[seg.DepartureStationID]; ok {
			add(from.Location)
		}
		if to, ok := stations[seg.EndStationID]; ok {
			add(to.Location)
		}
	}

	if len(coords) == 0 {
		return nil
	}
	return &domain.GeoLineString{Coordinates: coords}
}

func chainCacheKey(routeID, gen string) string {
	return "routes:chain:" + routeID + ":" + gen
}

func chainGenKey(routeID string) string {
	return "routes:chaingen:" + routeID
}
