package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/samirrijal/sightseer/internal/core/domain"
	"github.com/samirrijal/sightseer/internal/core/ports"
	"github.com/samirrijal/sightseer/internal/pkg/geospatial"
)

const (
	maxNearbyRadius = 5000.0
	maxNearbyLimit  = 50
)

// StationService handles station-related business logic.
type StationService struct {
	stations ports.StationRepository
	cache    ports.CacheService
}

// NewStationService creates a new StationService.
func NewStationService(stations ports.StationRepository, cache ports.CacheService) *StationService {
	return &StationService{stations: stations, cache: cache}
}

// List returns all stations.
func (s *StationService) List(ctx context.Context) ([]domain.Station, error) {
	return s.stations.List(ctx)
}

// GetByID returns a single station.
func (s *StationService) GetByID(ctx context.Context, id string) (*domain.Station, error) {
	cacheKey := "stations:id:" + id
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var st domain.Station
			if err := json.Unmarshal(data, &st); err == nil {
				return &st, nil
			}
		}
	}

	st, err := s.stations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(st); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 600)
		}
	}

	return st, nil
}

// Create stores a new station.
func (s *StationService) Create(ctx context.Context, st *domain.Station) error {
	st.Code = strings.TrimSpace(st.Code)
	st.Name = strings.TrimSpace(st.Name)
	if st.Code == "" || st.Name == "" {
		return fmt.Errorf("code and name are required: %w", ports.ErrInvalidInput)
	}
	if !st.Location.Valid() {
		return fmt.Errorf("location out of range: %w", ports.ErrInvalidInput)
	}
	return s.stations.Create(ctx, st)
}

// Nearby returns active stations within radiusMeters of the point, closest
// first.
func (s *StationService) Nearby(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]domain.Station, error) {
	if !(domain.GeoPoint{Lat: lat, Lon: lon}).Valid() {
		return nil, fmt.Errorf("coordinates out of range: %w", ports.ErrInvalidInput)
	}
	if radiusMeters <= 0 || radiusMeters > maxNearbyRadius {
		radiusMeters = maxNearbyRadius
	}
	if limit <= 0 || limit > maxNearbyLimit {
		limit = maxNearbyLimit
	}

	minLat, minLon, maxLat, maxLon := geospatial.BoundingBox(lat, lon, radiusMeters)
	candidates, err := s.stations.WithinBounds(ctx, minLat, minLon, maxLat, maxLon)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Station, 0, len(candidates))
	for _, st := range candidates {
		d := geospatial.Haversine(lat, lon, st.Location.Lat, st.Location.Lon)
		if d > radiusMeters {
			continue
		}
		st.Distance = &d
		out = append(out, st)
	}
	sort.SliceStable(out, func(i, j int) bool { return *out[i].Distance < *out[j].Distance })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// PointsOfInterest returns the sights reachable from a station.
func (s *StationService) PointsOfInterest(ctx context.Context, stationID string) ([]domain.PointOfInterest, error) {
	if _, err := s.stations.GetByID(ctx, stationID); err != nil {
		return nil, err
	}
	return s.stations.PointsOfInterest(ctx, stationID)
}
