package usecases

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/samirrijal/sightseer/internal/core/domain"
	"github.com/samirrijal/sightseer/internal/core/ports"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// TourService handles tour-related business logic.
type TourService struct {
	tours ports.TourRepository
}

// NewTourService creates a new TourService.
func NewTourService(tours ports.TourRepository) *TourService {
	return &TourService{tours: tours}
}

// List returns all tours.
func (s *TourService) List(ctx context.Context) ([]domain.Tour, error) {
	return s.tours.List(ctx)
}

// GetBySlug returns a tour by slug.
func (s *TourService) GetBySlug(ctx context.Context, slug string) (*domain.Tour, error) {
	return s.tours.GetBySlug(ctx, slug)
}

// Create stores a new tour after checking slug, price and currency. An empty
// slug is derived from the name.
func (s *TourService) Create(ctx context.Context, tour *domain.Tour) error {
	tour.Slug = strings.ToLower(strings.TrimSpace(tour.Slug))
	if tour.Slug == "" {
		tour.Slug = Slugify(tour.Name)
	}
	tour.Currency = strings.ToUpper(strings.TrimSpace(tour.Currency))

	switch {
	case !slugPattern.MatchString(tour.Slug):
		return fmt.Errorf("slug %q must be lowercase words joined by dashes: %w", tour.Slug, ports.ErrInvalidInput)
	case strings.TrimSpace(tour.Name) == "":
		return fmt.Errorf("name is required: %w", ports.ErrInvalidInput)
	case tour.Price.IsNegative():
		return fmt.Errorf("price must not be negative: %w", ports.ErrInvalidInput)
	case len(tour.Currency) != 3:
		return fmt.Errorf("currency must be an ISO 4217 code: %w", ports.ErrInvalidInput)
	case tour.DurationMinutes < 0:
		return fmt.Errorf("duration must not be negative: %w", ports.ErrInvalidInput)
	}
	tour.Price = tour.Price.Round(2)
	return s.tours.Create(ctx, tour)
}

// Schedules returns the upcoming departures of a tour.
func (s *TourService) Schedules(ctx context.Context, slug string, limit int) ([]domain.Schedule, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	tour, err := s.tours.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.tours.UpcomingSchedules(ctx, tour.ID, limit)
}
