package usecases

import (
	"context"

	"github.com/samirrijal/sightseer/internal/core/domain"
	"github.com/samirrijal/sightseer/internal/core/ports"
)

// BusService handles bus lookups.
type BusService struct {
	buses ports.BusRepository
}

// NewBusService creates a new BusService.
func NewBusService(buses ports.BusRepository) *BusService {
	return &BusService{buses: buses}
}

// List returns the fleet.
func (s *BusService) List(ctx context.Context) ([]domain.Bus, error) {
	return s.buses.List(ctx)
}

// GetByID returns a single bus by its UUID.
func (s *BusService) GetByID(ctx context.Context, id string) (*domain.Bus, error) {
	return s.buses.GetByID(ctx, id)
}
