package postgres

import (
	"context"

	"github.com/samirrijal/sightseer/internal/core/domain"
)

// RouteRepo implements ports.RouteRepository.
type RouteRepo struct {
	db *DB
}

func NewRouteRepo(db *DB) *RouteRepo {
	return &RouteRepo{db: db}
}

func (r *RouteRepo) Create(ctx context.Context, route *domain.Route) error {
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO routes (tour_id, name, start_station_id, color, active)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5)
		RETURNING id, created_at
	`, route.TourID, route.Name, route.StartStationID, route.Color, route.Active).Scan(&route.ID, &route.CreatedAt)
	return translate(err)
}

func (r *RouteRepo) GetByID(ctx context.Context, id string) (*domain.Route, error) {
	rt := &domain.Route{}
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, tour_id, name, start_station_id, COALESCE(color, ''), active, created_at
		FROM routes WHERE id = $1
	`, id).Scan(&rt.ID, &rt.TourID, &rt.Name, &rt.StartStationID, &rt.Color, &rt.Active, &rt.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return rt, nil
}

func (r *RouteRepo) ListByTour(ctx context.Context, tourID string) ([]domain.Route, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, tour_id, name, start_station_id, COALESCE(color, ''), active, created_at
		FROM routes WHERE tour_id = $1 ORDER BY name
	`, tourID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var routes []domain.Route
	for rows.Next() {
		var rt domain.Route
		if err := rows.Scan(&rt.ID, &rt.TourID, &rt.Name, &rt.StartStationID, &rt.Color, &rt.Active, &rt.CreatedAt); err != nil {
			return nil, err
		}
		routes = append(routes, rt)
	}
	return routes, rows.Err()
}
