package postgres

import (
	"context"

	"github.com/samirrijal/sightseer/internal/core/domain"
)

// BusRepo implements ports.BusRepository.
type BusRepo struct {
	db *DB
}

func NewBusRepo(db *DB) *BusRepo {
	return &BusRepo{db: db}
}

func (r *BusRepo) GetByID(ctx context.Context, id string) (*domain.Bus, error) {
	b := &domain.Bus{}
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, plate, COALESCE(model, ''), capacity, active, created_at
		FROM buses WHERE id = $1
	`, id).Scan(&b.ID, &b.Plate, &b.Model, &b.Capacity, &b.Active, &b.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return b, nil
}

func (r *BusRepo) List(ctx context.Context) ([]domain.Bus, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, plate, COALESCE(model, ''), capacity, active, created_at
		FROM buses ORDER BY plate
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buses []domain.Bus
	for rows.Next() {
		var b domain.Bus
		if err := rows.Scan(&b.ID, &b.Plate, &b.Model, &b.Capacity, &b.Active, &b.CreatedAt); err != nil {
			return nil, err
		}
		buses = append(buses, b)
	}
	return buses, rows.Err()
}
