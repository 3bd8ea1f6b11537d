package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/samirrijal/sightseer/internal/core/domain"
)

// TourRepo implements ports.TourRepository. Money columns travel as text so
// numeric precision survives the round trip.
type TourRepo struct {
	db *DB
}

func NewTourRepo(db *DB) *TourRepo {
	return &TourRepo{db: db}
}

const tourColumns = `id, slug, name, COALESCE(description, ''), price::text, currency, duration_minutes, active, created_at`

func scanTour(row pgx.Row) (domain.Tour, error) {
	var (
		t     domain.Tour
		price string
	)
	if err := row.Scan(&t.ID, &t.Slug, &t.Name, &t.Description, &price, &t.Currency,
		&t.DurationMinutes, &t.Active, &t.CreatedAt); err != nil {
		return t, err
	}
	p, err := decimal.NewFromString(price)
	if err != nil {
		return t, fmt.Errorf("tour %s price: %w", t.Slug, err)
	}
	t.Price = p
	return t, nil
}

func (r *TourRepo) Create(ctx context.Context, t *domain.Tour) error {
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO tours (slug, name, description, price, currency, duration_minutes, active)
		VALUES ($1, $2, NULLIF($3, ''), $4::numeric, $5, $6, $7)
		RETURNING id, created_at
	`, t.Slug, t.Name, t.Description, t.Price.String(), t.Currency, t.DurationMinutes, t.Active).Scan(&t.ID, &t.CreatedAt)
	return translate(err)
}

func (r *TourRepo) GetBySlug(ctx context.Context, slug string) (*domain.Tour, error) {
	t, err := scanTour(r.db.Pool.QueryRow(ctx, `SELECT `+tourColumns+` FROM tours WHERE slug = $1`, slug))
	if err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *TourRepo) List(ctx context.Context) ([]domain.Tour, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT `+tourColumns+` FROM tours ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tours []domain.Tour
	for rows.Next() {
		t, err := scanTour(rows)
		if err != nil {
			return nil, err
		}
		tours = append(tours, t)
	}
	return tours, rows.Err()
}

// UpcomingSchedules returns departures from now on, earliest first.
func (r *TourRepo) UpcomingSchedules(ctx context.Context, tourID string, limit int) ([]domain.Schedule, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, tour_id, bus_id, departs_at, fare::text, seats_available
		FROM schedules
		WHERE tour_id = $1 AND departs_at >= NOW()
		ORDER BY departs_at
		LIMIT $2
	`, tourID, limit)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var schedules []domain.Schedule
	for rows.Next() {
		var (
			s    domain.Schedule
			fare string
		)
		if err := rows.Scan(&s.ID, &s.TourID, &s.BusID, &s.DepartsAt, &fare, &s.SeatsAvailable); err != nil {
			return nil, err
		}
		if s.Fare, err = decimal.NewFromString(fare); err != nil {
			return nil, fmt.Errorf("schedule %s fare: %w", s.ID, err)
		}
		schedules = append(schedules, s)
	}
	return schedules, rows.Err()
}
