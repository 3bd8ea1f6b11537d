package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/sightseer/internal/core/domain"
)

const stationColumns = `id, code, name, lat, lon, COALESCE(address, ''), active, created_at`

// StationRepo implements ports.StationRepository with pgx.
type StationRepo struct {
	db *DB
}

// NewStationRepo creates a new StationRepo.
func NewStationRepo(db *DB) *StationRepo {
	return &StationRepo{db: db}
}

func scanStation(row pgx.Row) (domain.Station, error) {
	var s domain.Station
	err := row.Scan(&s.ID, &s.Code, &s.Name, &s.Location.Lat, &s.Location.Lon, &s.Address, &s.Active, &s.CreatedAt)
	return s, err
}

func collectStations(rows pgx.Rows) ([]domain.Station, error) {
	defer rows.Close()
	var stations []domain.Station
	for rows.Next() {
		s, err := scanStation(rows)
		if err != nil {
			return nil, err
		}
		stations = append(stations, s)
	}
	return stations, rows.Err()
}

// Create inserts a station and fills in its id and creation time.
func (r *StationRepo) Create(ctx context.Context, s *domain.Station) error {
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO stations (code, name, lat, lon, address, active)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)
		RETURNING id, created_at
	`, s.Code, s.Name, s.Location.Lat, s.Location.Lon, s.Address, s.Active).Scan(&s.ID, &s.CreatedAt)
	return translate(err)
}

// GetByID returns a station by UUID.
func (r *StationRepo) GetByID(ctx context.Context, id string) (*domain.Station, error) {
	s, err := scanStation(r.db.Pool.QueryRow(ctx, `SELECT `+stationColumns+` FROM stations WHERE id = $1`, id))
	if err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

// GetByIDs returns multiple stations by UUID, in arbitrary order.
func (r *StationRepo) GetByIDs(ctx context.Context, ids []string) ([]domain.Station, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.Pool.Query(ctx, `SELECT `+stationColumns+` FROM stations WHERE id = ANY($1::uuid[])`, ids)
	if err != nil {
		return nil, translate(err)
	}
	return collectStations(rows)
}

// List returns all stations ordered by name.
func (r *StationRepo) List(ctx context.Context) ([]domain.Station, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT `+stationColumns+` FROM stations ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return collectStations(rows)
}

// WithinBounds returns active stations inside the bounding box.
func (r *StationRepo) WithinBounds(ctx context.Context, minLat, minLon, maxLat, maxLon float64) ([]domain.Station, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+stationColumns+`
		FROM stations
		WHERE active AND lat BETWEEN $1 AND $3 AND lon BETWEEN $2 AND $4
	`, minLat, minLon, maxLat, maxLon)
	if err != nil {
		return nil, err
	}
	return collectStations(rows)
}

// PointsOfInterest returns the sights attached to a station.
func (r *StationRepo) PointsOfInterest(ctx context.Context, stationID string) ([]domain.PointOfInterest, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, station_id, name, category, COALESCE(description, ''), lat, lon
		FROM points_of_interest WHERE station_id = $1
		ORDER BY name
	`, stationID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var pois []domain.PointOfInterest
	for rows.Next() {
		var p domain.PointOfInterest
		if err := rows.Scan(&p.ID, &p.StationID, &p.Name, &p.Category, &p.Description, &p.Location.Lat, &p.Location.Lon); err != nil {
			return nil, err
		}
		pois = append(pois, p)
	}
	return pois, rows.Err()
}
