package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/sightseer/internal/core/domain"
)

const segmentColumns = `id, route_id, departure_station_id, end_station_id, sequence, geometry, status, created_at`

// id breaks ties between rows written in one transaction with equal sequence.
const listSegmentsByRoute = `
	SELECT ` + segmentColumns + `
	FROM segments WHERE route_id = $1
	ORDER BY created_at, sequence, id
`

// SegmentRepo implements ports.SegmentRepository.
type SegmentRepo struct {
	db *DB
}

// NewSegmentRepo creates a new SegmentRepo.
func NewSegmentRepo(db *DB) *SegmentRepo {
	return &SegmentRepo{db: db}
}

func scanSegment(row pgx.Row) (domain.Segment, error) {
	var (
		s    domain.Segment
		geom []byte
	)
	if err := row.Scan(&s.ID, &s.RouteID, &s.DepartureStationID, &s.EndStationID,
		&s.Sequence, &geom, &s.Status, &s.CreatedAt); err != nil {
		return s, err
	}
	if len(geom) > 0 && string(geom) != "null" {
		var line domain.GeoLineString
		if err := json.Unmarshal(geom, &line); err != nil {
			return s, fmt.Errorf("segment %s geometry: %w", s.ID, err)
		}
		s.Geometry = &line
	}
	return s, nil
}

// ListByRoute returns a route's segments in insertion order.
func (r *SegmentRepo) ListByRoute(ctx context.Context, routeID string) ([]domain.Segment, error) {
	rows, err := r.db.Pool.Query(ctx, listSegmentsByRoute, routeID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var segments []domain.Segment
	for rows.Next() {
		s, err := scanSegment(rows)
		if err != nil {
			return nil, err
		}
		segments = append(segments, s)
	}
	return segments, rows.Err()
}

// ReplaceForRoute deletes the route's segments and inserts the new set in one
// transaction.
func (r *SegmentRepo) ReplaceForRoute(ctx context.Context, routeID string, segments []domain.Segment) error {
	return translate(r.db.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM segments WHERE route_id = $1`, routeID); err != nil {
			return fmt.Errorf("delete segments: %w", err)
		}
		if len(segments) == 0 {
			return nil
		}

		batch := &pgx.Batch{}
		for _, s := range segments {
			geom, err := marshalGeometry(s.Geometry)
			if err != nil {
				return err
			}
			batch.Queue(`
				INSERT INTO segments (id, route_id, departure_station_id, end_station_id, sequence, geometry, status)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			`, s.ID, routeID, s.DepartureStationID, s.EndStationID, s.Sequence, geom, string(s.Status))
		}

		br := tx.SendBatch(ctx, batch)
		for range segments {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return fmt.Errorf("batch exec: %w", err)
			}
		}
		return br.Close()
	}))
}

// GetByID returns a segment by UUID.
func (r *SegmentRepo) GetByID(ctx context.Context, id string) (*domain.Segment, error) {
	s, err := scanSegment(r.db.Pool.QueryRow(ctx, `SELECT `+segmentColumns+` FROM segments WHERE id = $1`, id))
	if err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

// Delete removes a segment by UUID.
func (r *SegmentRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM segments WHERE id = $1`, id)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return translate(pgx.ErrNoRows)
	}
	return nil
}

func marshalGeometry(g *domain.GeoLineString) ([]byte, error) {
	if g == nil {
		return nil, nil
	}
	b, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("marshal geometry: %w", err)
	}
	return b, nil
}
