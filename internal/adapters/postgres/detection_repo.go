package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Tom-Shanks/FireSight-AI/internal/core/domain"
)

// DetectionRepo implements ports.DetectionRepository with pgx.
type DetectionRepo struct {
	db *DB
}

// NewDetectionRepo creates a new DetectionRepo.
func NewDetectionRepo(db *DB) *DetectionRepo {
	return &DetectionRepo{db: db}
}

// InsertBatch inserts detections, skipping duplicates, and returns how many
// rows were actually inserted.
func (r *DetectionRepo) InsertBatch(ctx context.Context, detections []domain.FireDetection) (int, error) {
	if len(detections) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, d := range detections {
		batch.Queue(`
			INSERT INTO fire_detections (source, location, detection_time, frp, confidence)
			VALUES ($1, ST_SetSRID(ST_MakePoint($2, $3), 4326)::geography, $4, $5, $6)
			ON CONFLICT (source, location, detection_time) DO NOTHING
		`, d.Source, d.Location.Longitude, d.Location.Latitude,
			d.DetectionTime, d.FRP, d.Confidence)
	}

	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()

	inserted := 0
	for range detections {
		tag, err := br.Exec()
		if err != nil {
			return inserted, fmt.Errorf("batch exec: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

// RecentSince returns detections newer than `since`, newest first.
func (r *DetectionRepo) RecentSince(ctx context.Context, since time.Time, limit int) ([]domain.FireDetection, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, source,
		       ST_Y(location::geometry) as lat,
		       ST_X(location::geometry) as lon,
		       detection_time, frp, COALESCE(confidence, ''), created_at
		FROM fire_detections
		WHERE detection_time >= $1
		ORDER BY detection_time DESC
		LIMIT $2
	`, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDetections(rows)
}

// WithinBounds returns detections inside the bounds newer than `since`.
func (r *DetectionRepo) WithinBounds(ctx context.Context, bounds domain.Bounds, since time.Time, limit int) ([]domain.FireDetection, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, source,
		       ST_Y(location::geometry) as lat,
		       ST_X(location::geometry) as lon,
		       detection_time, frp, COALESCE(confidence, ''), created_at
		FROM fire_detections
		WHERE detection_time >= $1
		  AND ST_Intersects(location::geometry, ST_MakeEnvelope($2, $3, $4, $5, 4326))
		ORDER BY detection_time DESC
		LIMIT $6
	`, since, bounds.MinLon, bounds.MinLat, bounds.MaxLon, bounds.MaxLat, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDetections(rows)
}

// DeleteOlderThan removes detections past the retention window.
func (r *DetectionRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx,
		`DELETE FROM fire_detections WHERE detection_time < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanDetections(rows pgx.Rows) ([]domain.FireDetection, error) {
	var detections []domain.FireDetection
	for rows.Next() {
		var d domain.FireDetection
		if err := rows.Scan(
			&d.ID, &d.Source,
			&d.Location.Latitude, &d.Location.Longitude,
			&d.DetectionTime, &d.FRP, &d.Confidence, &d.CreatedAt,
		); err != nil {
			return nil, err
		}
		detections = append(detections, d)
	}
	return detections, rows.Err()
}
