package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Tom-Shanks/FireSight-AI/internal/core/domain"
)

// RiskAreaRepo implements ports.RiskAreaRepository with pgx.
type RiskAreaRepo struct {
	db *DB
}

// NewRiskAreaRepo creates a new RiskAreaRepo.
func NewRiskAreaRepo(db *DB) *RiskAreaRepo {
	return &RiskAreaRepo{db: db}
}

// UpsertBatch replaces the stored score and factors for each area.
func (r *RiskAreaRepo) UpsertBatch(ctx context.Context, areas []domain.RiskArea) error {
	batch := &pgx.Batch{}
	for _, a := range areas {
		batch.Queue(`
			INSERT INTO risk_areas (name, center, risk_score, factors)
			VALUES ($1, ST_SetSRID(ST_MakePoint($2, $3), 4326)::geography, $4, $5)
			ON CONFLICT (name) DO UPDATE
			SET center = EXCLUDED.center,
			    risk_score = EXCLUDED.risk_score,
			    factors = EXCLUDED.factors,
			    updated_at = now()
		`, a.Name, a.Center.Longitude, a.Center.Latitude, a.RiskScore, a.Factors)
	}

	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range areas {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}

// TopByScore returns the highest-risk areas, best first.
func (r *RiskAreaRepo) TopByScore(ctx context.Context, limit int) ([]domain.RiskArea, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name,
		       ST_Y(center::geometry) as lat,
		       ST_X(center::geometry) as lon,
		       risk_score, COALESCE(factors, '{}')
		FROM risk_areas
		ORDER BY risk_score DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var areas []domain.RiskArea
	for rows.Next() {
		var a domain.RiskArea
		if err := rows.Scan(
			&a.ID, &a.Name,
			&a.Center.Latitude, &a.Center.Longitude,
			&a.RiskScore, &a.Factors,
		); err != nil {
			return nil, err
		}
		areas = append(areas, a)
	}
	return areas, rows.Err()
}
