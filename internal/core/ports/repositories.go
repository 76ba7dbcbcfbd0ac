package ports

import (
	"context"
	"time"

	"github.com/Tom-Shanks/FireSight-AI/internal/core/domain"
)

// DetectionRepository persists satellite fire detections.
type DetectionRepository interface {
	InsertBatch(ctx context.Context, detections []domain.FireDetection) (int, error)
	RecentSince(ctx context.Context, since time.Time, limit int) ([]domain.FireDetection, error)
	WithinBounds(ctx context.Context, bounds domain.Bounds, since time.Time, limit int) ([]domain.FireDetection, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// RiskAreaRepository persists precomputed high-risk areas.
type RiskAreaRepository interface {
	UpsertBatch(ctx context.Context, areas []domain.RiskArea) error
	TopByScore(ctx context.Context, limit int) ([]domain.RiskArea, error)
}
