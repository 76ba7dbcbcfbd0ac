package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Tom-Shanks/FireSight-AI/internal/core/domain"
	"github.com/Tom-Shanks/FireSight-AI/internal/core/ports"
)

// DetectionService serves satellite fire detections and high-risk areas.
type DetectionService struct {
	detections ports.DetectionRepository
	areas      ports.RiskAreaRepository
	cache      ports.CacheService
}

// NewDetectionService creates a new DetectionService.
func NewDetectionService(
	detections ports.DetectionRepository,
	areas ports.RiskAreaRepository,
	cache ports.CacheService,
) *DetectionService {
	return &DetectionService{detections: detections, areas: areas, cache: cache}
}

// RecentFires returns detections from the last `hours` hours, newest first.
func (s *DetectionService) RecentFires(ctx context.Context, hours, limit int) ([]domain.FireDetection, error) {
	if hours <= 0 || hours > 720 {
		hours = 24
	}
	if limit <= 0 || limit > 1000 {
		limit = 200
	}

	cacheKey := fmt.Sprintf("fires:recent:%d:%d", hours, limit)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var fires []domain.FireDetection
			if err := json.Unmarshal(data, &fires); err == nil {
				return fires, nil
			}
		}
	}

	since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
	fires, err := s.detections.RecentSince(ctx, since, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent detections: %w", err)
	}

	// Short TTL: the ingestor lands new detections every poll cycle.
	if s.cache != nil {
		if data, err := json.Marshal(fires); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 120)
		}
	}

	return fires, nil
}

// HighRiskAreas returns the highest-scored risk areas.
func (s *DetectionService) HighRiskAreas(ctx context.Context, limit int) ([]domain.RiskArea, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	cacheKey := fmt.Sprintf("risk:areas:%d", limit)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var areas []domain.RiskArea
			if err := json.Unmarshal(data, &areas); err == nil {
				return areas, nil
			}
		}
	}

	areas, err := s.areas.TopByScore(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("query risk areas: %w", err)
	}

	if s.cache != nil {
		if data, err := json.Marshal(areas); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 600)
		}
	}

	return areas, nil
}

// Ingest stores a batch of detections and publishes each to the event bus.
func (s *DetectionService) Ingest(ctx context.Context, detections []domain.FireDetection, publisher ports.EventPublisher) (int, error) {
	if len(detections) == 0 {
		return 0, nil
	}

	inserted, err := s.detections.InsertBatch(ctx, detections)
	if err != nil {
		return 0, fmt.Errorf("insert detections: %w", err)
	}

	if publisher != nil {
		for i := range detections {
			_ = publisher.PublishDetection(ctx, &detections[i])
		}
	}

	return inserted, nil
}
