package ports

import (
	"context"

	"github.com/Tom-Shanks/FireSight-AI/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishDetection(ctx context.Context, det *domain.FireDetection) error
	PublishSimulationDone(ctx context.Context, data []byte) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// WeatherService supplies current and forecast conditions for a location.
type WeatherService interface {
	Current(ctx context.Context, loc domain.GeoPoint) (*domain.WeatherSnapshot, error)
	Forecast(ctx context.Context, loc domain.GeoPoint, days int) ([]domain.ForecastEntry, error)
}
