package weather

import (
	"context"

	"github.com/Tom-Shanks/FireSight-AI/internal/core/domain"
)

// Provider abstracts an upstream weather data source.
type Provider interface {
	Name() string
	Current(ctx context.Context, loc domain.GeoPoint) (*domain.WeatherSnapshot, error)
	Forecast(ctx context.Context, loc domain.GeoPoint, days int) ([]domain.ForecastEntry, error)
}
