package weather

import (
	"context"
	"log/slog"

	"github.com/Tom-Shanks/FireSight-AI/internal/core/domain"
	"github.com/Tom-Shanks/FireSight-AI/internal/pkg/metrics"
)

// Service implements ports.WeatherService over a primary provider with a
// synthetic fallback. The fallback never fails, so neither does the service.
type Service struct {
	primary  Provider
	fallback Provider
}

// NewService builds the weather service. A nil primary means synthetic-only
// operation, used when no API key is configured.
func NewService(primary Provider) *Service {
	return &Service{primary: primary, fallback: NewSyntheticProvider()}
}

func (s *Service) Current(ctx context.Context, loc domain.GeoPoint) (*domain.WeatherSnapshot, error) {
	if s.primary != nil {
		wx, err := s.primary.Current(ctx, loc)
		if err == nil {
			return wx, nil
		}
		s.noteFallback("current", err)
	}
	return s.fallback.Current(ctx, loc)
}

func (s *Service) Forecast(ctx context.Context, loc domain.GeoPoint, days int) ([]domain.ForecastEntry, error) {
	if s.primary != nil {
		entries, err := s.primary.Forecast(ctx, loc, days)
		if err == nil {
			return entries, nil
		}
		s.noteFallback("forecast", err)
	}
	return s.fallback.Forecast(ctx, loc, days)
}

func (s *Service) noteFallback(op string, err error) {
	metrics.WeatherFallbacks.Inc()
	slog.Warn("weather provider failed, using synthetic conditions",
		"provider", s.primary.Name(), "op", op, "error", err)
}
