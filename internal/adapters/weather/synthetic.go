package weather

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/Tom-Shanks/FireSight-AI/internal/core/domain"
)

// SyntheticProvider generates plausible fire-season conditions. It backs the
// service when no upstream is configured and serves as the fallback when the
// upstream is down, so simulations always have weather to run under.
type SyntheticProvider struct{}

func NewSyntheticProvider() *SyntheticProvider {
	return &SyntheticProvider{}
}

func (p *SyntheticProvider) Name() string { return "synthetic" }

func (p *SyntheticProvider) Current(_ context.Context, _ domain.GeoPoint) (*domain.WeatherSnapshot, error) {
	return &domain.WeatherSnapshot{
		WindSpeedMps:     2 + rand.Float64()*10,
		WindDirectionDeg: rand.Float64() * 360,
		Humidity:         15 + rand.Float64()*40,
		Temperature:      18 + rand.Float64()*17,
	}, nil
}

func (p *SyntheticProvider) Forecast(_ context.Context, _ domain.GeoPoint, days int) ([]domain.ForecastEntry, error) {
	if days <= 0 {
		days = 7
	}
	now := time.Now().UTC().Truncate(24 * time.Hour)

	entries := make([]domain.ForecastEntry, days)
	for i := range entries {
		entries[i] = domain.ForecastEntry{
			Date:          now.AddDate(0, 0, i+1),
			Temperature:   20 + rand.Float64()*15,
			Humidity:      15 + rand.Float64()*40,
			WindSpeedMps:  2 + rand.Float64()*10,
			Precipitation: rand.Float64() * 2,
		}
	}
	return entries, nil
}
