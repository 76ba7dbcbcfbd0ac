package usecases_test

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/Tom-Shanks/FireSight-AI/internal/core/domain"
	"github.com/Tom-Shanks/FireSight-AI/internal/core/usecases"
)

func seededRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, 0))
}

func TestRiskService_Predict(t *testing.T) {
	svc := usecases.NewRiskService(&mockWeather{}, usecases.NewModelCache(), seededRNG(1))

	assessment, err := svc.Predict(context.Background(), domain.GeoPoint{Latitude: 38.05, Longitude: -122.55}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if assessment.RiskScore < 0 || assessment.RiskScore > 1 {
		t.Errorf("risk score out of range: %v", assessment.RiskScore)
	}
	if assessment.Confidence != 0.85 {
		t.Errorf("expected fixed confidence 0.85, got %v", assessment.Confidence)
	}
	if len(assessment.ForecastDates) != 5 || len(assessment.ForecastValues) != 5 {
		t.Errorf("expected 5 forecast days, got %d dates / %d values",
			len(assessment.ForecastDates), len(assessment.ForecastValues))
	}
	for _, v := range assessment.ForecastValues {
		if v < 0 || v > 1 {
			t.Errorf("forecast risk out of range: %v", v)
		}
	}

	var total float64
	for _, w := range assessment.Factors {
		total += w
	}
	if math.Abs(total-1) > 0.02 {
		t.Errorf("factor weights should be normalized to 1, sum=%v", total)
	}
}

func TestRiskService_RejectsBadLocation(t *testing.T) {
	svc := usecases.NewRiskService(&mockWeather{}, usecases.NewModelCache(), seededRNG(1))

	if _, err := svc.Predict(context.Background(), domain.GeoPoint{Latitude: 91, Longitude: 0}, 10); err == nil {
		t.Error("expected error for out-of-range latitude")
	}
}

func TestRiskService_SurvivesForecastFailure(t *testing.T) {
	weather := &mockWeather{
		forecastFn: func(ctx context.Context, loc domain.GeoPoint, days int) ([]domain.ForecastEntry, error) {
			return nil, errors.New("forecast unavailable")
		},
	}
	svc := usecases.NewRiskService(weather, usecases.NewModelCache(), seededRNG(1))

	assessment, err := svc.Predict(context.Background(), domain.GeoPoint{Latitude: 38.05, Longitude: -122.55}, 10)
	if err != nil {
		t.Fatalf("a failed forecast must not fail the assessment: %v", err)
	}
	if len(assessment.ForecastDates) != 0 {
		t.Errorf("expected empty forecast, got %v", assessment.ForecastDates)
	}
	if assessment.RiskScore < 0 || assessment.RiskScore > 1 {
		t.Errorf("risk score out of range: %v", assessment.RiskScore)
	}
}

func TestRiskService_DrierHotterIsRiskier(t *testing.T) {
	// Two services with the same seeded terrain and vegetation but opposite
	// weather regimes; only the weather inputs differ.
	dry := &mockWeather{
		currentFn: func(ctx context.Context, loc domain.GeoPoint) (*domain.WeatherSnapshot, error) {
			return &domain.WeatherSnapshot{WindSpeedMps: 15, Humidity: 10, Temperature: 42}, nil
		},
	}
	wet := &mockWeather{
		currentFn: func(ctx context.Context, loc domain.GeoPoint) (*domain.WeatherSnapshot, error) {
			return &domain.WeatherSnapshot{WindSpeedMps: 1, Humidity: 90, Temperature: 10}, nil
		},
	}
	loc := domain.GeoPoint{Latitude: 38.05, Longitude: -122.55}

	dryScore, err := usecases.NewRiskService(dry, usecases.NewModelCache(), seededRNG(7)).Predict(context.Background(), loc, 10)
	if err != nil {
		t.Fatal(err)
	}
	wetScore, err := usecases.NewRiskService(wet, usecases.NewModelCache(), seededRNG(7)).Predict(context.Background(), loc, 10)
	if err != nil {
		t.Fatal(err)
	}

	if dryScore.RiskScore <= wetScore.RiskScore {
		t.Errorf("hot dry windy conditions should score higher: dry=%v wet=%v",
			dryScore.RiskScore, wetScore.RiskScore)
	}
}

func TestModelCache_SetWeights(t *testing.T) {
	cache := usecases.NewModelCache()

	cache.SetWeights(map[string]float64{"wind_speed": 1.0})
	weights := cache.Weights()
	if len(weights) != 1 || weights["wind_speed"] != 1.0 {
		t.Errorf("unexpected weights after replacement: %v", weights)
	}

	// The returned map is a copy; mutating it must not affect the cache.
	weights["wind_speed"] = 0
	if cache.Weights()["wind_speed"] != 1.0 {
		t.Error("Weights() leaked internal state")
	}
}
