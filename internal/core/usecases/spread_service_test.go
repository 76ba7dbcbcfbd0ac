package usecases_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/Tom-Shanks/FireSight-AI/internal/core/domain"
	"github.com/Tom-Shanks/FireSight-AI/internal/core/usecases"
)

// --- Mock WeatherService ---

type mockWeather struct {
	currentFn  func(ctx context.Context, loc domain.GeoPoint) (*domain.WeatherSnapshot, error)
	forecastFn func(ctx context.Context, loc domain.GeoPoint, days int) ([]domain.ForecastEntry, error)
}

func (m *mockWeather) Current(ctx context.Context, loc domain.GeoPoint) (*domain.WeatherSnapshot, error) {
	if m.currentFn != nil {
		return m.currentFn(ctx, loc)
	}
	return &domain.WeatherSnapshot{WindSpeedMps: 5, WindDirectionDeg: 270, Humidity: 30, Temperature: 28}, nil
}

func (m *mockWeather) Forecast(ctx context.Context, loc domain.GeoPoint, days int) ([]domain.ForecastEntry, error) {
	if m.forecastFn != nil {
		return m.forecastFn(ctx, loc, days)
	}
	entries := make([]domain.ForecastEntry, days)
	base := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	for i := range entries {
		entries[i] = domain.ForecastEntry{
			Date: base.AddDate(0, 0, i), Temperature: 30, Humidity: 25, WindSpeedMps: 6,
		}
	}
	return entries, nil
}

// --- Mock CacheService ---

type mockCache struct {
	store map[string][]byte
	sets  int
}

func newMockCache() *mockCache { return &mockCache{store: make(map[string][]byte)} }

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if data, ok := m.store[key]; ok {
		return data, nil
	}
	return nil, errors.New("miss")
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.store[key] = value
	m.sets++
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	delete(m.store, key)
	return nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	detections  int
	simulations int
}

func (m *mockPublisher) PublishDetection(ctx context.Context, det *domain.FireDetection) error {
	m.detections++
	return nil
}

func (m *mockPublisher) PublishSimulationDone(ctx context.Context, data []byte) error {
	m.simulations++
	return nil
}

// --- Tests ---

func testIgnitions() []domain.IgnitionPoint {
	return []domain.IgnitionPoint{{
		Location:      domain.GeoPoint{Latitude: 38.05, Longitude: -122.55},
		Intensity:     80,
		DetectionTime: time.Date(2026, 8, 15, 6, 0, 0, 0, time.UTC),
	}}
}

func TestSpreadService_Validation(t *testing.T) {
	svc := usecases.NewSpreadService(&mockWeather{}, nil, nil, 0, 0)

	cases := []struct {
		name string
		req  usecases.SpreadRequest
	}{
		{"no ignitions", usecases.SpreadRequest{}},
		{"hours too high", usecases.SpreadRequest{Ignitions: testIgnitions(), SimulationHours: 100}},
		{"resolution too low", usecases.SpreadRequest{Ignitions: testIgnitions(), ResolutionMeters: 50}},
		{"bad latitude", usecases.SpreadRequest{Ignitions: []domain.IgnitionPoint{
			{Location: domain.GeoPoint{Latitude: 95, Longitude: 0}},
		}}},
		{"negative intensity", usecases.SpreadRequest{Ignitions: []domain.IgnitionPoint{
			{Location: domain.GeoPoint{Latitude: 38, Longitude: -122}, Intensity: -1},
		}}},
	}
	for _, tc := range cases {
		if _, err := svc.Simulate(context.Background(), tc.req); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestSpreadService_Simulate(t *testing.T) {
	pub := &mockPublisher{}
	svc := usecases.NewSpreadService(&mockWeather{}, nil, pub, 0, 0)

	res, err := svc.Simulate(context.Background(), usecases.SpreadRequest{
		Ignitions:       testIgnitions(),
		SimulationHours: 6,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Perimeters) == 0 {
		t.Error("expected timestamped perimeters")
	}
	if res.Metadata.Statistics.InitialBurningCells != 1 {
		t.Errorf("expected 1 initial burning cell, got %d", res.Metadata.Statistics.InitialBurningCells)
	}
	if pub.simulations != 1 {
		t.Errorf("expected 1 published simulation, got %d", pub.simulations)
	}
}

func TestSpreadService_WeatherFailureAborts(t *testing.T) {
	weather := &mockWeather{
		currentFn: func(ctx context.Context, loc domain.GeoPoint) (*domain.WeatherSnapshot, error) {
			return nil, errors.New("weather service down")
		},
	}
	svc := usecases.NewSpreadService(weather, nil, nil, 0, 0)

	if _, err := svc.Simulate(context.Background(), usecases.SpreadRequest{Ignitions: testIgnitions()}); err == nil {
		t.Error("expected weather failure to propagate")
	}
}

func TestSpreadService_GridLimit(t *testing.T) {
	svc := usecases.NewSpreadService(&mockWeather{}, nil, nil, 100, 0)

	_, err := svc.Simulate(context.Background(), usecases.SpreadRequest{Ignitions: testIgnitions()})
	if err == nil {
		t.Error("expected grid limit rejection")
	}
}

func TestSpreadService_SeededRunsAreCachedAndDeterministic(t *testing.T) {
	cache := newMockCache()
	svc := usecases.NewSpreadService(&mockWeather{}, cache, nil, 0, 600)

	seed := uint64(42)
	req := usecases.SpreadRequest{
		Ignitions:       testIgnitions(),
		SimulationHours: 6,
		Seed:            &seed,
	}

	first, err := svc.Simulate(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if cache.sets != 1 {
		t.Fatalf("expected the seeded result to be cached, sets=%d", cache.sets)
	}

	second, err := svc.Simulate(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if cache.sets != 1 {
		t.Error("second call should have hit the cache, not recomputed")
	}
	if !reflect.DeepEqual(first.Metadata.Statistics, second.Metadata.Statistics) {
		t.Error("cached result differs from the original")
	}
}

func TestSpreadService_UnseededRunsSkipCache(t *testing.T) {
	cache := newMockCache()
	svc := usecases.NewSpreadService(&mockWeather{}, cache, nil, 0, 600)

	_, err := svc.Simulate(context.Background(), usecases.SpreadRequest{
		Ignitions:       testIgnitions(),
		SimulationHours: 6,
	})
	if err != nil {
		t.Fatal(err)
	}
	if cache.sets != 0 {
		t.Errorf("unseeded runs must not populate the cache, sets=%d", cache.sets)
	}
}
