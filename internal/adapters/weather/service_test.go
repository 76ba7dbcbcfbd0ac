package weather

import (
	"context"
	"errors"
	"testing"

	"github.com/Tom-Shanks/FireSight-AI/internal/core/domain"
)

type mockProvider struct {
	currentFn  func(ctx context.Context, loc domain.GeoPoint) (*domain.WeatherSnapshot, error)
	forecastFn func(ctx context.Context, loc domain.GeoPoint, days int) ([]domain.ForecastEntry, error)
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) Current(ctx context.Context, loc domain.GeoPoint) (*domain.WeatherSnapshot, error) {
	if m.currentFn != nil {
		return m.currentFn(ctx, loc)
	}
	return nil, errors.New("not configured")
}

func (m *mockProvider) Forecast(ctx context.Context, loc domain.GeoPoint, days int) ([]domain.ForecastEntry, error) {
	if m.forecastFn != nil {
		return m.forecastFn(ctx, loc, days)
	}
	return nil, errors.New("not configured")
}

var testLoc = domain.GeoPoint{Latitude: 38.05, Longitude: -122.55}

func TestServicePrefersPrimary(t *testing.T) {
	primary := &mockProvider{
		currentFn: func(ctx context.Context, loc domain.GeoPoint) (*domain.WeatherSnapshot, error) {
			return &domain.WeatherSnapshot{WindSpeedMps: 7.5, Temperature: 31}, nil
		},
	}
	svc := NewService(primary)

	wx, err := svc.Current(context.Background(), testLoc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wx.WindSpeedMps != 7.5 {
		t.Errorf("expected primary reading, got %+v", wx)
	}
}

func TestServiceFallsBackOnError(t *testing.T) {
	primary := &mockProvider{
		currentFn: func(ctx context.Context, loc domain.GeoPoint) (*domain.WeatherSnapshot, error) {
			return nil, errors.New("upstream down")
		},
	}
	svc := NewService(primary)

	wx, err := svc.Current(context.Background(), testLoc)
	if err != nil {
		t.Fatalf("fallback must not fail: %v", err)
	}
	if wx.WindSpeedMps <= 0 || wx.Temperature <= 0 {
		t.Errorf("synthetic conditions out of range: %+v", wx)
	}
}

func TestServiceSyntheticOnly(t *testing.T) {
	svc := NewService(nil)

	entries, err := svc.Forecast(context.Background(), testLoc, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 5 {
		t.Fatalf("expected 5 forecast days, got %d", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if !entries[i].Date.After(entries[i-1].Date) {
			t.Errorf("forecast dates out of order: %v then %v", entries[i-1].Date, entries[i].Date)
		}
	}
}

func TestSyntheticRanges(t *testing.T) {
	p := NewSyntheticProvider()
	for i := 0; i < 50; i++ {
		wx, err := p.Current(context.Background(), testLoc)
		if err != nil {
			t.Fatal(err)
		}
		if wx.WindSpeedMps < 2 || wx.WindSpeedMps > 12 {
			t.Fatalf("wind speed out of range: %v", wx.WindSpeedMps)
		}
		if wx.WindDirectionDeg < 0 || wx.WindDirectionDeg >= 360 {
			t.Fatalf("wind direction out of range: %v", wx.WindDirectionDeg)
		}
		if wx.Humidity < 15 || wx.Humidity > 55 {
			t.Fatalf("humidity out of range: %v", wx.Humidity)
		}
	}
}
