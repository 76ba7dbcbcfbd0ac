package usecases_test

import (
	"context"
	"math"
	"testing"

	"github.com/Tom-Shanks/FireSight-AI/internal/core/domain"
	"github.com/Tom-Shanks/FireSight-AI/internal/core/usecases"
)

func squarePerimeter() []domain.GeoPoint {
	return []domain.GeoPoint{
		{Latitude: 38.00, Longitude: -122.60},
		{Latitude: 38.00, Longitude: -122.50},
		{Latitude: 38.10, Longitude: -122.50},
		{Latitude: 38.10, Longitude: -122.60},
		{Latitude: 38.00, Longitude: -122.60},
	}
}

func TestDamageService_Assess(t *testing.T) {
	svc := usecases.NewDamageService(seededRNG(1))

	report, err := svc.Assess(context.Background(), squarePerimeter(), "2026-08-01", "2026-08-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.BurnedAreaSqKm <= 0 {
		t.Fatalf("expected positive burned area, got %v", report.BurnedAreaSqKm)
	}

	// Vegetation damage splits the burned area.
	var sum float64
	for _, v := range report.VegetationDamage {
		sum += v
	}
	if math.Abs(sum-report.BurnedAreaSqKm) > 0.1 {
		t.Errorf("vegetation damage %v does not sum to burned area %v", sum, report.BurnedAreaSqKm)
	}

	// Recovery is a weighted average of the per-type estimates.
	if report.RecoveryEstimateMonths < 6 || report.RecoveryEstimateMonths > 60 {
		t.Errorf("recovery estimate out of range: %v", report.RecoveryEstimateMonths)
	}

	for _, key := range []string{"buildings", "roads_km", "power_lines_km"} {
		if _, ok := report.InfrastructureImpact[key]; !ok {
			t.Errorf("missing infrastructure metric %q", key)
		}
	}
}

func TestDamageService_Validation(t *testing.T) {
	svc := usecases.NewDamageService(seededRNG(1))
	ctx := context.Background()

	cases := []struct {
		name      string
		area      []domain.GeoPoint
		pre, post string
	}{
		{"too few points", squarePerimeter()[:2], "2026-08-01", "2026-08-15"},
		{"bad pre date", squarePerimeter(), "august first", "2026-08-15"},
		{"bad post date", squarePerimeter(), "2026-08-01", "soon"},
		{"dates reversed", squarePerimeter(), "2026-08-15", "2026-08-01"},
	}
	for _, tc := range cases {
		if _, err := svc.Assess(ctx, tc.area, tc.pre, tc.post); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func TestDamageService_DeterministicPerSeed(t *testing.T) {
	a, err := usecases.NewDamageService(seededRNG(9)).Assess(context.Background(), squarePerimeter(), "2026-08-01", "2026-08-15")
	if err != nil {
		t.Fatal(err)
	}
	b, err := usecases.NewDamageService(seededRNG(9)).Assess(context.Background(), squarePerimeter(), "2026-08-01", "2026-08-15")
	if err != nil {
		t.Fatal(err)
	}
	if a.BurnedAreaSqKm != b.BurnedAreaSqKm {
		t.Errorf("same seed must produce identical reports: %v vs %v", a.BurnedAreaSqKm, b.BurnedAreaSqKm)
	}
}
