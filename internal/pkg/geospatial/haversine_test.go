package geospatial

import (
	"math"
	"testing"

	"github.com/Tom-Shanks/FireSight-AI/internal/core/domain"
)

func TestHaversine(t *testing.T) {
	// San Francisco to Los Angeles, roughly 559 km
	d := Haversine(37.7749, -122.4194, 34.0522, -118.2437)
	if d < 550_000 || d > 570_000 {
		t.Errorf("SF-LA distance out of range: %v m", d)
	}

	if d := Haversine(38.05, -122.55, 38.05, -122.55); d != 0 {
		t.Errorf("zero distance expected, got %v", d)
	}
}

func TestBoundsWithBuffer(t *testing.T) {
	points := []domain.GeoPoint{
		{Latitude: 38.00, Longitude: -122.60},
		{Latitude: 38.10, Longitude: -122.50},
	}
	b := BoundsWithBuffer(points, 10)

	if !b.Valid() {
		t.Fatal("expected valid bounds")
	}
	for _, p := range points {
		if p.Latitude < b.MinLat || p.Latitude > b.MaxLat ||
			p.Longitude < b.MinLon || p.Longitude > b.MaxLon {
			t.Errorf("point %+v outside buffered bounds %+v", p, b)
		}
	}

	// 10 km is about 0.09 degrees of latitude
	latBuffer := 38.00 - b.MinLat
	if latBuffer < 0.08 || latBuffer > 0.10 {
		t.Errorf("latitude buffer out of range: %v deg", latBuffer)
	}

	// Longitude buffer widens with latitude
	lonBuffer := -122.60 - b.MinLon
	if lonBuffer <= latBuffer {
		t.Errorf("longitude buffer %v should exceed latitude buffer %v at 38N", lonBuffer, latBuffer)
	}
}

func TestPolygonAreaSqKm(t *testing.T) {
	// 0.1 x 0.1 degree box near 38N: ~11.1 km tall, ~8.8 km wide
	square := []domain.GeoPoint{
		{Latitude: 38.00, Longitude: -122.60},
		{Latitude: 38.00, Longitude: -122.50},
		{Latitude: 38.10, Longitude: -122.50},
		{Latitude: 38.10, Longitude: -122.60},
	}
	area := PolygonAreaSqKm(square)
	if math.Abs(area-97.5) > 3 {
		t.Errorf("expected area near 97.5 sqkm, got %v", area)
	}

	// Closed ring gives nearly the same answer (refLat shifts slightly)
	closed := append(square, square[0])
	if math.Abs(PolygonAreaSqKm(closed)-area) > 0.1 {
		t.Errorf("closed ring area differs: %v vs %v", PolygonAreaSqKm(closed), area)
	}

	if PolygonAreaSqKm(square[:2]) != 0 {
		t.Error("degenerate polygon must have zero area")
	}
}
