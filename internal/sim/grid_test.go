package sim

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/Tom-Shanks/FireSight-AI/internal/core/domain"
)

func testRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, 0))
}

func TestGridStateFlatTerrain(t *testing.T) {
	state, _ := newGridState(testBounds, 500, []domain.IgnitionPoint{
		{Location: domain.GeoPoint{Latitude: 38.05, Longitude: -122.55}, Intensity: 50},
	}, testRNG(1), true)

	for i, v := range state.slope.data {
		if v != 0 {
			t.Fatalf("flat terrain should have zero slope, cell %d = %v", i, v)
		}
	}
	for i, v := range state.fuel.data {
		if v != defaultFuelLoad {
			t.Fatalf("expected uniform fuel load, cell %d = %v", i, v)
		}
	}
	if got := state.moisture.at(0, 0); got != defaultMoisture {
		t.Errorf("expected default moisture %v, got %v", defaultMoisture, got)
	}
}

func TestGridStateSynthesizedTerrain(t *testing.T) {
	state, _ := newGridState(testBounds, 500, []domain.IgnitionPoint{
		{Location: domain.GeoPoint{Latitude: 38.05, Longitude: -122.55}, Intensity: 50},
	}, testRNG(1), false)

	var maxElev float64
	for _, v := range state.elevation.data {
		if v < 0 {
			t.Fatalf("elevation must be non-negative, got %v", v)
		}
		if v > maxElev {
			maxElev = v
		}
	}
	if maxElev < 50 {
		t.Errorf("expected at least one substantial hill, max elevation %v", maxElev)
	}

	for i := range state.slope.data {
		if s := state.slope.data[i]; s < 0 || s >= 90 {
			t.Fatalf("slope out of range at cell %d: %v", i, s)
		}
		if a := state.aspect.data[i]; a < 0 || a >= 360 {
			t.Fatalf("aspect out of range at cell %d: %v", i, a)
		}
	}
}

func TestTerrainDeterministicPerSeed(t *testing.T) {
	ign := []domain.IgnitionPoint{
		{Location: domain.GeoPoint{Latitude: 38.05, Longitude: -122.55}, Intensity: 50},
	}
	a, _ := newGridState(testBounds, 500, ign, testRNG(42), false)
	b, _ := newGridState(testBounds, 500, ign, testRNG(42), false)

	for i := range a.elevation.data {
		if a.elevation.data[i] != b.elevation.data[i] {
			t.Fatalf("same seed must produce identical terrain, cell %d differs", i)
		}
	}

	c, _ := newGridState(testBounds, 500, ign, testRNG(43), false)
	same := true
	for i := range a.elevation.data {
		if a.elevation.data[i] != c.elevation.data[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical terrain")
	}
}

func TestSeedIgnitions(t *testing.T) {
	earlier := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	later := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	state, start := newGridState(testBounds, 500, []domain.IgnitionPoint{
		{Location: domain.GeoPoint{Latitude: 38.05, Longitude: -122.55}, Intensity: 90, DetectionTime: later},
		{Location: domain.GeoPoint{Latitude: 38.02, Longitude: -122.58}, Intensity: 250, DetectionTime: earlier},
	}, testRNG(1), true)

	if !start.Equal(earlier) {
		t.Errorf("start time should be the earliest detection, got %v", start)
	}

	r, c := state.proj.toGrid(38.05, -122.55)
	if got := state.fire.at(r, c); got != 0.9 {
		t.Errorf("intensity 90 should seed as 0.9, got %v", got)
	}
	r, c = state.proj.toGrid(38.02, -122.58)
	if got := state.fire.at(r, c); got != 1.0 {
		t.Errorf("intensity above 100 should clamp to 1.0, got %v", got)
	}
}

func TestSeedIgnitionsDefaultsStartToNow(t *testing.T) {
	before := time.Now().UTC()
	_, start := newGridState(testBounds, 500, []domain.IgnitionPoint{
		{Location: domain.GeoPoint{Latitude: 38.05, Longitude: -122.55}, Intensity: 50},
	}, testRNG(1), true)
	after := time.Now().UTC()

	if start.Before(before) || start.After(after) {
		t.Errorf("start without detection times should default to now, got %v", start)
	}
}

func TestGridCloneIsIndependent(t *testing.T) {
	g := newGrid(3, 3)
	g.set(1, 1, 0.5)

	c := g.clone()
	c.set(1, 1, 0.9)

	if g.at(1, 1) != 0.5 {
		t.Errorf("mutating a clone leaked into the original: %v", g.at(1, 1))
	}
}
