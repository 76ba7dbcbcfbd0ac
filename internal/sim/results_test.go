package sim

import (
	"context"
	"testing"
	"time"

	"github.com/Tom-Shanks/FireSight-AI/internal/core/domain"
)

func TestSelectSnapshots(t *testing.T) {
	cases := []struct {
		n, want  int
		lastIdx  int
		maxCount int
	}{
		{48, 10, 47, 14},
		{5, 10, 4, 5},
		{1, 10, 0, 1},
		{100, 10, 99, 11},
	}
	for _, tc := range cases {
		idx := selectSnapshots(tc.n, tc.want)
		if len(idx) == 0 {
			t.Fatalf("n=%d: empty selection", tc.n)
		}
		if got := idx[len(idx)-1]; got != tc.lastIdx {
			t.Errorf("n=%d: last selected index = %d, want %d", tc.n, got, tc.lastIdx)
		}
		if len(idx) > tc.maxCount {
			t.Errorf("n=%d: selected %d indices, want at most %d", tc.n, len(idx), tc.maxCount)
		}
		for i := 1; i < len(idx); i++ {
			if idx[i] <= idx[i-1] {
				t.Fatalf("n=%d: selection not strictly increasing: %v", tc.n, idx)
			}
		}
	}
}

func TestIntensityRasterMapsBurnedOutToFull(t *testing.T) {
	s, err := New(centerIgnition(50), testBounds, Config{}, domain.WeatherSnapshot{}, WithSeed(1), WithFlatTerrain())
	if err != nil {
		t.Fatal(err)
	}

	f := newGrid(s.state.fire.rows, s.state.fire.cols)
	f.set(0, 0, burnedOut)
	f.set(0, 1, 0.4)

	raster := s.intensityRaster(f)
	if len(raster) != f.rows || len(raster[0]) != f.cols {
		t.Fatalf("small grids must not be downsampled: %dx%d", len(raster), len(raster[0]))
	}
	if raster[0][0] != 1.0 {
		t.Errorf("burned-out cells should render at full intensity, got %v", raster[0][0])
	}
	if raster[0][1] != 0.4 {
		t.Errorf("burning cells should keep their value, got %v", raster[0][1])
	}
}

func TestIntensityRasterDownsamplesLargeGrids(t *testing.T) {
	s, err := New(centerIgnition(50), testBounds, Config{}, domain.WeatherSnapshot{}, WithSeed(1), WithFlatTerrain())
	if err != nil {
		t.Fatal(err)
	}

	f := newGrid(250, 40)
	raster := s.intensityRaster(f)
	if len(raster) > maxRasterDim+maxRasterDim/2 {
		t.Errorf("expected the long axis roughly halved to fit, got %d rows", len(raster))
	}
	if len(raster[0]) >= 40 && len(raster) >= 250 {
		t.Error("large grid was not downsampled at all")
	}
}

func TestRunResultShape(t *testing.T) {
	cfg := Config{ResolutionMeters: 500, SimulationHours: 6, TimeStepMinutes: 30}
	wx := domain.WeatherSnapshot{WindSpeedMps: 6, WindDirectionDeg: 270, Humidity: 25, Temperature: 30}
	s, err := New(centerIgnition(80), testBounds, cfg, wx, WithSeed(9))
	if err != nil {
		t.Fatal(err)
	}

	res, err := s.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(res.Perimeters) == 0 || len(res.IntensityGrid) == 0 {
		t.Fatal("expected at least one timestamped entry in each map")
	}
	for key := range res.Perimeters {
		if _, err := time.Parse(time.RFC3339, key); err != nil {
			t.Errorf("perimeter key %q is not RFC 3339: %v", key, err)
		}
		if _, ok := res.IntensityGrid[key]; !ok {
			t.Errorf("intensity grid missing entry for %q", key)
		}
	}

	md := res.Metadata
	if md.ModelVersion != ModelVersion {
		t.Errorf("model version = %q", md.ModelVersion)
	}
	if md.ResolutionMeters != 500 {
		t.Errorf("resolution = %d", md.ResolutionMeters)
	}
	if md.GridSize != s.Size() {
		t.Errorf("grid size %+v != %+v", md.GridSize, s.Size())
	}
	if md.Weather != wx {
		t.Errorf("weather not echoed back: %+v", md.Weather)
	}
	if md.Statistics.InitialBurningCells != 1 {
		t.Errorf("initial burning cells = %d, want 1", md.Statistics.InitialBurningCells)
	}
	if md.Statistics.TotalBurnedCells < md.Statistics.InitialBurningCells {
		t.Errorf("total burned %d below initial %d",
			md.Statistics.TotalBurnedCells, md.Statistics.InitialBurningCells)
	}
	if md.Statistics.TimeStepsSimulated != len(s.History()) {
		t.Errorf("steps %d != history length %d",
			md.Statistics.TimeStepsSimulated, len(s.History()))
	}

	wantStart := testDetectionTime.Add(30 * time.Minute).Format(time.RFC3339)
	if md.StartTime != wantStart {
		t.Errorf("start time %q, want %q", md.StartTime, wantStart)
	}
}
