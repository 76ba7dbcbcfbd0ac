package sim

import (
	"time"

	"github.com/Tom-Shanks/FireSight-AI/internal/core/domain"
)

// Dimensions above which intensity rasters are stride-subsampled before being
// returned to callers.
const maxRasterDim = 100

// results turns the accumulated snapshot history into the externally
// consumed structure: perimeters and intensity rasters at roughly ten
// representative timestamps plus the final one, and summary statistics taken
// from the first and last snapshots.
func (s *Simulator) results() *domain.SpreadResult {
	res := &domain.SpreadResult{
		Perimeters:    make(map[string][][]domain.GeoPoint),
		IntensityGrid: make(map[string][][]float64),
	}
	if len(s.history) == 0 {
		return res
	}

	selected := selectSnapshots(len(s.history), 10)
	for _, idx := range selected {
		snap := s.history[idx]
		key := snap.Time.UTC().Format(time.RFC3339)

		polys, _ := s.extractPerimeters(snap.fire)
		res.Perimeters[key] = polys
		res.IntensityGrid[key] = s.intensityRaster(snap.fire)
	}

	first, last := s.history[0].fire, s.history[len(s.history)-1].fire
	var initial, everBurned int
	for _, v := range first.data {
		if v > 0 {
			initial++
		}
	}
	for _, v := range last.data {
		if v > 0 || v < 0 {
			everBurned++
		}
	}
	cellKm := float64(s.cfg.ResolutionMeters) / 1000

	res.Metadata = domain.SpreadMetadata{
		ModelVersion:     ModelVersion,
		StartTime:        s.history[0].Time.UTC().Format(time.RFC3339),
		EndTime:          s.history[len(s.history)-1].Time.UTC().Format(time.RFC3339),
		ResolutionMeters: s.cfg.ResolutionMeters,
		GridSize:         s.Size(),
		Bounds:           s.bounds,
		Weather:          s.weather,
		Fuel: domain.FuelParameters{
			FuelDepth: s.fuelMod.Depth,
			FuelLoad:  s.fuelMod.Load,
			Moisture:  s.state.moisture.at(0, 0),
		},
		Statistics: domain.FireStatistics{
			InitialBurningCells: initial,
			TotalBurnedCells:    everBurned,
			AreaBurnedSqKm:      float64(everBurned) * cellKm * cellKm,
			TimeStepsSimulated:  len(s.history),
			DurationHours:       s.cfg.SimulationHours,
		},
	}
	return res
}

// selectSnapshots picks a uniform stride over n history entries yielding
// about `want` of them, always including the last entry.
func selectSnapshots(n, want int) []int {
	var idx []int
	if n > want {
		stride := n / want
		if stride < 1 {
			stride = 1
		}
		for i := 0; i < n; i += stride {
			idx = append(idx, i)
		}
	} else {
		for i := 0; i < n; i++ {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 || idx[len(idx)-1] != n-1 {
		idx = append(idx, n-1)
	}
	return idx
}

// intensityRaster converts a fire grid into a row-major [0,1] raster for
// visualization: burned-out cells are shown as full intensity, and grids
// larger than maxRasterDim on either axis are stride-subsampled.
func (s *Simulator) intensityRaster(f *grid) [][]float64 {
	factor := 1
	if f.rows > maxRasterDim || f.cols > maxRasterDim {
		longest := f.rows
		if f.cols > longest {
			longest = f.cols
		}
		factor = longest / maxRasterDim
		if factor < 1 {
			factor = 1
		}
	}

	var raster [][]float64
	for r := 0; r < f.rows; r += factor {
		var rowVals []float64
		for c := 0; c < f.cols; c += factor {
			v := f.at(r, c)
			if v < 0 {
				v = 1.0
			}
			rowVals = append(rowVals, v)
		}
		raster = append(raster, rowVals)
	}
	return raster
}
