package sim

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/Tom-Shanks/FireSight-AI/internal/core/domain"
)

// Cell state encoding in the fire grid: 0 = unburned, (0,1] = burning at that
// normalized intensity, -1 = burned out. Burned out is terminal.
const burnedOut = -1.0

// grid stores a 2D layer of float64 cell values in row-major order.
type grid struct {
	rows, cols int
	data       []float64
}

func newGrid(rows, cols int) *grid {
	return &grid{rows: rows, cols: cols, data: make([]float64, rows*cols)}
}

func (g *grid) at(row, col int) float64     { return g.data[row*g.cols+col] }
func (g *grid) set(row, col int, v float64) { g.data[row*g.cols+col] = v }

func (g *grid) fill(v float64) {
	for i := range g.data {
		g.data[i] = v
	}
}

// clone returns an independent copy sharing nothing with the receiver.
func (g *grid) clone() *grid {
	c := &grid{rows: g.rows, cols: g.cols, data: make([]float64, len(g.data))}
	copy(c.data, g.data)
	return c
}

// gridState owns every layer of the simulation: fire state, fuel, moisture,
// elevation, slope and aspect, all at identical dimensions. It is built once
// per simulator instance and mutated only by the stepper.
type gridState struct {
	proj projector

	fire      *grid
	fuel      *grid
	moisture  *grid
	elevation *grid
	slope     *grid
	aspect    *grid
}

const (
	terrainHills    = 5
	defaultMoisture = 0.1
	defaultFuelLoad = 1.0
)

// newGridState builds all layers, synthesizes terrain from the given RNG, and
// seeds the ignition points. It returns the state and the run start time (the
// earliest ignition detection time, or now when none carries one).
func newGridState(bounds domain.Bounds, cellSize float64, ignitions []domain.IgnitionPoint, rng *rand.Rand, flatTerrain bool) (*gridState, time.Time) {
	proj := newProjector(bounds, cellSize)
	s := &gridState{
		proj:      proj,
		fire:      newGrid(proj.rows, proj.cols),
		fuel:      newGrid(proj.rows, proj.cols),
		moisture:  newGrid(proj.rows, proj.cols),
		elevation: newGrid(proj.rows, proj.cols),
		slope:     newGrid(proj.rows, proj.cols),
		aspect:    newGrid(proj.rows, proj.cols),
	}

	s.fuel.fill(defaultFuelLoad)
	s.moisture.fill(defaultMoisture)

	if !flatTerrain {
		s.synthesizeTerrain(rng, cellSize)
	}

	start := s.seedIgnitions(ignitions)
	return s, start
}

// synthesizeTerrain builds elevation as a sum of randomly placed Gaussian
// hills over the normalized grid extent, then derives slope and aspect from
// the elevation gradient.
func (s *gridState) synthesizeTerrain(rng *rand.Rand, cellSize float64) {
	rows, cols := s.fire.rows, s.fire.cols

	type hill struct{ cx, cy, height, width float64 }
	hills := make([]hill, terrainHills)
	for i := range hills {
		hills[i] = hill{
			cx:     rng.Float64(),
			cy:     rng.Float64(),
			height: 100 + rng.Float64()*400,
			width:  0.1 + rng.Float64()*0.2,
		}
	}

	for r := 0; r < rows; r++ {
		ny := normCoord(r, rows)
		for c := 0; c < cols; c++ {
			nx := normCoord(c, cols)
			var elev float64
			for _, h := range hills {
				dx, dy := nx-h.cx, ny-h.cy
				elev += h.height * math.Exp(-(dx*dx+dy*dy)/(h.width*h.width))
			}
			s.elevation.set(r, c, elev)
		}
	}

	s.deriveSlopeAspect(cellSize)
}

// normCoord maps index i of an n-cell axis into [0,1].
func normCoord(i, n int) float64 {
	if n <= 1 {
		return 0
	}
	return float64(i) / float64(n-1)
}

// deriveSlopeAspect computes the elevation gradient with central differences
// (one-sided at the edges), slope in degrees from horizontal, and aspect in
// degrees from north normalized to [0,360).
func (s *gridState) deriveSlopeAspect(cellSize float64) {
	rows, cols := s.fire.rows, s.fire.cols

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			gy := s.gradientAlongRows(r, c, cellSize)
			gx := s.gradientAlongCols(r, c, cellSize)

			slope := math.Atan(math.Sqrt(gx*gx+gy*gy)) * 180 / math.Pi
			aspect := math.Atan2(-gx, gy) * 180 / math.Pi
			aspect = math.Mod(aspect+360, 360)

			s.slope.set(r, c, slope)
			s.aspect.set(r, c, aspect)
		}
	}
}

func (s *gridState) gradientAlongRows(r, c int, spacing float64) float64 {
	rows := s.fire.rows
	switch {
	case rows == 1:
		return 0
	case r == 0:
		return (s.elevation.at(1, c) - s.elevation.at(0, c)) / spacing
	case r == rows-1:
		return (s.elevation.at(rows-1, c) - s.elevation.at(rows-2, c)) / spacing
	default:
		return (s.elevation.at(r+1, c) - s.elevation.at(r-1, c)) / (2 * spacing)
	}
}

func (s *gridState) gradientAlongCols(r, c int, spacing float64) float64 {
	cols := s.fire.cols
	switch {
	case cols == 1:
		return 0
	case c == 0:
		return (s.elevation.at(r, 1) - s.elevation.at(r, 0)) / spacing
	case c == cols-1:
		return (s.elevation.at(r, cols-1) - s.elevation.at(r, cols-2)) / spacing
	default:
		return (s.elevation.at(r, c+1) - s.elevation.at(r, c-1)) / (2 * spacing)
	}
}

// seedIgnitions writes each ignition point's normalized intensity into the
// fire grid. Seeding intentionally does not require fuel at the cell: only
// propagation checks fuel, so a directly seeded ignition on a fuel-free cell
// simply burns in place without spreading.
func (s *gridState) seedIgnitions(ignitions []domain.IgnitionPoint) time.Time {
	var earliest time.Time
	for _, ign := range ignitions {
		row, col := s.proj.toGrid(ign.Location.Latitude, ign.Location.Longitude)
		s.fire.set(row, col, clampFloat(ign.Intensity/100, 0, 1))

		if !ign.DetectionTime.IsZero() && (earliest.IsZero() || ign.DetectionTime.Before(earliest)) {
			earliest = ign.DetectionTime
		}
	}
	if earliest.IsZero() {
		earliest = time.Now().UTC()
	}
	return earliest
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
