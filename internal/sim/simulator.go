// Package sim implements a cellular-automaton wildfire spread simulator based
// on a simplified Rothermel surface-fire model. A Simulator owns its grids
// exclusively: one instance serves one run and is discarded afterwards.
package sim

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/Tom-Shanks/FireSight-AI/internal/core/domain"
)

// ModelVersion tags results produced by this simulator.
const ModelVersion = "1.0.0"

// Config holds the tunable parameters of one simulation run.
type Config struct {
	ResolutionMeters int // grid cell size, [100,1000]
	SimulationHours  int // duration budget, [1,72]
	TimeStepMinutes  int // step length; defaults to 30
}

func (c *Config) applyDefaults() {
	if c.ResolutionMeters == 0 {
		c.ResolutionMeters = 500
	}
	if c.SimulationHours == 0 {
		c.SimulationHours = 24
	}
	if c.TimeStepMinutes == 0 {
		c.TimeStepMinutes = 30
	}
}

// Snapshot is the fire grid as it stood at one simulated instant. History is
// ordered and append-only.
type Snapshot struct {
	Time time.Time
	fire *grid
}

// Simulator advances a fire-state grid through discrete time steps. It is not
// safe for concurrent use; each run gets its own instance.
type Simulator struct {
	cfg     Config
	bounds  domain.Bounds
	weather domain.WeatherSnapshot
	fuelMod FuelModel
	rng     *rand.Rand

	state   *gridState
	history []Snapshot
	current time.Time
	stepN   int
}

// Option customises simulator construction.
type Option func(*simOptions)

type simOptions struct {
	rng         *rand.Rand
	fuelModel   *FuelModel
	flatTerrain bool
}

// WithRand injects the random source used for terrain synthesis and
// stochastic ignition. A fixed seed reproduces an identical run.
func WithRand(rng *rand.Rand) Option {
	return func(o *simOptions) { o.rng = rng }
}

// WithSeed is shorthand for WithRand over a PCG source seeded with seed.
func WithSeed(seed uint64) Option {
	return func(o *simOptions) { o.rng = rand.New(rand.NewPCG(seed, 0)) }
}

// WithFuelModel overrides the default uniform fuel bed.
func WithFuelModel(fm FuelModel) Option {
	return func(o *simOptions) { o.fuelModel = &fm }
}

// WithFlatTerrain skips terrain synthesis, leaving elevation, slope and
// aspect at zero everywhere.
func WithFlatTerrain() Option {
	return func(o *simOptions) { o.flatTerrain = true }
}

// New builds a simulator for the given ignition points, bounds and weather.
// At least one ignition point is required; callers validate intensity ranges
// before reaching this constructor.
func New(ignitions []domain.IgnitionPoint, bounds domain.Bounds, cfg Config, wx domain.WeatherSnapshot, opts ...Option) (*Simulator, error) {
	if len(ignitions) == 0 {
		return nil, fmt.Errorf("sim: at least one ignition point is required")
	}
	if !bounds.Valid() {
		return nil, fmt.Errorf("sim: degenerate bounds %+v", bounds)
	}
	cfg.applyDefaults()

	var o simOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewPCG(rand.Uint64(), 0))
	}
	fm := DefaultFuelModel()
	if o.fuelModel != nil {
		fm = *o.fuelModel
	}

	state, start := newGridState(bounds, float64(cfg.ResolutionMeters), ignitions, o.rng, o.flatTerrain)

	return &Simulator{
		cfg:     cfg,
		bounds:  bounds,
		weather: wx,
		fuelMod: fm,
		rng:     o.rng,
		state:   state,
		current: start,
	}, nil
}

// Size returns the grid dimensions.
func (s *Simulator) Size() domain.GridSize {
	return domain.GridSize{Width: s.state.fire.cols, Height: s.state.fire.rows}
}

// History returns the snapshots accumulated so far. After an aborted run this
// is the partial history, useful for diagnostics; it must not be mistaken for
// a complete result.
func (s *Simulator) History() []Snapshot { return s.history }

// FireAt returns the current fire state of a cell.
func (s *Simulator) FireAt(row, col int) float64 { return s.state.fire.at(row, col) }

// SetFuelAt overrides the fuel load of a single cell before a run starts.
func (s *Simulator) SetFuelAt(row, col int, load float64) { s.state.fuel.set(row, col, load) }

// SetMoisture overrides the uniform fuel moisture fraction.
func (s *Simulator) SetMoisture(fraction float64) { s.state.moisture.fill(fraction) }

// LocateCell projects a geographic point into grid indices.
func (s *Simulator) LocateCell(lat, lon float64) (row, col int) {
	return s.state.proj.toGrid(lat, lon)
}

// Step advances the simulation by one time step. It returns whether any cell
// is still actively spreading; false means the run has terminated, either
// because the fire died down or the time budget is exhausted. All reads for a
// step use the pre-step grid and all writes land in a fresh copy, so cell
// update order cannot bias the outcome.
func (s *Simulator) Step() (bool, error) {
	s.stepN++
	s.current = s.current.Add(time.Duration(s.cfg.TimeStepMinutes) * time.Minute)
	s.history = append(s.history, Snapshot{Time: s.current, fire: s.state.fire.clone()})

	if s.stepN*s.cfg.TimeStepMinutes >= s.cfg.SimulationHours*60 {
		return false, nil
	}

	old := s.state.fire
	next := old.clone()
	cellSize := float64(s.cfg.ResolutionMeters)
	stillBurning := false

	for r := 0; r < old.rows; r++ {
		for c := 0; c < old.cols; c++ {
			v := old.at(r, c)
			if v <= 0 || v >= 1 {
				continue
			}

			maxRate, rates := spreadRates(cellInput{
				fireIntensity: v,
				fuel:          s.state.fuel.at(r, c),
				moisture:      s.state.moisture.at(r, c),
				slopeDeg:      s.state.slope.at(r, c),
				aspectDeg:     s.state.aspect.at(r, c),
			}, s.fuelMod, s.weather)
			if maxRate <= 0 {
				continue
			}
			stillBurning = true

			// Intensify the burning cell; past 0.95 it burns out.
			nv := math.Min(1, next.at(r, c)+0.1)
			if nv >= 0.95 {
				nv = burnedOut
			}
			next.set(r, c, nv)

			for i, d := range directions {
				if rates[i] <= 0 {
					continue
				}
				nr, nc := r+d.dRow, c+d.dCol
				if nr < 0 || nr >= old.rows || nc < 0 || nc >= old.cols {
					continue
				}
				if old.at(nr, nc) < 0 || s.state.fuel.at(nr, nc) <= 0 {
					continue
				}

				distCells := rates[i] * float64(s.cfg.TimeStepMinutes) / cellSize
				prob := math.Min(1, distCells/d.dist)
				if s.rng.Float64() >= prob {
					continue
				}

				ignited := math.Min(0.5, v*rates[i]/maxRate)
				if staged := next.at(nr, nc); staged >= 0 && ignited > staged {
					next.set(nr, nc, ignited)
					stillBurning = true
				}
			}
		}
	}

	if err := checkFinite(next); err != nil {
		return false, fmt.Errorf("sim: step %d: %w", s.stepN, err)
	}

	s.state.fire = next
	return stillBurning, nil
}

// Run executes steps until the fire stops spreading or the time budget is
// exhausted, then aggregates the history into the externally consumed result.
// Cancellation is honored between steps only; a started step always runs to
// completion.
func (s *Simulator) Run(ctx context.Context) (*domain.SpreadResult, error) {
	maxSteps := int(math.Ceil(float64(s.cfg.SimulationHours*60) / float64(s.cfg.TimeStepMinutes)))

	stillBurning := true
	for stillBurning && s.stepN < maxSteps {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		var err error
		stillBurning, err = s.Step()
		if err != nil {
			// History stays on the simulator for diagnostics.
			return nil, err
		}
	}

	return s.results(), nil
}

// checkFinite guards against corrupted numeric state leaking into history.
func checkFinite(g *grid) error {
	for i, v := range g.data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("non-finite fire state %v at cell %d", v, i)
		}
	}
	return nil
}
