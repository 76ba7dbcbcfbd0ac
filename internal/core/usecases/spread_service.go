package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"log/slog"
	"time"

	"github.com/Tom-Shanks/FireSight-AI/internal/core/domain"
	"github.com/Tom-Shanks/FireSight-AI/internal/core/ports"
	"github.com/Tom-Shanks/FireSight-AI/internal/pkg/geospatial"
	"github.com/Tom-Shanks/FireSight-AI/internal/pkg/metrics"
	"github.com/Tom-Shanks/FireSight-AI/internal/sim"
)

// Simulation bounds are the ignition extent plus this buffer on every side.
const boundsBufferKm = 10.0

// SpreadRequest carries the validated parameters of one simulation request.
type SpreadRequest struct {
	Ignitions        []domain.IgnitionPoint
	SimulationHours  int
	ResolutionMeters int
	Seed             *uint64
}

// SpreadService runs fire-spread simulations.
type SpreadService struct {
	weather   ports.WeatherService
	cache     ports.CacheService
	publisher ports.EventPublisher

	maxGridCells int
	cacheTTL     int
}

// NewSpreadService creates a new SpreadService. Cache and publisher may be
// nil; the service degrades to uncached, unpublished operation.
func NewSpreadService(
	weather ports.WeatherService,
	cache ports.CacheService,
	publisher ports.EventPublisher,
	maxGridCells, cacheTTLSeconds int,
) *SpreadService {
	if maxGridCells <= 0 {
		maxGridCells = 250_000
	}
	return &SpreadService{
		weather:      weather,
		cache:        cache,
		publisher:    publisher,
		maxGridCells: maxGridCells,
		cacheTTL:     cacheTTLSeconds,
	}
}

// Simulate runs one fire-spread simulation to completion. Seeded requests are
// deterministic and therefore cacheable; unseeded requests always run fresh.
func (s *SpreadService) Simulate(ctx context.Context, req SpreadRequest) (*domain.SpreadResult, error) {
	if err := s.validate(&req); err != nil {
		return nil, err
	}

	var cacheKey string
	if req.Seed != nil && s.cache != nil {
		cacheKey = s.cacheKey(req)
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var res domain.SpreadResult
			if err := json.Unmarshal(data, &res); err == nil {
				metrics.CacheHits.WithLabelValues("simulate").Inc()
				return &res, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("simulate").Inc()
	}

	points := make([]domain.GeoPoint, len(req.Ignitions))
	for i, ign := range req.Ignitions {
		points[i] = ign.Location
	}
	bounds := geospatial.BoundsWithBuffer(points, boundsBufferKm)

	wx, err := s.weather.Current(ctx, bounds.Center())
	if err != nil {
		return nil, fmt.Errorf("fetch weather: %w", err)
	}

	cfg := sim.Config{
		ResolutionMeters: req.ResolutionMeters,
		SimulationHours:  req.SimulationHours,
	}
	var opts []sim.Option
	if req.Seed != nil {
		opts = append(opts, sim.WithSeed(*req.Seed))
	}

	simulator, err := sim.New(req.Ignitions, bounds, cfg, *wx, opts...)
	if err != nil {
		return nil, err
	}
	if size := simulator.Size(); size.Width*size.Height > s.maxGridCells {
		return nil, fmt.Errorf("%w: requested grid of %d cells exceeds the limit of %d; reduce the area or coarsen the resolution",
			ErrInvalidRequest,
			size.Width*size.Height, s.maxGridCells)
	}

	start := time.Now()
	res, err := simulator.Run(ctx)
	if err != nil {
		metrics.ObserveRun("error", time.Since(start), len(simulator.History()), 0)
		return nil, fmt.Errorf("simulation failed: %w", err)
	}
	stats := res.Metadata.Statistics
	metrics.ObserveRun("ok", time.Since(start), stats.TimeStepsSimulated, stats.TotalBurnedCells)

	if s.publisher != nil {
		if data, err := json.Marshal(res.Metadata); err == nil {
			if err := s.publisher.PublishSimulationDone(ctx, data); err != nil {
				slog.Warn("publish simulation result failed", "error", err)
			}
		}
	}

	if cacheKey != "" {
		if data, err := json.Marshal(res); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, s.cacheTTL)
		}
	}

	return res, nil
}

func (s *SpreadService) validate(req *SpreadRequest) error {
	if len(req.Ignitions) == 0 {
		return fmt.Errorf("%w: at least one ignition point is required", ErrInvalidRequest)
	}
	for i, ign := range req.Ignitions {
		if ign.Location.Latitude < -90 || ign.Location.Latitude > 90 ||
			ign.Location.Longitude < -180 || ign.Location.Longitude > 180 {
			return fmt.Errorf("%w: ignition %d: location out of range", ErrInvalidRequest, i)
		}
		if ign.Intensity < 0 {
			return fmt.Errorf("%w: ignition %d: intensity must be non-negative", ErrInvalidRequest, i)
		}
	}
	if req.SimulationHours == 0 {
		req.SimulationHours = 24
	}
	if req.SimulationHours < 1 || req.SimulationHours > 72 {
		return fmt.Errorf("%w: simulation_hours must be in [1,72], got %d", ErrInvalidRequest, req.SimulationHours)
	}
	if req.ResolutionMeters == 0 {
		req.ResolutionMeters = 500
	}
	if req.ResolutionMeters < 100 || req.ResolutionMeters > 1000 {
		return fmt.Errorf("%w: resolution_meters must be in [100,1000], got %d", ErrInvalidRequest, req.ResolutionMeters)
	}
	return nil
}

// cacheKey hashes everything that determines a seeded run's output.
func (s *SpreadService) cacheKey(req SpreadRequest) string {
	h := fnv.New64a()
	enc := json.NewEncoder(h)
	_ = enc.Encode(req.Ignitions)
	fmt.Fprintf(h, "%d:%d:%d", req.SimulationHours, req.ResolutionMeters, *req.Seed)
	return fmt.Sprintf("sim:spread:%x", h.Sum64())
}
