package usecases

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/Tom-Shanks/FireSight-AI/internal/core/domain"
	"github.com/Tom-Shanks/FireSight-AI/internal/core/ports"
)

// ModelCache holds the risk model's feature weights. It is an explicit
// object owned by the caller and shared between requests, never a package
// global, so tests can build isolated instances with their own weights.
type ModelCache struct {
	mu      sync.RWMutex
	weights map[string]float64
}

// NewModelCache returns a cache preloaded with the default feature weights.
func NewModelCache() *ModelCache {
	return &ModelCache{weights: map[string]float64{
		"ndvi":              0.2,
		"erc":               0.15,
		"vpd":               0.1,
		"pdsi":              0.1,
		"temperature":       0.1,
		"relative_humidity": 0.1,
		"wind_speed":        0.1,
		"precipitation":     0.05,
		"elevation":         0.05,
		"slope":             0.03,
		"aspect":            0.02,
	}}
}

// Weights returns a copy of the current feature weights.
func (c *ModelCache) Weights() map[string]float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]float64, len(c.weights))
	for k, v := range c.weights {
		out[k] = v
	}
	return out
}

// SetWeights replaces the feature weights, e.g. after retraining.
func (c *ModelCache) SetWeights(weights map[string]float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.weights = weights
}

// riskFeatures is the full feature vector for one location and day.
type riskFeatures struct {
	temperature   float64
	humidity      float64
	windSpeed     float64
	precipitation float64
	elevation     float64
	slope         float64
	aspect        float64
	ndvi          float64
	erc           float64
	vpd           float64
	pdsi          float64
}

// RiskService scores wildfire risk for a location. Terrain and vegetation
// inputs are synthesized until real DEM and satellite-index feeds exist; the
// weighted scoring over them is the production path.
type RiskService struct {
	weather ports.WeatherService
	model   *ModelCache
	rng     *rand.Rand

	forecastDays int
}

// NewRiskService creates a new RiskService. The rng drives synthetic terrain
// and vegetation sampling; pass a seeded source for reproducible output.
func NewRiskService(weather ports.WeatherService, model *ModelCache, rng *rand.Rand) *RiskService {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), 0))
	}
	return &RiskService{weather: weather, model: model, rng: rng, forecastDays: 5}
}

// Predict scores current risk at a location and forecasts it over the coming
// days. Confidence is a fixed 0.85 until the model reports a real one.
func (s *RiskService) Predict(ctx context.Context, loc domain.GeoPoint, radiusKm float64) (*domain.RiskAssessment, error) {
	if loc.Latitude < -90 || loc.Latitude > 90 || loc.Longitude < -180 || loc.Longitude > 180 {
		return nil, fmt.Errorf("%w: location out of range", ErrInvalidRequest)
	}
	if radiusKm <= 0 {
		radiusKm = 10
	}

	wx, err := s.weather.Current(ctx, loc)
	if err != nil {
		return nil, fmt.Errorf("fetch weather: %w", err)
	}

	terrainElev, terrainSlope, terrainAspect := s.sampleTerrain(loc)
	ndvi, erc, vpd, pdsi := s.sampleVegetation()

	base := riskFeatures{
		temperature: wx.Temperature,
		humidity:    wx.Humidity,
		windSpeed:   wx.WindSpeedMps,
		elevation:   terrainElev,
		slope:       terrainSlope,
		aspect:      terrainAspect,
		ndvi:        ndvi,
		erc:         erc,
		vpd:         vpd,
		pdsi:        pdsi,
	}

	weights := s.model.Weights()
	score := scoreRisk(base, weights)

	assessment := &domain.RiskAssessment{
		Location:   loc,
		RiskScore:  round3(score),
		Confidence: 0.85,
		Factors:    normalizeWeights(weights),
	}

	forecast, err := s.weather.Forecast(ctx, loc, s.forecastDays)
	if err != nil {
		// Risk without a forecast is still useful.
		return assessment, nil
	}
	for _, day := range forecast {
		f := base
		f.temperature = day.Temperature
		f.humidity = day.Humidity
		f.windSpeed = day.WindSpeedMps
		f.precipitation = day.Precipitation

		assessment.ForecastDates = append(assessment.ForecastDates, day.Date.Format("2006-01-02"))
		assessment.ForecastValues = append(assessment.ForecastValues, round3(scoreRisk(f, weights)))
	}

	return assessment, nil
}

// sampleTerrain synthesizes elevation, slope and aspect for a location.
// Elevation peaks in the mid-latitudes, mirroring the western-US terrain the
// service targets.
func (s *RiskService) sampleTerrain(loc domain.GeoPoint) (elev, slope, aspect float64) {
	base := 500 + 1000*math.Exp(-(loc.Latitude-40)*(loc.Latitude-40)/400)
	elev = base + s.rng.NormFloat64()*100
	slope = s.rng.Float64() * 30
	aspect = s.rng.Float64() * 360
	return elev, slope, aspect
}

// sampleVegetation synthesizes NDVI, ERC, VPD and PDSI readings.
func (s *RiskService) sampleVegetation() (ndvi, erc, vpd, pdsi float64) {
	ndvi = 0.2 + s.rng.Float64()*0.6
	erc = 30 + s.rng.Float64()*50
	vpd = 0.5 + s.rng.Float64()*2.5
	pdsi = -4 + s.rng.Float64()*8
	return ndvi, erc, vpd, pdsi
}

// scoreRisk maps each feature onto a [0,1] riskiness and blends them by the
// model weights. The result is a [0,1] score.
func scoreRisk(f riskFeatures, weights map[string]float64) float64 {
	contributions := map[string]float64{
		"ndvi":              unit(f.ndvi, 0.2, 0.8),
		"erc":               unit(f.erc, 30, 80),
		"vpd":               unit(f.vpd, 0.5, 3.0),
		"pdsi":              unit(-f.pdsi, -4, 4), // drought (negative PDSI) raises risk
		"temperature":       unit(f.temperature, 0, 45),
		"relative_humidity": 1 - unit(f.humidity, 0, 100),
		"wind_speed":        unit(f.windSpeed, 0, 20),
		"precipitation":     1 - unit(f.precipitation, 0, 10),
		"elevation":         1 - unit(f.elevation, 0, 3000),
		"slope":             unit(f.slope, 0, 45),
		"aspect":            (1 + math.Cos((f.aspect-180)*math.Pi/180)) / 2, // south-facing slopes dry out fastest
	}

	var total, weighted float64
	for name, w := range weights {
		if contrib, ok := contributions[name]; ok {
			weighted += w * contrib
			total += w
		}
	}
	if total == 0 {
		return 0
	}
	return weighted / total
}

func normalizeWeights(weights map[string]float64) map[string]float64 {
	var total float64
	for _, w := range weights {
		total += w
	}
	out := make(map[string]float64, len(weights))
	if total == 0 {
		return out
	}
	for name, w := range weights {
		out[name] = round3(w / total)
	}
	return out
}

func unit(v, lo, hi float64) float64 {
	if hi == lo {
		return 0
	}
	u := (v - lo) / (hi - lo)
	return math.Max(0, math.Min(1, u))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
