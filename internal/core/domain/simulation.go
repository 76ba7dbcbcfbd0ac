package domain

import "time"

// IgnitionPoint seeds fire at a location when a simulation starts.
type IgnitionPoint struct {
	Location      GeoPoint  `json:"location" validate:"required"`
	Intensity     float64   `json:"intensity" validate:"gte=0"`
	DetectionTime time.Time `json:"detection_time"`
}

// WeatherSnapshot holds the weather conditions a simulation runs under.
// Wind direction uses the meteorological "blowing from" convention,
// degrees clockwise from north.
type WeatherSnapshot struct {
	WindSpeedMps     float64 `json:"wind_speed"`
	WindDirectionDeg float64 `json:"wind_direction"`
	Humidity         float64 `json:"relative_humidity"`
	Temperature      float64 `json:"temperature"`
}

// ForecastEntry is one day of forecast weather.
type ForecastEntry struct {
	Date          time.Time `json:"date"`
	Temperature   float64   `json:"temperature"`
	Humidity      float64   `json:"relative_humidity"`
	WindSpeedMps  float64   `json:"wind_speed"`
	Precipitation float64   `json:"precipitation"`
}

// GridSize describes the simulation grid dimensions.
type GridSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// FireStatistics summarises the outcome of one simulation run.
type FireStatistics struct {
	InitialBurningCells int     `json:"initial_burning_cells"`
	TotalBurnedCells    int     `json:"total_burned_cells"`
	AreaBurnedSqKm      float64 `json:"area_burned_sqkm"`
	TimeStepsSimulated  int     `json:"time_steps_simulated"`
	DurationHours       int     `json:"simulation_duration_hours"`
}

// FuelParameters describes the (uniform) fuel bed used by a run.
type FuelParameters struct {
	FuelDepth float64 `json:"fuel_depth"`
	FuelLoad  float64 `json:"fuel_load"`
	Moisture  float64 `json:"moisture"`
}

// SpreadMetadata packages run parameters and statistics for consumers.
type SpreadMetadata struct {
	ModelVersion     string          `json:"model_version"`
	StartTime        string          `json:"simulation_start_time"`
	EndTime          string          `json:"simulation_end_time"`
	ResolutionMeters int             `json:"resolution_meters"`
	GridSize         GridSize        `json:"grid_size"`
	Bounds           Bounds          `json:"bounds"`
	Weather          WeatherSnapshot `json:"weather_conditions"`
	Fuel             FuelParameters  `json:"fuel_parameters"`
	Statistics       FireStatistics  `json:"fire_statistics"`
}

// SpreadResult is the externally consumed output of a fire-spread simulation.
// Perimeters and IntensityGrid are keyed by RFC 3339 timestamps.
type SpreadResult struct {
	Perimeters    map[string][][]GeoPoint `json:"perimeters"`
	IntensityGrid map[string][][]float64  `json:"intensity_grid"`
	Metadata      SpreadMetadata          `json:"metadata"`
}

// RiskAssessment is the output of the risk-prediction model.
type RiskAssessment struct {
	Location       GeoPoint           `json:"location"`
	RiskScore      float64            `json:"risk_score"`
	Confidence     float64            `json:"confidence"`
	Factors        map[string]float64 `json:"factors"`
	ForecastDates  []string           `json:"forecast_dates"`
	ForecastValues []float64          `json:"forecast_values"`
}

// DamageReport is the output of the damage-assessment model.
type DamageReport struct {
	BurnedAreaSqKm         float64            `json:"burned_area_sqkm"`
	VegetationDamage       map[string]float64 `json:"vegetation_damage"`
	InfrastructureImpact   map[string]int     `json:"infrastructure_impact"`
	RecoveryEstimateMonths float64            `json:"recovery_estimate_months"`
}
