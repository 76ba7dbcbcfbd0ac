package sim

import (
	"math"

	"github.com/Tom-Shanks/FireSight-AI/internal/core/domain"
)

// FuelModel holds the Rothermel fuel-bed constants, uniform across the grid.
type FuelModel struct {
	Depth              float64 // fuel bed depth, m
	SurfaceAreaVolume  float64 // surface-area-to-volume ratio, 1/m
	Load               float64 // fuel load, kg/m²
	HeatContent        float64 // J/kg
	MoistureExtinction float64 // fraction above which fire cannot sustain
}

// DefaultFuelModel returns the simplified uniform fuel bed used when callers
// do not override it.
func DefaultFuelModel() FuelModel {
	return FuelModel{
		Depth:              0.3,
		SurfaceAreaVolume:  5000,
		Load:               1.0,
		HeatContent:        18_000_000,
		MoistureExtinction: 0.3,
	}
}

// The eight compass directions fire can spread toward, in fixed order.
// Offsets are (dRow, dCol) with row increasing northward.
var directions = [8]struct {
	name    string
	azimuth float64
	dRow    int
	dCol    int
	dist    float64 // euclidean offset distance in cells
}{
	{"N", 0, 1, 0, 1},
	{"NE", 45, 1, 1, math.Sqrt2},
	{"E", 90, 0, 1, 1},
	{"SE", 135, -1, 1, math.Sqrt2},
	{"S", 180, -1, 0, 1},
	{"SW", 225, -1, -1, math.Sqrt2},
	{"W", 270, 0, -1, 1},
	{"NW", 315, 1, -1, math.Sqrt2},
}

// cellInput carries the per-cell and run-constant parameters the spread-rate
// model needs.
type cellInput struct {
	fireIntensity float64
	fuel          float64
	moisture      float64
	slopeDeg      float64
	aspectDeg     float64
}

// spreadRates computes the maximum and per-direction spread rates (m/min) for
// one cell using a simplified form of Rothermel's surface fire equations.
// Returns all zeros when the cell is not burning, has no fuel, or its
// moisture is at or above the moisture of extinction.
func spreadRates(in cellInput, fm FuelModel, wx domain.WeatherSnapshot) (maxRate float64, rates [8]float64) {
	if in.fireIntensity <= 0 || in.fuel <= 0 || in.moisture >= fm.MoistureExtinction {
		return 0, rates
	}

	// Moisture damping coefficient, clamped to [0,1].
	r := in.moisture / fm.MoistureExtinction
	damping := clampFloat(1-2.59*r+5.11*r*r, 0, 1)

	reactionIntensity := fm.Load * fm.HeatContent * damping
	baseRate := 0.048 * reactionIntensity / (fm.Load * fm.SurfaceAreaVolume)

	windFactor := 1 + 0.5*wx.WindSpeedMps
	slopeFactor := 1 + 0.2*in.slopeDeg

	// Meteorological "blowing from" converted to the direction the wind
	// pushes the fire toward.
	windTowardRad := deg2rad(math.Mod(wx.WindDirectionDeg+180, 360))
	aspectRad := deg2rad(in.aspectDeg)

	for i, d := range directions {
		azRad := deg2rad(d.azimuth)

		windEffect := windFactor * math.Max(0, math.Cos(azRad-windTowardRad))

		slopeDirEffect := 1.0
		if in.slopeDeg > 0 {
			// Strongest upslope, i.e. toward the aspect.
			slopeDirEffect = 1 + 0.5*slopeFactor*math.Max(0, math.Cos(azRad-aspectRad))
		}

		// The floor of 1 means calm flat cells still spread at the base
		// rate in every direction.
		factor := math.Max(1, windEffect*slopeDirEffect)

		rates[i] = baseRate * factor
		if rates[i] > maxRate {
			maxRate = rates[i]
		}
	}
	return maxRate, rates
}

func deg2rad(deg float64) float64 {
	return deg * math.Pi / 180
}
