package sim

import (
	"math"

	"github.com/Tom-Shanks/FireSight-AI/internal/core/domain"
)

const metersPerDegreeLat = 111320.0

// projector maps geographic coordinates onto the simulation's local planar
// grid. The projection is an equirectangular approximation centered on the
// UTM zone picked from the bounds' central longitude; it is locally flat and
// meter-based, not a geodetically exact UTM transform. Round-tripping a point
// through toGrid/toGeo moves it to its containing cell's center, so the
// transforms are bijective only up to one cell of resolution.
type projector struct {
	rows, cols int
	cellSize   float64

	lonOrigin float64 // central meridian of the estimated UTM zone, degrees
	mLon      float64 // meters per degree of longitude at the bounds' center
	minX      float64 // easting of MinLon, meters
	minY      float64 // northing of MinLat, meters
}

// newProjector derives grid dimensions from the bounds: one cell per
// cellSize meters of span, rounded up, plus one.
func newProjector(bounds domain.Bounds, cellSize float64) projector {
	center := bounds.Center()
	zone := int(math.Floor(center.Longitude/6)) + 31
	lonOrigin := float64(zone-31)*6 + 3 // zone central meridian
	mLon := metersPerDegreeLat * math.Cos(center.Latitude*math.Pi/180)

	p := projector{
		cellSize:  cellSize,
		lonOrigin: lonOrigin,
		mLon:      mLon,
		minX:      (bounds.MinLon - lonOrigin) * mLon,
		minY:      bounds.MinLat * metersPerDegreeLat,
	}

	maxX := (bounds.MaxLon - lonOrigin) * mLon
	maxY := bounds.MaxLat * metersPerDegreeLat
	p.cols = int(math.Ceil((maxX-p.minX)/cellSize)) + 1
	p.rows = int(math.Ceil((maxY-p.minY)/cellSize)) + 1
	return p
}

// toGrid maps a geographic point to grid indices. Out-of-range inputs are
// clamped to the grid edge, never rejected. Row 0 is the southern edge.
func (p projector) toGrid(lat, lon float64) (row, col int) {
	x := (lon-p.lonOrigin)*p.mLon - p.minX
	y := lat*metersPerDegreeLat - p.minY

	col = clampInt(int(math.Floor(x/p.cellSize)), 0, p.cols-1)
	row = clampInt(int(math.Floor(y/p.cellSize)), 0, p.rows-1)
	return row, col
}

// toGeo maps grid indices to the geographic coordinates of the cell center.
func (p projector) toGeo(row, col int) (lat, lon float64) {
	x := p.minX + float64(col)*p.cellSize + p.cellSize/2
	y := p.minY + float64(row)*p.cellSize + p.cellSize/2

	lat = y / metersPerDegreeLat
	lon = x/p.mLon + p.lonOrigin
	return lat, lon
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
