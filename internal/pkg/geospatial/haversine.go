package geospatial

import (
	"math"

	"github.com/Tom-Shanks/FireSight-AI/internal/core/domain"
)

const earthRadiusKm = 6371.0

// metersPerDegreeLat is the approximate north-south length of one degree.
const metersPerDegreeLat = 111320.0

// Haversine calculates the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c * 1000 // meters
}

// BoundsWithBuffer returns the bounding box of the given points expanded by
// radiusKm on every side. The longitude buffer is scaled by the cosine of the
// box's mean latitude, so the buffer is roughly radiusKm in ground distance.
func BoundsWithBuffer(points []domain.GeoPoint, radiusKm float64) domain.Bounds {
	b := domain.Bounds{MinLat: 90, MaxLat: -90, MinLon: 180, MaxLon: -180}
	for _, p := range points {
		b.MinLat = math.Min(b.MinLat, p.Latitude)
		b.MaxLat = math.Max(b.MaxLat, p.Latitude)
		b.MinLon = math.Min(b.MinLon, p.Longitude)
		b.MaxLon = math.Max(b.MaxLon, p.Longitude)
	}

	latDelta := radiusKm / 111.0
	lonDelta := radiusKm / (111.0 * math.Cos(toRad((b.MinLat+b.MaxLat)/2)))

	b.MinLat -= latDelta
	b.MaxLat += latDelta
	b.MinLon -= lonDelta
	b.MaxLon += lonDelta
	return b
}

// PolygonAreaSqKm computes the planar area of a closed geographic polygon via
// the shoelace formula on a locally flat meters projection. Good enough for
// fire-scale polygons, not for continental ones.
func PolygonAreaSqKm(polygon []domain.GeoPoint) float64 {
	if len(polygon) < 3 {
		return 0
	}

	refLat := 0.0
	for _, p := range polygon {
		refLat += p.Latitude
	}
	refLat /= float64(len(polygon))
	mLon := metersPerDegreeLat * math.Cos(toRad(refLat))

	var sum float64
	n := len(polygon)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		xi, yi := polygon[i].Longitude*mLon, polygon[i].Latitude*metersPerDegreeLat
		xj, yj := polygon[j].Longitude*mLon, polygon[j].Latitude*metersPerDegreeLat
		sum += xi*yj - xj*yi
	}
	return math.Abs(sum) / 2 / 1e6
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
