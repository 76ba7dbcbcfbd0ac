package sim

import (
	"sort"

	"github.com/Tom-Shanks/FireSight-AI/internal/core/domain"
)

// extractPerimeters derives a closed polygon approximating the fire boundary
// of one snapshot. Burning and burned-out cells both count as inside the
// fire. The convex hull loses concavities and interior holes; when the hull
// is degenerate (fewer than three usable points, or all collinear) the
// geographic bounding box of the fire cells is returned instead. The second
// return reports whether that fallback was taken.
func (s *Simulator) extractPerimeters(f *grid) ([][]domain.GeoPoint, bool) {
	var cells []domain.GeoPoint
	for r := 0; r < f.rows; r++ {
		for c := 0; c < f.cols; c++ {
			if v := f.at(r, c); v > 0 || v < 0 {
				lat, lon := s.state.proj.toGeo(r, c)
				cells = append(cells, domain.GeoPoint{Latitude: lat, Longitude: lon})
			}
		}
	}
	if len(cells) == 0 {
		return nil, false
	}

	hull := convexHull(cells)
	if len(hull) < 3 {
		return [][]domain.GeoPoint{boundingBoxPolygon(cells)}, true
	}

	hull = append(hull, hull[0]) // close the ring
	return [][]domain.GeoPoint{hull}, false
}

// convexHull computes the 2-D convex hull of geographic points with Andrew's
// monotone chain, treating longitude as x and latitude as y. The result is in
// counter-clockwise order without the closing vertex. Collinear input
// collapses to fewer than three vertices.
func convexHull(points []domain.GeoPoint) []domain.GeoPoint {
	if len(points) < 3 {
		return append([]domain.GeoPoint(nil), points...)
	}

	pts := append([]domain.GeoPoint(nil), points...)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].Longitude != pts[j].Longitude {
			return pts[i].Longitude < pts[j].Longitude
		}
		return pts[i].Latitude < pts[j].Latitude
	})

	var lower, upper []domain.GeoPoint
	for _, p := range pts {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}
	for i := len(pts) - 1; i >= 0; i-- {
		p := pts[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}

	// Drop each chain's last point to avoid duplicating the endpoints.
	return append(lower[:len(lower)-1], upper[:len(upper)-1]...)
}

func cross(o, a, b domain.GeoPoint) float64 {
	return (a.Longitude-o.Longitude)*(b.Latitude-o.Latitude) -
		(a.Latitude-o.Latitude)*(b.Longitude-o.Longitude)
}

// boundingBoxPolygon is the degenerate-hull fallback: the axis-aligned box of
// the fire cells as a closed five-point ring.
func boundingBoxPolygon(cells []domain.GeoPoint) []domain.GeoPoint {
	minLat, maxLat := cells[0].Latitude, cells[0].Latitude
	minLon, maxLon := cells[0].Longitude, cells[0].Longitude
	for _, p := range cells[1:] {
		if p.Latitude < minLat {
			minLat = p.Latitude
		}
		if p.Latitude > maxLat {
			maxLat = p.Latitude
		}
		if p.Longitude < minLon {
			minLon = p.Longitude
		}
		if p.Longitude > maxLon {
			maxLon = p.Longitude
		}
	}
	return []domain.GeoPoint{
		{Latitude: minLat, Longitude: minLon},
		{Latitude: minLat, Longitude: maxLon},
		{Latitude: maxLat, Longitude: maxLon},
		{Latitude: maxLat, Longitude: minLon},
		{Latitude: minLat, Longitude: minLon},
	}
}
