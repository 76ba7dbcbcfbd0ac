package domain

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

// Bounds represents a geographic bounding box. Minima are strictly below maxima.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLon float64 `json:"max_lon"`
}

// Valid reports whether the box is non-degenerate.
func (b Bounds) Valid() bool {
	return b.MinLat < b.MaxLat && b.MinLon < b.MaxLon
}

// Center returns the midpoint of the box.
func (b Bounds) Center() GeoPoint {
	return GeoPoint{
		Latitude:  (b.MinLat + b.MaxLat) / 2,
		Longitude: (b.MinLon + b.MaxLon) / 2,
	}
}
