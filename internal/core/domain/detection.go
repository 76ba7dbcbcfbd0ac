package domain

import "time"

// FireDetection is a single satellite active-fire detection (FIRMS-style).
type FireDetection struct {
	ID            string    `json:"id"`
	Source        string    `json:"source"` // MODIS, VIIRS_SNPP, VIIRS_NOAA
	Location      GeoPoint  `json:"location"`
	DetectionTime time.Time `json:"detection_time"`
	FRP           float64   `json:"frp"` // fire radiative power, MW
	Confidence    string    `json:"confidence"`
	CreatedAt     time.Time `json:"created_at"`
}

// RiskArea is a region whose current wildfire risk exceeds some threshold.
type RiskArea struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Center    GeoPoint           `json:"center"`
	RiskScore float64            `json:"risk_score"`
	Factors   map[string]float64 `json:"factors"`
}
