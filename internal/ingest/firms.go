package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/Tom-Shanks/FireSight-AI/internal/core/domain"
)

// FeedClient fetches active-fire detections from a FIRMS-style CSV feed.
// The feed is a CSV with at least these columns: latitude, longitude,
// acq_date, acq_time, satellite, instrument, confidence, frp.
type FeedClient struct {
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	feedURL string
}

// NewFeedClient creates a feed client with a circuit breaker around the
// upstream so a flapping feed does not hammer the provider.
func NewFeedClient(client *http.Client, feedURL string) *FeedClient {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "firms-feed",
		MaxRequests: 1,
		Interval:    5 * time.Minute,
		Timeout:     10 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
	return &FeedClient{client: client, breaker: breaker, feedURL: feedURL}
}

// Fetch downloads and parses the feed.
func (f *FeedClient) Fetch(ctx context.Context) ([]domain.FireDetection, error) {
	result, err := f.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.feedURL, nil)
		if err != nil {
			return nil, err
		}

		resp, err := f.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("feed returned HTTP %d", resp.StatusCode)
		}

		return ParseCSV(resp.Body)
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.FireDetection), nil
}

// ParseCSV parses FIRMS-style CSV rows into detections. Rows with
// unparseable coordinates or timestamps are skipped, not fatal.
func ParseCSV(r io.Reader) ([]domain.FireDetection, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, required := range []string{"latitude", "longitude", "acq_date", "acq_time"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("feed is missing column %q", required)
		}
	}

	var detections []domain.FireDetection
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		d, ok := parseRow(row, col)
		if !ok {
			continue
		}
		detections = append(detections, d)
	}

	return detections, nil
}

func parseRow(row []string, col map[string]int) (domain.FireDetection, bool) {
	field := func(name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	lat, err := strconv.ParseFloat(field("latitude"), 64)
	if err != nil || lat < -90 || lat > 90 {
		return domain.FireDetection{}, false
	}
	lon, err := strconv.ParseFloat(field("longitude"), 64)
	if err != nil || lon < -180 || lon > 180 {
		return domain.FireDetection{}, false
	}

	// acq_time is "HHMM" with no separator, zero-padded to 4 digits at most
	acqTime := field("acq_time")
	if len(acqTime) < 4 {
		acqTime = strings.Repeat("0", 4-len(acqTime)) + acqTime
	}
	ts, err := time.Parse("2006-01-02 1504", field("acq_date")+" "+acqTime)
	if err != nil {
		return domain.FireDetection{}, false
	}

	frp, _ := strconv.ParseFloat(field("frp"), 64)

	source := field("instrument")
	if sat := field("satellite"); sat != "" {
		switch {
		case source == "VIIRS" && sat == "N":
			source = "VIIRS_SNPP"
		case source == "VIIRS":
			source = "VIIRS_" + sat
		case source == "":
			source = sat
		}
	}
	if source == "" {
		source = "UNKNOWN"
	}

	return domain.FireDetection{
		Source:        source,
		Location:      domain.GeoPoint{Latitude: lat, Longitude: lon},
		DetectionTime: ts.UTC(),
		FRP:           frp,
		Confidence:    field("confidence"),
	}, true
}

// Synthetic generates plausible detections for development when the real
// feed is unreachable. Clustered around fire-prone regions of the western US.
func Synthetic(rng *rand.Rand, count int, now time.Time) []domain.FireDetection {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if count <= 0 {
		count = 25
	}

	clusters := []domain.GeoPoint{
		{Latitude: 39.76, Longitude: -121.62}, // Butte County, CA
		{Latitude: 34.05, Longitude: -118.54}, // Santa Monica Mountains, CA
		{Latitude: 44.06, Longitude: -121.31}, // Deschutes County, OR
		{Latitude: 46.87, Longitude: -113.99}, // Missoula County, MT
	}
	sources := []string{"MODIS", "VIIRS_SNPP", "VIIRS_NOAA20"}
	confidences := []string{"low", "nominal", "high"}

	detections := make([]domain.FireDetection, 0, count)
	for i := 0; i < count; i++ {
		c := clusters[rng.IntN(len(clusters))]
		detections = append(detections, domain.FireDetection{
			Source: sources[rng.IntN(len(sources))],
			Location: domain.GeoPoint{
				Latitude:  c.Latitude + rng.Float64()*0.5 - 0.25,
				Longitude: c.Longitude + rng.Float64()*0.5 - 0.25,
			},
			DetectionTime: now.Add(-time.Duration(rng.IntN(180)) * time.Minute),
			FRP:           1 + rng.Float64()*120,
			Confidence:    confidences[rng.IntN(len(confidences))],
		})
	}
	return detections
}
