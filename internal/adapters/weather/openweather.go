package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/sony/gobreaker"

	"github.com/Tom-Shanks/FireSight-AI/internal/core/domain"
)

// OpenWeatherProvider fetches live conditions from OpenWeatherMap.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeatherProvider(client *http.Client, apiKey, baseURL string) *OpenWeatherProvider {
	if baseURL == "" {
		baseURL = "https://api.openweathermap.org/data/2.5"
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openweather",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: baseURL,
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      3,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		circuit: cb,
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

func (p *OpenWeatherProvider) Current(ctx context.Context, loc domain.GeoPoint) (*domain.WeatherSnapshot, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("openweather api key is not configured")
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, func() (*http.Request, error) {
		return p.buildRequest("/weather", loc)
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		Main struct {
			Temp     float64 `json:"temp"`
			Humidity float64 `json:"humidity"`
		} `json:"main"`
		Wind struct {
			Speed float64 `json:"speed"`
			Deg   float64 `json:"deg"`
		} `json:"wind"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode current weather: %w", err)
	}

	return &domain.WeatherSnapshot{
		WindSpeedMps:     payload.Wind.Speed,
		WindDirectionDeg: payload.Wind.Deg,
		Humidity:         payload.Main.Humidity,
		Temperature:      payload.Main.Temp,
	}, nil
}

// Forecast collapses OpenWeatherMap's 3-hourly entries into one entry per
// day, keeping the daily maximum temperature and wind and the minimum
// humidity, the combination most relevant to fire danger.
func (p *OpenWeatherProvider) Forecast(ctx context.Context, loc domain.GeoPoint, days int) ([]domain.ForecastEntry, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("openweather api key is not configured")
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, func() (*http.Request, error) {
		return p.buildRequest("/forecast", loc)
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		List []struct {
			Dt   int64 `json:"dt"`
			Main struct {
				Temp     float64 `json:"temp"`
				Humidity float64 `json:"humidity"`
			} `json:"main"`
			Wind struct {
				Speed float64 `json:"speed"`
			} `json:"wind"`
			Rain struct {
				ThreeH float64 `json:"3h"`
			} `json:"rain"`
		} `json:"list"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode forecast: %w", err)
	}

	byDay := make(map[string]*domain.ForecastEntry)
	for _, item := range payload.List {
		ts := time.Unix(item.Dt, 0).UTC()
		day := ts.Format("2006-01-02")

		e, ok := byDay[day]
		if !ok {
			e = &domain.ForecastEntry{
				Date:        ts.Truncate(24 * time.Hour),
				Temperature: item.Main.Temp,
				Humidity:    item.Main.Humidity,
			}
			byDay[day] = e
		}
		if item.Main.Temp > e.Temperature {
			e.Temperature = item.Main.Temp
		}
		if item.Main.Humidity < e.Humidity {
			e.Humidity = item.Main.Humidity
		}
		if item.Wind.Speed > e.WindSpeedMps {
			e.WindSpeedMps = item.Wind.Speed
		}
		e.Precipitation += item.Rain.ThreeH
	}

	entries := make([]domain.ForecastEntry, 0, len(byDay))
	for _, e := range byDay {
		entries = append(entries, *e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Date.Before(entries[j].Date) })
	if days > 0 && len(entries) > days {
		entries = entries[:days]
	}
	return entries, nil
}

func (p *OpenWeatherProvider) buildRequest(path string, loc domain.GeoPoint) (*http.Request, error) {
	values := url.Values{}
	values.Set("appid", p.apiKey)
	values.Set("units", "metric")
	values.Set("lat", fmt.Sprintf("%f", loc.Latitude))
	values.Set("lon", fmt.Sprintf("%f", loc.Longitude))

	u := fmt.Sprintf("%s%s?%s", p.baseURL, path, values.Encode())
	return http.NewRequest(http.MethodGet, u, nil)
}
