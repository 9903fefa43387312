package weather

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"activity_service/internal/metrics"
)

// OWMClient calls the OpenWeatherMap One Call 3.0 API.
type OWMClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

func NewOWMClient(endpoint, apiKey string, client *http.Client) *OWMClient {
	return &OWMClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   client,
	}
}

type OneCallHour struct {
	Dt     int64              `json:"dt"`
	UVI    float64            `json:"uvi"`
	Pop    float64            `json:"pop"`
	Clouds float64            `json:"clouds"`
	Rain   map[string]float64 `json:"rain"`
}

// Rainy: осадки есть в прогнозе, либо высокая вероятность при плотной облачности
func (h OneCallHour) Rainy() bool {
	return len(h.Rain) > 0 || (h.Pop >= 0.5 && h.Clouds >= 70)
}

type OneCallDay struct {
	Dt  int64    `json:"dt"`
	UVI *float64 `json:"uvi"`
}

type OneCallResponse struct {
	Timezone string        `json:"timezone"`
	Hourly   []OneCallHour `json:"hourly"`
	Daily    []OneCallDay  `json:"daily"`
}

func (c *OWMClient) OneCall(ctx context.Context, lat, lon float64) (*OneCallResponse, error) {
	start := time.Now()
	resp, err := c.oneCall(ctx, lat, lon)
	metrics.ObserveProvider("openweathermap", "onecall", start, err)
	return resp, err
}

func (c *OWMClient) oneCall(ctx context.Context, lat, lon float64) (*OneCallResponse, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', 6, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', 6, 64))
	params.Set("units", "metric")
	params.Set("appid", c.apiKey)
	params.Set("exclude", "minutely,alerts")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create weather request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather service returned status: %d", resp.StatusCode)
	}

	var out OneCallResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode weather response: %w", err)
	}
	return &out, nil
}
