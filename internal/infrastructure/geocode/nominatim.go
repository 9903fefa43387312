// Package geocode resolves free-text addresses to coordinates.
package geocode

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"activity_service/internal/domain/model"
	"activity_service/internal/metrics"
)

type NominatimGeocoder struct {
	endpoint string
	client   *http.Client
}

func NewNominatimGeocoder(endpoint string, client *http.Client) *NominatimGeocoder {
	return &NominatimGeocoder{endpoint: endpoint, client: client}
}

type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func (g *NominatimGeocoder) Geocode(ctx context.Context, query string) (model.Location, error) {
	start := time.Now()
	loc, err := g.geocode(ctx, query)
	metrics.ObserveProvider("nominatim", "search", start, err)
	return loc, err
}

func (g *NominatimGeocoder) geocode(ctx context.Context, query string) (model.Location, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return model.Location{}, fmt.Errorf("failed to create geocode request: %w", err)
	}
	req.Header.Set("Accept-Language", "en")

	resp, err := g.client.Do(req)
	if err != nil {
		return model.Location{}, fmt.Errorf("%w: nominatim request failed: %w", model.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.Location{}, fmt.Errorf("%w: nominatim returned status %d", model.ErrProviderUnavailable, resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return model.Location{}, fmt.Errorf("failed to decode nominatim response: %w", err)
	}
	if len(results) == 0 {
		return model.Location{}, fmt.Errorf("%w: %q", model.ErrLocationNotFound, query)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return model.Location{}, fmt.Errorf("invalid lat in nominatim response: %w", err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return model.Location{}, fmt.Errorf("invalid lon in nominatim response: %w", err)
	}

	return model.Location{
		Lat:         lat,
		Lon:         lon,
		DisplayName: results[0].DisplayName,
	}, nil
}
