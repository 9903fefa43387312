package geocode

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"googlemaps.github.io/maps"

	"activity_service/internal/domain/model"
	"activity_service/internal/metrics"
)

// GoogleGeocoder uses the Google Maps Geocoding and Time Zone APIs.
type GoogleGeocoder struct {
	client *maps.Client
	now    func() time.Time
}

func NewGoogleGeocoder(apiKey string, httpClient *http.Client, opts ...maps.ClientOption) (*GoogleGeocoder, error) {
	opts = append([]maps.ClientOption{maps.WithAPIKey(apiKey), maps.WithHTTPClient(httpClient)}, opts...)
	client, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GoogleGeocoder{client: client, now: time.Now}, nil
}

func (g *GoogleGeocoder) Geocode(ctx context.Context, query string) (model.Location, error) {
	start := time.Now()
	results, err := g.client.Geocode(ctx, &maps.GeocodingRequest{Address: query})
	metrics.ObserveProvider("google", "geocode", start, err)
	if err != nil {
		return model.Location{}, fmt.Errorf("%w: google geocode failed: %w", model.ErrProviderUnavailable, err)
	}
	if len(results) == 0 {
		return model.Location{}, fmt.Errorf("%w: %q", model.ErrLocationNotFound, query)
	}

	r := results[0]
	return model.Location{
		Lat:         r.Geometry.Location.Lat,
		Lon:         r.Geometry.Location.Lng,
		DisplayName: r.FormattedAddress,
	}, nil
}

// Timezone resolves the IANA timezone for a point.
func (g *GoogleGeocoder) Timezone(ctx context.Context, lat, lon float64) (string, error) {
	start := time.Now()
	res, err := g.client.Timezone(ctx, &maps.TimezoneRequest{
		Location:  &maps.LatLng{Lat: lat, Lng: lon},
		Timestamp: g.now(),
	})
	metrics.ObserveProvider("google", "timezone", start, err)
	if err != nil {
		return "", fmt.Errorf("google timezone lookup failed: %w", err)
	}
	return res.TimeZoneID, nil
}
