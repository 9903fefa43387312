package core

import (
	"context"

	"activity_service/internal/domain/model"
)

// PlaceProvider returns candidate activity places around a point.
type PlaceProvider interface {
	GetPlaces(ctx context.Context, lat, lon, radiusKm float64) ([]model.OSMElement, error)
}

// RoadProvider returns sample points of major roads around a point.
type RoadProvider interface {
	GetRoads(ctx context.Context, lat, lon, radiusKm float64) ([]model.GeoPoint, error)
}

// WeatherProvider builds the hourly risk series for today in the given timezone.
type WeatherProvider interface {
	GetWeatherContext(ctx context.Context, lat, lon float64, tzName string) (model.WeatherContext, error)
}

type Geocoder interface {
	Geocode(ctx context.Context, query string) (model.Location, error)
}

// TimezoneResolver maps coordinates to an IANA timezone name.
type TimezoneResolver interface {
	Timezone(ctx context.Context, lat, lon float64) (string, error)
}
