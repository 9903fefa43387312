package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"activity_service/internal/domain/model"
	"activity_service/internal/metrics"
)

// ServiceConfig bounds request parameters.
type ServiceConfig struct {
	DefaultRadiusKm float64
	MinRadiusKm     float64
	MaxRadiusKm     float64
	DefaultLimit    int
	MaxLimit        int
	DefaultTimezone string
}

func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		DefaultRadiusKm: 10,
		MinRadiusKm:     2,
		MaxRadiusKm:     30,
		DefaultLimit:    50,
		MaxLimit:        500,
		DefaultTimezone: "America/New_York",
	}
}

// RecommendationService ties providers to the pure classification, scoring and
// windowing functions of this package.
type RecommendationService struct {
	places   PlaceProvider
	roads    RoadProvider
	weather  WeatherProvider
	geocoder Geocoder
	tz       TimezoneResolver
	cfg      ServiceConfig
	logger   zerolog.Logger
}

// NewRecommendationService wires the providers. roads and tz may be nil: without roads
// every road-distance rule is skipped, without tz the configured default timezone is used.
func NewRecommendationService(
	places PlaceProvider,
	roads RoadProvider,
	weather WeatherProvider,
	geocoder Geocoder,
	tz TimezoneResolver,
	cfg ServiceConfig,
	logger zerolog.Logger,
) *RecommendationService {
	return &RecommendationService{
		places:   places,
		roads:    roads,
		weather:  weather,
		geocoder: geocoder,
		tz:       tz,
		cfg:      cfg,
		logger:   logger.With().Str("component", "recommendation").Logger(),
	}
}

func (s *RecommendationService) Search(ctx context.Context, req model.SearchRequest) (*model.SearchResult, error) {
	result, err := s.search(ctx, req)
	if err != nil {
		metrics.SearchesTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	outcome := "ok"
	if result.Total == 0 {
		outcome = "empty"
	}
	metrics.SearchesTotal.WithLabelValues(outcome).Inc()
	metrics.PlacesRanked.Observe(float64(result.Total))
	return result, nil
}

func (s *RecommendationService) search(ctx context.Context, req model.SearchRequest) (*model.SearchResult, error) {
	radiusKm, err := s.radius(req.RadiusKm)
	if err != nil {
		return nil, err
	}

	origin, err := s.resolveOrigin(ctx, req)
	if err != nil {
		return nil, err
	}

	tzName, err := s.resolveTimezone(ctx, req.Timezone, origin.Lat, origin.Lon)
	if err != nil {
		return nil, err
	}

	log := s.logger.With().
		Float64("lat", origin.Lat).
		Float64("lon", origin.Lon).
		Float64("radius_km", radiusKm).
		Logger()

	// Получаем объекты из OSM
	elements, err := s.places.GetPlaces(ctx, origin.Lat, origin.Lon, radiusKm)
	if err != nil {
		return nil, fmt.Errorf("failed to get places: %w", err)
	}
	raw := BuildRawPlaces(origin, elements)

	var notes []string

	// Дороги нужны только как прокси шума/смога, поэтому их отсутствие не фатально
	var roads []model.GeoPoint
	if s.roads != nil {
		roads, err = s.roads.GetRoads(ctx, origin.Lat, origin.Lon, radiusKm)
		if err != nil {
			log.Warn().Err(err).Msg("road data unavailable, skipping road-distance rules")
			notes = append(notes, "Road data unavailable — smog/noise adjustments skipped.")
			roads = nil
		}
	}

	ranked := RankPlaces(raw, roads, req.Sensitivities, NewActivityFilter(req.Include, req.Exclude))
	total := len(ranked)
	if limit := s.limit(req.Limit); len(ranked) > limit {
		ranked = ranked[:limit]
	}

	windows, wnotes := s.windows(ctx, origin.Lat, origin.Lon, tzName, req.Sensitivities)
	notes = append(notes, wnotes...)

	log.Info().
		Int("candidates", len(raw)).
		Int("roads", len(roads)).
		Int("matched", total).
		Msg("search completed")

	return &model.SearchResult{
		ID:            uuid.NewString(),
		Origin:        origin,
		TZName:        tzName,
		RadiusKm:      radiusKm,
		Total:         total,
		Places:        ranked,
		Windows:       windows,
		WindowSummary: FormatWindows(windows),
		Notes:         nonNil(notes),
	}, nil
}

// Windows computes only today's recommended time windows for a location.
func (s *RecommendationService) Windows(ctx context.Context, req model.WindowsRequest) (*model.WindowsResult, error) {
	if !ValidCoordinates(req.Lat, req.Lon) {
		return nil, fmt.Errorf("%w: lat=%f lon=%f", model.ErrInvalidCoordinates, req.Lat, req.Lon)
	}
	tzName, err := s.resolveTimezone(ctx, req.Timezone, req.Lat, req.Lon)
	if err != nil {
		return nil, err
	}

	wctx, err := s.weather.GetWeatherContext(ctx, req.Lat, req.Lon, tzName)
	if err != nil {
		return nil, fmt.Errorf("failed to get weather context: %w", err)
	}
	windows := recommend(wctx.Hourly, req.Sensitivities)

	return &model.WindowsResult{
		TZName:  tzName,
		Date:    wctx.Date,
		Windows: windows,
		Summary: FormatWindows(windows),
		Notes:   nonNil(wctx.Notes),
	}, nil
}

// ClassifyTags exposes the classifier for a single tag map.
func (s *RecommendationService) ClassifyTags(tags map[string]string) model.ClassifiedAttributes {
	return Classify(tags)
}

// BuildRawPlaces converts provider elements to places with distance from the origin,
// nearest first.
func BuildRawPlaces(origin model.Location, elements []model.OSMElement) []model.RawPlace {
	places := make([]model.RawPlace, 0, len(elements))
	for _, el := range elements {
		tags := el.Tags
		if tags == nil {
			tags = map[string]string{}
		}
		places = append(places, model.RawPlace{
			ID:         fmt.Sprintf("%s/%d", el.Type, el.ID),
			Name:       displayName(tags),
			Lat:        el.Lat,
			Lon:        el.Lon,
			DistanceKm: HaversineKm(origin.Lat, origin.Lon, el.Lat, el.Lon),
			Tags:       tags,
		})
	}
	sort.SliceStable(places, func(i, j int) bool {
		return places[i].DistanceKm < places[j].DistanceKm
	})
	return places
}

func displayName(tags map[string]string) string {
	for _, key := range []string{"name", "leisure", "amenity", "tourism", "man_made"} {
		if v := tags[key]; v != "" {
			return v
		}
	}
	return "Unnamed"
}

// RankPlaces classifies, scores and filters places, then sorts them by rank.
func RankPlaces(
	places []model.RawPlace,
	roads []model.GeoPoint,
	active model.SensitivitySet,
	filter ActivityFilter,
) []model.ClassifiedPlace {
	out := make([]model.ClassifiedPlace, 0, len(places))
	for _, p := range places {
		attrs := Classify(p.Tags)
		if !filter.Matches(attrs.Activities) {
			continue
		}
		roadM := NearestRoadMeters(model.GeoPoint{Lat: p.Lat, Lon: p.Lon}, roads)
		cp := model.ClassifiedPlace{
			RawPlace:             p,
			ClassifiedAttributes: attrs,
			Score:                Score(attrs, active, p.DistanceKm, roadM),
			RoadDistanceMeters:   roadM,
		}
		cp.Badges = Badges(cp)
		out = append(out, cp)
	}
	Rank(out)
	return out
}

func (s *RecommendationService) windows(
	ctx context.Context,
	lat, lon float64,
	tzName string,
	active model.SensitivitySet,
) ([]model.TimeWindow, []string) {
	wctx, err := s.weather.GetWeatherContext(ctx, lat, lon, tzName)
	if err != nil {
		s.logger.Warn().Err(err).Msg("weather context unavailable, using fallback windows")
		loc, lerr := time.LoadLocation(tzName)
		if lerr != nil {
			loc = time.UTC
		}
		metrics.FallbackWindows.Inc()
		return fallbackWindows(now().In(loc)), []string{"Weather context unavailable — showing heuristic windows."}
	}
	return recommend(wctx.Hourly, active), wctx.Notes
}

func recommend(hourly []model.HourlyRisk, active model.SensitivitySet) []model.TimeWindow {
	windows := RecommendWindows(hourly, active)
	if !anyGood(GoodHours(hourly, active)) {
		metrics.FallbackWindows.Inc()
	}
	return windows
}

func anyGood(mask []bool) bool {
	for _, g := range mask {
		if g {
			return true
		}
	}
	return false
}

func (s *RecommendationService) radius(r float64) (float64, error) {
	if r == 0 {
		return s.cfg.DefaultRadiusKm, nil
	}
	if r < s.cfg.MinRadiusKm || r > s.cfg.MaxRadiusKm {
		return 0, fmt.Errorf("%w: radius_km must be between %g and %g", model.ErrInvalidRequest, s.cfg.MinRadiusKm, s.cfg.MaxRadiusKm)
	}
	return r, nil
}

func (s *RecommendationService) limit(l int) int {
	if l <= 0 {
		return s.cfg.DefaultLimit
	}
	if l > s.cfg.MaxLimit {
		return s.cfg.MaxLimit
	}
	return l
}

func (s *RecommendationService) resolveOrigin(ctx context.Context, req model.SearchRequest) (model.Location, error) {
	if req.Lat != nil && req.Lon != nil {
		if !ValidCoordinates(*req.Lat, *req.Lon) {
			return model.Location{}, fmt.Errorf("%w: lat=%f lon=%f", model.ErrInvalidCoordinates, *req.Lat, *req.Lon)
		}
		return model.Location{
			Lat:         *req.Lat,
			Lon:         *req.Lon,
			DisplayName: fmt.Sprintf("%.5f, %.5f", *req.Lat, *req.Lon),
		}, nil
	}
	if req.Address == "" {
		return model.Location{}, fmt.Errorf("%w: address or lat/lon is required", model.ErrInvalidRequest)
	}
	if s.geocoder == nil {
		return model.Location{}, fmt.Errorf("%w: geocoding is not configured", model.ErrProviderUnavailable)
	}

	loc, err := s.geocoder.Geocode(ctx, req.Address)
	if err != nil {
		return model.Location{}, fmt.Errorf("failed to geocode %q: %w", req.Address, err)
	}
	return loc, nil
}

func (s *RecommendationService) resolveTimezone(ctx context.Context, explicit string, lat, lon float64) (string, error) {
	if explicit != "" {
		if _, err := time.LoadLocation(explicit); err != nil {
			return "", fmt.Errorf("%w: unknown timezone %q", model.ErrInvalidRequest, explicit)
		}
		return explicit, nil
	}
	if s.tz != nil {
		name, err := s.tz.Timezone(ctx, lat, lon)
		if err == nil && name != "" {
			return name, nil
		}
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Warn().Err(err).Str("default", s.cfg.DefaultTimezone).Msg("timezone lookup failed, using default")
		}
	}
	return s.cfg.DefaultTimezone, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
