package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/serjvanilla/go-overpass"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"activity_service/internal/domain/model"
	"activity_service/internal/metrics"
)

const (
	placesLeisure = "park|pitch|track|fitness_station|playground|sports_centre|recreation_ground|ice_rink|swimming_pool|garden"
	majorHighways = "motorway|trunk|primary|secondary|motorway_link|trunk_link|primary_link|secondary_link"

	// велодорожки ищем в меньшем радиусе, иначе они забивают выдачу
	cyclewayRadiusFactor = 0.7
)

type OverpassSettings struct {
	Endpoint         string
	MaxParallel      int
	MinInterval      time.Duration
	FailureThreshold uint32
	BreakerTimeout   time.Duration
}

type OverpassRepository struct {
	client  *overpass.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[overpass.Result]
	logger  zerolog.Logger
}

func NewOverpassRepository(settings OverpassSettings, httpClient *http.Client, logger zerolog.Logger) *OverpassRepository {
	client := overpass.NewWithSettings(settings.Endpoint, settings.MaxParallel, httpClient)
	logger = logger.With().Str("component", "overpass").Logger()

	limit := rate.Inf
	if settings.MinInterval > 0 {
		limit = rate.Every(settings.MinInterval)
	}

	threshold := settings.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	breaker := gobreaker.NewCircuitBreaker[overpass.Result](gobreaker.Settings{
		Name:    "overpass",
		Timeout: settings.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			// отмена запроса клиентом - не сбой Overpass
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			logger.Warn().Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})

	return &OverpassRepository{
		client:  &client,
		limiter: rate.NewLimiter(limit, 1),
		breaker: breaker,
		logger:  logger,
	}
}

// GetPlaces возвращает публичные места для активностей в радиусе от точки
func (r *OverpassRepository) GetPlaces(ctx context.Context, lat, lon, radiusKm float64) ([]model.OSMElement, error) {
	result, err := r.executeQuery(ctx, "places", BuildPlacesQuery(lat, lon, int(radiusKm*1000)))
	if err != nil {
		return nil, fmt.Errorf("failed to execute places query: %w", err)
	}

	elements := convertToOSMElements(&result)
	r.logger.Debug().Int("elements", len(elements)).Msg("places fetched")
	return elements, nil
}

// GetRoads возвращает центроиды крупных дорог (motorway..secondary) в радиусе от точки
func (r *OverpassRepository) GetRoads(ctx context.Context, lat, lon, radiusKm float64) ([]model.GeoPoint, error) {
	result, err := r.executeQuery(ctx, "roads", BuildRoadsQuery(lat, lon, int(radiusKm*1000)))
	if err != nil {
		return nil, fmt.Errorf("failed to execute road data query: %w", err)
	}

	var points []model.GeoPoint
	for _, el := range convertToOSMElements(&result) {
		if el.Type == string(overpass.ElementTypeNode) {
			continue
		}
		points = append(points, model.GeoPoint{Lat: el.Lat, Lon: el.Lon})
	}
	return points, nil
}

func (r *OverpassRepository) executeQuery(ctx context.Context, operation, query string) (overpass.Result, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return overpass.Result{}, fmt.Errorf("overpass rate limiter: %w", err)
	}

	start := time.Now()
	result, err := r.breaker.Execute(func() (overpass.Result, error) {
		return r.queryWithContext(ctx, query)
	})
	metrics.ObserveProvider("overpass", operation, start, err)

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return overpass.Result{}, err
		}
		return overpass.Result{}, fmt.Errorf("%w: overpass query failed: %w", model.ErrProviderUnavailable, err)
	}
	return result, nil
}

// queryWithContext runs the blocking client call and returns early if ctx is done.
// The HTTP client timeout bounds the abandoned call.
func (r *OverpassRepository) queryWithContext(ctx context.Context, query string) (overpass.Result, error) {
	type outcome struct {
		result overpass.Result
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := r.client.Query(query)
		done <- outcome{result: res, err: err}
	}()

	select {
	case o := <-done:
		return o.result, o.err
	case <-ctx.Done():
		return overpass.Result{}, ctx.Err()
	}
}

func around(radiusM int, lat, lon float64) string {
	return fmt.Sprintf("(around:%d,%f,%f)", radiusM, lat, lon)
}

// BuildPlacesQuery builds the Overpass QL query for activity places.
func BuildPlacesQuery(lat, lon float64, radiusM int) string {
	a := around(radiusM, lat, lon)
	cycle := around(int(float64(radiusM)*cyclewayRadiusFactor), lat, lon)

	filters := []struct {
		selector string
		area     string
	}{
		{fmt.Sprintf(`["leisure"~"%s"]`, placesLeisure), a},
		{`["tourism"="beach"]`, a},
		{`["man_made"="pier"]`, a},
		{`["amenity"="community_centre"]`, a},
		{`["highway"="cycleway"]`, cycle},
		{`["tourism"="museum"]`, a},
		{`["amenity"="marketplace"]`, a},
		{`["amenity"="arts_centre"]`, a},
		{`["tourism"="attraction"]["attraction"~"farm|botanical_garden|animal_park"]`, a},
		{`["leisure"="garden"]["garden"~"botanical|arboretum"]`, a},
		{`["leisure"="garden"]["garden:type"~"botanical|arboretum"]`, a},
	}

	var b strings.Builder
	b.WriteString("[out:json][timeout:30];\n(\n")
	for _, f := range filters {
		for _, kind := range elementKinds {
			fmt.Fprintf(&b, "  %s%s%s;\n", kind, f.selector, f.area)
		}
	}
	// без рекурсии ">": скелетные копии узлов затирают теги мест, лежащих на линиях
	b.WriteString(");\nout geom;\n")
	return b.String()
}

// BuildRoadsQuery builds the Overpass QL query for major roads.
func BuildRoadsQuery(lat, lon float64, radiusM int) string {
	a := around(radiusM, lat, lon)
	return fmt.Sprintf(`[out:json][timeout:30];
(
  way["highway"~"%[1]s"]%[2]s;
  relation["highway"~"%[1]s"]%[2]s;
);
out geom;
`, majorHighways, a)
}

var elementKinds = []string{"node", "way", "relation"}

func convertToOSMElements(result *overpass.Result) []model.OSMElement {
	var elements []model.OSMElement

	// go-overpass заводит пустые заглушки для ссылок (узлы линий, участники отношений),
	// поэтому элементы без тегов пропускаем
	for _, node := range result.Nodes {
		if len(node.Tags) == 0 {
			continue
		}
		elements = append(elements, model.OSMElement{
			ID:   node.ID,
			Type: string(overpass.ElementTypeNode),
			Lat:  node.Lat,
			Lon:  node.Lon,
			Tags: node.Tags,
		})
	}

	for _, way := range result.Ways {
		if len(way.Tags) == 0 {
			continue
		}
		bounds := toBounds(way.Bounds)
		lat, lon, ok := wayCentroid(way)
		if !ok {
			continue
		}
		elements = append(elements, model.OSMElement{
			ID:     way.ID,
			Type:   string(overpass.ElementTypeWay),
			Lat:    lat,
			Lon:    lon,
			Tags:   way.Tags,
			Bounds: bounds,
		})
	}

	// мультиполигоны (крупные парки, пляжи) - по центру bbox
	for _, rel := range result.Relations {
		if len(rel.Tags) == 0 || rel.Bounds == nil {
			continue
		}
		bounds := toBounds(rel.Bounds)
		lat, lon := bounds.Center()
		elements = append(elements, model.OSMElement{
			ID:     rel.ID,
			Type:   string(overpass.ElementTypeRelation),
			Lat:    lat,
			Lon:    lon,
			Tags:   rel.Tags,
			Bounds: bounds,
		})
	}

	sort.Slice(elements, func(i, j int) bool {
		if elements[i].Type != elements[j].Type {
			return elements[i].Type < elements[j].Type
		}
		return elements[i].ID < elements[j].ID
	})
	return elements
}

func toBounds(box *overpass.Box) model.Bounds {
	if box == nil {
		return model.Bounds{}
	}
	return model.Bounds{
		MinLat: box.Min.Lat,
		MinLon: box.Min.Lon,
		MaxLat: box.Max.Lat,
		MaxLon: box.Max.Lon,
	}
}

// wayCentroid averages the way geometry, falling back to the bounds centre.
// A closed way repeats its first point at the end; the duplicate is not counted twice.
func wayCentroid(way *overpass.Way) (lat, lon float64, ok bool) {
	points := way.Geometry
	if n := len(points); n > 1 && points[0] == points[n-1] {
		points = points[:n-1]
	}
	if len(points) > 0 {
		for _, p := range points {
			lat += p.Lat
			lon += p.Lon
		}
		return lat / float64(len(points)), lon / float64(len(points)), true
	}
	if way.Bounds != nil {
		lat, lon = toBounds(way.Bounds).Center()
		return lat, lon, true
	}
	return 0, 0, false
}
