package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/serjvanilla/go-overpass"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"activity_service/internal/domain/model"
)

func TestBuildPlacesQuery(t *testing.T) {
	q := BuildPlacesQuery(40.5, -74.25, 10000)

	assert.True(t, strings.HasPrefix(q, "[out:json][timeout:30];"))
	assert.Contains(t, q, `node["leisure"~"park|pitch|track|fitness_station|playground|sports_centre|recreation_ground|ice_rink|swimming_pool|garden"](around:10000,40.500000,-74.250000);`)
	assert.Contains(t, q, `way["man_made"="pier"](around:10000,40.500000,-74.250000);`)
	assert.Contains(t, q, `way["highway"="cycleway"](around:7000,40.500000,-74.250000);`)
	assert.Contains(t, q, `node["tourism"="attraction"]["attraction"~"farm|botanical_garden|animal_park"]`)
	assert.Contains(t, q, `way["leisure"="garden"]["garden:type"~"botanical|arboretum"]`)
	assert.Contains(t, q, `relation["tourism"="beach"](around:10000,40.500000,-74.250000);`)
	assert.True(t, strings.HasSuffix(q, ");\nout geom;\n"))
	assert.NotContains(t, q, ">;")

	// each filter is requested for nodes, ways and relations
	assert.Equal(t, 11, strings.Count(q, "  node["))
	assert.Equal(t, 11, strings.Count(q, "  way["))
	assert.Equal(t, 11, strings.Count(q, "  relation["))
}

func TestBuildRoadsQuery(t *testing.T) {
	q := BuildRoadsQuery(1, 2, 2500)

	assert.Contains(t, q, `way["highway"~"motorway|trunk|primary|secondary|motorway_link|trunk_link|primary_link|secondary_link"](around:2500,1.000000,2.000000);`)
	assert.Contains(t, q, `relation["highway"~"motorway|trunk|primary|secondary|motorway_link|trunk_link|primary_link|secondary_link"](around:2500,1.000000,2.000000);`)
	assert.NotContains(t, q, "node[")
	assert.NotContains(t, q, ">;")
}

func TestConvertToOSMElements(t *testing.T) {
	result := &overpass.Result{
		Nodes: map[int64]*overpass.Node{
			5: {Meta: overpass.Meta{ID: 5, Tags: map[string]string{"leisure": "park"}}, Lat: 40.1, Lon: -75.2},
			2: {Meta: overpass.Meta{ID: 2, Tags: map[string]string{"tourism": "museum"}}, Lat: 40.3, Lon: -75.4},
			// заглушки вершин линий
			10: {Meta: overpass.Meta{ID: 10}},
			11: {Meta: overpass.Meta{ID: 11}},
		},
		Ways: map[int64]*overpass.Way{
			7: {
				Meta:     overpass.Meta{ID: 7, Tags: map[string]string{"highway": "cycleway"}},
				Geometry: []overpass.Point{{Lat: 1, Lon: 2}, {Lat: 3, Lon: 4}},
			},
			8: {
				Meta:   overpass.Meta{ID: 8, Tags: map[string]string{"leisure": "pitch"}},
				Bounds: &overpass.Box{Min: overpass.Point{Lat: 10, Lon: 20}, Max: overpass.Point{Lat: 12, Lon: 24}},
			},
			9: {Meta: overpass.Meta{ID: 9, Tags: map[string]string{"leisure": "track"}}},
			// участник отношения без собственных данных
			40: {Meta: overpass.Meta{ID: 40}},
		},
		Relations: map[int64]*overpass.Relation{
			30: {
				Meta:   overpass.Meta{ID: 30, Tags: map[string]string{"type": "multipolygon", "leisure": "park"}},
				Bounds: &overpass.Box{Min: overpass.Point{Lat: 40, Lon: -75}, Max: overpass.Point{Lat: 40.2, Lon: -74.8}},
			},
			31: {Meta: overpass.Meta{ID: 31, Tags: map[string]string{"leisure": "park"}}},
		},
	}

	elements := convertToOSMElements(result)

	require.Len(t, elements, 5)
	assert.Equal(t, "node", elements[0].Type)
	assert.Equal(t, int64(2), elements[0].ID)
	assert.Equal(t, int64(5), elements[1].ID)

	assert.Equal(t, "relation", elements[2].Type)
	assert.Equal(t, int64(30), elements[2].ID)
	assert.InDelta(t, 40.1, elements[2].Lat, 1e-9)
	assert.InDelta(t, -74.9, elements[2].Lon, 1e-9)
	assert.Equal(t, "park", elements[2].Tags["leisure"])

	assert.Equal(t, "way", elements[3].Type)
	assert.Equal(t, int64(7), elements[3].ID)
	assert.InDelta(t, 2.0, elements[3].Lat, 1e-9)
	assert.InDelta(t, 3.0, elements[3].Lon, 1e-9)

	assert.Equal(t, int64(8), elements[4].ID)
	assert.InDelta(t, 11.0, elements[4].Lat, 1e-9)
	assert.InDelta(t, 22.0, elements[4].Lon, 1e-9)
	assert.Equal(t, model.Bounds{MinLat: 10, MinLon: 20, MaxLat: 12, MaxLon: 24}, elements[4].Bounds)
}

func TestWayCentroid_ClosedWay(t *testing.T) {
	way := &overpass.Way{Geometry: []overpass.Point{
		{Lat: 0, Lon: 0}, {Lat: 0, Lon: 2}, {Lat: 2, Lon: 2}, {Lat: 2, Lon: 0}, {Lat: 0, Lon: 0},
	}}

	lat, lon, ok := wayCentroid(way)
	require.True(t, ok)
	assert.InDelta(t, 1.0, lat, 1e-9)
	assert.InDelta(t, 1.0, lon, 1e-9)
}

const overpassResponse = `{
  "version": 0.6,
  "elements": [
    {"type": "node", "id": 1, "lat": 40.001, "lon": -75.0, "tags": {"leisure": "park", "name": "Green"}},
    {"type": "way", "id": 2, "nodes": [3, 4], "tags": {"highway": "primary"},
     "bounds": {"minlat": 40.0, "minlon": -75.002, "maxlat": 40.002, "maxlon": -75.0},
     "geometry": [{"lat": 40.0, "lon": -75.0}, {"lat": 40.002, "lon": -75.002}]},
    {"type": "relation", "id": 9, "tags": {"type": "multipolygon", "highway": "primary"},
     "bounds": {"minlat": 40.01, "minlon": -75.02, "maxlat": 40.03, "maxlon": -75.0},
     "members": [{"type": "way", "ref": 20, "role": "outer"}]}
  ]
}`

// узел места является вершиной возвращённой линии; линия идёт раньше узла
const sharedVertexResponse = `{
  "version": 0.6,
  "elements": [
    {"type": "way", "id": 2, "nodes": [1, 3], "tags": {"highway": "cycleway"},
     "geometry": [{"lat": 40.0, "lon": -75.0}, {"lat": 40.002, "lon": -75.0}]},
    {"type": "node", "id": 1, "lat": 40.0, "lon": -75.0, "tags": {"leisure": "fitness_station"}}
  ]
}`

func newTestOverpass(t *testing.T, handler http.HandlerFunc, threshold uint32) *OverpassRepository {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewOverpassRepository(OverpassSettings{
		Endpoint:         srv.URL,
		MaxParallel:      1,
		FailureThreshold: threshold,
		BreakerTimeout:   time.Minute,
	}, srv.Client(), zerolog.Nop())
}

func TestOverpassRepository_GetPlacesAndRoads(t *testing.T) {
	var queries []string
	repo := newTestOverpass(t, func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		queries = append(queries, r.FormValue("data"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, overpassResponse)
	}, 5)

	places, err := repo.GetPlaces(context.Background(), 40, -75, 2)
	require.NoError(t, err)
	require.Len(t, places, 3)
	assert.Equal(t, "node", places[0].Type)
	assert.Equal(t, "Green", places[0].Tags["name"])
	assert.Equal(t, "relation", places[1].Type)
	assert.Equal(t, "way", places[2].Type)

	roads, err := repo.GetRoads(context.Background(), 40, -75, 2)
	require.NoError(t, err)
	require.Len(t, roads, 2)
	assert.InDelta(t, 40.02, roads[0].Lat, 1e-9)
	assert.InDelta(t, -75.01, roads[0].Lon, 1e-9)
	assert.InDelta(t, 40.001, roads[1].Lat, 1e-9)
	assert.InDelta(t, -75.001, roads[1].Lon, 1e-9)

	require.Len(t, queries, 2)
	assert.Contains(t, queries[0], "(around:2000,40.000000,-75.000000)")
	assert.Contains(t, queries[1], `way["highway"~`)
}

func TestOverpassRepository_KeepsPlaceOnWayVertex(t *testing.T) {
	repo := newTestOverpass(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, sharedVertexResponse)
	}, 5)

	places, err := repo.GetPlaces(context.Background(), 40, -75, 2)
	require.NoError(t, err)
	require.Len(t, places, 2)

	assert.Equal(t, "node", places[0].Type)
	assert.Equal(t, int64(1), places[0].ID)
	assert.Equal(t, "fitness_station", places[0].Tags["leisure"])

	assert.Equal(t, "way", places[1].Type)
	assert.InDelta(t, 40.001, places[1].Lat, 1e-9)
}

func TestOverpassRepository_FailuresTripBreaker(t *testing.T) {
	var calls atomic.Int32
	repo := newTestOverpass(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "too busy", http.StatusTooManyRequests)
	}, 2)

	for i := 0; i < 4; i++ {
		_, err := repo.GetPlaces(context.Background(), 40, -75, 2)
		require.Error(t, err)
		assert.True(t, errors.Is(err, model.ErrProviderUnavailable), "got %v", err)
	}
	assert.Equal(t, int32(2), calls.Load())
}

func TestOverpassRepository_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	repo := newTestOverpass(t, func(w http.ResponseWriter, _ *http.Request) {
		<-release
		fmt.Fprint(w, overpassResponse)
	}, 1)
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := repo.GetPlaces(ctx, 40, -75, 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, errors.Is(err, model.ErrProviderUnavailable))
}

func TestPostGISRoadRepository_RejectsInvalidCoordinates(t *testing.T) {
	repo := NewPostGISRoadRepositoryWithDB(nil, DefaultRoadClasses)

	_, err := repo.GetRoads(context.Background(), 91, 0, 1)
	assert.ErrorIs(t, err, model.ErrInvalidCoordinates)
}

func TestDefaultRoadClasses(t *testing.T) {
	assert.Equal(t, []string{
		"motorway", "trunk", "primary", "secondary",
		"motorway_link", "trunk_link", "primary_link", "secondary_link",
	}, DefaultRoadClasses)
}
