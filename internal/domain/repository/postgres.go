package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"activity_service/internal/domain/model"
	"activity_service/internal/metrics"
)

// DefaultRoadClasses - классы highway, которые считаются крупными дорогами
var DefaultRoadClasses = strings.Split(majorHighways, "|")

// PostGISRoadRepository reads major-road samples from a PostGIS table loaded from an
// OSM extract (osm2pgsql style: planet_osm_line with a highway column and way geometry).
type PostGISRoadRepository struct {
	db      *sqlx.DB
	classes []string
}

func NewPostGISRoadRepository(connStr string) (*PostGISRoadRepository, error) {
	db, err := sqlx.Connect("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgis: %w", err)
	}
	return NewPostGISRoadRepositoryWithDB(db, DefaultRoadClasses), nil
}

func NewPostGISRoadRepositoryWithDB(db *sqlx.DB, classes []string) *PostGISRoadRepository {
	return &PostGISRoadRepository{db: db, classes: classes}
}

type roadRow struct {
	Lat float64 `db:"lat"`
	Lon float64 `db:"lon"`
}

const roadsQuery = `
		SELECT
			ST_Y(ST_Centroid(ST_Transform(way, 4326))) AS lat,
			ST_X(ST_Centroid(ST_Transform(way, 4326))) AS lon
		FROM planet_osm_line
		WHERE highway = ANY($1)
		AND ST_DWithin(
			ST_Transform(way, 4326)::geography,
			ST_SetSRID(ST_MakePoint($2, $3), 4326)::geography,
			$4
		)`

func (r *PostGISRoadRepository) GetRoads(ctx context.Context, lat, lon, radiusKm float64) ([]model.GeoPoint, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, fmt.Errorf("%w: lat=%f lon=%f", model.ErrInvalidCoordinates, lat, lon)
	}

	start := time.Now()
	var rows []roadRow
	err := r.db.SelectContext(ctx, &rows, roadsQuery,
		pq.Array(r.classes),
		lon, lat,
		radiusKm*1000,
	)
	metrics.ObserveProvider("postgis", "roads", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to query roads: %w", err)
	}

	points := make([]model.GeoPoint, 0, len(rows))
	for _, row := range rows {
		points = append(points, model.GeoPoint{Lat: row.Lat, Lon: row.Lon})
	}
	return points, nil
}

func (r *PostGISRoadRepository) Close() error {
	return r.db.Close()
}
