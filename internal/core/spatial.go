package core

import (
	"math"

	"activity_service/internal/domain/model"
)

const earthRadiusKm = 6371.0 // Радиус Земли в км

// HaversineKm - расстояние по большому кругу на сферической Земле
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

// NearestRoadMeters returns the distance to the closest road sample in meters,
// or nil when no road data is available.
func NearestRoadMeters(p model.GeoPoint, roads []model.GeoPoint) *float64 {
	if len(roads) == 0 {
		return nil
	}

	minDist := HaversineKm(p.Lat, p.Lon, roads[0].Lat, roads[0].Lon)
	for _, r := range roads[1:] {
		if d := HaversineKm(p.Lat, p.Lon, r.Lat, r.Lon); d < minDist {
			minDist = d
		}
	}
	meters := minDist * 1000
	return &meters
}

// ValidCoordinates checks WGS84 ranges.
func ValidCoordinates(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
