package model

// OSMElement is a node, way or relation as returned by Overpass, reduced to a single coordinate.
type OSMElement struct {
	ID     int64             `json:"id"`
	Type   string            `json:"type"`
	Lat    float64           `json:"lat"`
	Lon    float64           `json:"lon"`
	Tags   map[string]string `json:"tags"`
	Bounds Bounds            `json:"bounds"`
}

type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

func (b Bounds) Center() (lat, lon float64) {
	return (b.MinLat + b.MaxLat) / 2, (b.MinLon + b.MaxLon) / 2
}

// GeoPoint - точка на карте (например, сэмпл крупной дороги)
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Location - результат геокодирования
type Location struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	DisplayName string  `json:"display_name"`
}
