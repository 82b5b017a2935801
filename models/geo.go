package models

// GeoPoint is a GeoJSON point as stored in the 2dsphere-indexed location
// fields. Coordinates are [longitude, latitude].
type GeoPoint struct {
	Type        string    `json:"type" bson:"type"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates"`
}

// NewGeoPoint builds a GeoJSON point from a longitude/latitude pair
func NewGeoPoint(longitude, latitude float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: []float64{longitude, latitude}}
}

// Valid reports whether the point is a well-formed longitude/latitude pair
func (p GeoPoint) Valid() bool {
	if len(p.Coordinates) != 2 {
		return false
	}
	lng, lat := p.Coordinates[0], p.Coordinates[1]
	return lng >= -180 && lng <= 180 && lat >= -90 && lat <= 90
}
