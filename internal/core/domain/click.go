package domain

import (
	"errors"
	"time"
)

var ErrInvalidCoordinates = errors.New("coordinates out of range")

// ClickEvent is a single point a user clicked on the map.
// Owner is a denormalized copy of the username at write time.
type ClickEvent struct {
	ID        string    `json:"id"`
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	Owner     string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
}

// ValidCoordinates reports whether lat/lon lie inside the WGS84 ranges.
func ValidCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
