// internal/domain/geo/geo.go

package geo

import (
	"math"
	"time"
)

const (
	// EarthRadiusMeters is the mean Earth radius used for great-circle math.
	EarthRadiusMeters = 6371000.0

	// RevealRadiusMeters is the "you must be standing here" radius. A souffle
	// can only be revealed in place from within this distance.
	RevealRadiusMeters = 15.0

	// ClusterRadiusMeters is the grouping radius for echo-place detection.
	// Distinct from the reveal radius; the comparison against it is strict.
	ClusterRadiusMeters = 50.0
)

// Location represents a geographic point with optional metadata
type Location struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  float64   `json:"accuracy,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// DistanceMeters returns the great-circle distance between two coordinates
// using the haversine formula. NaN inputs propagate NaN.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	rlat1 := lat1 * math.Pi / 180.0
	rlon1 := lon1 * math.Pi / 180.0
	rlat2 := lat2 * math.Pi / 180.0
	rlon2 := lon2 * math.Pi / 180.0

	dLat := rlat2 - rlat1
	dLon := rlon2 - rlon1

	hSin := math.Sin(dLat / 2)
	hSin *= hSin

	vSin := math.Sin(dLon / 2)
	vSin *= vSin

	h := hSin + math.Cos(rlat1)*math.Cos(rlat2)*vSin

	return 2 * EarthRadiusMeters * math.Asin(math.Sqrt(h))
}

// Distance returns the great-circle distance in meters between two locations.
func Distance(a, b Location) float64 {
	return DistanceMeters(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
}

// IsWithinRevealDistance reports whether an observer is close enough to a
// target point to reveal in place. The boundary is inclusive: exactly
// RevealRadiusMeters away still counts.
func IsWithinRevealDistance(userLat, userLon, targetLat, targetLon float64) bool {
	return DistanceMeters(userLat, userLon, targetLat, targetLon) <= RevealRadiusMeters
}
