// Package geo computes great-circle distances on a spherical Earth.
package geo

import (
	"math"

	"github.com/YusovID/donor-match-service/internal/apperrors"
	"github.com/YusovID/donor-match-service/internal/domain"
)

const (
	EarthRadiusKm = 6371.0

	// MaxDistanceKm is half the circumference of the sphere.
	MaxDistanceKm = math.Pi * EarthRadiusKm
)

// Validate fails with *apperrors.InvalidCoordinateError when c is outside
// [-90, 90] x [-180, 180] or not a number.
func Validate(c domain.Coordinate) error {
	if math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) ||
		c.Latitude < -90 || c.Latitude > 90 ||
		c.Longitude < -180 || c.Longitude > 180 {
		return &apperrors.InvalidCoordinateError{Latitude: c.Latitude, Longitude: c.Longitude}
	}

	return nil
}

// Distance returns the haversine distance between a and b in kilometres.
func Distance(a, b domain.Coordinate) (float64, error) {
	if err := Validate(a); err != nil {
		return 0, err
	}

	if err := Validate(b); err != nil {
		return 0, err
	}

	return haversine(a, b), nil
}

func haversine(a, b domain.Coordinate) float64 {
	lat1 := radians(a.Latitude)
	lat2 := radians(b.Latitude)
	dLat := radians(b.Latitude - a.Latitude)
	dLon := radians(b.Longitude - a.Longitude)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)

	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon

	// Rounding can push h a hair outside [0, 1] near antipodes.
	h = math.Min(1, math.Max(0, h))

	return 2 * EarthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
