package services

import (
	"fmt"
	"math"
)

const earthRadiusMeters = 6371e3

// LocationPolicy loosely verifies that a sign-in happens near the office.
// Verification is advisory: requests without coordinates are allowed, only
// coordinates that resolve to a point outside the radius are refused.
type LocationPolicy struct {
	Latitude          float64
	Longitude         float64
	MaxDistanceMeters float64
}

// LocationResult is the outcome of a location check
type LocationResult struct {
	Allowed        bool
	DistanceMeters int
	Message        string
}

// Check measures the distance from the office and applies the radius policy.
func (p LocationPolicy) Check(lat, lon float64) LocationResult {
	distance := haversine(lat, lon, p.Latitude, p.Longitude)
	rounded := int(math.Round(distance))

	if distance <= p.MaxDistanceMeters {
		return LocationResult{Allowed: true, DistanceMeters: rounded}
	}
	return LocationResult{
		Allowed:        false,
		DistanceMeters: rounded,
		Message: fmt.Sprintf("You are %dm away from the office. Please be within %.0fm to sign in.",
			rounded, p.MaxDistanceMeters),
	}
}

// haversine returns the great-circle distance between two points in meters.
func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}
