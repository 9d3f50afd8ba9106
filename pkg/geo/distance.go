// Package geo implements the distance, travel-time and travel-fee math used to
// price on-site service calls. Everything here is pure except
// CalculateRoadDistance, which asks a RouteProvider for the real driving route.
package geo

import "math"

const (
	earthRadiusKm = 6371.0

	// RoadCorrectionFactor scales straight-line distance into an approximation
	// of driving distance when no routing service answer is available.
	RoadCorrectionFactor = 1.4

	// DefaultAverageSpeedKmh is the urban average speed used for travel time estimates.
	DefaultAverageSpeedKmh = 30.0

	kmPerMile  = 1.60934
	milesPerKm = 0.621371
)

// Location is a WGS84 point in decimal degrees. No range checks are applied;
// see ValidateLocation for callers that accept untrusted input.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180.0
}

func toDegrees(radians float64) float64 {
	return radians * 180.0 / math.Pi
}

// Haversine calculates the great-circle distance in kilometres between two
// coordinates on a sphere of radius 6371 km.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// CalculateDistance returns the estimated driving distance in kilometres:
// the Haversine distance multiplied by RoadCorrectionFactor.
func CalculateDistance(lat1, lon1, lat2, lon2 float64) float64 {
	return Haversine(lat1, lon1, lat2, lon2) * RoadCorrectionFactor
}

// GetDistanceBetweenLocations is CalculateDistance for two Locations.
func GetDistanceBetweenLocations(from, to Location) float64 {
	return CalculateDistance(from.Latitude, from.Longitude, to.Latitude, to.Longitude)
}

// CalculateTravelFee charges feePerKm for every kilometre beyond freeKm.
// Distances up to and including freeKm are free. With zero freeKm and
// feePerKm the fee is always zero.
func CalculateTravelFee(distanceKm, freeKm, feePerKm float64) float64 {
	if distanceKm <= freeKm {
		return 0
	}
	return (distanceKm - freeKm) * feePerKm
}

// IsWithinServiceRadius reports whether the estimated driving distance between
// the provider and the service location is at most serviceRadiusKm.
func IsWithinServiceRadius(providerLocation, serviceLocation Location, serviceRadiusKm float64) bool {
	return GetDistanceBetweenLocations(providerLocation, serviceLocation) <= serviceRadiusKm
}

// EstimateTravelTime returns the travel time in whole minutes at the given
// average speed. A non-positive speed falls back to DefaultAverageSpeedKmh.
func EstimateTravelTime(distanceKm, averageSpeedKmh float64) int {
	if averageSpeedKmh <= 0 {
		averageSpeedKmh = DefaultAverageSpeedKmh
	}
	return int(math.Round((distanceKm / averageSpeedKmh) * 60))
}

// KmToMiles converts kilometres to miles.
func KmToMiles(km float64) float64 {
	return km * milesPerKm
}

// MilesToKm converts miles to kilometres. The constant is not the exact
// reciprocal of the one used by KmToMiles.
func MilesToKm(miles float64) float64 {
	return miles * kmPerMile
}
