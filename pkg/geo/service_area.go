package geo

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidCoordinate is returned by ValidateLocation.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// IsValidCoordinates reports whether latitude and longitude are finite and in range.
func IsValidCoordinates(latitude, longitude float64) bool {
	if math.IsNaN(latitude) || math.IsNaN(longitude) {
		return false
	}
	return latitude >= -90 && latitude <= 90 && longitude >= -180 && longitude <= 180
}

// ValidateLocation checks loc with IsValidCoordinates.
func ValidateLocation(loc Location) error {
	if !IsValidCoordinates(loc.Latitude, loc.Longitude) {
		return fmt.Errorf("%w: (%v, %v)", ErrInvalidCoordinate, loc.Latitude, loc.Longitude)
	}
	return nil
}

// ServiceArea describes where a provider works and what it charges to travel.
// Zero AverageSpeedKmh means DefaultAverageSpeedKmh.
type ServiceArea struct {
	RadiusKm        float64 `json:"service_radius_km"`
	FreeKm          float64 `json:"free_km"`
	FeePerKm        float64 `json:"fee_per_km"`
	AverageSpeedKmh float64 `json:"average_speed_kmh,omitempty"`
}

// DistanceInfo bundles everything needed to match a provider with a request.
type DistanceInfo struct {
	DistanceKm           float64 `json:"distance_km"`
	DistanceMiles        float64 `json:"distance_miles"`
	TravelFee            float64 `json:"travel_fee"`
	EstimatedTimeMinutes int     `json:"estimated_time_minutes"`
	WithinRadius         bool    `json:"within_radius"`
}

// ServiceDistance computes the estimated driving distance between a provider
// and a service location together with the fee, time and radius check for area.
func ServiceDistance(providerLocation, serviceLocation Location, area ServiceArea) DistanceInfo {
	distanceKm := GetDistanceBetweenLocations(providerLocation, serviceLocation)

	return DistanceInfo{
		DistanceKm:           distanceKm,
		DistanceMiles:        KmToMiles(distanceKm),
		TravelFee:            CalculateTravelFee(distanceKm, area.FreeKm, area.FeePerKm),
		EstimatedTimeMinutes: EstimateTravelTime(distanceKm, area.AverageSpeedKmh),
		WithinRadius:         distanceKm <= area.RadiusKm,
	}
}
