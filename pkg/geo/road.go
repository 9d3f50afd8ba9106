package geo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// RoadDistanceTimeout bounds a single routing lookup.
const RoadDistanceTimeout = 5 * time.Second

// ErrInvalidRoute is returned for routes with negative or non-finite metrics.
var ErrInvalidRoute = errors.New("invalid route metrics")

// RouteInfo is the driving route reported by a routing provider.
type RouteInfo struct {
	DistanceMeters  float64 `json:"distance_meters"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// RouteProvider resolves the driving route between two points.
type RouteProvider interface {
	Route(ctx context.Context, from, to Location) (RouteInfo, error)
}

// RouteProviderFunc adapts a function to the RouteProvider interface.
type RouteProviderFunc func(ctx context.Context, from, to Location) (RouteInfo, error)

// Route calls f(ctx, from, to).
func (f RouteProviderFunc) Route(ctx context.Context, from, to Location) (RouteInfo, error) {
	return f(ctx, from, to)
}

// RoadDistanceResult is the outcome of CalculateRoadDistance. IsRoadDistance
// is false when the values are a corrected Haversine estimate.
type RoadDistanceResult struct {
	DistanceKm      float64 `json:"distance_km"`
	DurationMinutes int     `json:"duration_minutes"`
	IsRoadDistance  bool    `json:"is_road_distance"`
}

// CalculateRoadDistance asks provider for the driving distance between two
// points and never fails: if the provider is nil, errors, returns a bad route
// or does not answer within RoadDistanceTimeout, the result falls back to
// CalculateDistance at DefaultAverageSpeedKmh with IsRoadDistance unset.
func CalculateRoadDistance(ctx context.Context, provider RouteProvider, lat1, lon1, lat2, lon2 float64) RoadDistanceResult {
	return roadDistance(ctx, provider, RoadDistanceTimeout, Location{Latitude: lat1, Longitude: lon1}, Location{Latitude: lat2, Longitude: lon2})
}

func roadDistance(ctx context.Context, provider RouteProvider, timeout time.Duration, from, to Location) RoadDistanceResult {
	if provider != nil {
		route, err := lookupRoute(ctx, provider, timeout, from, to)
		if err == nil {
			return RoadDistanceResult{
				DistanceKm:      route.DistanceMeters / 1000,
				DurationMinutes: int(math.Round(route.DurationSeconds / 60)),
				IsRoadDistance:  true,
			}
		}
	}

	return EstimateRoadDistance(from, to)
}

// EstimateRoadDistance is the offline result CalculateRoadDistance falls back to.
func EstimateRoadDistance(from, to Location) RoadDistanceResult {
	distanceKm := GetDistanceBetweenLocations(from, to)
	return RoadDistanceResult{
		DistanceKm:      distanceKm,
		DurationMinutes: EstimateTravelTime(distanceKm, DefaultAverageSpeedKmh),
		IsRoadDistance:  false,
	}
}

type routeOutcome struct {
	route RouteInfo
	err   error
}

// lookupRoute enforces the timeout even when the provider ignores ctx.
func lookupRoute(ctx context.Context, provider RouteProvider, timeout time.Duration, from, to Location) (RouteInfo, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan routeOutcome, 1)
	go func() {
		route, err := provider.Route(ctx, from, to)
		done <- routeOutcome{route: route, err: err}
	}()

	select {
	case <-ctx.Done():
		return RouteInfo{}, ctx.Err()
	case out := <-done:
		if out.err != nil {
			return RouteInfo{}, out.err
		}
		if !validMetric(out.route.DistanceMeters) || !validMetric(out.route.DurationSeconds) {
			return RouteInfo{}, fmt.Errorf("%w: distance=%v duration=%v", ErrInvalidRoute, out.route.DistanceMeters, out.route.DurationSeconds)
		}
		return out.route, nil
	}
}

func validMetric(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
