package routing

import (
	"errors"

	"github.com/comercial-rgb/techtrust-system-sub001/pkg/resilience"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Lookup results used as the "result" label.
const (
	ResultOK          = "ok"
	ResultNoRoute     = "no_route"
	ResultError       = "error"
	ResultCircuitOpen = "circuit_open"
	ResultCacheHit    = "cache_hit"
	ResultCacheMiss   = "cache_miss"
)

var (
	routeLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "techtrust",
		Name:      "route_lookups_total",
		Help:      "Road route lookups by provider and result",
	}, []string{"provider", "result"})

	roadDistanceFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "techtrust",
		Name:      "road_distance_fallbacks_total",
		Help:      "Road distance requests answered with the corrected straight-line estimate",
	})
)

func lookupResult(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, ErrNoRoute):
		return ResultNoRoute
	case errors.Is(err, resilience.ErrCircuitOpen):
		return ResultCircuitOpen
	default:
		return ResultError
	}
}

func recordLookup(provider string, err error) {
	routeLookups.WithLabelValues(provider, lookupResult(err)).Inc()
}

func recordCache(provider string, hit bool) {
	result := ResultCacheMiss
	if hit {
		result = ResultCacheHit
	}
	routeLookups.WithLabelValues(provider, result).Inc()
}

// RecordFallback counts a road distance answered by the straight-line estimate.
func RecordFallback() {
	roadDistanceFallbacks.Inc()
}
