package resilience

import (
	"strconv"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker"
)

const metricsNamespace = "techtrust"

var (
	breakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "circuit_breaker_state",
		Help:      "Current state of circuit breakers (0=closed, 0.5=half-open, 1=open)",
	}, []string{"breaker"})

	breakerRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "circuit_breaker_requests_total",
		Help:      "Operations executed through a circuit breaker",
	}, []string{"breaker"})

	breakerFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "circuit_breaker_failures_total",
		Help:      "Breaker executions that returned an error",
	}, []string{"breaker"})

	breakerRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "circuit_breaker_rejections_total",
		Help:      "Requests rejected because the breaker was open or half-open and saturated",
	}, []string{"breaker"})

	breakerTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "circuit_breaker_state_changes_total",
		Help:      "Circuit breaker state transitions",
	}, []string{"breaker", "from", "to"})

	retryAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "retry_attempts_total",
		Help:      "Attempts made by retried operations",
	}, []string{"operation", "result"})

	retryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "retry_operation_duration_seconds",
		Help:      "Duration of retried operations including every attempt",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
	}, []string{"operation", "result"})

	retryBackoff = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "retry_backoff_duration_seconds",
		Help:      "Backoff delays between retry attempts",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 8),
	}, []string{"operation"})

	breakerIDCounter uint64
)

func nextBreakerName(base string) string {
	if base != "" {
		return base
	}
	id := atomic.AddUint64(&breakerIDCounter, 1)
	return "breaker-" + strconv.FormatUint(id, 10)
}

func breakerStateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 0.5
	case gobreaker.StateOpen:
		return 1
	default:
		return -1
	}
}

func recordBreakerState(name string, state gobreaker.State) {
	breakerState.WithLabelValues(name).Set(breakerStateValue(state))
}

func recordBreakerStateChange(name string, from, to gobreaker.State) {
	breakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
	recordBreakerState(name, to)
}

func recordBreakerRequest(name string) {
	breakerRequests.WithLabelValues(name).Inc()
}

func recordBreakerFailure(name string) {
	breakerFailures.WithLabelValues(name).Inc()
}

func recordBreakerRejection(name string) {
	breakerRejections.WithLabelValues(name).Inc()
}

func resultLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// RecordRetryAttempt counts one attempt of a retried operation.
func RecordRetryAttempt(operation string, success bool) {
	retryAttempts.WithLabelValues(operation, resultLabel(success)).Inc()
}

// RecordRetryOperation records the overall duration of a retried operation.
func RecordRetryOperation(operation string, durationSeconds float64, success bool) {
	retryDuration.WithLabelValues(operation, resultLabel(success)).Observe(durationSeconds)
}

// RecordRetryBackoff records a backoff delay duration
func RecordRetryBackoff(operation string, durationSeconds float64) {
	retryBackoff.WithLabelValues(operation).Observe(durationSeconds)
}
