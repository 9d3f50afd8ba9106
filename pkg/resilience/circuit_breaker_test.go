package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/comercial-rgb/techtrust-system-sub001/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func failing(context.Context) (interface{}, error) { return nil, errBoom }

func TestCircuitBreakerTripsAndReturnsOpenError(t *testing.T) {
	breaker := NewCircuitBreaker(Settings{
		Name:             "test-breaker",
		Timeout:          time.Minute,
		Interval:         time.Minute,
		FailureThreshold: 2,
		SuccessThreshold: 1,
	})

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := breaker.Execute(ctx, failing)
		require.ErrorIs(t, err, errBoom)
	}

	assert.False(t, breaker.Allow())
	assert.Equal(t, "open", breaker.State())

	_, err := breaker.Execute(ctx, func(context.Context) (interface{}, error) {
		return "ok", nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestCircuitBreakerHalfOpensAfterTimeout(t *testing.T) {
	breaker := NewCircuitBreaker(Settings{
		Name:             "recovering-breaker",
		Timeout:          20 * time.Millisecond,
		FailureThreshold: 1,
		SuccessThreshold: 1,
	})

	_, err := breaker.Execute(context.Background(), failing)
	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, "open", breaker.State())

	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, "half-open", breaker.State())
	assert.True(t, breaker.Allow())

	result, err := Run(context.Background(), breaker, func(context.Context) (string, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, "closed", breaker.State())
}

func TestCircuitBreakerIsSuccessfulKeepsBreakerClosed(t *testing.T) {
	errDomain := errors.New("no route")
	breaker := NewCircuitBreaker(Settings{
		Name:             "domain-breaker",
		Timeout:          time.Minute,
		FailureThreshold: 1,
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errDomain)
		},
	})

	for i := 0; i < 3; i++ {
		_, err := breaker.Execute(context.Background(), func(context.Context) (interface{}, error) {
			return nil, errDomain
		})
		require.ErrorIs(t, err, errDomain)
	}
	assert.True(t, breaker.Allow())
}

func TestCircuitBreakerPassesThroughOnSuccess(t *testing.T) {
	breaker := NewCircuitBreaker(Settings{Name: "success-breaker"})

	result, err := Run(context.Background(), breaker, func(context.Context) (string, error) {
		return "response", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "response", result)
	assert.Equal(t, "success-breaker", breaker.Name())
}

func TestNilCircuitBreakerRunsOperation(t *testing.T) {
	var breaker *CircuitBreaker

	result, err := Run(context.Background(), breaker, func(context.Context) (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.True(t, breaker.Allow())
	assert.Equal(t, "closed", breaker.State())
}

func TestExecuteRejectsNilOperation(t *testing.T) {
	breaker := NewCircuitBreaker(Settings{})
	_, err := breaker.Execute(context.Background(), nil)
	assert.Error(t, err)
	assert.NotEmpty(t, breaker.Name())
}

func TestBuildSettings(t *testing.T) {
	settings := BuildSettings("osrm", config.CircuitBreakerSettings{
		FailureThreshold: 3,
		SuccessThreshold: 2,
		TimeoutSeconds:   10,
		IntervalSeconds:  60,
	})

	assert.Equal(t, "osrm", settings.Name)
	assert.Equal(t, uint32(3), settings.FailureThreshold)
	assert.Equal(t, uint32(2), settings.SuccessThreshold)
	assert.Equal(t, 10*time.Second, settings.Timeout)
	assert.Equal(t, time.Minute, settings.Interval)
}
