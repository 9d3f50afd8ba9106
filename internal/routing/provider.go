// Package routing adapts road routing engines to geo.RouteProvider.
package routing

import (
	"errors"

	"github.com/comercial-rgb/techtrust-system-sub001/pkg/geo"
)

const tracerName = "routing"

var (
	// ErrNoRoute is returned when the engine answered but found no drivable route.
	ErrNoRoute = errors.New("no route between coordinates")
	// ErrUnexpectedCode is returned when the engine answered with a non-Ok status code.
	ErrUnexpectedCode = errors.New("unexpected routing response code")
)

// Provider is a named geo.RouteProvider. Names label metrics and logs.
type Provider interface {
	geo.RouteProvider
	Name() string
}

// IsUpstreamHealthy reports whether err still proves the engine is up
// (it answered, just without a usable route). Breakers treat these as successes.
func IsUpstreamHealthy(err error) bool {
	return err == nil || errors.Is(err, ErrNoRoute) || errors.Is(err, ErrUnexpectedCode)
}
