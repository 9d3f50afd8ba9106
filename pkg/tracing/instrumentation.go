package tracing

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys
const (
	RedisCommandKey = attribute.Key("redis.command")
	RedisKeyKey     = attribute.Key("redis.key")

	RouteProviderKey   = attribute.Key("route.provider")
	RouteDistanceKey   = attribute.Key("route.distance.meters")
	RouteDurationKey   = attribute.Key("route.duration.seconds")
	RouteFallbackKey   = attribute.Key("route.fallback")
	RouteCacheHitKey   = attribute.Key("route.cache_hit")
	OriginLatitudeKey  = attribute.Key("origin.latitude")
	OriginLongitudeKey = attribute.Key("origin.longitude")
	DestLatitudeKey    = attribute.Key("destination.latitude")
	DestLongitudeKey   = attribute.Key("destination.longitude")
)

// TraceRedisCommand wraps a Redis command with a client span. A cache miss
// (redis.Nil) is not recorded as an error.
func TraceRedisCommand(ctx context.Context, tracerName, command, key string, fn func(ctx context.Context) error) error {
	ctx, span := StartSpan(ctx, tracerName, "redis."+command, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		attribute.String("db.system", "redis"),
		RedisCommandKey.String(command),
		RedisKeyKey.String(key),
	)

	err := fn(ctx)
	if err != nil && !errors.Is(err, redis.Nil) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	return err
}

// TraceExternalAPI wraps a call to a third-party service with a client span.
func TraceExternalAPI[T any](ctx context.Context, tracerName, serviceName, operation string, fn func(ctx context.Context) (T, error)) (T, error) {
	ctx, span := StartSpan(ctx, tracerName, fmt.Sprintf("%s.%s", serviceName, operation),
		trace.WithSpanKind(trace.SpanKindClient),
	)
	defer span.End()

	span.SetAttributes(
		attribute.String("external.service", serviceName),
		attribute.String("external.operation", operation),
	)

	result, err := fn(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	return result, err
}

// RouteAttributes describes an origin/destination pair.
func RouteAttributes(fromLat, fromLon, toLat, toLon float64) []attribute.KeyValue {
	return []attribute.KeyValue{
		OriginLatitudeKey.Float64(fromLat),
		OriginLongitudeKey.Float64(fromLon),
		DestLatitudeKey.Float64(toLat),
		DestLongitudeKey.Float64(toLon),
	}
}
