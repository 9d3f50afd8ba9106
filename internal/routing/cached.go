package routing

import (
	"context"
	"fmt"
	"time"

	"github.com/comercial-rgb/techtrust-system-sub001/pkg/cache"
	"github.com/comercial-rgb/techtrust-system-sub001/pkg/geo"
	redisclient "github.com/comercial-rgb/techtrust-system-sub001/pkg/redis"
	"github.com/comercial-rgb/techtrust-system-sub001/pkg/tracing"
)

// coordinates are rounded to 5 decimals (about 1 m) before keying
const cacheKeyPrecision = 5

// CachedProvider keeps successful routes from next in Redis.
// Cache failures are logged and never fail a lookup.
type CachedProvider struct {
	next   Provider
	cache  *cache.Manager
	ttl    time.Duration
	prefix string
}

// NewCachedProvider decorates next with a Redis cache.
func NewCachedProvider(next Provider, redis redisclient.ClientInterface, ttl time.Duration, prefix string) *CachedProvider {
	return &CachedProvider{
		next:   next,
		cache:  cache.NewManager(redis, tracerName, cache.WithLoadTimeout(geo.RoadDistanceTimeout)),
		ttl:    ttl,
		prefix: prefix,
	}
}

// Name reports the wrapped provider's name.
func (c *CachedProvider) Name() string {
	return c.next.Name()
}

// Route serves from the cache when possible, otherwise asks the wrapped provider
// and caches the answer.
func (c *CachedProvider) Route(ctx context.Context, from, to geo.Location) (geo.RouteInfo, error) {
	info, hit, err := cache.GetOrLoad(ctx, c.cache, c.cacheKey(from, to), c.ttl, func(ctx context.Context) (geo.RouteInfo, error) {
		return c.next.Route(ctx, from, to)
	})
	recordCache(c.Name(), hit)
	if err != nil {
		return geo.RouteInfo{}, err
	}

	tracing.AddSpanAttributes(ctx, tracing.RouteCacheHitKey.Bool(hit))
	return info, nil
}

func (c *CachedProvider) cacheKey(from, to geo.Location) string {
	return cache.HashKey(c.prefix, fmt.Sprintf("%s:%.*f,%.*f:%.*f,%.*f",
		c.next.Name(),
		cacheKeyPrecision, from.Latitude, cacheKeyPrecision, from.Longitude,
		cacheKeyPrecision, to.Latitude, cacheKeyPrecision, to.Longitude,
	))
}
