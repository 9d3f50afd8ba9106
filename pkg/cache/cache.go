// Package cache stores JSON values in Redis.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/comercial-rgb/techtrust-system-sub001/pkg/logger"
	redisclient "github.com/comercial-rgb/techtrust-system-sub001/pkg/redis"
	"github.com/comercial-rgb/techtrust-system-sub001/pkg/tracing"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrCorrupt is returned by Get when a stored value is not valid JSON for the target.
var ErrCorrupt = errors.New("corrupt cache entry")

// DefaultLoadTimeout bounds a shared GetOrLoad load.
const DefaultLoadTimeout = 10 * time.Second

// Manager handles caching operations with JSON serialization
type Manager struct {
	redis       redisclient.ClientInterface
	tracerName  string
	loadTimeout time.Duration
	loads       singleflight.Group
}

// Option configures a Manager.
type Option func(*Manager)

// WithLoadTimeout bounds loads shared between GetOrLoad callers.
func WithLoadTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.loadTimeout = d
		}
	}
}

// NewManager creates a new cache manager. Redis commands are traced under tracerName.
func NewManager(redis redisclient.ClientInterface, tracerName string, opts ...Option) *Manager {
	m := &Manager{redis: redis, tracerName: tracerName, loadTimeout: DefaultLoadTimeout}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get retrieves a cached value and unmarshals it into result.
// A missing key yields redis.ErrCacheMiss.
func (m *Manager) Get(ctx context.Context, key string, result interface{}) error {
	var data string
	var miss bool
	err := tracing.TraceRedisCommand(ctx, m.tracerName, "GET", key, func(ctx context.Context) error {
		var err error
		data, err = m.redis.GetString(ctx, key)
		if errors.Is(err, redisclient.ErrCacheMiss) {
			miss = true
			return nil
		}
		return err
	})
	if err != nil {
		return err
	}
	if miss {
		return redisclient.ErrCacheMiss
	}

	if err := json.Unmarshal([]byte(data), result); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}
	return nil
}

// Set marshals and caches a value with expiration
func (m *Manager) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	return tracing.TraceRedisCommand(ctx, m.tracerName, "SET", key, func(ctx context.Context) error {
		return m.redis.SetWithExpiration(ctx, key, string(data), ttl)
	})
}

// GetOrLoad returns the cached value for key, or calls load and caches its result.
// Concurrent misses on one key share a single load. The shared load keeps the
// caller's values but not its cancellation, and runs under the manager's load
// timeout; each caller stops waiting when its own ctx is done.
// Cache failures are logged and never fail the call; load errors are returned
// and not cached. hit reports whether the value came from the cache.
func GetOrLoad[T any](ctx context.Context, m *Manager, key string, ttl time.Duration, load func(ctx context.Context) (T, error)) (value T, hit bool, err error) {
	err = m.Get(ctx, key, &value)
	if err == nil {
		return value, true, nil
	}
	if !errors.Is(err, redisclient.ErrCacheMiss) {
		logger.WithContext(ctx).Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}

	shared := m.loads.DoChan(key, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.loadTimeout)
		defer cancel()

		loaded, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		if err := m.Set(loadCtx, key, loaded, ttl); err != nil {
			logger.WithContext(ctx).Warn("cache write failed", zap.String("key", key), zap.Error(err))
		}
		return loaded, nil
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, false, ctx.Err()
	case res := <-shared:
		if res.Err != nil {
			return zero, false, res.Err
		}
		return res.Val.(T), false, nil
	}
}

// HashKey builds a fixed-length key from prefix and the sha256 of raw.
func HashKey(prefix, raw string) string {
	hash := sha256.Sum256([]byte(raw))
	return prefix + hex.EncodeToString(hash[:16])
}
