// Package redis wraps go-redis with the few operations the route cache needs.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/comercial-rgb/techtrust-system-sub001/pkg/config"
	"github.com/comercial-rgb/techtrust-system-sub001/pkg/resilience"
	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned by GetString when the key does not exist.
var ErrCacheMiss = errors.New("cache miss")

// ClientInterface defines the Redis operations used by caches and health checks.
type ClientInterface interface {
	SetWithExpiration(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Ping(ctx context.Context) error
	Close() error
}

var _ ClientInterface = (*Client)(nil)

// Client wraps the Redis client
type Client struct {
	*redis.Client
	writeRetry resilience.RetryConfig
}

// NewRedisClient connects to Redis and verifies the connection with PING.
func NewRedisClient(cfg *config.RedisConfig) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("unable to connect to redis: %w", err)
	}

	return NewFromClient(client), nil
}

// NewFromClient wraps an existing go-redis client (tests pass a redismock client).
func NewFromClient(client *redis.Client) *Client {
	return &Client{
		Client: client,
		writeRetry: resilience.RetryConfig{
			MaxAttempts:       2,
			InitialBackoff:    20 * time.Millisecond,
			MaxBackoff:        100 * time.Millisecond,
			BackoffMultiplier: 2,
			RetryableChecker:  isRedisRetryable,
		},
	}
}

// SetWithExpiration stores value under key, retrying once on transient network errors.
func (c *Client) SetWithExpiration(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	_, err := resilience.Retry(ctx, c.writeRetry, "redis.set", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.Set(ctx, key, value, expiration).Err()
	})
	return err
}

// GetString gets a string value by key. Missing keys yield ErrCacheMiss.
func (c *Client) GetString(ctx context.Context, key string) (string, error) {
	val, err := c.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	return val, err
}

// Ping checks connectivity; used by the /ready check.
func (c *Client) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

// Close closes the Redis client
func (c *Client) Close() error {
	return c.Client.Close()
}

func isRedisRetryable(err error) bool {
	if err == nil || errors.Is(err, redis.Nil) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	msg := strings.ToLower(err.Error())
	for _, transient := range []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"i/o timeout",
		"pool timeout",
		"unexpected eof",
		"loading",
	} {
		if strings.Contains(msg, transient) {
			return true
		}
	}
	return false
}
