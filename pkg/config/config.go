package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DefaultOSRMBaseURL is the public OSRM demo server.
	DefaultOSRMBaseURL = "https://router.project-osrm.org"
	// OSRMDisabled as OSRM_BASE_URL switches routing to the offline estimator.
	OSRMDisabled = "off"

	// DefaultOSRMProfile is the OSRM routing profile used for road distances.
	DefaultOSRMProfile = "driving"

	DefaultOSRMTimeoutMs       = 5000
	MaxOSRMTimeoutMs           = 60000
	DefaultRouteCacheTTL       = 900
	DefaultRequestTimeoutSecs  = 15
	DefaultTravelFreeMiles     = 10.0
	DefaultTravelFeePerMile    = 1.50
	DefaultTravelMaxFee        = 50.0
	DefaultTracingSampleRate   = 0.1
	DefaultRouteCachePrefix    = "route:"
	DefaultSentrySampleRate    = 1.0
	DefaultServiceCORSOrigins  = "http://localhost:3000"
	defaultBreakerFailures     = 5
	defaultBreakerSuccesses    = 1
	defaultBreakerTimeoutSecs  = 30
	defaultBreakerIntervalSecs = 60
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	Redis      RedisConfig
	Routing    RoutingConfig
	Travel     TravelConfig
	Resilience ResilienceConfig
	Tracing    TracingConfig
	Sentry     SentryConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port                  string
	Environment           string
	ServiceName           string
	Version               string
	ReadTimeout           int
	WriteTimeout          int
	RequestTimeoutSeconds int
	CORSOrigins           string // Comma-separated list of allowed origins
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

// RoutingConfig configures the road routing provider.
type RoutingConfig struct {
	OSRMBaseURL     string
	Profile         string
	TimeoutMs       int
	CacheTTLSeconds int
	CachePrefix     string
}

// TravelConfig holds the default mileage fee rules used for quotes.
type TravelConfig struct {
	FreeMiles  float64
	FeePerMile float64
	MaxFee     float64
}

// ResilienceConfig groups runtime resilience controls
type ResilienceConfig struct {
	CircuitBreaker CircuitBreakerConfig
}

// CircuitBreakerConfig captures default and per-service breaker tuning
type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	SuccessThreshold int
	TimeoutSeconds   int
	IntervalSeconds  int
	ServiceOverrides map[string]CircuitBreakerSettings
}

// CircuitBreakerSettings overrides defaults for a specific upstream service
type CircuitBreakerSettings struct {
	FailureThreshold int `json:"failure_threshold"`
	SuccessThreshold int `json:"success_threshold"`
	TimeoutSeconds   int `json:"timeout_seconds"`
	IntervalSeconds  int `json:"interval_seconds"`
}

// TracingConfig controls the OpenTelemetry exporter.
type TracingConfig struct {
	Enabled      bool
	OTLPEndpoint string
	SampleRate   float64
}

// SentryConfig controls error reporting. An empty DSN disables it.
type SentryConfig struct {
	DSN        string
	SampleRate float64
	Debug      bool
}

// Enabled reports whether a Sentry DSN is configured.
func (c SentryConfig) Enabled() bool {
	return c.DSN != ""
}

// Load loads configuration from a .env file (if present) and environment variables.
func Load(serviceName string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:                  getEnv("PORT", "8080"),
			Environment:           getEnv("ENVIRONMENT", "development"),
			ServiceName:           serviceName,
			Version:               getEnv("SERVICE_VERSION", "dev"),
			ReadTimeout:           getEnvAsInt("READ_TIMEOUT", 10),
			WriteTimeout:          getEnvAsInt("WRITE_TIMEOUT", 10),
			RequestTimeoutSeconds: getEnvAsInt("REQUEST_TIMEOUT_SECONDS", DefaultRequestTimeoutSecs),
			CORSOrigins:           getEnv("CORS_ORIGINS", DefaultServiceCORSOrigins),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Routing: RoutingConfig{
			OSRMBaseURL:     strings.TrimRight(getEnv("OSRM_BASE_URL", DefaultOSRMBaseURL), "/"),
			Profile:         strings.TrimSpace(getEnv("OSRM_PROFILE", DefaultOSRMProfile)),
			TimeoutMs:       getEnvAsInt("OSRM_TIMEOUT_MS", DefaultOSRMTimeoutMs),
			CacheTTLSeconds: getEnvAsInt("ROUTE_CACHE_TTL_SECONDS", DefaultRouteCacheTTL),
			CachePrefix:     getEnv("ROUTE_CACHE_PREFIX", DefaultRouteCachePrefix),
		},
		Travel: TravelConfig{
			FreeMiles:  getEnvAsFloat("TRAVEL_FREE_MILES", DefaultTravelFreeMiles),
			FeePerMile: getEnvAsFloat("TRAVEL_FEE_PER_MILE", DefaultTravelFeePerMile),
			MaxFee:     getEnvAsFloat("TRAVEL_MAX_FEE", DefaultTravelMaxFee),
		},
		Resilience: ResilienceConfig{
			CircuitBreaker: CircuitBreakerConfig{
				Enabled:          getEnvAsBool("CB_ENABLED", false),
				FailureThreshold: getEnvAsInt("CB_FAILURE_THRESHOLD", defaultBreakerFailures),
				SuccessThreshold: getEnvAsInt("CB_SUCCESS_THRESHOLD", defaultBreakerSuccesses),
				TimeoutSeconds:   getEnvAsInt("CB_TIMEOUT_SECONDS", defaultBreakerTimeoutSecs),
				IntervalSeconds:  getEnvAsInt("CB_INTERVAL_SECONDS", defaultBreakerIntervalSecs),
			},
		},
		Tracing: TracingConfig{
			Enabled:      getEnvAsBool("OTEL_ENABLED", false),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			SampleRate:   getEnvAsFloat("OTEL_SAMPLE_RATE", DefaultTracingSampleRate),
		},
		Sentry: SentryConfig{
			DSN:        getEnv("SENTRY_DSN", ""),
			SampleRate: getEnvAsFloat("SENTRY_SAMPLE_RATE", DefaultSentrySampleRate),
			Debug:      getEnvAsBool("SENTRY_DEBUG", false),
		},
	}

	if breakerOverrides := getEnv("CB_SERVICE_OVERRIDES", ""); breakerOverrides != "" {
		var serviceConfig map[string]CircuitBreakerSettings
		if err := json.Unmarshal([]byte(breakerOverrides), &serviceConfig); err != nil {
			return nil, fmt.Errorf("invalid CB_SERVICE_OVERRIDES value: %w", err)
		}
		cfg.Resilience.CircuitBreaker.ServiceOverrides = serviceConfig
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cb := &cfg.Resilience.CircuitBreaker
	if cb.TimeoutSeconds <= 0 {
		cb.TimeoutSeconds = defaultBreakerTimeoutSecs
	}
	if cb.IntervalSeconds <= 0 {
		cb.IntervalSeconds = defaultBreakerIntervalSecs
	}
	if cb.FailureThreshold <= 0 {
		cb.FailureThreshold = defaultBreakerFailures
	}
	if cb.SuccessThreshold <= 0 {
		cb.SuccessThreshold = defaultBreakerSuccesses
	}
	if cfg.Server.RequestTimeoutSeconds <= 0 {
		cfg.Server.RequestTimeoutSeconds = DefaultRequestTimeoutSecs
	}
	if cfg.Routing.CacheTTLSeconds <= 0 {
		cfg.Routing.CacheTTLSeconds = DefaultRouteCacheTTL
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Routing.TimeoutMs <= 0 {
		return fmt.Errorf("OSRM_TIMEOUT_MS must be positive, got %d", c.Routing.TimeoutMs)
	}
	if c.Routing.TimeoutMs > MaxOSRMTimeoutMs {
		return fmt.Errorf("OSRM_TIMEOUT_MS (%d) exceeds maximum of %d", c.Routing.TimeoutMs, MaxOSRMTimeoutMs)
	}
	if c.Travel.FreeMiles < 0 {
		return fmt.Errorf("TRAVEL_FREE_MILES must not be negative, got %v", c.Travel.FreeMiles)
	}
	if c.Travel.FeePerMile < 0 {
		return fmt.Errorf("TRAVEL_FEE_PER_MILE must not be negative, got %v", c.Travel.FeePerMile)
	}
	if c.Travel.MaxFee < 0 {
		return fmt.Errorf("TRAVEL_MAX_FEE must not be negative, got %v", c.Travel.MaxFee)
	}
	if c.Routing.Profile == "" || strings.ContainsAny(c.Routing.Profile, "/?#") {
		return fmt.Errorf("OSRM_PROFILE must be a single path segment, got %q", c.Routing.Profile)
	}
	if math.IsNaN(c.Sentry.SampleRate) || c.Sentry.SampleRate < 0 || c.Sentry.SampleRate > 1 {
		return fmt.Errorf("SENTRY_SAMPLE_RATE must be within [0, 1], got %v", c.Sentry.SampleRate)
	}
	if math.IsNaN(c.Tracing.SampleRate) || c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be within [0, 1], got %v", c.Tracing.SampleRate)
	}
	return nil
}

// SettingsFor returns effective breaker settings for a specific upstream service name
func (c CircuitBreakerConfig) SettingsFor(service string) CircuitBreakerSettings {
	settings := CircuitBreakerSettings{
		FailureThreshold: c.FailureThreshold,
		SuccessThreshold: c.SuccessThreshold,
		TimeoutSeconds:   c.TimeoutSeconds,
		IntervalSeconds:  c.IntervalSeconds,
	}

	if override, ok := c.ServiceOverrides[service]; ok {
		if override.FailureThreshold > 0 {
			settings.FailureThreshold = override.FailureThreshold
		}
		if override.SuccessThreshold > 0 {
			settings.SuccessThreshold = override.SuccessThreshold
		}
		if override.TimeoutSeconds > 0 {
			settings.TimeoutSeconds = override.TimeoutSeconds
		}
		if override.IntervalSeconds > 0 {
			settings.IntervalSeconds = override.IntervalSeconds
		}
	}

	if settings.SuccessThreshold <= 0 {
		settings.SuccessThreshold = defaultBreakerSuccesses
	}
	if settings.FailureThreshold <= 0 {
		settings.FailureThreshold = defaultBreakerFailures
	}
	if settings.TimeoutSeconds <= 0 {
		settings.TimeoutSeconds = defaultBreakerTimeoutSecs
	}
	if settings.IntervalSeconds <= 0 {
		settings.IntervalSeconds = defaultBreakerIntervalSecs
	}

	return settings
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// RoutingDisabled reports whether OSRM lookups are switched off.
func (c RoutingConfig) RoutingDisabled() bool {
	return strings.EqualFold(c.OSRMBaseURL, OSRMDisabled)
}

// Timeout returns the per-request OSRM timeout.
func (c RoutingConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// CacheTTL returns how long road routes stay cached.
func (c RoutingConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// RequestTimeout returns the per-request handler deadline.
func (c ServerConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}
