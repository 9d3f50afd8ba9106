package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/comercial-rgb/techtrust-system-sub001/internal/routing"
	"github.com/comercial-rgb/techtrust-system-sub001/internal/travel"
	"github.com/comercial-rgb/techtrust-system-sub001/pkg/common"
	"github.com/comercial-rgb/techtrust-system-sub001/pkg/config"
	"github.com/comercial-rgb/techtrust-system-sub001/pkg/errors"
	"github.com/comercial-rgb/techtrust-system-sub001/pkg/geo"
	"github.com/comercial-rgb/techtrust-system-sub001/pkg/logger"
	"github.com/comercial-rgb/techtrust-system-sub001/pkg/middleware"
	redisClient "github.com/comercial-rgb/techtrust-system-sub001/pkg/redis"
	"github.com/comercial-rgb/techtrust-system-sub001/pkg/resilience"
	"github.com/comercial-rgb/techtrust-system-sub001/pkg/tracing"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const serviceName = "travel-service"

func main() {
	cfg, err := config.Load(serviceName)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	if err := logger.Init(cfg.Server.Environment, serviceName); err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	version := cfg.Server.Version
	logger.Info("Starting travel service",
		zap.String("service", serviceName),
		zap.String("version", version),
	)

	tp, err := tracing.InitTracer(tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: version,
		Environment:    cfg.Server.Environment,
		OTLPEndpoint:   cfg.Tracing.OTLPEndpoint,
		SampleRate:     cfg.Tracing.SampleRate,
		Enabled:        cfg.Tracing.Enabled,
	}, logger.Get())
	if err != nil {
		logger.Warn("Failed to initialize tracer, continuing without tracing", zap.Error(err))
	} else if tp != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				logger.Warn("Failed to shutdown tracer", zap.Error(err))
			}
		}()
	}

	sentryEnabled, err := errors.InitSentry(errors.ConfigFrom(cfg))
	if err != nil {
		logger.Warn("Failed to initialize Sentry, continuing without error tracking", zap.Error(err))
	} else if sentryEnabled {
		defer errors.Flush(2 * time.Second)
		logger.Info("Sentry error tracking enabled")
	}

	var redis *redisClient.Client
	if cfg.Redis.Enabled {
		redis, err = redisClient.NewRedisClient(&cfg.Redis)
		if err != nil {
			logger.Warn("Redis unavailable, route cache disabled", zap.Error(err))
			redis = nil
		} else {
			defer redis.Close()
			logger.Info("Connected to Redis", zap.String("addr", cfg.Redis.RedisAddr()))
		}
	}

	osrm, routes := buildRouteProvider(cfg, redis)
	service := travel.NewService(routes, travel.RulesFromConfig(cfg.Travel))
	handler := travel.NewHandler(service)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RecoveryWithSentry())
	if sentryEnabled {
		router.Use(middleware.SentryMiddleware())
	}
	router.Use(middleware.CorrelationID())
	router.Use(middleware.Tracing(serviceName))
	router.Use(middleware.Metrics(serviceName))
	router.Use(middleware.RequestTimeout(cfg.Server.RequestTimeout()))
	router.Use(middleware.RequestLogger(serviceName))
	router.Use(middleware.CORS(cfg.Server.CORSOrigins))
	if sentryEnabled {
		router.Use(middleware.ErrorHandler())
	}

	router.GET("/healthz", common.LivenessProbe(serviceName, version))

	readiness := map[string]common.CheckFunc{}
	if redis != nil {
		readiness["redis"] = redis.Ping
	}
	router.GET("/ready", common.ReadinessProbe(serviceName, version, readiness))

	if osrm != nil {
		router.GET("/health/routing", common.ReadinessProbe(serviceName, version, map[string]common.CheckFunc{
			"osrm": osrm.HealthCheck,
		}))
	}

	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"service": serviceName, "version": version})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handler.RegisterRoutes(router.Group("/api/v1"))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("Server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server stopped")
}

// buildRouteProvider wires OSRM behind a breaker and, when Redis is up, a cache.
// It returns nil providers when routing is switched off.
func buildRouteProvider(cfg *config.Config, redis *redisClient.Client) (*routing.OSRMProvider, geo.RouteProvider) {
	if cfg.Routing.RoutingDisabled() {
		logger.Info("Routing engine disabled, road distances use the corrected estimate")
		return nil, nil
	}

	opts := []routing.OSRMOption{routing.WithProfile(cfg.Routing.Profile)}
	if cfg.Resilience.CircuitBreaker.Enabled {
		settings := resilience.BuildSettings("osrm", cfg.Resilience.CircuitBreaker.SettingsFor("osrm"))
		settings.IsSuccessful = routing.IsUpstreamHealthy
		opts = append(opts, routing.WithBreaker(resilience.NewCircuitBreaker(settings)))
		logger.Info("Circuit breaker enabled for OSRM")
	}

	osrm := routing.NewOSRMProvider(cfg.Routing.OSRMBaseURL, cfg.Routing.Timeout(), opts...)
	logger.Info("OSRM routing enabled",
		zap.String("base_url", cfg.Routing.OSRMBaseURL),
		zap.String("profile", osrm.Profile()),
		zap.Duration("timeout", cfg.Routing.Timeout()),
	)

	if redis == nil {
		return osrm, osrm
	}
	logger.Info("Route cache enabled", zap.Duration("ttl", cfg.Routing.CacheTTL()))
	return osrm, routing.NewCachedProvider(osrm, redis, cfg.Routing.CacheTTL(), cfg.Routing.CachePrefix)
}
