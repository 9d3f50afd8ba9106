// Package errors reports unexpected failures to Sentry.
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/comercial-rgb/techtrust-system-sub001/pkg/common"
	"github.com/comercial-rgb/techtrust-system-sub001/pkg/config"
	"github.com/comercial-rgb/techtrust-system-sub001/pkg/logger"
	"github.com/getsentry/sentry-go"
)

// SentryConfig holds configuration for Sentry integration
type SentryConfig struct {
	DSN         string
	Environment string
	Release     string
	ServerName  string
	SampleRate  float64
	Debug       bool
}

// ConfigFrom builds the Sentry settings for a service from its loaded config.
func ConfigFrom(cfg *config.Config) SentryConfig {
	return SentryConfig{
		DSN:         cfg.Sentry.DSN,
		Environment: cfg.Server.Environment,
		Release:     fmt.Sprintf("%s@%s", cfg.Server.ServiceName, cfg.Server.Version),
		ServerName:  cfg.Server.ServiceName,
		SampleRate:  cfg.Sentry.SampleRate,
		Debug:       cfg.Sentry.Debug,
	}
}

// InitSentry initializes the Sentry SDK. Without a DSN reporting stays off and
// InitSentry returns false with no error.
func InitSentry(cfg SentryConfig) (bool, error) {
	if cfg.DSN == "" {
		return false, nil
	}
	if err := sentry.Init(ClientOptions(cfg)); err != nil {
		return false, fmt.Errorf("failed to initialize sentry: %w", err)
	}
	return true, nil
}

// ClientOptions maps cfg to SDK options with the service's event filters.
func ClientOptions(cfg SentryConfig) sentry.ClientOptions {
	return sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		ServerName:       cfg.ServerName,
		SampleRate:       cfg.SampleRate,
		Debug:            cfg.Debug,
		AttachStacktrace: true,
		BeforeSend:       dropLowSeverity,
		BeforeBreadcrumb: scrubBreadcrumb,
	}
}

// Info and debug events are business noise.
func dropLowSeverity(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	if event.Level == sentry.LevelInfo || event.Level == sentry.LevelDebug {
		return nil
	}
	return event
}

func scrubBreadcrumb(breadcrumb *sentry.Breadcrumb, _ *sentry.BreadcrumbHint) *sentry.Breadcrumb {
	if breadcrumb.Category == "http" && breadcrumb.Data != nil {
		delete(breadcrumb.Data, "Authorization")
		delete(breadcrumb.Data, "Cookie")
		delete(breadcrumb.Data, "X-API-Key")
	}
	return breadcrumb
}

// Flush flushes the Sentry buffer
func Flush(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}

// HubFromContext returns the request hub stored in ctx, or a clone of the
// current hub.
func HubFromContext(ctx context.Context) *sentry.Hub {
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		return hub
	}
	return sentry.CurrentHub().Clone()
}

// CaptureErrorWithContext reports err tagged with the request correlation ID
// and the given extras.
func CaptureErrorWithContext(ctx context.Context, err error, extras map[string]interface{}) *sentry.EventID {
	if err == nil {
		return nil
	}

	var id *sentry.EventID
	hub := HubFromContext(ctx)
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(sentry.LevelError)
		for key, value := range extras {
			scope.SetExtra(key, value)
		}
		if correlationID := logger.CorrelationIDFromContext(ctx); correlationID != "" {
			scope.SetTag("correlation_id", correlationID)
		}
		id = hub.CaptureException(err)
	})
	return id
}

// ShouldReportError determines if an error should be reported to Sentry.
// Client errors are not reported, apart from 429.
func ShouldReportError(err error, statusCode int) bool {
	if err == nil {
		return false
	}

	var appErr *common.AppError
	if stderrors.As(err, &appErr) && appErr.Code < http.StatusInternalServerError {
		return false
	}

	if statusCode >= 400 && statusCode < 500 && statusCode != http.StatusTooManyRequests {
		return false
	}
	return true
}
