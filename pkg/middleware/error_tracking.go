package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/comercial-rgb/techtrust-system-sub001/pkg/common"
	"github.com/comercial-rgb/techtrust-system-sub001/pkg/errors"
	"github.com/comercial-rgb/techtrust-system-sub001/pkg/logger"
	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SentryMiddleware gives every request its own hub and reports panics before
// re-panicking to RecoveryWithSentry.
func SentryMiddleware() gin.HandlerFunc {
	return sentrygin.New(sentrygin.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         2 * time.Second,
	})
}

// RecoveryWithSentry turns a panic into a 500 envelope. The panic is reported
// here unless SentryMiddleware further down the chain already did.
func RecoveryWithSentry() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}

			logger.WithContext(c.Request.Context()).Error("Panic recovered",
				zap.Any("panic", recovered),
				zap.String("path", c.Request.URL.Path),
				zap.Stack("stack"),
			)

			if sentrygin.GetHubFromContext(c) == nil {
				hub := sentry.CurrentHub().Clone()
				hub.Scope().SetRequest(c.Request)
				if correlationID := GetCorrelationID(c); correlationID != "" {
					hub.Scope().SetTag("correlation_id", correlationID)
				}
				hub.RecoverWithContext(c.Request.Context(), recovered)
			}

			c.Abort()
			common.ErrorResponse(c, http.StatusInternalServerError, "An unexpected error occurred")
		}()

		c.Next()
	}
}

// ErrorHandler reports errors attached to the context and 5xx responses that
// carry no error.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		statusCode := c.Writer.Status()
		duration := time.Since(start)
		hub := requestHub(c)

		reported := false
		for _, ginErr := range c.Errors {
			if !errors.ShouldReportError(ginErr.Err, statusCode) {
				continue
			}
			ctx := sentry.SetHubOnContext(c.Request.Context(), hub)
			errors.CaptureErrorWithContext(ctx, ginErr.Err, map[string]interface{}{
				"method":      c.Request.Method,
				"path":        c.Request.URL.Path,
				"status_code": statusCode,
				"duration_ms": duration.Milliseconds(),
			})
			reported = true
		}

		if statusCode >= http.StatusInternalServerError && !reported && len(c.Errors) == 0 {
			hub.WithScope(func(scope *sentry.Scope) {
				scope.SetLevel(sentry.LevelError)
				scope.SetTag("http.status_code", fmt.Sprintf("%d", statusCode))
				scope.SetTag("endpoint", c.FullPath())
				if correlationID := GetCorrelationID(c); correlationID != "" {
					scope.SetTag("correlation_id", correlationID)
				}
				hub.CaptureMessage(fmt.Sprintf("HTTP %d: %s %s", statusCode, c.Request.Method, c.Request.URL.Path))
			})
		}
	}
}

func requestHub(c *gin.Context) *sentry.Hub {
	if hub := sentrygin.GetHubFromContext(c); hub != nil {
		return hub
	}
	return errors.HubFromContext(c.Request.Context())
}
