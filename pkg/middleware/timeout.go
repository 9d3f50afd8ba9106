package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/comercial-rgb/techtrust-system-sub001/pkg/common"
	"github.com/comercial-rgb/techtrust-system-sub001/pkg/logger"
	"github.com/gin-contrib/timeout"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestTimeout bounds the handler chain. The request context carries the same
// deadline so upstream calls (OSRM, Redis) are cancelled with it.
// A request that runs past the deadline gets a 504 envelope.
func RequestTimeout(d time.Duration) gin.HandlerFunc {
	if d <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	guard := timeout.New(
		timeout.WithTimeout(d),
		timeout.WithResponse(func(c *gin.Context) {
			logger.WithContext(c.Request.Context()).Warn("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
				zap.Duration("timeout", d),
			)
			c.Header("X-Timeout", "true")
			common.ErrorResponse(c, http.StatusGatewayTimeout, "Request timeout")
		}),
	)

	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		guard(c)
	}
}
