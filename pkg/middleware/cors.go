package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS builds the CORS middleware from a comma-separated origin list.
// An empty list falls back to http://localhost:3000; "*" allows any origin.
func CORS(origins string) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()

	allowed := make([]string, 0)
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			allowed = append(allowed, o)
		}
	}
	switch {
	case len(allowed) == 0:
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
	case len(allowed) == 1 && allowed[0] == "*":
		corsConfig.AllowAllOrigins = true
	default:
		corsConfig.AllowOrigins = allowed
	}

	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", CorrelationIDHeader}
	corsConfig.ExposeHeaders = []string{CorrelationIDHeader, "X-Trace-ID"}
	corsConfig.MaxAge = 24 * time.Hour

	return cors.New(corsConfig)
}
