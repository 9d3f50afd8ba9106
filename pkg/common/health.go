package common

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string                 `json:"status"`
	Service   string                 `json:"service"`
	Version   string                 `json:"version"`
	Timestamp string                 `json:"timestamp"`
	Uptime    string                 `json:"uptime,omitempty"`
	Checks    map[string]CheckStatus `json:"checks,omitempty"`
}

// CheckStatus represents the status of a single health check
type CheckStatus struct {
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
	Duration string `json:"duration,omitempty"`
}

// CheckFunc probes one dependency.
type CheckFunc func(ctx context.Context) error

var startTime = time.Now()

// LivenessProbe always answers 200 while the process is serving.
func LivenessProbe(serviceName, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthResponse{
			Status:    "alive",
			Service:   serviceName,
			Version:   version,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Uptime:    time.Since(startTime).String(),
		})
	}
}

// ReadinessProbe runs every check in parallel and answers 503 if any fails.
// Optional dependencies should simply be left out of checks.
func ReadinessProbe(serviceName, version string, checks map[string]CheckFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		type checkResult struct {
			name     string
			err      error
			duration time.Duration
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		results := make(chan checkResult, len(checks))
		var wg sync.WaitGroup
		for name, check := range checks {
			wg.Add(1)
			go func(n string, cf CheckFunc) {
				defer wg.Done()
				start := time.Now()
				err := cf(ctx)
				results <- checkResult{name: n, err: err, duration: time.Since(start)}
			}(name, check)
		}
		wg.Wait()
		close(results)

		status := "ready"
		statusCode := http.StatusOK
		checkResults := make(map[string]CheckStatus, len(checks))
		for r := range results {
			cs := CheckStatus{Status: "healthy", Duration: r.duration.String()}
			if r.err != nil {
				cs.Status = "unhealthy"
				cs.Message = r.err.Error()
				status = "not ready"
				statusCode = http.StatusServiceUnavailable
			}
			checkResults[r.name] = cs
		}

		c.JSON(statusCode, HealthResponse{
			Status:    status,
			Service:   serviceName,
			Version:   version,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Uptime:    time.Since(startTime).String(),
			Checks:    checkResults,
		})
	}
}
