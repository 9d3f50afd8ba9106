package common_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/comercial-rgb/techtrust-system-sub001/pkg/common"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) common.Response {
	t.Helper()
	var resp common.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		expectHandled bool
		expectStatus  int
		expectCode    string
		expectMessage string
		expectErrors  int
	}{
		{
			name:          "nil error returns false",
			expectHandled: false,
		},
		{
			name:          "AppError keeps its status",
			err:           common.NewNotFoundError("route not found", nil),
			expectHandled: true,
			expectStatus:  http.StatusNotFound,
			expectCode:    common.CodeNotFound,
			expectMessage: "route not found",
		},
		{
			name:          "wrapped AppError is unwrapped",
			err:           fmt.Errorf("quote: %w", common.NewBadRequestError("bad coordinates", nil)),
			expectHandled: true,
			expectStatus:  http.StatusBadRequest,
			expectCode:    common.CodeInvalidRequest,
			expectMessage: "bad coordinates",
		},
		{
			name:          "plain error uses fallback",
			err:           errors.New("redis down"),
			expectHandled: true,
			expectStatus:  http.StatusInternalServerError,
			expectMessage: "failed to quote",
			expectErrors:  1,
		},
		{
			name:          "server AppError is attached for reporting",
			err:           common.NewAppError(http.StatusServiceUnavailable, "routing unavailable", errors.New("breaker open")),
			expectHandled: true,
			expectStatus:  http.StatusServiceUnavailable,
			expectMessage: "routing unavailable",
			expectErrors:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			handled := common.HandleServiceError(c, tt.err, "failed to quote")
			assert.Equal(t, tt.expectHandled, handled)
			if !tt.expectHandled {
				assert.Equal(t, 0, w.Body.Len())
				return
			}

			assert.Equal(t, tt.expectStatus, w.Code)
			resp := decode(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.expectMessage, resp.Error.Message)
			assert.Equal(t, tt.expectCode, resp.Error.ErrorCode)
			assert.Len(t, c.Errors, tt.expectErrors)
		})
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := common.NewServiceUnavailableError("routing unavailable", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "routing unavailable: dial tcp: refused", err.Error())
	assert.ErrorIs(t, common.NewServiceUnavailableError("down", nil), common.ErrUnavailable)
	assert.Equal(t, "custom", common.NewBadRequestError("x", nil).WithErrorCode("custom").ErrorCode)
}

func TestBindJSON(t *testing.T) {
	type body struct {
		Miles float64 `json:"miles" binding:"required"`
	}

	t.Run("valid body", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"miles":12}`))
		c.Request.Header.Set("Content-Type", "application/json")

		var b body
		assert.True(t, common.BindJSON(c, &b))
		assert.InDelta(t, 12.0, b.Miles, 1e-9)
	})

	t.Run("invalid body", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
		c.Request.Header.Set("Content-Type", "application/json")

		var b body
		assert.False(t, common.BindJSON(c, &b))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSuccessResponse(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	common.SuccessResponse(c, map[string]float64{"distance_km": 1.5})

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
}

func TestReadinessProbe(t *testing.T) {
	router := gin.New()
	router.GET("/ready", common.ReadinessProbe("travel", "test", map[string]common.CheckFunc{
		"redis": func(context.Context) error { return nil },
	}))
	router.GET("/not-ready", common.ReadinessProbe("travel", "test", map[string]common.CheckFunc{
		"redis": func(context.Context) error { return errors.New("connection refused") },
	}))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/not-ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var health common.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "not ready", health.Status)
	assert.Equal(t, "unhealthy", health.Checks["redis"].Status)
	assert.Equal(t, "connection refused", health.Checks["redis"].Message)
}

func TestLivenessProbe(t *testing.T) {
	router := gin.New()
	router.GET("/healthz", common.LivenessProbe("travel", "1.2.3"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var health common.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "alive", health.Status)
	assert.Equal(t, "1.2.3", health.Version)
}
