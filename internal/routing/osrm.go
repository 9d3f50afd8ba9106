package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/comercial-rgb/techtrust-system-sub001/pkg/geo"
	"github.com/comercial-rgb/techtrust-system-sub001/pkg/httpclient"
	"github.com/comercial-rgb/techtrust-system-sub001/pkg/logger"
	"github.com/comercial-rgb/techtrust-system-sub001/pkg/resilience"
	"github.com/comercial-rgb/techtrust-system-sub001/pkg/tracing"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	osrmName        = "osrm"
	osrmCodeOK      = "Ok"
	osrmCodeNoRoute = "NoRoute"
	defaultProfile  = "driving"
	userAgent       = "techtrust-travel/1.0"
)

// osrmResponse is the subset of the OSRM route service answer we use.
type osrmResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
	} `json:"routes"`
}

// OSRMProvider queries an OSRM route service.
type OSRMProvider struct {
	client  *httpclient.Client
	profile string
	breaker *resilience.CircuitBreaker
}

// OSRMOption configures an OSRMProvider.
type OSRMOption func(*OSRMProvider)

// WithBreaker guards requests with a circuit breaker.
func WithBreaker(b *resilience.CircuitBreaker) OSRMOption {
	return func(p *OSRMProvider) {
		p.breaker = b
	}
}

// WithProfile selects the OSRM profile (driving by default).
func WithProfile(profile string) OSRMOption {
	return func(p *OSRMProvider) {
		if profile != "" {
			p.profile = profile
		}
	}
}

// NewOSRMProvider creates a provider for the OSRM server at baseURL.
// Connections to the server are kept alive between lookups.
func NewOSRMProvider(baseURL string, timeout time.Duration, opts ...OSRMOption) *OSRMProvider {
	p := &OSRMProvider{
		client: httpclient.NewClient(strings.TrimRight(baseURL, "/"), timeout,
			httpclient.WithUserAgent(userAgent),
			httpclient.WithTransport(newTransport()),
		),
		profile: defaultProfile,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func newTransport() *http.Transport {
	return &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        32,
		MaxIdleConnsPerHost: 16,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
}

// Name returns the provider name
func (p *OSRMProvider) Name() string {
	return osrmName
}

// Profile returns the OSRM profile used in route paths.
func (p *OSRMProvider) Profile() string {
	return p.profile
}

// Route returns the driving distance and duration of the first route OSRM suggests.
func (p *OSRMProvider) Route(ctx context.Context, from, to geo.Location) (geo.RouteInfo, error) {
	path := p.routePath(from, to)

	info, err := tracing.TraceExternalAPI(ctx, tracerName, osrmName, "route", func(ctx context.Context) (geo.RouteInfo, error) {
		tracing.AddSpanAttributes(ctx, tracing.RouteAttributes(from.Latitude, from.Longitude, to.Latitude, to.Longitude)...)
		return resilience.Run(ctx, p.breaker, func(ctx context.Context) (geo.RouteInfo, error) {
			return p.fetch(ctx, path)
		})
	})
	recordLookup(osrmName, err)

	if err != nil {
		logger.WithContext(ctx).Debug("OSRM route lookup failed",
			zap.String("base_url", p.client.BaseURL()),
			zap.String("path", path),
			zap.Error(err),
		)
		return geo.RouteInfo{}, err
	}

	trace.SpanFromContext(ctx).SetAttributes(
		tracing.RouteDistanceKey.Float64(info.DistanceMeters),
		tracing.RouteDurationKey.Float64(info.DurationSeconds),
	)
	return info, nil
}

// HealthCheck routes between two fixed points to verify the server answers.
// An open breaker fails the check without contacting the server.
func (p *OSRMProvider) HealthCheck(ctx context.Context) error {
	if !p.breaker.Allow() {
		return fmt.Errorf("osrm circuit breaker %s: %w", p.breaker.State(), resilience.ErrCircuitOpen)
	}
	_, err := p.Route(ctx, geo.Location{Latitude: 0, Longitude: 0}, geo.Location{Latitude: 0.001, Longitude: 0.001})
	if IsUpstreamHealthy(err) {
		return nil
	}
	return fmt.Errorf("osrm health check failed: %w", err)
}

func (p *OSRMProvider) routePath(from, to geo.Location) string {
	return fmt.Sprintf("/route/v1/%s/%s,%s;%s,%s?overview=false",
		p.profile,
		formatCoord(from.Longitude), formatCoord(from.Latitude),
		formatCoord(to.Longitude), formatCoord(to.Latitude),
	)
}

func (p *OSRMProvider) fetch(ctx context.Context, path string) (geo.RouteInfo, error) {
	var resp osrmResponse
	err := p.client.GetJSON(ctx, path, nil, &resp)
	if err != nil {
		// OSRM reports NoRoute and InvalidQuery as 400 with a JSON body.
		var httpErr *httpclient.HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusBadRequest {
			if json.Unmarshal([]byte(httpErr.Body), &resp) == nil && resp.Code != "" {
				return geo.RouteInfo{}, codeError(resp)
			}
		}
		return geo.RouteInfo{}, fmt.Errorf("osrm request: %w", err)
	}

	if resp.Code != osrmCodeOK {
		return geo.RouteInfo{}, codeError(resp)
	}
	if len(resp.Routes) == 0 {
		return geo.RouteInfo{}, ErrNoRoute
	}

	return geo.RouteInfo{
		DistanceMeters:  resp.Routes[0].Distance,
		DurationSeconds: resp.Routes[0].Duration,
	}, nil
}

func codeError(resp osrmResponse) error {
	if resp.Code == osrmCodeNoRoute {
		return ErrNoRoute
	}
	if resp.Message != "" {
		return fmt.Errorf("%w: %s (%s)", ErrUnexpectedCode, resp.Code, resp.Message)
	}
	return fmt.Errorf("%w: %s", ErrUnexpectedCode, resp.Code)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
