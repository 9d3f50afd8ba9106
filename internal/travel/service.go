// Package travel prices and matches provider travel to service locations.
package travel

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/comercial-rgb/techtrust-system-sub001/internal/routing"
	"github.com/comercial-rgb/techtrust-system-sub001/pkg/common"
	"github.com/comercial-rgb/techtrust-system-sub001/pkg/config"
	"github.com/comercial-rgb/techtrust-system-sub001/pkg/geo"
	"github.com/comercial-rgb/techtrust-system-sub001/pkg/logger"
	"go.uber.org/zap"
)

// Service handles travel distance and fee logic
type Service struct {
	routes geo.RouteProvider
	rules  FeeRules
}

// NewService creates a travel service. A nil provider answers every road
// distance with the corrected straight-line estimate.
func NewService(routes geo.RouteProvider, rules FeeRules) *Service {
	return &Service{routes: routes, rules: rules}
}

// RulesFromConfig returns the platform default fee rules.
func RulesFromConfig(cfg config.TravelConfig) FeeRules {
	return FeeRules{
		FreeMiles:  cfg.FreeMiles,
		FeePerMile: cfg.FeePerMile,
		MaxFee:     cfg.MaxFee,
	}
}

// Rules returns the default fee rules.
func (s *Service) Rules() FeeRules {
	return s.rules
}

// Distance estimates the driving distance between two points without a routing engine.
func (s *Service) Distance(req DistanceRequest) (*DistanceResponse, error) {
	from, to, err := validPair(req.From, req.To)
	if err != nil {
		return nil, err
	}
	locale := ParseLocale(req.Locale)

	distanceKm := geo.GetDistanceBetweenLocations(from, to)
	bearing := geo.GetBearing(from, to)
	minutes := geo.EstimateTravelTime(distanceKm, geo.DefaultAverageSpeedKmh)

	return &DistanceResponse{
		DistanceKm:       distanceKm,
		StraightLineKm:   geo.Haversine(from.Latitude, from.Longitude, to.Latitude, to.Longitude),
		Summary:          geo.FormatDistanceForAPI(distanceKm),
		Bearing:          bearing,
		Direction:        geo.GetCardinalDirection(bearing, locale),
		Center:           geo.GetCenterPoint(from, to),
		EstimatedMinutes: minutes,
		FormattedTime:    geo.FormatTravelTime(minutes, locale),
	}, nil
}

// RoadDistance asks the routing engine for the driving distance, falling back
// to the corrected estimate.
func (s *Service) RoadDistance(ctx context.Context, from, to geo.Location) geo.RoadDistanceResult {
	result := geo.CalculateRoadDistance(ctx, s.routes, from.Latitude, from.Longitude, to.Latitude, to.Longitude)

	if result.IsRoadDistance {
		logger.DebugContext(ctx, "road distance from routing engine",
			zap.Float64("distance_km", result.DistanceKm),
			zap.Int("duration_minutes", result.DurationMinutes),
		)
	} else {
		routing.RecordFallback()
		logger.InfoContext(ctx, "road distance estimated from straight line",
			zap.Float64("distance_km", result.DistanceKm),
			zap.Bool("routing_configured", s.routes != nil),
		)
	}
	return result
}

// RoadDistanceFor validates req and formats the road distance for display.
func (s *Service) RoadDistanceFor(ctx context.Context, req RoadDistanceRequest) (*RoadDistanceResponse, error) {
	from, to, err := validPair(req.From, req.To)
	if err != nil {
		return nil, err
	}
	locale := ParseLocale(req.Locale)

	result := s.RoadDistance(ctx, from, to)
	return &RoadDistanceResponse{
		RoadDistanceResult: result,
		FormattedDistance:  geo.FormatDistance(result.DistanceKm, locale),
		FormattedTime:      geo.FormatTravelTime(result.DurationMinutes, locale),
	}, nil
}

// TravelFee applies the kilometre based fee to a known distance.
func (s *Service) TravelFee(req FeeRequest) FeeResponse {
	return FeeResponse{
		DistanceKm: req.DistanceKm,
		TravelFee:  geo.CalculateTravelFee(req.DistanceKm, req.FreeKm, req.FeePerKm),
	}
}

// QuoteTravelFee settles the travel fee a provider charges to reach a service
// location. Pricing is in miles on the road distance; the fee is rounded to
// cents and never exceeds the max fee.
func (s *Service) QuoteTravelFee(ctx context.Context, provider, service geo.Location, settings *ProviderFeeSettings) (*TravelQuote, error) {
	if err := validLocation("provider_location", provider); err != nil {
		return nil, err
	}
	if err := validLocation("service_location", service); err != nil {
		return nil, err
	}

	rules := s.rules.apply(settings)
	road := s.RoadDistance(ctx, provider, service)
	miles := geo.KmToMiles(road.DistanceKm)

	quote := &TravelQuote{
		DistanceKm:      roundCents(road.DistanceKm),
		DistanceMiles:   roundCents(miles),
		DurationMinutes: road.DurationMinutes,
		IsRoadDistance:  road.IsRoadDistance,
		Rules:           rules,
	}

	if miles <= rules.FreeMiles {
		return quote, nil
	}

	billable := miles - rules.FreeMiles
	fee := roundCents(billable * rules.FeePerMile)
	if fee > rules.MaxFee {
		fee = rules.MaxFee
		quote.Capped = true
	}
	quote.BillableMiles = roundCents(billable)
	quote.TravelFee = fee

	logger.DebugContext(ctx, "travel fee quoted",
		zap.Float64("distance_miles", quote.DistanceMiles),
		zap.Float64("travel_fee", fee),
		zap.Bool("capped", quote.Capped),
	)
	return quote, nil
}

// FindProvidersWithinRadius returns the candidates whose service radius covers
// the service location, nearest first.
func (s *Service) FindProvidersWithinRadius(service geo.Location, candidates []Candidate) []Match {
	matches := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		info := geo.ServiceDistance(c.Location.Location(), service, c.Area)
		if !info.WithinRadius {
			continue
		}
		matches = append(matches, Match{ID: c.ID, DistanceInfo: info})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].DistanceKm < matches[j].DistanceKm
	})
	return matches
}

// EstimateTravel returns the travel time for a distance. A non-positive speed
// uses the default average speed.
func (s *Service) EstimateTravel(distanceKm, speedKmh float64, locale geo.Locale) TravelEstimate {
	minutes := geo.EstimateTravelTime(distanceKm, speedKmh)
	return TravelEstimate{
		DistanceKm: distanceKm,
		Minutes:    minutes,
		Formatted:  geo.FormatTravelTime(minutes, locale),
	}
}

// ParseDistance reads a display string such as "5 mi" or "3.2 km".
func (s *Service) ParseDistance(input string) ParsedDistance {
	km := geo.ParseDistanceString(input)
	return ParsedDistance{
		Input:     input,
		Km:        km,
		Miles:     geo.KmToMiles(km),
		Formatted: geo.FormatDistance(km, geo.LocaleEnglish),
	}
}

// ParseLocale maps a request locale to a formatter locale. Empty means English.
func ParseLocale(s string) geo.Locale {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(geo.LocaleEnglish):
		return geo.LocaleEnglish
	default:
		return geo.LocalePortuguese
	}
}

// apply overrides the defaults field by field.
func (r FeeRules) apply(settings *ProviderFeeSettings) FeeRules {
	if settings == nil {
		return r
	}
	if settings.FreeMiles != nil {
		r.FreeMiles = *settings.FreeMiles
	}
	if settings.FeePerMile != nil {
		r.FeePerMile = *settings.FeePerMile
	}
	if settings.MaxFee != nil {
		r.MaxFee = *settings.MaxFee
	}
	return r
}

func validPair(from, to Point) (geo.Location, geo.Location, error) {
	a, b := from.Location(), to.Location()
	if err := validLocation("from", a); err != nil {
		return geo.Location{}, geo.Location{}, err
	}
	if err := validLocation("to", b); err != nil {
		return geo.Location{}, geo.Location{}, err
	}
	return a, b, nil
}

func validLocation(field string, loc geo.Location) error {
	if err := geo.ValidateLocation(loc); err != nil {
		return common.NewBadRequestError(field+" has invalid coordinates", err).
			WithErrorCode(common.CodeInvalidCoordinate)
	}
	return nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
