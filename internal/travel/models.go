package travel

import "github.com/comercial-rgb/techtrust-system-sub001/pkg/geo"

// Point is a request coordinate. Pointers let 0 through as a valid value
// while still rejecting a missing field.
type Point struct {
	Latitude  *float64 `json:"latitude" validate:"required,latitude"`
	Longitude *float64 `json:"longitude" validate:"required,longitude"`
}

// Location converts a validated point.
func (p Point) Location() geo.Location {
	var loc geo.Location
	if p.Latitude != nil {
		loc.Latitude = *p.Latitude
	}
	if p.Longitude != nil {
		loc.Longitude = *p.Longitude
	}
	return loc
}

// NewPoint builds a Point from plain values.
func NewPoint(latitude, longitude float64) Point {
	return Point{Latitude: &latitude, Longitude: &longitude}
}

// DistanceRequest asks for the distance between two points.
type DistanceRequest struct {
	From   Point  `json:"from" validate:"required"`
	To     Point  `json:"to" validate:"required"`
	Locale string `json:"locale" validate:"locale"`
}

// DistanceResponse is the straight-line based estimate between two points.
type DistanceResponse struct {
	DistanceKm       float64             `json:"distance_km"`
	StraightLineKm   float64             `json:"straight_line_km"`
	Summary          geo.DistanceSummary `json:"summary"`
	Bearing          float64             `json:"bearing"`
	Direction        string              `json:"direction"`
	Center           geo.Location        `json:"center"`
	EstimatedMinutes int                 `json:"estimated_minutes"`
	FormattedTime    string              `json:"formatted_time"`
}

// RoadDistanceRequest asks for the driving distance between two points.
type RoadDistanceRequest struct {
	From   Point  `json:"from" validate:"required"`
	To     Point  `json:"to" validate:"required"`
	Locale string `json:"locale" validate:"locale"`
}

// RoadDistanceResponse wraps the road distance with display strings.
type RoadDistanceResponse struct {
	geo.RoadDistanceResult
	FormattedDistance string `json:"formatted_distance"`
	FormattedTime     string `json:"formatted_time"`
}

// FeeRequest computes a kilometre based travel fee for a known distance.
type FeeRequest struct {
	DistanceKm float64 `json:"distance_km" validate:"gte=0"`
	FreeKm     float64 `json:"free_km" validate:"gte=0"`
	FeePerKm   float64 `json:"fee_per_km" validate:"gte=0"`
}

// FeeResponse is the fee for a FeeRequest.
type FeeResponse struct {
	DistanceKm float64 `json:"distance_km"`
	TravelFee  float64 `json:"travel_fee"`
}

// ProviderFeeSettings are a provider's own travel pricing. Nil fields fall back
// to the platform defaults.
type ProviderFeeSettings struct {
	FreeMiles  *float64 `json:"free_miles,omitempty" validate:"omitempty,gte=0"`
	FeePerMile *float64 `json:"fee_per_mile,omitempty" validate:"omitempty,gte=0"`
	MaxFee     *float64 `json:"max_fee,omitempty" validate:"omitempty,gte=0"`
}

// QuoteFeeRequest asks for the travel fee a provider charges to reach a service location.
type QuoteFeeRequest struct {
	Provider Point                `json:"provider_location" validate:"required"`
	Service  Point                `json:"service_location" validate:"required"`
	Settings *ProviderFeeSettings `json:"settings,omitempty"`
}

// FeeRules are the mileage pricing rules applied to a quote.
type FeeRules struct {
	FreeMiles  float64 `json:"free_miles"`
	FeePerMile float64 `json:"fee_per_mile"`
	MaxFee     float64 `json:"max_fee"`
}

// TravelQuote is the settled travel fee for a quote.
type TravelQuote struct {
	DistanceKm      float64  `json:"distance_km"`
	DistanceMiles   float64  `json:"distance_miles"`
	DurationMinutes int      `json:"duration_minutes"`
	IsRoadDistance  bool     `json:"is_road_distance"`
	BillableMiles   float64  `json:"billable_miles"`
	TravelFee       float64  `json:"travel_fee"`
	Capped          bool     `json:"capped"`
	Rules           FeeRules `json:"rules"`
}

// Candidate is a provider considered for a service request.
type Candidate struct {
	ID       string          `json:"id" validate:"required"`
	Location Point           `json:"location" validate:"required"`
	Area     geo.ServiceArea `json:"area"`
}

// NearbyRequest lists candidates to match against a service location.
type NearbyRequest struct {
	Service    Point       `json:"service_location" validate:"required"`
	Candidates []Candidate `json:"candidates" validate:"required,min=1,max=500,dive"`
}

// Match is a candidate that covers the service location.
type Match struct {
	ID string `json:"id"`
	geo.DistanceInfo
}

// EstimateQuery asks for the travel time of a distance.
type EstimateQuery struct {
	DistanceKm float64 `form:"distance_km" validate:"gte=0"`
	SpeedKmh   float64 `form:"speed_kmh" validate:"gte=0"`
	Locale     string  `form:"locale" validate:"locale"`
}

// TravelEstimate is the time needed to cover a distance.
type TravelEstimate struct {
	DistanceKm float64 `json:"distance_km"`
	Minutes    int     `json:"minutes"`
	Formatted  string  `json:"formatted"`
}

// ParsedDistance is a distance parsed from free text.
type ParsedDistance struct {
	Input     string  `json:"input"`
	Km        float64 `json:"km"`
	Miles     float64 `json:"miles"`
	Formatted string  `json:"formatted"`
}
