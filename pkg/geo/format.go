package geo

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
)

// Locale selects the language of formatted output.
type Locale string

const (
	LocaleEnglish    Locale = "en"
	LocalePortuguese Locale = "pt"
)

var (
	nonNumeric    = regexp.MustCompile(`[^\d.]`)
	leadingNumber = regexp.MustCompile(`^\d*\.?\d*`)
)

// FormatDistance renders sub-kilometre distances in whole metres and longer
// ones in kilometres with one decimal. The output is the same for every locale.
func FormatDistance(distanceKm float64, locale Locale) string {
	if distanceKm < 1 {
		meters := int(math.Round(distanceKm * 1000))
		return fmt.Sprintf("%d m", meters)
	}
	return formatKm(distanceKm)
}

// formatKm renders one decimal. Values exactly halfway between two tenths
// round up (1.25 gives "1.3 km"); everything else rounds to nearest.
func formatKm(km float64) string {
	if math.IsInf(km, 0) || math.IsNaN(km) {
		return fmt.Sprintf("%.1f km", km)
	}
	twentieths, acc := new(big.Float).SetPrec(128).Mul(big.NewFloat(km), big.NewFloat(20)).Int(nil)
	if acc == big.Exact && twentieths.Bit(0) == 1 {
		tenths := twentieths.Add(twentieths, big.NewInt(1))
		tenths.Rsh(tenths, 1)
		return fmt.Sprintf("%.1f km", float64(tenths.Int64())/10)
	}
	return fmt.Sprintf("%.1f km", km)
}

// FormatTravelTime renders minutes as "N min", "N hour(s)" or "Hh Mmin".
// Any locale other than English gets the Portuguese hour words.
func FormatTravelTime(minutes int, locale Locale) string {
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}

	hours := minutes / 60
	remaining := minutes % 60
	if remaining == 0 {
		unit := "hours"
		if locale != LocaleEnglish {
			unit = "horas"
		}
		if hours == 1 {
			unit = unit[:len(unit)-1]
		}
		return fmt.Sprintf("%d %s", hours, unit)
	}

	return fmt.Sprintf("%dh %dmin", hours, remaining)
}

// ParseDistanceString extracts the number from strings such as "3.2 km" or
// "5 mi" and returns kilometres. Anything mentioning "mi" is read as miles.
// Strings without digits parse to 0; numbers too large for a float64 parse
// to +Inf.
func ParseDistanceString(s string) float64 {
	digits := leadingNumber.FindString(nonNumeric.ReplaceAllString(s, ""))
	distance, err := strconv.ParseFloat(digits, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		distance = 0
	}

	if strings.Contains(strings.ToLower(s), "mi") {
		return MilesToKm(distance)
	}
	return distance
}

// DistanceSummary is the distance representation returned by the API.
type DistanceSummary struct {
	Km        float64 `json:"km"`
	Miles     float64 `json:"miles"`
	Formatted string  `json:"formatted"`
}

// FormatDistanceForAPI rounds km and miles to two decimals and adds a display string.
func FormatDistanceForAPI(distanceKm float64) DistanceSummary {
	return DistanceSummary{
		Km:        roundTo(distanceKm, 2),
		Miles:     roundTo(KmToMiles(distanceKm), 2),
		Formatted: formatKm(distanceKm),
	}
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
