package geo

import "math"

var (
	englishDirections    = [8]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}
	portugueseDirections = [8]string{"N", "NE", "L", "SE", "S", "SO", "O", "NO"}
)

// GetCenterPoint returns the great-circle midpoint of two locations.
func GetCenterPoint(loc1, loc2 Location) Location {
	lat1 := toRadians(loc1.Latitude)
	lon1 := toRadians(loc1.Longitude)
	lat2 := toRadians(loc2.Latitude)
	lon2 := toRadians(loc2.Longitude)

	dLon := lon2 - lon1

	bx := math.Cos(lat2) * math.Cos(dLon)
	by := math.Cos(lat2) * math.Sin(dLon)

	lat3 := math.Atan2(
		math.Sin(lat1)+math.Sin(lat2),
		math.Sqrt((math.Cos(lat1)+bx)*(math.Cos(lat1)+bx)+by*by),
	)
	lon3 := lon1 + math.Atan2(by, math.Cos(lat1)+bx)

	return Location{
		Latitude:  toDegrees(lat3),
		Longitude: toDegrees(lon3),
	}
}

// GetBearing returns the initial compass bearing in [0, 360) from one location to another.
func GetBearing(from, to Location) float64 {
	lat1 := toRadians(from.Latitude)
	lat2 := toRadians(to.Latitude)
	dLon := toRadians(to.Longitude - from.Longitude)

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)

	return math.Mod(toDegrees(math.Atan2(y, x))+360, 360)
}

// GetCardinalDirection maps a bearing to one of eight compass points.
// Bearings outside [0, 360) wrap around.
func GetCardinalDirection(bearing float64, locale Locale) string {
	directions := englishDirections
	if locale != LocaleEnglish {
		directions = portugueseDirections
	}

	index := int(math.Round(bearing/45)) % 8
	if index < 0 {
		index += 8
	}
	return directions[index]
}
