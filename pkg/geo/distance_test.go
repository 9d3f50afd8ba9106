package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	saoPauloCenter = Location{Latitude: -23.5505, Longitude: -46.6333}
	paulista       = Location{Latitude: -23.5613, Longitude: -46.6565}
	morumbi        = Location{Latitude: -23.6076, Longitude: -46.7000}
	rioDeJaneiro   = Location{Latitude: -22.9068, Longitude: -43.1729}
)

func TestHaversine(t *testing.T) {
	t.Run("same point is zero", func(t *testing.T) {
		assert.Equal(t, 0.0, Haversine(saoPauloCenter.Latitude, saoPauloCenter.Longitude, saoPauloCenter.Latitude, saoPauloCenter.Longitude))
	})

	t.Run("Sao Paulo to Rio great-circle distance", func(t *testing.T) {
		d := Haversine(saoPauloCenter.Latitude, saoPauloCenter.Longitude, rioDeJaneiro.Latitude, rioDeJaneiro.Longitude)
		assert.Greater(t, d, 350.0)
		assert.Less(t, d, 370.0)
	})

	t.Run("one degree of latitude on the meridian", func(t *testing.T) {
		assert.InDelta(t, 111.19, Haversine(0, 0, 1, 0), 0.01)
	})

	t.Run("symmetric", func(t *testing.T) {
		ab := Haversine(saoPauloCenter.Latitude, saoPauloCenter.Longitude, morumbi.Latitude, morumbi.Longitude)
		ba := Haversine(morumbi.Latitude, morumbi.Longitude, saoPauloCenter.Latitude, saoPauloCenter.Longitude)
		assert.InDelta(t, ab, ba, 1e-9)
	})
}

func TestCalculateDistance(t *testing.T) {
	t.Run("applies road correction factor", func(t *testing.T) {
		raw := Haversine(saoPauloCenter.Latitude, saoPauloCenter.Longitude, paulista.Latitude, paulista.Longitude)
		corrected := CalculateDistance(saoPauloCenter.Latitude, saoPauloCenter.Longitude, paulista.Latitude, paulista.Longitude)
		assert.InDelta(t, raw*RoadCorrectionFactor, corrected, 1e-12)
	})

	t.Run("center to Paulista is between 2 and 4 km", func(t *testing.T) {
		d := CalculateDistance(saoPauloCenter.Latitude, saoPauloCenter.Longitude, paulista.Latitude, paulista.Longitude)
		assert.Greater(t, d, 2.0)
		assert.Less(t, d, 4.0)
	})

	t.Run("coincident points", func(t *testing.T) {
		for _, loc := range []Location{saoPauloCenter, paulista, morumbi, {Latitude: 0, Longitude: 0}, {Latitude: 89.9, Longitude: -179.9}} {
			assert.Equal(t, 0.0, CalculateDistance(loc.Latitude, loc.Longitude, loc.Latitude, loc.Longitude))
		}
	})

	t.Run("Sao Paulo to Rio corrected", func(t *testing.T) {
		d := GetDistanceBetweenLocations(saoPauloCenter, rioDeJaneiro)
		assert.Greater(t, d, 350.0*RoadCorrectionFactor)
		assert.Less(t, d, 370.0*RoadCorrectionFactor)
	})
}

func TestGetDistanceBetweenLocations(t *testing.T) {
	want := CalculateDistance(saoPauloCenter.Latitude, saoPauloCenter.Longitude, paulista.Latitude, paulista.Longitude)
	assert.Equal(t, want, GetDistanceBetweenLocations(saoPauloCenter, paulista))
}

func TestCalculateTravelFee(t *testing.T) {
	tests := []struct {
		name       string
		distanceKm float64
		freeKm     float64
		feePerKm   float64
		want       float64
	}{
		{name: "within free km", distanceKm: 3, freeKm: 5, feePerKm: 8, want: 0},
		{name: "exactly free km", distanceKm: 5, freeKm: 5, feePerKm: 8, want: 0},
		{name: "extra km charged", distanceKm: 12, freeKm: 5, feePerKm: 8, want: 56},
		{name: "zero free km", distanceKm: 10, freeKm: 0, feePerKm: 5, want: 50},
		{name: "no configuration", distanceKm: 42, freeKm: 0, feePerKm: 0, want: 0},
		{name: "zero distance", distanceKm: 0, freeKm: 0, feePerKm: 5, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateTravelFee(tt.distanceKm, tt.freeKm, tt.feePerKm))
		})
	}
}

func TestIsWithinServiceRadius(t *testing.T) {
	t.Run("inside radius", func(t *testing.T) {
		assert.True(t, IsWithinServiceRadius(saoPauloCenter, paulista, 5))
	})

	t.Run("outside radius", func(t *testing.T) {
		assert.False(t, IsWithinServiceRadius(saoPauloCenter, morumbi, 5))
	})

	t.Run("boundary is inclusive", func(t *testing.T) {
		distance := GetDistanceBetweenLocations(saoPauloCenter, paulista)
		assert.True(t, IsWithinServiceRadius(saoPauloCenter, paulista, distance))
		assert.False(t, IsWithinServiceRadius(saoPauloCenter, paulista, distance-1e-9))
	})

	t.Run("agrees with distance", func(t *testing.T) {
		for _, radius := range []float64{0, 1, 3.5, 4, 10, 20, 600} {
			for _, loc := range []Location{paulista, morumbi, rioDeJaneiro} {
				want := GetDistanceBetweenLocations(saoPauloCenter, loc) <= radius
				assert.Equal(t, want, IsWithinServiceRadius(saoPauloCenter, loc, radius))
			}
		}
	})

	t.Run("at least one provider can serve Paulista", func(t *testing.T) {
		providers := []struct {
			location Location
			radius   float64
		}{
			{location: saoPauloCenter, radius: 10},
			{location: morumbi, radius: 5},
		}

		available := 0
		for _, p := range providers {
			if IsWithinServiceRadius(p.location, paulista, p.radius) {
				available++
			}
		}
		assert.Equal(t, 1, available)
	})
}

func TestEstimateTravelTime(t *testing.T) {
	assert.Equal(t, 30, EstimateTravelTime(15, DefaultAverageSpeedKmh))
	assert.Equal(t, 60, EstimateTravelTime(60, 60))
	assert.Equal(t, 10, EstimateTravelTime(5, 30))
	assert.Equal(t, 3, EstimateTravelTime(1.3, 30))
	assert.Equal(t, 30, EstimateTravelTime(15, 0), "non-positive speed uses the default")
	assert.Equal(t, 30, EstimateTravelTime(15, -10))
}

func TestUnitConversions(t *testing.T) {
	t.Run("km to miles", func(t *testing.T) {
		assert.InDelta(t, 6.21, KmToMiles(10), 0.005)
		assert.InDelta(t, 62.14, KmToMiles(100), 0.005)
	})

	t.Run("miles to km", func(t *testing.T) {
		assert.InDelta(t, 16.09, MilesToKm(10), 0.005)
		assert.InDelta(t, 160.93, MilesToKm(100), 0.005)
	})

	t.Run("round trip stays within relative tolerance", func(t *testing.T) {
		for _, km := range []float64{0.1, 1, 3, 50, 250, 1000} {
			back := MilesToKm(KmToMiles(km))
			assert.InEpsilon(t, km, back, 1e-5, "km=%v", km)
		}
	})

	t.Run("round trip small distances within 1e-5 absolute", func(t *testing.T) {
		for _, km := range []float64{0.01, 0.5, 1, 2, 3} {
			assert.InDelta(t, km, MilesToKm(KmToMiles(km)), 1e-5)
		}
	})
}
