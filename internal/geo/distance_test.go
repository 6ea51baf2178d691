package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dewvow/housepulse/internal/models"
)

func TestDistanceToCapital_AtCapital(t *testing.T) {
	// Coordinates of the capital itself must come out as exactly zero,
	// and still be reported as known.
	km, known := DistanceToCapital(models.NSW, -33.8688, 151.2093)
	assert.True(t, known)
	assert.Equal(t, 0.0, km)
}

func TestDistanceToCapital_UnknownState(t *testing.T) {
	km, known := DistanceToCapital("XX", -33.8688, 151.2093)
	assert.False(t, known)
	assert.Equal(t, 0.0, km)
}

func TestDistanceToCapital_KnownDistances(t *testing.T) {
	tests := []struct {
		name     string
		state    models.StateCode
		lat, lng float64
		expected float64
		delta    float64
	}{
		// Richmond VIC sits a few km east of Melbourne's CBD
		{"richmond to melbourne", models.VIC, -37.8230, 144.9980, 3.3, 1.5},
		// Wollongong is roughly 70km south of Sydney as the crow flies
		{"wollongong to sydney", models.NSW, -34.4278, 150.8931, 69.0, 5.0},
		// Cairns is over 1300km from Brisbane
		{"cairns to brisbane", models.QLD, -16.9186, 145.7781, 1390.0, 30.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			km, known := DistanceToCapital(tt.state, tt.lat, tt.lng)
			assert.True(t, known)
			assert.InDelta(t, tt.expected, km, tt.delta)
		})
	}
}

func TestDistanceToCapital_OneDecimalRounding(t *testing.T) {
	km, known := DistanceToCapital(models.VIC, -37.8230, 144.9980)
	assert.True(t, known)
	assert.Equal(t, math.Round(km*10)/10, km)
}

func TestCapitalCoordinates(t *testing.T) {
	for _, s := range models.AustralianStates {
		p, ok := CapitalCoordinates(s.Code)
		assert.True(t, ok, "missing capital for %s", s.Code)
		assert.NotZero(t, p.Lat())
		assert.NotZero(t, p.Lon())
	}

	_, ok := CapitalCoordinates("XX")
	assert.False(t, ok)
}
