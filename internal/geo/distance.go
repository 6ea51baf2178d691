package geo

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/dewvow/housepulse/internal/models"
)

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371

// stateCapitals maps each jurisdiction to its capital's coordinates
// (orb convention: X is longitude, Y is latitude).
var stateCapitals = map[models.StateCode]orb.Point{
	models.NSW: {151.2093, -33.8688}, // Sydney
	models.VIC: {144.9631, -37.8136}, // Melbourne
	models.QLD: {153.0251, -27.4698}, // Brisbane
	models.WA:  {115.8605, -31.9505}, // Perth
	models.SA:  {138.6007, -34.9285}, // Adelaide
	models.TAS: {147.3272, -42.8821}, // Hobart
	models.ACT: {149.1300, -35.2809}, // Canberra
	models.NT:  {130.8456, -12.4634}, // Darwin
}

// CapitalCoordinates returns the capital's coordinates for a state, and
// whether the state is recognized.
func CapitalCoordinates(state models.StateCode) (orb.Point, bool) {
	p, ok := stateCapitals[state]
	return p, ok
}

// DistanceToCapital computes the great-circle distance in kilometres from
// the given coordinates to the state's capital, rounded to one decimal.
// The second return value is false when the state is unrecognized; a false
// result must not be conflated with a genuinely zero distance.
func DistanceToCapital(state models.StateCode, lat, lng float64) (float64, bool) {
	capital, ok := stateCapitals[state]
	if !ok {
		return 0, false
	}
	km := haversine(orb.Point{lng, lat}, capital)
	return math.Round(km*10) / 10, true
}

// haversine returns the great-circle distance between two points in km.
func haversine(a, b orb.Point) float64 {
	dLat := toRadians(b.Lat() - a.Lat())
	dLng := toRadians(b.Lon() - a.Lon())

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(a.Lat()))*math.Cos(toRadians(b.Lat()))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

func toRadians(degrees float64) float64 {
	return degrees * (math.Pi / 180)
}
