package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	downtown   = Coordinate{Latitude: -23.5505, Longitude: -46.6333}
	midpoint   = Coordinate{Latitude: -23.5600, Longitude: -46.6400}
	outskirts  = Coordinate{Latitude: -23.5700, Longitude: -46.6500}
	otherCoast = Coordinate{Latitude: -22.9068, Longitude: -43.1729}
)

func TestDistanceZeroForSamePoint(t *testing.T) {
	assert.Equal(t, 0.0, Distance(downtown, downtown))
}

func TestDistanceSymmetric(t *testing.T) {
	assert.InDelta(t, Distance(downtown, otherCoast), Distance(otherCoast, downtown), 1e-9)
}

func TestDistanceTriangleInequality(t *testing.T) {
	direct := Distance(downtown, outskirts)
	viaMidpoint := Distance(downtown, midpoint) + Distance(midpoint, outskirts)
	assert.LessOrEqual(t, direct, viaMidpoint+1e-9)
}

func TestDistanceKnownPair(t *testing.T) {
	// São Paulo to Rio de Janeiro, roughly 360 km great-circle
	d := Distance(downtown, otherCoast)
	assert.InDelta(t, 360, d, 10)
}

func TestDistanceGrowsWithSeparation(t *testing.T) {
	assert.Less(t, Distance(downtown, midpoint), Distance(downtown, outskirts))
}

func TestCoordinateStringRoundTrip(t *testing.T) {
	parsed, err := Parse(downtown.String())
	assert.NoError(t, err)
	assert.Equal(t, downtown, *parsed)
}

func TestParseToleratesWhitespace(t *testing.T) {
	parsed, err := Parse("  -23.5505 ,  -46.6333 ")
	assert.NoError(t, err)
	assert.Equal(t, downtown, *parsed)
}

func TestParseRejectsMalformedInput(t *testing.T) {
	for _, s := range []string{
		"",
		"-23.5505",
		"-23.5505, -46.6333, 10",
		"north, south",
		"-23.5505; -46.6333",
	} {
		parsed, err := Parse(s)
		assert.Nil(t, parsed)
		assert.Equal(t, ErrInvalidCoordinate, err)
	}
}

func TestDistanceNearbyPointsUnderGeofence(t *testing.T) {
	// about 150 meters apart
	a := Coordinate{Latitude: -23.5505, Longitude: -46.6333}
	b := Coordinate{Latitude: -23.5505, Longitude: -46.6318}
	d := Distance(a, b)
	assert.Less(t, d, 0.3)
	assert.Greater(t, d, 0.1)
	assert.False(t, math.IsNaN(d))
}
