package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHaversine_KnownDistance verifies the distance between two known cities.
func TestHaversine_KnownDistance(t *testing.T) {
	// Delhi to Mumbai, roughly 1150 km.
	d := Haversine(28.6139, 77.2090, 19.0760, 72.8777)
	assert.InDelta(t, 1150000, d, 20000)
}

// TestHaversine_Identity verifies that the distance from a point to itself is zero.
func TestHaversine_Identity(t *testing.T) {
	points := [][2]float64{
		{0, 0},
		{28.6139, 77.2090},
		{-33.8688, 151.2093},
		{89.9, -179.9},
	}

	for _, p := range points {
		assert.Zero(t, Haversine(p[0], p[1], p[0], p[1]))
	}
}

// TestHaversine_Symmetry verifies d(a,b) == d(b,a).
func TestHaversine_Symmetry(t *testing.T) {
	d1 := Haversine(12.9716, 77.5946, 13.0827, 80.2707)
	d2 := Haversine(13.0827, 80.2707, 12.9716, 77.5946)
	assert.Equal(t, d1, d2)
}

// TestHaversine_NaN verifies NaN in yields NaN out.
func TestHaversine_NaN(t *testing.T) {
	assert.True(t, math.IsNaN(Haversine(math.NaN(), 0, 0, 0)))
}

// TestDecodePolyline_Canonical verifies the documented three-point example.
func TestDecodePolyline_Canonical(t *testing.T) {
	points := DecodePolyline("_p~iF~ps|U_ulLnnqC_mqNvxq`@")

	require.Len(t, points, 3)
	assert.InDelta(t, 38.5, points[0].Lat, 1e-9)
	assert.InDelta(t, -120.2, points[0].Lng, 1e-9)
	assert.InDelta(t, 40.7, points[1].Lat, 1e-9)
	assert.InDelta(t, -120.95, points[1].Lng, 1e-9)
	assert.InDelta(t, 43.252, points[2].Lat, 1e-9)
	assert.InDelta(t, -126.453, points[2].Lng, 1e-9)
}

// TestDecodePolyline_Empty verifies that an empty string yields no points.
func TestDecodePolyline_Empty(t *testing.T) {
	assert.Empty(t, DecodePolyline(""))
}

// TestDecodePolyline_Truncated verifies a truncated string does not panic.
func TestDecodePolyline_Truncated(t *testing.T) {
	assert.NotPanics(t, func() {
		DecodePolyline("_p~iF~ps")
	})
}

// TestDistanceToPolyline_OnLine verifies a point on the line is at distance ~0.
func TestDistanceToPolyline_OnLine(t *testing.T) {
	line := []Point{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 1}}

	d := DistanceToPolyline(Point{Lat: 0, Lng: 0.5}, line)
	assert.InDelta(t, 0, d, 1)
}

// TestDistanceToPolyline_Offset verifies the perpendicular distance for a
// point offset from an equatorial segment.
func TestDistanceToPolyline_Offset(t *testing.T) {
	line := []Point{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 1}}

	// 0.01 degrees of latitude is roughly 1113 meters.
	d := DistanceToPolyline(Point{Lat: 0.01, Lng: 0.5}, line)
	assert.InDelta(t, 1113, d, 5)
}

// TestDistanceToPolyline_BeyondEndpoint verifies clamping to the segment end.
func TestDistanceToPolyline_BeyondEndpoint(t *testing.T) {
	line := []Point{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 1}}

	d := DistanceToPolyline(Point{Lat: 0, Lng: 2}, line)
	expected := Haversine(0, 2, 0, 1)
	assert.InDelta(t, expected, d, 1)
}

// TestDistanceToPolyline_MultiSegment verifies the minimum over all segments is taken.
func TestDistanceToPolyline_MultiSegment(t *testing.T) {
	line := []Point{
		{Lat: 0, Lng: 0},
		{Lat: 0, Lng: 1},
		{Lat: 1, Lng: 1},
	}

	// Closest to the second segment.
	d := DistanceToPolyline(Point{Lat: 0.5, Lng: 1.01}, line)
	assert.Less(t, d, Haversine(0.5, 1.01, 0, 1))
}

// TestDistanceToPolyline_TooShort verifies polylines under two points are sentinel-valued.
func TestDistanceToPolyline_TooShort(t *testing.T) {
	assert.Equal(t, math.MaxFloat64, DistanceToPolyline(Point{}, nil))
	assert.Equal(t, math.MaxFloat64, DistanceToPolyline(Point{}, []Point{{Lat: 1, Lng: 1}}))
}

// TestWithinRadius verifies the geofence wrapper.
func TestWithinRadius(t *testing.T) {
	inside, d := WithinRadius(0, 0, 0, 0.001, 200)
	assert.True(t, inside)
	assert.InDelta(t, 111, d, 2)

	outside, d := WithinRadius(0, 0, 0, 0.01, 200)
	assert.False(t, outside)
	assert.InDelta(t, 1113, d, 5)
}
