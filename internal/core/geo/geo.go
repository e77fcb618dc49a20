// Package geo provides the pure geometry primitives used by route deviation,
// stoppage and geofence checks: great-circle distance, encoded-polyline
// decoding and point-to-polyline distance.
package geo

import "math"

const earthRadiusMeters = 6371000

// Point is a geographic coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Haversine returns the great-circle distance in meters between two
// coordinates. NaN inputs yield NaN.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// DecodePolyline decodes a polyline string into a sequence of points using
// the standard 5-bit chunk, zig-zag delta encoding with a 1e5 factor.
// A malformed string yields garbage points rather than an error; callers must
// validate non-empty input before use.
func DecodePolyline(encoded string) []Point {
	var points []Point
	var lat, lng int64

	for i := 0; i < len(encoded); {
		var delta int64
		var shift uint
		for {
			if i >= len(encoded) {
				return points
			}
			b := int64(encoded[i]) - 63
			i++
			delta |= (b & 0x1f) << shift
			shift += 5
			if b < 0x20 {
				break
			}
		}
		lat += zigzag(delta)

		delta = 0
		shift = 0
		for {
			if i >= len(encoded) {
				return points
			}
			b := int64(encoded[i]) - 63
			i++
			delta |= (b & 0x1f) << shift
			shift += 5
			if b < 0x20 {
				break
			}
		}
		lng += zigzag(delta)

		points = append(points, Point{
			Lat: float64(lat) / 1e5,
			Lng: float64(lng) / 1e5,
		})
	}

	return points
}

func zigzag(v int64) int64 {
	if v&1 != 0 {
		return ^(v >> 1)
	}
	return v >> 1
}

// DistanceToPolyline returns the minimum distance in meters from a point to
// any segment of the polyline. Polylines with fewer than two points yield
// math.MaxFloat64 so callers can treat them as not applicable.
func DistanceToPolyline(p Point, line []Point) float64 {
	if len(line) < 2 {
		return math.MaxFloat64
	}

	min := math.MaxFloat64
	for i := 0; i < len(line)-1; i++ {
		d := distanceToSegment(p, line[i], line[i+1])
		if d < min {
			min = d
		}
	}
	return min
}

// distanceToSegment projects p onto the segment [a, b] parametrically,
// clamps the projection to [0, 1] and measures the haversine distance to
// the resulting foot point.
func distanceToSegment(p, a, b Point) float64 {
	dLat := b.Lat - a.Lat
	dLng := b.Lng - a.Lng

	lenSq := dLat*dLat + dLng*dLng
	if lenSq == 0 {
		return Haversine(p.Lat, p.Lng, a.Lat, a.Lng)
	}

	t := ((p.Lat-a.Lat)*dLat + (p.Lng-a.Lng)*dLng) / lenSq
	t = math.Max(0, math.Min(1, t))

	foot := Point{
		Lat: a.Lat + t*dLat,
		Lng: a.Lng + t*dLng,
	}
	return Haversine(p.Lat, p.Lng, foot.Lat, foot.Lng)
}

// WithinRadius reports whether the current position lies within radiusMeters
// of the target, along with the measured distance.
func WithinRadius(curLat, curLng, targetLat, targetLng, radiusMeters float64) (bool, float64) {
	d := Haversine(curLat, curLng, targetLat, targetLng)
	return d <= radiusMeters, d
}
