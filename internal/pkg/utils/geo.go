package utils

import "math"

const earthRadiusMeters = 6371000

// CalculateHaversineDistance returns the great-circle distance between two points in meters.
func CalculateHaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * (math.Pi / 180.0)
	dLon := (lon2 - lon1) * (math.Pi / 180.0)

	lat1Rad := lat1 * (math.Pi / 180.0)
	lat2Rad := lat2 * (math.Pi / 180.0)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)

	c := 2 * math.Asin(math.Sqrt(a))

	return earthRadiusMeters * c
}

// HaversineMeters is CalculateHaversineDistance for optional coordinates.
// A missing coordinate yields +Inf, which fails every radius check.
func HaversineMeters(lat1, lon1, lat2, lon2 *float64) float64 {
	if lat1 == nil || lon1 == nil || lat2 == nil || lon2 == nil {
		return math.Inf(1)
	}
	return CalculateHaversineDistance(*lat1, *lon1, *lat2, *lon2)
}

// WithinRadius reports whether the optional point lies within radius meters of the reference.
func WithinRadius(lat, lon *float64, refLat, refLon, radius float64) bool {
	return HaversineMeters(lat, lon, &refLat, &refLon) <= radius
}
