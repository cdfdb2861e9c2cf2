// Package geo holds the shared geometry helpers. Every caller that needs a
// distance goes through Distance; there is exactly one haversine in the tree.
package geo

import (
	"fmt"
	"math"
)

// earthRadiusMiles is the Earth's mean radius in miles.
const earthRadiusMiles = 3959.0

// Distance returns the great-circle distance in miles between two
// latitude/longitude pairs, using the haversine formula.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMiles * c
}

// FormatDistance renders a distance in miles the way the feed displays it:
// "nearby" under a tenth of a mile, feet under a mile, miles otherwise.
func FormatDistance(miles float64) string {
	if miles < 0.1 {
		return "nearby"
	}
	if miles < 1 {
		return fmt.Sprintf("%.0f ft", miles*5280)
	}
	return fmt.Sprintf("%.1f mi", miles)
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
