// internal/recommend/geo.go

package recommend

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Geocoder resolves a free-text location to coordinates. The second
// return value reports whether the location could be resolved.
type Geocoder interface {
	Geocode(location string) (Coordinates, bool)
}

var (
	coordSuffixRe = regexp.MustCompile(`\((-?\d+(?:\.\d+)?),\s*(-?\d+(?:\.\d+)?)\)\s*$`)
	hourRe        = regexp.MustCompile(`(\d+):`)
)

// CoordinateSuffixGeocoder resolves locations that embed a "(lat,lng)"
// suffix, e.g. "Town Hall, Springfield (40.71,-74.00)". Anything else is
// unresolvable. A real geocoding service can be dropped in behind the
// Geocoder interface without touching the scoring code.
type CoordinateSuffixGeocoder struct{}

func (CoordinateSuffixGeocoder) Geocode(location string) (Coordinates, bool) {
	m := coordSuffixRe.FindStringSubmatch(location)
	if m == nil {
		return Coordinates{}, false
	}

	lat, err1 := strconv.ParseFloat(m[1], 64)
	lng, err2 := strconv.ParseFloat(m[2], 64)
	if err1 != nil || err2 != nil {
		return Coordinates{}, false
	}

	return Coordinates{Lat: lat, Lng: lng}, true
}

// parseHour extracts an hour of day from a free-text time string like
// "7:30 PM". Unparseable strings yield hour 0.
func parseHour(timeStr string) int {
	m := hourRe.FindStringSubmatch(timeStr)
	if m == nil {
		return 0
	}

	hour, err := strconv.Atoi(m[1])
	if err != nil || hour < 0 || hour > 23 {
		return 0
	}

	if strings.Contains(strings.ToUpper(timeStr), "PM") && hour < 12 {
		hour += 12
	}

	return hour
}

// haversineKm returns the great-circle distance between two points in km
func haversineKm(a, b Coordinates) float64 {
	const earthRadiusKm = 6371

	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*math.Pi/180)*math.Cos(b.Lat*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}
