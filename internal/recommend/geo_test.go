// internal/recommend/geo_test.go

package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordinateSuffixGeocoder(t *testing.T) {
	g := CoordinateSuffixGeocoder{}

	coords, ok := g.Geocode("Town Hall, Springfield (40.71,-74.00)")
	require.True(t, ok)
	assert.InDelta(t, 40.71, coords.Lat, 0.0001)
	assert.InDelta(t, -74.00, coords.Lng, 0.0001)

	coords, ok = g.Geocode("Library (51.5, 0.12)")
	require.True(t, ok)
	assert.InDelta(t, 51.5, coords.Lat, 0.0001)
	assert.InDelta(t, 0.12, coords.Lng, 0.0001)

	_, ok = g.Geocode("Town Hall, Springfield")
	assert.False(t, ok)

	_, ok = g.Geocode("")
	assert.False(t, ok)
}

func TestParseHour(t *testing.T) {
	assert.Equal(t, 19, parseHour("7:30 PM"))
	assert.Equal(t, 7, parseHour("7:30 AM"))
	assert.Equal(t, 12, parseHour("12:00 PM"))
	assert.Equal(t, 14, parseHour("14:00"))
	assert.Equal(t, 0, parseHour("evening"))
	assert.Equal(t, 0, parseHour(""))
}

func TestHaversineKm(t *testing.T) {
	london := Coordinates{Lat: 51.5074, Lng: -0.1278}
	paris := Coordinates{Lat: 48.8566, Lng: 2.3522}

	d := haversineKm(london, paris)
	assert.InDelta(t, 344, d, 5)

	assert.InDelta(t, 0, haversineKm(london, london), 0.001)
}
