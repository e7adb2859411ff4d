package grids

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEarth_PredefinedFigures(t *testing.T) {
	tests := []struct {
		name   string
		code   byte
		radius float64
		oblate bool
	}{
		{"default sphere", 0, 6367470, false},
		{"IAU 1965", 2, 6378160, true},
		{"GRS80", 4, 6378137, true},
		{"WGS84", 5, 6378137, true},
		{"sphere 6371229", 6, 6371229, false},
		{"sphere 6371200", 8, 6371200, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := make([]byte, earthBlockLen)
			b[0] = tt.code

			e := parseEarth(b)
			assert.InDelta(t, tt.radius, e.SemiMajor(), 0.5)
			assert.Equal(t, tt.oblate, e.Oblate)
		})
	}
}

func TestEarth_ScaledRoundTrips(t *testing.T) {
	tests := []struct {
		name  string
		earth Earth
	}{
		{"custom radius", Earth{Code: 1, Radius: 6371000}},
		{"km axes", Earth{Code: 3, Major: 6378137, Minor: 6356752, Oblate: true}},
		{"metre axes", Earth{Code: 7, Major: 6378137, Minor: 6356752, Oblate: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := appendEarth(nil, tt.earth)
			require.Len(t, b, earthBlockLen)

			e := parseEarth(b)
			assert.InDelta(t, tt.earth.SemiMajor(), e.SemiMajor(), 0.5)
			assert.Equal(t, tt.earth.Oblate, e.Oblate)
		})
	}
}

func TestParseEarth_MissingFigureFallsBack(t *testing.T) {
	b := make([]byte, earthBlockLen)
	b[0] = 1
	for i := 2; i < 6; i++ {
		b[i] = 0xFF // radius missing
	}

	e := parseEarth(b)
	assert.InDelta(t, 6367470.0, e.SemiMajor(), 0.5)
}
