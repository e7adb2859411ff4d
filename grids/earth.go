package grids

import (
	"encoding/binary"
	"math"

	"github.com/cubewire/grib/internal/bitio"
)

// Earth is the figure of the earth a grid is defined on (code table 3.2).
type Earth struct {
	Radius float64 // spherical radius, m
	Major  float64 // semi-major axis, m
	Minor  float64 // semi-minor axis, m
	Code   uint8
	Oblate bool
}

// Predefined figures.
var (
	earthSphere6367470 = Earth{Code: 0, Radius: 6367470}
	earthIAU65         = Earth{Code: 2, Major: 6378160, Minor: 6356775, Oblate: true}
	earthGRS80         = Earth{Code: 4, Major: 6378137, Minor: 6356752.314, Oblate: true}
	earthWGS84         = Earth{Code: 5, Major: 6378137, Minor: 6356752.3142, Oblate: true}
	earthSphere6371229 = Earth{Code: 6, Radius: 6371229}
	earthSphere6371200 = Earth{Code: 8, Radius: 6371200}
)

// DefaultEarth is the figure used on the encode path when the grid does
// not carry one.
var DefaultEarth = earthSphere6371229

// SemiMajor returns the radius for spheres and the major axis otherwise.
func (e Earth) SemiMajor() float64 {
	if e.Oblate {
		return e.Major
	}

	return e.Radius
}

// earthBlockLen is the shape-of-earth block shared by the grid templates
// (shape octet plus three scaled figures).
const earthBlockLen = 16

func scaledFigure(factor uint8, value uint32) float64 {
	if value == 0xFFFFFFFF {
		return 0
	}

	v := float64(value)
	f := bitio.Int8SM(factor)
	for i := int8(0); i < f; i++ {
		v /= 10
	}
	for i := f; i < 0; i++ {
		v *= 10
	}

	return v
}

// parseEarth decodes the 16-octet shape-of-earth block opening the grid
// templates.
func parseEarth(b []byte) Earth {
	code := b[0]

	switch code {
	case 0:
		return earthSphere6367470
	case 1:
		r := scaledFigure(b[1], binary.BigEndian.Uint32(b[2:6]))
		if r == 0 {
			return earthSphere6367470
		}
		return Earth{Code: 1, Radius: r}
	case 2:
		return earthIAU65
	case 3, 7:
		major := scaledFigure(b[6], binary.BigEndian.Uint32(b[7:11]))
		minor := scaledFigure(b[11], binary.BigEndian.Uint32(b[12:16]))
		if code == 3 { // axes coded in km
			major *= 1000
			minor *= 1000
		}
		if major == 0 || minor == 0 {
			return earthSphere6367470
		}
		return Earth{Code: code, Major: major, Minor: minor, Oblate: true}
	case 4:
		return earthGRS80
	case 5:
		return earthWGS84
	case 6:
		return earthSphere6371229
	case 8:
		return earthSphere6371200
	default:
		return earthSphere6367470
	}
}

// appendEarth serializes the shape-of-earth block. Figures with explicit
// axes carry them at scale factor 0; predefined figures carry zeros.
func appendEarth(b []byte, e Earth) []byte {
	b = append(b, e.Code)

	switch e.Code {
	case 1:
		b = append(b, 0)
		b = binary.BigEndian.AppendUint32(b, uint32(math.Round(e.Radius)))
		b = append(b, make([]byte, 10)...)
	case 3: // axes coded in km; factor 3 keeps metre precision
		b = append(b, 0, 0, 0, 0, 0)
		b = append(b, 3)
		b = binary.BigEndian.AppendUint32(b, uint32(math.Round(e.Major)))
		b = append(b, 3)
		b = binary.BigEndian.AppendUint32(b, uint32(math.Round(e.Minor)))
	case 7:
		b = append(b, 0, 0, 0, 0, 0) // radius slot unused
		b = append(b, 0)
		b = binary.BigEndian.AppendUint32(b, uint32(math.Round(e.Major)))
		b = append(b, 0)
		b = binary.BigEndian.AppendUint32(b, uint32(math.Round(e.Minor)))
	default:
		b = append(b, make([]byte, earthBlockLen-1)...)
	}

	return b
}
