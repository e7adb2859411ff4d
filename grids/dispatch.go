package grids

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cubewire/grib/errs"
	"github.com/cubewire/grib/format"
	"github.com/cubewire/grib/internal/bitio"
	"github.com/cubewire/grib/section"
)

// FromGridDefinition resolves an edition 2 grid definition into
// coordinates. Unsupported templates report errs.ErrUnsupportedGrid.
func FromGridDefinition(gd *section.GridDefinition) (*Coordinates, error) {
	switch gd.TemplateNumber {
	case format.GridLatLon:
		return parseLatLon(gd)
	case format.GridRotatedLatLon:
		return parseRotated(gd)
	case format.GridMercator:
		return parseMercator(gd)
	case format.GridPolarStereo:
		return parsePolarStereo(gd)
	case format.GridLambert:
		return parseLambert(gd)
	case format.GridGaussian:
		return parseGaussian(gd)
	default:
		return nil, fmt.Errorf("%w: grid definition template %d",
			errs.ErrUnsupportedGrid, gd.TemplateNumber)
	}
}

// ToGridDefinition builds an edition 2 grid definition from coordinates.
// Regular latitude/longitude grids map to template 3.0 and rotated pole
// grids to 3.1; anything else reports errs.ErrNotEncodable. Axes must be
// evenly spaced and are coded in canonical scan order.
func ToGridDefinition(c *Coordinates) (*section.GridDefinition, error) {
	if !c.Regular() {
		return nil, fmt.Errorf("%w: reduced grid", errs.ErrNotEncodable)
	}

	template := format.GridLatLon
	if p := c.Projection; p != nil {
		if p.Kind != ProjRotatedPole {
			return nil, fmt.Errorf("%w: %s projection", errs.ErrNotEncodable, p.Kind)
		}
		template = format.GridRotatedLatLon
	}

	dj, err := axisIncrement(c.Rows, "row")
	if err != nil {
		return nil, err
	}
	di, err := axisIncrement(c.Cols, "column")
	if err != nil {
		return nil, err
	}

	nj, ni := len(c.Rows), len(c.Cols)

	earth := c.Earth
	if earth == (Earth{}) {
		earth = DefaultEarth
	}

	t := appendEarth(make([]byte, 0, 70), earth)
	t = binary.BigEndian.AppendUint32(t, uint32(ni)) //nolint:gosec
	t = binary.BigEndian.AppendUint32(t, uint32(nj)) //nolint:gosec
	t = binary.BigEndian.AppendUint32(t, 0)          // basic angle: default
	t = binary.BigEndian.AppendUint32(t, missing32)  // subdivisions
	t = appendMicroAngle(t, c.Rows[0])
	t = appendMicroAngle(t, foldLon(c.Cols[0]))
	t = append(t, 0x30) // i and j increments given
	t = appendMicroAngle(t, c.Rows[nj-1])
	t = appendMicroAngle(t, foldLon(c.Cols[ni-1]))
	t = binary.BigEndian.AppendUint32(t, microUnits(di))
	t = binary.BigEndian.AppendUint32(t, microUnits(dj))
	t = append(t, uint8(CanonicalScan))

	if template == format.GridRotatedLatLon {
		p := c.Projection
		t = appendMicroAngle(t, p.SouthPoleLat)
		t = appendMicroAngle(t, foldLon(p.SouthPoleLon))
		t = appendMicroAngle(t, p.RotationAngle)
	}

	gd := &section.GridDefinition{
		Template:       t,
		NumPoints:      uint32(nj * ni), //nolint:gosec
		TemplateNumber: template,
	}

	return gd, nil
}

// axisIncrement validates even spacing and returns the step. Spacing may
// wobble by the microdegree quantization of the coded angles.
func axisIncrement(axis []float64, name string) (float64, error) {
	if len(axis) < 2 {
		return 0, fmt.Errorf("%w: %s axis of %d points has no increment",
			errs.ErrNotEncodable, name, len(axis))
	}

	step := axis[1] - axis[0]
	for i := 2; i < len(axis); i++ {
		if math.Abs(axis[i]-axis[i-1]-step) > 1e-5 {
			return 0, fmt.Errorf("%w: %s axis is not evenly spaced", errs.ErrNotEncodable, name)
		}
	}
	if step <= 0 {
		return 0, fmt.Errorf("%w: %s axis does not ascend", errs.ErrNotEncodable, name)
	}

	return step, nil
}

func appendMicroAngle(b []byte, deg float64) []byte {
	v := int32(math.Round(deg * 1e6))

	return binary.BigEndian.AppendUint32(b, bitio.PutInt32SM(v))
}

func microUnits(deg float64) uint32 {
	return uint32(math.Round(deg * 1e6))
}

// foldLon maps a longitude into the coded 0..360 range.
func foldLon(lon float64) float64 {
	lon = math.Mod(lon, 360)
	if lon < 0 {
		lon += 360
	}

	return lon
}
