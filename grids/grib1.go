package grids

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cubewire/grib/errs"
	"github.com/cubewire/grib/internal/bitio"
	"github.com/cubewire/grib/internal/ibm"
	"github.com/cubewire/grib/section"
)

// Edition 1 data representation types (code table 6).
const (
	gds1LatLon        = 0
	gds1Lambert       = 3
	gds1Gaussian      = 4
	gds1PolarStereo   = 5
	gds1RotatedLatLon = 10
)

// Edition 1 angles are coded in millidegrees; increments with all bits
// set are missing.
const (
	milliDeg  = 1e-3
	missing16 = 0xFFFF
)

// Edition 1 resolution flags (code table 7). Oblate selects the IAU 1965
// spheroid over the standard 6367.47 km sphere.
const (
	res1IncrementsGiven = 0x80
	res1EarthOblate     = 0x40
)

// FromGridDescription resolves an edition 1 grid description into
// coordinates. Representation types outside the latitude/longitude,
// Gaussian, polar stereographic, Lambert and rotated families report
// errs.ErrUnsupportedGrid.
func FromGridDescription(g *section.GridDescription1) (*Coordinates, error) {
	switch g.RepresentationType {
	case gds1LatLon:
		return latLon1(g, false)
	case gds1Gaussian:
		return latLon1(g, true)
	case gds1RotatedLatLon:
		return rotated1(g)
	case gds1PolarStereo:
		return projected1(g, false)
	case gds1Lambert:
		return projected1(g, true)
	default:
		return nil, fmt.Errorf("%w: data representation type %d",
			errs.ErrUnsupportedGrid, g.RepresentationType)
	}
}

// latLon1 handles representation types 0 and 4. The layout mirrors the
// edition 2 raster templates with millidegree angles and 16-bit
// increments; for Gaussian grids the j increment slot carries N.
func latLon1(g *section.GridDescription1, gaussian bool) (*Coordinates, error) {
	b := g.Template
	if err := gds1Guard(b, "latitude/longitude", 22); err != nil {
		return nil, err
	}

	f := raster1(b)

	if gaussian {
		n := binary.BigEndian.Uint16(b[19:21])
		if n == 0 || n == missing16 {
			return nil, fmt.Errorf("%w: Gaussian grid with no parallel count",
				errs.ErrMalformedSection)
		}

		rows, err := gaussianRows(int(n), int(f.nj), f.la1, f.la2)
		if err != nil {
			return nil, err
		}

		return latLon1Build(g, &f, rows)
	}

	return latLon1Build(g, &f, nil)
}

func latLon1Build(g *section.GridDescription1, f *rasterFields, rows []float64) (*Coordinates, error) {
	if !g.Regular() {
		counts := make([]uint32, len(g.PointCounts))
		for i, c := range g.PointCounts {
			counts[i] = uint32(c)
		}

		return reducedLatLon(f, counts, rows)
	}

	if f.ni == 0 || f.ni == missing32 || f.nj == 0 {
		return nil, fmt.Errorf("%w: grid without dimensions", errs.ErrMalformedSection)
	}

	ni, nj := int(f.ni), int(f.nj)
	south, north, west, east := f.span()

	di := math.Abs(f.di)
	if math.IsNaN(f.di) {
		di = axisStep(west, east, ni)
	}

	cols := axis(west, di, ni)

	var rowAxis []float64
	if rows != nil {
		rowAxis = rows
	} else {
		dj := math.Abs(f.dj)
		if math.IsNaN(f.dj) {
			dj = axisStep(south, north, nj)
		}
		rowAxis = axis(south, dj, nj)
	}

	c := &Coordinates{
		Rows:    rowAxis,
		Cols:    cols,
		RowName: "latitude",
		ColName: "longitude",
		Unit:    "degrees",
		Earth:   earth1(f.resFlags),
		Scan:    f.scan,
		Nj:      nj,
		Ni:      ni,
	}

	return c, nil
}

// rotated1 handles representation type 10: the raster layout plus the
// true pole, with the rotation angle coded as a machine float.
func rotated1(g *section.GridDescription1) (*Coordinates, error) {
	b := g.Template
	if err := gds1Guard(b, "rotated latitude/longitude", 36); err != nil {
		return nil, err
	}

	f := raster1(b)

	c, err := latLon1Build(g, &f, nil)
	if err != nil {
		return nil, err
	}

	c.RowName = "grid_latitude"
	c.ColName = "grid_longitude"
	c.Projection = &Projection{
		Kind:          ProjRotatedPole,
		SouthPoleLat:  milliAngle(b[26:29]),
		SouthPoleLon:  milliAngle(b[29:32]),
		RotationAngle: ibm.ToFloat64(binary.BigEndian.Uint32(b[32:36])),
	}

	return c, nil
}

// projected1 handles representation types 5 and 3. Grid lengths are in
// metres at 60 degrees (the fixed edition 1 true latitude) for polar
// stereographic, and at the first standard parallel for Lambert.
func projected1(g *section.GridDescription1, lambert bool) (*Coordinates, error) {
	b := g.Template

	need := 22
	name := "polar stereographic"
	if lambert {
		need = 34
		name = "Lambert conformal"
	}
	if err := gds1Guard(b, name, need); err != nil {
		return nil, err
	}

	var f projectionFields
	f.ni = uint32(binary.BigEndian.Uint16(b[0:2]))
	f.nj = uint32(binary.BigEndian.Uint16(b[2:4]))
	f.la1 = milliAngle(b[4:7])
	f.lo1 = milliAngle(b[7:10])
	f.loV = milliAngle(b[11:14])
	f.dx = float64(bitio.Uint24(b[14:17]))
	f.dy = float64(bitio.Uint24(b[17:20]))
	f.scan = ScanMode(b[21])
	f.earth = earth1(b[10])

	if f.ni == 0 || f.ni == missing16 || f.nj == 0 || f.nj == missing16 {
		return nil, fmt.Errorf("%w: %s grid without dimensions", errs.ErrMalformedSection, name)
	}

	south := b[20]&projCentreSouth != 0

	if lambert {
		latin1 := milliAngle(b[22:25])
		latin2 := milliAngle(b[25:28])

		x0, y0 := lambertXY(f.la1, f.lo1, latin1, latin2, f.loV, f.earth.SemiMajor())
		c := projected(f, x0, y0)
		c.Projection = &Projection{
			Kind:              ProjLambert,
			OriginLon:         f.loV,
			TrueLat:           latin1,
			StandardParallel1: latin1,
			StandardParallel2: latin2,
			SouthPoleLat:      milliAngle(b[28:31]),
			SouthPoleLon:      milliAngle(b[31:34]),
			SouthPole:         south,
		}

		return c, nil
	}

	f.laD = 60
	if south {
		f.laD = -60
	}

	x0, y0 := polarStereoXY(f.la1, f.lo1, f.laD, f.loV, f.earth.SemiMajor(), south)
	c := projected(f, x0, y0)
	c.Projection = &Projection{
		Kind:      ProjPolarStereo,
		OriginLon: f.loV,
		TrueLat:   f.laD,
		SouthPole: south,
	}

	return c, nil
}

// raster1 decodes the shared head of representation types 0, 4 and 10.
func raster1(b []byte) rasterFields {
	f := rasterFields{
		ni:       uint32(binary.BigEndian.Uint16(b[0:2])),
		nj:       uint32(binary.BigEndian.Uint16(b[2:4])),
		la1:      milliAngle(b[4:7]),
		lo1:      milliAngle(b[7:10]),
		resFlags: b[10],
		la2:      milliAngle(b[11:14]),
		lo2:      milliAngle(b[14:17]),
		scan:     ScanMode(b[21]),
		earth:    earth1(b[10]),
	}

	f.di = increment1(b[17:19], f.resFlags)
	f.dj = increment1(b[19:21], f.resFlags)

	// A reduced grid codes its column count as missing.
	if f.ni == missing16 {
		f.ni = missing32
	}

	return f
}

func increment1(b []byte, resFlags uint8) float64 {
	raw := binary.BigEndian.Uint16(b)
	if resFlags&res1IncrementsGiven == 0 || raw == missing16 {
		return math.NaN()
	}

	return float64(raw) * milliDeg
}

func earth1(resFlags uint8) Earth {
	if resFlags&res1EarthOblate != 0 {
		return earthIAU65
	}

	return earthSphere6367470
}

// milliAngle decodes a 3-octet sign-magnitude millidegree field.
func milliAngle(b []byte) float64 {
	return float64(bitio.Int24SM(bitio.Uint24(b))) * milliDeg
}

func gds1Guard(b []byte, name string, need int) error {
	if len(b) < need {
		return fmt.Errorf("%w: %s grid description carries %d octets, need %d",
			errs.ErrMalformedSection, name, len(b), need)
	}

	return nil
}
