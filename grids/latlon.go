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

// missing32 marks an absent 4-octet field.
const missing32 = 0xFFFFFFFF

// microDeg is the default angle unit when the basic angle is zero.
const microDeg = 1e-6

// rasterFields is the part shared by the latitude/longitude family of
// templates (3.0, 3.1, 3.40): the earth figure, the corner angles, and
// the increments.
type rasterFields struct {
	earth Earth

	ni, nj uint32

	la1, lo1 float64
	la2, lo2 float64
	di, dj   float64 // degrees; NaN when the field is missing

	resFlags uint8
	scan     ScanMode
}

// parseRaster decodes octets shared by templates 3.0/3.1/3.40 from the
// raw template body.
func parseRaster(t []byte) rasterFields {
	var f rasterFields

	f.earth = parseEarth(t[0:earthBlockLen])
	f.ni = binary.BigEndian.Uint32(t[16:20])
	f.nj = binary.BigEndian.Uint32(t[20:24])

	unit := microDeg
	basic := binary.BigEndian.Uint32(t[24:28])
	subdiv := binary.BigEndian.Uint32(t[28:32])
	if basic != 0 && basic != missing32 && subdiv != 0 && subdiv != missing32 {
		unit = float64(basic) / float64(subdiv)
	}

	angle := func(b []byte) float64 {
		return float64(bitio.Int32SM(binary.BigEndian.Uint32(b))) * unit
	}
	increment := func(b []byte) float64 {
		raw := binary.BigEndian.Uint32(b)
		if raw == missing32 {
			return math.NaN()
		}
		return float64(raw) * unit
	}

	f.la1 = angle(t[32:36])
	f.lo1 = angle(t[36:40])
	f.resFlags = t[40]
	f.la2 = angle(t[41:45])
	f.lo2 = angle(t[45:49])
	f.di = increment(t[49:53])
	f.dj = increment(t[53:57])
	f.scan = ScanMode(t[57])

	return f
}

// span resolves the canonical south/west anchored extents, unwrapping the
// terminal longitude across the date line in the scan direction.
func (f *rasterFields) span() (south, north, west, east float64) {
	south, north = f.la1, f.la2
	if south > north {
		south, north = north, south
	}

	lo2 := f.lo2
	if f.scan.INegative() {
		for lo2 > f.lo1 {
			lo2 -= 360
		}
		return south, north, lo2, f.lo1
	}

	for lo2 < f.lo1 {
		lo2 += 360
	}

	return south, north, f.lo1, lo2
}

// parseLatLon builds coordinates for template 3.0.
func parseLatLon(gd *section.GridDefinition) (*Coordinates, error) {
	f := parseRaster(gd.Template)

	if !gd.Regular() {
		return reducedLatLon(&f, gd.PointCounts, nil)
	}
	if f.ni == missing32 || f.ni == 0 || f.nj == missing32 || f.nj == 0 {
		return nil, fmt.Errorf("%w: latitude/longitude grid without dimensions",
			errs.ErrMalformedSection)
	}

	ni, nj := int(f.ni), int(f.nj)
	south, north, west, east := f.span()

	dj := math.Abs(f.dj)
	if math.IsNaN(f.dj) {
		dj = axisStep(south, north, nj)
	}
	di := math.Abs(f.di)
	if math.IsNaN(f.di) {
		di = axisStep(west, east, ni)
	}

	c := &Coordinates{
		Rows:    axis(south, dj, nj),
		Cols:    axis(west, di, ni),
		RowName: "latitude",
		ColName: "longitude",
		Unit:    "degrees",
		Earth:   f.earth,
		Scan:    f.scan,
		Nj:      nj,
		Ni:      ni,
	}

	return c, nil
}

// parseRotated builds coordinates for template 3.1. Axes are in rotated
// grid coordinates; the projection records the true pole.
func parseRotated(gd *section.GridDefinition) (*Coordinates, error) {
	c, err := parseLatLon(&section.GridDefinition{
		NumPoints:      gd.NumPoints,
		TemplateNumber: format.GridLatLon,
		Template:       gd.Template[:58],
		PointCounts:    gd.PointCounts,
		OptionalOctets: gd.OptionalOctets,
	})
	if err != nil {
		return nil, err
	}

	t := gd.Template
	c.RowName = "grid_latitude"
	c.ColName = "grid_longitude"
	c.Projection = &Projection{
		Kind:          ProjRotatedPole,
		SouthPoleLat:  float64(bitio.Int32SM(binary.BigEndian.Uint32(t[58:62]))) * microDeg,
		SouthPoleLon:  float64(bitio.Int32SM(binary.BigEndian.Uint32(t[62:66]))) * microDeg,
		RotationAngle: float64(bitio.Int32SM(binary.BigEndian.Uint32(t[66:70]))) * microDeg,
	}

	return c, nil
}

// parseGaussian builds coordinates for template 3.40. Row latitudes come
// from the Gaussian quadrature for N parallels, windowed to the coded
// corner latitudes; reduced grids resolve per-row points from the list.
func parseGaussian(gd *section.GridDefinition) (*Coordinates, error) {
	f := parseRaster(gd.Template)

	// The Dj slot carries N, the parallel count between equator and pole.
	n := binary.BigEndian.Uint32(gd.Template[53:57])
	if n == 0 || n == missing32 {
		return nil, fmt.Errorf("%w: Gaussian grid with no parallel count", errs.ErrMalformedSection)
	}

	if f.nj == missing32 || f.nj == 0 {
		return nil, fmt.Errorf("%w: Gaussian grid without row count", errs.ErrMalformedSection)
	}

	rows, err := gaussianRows(int(n), int(f.nj), f.la1, f.la2)
	if err != nil {
		return nil, err
	}

	if !gd.Regular() {
		return reducedLatLon(&f, gd.PointCounts, rows)
	}
	if f.ni == missing32 || f.ni == 0 {
		return nil, fmt.Errorf("%w: Gaussian grid without column count", errs.ErrMalformedSection)
	}

	ni := int(f.ni)
	_, _, west, east := f.span()

	di := math.Abs(f.di)
	if math.IsNaN(f.di) {
		di = axisStep(west, east, ni)
	}

	c := &Coordinates{
		Rows:    rows,
		Cols:    axis(west, di, ni),
		RowName: "latitude",
		ColName: "longitude",
		Unit:    "degrees",
		Earth:   f.earth,
		Scan:    f.scan,
		Nj:      int(f.nj),
		Ni:      ni,
	}

	return c, nil
}

// reducedLatLon resolves per-point coordinates for quasi-regular grids.
// counts is the per-row point list in scan order; rows, when non-nil,
// supplies Gaussian latitudes. Points and counts come out in canonical
// south-to-north order.
func reducedLatLon(f *rasterFields, counts []uint32, rows []float64) (*Coordinates, error) {
	nj := len(counts)
	if nj == 0 || int(f.nj) != nj {
		return nil, fmt.Errorf("%w: %d point counts for %d rows",
			errs.ErrMalformedSection, nj, f.nj)
	}

	south, north, west, east := f.span()

	if rows == nil {
		dj := math.Abs(f.dj)
		if math.IsNaN(f.dj) {
			dj = axisStep(south, north, nj)
		}
		rows = axis(south, dj, nj)
	}

	canonical := make([]uint32, nj)
	copy(canonical, counts)
	if !f.scan.JPositive() {
		for i, j := 0, nj-1; i < j; i, j = i+1, j-1 {
			canonical[i], canonical[j] = canonical[j], canonical[i]
		}
	}

	total := 0
	for _, c := range canonical {
		total += int(c)
	}

	lats := make([]float64, 0, total)
	lons := make([]float64, 0, total)
	for j, count := range canonical {
		if count == 0 {
			continue
		}
		step := 0.0
		if count > 1 {
			step = (east - west) / float64(count-1)
		}
		for i := range int(count) {
			lats = append(lats, rows[j])
			lons = append(lons, west+float64(i)*step)
		}
	}

	c := &Coordinates{
		PointLats: lats,
		PointLons: lons,
		RowCounts: canonical,
		RowName:   "latitude",
		ColName:   "longitude",
		Unit:      "degrees",
		Earth:     f.earth,
		Scan:      f.scan,
		Nj:        nj,
	}

	return c, nil
}

// axisStep derives the increment from the axis extent when the coded
// increment is missing.
func axisStep(lo, hi float64, n int) float64 {
	if n <= 1 {
		return 0
	}

	return (hi - lo) / float64(n-1)
}
