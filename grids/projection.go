package grids

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cubewire/grib/errs"
	"github.com/cubewire/grib/internal/bitio"
	"github.com/cubewire/grib/section"
)

// Projected grids resolve their axes in map coordinates: metres east and
// north of the projection origin, using the spherical form of each
// projection with the earth's semi-major radius. The first grid point is
// forward-projected and the axes extend from it by the coded increments.

// projCentreSouth flags the south pole on the projection plane (flag
// table 3.5, bit 1).
const projCentreSouth = 0x80

// parsePolarStereo builds coordinates for template 3.20.
func parsePolarStereo(gd *section.GridDefinition) (*Coordinates, error) {
	t := gd.Template
	f := projFields(t)

	if f.ni == 0 || f.nj == 0 {
		return nil, fmt.Errorf("%w: polar stereographic grid without dimensions",
			errs.ErrMalformedSection)
	}

	south := t[49]&projCentreSouth != 0
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

// parseLambert builds coordinates for template 3.30.
func parseLambert(gd *section.GridDefinition) (*Coordinates, error) {
	t := gd.Template
	f := projFields(t)

	if f.ni == 0 || f.nj == 0 {
		return nil, fmt.Errorf("%w: Lambert conformal grid without dimensions",
			errs.ErrMalformedSection)
	}

	latin1 := microAngle(t[51:55])
	latin2 := microAngle(t[55:59])

	x0, y0 := lambertXY(f.la1, f.lo1, latin1, latin2, f.loV, f.earth.SemiMajor())

	c := projected(f, x0, y0)
	c.Projection = &Projection{
		Kind:              ProjLambert,
		OriginLon:         f.loV,
		TrueLat:           f.laD,
		StandardParallel1: latin1,
		StandardParallel2: latin2,
		SouthPoleLat:      microAngle(t[59:63]),
		SouthPoleLon:      microAngle(t[63:67]),
		SouthPole:         t[49]&projCentreSouth != 0,
	}

	return c, nil
}

// parseMercator builds coordinates for template 3.10. The x axis is
// anchored at the first point's meridian, so x starts at zero.
func parseMercator(gd *section.GridDefinition) (*Coordinates, error) {
	t := gd.Template

	var f projectionFields
	f.earth = parseEarth(t[0:earthBlockLen])
	f.ni = binary.BigEndian.Uint32(t[16:20])
	f.nj = binary.BigEndian.Uint32(t[20:24])
	f.la1 = microAngle(t[24:28])
	f.lo1 = microAngle(t[28:32])
	f.laD = microAngle(t[33:37])
	f.scan = ScanMode(t[45])
	f.dx = float64(binary.BigEndian.Uint32(t[50:54])) * 1e-3
	f.dy = float64(binary.BigEndian.Uint32(t[54:58])) * 1e-3

	if f.ni == 0 || f.ni == missing32 || f.nj == 0 || f.nj == missing32 {
		return nil, fmt.Errorf("%w: Mercator grid without dimensions", errs.ErrMalformedSection)
	}

	r := f.earth.SemiMajor() * math.Cos(toRad(f.laD))
	y0 := r * math.Log(math.Tan(math.Pi/4+toRad(f.la1)/2))

	c := projected(f, 0, y0)
	c.Projection = &Projection{
		Kind:      ProjMercator,
		OriginLon: f.lo1,
		TrueLat:   f.laD,
	}

	return c, nil
}

// projectionFields is the shared head of templates 3.20 and 3.30.
type projectionFields struct {
	earth Earth

	ni, nj uint32

	la1, lo1 float64
	laD, loV float64
	dx, dy   float64 // metres

	scan ScanMode
}

func projFields(t []byte) projectionFields {
	return projectionFields{
		earth: parseEarth(t[0:earthBlockLen]),
		ni:    binary.BigEndian.Uint32(t[16:20]),
		nj:    binary.BigEndian.Uint32(t[20:24]),
		la1:   microAngle(t[24:28]),
		lo1:   microAngle(t[28:32]),
		laD:   microAngle(t[33:37]),
		loV:   microAngle(t[37:41]),
		dx:    float64(binary.BigEndian.Uint32(t[41:45])) * 1e-3,
		dy:    float64(binary.BigEndian.Uint32(t[45:49])) * 1e-3,
		scan:  ScanMode(t[50]),
	}
}

// projected builds the rectangular metre-axis coordinates around the
// projected first point, anchored to the canonical corner.
func projected(f projectionFields, x0, y0 float64) *Coordinates {
	ni, nj := int(f.ni), int(f.nj)

	if f.scan.INegative() {
		x0 -= float64(ni-1) * f.dx
	}
	if !f.scan.JPositive() {
		y0 -= float64(nj-1) * f.dy
	}

	return &Coordinates{
		Rows:    axis(y0, f.dy, nj),
		Cols:    axis(x0, f.dx, ni),
		RowName: "projection_y_coordinate",
		ColName: "projection_x_coordinate",
		Unit:    "m",
		Earth:   f.earth,
		Scan:    f.scan,
		Nj:      nj,
		Ni:      ni,
	}
}

// polarStereoXY forward-projects a point on the polar stereographic
// plane with true scale at laD. The pole sits at the origin; y grows
// northward on the northern projection.
func polarStereoXY(lat, lon, laD, loV, radius float64, south bool) (x, y float64) {
	if south {
		x, y = polarStereoXY(-lat, lon, -laD, loV, radius, false)

		return x, -y
	}

	phi := toRad(lat)
	rho := radius * math.Cos(phi) * (1 + math.Sin(toRad(laD))) / (1 + math.Sin(phi))
	theta := toRad(normLon(lon) - normLon(loV))

	return rho * math.Sin(theta), -rho * math.Cos(theta)
}

// lambertXY forward-projects a point on the Lambert conformal cone
// through the standard parallels latin1/latin2, central meridian loV.
func lambertXY(lat, lon, latin1, latin2, loV, radius float64) (x, y float64) {
	n := lambertN(latin1, latin2)

	phi1 := toRad(latin1)
	bigF := math.Cos(phi1) * math.Pow(math.Tan(math.Pi/4+phi1/2), n) / n

	rho := radius * bigF / math.Pow(math.Tan(math.Pi/4+toRad(lat)/2), n)
	theta := n * toRad(normLon(lon)-normLon(loV))

	return rho * math.Sin(theta), -rho * math.Cos(theta)
}

// lambertN computes the cone constant, collapsing to a tangent cone when
// the standard parallels coincide.
func lambertN(latin1, latin2 float64) float64 {
	if latin1 == latin2 {
		return math.Sin(toRad(latin1))
	}

	phi1 := toRad(latin1)
	phi2 := toRad(latin2)

	return math.Log(math.Cos(phi1)/math.Cos(phi2)) /
		math.Log(math.Tan(math.Pi/4+phi2/2)/math.Tan(math.Pi/4+phi1/2))
}

// microAngle decodes a sign-magnitude microdegree field.
func microAngle(b []byte) float64 {
	return float64(bitio.Int32SM(binary.BigEndian.Uint32(b))) * microDeg
}

func toRad(d float64) float64 { return d * math.Pi / 180 }

// normLon folds a 0..360 longitude into the signed -180..180 range.
func normLon(lon float64) float64 {
	if lon > 180 {
		return lon - 360
	}

	return lon
}
