package grids

import (
	"gonum.org/v1/gonum/floats"
)

// Projection kinds.
const (
	ProjRotatedPole = "rotated_latitude_longitude"
	ProjPolarStereo = "polar_stereographic"
	ProjLambert     = "lambert_conformal"
	ProjMercator    = "mercator"
)

// Projection carries the parameters of a non-geographic coordinate
// system. Fields apply per Kind; unused fields stay zero.
type Projection struct {
	Kind string

	// Rotated pole.
	SouthPoleLat  float64
	SouthPoleLon  float64
	RotationAngle float64

	// Projected grids.
	OriginLon         float64 // central meridian (LoV)
	StandardParallel1 float64
	StandardParallel2 float64
	TrueLat           float64 // latitude where spacing is true (LaD)
	SouthPole         bool    // projection centred on the south pole
}

// Coordinates is the resolved geometry of a field in canonical
// orientation: Rows ascend south to north (or y), Cols ascend west to
// east (or x).
//
// Regular grids carry axis vectors; reduced grids carry per-point
// coordinates with RowCounts listing points per row, south to north.
type Coordinates struct {
	Rows []float64
	Cols []float64

	PointLats []float64
	PointLons []float64
	RowCounts []uint32

	RowName string
	ColName string
	Unit    string

	Projection *Projection
	Earth      Earth

	Scan ScanMode

	Nj int
	Ni int
}

// Regular reports whether the grid is rectangular.
func (c *Coordinates) Regular() bool {
	return len(c.PointLats) == 0
}

// NumPoints returns the total grid point count.
func (c *Coordinates) NumPoints() int {
	if !c.Regular() {
		return len(c.PointLats)
	}

	return c.Nj * c.Ni
}

// Normalize reorders a scan-ordered value stream into the canonical
// orientation of this grid.
func (c *Coordinates) Normalize(values []float64) ([]float64, error) {
	if !c.Regular() {
		counts := c.RowCounts
		if !c.Scan.JPositive() {
			counts = make([]uint32, len(c.RowCounts))
			for i, v := range c.RowCounts {
				counts[len(counts)-1-i] = v
			}
		}

		out, _, err := NormalizeReduced(values, counts, c.Scan)

		return out, err
	}

	return Normalize(values, c.Nj, c.Ni, c.Scan)
}

// axis builds an n-point coordinate vector from start with the given
// step. A negative step still produces an ascending axis anchored at the
// final point, matching canonical orientation.
func axis(start, step float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{start}
	}

	if step < 0 {
		start += float64(n-1) * step
		step = -step
	}

	dst := make([]float64, n)
	floats.Span(dst, start, start+float64(n-1)*step)

	return dst
}
