package grids

import (
	"fmt"
	"math"

	"github.com/cubewire/grib/errs"
)

// GaussianLatitudes returns the latitudes of a global Gaussian grid with
// n parallels between each pole and the equator, in degrees ordered
// north to south. The latitudes are the arcsines of the Gauss-Legendre
// quadrature nodes of degree 2n.
func GaussianLatitudes(n int) []float64 {
	m := 2 * n
	lats := make([]float64, m)

	for k := range n {
		x := legendreRoot(m, k)
		lat := math.Asin(x) * 180 / math.Pi
		lats[k] = lat
		lats[m-1-k] = -lat
	}

	return lats
}

// legendreRoot finds the k-th root (from x=1 downward) of the Legendre
// polynomial of degree m by Newton iteration.
func legendreRoot(m, k int) float64 {
	x := math.Cos(math.Pi * (float64(k) + 0.75) / (float64(m) + 0.5))

	for range 100 {
		p, dp := legendre(m, x)
		dx := p / dp
		x -= dx
		if math.Abs(dx) < 1e-15 {
			break
		}
	}

	return x
}

// legendre evaluates the degree-m Legendre polynomial and its derivative
// at x using the three-term recurrence.
func legendre(m int, x float64) (p, dp float64) {
	p0, p1 := 1.0, x
	for j := 1; j < m; j++ {
		p0, p1 = p1, (float64(2*j+1)*x*p1-float64(j)*p0)/float64(j+1)
	}

	return p1, float64(m) * (x*p1 - p0) / (x*x - 1)
}

// gaussianRows windows the global quadrature to the grid's nj rows,
// anchored at the coded first latitude and walking toward the last. The
// result is ascending, matching canonical row order.
func gaussianRows(n, nj int, la1, la2 float64) ([]float64, error) {
	lats := GaussianLatitudes(n)

	start := 0
	for i, lat := range lats {
		if math.Abs(lat-la1) < math.Abs(lats[start]-la1) {
			start = i
		}
	}

	// lats descend, so walking south means ascending indexes.
	step := 1
	if la2 > la1 {
		step = -1
	}

	end := start + step*(nj-1)
	if end < 0 || end >= len(lats) {
		return nil, fmt.Errorf("%w: %d Gaussian rows from latitude %.3f escape the N%d quadrature",
			errs.ErrMalformedSection, nj, la1, n)
	}

	rows := make([]float64, nj)
	for i := range nj {
		rows[i] = lats[start+step*i]
	}

	// Canonical rows ascend south to north.
	if rows[0] > rows[nj-1] {
		for i, j := 0, nj-1; i < j; i, j = i+1, j-1 {
			rows[i], rows[j] = rows[j], rows[i]
		}
	}

	return rows, nil
}
