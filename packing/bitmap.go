package packing

import (
	"fmt"
	"math"

	"github.com/cubewire/grib/errs"
)

// Expand scatters packed values onto the full grid according to a
// bitmap mask. A set bit marks a point with data, MSB first; clear bits
// become NaN. The packed slice must hold exactly one value per set bit.
func Expand(packed []float64, mask []byte, numPoints int) ([]float64, error) {
	if len(mask)*8 < numPoints {
		return nil, fmt.Errorf("%w: bitmap covers %d points, grid has %d",
			errs.ErrBitmapMismatch, len(mask)*8, numPoints)
	}

	out := make([]float64, numPoints)
	j := 0
	for i := range numPoints {
		if mask[i/8]&(1<<(7-i%8)) == 0 {
			out[i] = math.NaN()

			continue
		}
		if j == len(packed) {
			return nil, fmt.Errorf("%w: bitmap selects more than the %d packed values",
				errs.ErrBitmapMismatch, len(packed))
		}
		out[i] = packed[j]
		j++
	}
	if j != len(packed) {
		return nil, fmt.Errorf("%w: bitmap selects %d points, data section carries %d",
			errs.ErrBitmapMismatch, j, len(packed))
	}

	return out, nil
}

// Extract splits a grid with NaN holes into its present values and the
// bitmap that records their positions. A grid with no holes comes back
// unchanged with a nil mask.
func Extract(values []float64) (packed []float64, mask []byte) {
	holes := 0
	for _, v := range values {
		if math.IsNaN(v) {
			holes++
		}
	}
	if holes == 0 {
		return values, nil
	}

	packed = make([]float64, 0, len(values)-holes)
	mask = make([]byte, (len(values)+7)/8)
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		mask[i/8] |= 1 << (7 - i%8)
		packed = append(packed, v)
	}

	return packed, mask
}
