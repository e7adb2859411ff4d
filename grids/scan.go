package grids

import (
	"fmt"

	"github.com/cubewire/grib/errs"
)

// ScanMode is the scanning mode flag octet (flag table 3.4, shared with
// edition 1 table 8). Bits are numbered from the MSB.
type ScanMode uint8

// CanonicalScan is the orientation all decoded fields are normalized to:
// columns west to east, rows south to north, rows consecutive.
const CanonicalScan ScanMode = 0x40

// INegative reports columns scanning east to west.
func (m ScanMode) INegative() bool { return m&0x80 != 0 }

// JPositive reports rows scanning south to north.
func (m ScanMode) JPositive() bool { return m&0x40 != 0 }

// JConsecutive reports column-major point ordering.
func (m ScanMode) JConsecutive() bool { return m&0x20 != 0 }

// Alternating reports boustrophedon row direction.
func (m ScanMode) Alternating() bool { return m&0x10 != 0 }

// Normalize reorders a scan-ordered value stream of an nj x ni grid into
// canonical row-major orientation: rows south to north, columns west to
// east. The input slice is never modified; when the stream is already
// canonical it is returned as is.
//
// Alternating row direction reports errs.ErrUnsupportedScanning.
func Normalize(values []float64, nj, ni int, mode ScanMode) ([]float64, error) {
	if mode.Alternating() {
		return nil, fmt.Errorf("%w: alternating rows (mode %#02x)", errs.ErrUnsupportedScanning, uint8(mode))
	}
	if nj*ni != len(values) {
		return nil, fmt.Errorf("%w: %d values for %dx%d grid", errs.ErrGridSizeMismatch, len(values), nj, ni)
	}

	if mode == CanonicalScan {
		return values, nil
	}

	out := make([]float64, len(values))

	for j := range nj {
		for i := range ni {
			// Source position of canonical point (j, i).
			sj, si := j, i
			if !mode.JPositive() {
				sj = nj - 1 - j
			}
			if mode.INegative() {
				si = ni - 1 - i
			}

			var src int
			if mode.JConsecutive() {
				src = si*nj + sj
			} else {
				src = sj*ni + si
			}

			out[j*ni+i] = values[src]
		}
	}

	return out, nil
}

// NormalizeReduced reorders a reduced-grid value stream so rows run south
// to north and each row runs west to east. counts lists points per row in
// scan order; the returned counts are in canonical row order.
func NormalizeReduced(values []float64, counts []uint32, mode ScanMode) ([]float64, []uint32, error) {
	if mode.Alternating() {
		return nil, nil, fmt.Errorf("%w: alternating rows (mode %#02x)", errs.ErrUnsupportedScanning, uint8(mode))
	}
	if mode.JConsecutive() {
		return nil, nil, fmt.Errorf("%w: column-major reduced grid", errs.ErrUnsupportedScanning)
	}

	total := 0
	for _, c := range counts {
		total += int(c)
	}
	if total != len(values) {
		return nil, nil, fmt.Errorf("%w: %d values for %d listed points",
			errs.ErrGridSizeMismatch, len(values), total)
	}

	if mode == CanonicalScan {
		return values, counts, nil
	}

	// Row start offsets in scan order.
	starts := make([]int, len(counts))
	off := 0
	for j, c := range counts {
		starts[j] = off
		off += int(c)
	}

	out := make([]float64, 0, len(values))
	outCounts := make([]uint32, 0, len(counts))

	for j := range counts {
		sj := j
		if !mode.JPositive() {
			sj = len(counts) - 1 - j
		}

		row := values[starts[sj] : starts[sj]+int(counts[sj])]
		if mode.INegative() {
			for i := len(row) - 1; i >= 0; i-- {
				out = append(out, row[i])
			}
		} else {
			out = append(out, row...)
		}
		outCounts = append(outCounts, counts[sj])
	}

	return out, outCounts, nil
}
