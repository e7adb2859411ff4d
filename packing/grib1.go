package packing

import (
	"encoding/binary"
	"fmt"

	"github.com/cubewire/grib/errs"
	"github.com/cubewire/grib/internal/bitio"
	"github.com/cubewire/grib/internal/pool"
	"github.com/cubewire/grib/section"
)

// Unpack1 decodes an edition 1 binary data section into numPoints
// values. The decimal scale comes from the product definition section.
// Second-order fields without a secondary bitmap are grouped row by row;
// rowLengths supplies the points per row from the grid description.
func Unpack1(bd *section.BinaryData1, decimalScale int16, numPoints int, rowLengths []int) ([]float64, error) {
	if bd.Harmonic() {
		return nil, fmt.Errorf("%w: spherical harmonic coefficients", errs.ErrUnsupportedPacking)
	}

	s := newScaler(bd.ReferenceValue, bd.BinaryScale, decimalScale)
	if bd.Complex() {
		return unpackSecondOrder(bd, s, numPoints, rowLengths)
	}

	out := make([]float64, numPoints)
	if bd.BitsPerValue == 0 {
		for i := range out {
			out[i] = s.value(0)
		}

		return out, nil
	}

	width := int(bd.BitsPerValue)
	avail := len(bd.Payload)*8 - int(bd.UnusedBits)
	if numPoints*width > avail {
		return nil, fmt.Errorf("%w: %d data bits carry %d values of %d bits",
			errs.ErrMalformedSection, avail, numPoints, width)
	}

	r := bitio.NewReader(bd.Payload)
	for i := range out {
		x, err := r.Read(width)
		if err != nil {
			return nil, err
		}
		out[i] = s.value(float64(x))
	}

	return out, nil
}

// unpackSecondOrder handles the complex packing flag: per-group
// first-order values at the header width plus second-order offsets at
// per-group widths. Groups come from the secondary bitmap when present,
// otherwise one group per grid row.
func unpackSecondOrder(bd *section.BinaryData1, s scaler, numPoints int, rowLengths []int) ([]float64, error) {
	p := bd.Payload
	if len(p) < 11 {
		return nil, fmt.Errorf("%w: %d octets for second-order descriptors",
			errs.ErrMalformedSection, len(p))
	}

	flags := p[2]
	switch {
	case flags&section.BDSExtFlagMatrix != 0:
		return nil, fmt.Errorf("%w: matrix of values per point", errs.ErrUnsupportedPacking)
	case flags&section.BDSExtFlagGeneralExtended != 0:
		return nil, fmt.Errorf("%w: general extended second-order packing", errs.ErrUnsupportedPacking)
	case flags&section.BDSExtFlagBoustrophedon != 0:
		return nil, fmt.Errorf("%w: boustrophedon point ordering", errs.ErrUnsupportedPacking)
	}

	// N1 and N2 are 1-based octet numbers within the section; the
	// payload starts at octet 12.
	n1 := int(binary.BigEndian.Uint16(p[0:2])) - 12
	n2 := int(binary.BigEndian.Uint16(p[3:5])) - 12
	p1 := int(binary.BigEndian.Uint16(p[5:7]))
	p2 := int(binary.BigEndian.Uint16(p[7:9]))

	if p1 < 1 {
		return nil, fmt.Errorf("%w: %d first-order groups", errs.ErrMalformedSection, p1)
	}
	if p2 != numPoints {
		return nil, fmt.Errorf("%w: %d second-order values for %d points",
			errs.ErrMalformedSection, p2, numPoints)
	}

	widths := make([]int, p1)
	wEnd := 11
	if flags&section.BDSExtFlagDifferentWidths != 0 {
		wEnd = 10 + p1
		if wEnd > len(p) {
			return nil, fmt.Errorf("%w: %d octets for %d group widths", errs.ErrMalformedSection, len(p), p1)
		}
		for j := range widths {
			widths[j] = int(p[10+j])
		}
	} else {
		for j := range widths {
			widths[j] = int(p[10])
		}
	}

	if n1 < wEnd || n2 < n1 || n2 > len(p) {
		return nil, fmt.Errorf("%w: second-order data at octets %d and %d",
			errs.ErrMalformedSection, n1+12, n2+12)
	}

	lengths := make([]int, p1)
	if flags&section.BDSExtFlagSecondaryBitmaps != 0 {
		// One bit per point, a set bit starting a new group.
		sb := bitio.NewReader(p[wEnd:n1])
		g := -1
		for range numPoints {
			bit, err := sb.Read(1)
			if err != nil {
				return nil, err
			}
			if bit == 1 {
				g++
				if g == p1 {
					return nil, fmt.Errorf("%w: secondary bitmap starts more than %d groups",
						errs.ErrMalformedSection, p1)
				}
			}
			if g < 0 {
				return nil, fmt.Errorf("%w: first point outside any group", errs.ErrMalformedSection)
			}
			lengths[g]++
		}
		if g != p1-1 {
			return nil, fmt.Errorf("%w: secondary bitmap starts %d groups, descriptors declare %d",
				errs.ErrMalformedSection, g+1, p1)
		}
	} else {
		if rowLengths == nil {
			return nil, fmt.Errorf("%w: second-order data without a secondary bitmap needs the grid row layout",
				errs.ErrMalformedSection)
		}
		if len(rowLengths) != p1 {
			return nil, fmt.Errorf("%w: %d grid rows for %d groups",
				errs.ErrMalformedSection, len(rowLengths), p1)
		}
		total := 0
		for j, l := range rowLengths {
			lengths[j] = l
			total += l
		}
		if total != numPoints {
			return nil, fmt.Errorf("%w: grid rows carry %d points, field has %d",
				errs.ErrMalformedSection, total, numPoints)
		}
	}

	fos, releaseFOs := pool.GetInt64Slice(p1)
	defer releaseFOs()
	fr := bitio.NewReader(p[n1:n2])
	for j := range fos {
		x, err := fr.Read(int(bd.BitsPerValue))
		if err != nil {
			return nil, err
		}
		fos[j] = int64(x) //nolint:gosec
	}

	out := make([]float64, 0, numPoints)
	sr := bitio.NewReader(p[n2:])
	for j := range lengths {
		for range lengths[j] {
			var x uint64
			if widths[j] > 0 {
				v, err := sr.Read(widths[j])
				if err != nil {
					return nil, err
				}
				x = v
			}
			out = append(out, s.value(float64(fos[j]+int64(x)))) //nolint:gosec
		}
	}

	return out, nil
}
