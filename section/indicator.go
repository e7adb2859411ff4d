package section

import (
	"encoding/binary"
	"fmt"

	"github.com/cubewire/grib/errs"
	"github.com/cubewire/grib/format"
	"github.com/cubewire/grib/internal/bitio"
)

// Indicator is the section opening every message: the "GRIB" magic, the
// edition number, and the total message length. Edition 2 additionally
// carries the product discipline.
//
// The edition octet sits at the same offset in both editions, so a single
// type covers both layouts.
type Indicator struct {
	TotalLength uint64
	Edition     format.Edition
	Discipline  format.Discipline // edition 2 only
}

// Len returns the indicator section length for the carried edition.
func (ind *Indicator) Len() int {
	if ind.Edition == format.Edition1 {
		return IndicatorLen1
	}

	return IndicatorLen2
}

// Parse reads the indicator from the start of data.
//
// Returns errs.ErrNoIndicator when the magic is absent,
// errs.ErrUnsupportedEdition for editions other than 1 and 2, and
// errs.ErrTruncatedStream when data is shorter than the edition requires.
func (ind *Indicator) Parse(data []byte) error {
	if len(data) < IndicatorLen1 {
		return fmt.Errorf("%w: %d octets, indicator needs at least %d",
			errs.ErrTruncatedStream, len(data), IndicatorLen1)
	}
	if string(data[0:4]) != Magic {
		return fmt.Errorf("%w: got % X", errs.ErrNoIndicator, data[0:4])
	}

	switch format.Edition(data[7]) {
	case format.Edition1:
		ind.Edition = format.Edition1
		ind.Discipline = 0
		ind.TotalLength = uint64(bitio.Uint24(data[4:7]))

	case format.Edition2:
		if len(data) < IndicatorLen2 {
			return fmt.Errorf("%w: %d octets, edition 2 indicator needs %d",
				errs.ErrTruncatedStream, len(data), IndicatorLen2)
		}
		ind.Edition = format.Edition2
		ind.Discipline = format.Discipline(data[6])
		ind.TotalLength = binary.BigEndian.Uint64(data[8:16])

	default:
		return fmt.Errorf("%w: edition %d", errs.ErrUnsupportedEdition, data[7])
	}

	if ind.TotalLength < uint64(ind.Len()+EndLen) {
		return fmt.Errorf("%w: total length %d cannot hold indicator and end marker",
			errs.ErrMalformedSection, ind.TotalLength)
	}

	return nil
}

// Bytes serializes the indicator for the carried edition.
func (ind *Indicator) Bytes() []byte {
	if ind.Edition == format.Edition1 {
		b := make([]byte, 0, IndicatorLen1)
		b = append(b, Magic...)
		b = bitio.AppendUint24(b, uint32(ind.TotalLength))
		b = append(b, byte(format.Edition1))

		return b
	}

	b := make([]byte, 0, IndicatorLen2)
	b = append(b, Magic...)
	b = append(b, 0, 0) // reserved
	b = append(b, byte(ind.Discipline), byte(format.Edition2))
	b = binary.BigEndian.AppendUint64(b, ind.TotalLength)

	return b
}
