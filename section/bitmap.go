package section

import (
	"fmt"

	"github.com/cubewire/grib/errs"
)

// bitmapLen is the fixed part of section 6 (octets 1-6).
const bitmapLen = 6

// Bitmap is edition 2 section 6: the presence mask for the data section.
// Bits are MSB-first per octet; a set bit means a value is present in the
// packed stream for that grid point.
type Bitmap struct {
	Data []byte

	// Indicator is code table 6.0: 0 bitmap attached, 1-253 predefined by
	// the centre, 254 reuse the previous bitmap in this message, 255 none.
	Indicator uint8
}

// Parse reads section 6 from its complete octets.
func (bm *Bitmap) Parse(data []byte) error {
	if len(data) < bitmapLen {
		return fmt.Errorf("%w: bitmap section of %d octets, need %d",
			errs.ErrMalformedSection, len(data), bitmapLen)
	}
	if data[4] != NumBitmap {
		return fmt.Errorf("%w: expected section 6, got %d", errs.ErrMalformedSection, data[4])
	}

	bm.Indicator = data[5]
	bm.Data = data[bitmapLen:]

	if bm.Indicator != BitmapPresent && len(bm.Data) > 0 {
		return fmt.Errorf("%w: bitmap indicator %d with %d octets of mask data",
			errs.ErrMalformedSection, bm.Indicator, len(bm.Data))
	}

	return nil
}

// Applies reports whether a presence mask affects the data section, either
// attached here or reused from earlier in the message.
func (bm *Bitmap) Applies() bool {
	return bm.Indicator != BitmapAbsent
}

// CountSet returns the number of set bits in the mask, capped at total
// grid points (padding bits in the final octet are ignored).
func (bm *Bitmap) CountSet(points int) int {
	count := 0
	for i := 0; i < points; i++ {
		if bm.Bit(i) {
			count++
		}
	}

	return count
}

// Bit reports the mask bit for grid point i (MSB-first within each octet).
func (bm *Bitmap) Bit(i int) bool {
	octet := i / 8
	if octet >= len(bm.Data) {
		return false
	}

	return bm.Data[octet]&(1<<(7-uint(i)%8)) != 0
}

// Bytes serializes section 6 with the length recomputed.
func (bm *Bitmap) Bytes() []byte {
	b := header(make([]byte, 0, bitmapLen+len(bm.Data)), NumBitmap)
	b = append(b, bm.Indicator)
	b = append(b, bm.Data...)

	return finishHeader(b)
}
