package section

import (
	"fmt"

	"github.com/cubewire/grib/errs"
)

// Data is edition 2 section 7: the packed payload. Interpretation belongs
// to the packing template carried in section 5.
type Data struct {
	Payload []byte
}

// Parse reads section 7 from its complete octets.
func (d *Data) Parse(data []byte) error {
	if len(data) < HeaderLen {
		return fmt.Errorf("%w: data section of %d octets", errs.ErrMalformedSection, len(data))
	}
	if data[4] != NumData {
		return fmt.Errorf("%w: expected section 7, got %d", errs.ErrMalformedSection, data[4])
	}

	d.Payload = data[HeaderLen:]

	return nil
}

// Bytes serializes section 7 with the length recomputed.
func (d *Data) Bytes() []byte {
	b := header(make([]byte, 0, HeaderLen+len(d.Payload)), NumData)
	b = append(b, d.Payload...)

	return finishHeader(b)
}
