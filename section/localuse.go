package section

import (
	"fmt"

	"github.com/cubewire/grib/errs"
)

// LocalUse is edition 2 section 2. Its content is defined by the
// originating centre and is carried opaque.
type LocalUse struct {
	Data []byte
}

// Parse reads section 2 from its complete octets.
func (lu *LocalUse) Parse(data []byte) error {
	if len(data) < HeaderLen {
		return fmt.Errorf("%w: local use section of %d octets", errs.ErrMalformedSection, len(data))
	}
	if data[4] != NumLocalUse {
		return fmt.Errorf("%w: expected section 2, got %d", errs.ErrMalformedSection, data[4])
	}

	lu.Data = data[HeaderLen:]

	return nil
}

// Bytes serializes section 2 with the length recomputed.
func (lu *LocalUse) Bytes() []byte {
	b := header(make([]byte, 0, HeaderLen+len(lu.Data)), NumLocalUse)
	b = append(b, lu.Data...)

	return finishHeader(b)
}
