package section

import (
	"encoding/binary"
	"fmt"

	"github.com/cubewire/grib/errs"
)

// Split reads the next edition 2 section from data and returns its number,
// its complete octets (header included), and the remaining octets after it.
//
// Callers should test IsEnd before Split; encountering the end marker here
// reports a malformed message since the marker has no section header.
func Split(data []byte) (number uint8, body []byte, rest []byte, err error) {
	if len(data) < HeaderLen {
		return 0, nil, nil, fmt.Errorf("%w: %d octets left, section header needs %d",
			errs.ErrTruncatedStream, len(data), HeaderLen)
	}

	length := binary.BigEndian.Uint32(data[0:4])
	number = data[4]

	if length < HeaderLen {
		return 0, nil, nil, fmt.Errorf("%w: section %d declares %d octets, below header size",
			errs.ErrMalformedSection, number, length)
	}
	if uint64(length) > uint64(len(data)) {
		return 0, nil, nil, fmt.Errorf("%w: section %d declares %d octets, %d available",
			errs.ErrMalformedSection, number, length, len(data))
	}

	return number, data[:length], data[length:], nil
}

// IsEnd reports whether data begins with the "7777" end marker.
func IsEnd(data []byte) bool {
	return len(data) >= EndLen && string(data[:EndLen]) == EndMagic
}

// header writes the section header (length placeholder and number) and
// returns the buffer. Finalize length with finishHeader once the body is
// complete.
func header(buf []byte, number uint8) []byte {
	return append(buf, 0, 0, 0, 0, number)
}

// finishHeader back-fills the 4-octet length with the final section size.
func finishHeader(buf []byte) []byte {
	binary.BigEndian.PutUint32(buf[0:4], uint32(len(buf))) //nolint:gosec
	return buf
}

// Unknown preserves a section whose number has no typed representation.
// Decoding keeps its octets intact; interpretation is refused elsewhere.
type Unknown struct {
	Number uint8
	Raw    []byte
}

// Parse stores the complete section octets.
func (u *Unknown) Parse(data []byte) error {
	if len(data) < HeaderLen {
		return fmt.Errorf("%w: unknown section of %d octets", errs.ErrMalformedSection, len(data))
	}

	u.Number = data[4]
	u.Raw = data

	return nil
}

// Bytes returns the preserved octets unchanged.
func (u *Unknown) Bytes() []byte {
	return u.Raw
}
