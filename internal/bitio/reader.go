// Package bitio implements MSB-first bit-level reading and writing over
// byte slices, plus the odd-width big-endian integer helpers the wire
// format relies on (24-bit lengths, sign-magnitude scale factors).
//
// Bits are consumed and produced most-significant-bit first within each
// octet, matching the WMO bit numbering where bit 1 is the MSB.
package bitio

import (
	"encoding/binary"
	"fmt"

	"github.com/cubewire/grib/errs"
)

// Reader reads unsigned integers of arbitrary bit width from a byte slice.
type Reader struct {
	buf []byte
	pos int // current bit position
}

// NewReader creates a Reader over b starting at bit position 0.
func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

// Read reads n bits (0 <= n <= 64) and returns them as a uint64.
//
// Byte-aligned reads of 8/16/32/64 bits take a fast path through
// encoding/binary; all other widths fall back to bit-by-bit extraction.
func (r *Reader) Read(n int) (uint64, error) {
	if n < 0 || n > 64 {
		return 0, fmt.Errorf("%w: invalid bit width %d", errs.ErrMalformedSection, n)
	}
	if n == 0 {
		return 0, nil
	}

	end := r.pos + n
	if end > len(r.buf)*8 {
		return 0, fmt.Errorf("%w: read %d bits at bit %d overflows %d-byte buffer",
			errs.ErrMalformedSection, n, r.pos, len(r.buf))
	}

	// Fast path: byte-aligned reads of exact byte widths.
	if r.pos%8 == 0 {
		off := r.pos / 8
		switch n {
		case 8:
			r.pos = end
			return uint64(r.buf[off]), nil
		case 16:
			r.pos = end
			return uint64(binary.BigEndian.Uint16(r.buf[off:])), nil
		case 32:
			r.pos = end
			return uint64(binary.BigEndian.Uint32(r.buf[off:])), nil
		case 64:
			r.pos = end
			return binary.BigEndian.Uint64(r.buf[off:]), nil
		}
	}

	var v uint64
	for i := range n {
		byteIdx := (r.pos + i) / 8
		bitIdx := 7 - ((r.pos + i) % 8) // MSB first within byte
		bit := (r.buf[byteIdx] >> bitIdx) & 1
		v = (v << 1) | uint64(bit)
	}
	r.pos = end

	return v, nil
}

// ReadSignMagnitude reads an n-bit sign-magnitude integer where the most
// significant bit of the field is the sign (1 means negative).
func (r *Reader) ReadSignMagnitude(n int) (int64, error) {
	raw, err := r.Read(n)
	if err != nil {
		return 0, err
	}

	return SignMagnitude(raw, n), nil
}

// Align advances the position to the next byte boundary.
func (r *Reader) Align() {
	if r.pos%8 != 0 {
		r.pos += 8 - (r.pos % 8)
	}
}

// ByteOffset returns the current byte position, rounding up any partial octet.
func (r *Reader) ByteOffset() int {
	return (r.pos + 7) / 8
}

// Remaining returns the number of unread bits.
func (r *Reader) Remaining() int {
	return len(r.buf)*8 - r.pos
}

// SignMagnitude decodes an n-bit sign-magnitude value: the top bit of the
// field is the sign, the remaining n-1 bits the magnitude.
func SignMagnitude(raw uint64, n int) int64 {
	if n <= 0 {
		return 0
	}

	signBit := uint64(1) << (n - 1)
	mag := int64(raw &^ signBit)
	if raw&signBit != 0 {
		return -mag
	}

	return mag
}

// PackSignMagnitude encodes v as an n-bit sign-magnitude field.
// The magnitude must fit in n-1 bits; excess bits are truncated.
func PackSignMagnitude(v int64, n int) uint64 {
	if n <= 0 {
		return 0
	}

	signBit := uint64(1) << (n - 1)
	if v < 0 {
		return signBit | (uint64(-v) & (signBit - 1))
	}

	return uint64(v) & (signBit - 1)
}

// Uint24 reads a big-endian 3-octet unsigned integer.
func Uint24(b []byte) uint32 {
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}

// PutUint24 writes v as a big-endian 3-octet unsigned integer.
func PutUint24(b []byte, v uint32) {
	b[0] = byte(v >> 16)
	b[1] = byte(v >> 8)
	b[2] = byte(v)
}

// AppendUint24 appends v as a big-endian 3-octet unsigned integer.
func AppendUint24(b []byte, v uint32) []byte {
	return append(b, byte(v>>16), byte(v>>8), byte(v))
}

// Int8SM decodes an 8-bit sign-magnitude field (sign in bit 0x80).
func Int8SM(raw uint8) int8 {
	v := int8(raw & 0x7F)
	if raw&0x80 != 0 {
		return -v
	}

	return v
}

// PutInt8SM encodes v as an 8-bit sign-magnitude field.
func PutInt8SM(v int8) uint8 {
	if v < 0 {
		return 0x80 | uint8(-v)
	}

	return uint8(v)
}

// Int16SM decodes a 16-bit sign-magnitude field (sign in bit 0x8000).
// Scale factors and coded latitudes use this layout rather than two's
// complement.
func Int16SM(raw uint16) int16 {
	v := int16(raw & 0x7FFF)
	if raw&0x8000 != 0 {
		return -v
	}

	return v
}

// PutInt16SM encodes v as a 16-bit sign-magnitude field.
func PutInt16SM(v int16) uint16 {
	if v < 0 {
		return 0x8000 | uint16(-v)
	}

	return uint16(v)
}

// Int24SM decodes a 24-bit sign-magnitude field (sign in bit 0x800000).
func Int24SM(raw uint32) int32 {
	v := int32(raw & 0x7FFFFF)
	if raw&0x800000 != 0 {
		return -v
	}

	return v
}

// PutInt24SM encodes v as a 24-bit sign-magnitude field.
func PutInt24SM(v int32) uint32 {
	if v < 0 {
		return 0x800000 | uint32(-v)
	}

	return uint32(v)
}

// Int32SM decodes a 32-bit sign-magnitude field (sign in bit 0x80000000).
func Int32SM(raw uint32) int32 {
	v := int32(raw & 0x7FFFFFFF)
	if raw&0x80000000 != 0 {
		return -v
	}

	return v
}

// PutInt32SM encodes v as a 32-bit sign-magnitude field.
func PutInt32SM(v int32) uint32 {
	if v < 0 {
		return 0x80000000 | uint32(-v)
	}

	return uint32(v)
}
