package bitio

// Writer accumulates MSB-first bit fields into a byte slice.
//
// Bits are buffered in a 64-bit accumulator and flushed to the underlying
// slice as whole bytes. Bytes zero-pads any trailing partial octet, which
// is the padding the wire format requires for bit-packed payloads.
type Writer struct {
	buf      []byte
	bitBuf   uint64
	bitCount int
}

// NewWriter creates a Writer with capacity for sizeHint bytes.
func NewWriter(sizeHint int) *Writer {
	if sizeHint < 0 {
		sizeHint = 0
	}

	return &Writer{buf: make([]byte, 0, sizeHint)}
}

// WriteBits appends the low n bits of value (0 <= n <= 64), MSB first.
func (w *Writer) WriteBits(value uint64, n int) {
	if n <= 0 {
		return
	}

	// Mask value to only include the specified number of bits
	if n < 64 {
		value &= (1 << n) - 1
	}

	available := 64 - w.bitCount
	if n <= available {
		w.bitBuf = (w.bitBuf << n) | value
		w.bitCount += n

		if w.bitCount == 64 {
			w.flush()
		}

		return
	}

	// Split across the accumulator boundary.
	highBits := n - available
	w.bitBuf = (w.bitBuf << available) | (value >> highBits)
	w.bitCount = 64
	w.flush()

	w.bitBuf = value & ((1 << highBits) - 1)
	w.bitCount = highBits
}

// WriteSignMagnitude appends v as an n-bit sign-magnitude field.
func (w *Writer) WriteSignMagnitude(v int64, n int) {
	w.WriteBits(PackSignMagnitude(v, n), n)
}

// Align zero-pads to the next byte boundary.
func (w *Writer) Align() {
	if rem := w.bitCount % 8; rem != 0 {
		w.WriteBits(0, 8-rem)
	}
	w.flush()
}

// BitLen returns the total number of bits written.
func (w *Writer) BitLen() int {
	return len(w.buf)*8 + w.bitCount
}

// Bytes zero-pads to a byte boundary and returns the accumulated bytes.
// The returned slice references the internal buffer and is valid until
// the next WriteBits call.
func (w *Writer) Bytes() []byte {
	w.Align()
	return w.buf
}

func (w *Writer) flush() {
	if w.bitCount == 0 {
		return
	}

	numBytes := (w.bitCount + 7) / 8

	// Left-align pending bits so the first written bit lands in the MSB.
	aligned := w.bitBuf << (64 - w.bitCount)
	for i := range numBytes {
		w.buf = append(w.buf, byte(aligned>>(56-i*8)))
	}

	w.bitBuf = 0
	w.bitCount = 0
}
