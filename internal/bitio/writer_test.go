package bitio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_WriteBits(t *testing.T) {
	w := NewWriter(4)

	w.WriteBits(0b101, 3)
	w.WriteBits(0b10010, 5)
	w.WriteBits(0b0110110111, 10)

	got := w.Bytes()
	assert.Equal(t, []byte{0xB2, 0x6D, 0xC0}, got, "trailing partial octet is zero padded")
}

func TestWriter_WriteBits_ZeroWidth(t *testing.T) {
	w := NewWriter(0)

	w.WriteBits(0xFF, 0)
	assert.Empty(t, w.Bytes())
	assert.Equal(t, 0, w.BitLen())
}

func TestWriter_WriteBits_MasksValue(t *testing.T) {
	w := NewWriter(1)

	// Only the low 4 bits of the value participate.
	w.WriteBits(0xFF, 4)
	w.WriteBits(0x0, 4)

	assert.Equal(t, []byte{0xF0}, w.Bytes())
}

func TestWriter_WriteBits_AccumulatorBoundary(t *testing.T) {
	w := NewWriter(16)

	// 60 bits then 12 bits forces a split across the 64-bit accumulator.
	w.WriteBits(0x0FFFFFFFFFFFFFFF, 60)
	w.WriteBits(0xABC, 12)
	w.Align()

	r := NewReader(w.Bytes())

	v, err := r.Read(60)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0FFFFFFFFFFFFFFF), v)

	v, err = r.Read(12)
	require.NoError(t, err)
	assert.Equal(t, uint64(0xABC), v)
}

func TestWriter_Align(t *testing.T) {
	w := NewWriter(2)

	w.WriteBits(0b1, 1)
	w.Align()
	w.WriteBits(0x42, 8)

	assert.Equal(t, []byte{0x80, 0x42}, w.Bytes())
	assert.Equal(t, 16, w.BitLen())
}

func TestWriter_RoundTrip(t *testing.T) {
	widths := []int{1, 3, 7, 8, 11, 16, 23, 31, 32, 48, 63, 64}

	w := NewWriter(64)
	for i, n := range widths {
		var v uint64
		if n < 64 {
			v = uint64(i*2654435761) & ((1 << n) - 1)
		} else {
			v = 0xDEADBEEFCAFEF00D
		}
		w.WriteBits(v, n)
	}

	r := NewReader(w.Bytes())
	for i, n := range widths {
		var want uint64
		if n < 64 {
			want = uint64(i*2654435761) & ((1 << n) - 1)
		} else {
			want = 0xDEADBEEFCAFEF00D
		}

		got, err := r.Read(n)
		require.NoError(t, err)
		assert.Equal(t, want, got, "width %d", n)
	}
}

func TestWriter_WriteSignMagnitude(t *testing.T) {
	w := NewWriter(4)

	w.WriteSignMagnitude(-9, 8)
	w.WriteSignMagnitude(9, 8)

	r := NewReader(w.Bytes())

	v, err := r.ReadSignMagnitude(8)
	require.NoError(t, err)
	assert.Equal(t, int64(-9), v)

	v, err = r.ReadSignMagnitude(8)
	require.NoError(t, err)
	assert.Equal(t, int64(9), v)
}
