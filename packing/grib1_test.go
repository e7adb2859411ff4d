package packing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cubewire/grib/errs"
	"github.com/cubewire/grib/section"
)

func TestUnpack1Simple(t *testing.T) {
	t.Run("whole octet widths", func(t *testing.T) {
		bd := &section.BinaryData1{
			Payload:        []byte{50, 60},
			ReferenceValue: 2800,
			BitsPerValue:   8,
		}

		got, err := Unpack1(bd, 1, 2, nil)
		require.NoError(t, err)
		assert.InDelta(t, 285.0, got[0], 1e-9)
		assert.InDelta(t, 286.0, got[1], 1e-9)
	})

	t.Run("sub octet widths", func(t *testing.T) {
		// Six 3-bit values 1..6: 001 010 011 100 101 110.
		bd := &section.BinaryData1{
			Payload:      []byte{0x29, 0xCB, 0x80},
			BitsPerValue: 3,
			UnusedBits:   6,
		}

		got, err := Unpack1(bd, 0, 6, nil)
		require.NoError(t, err)
		assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, got)
	})

	t.Run("constant field", func(t *testing.T) {
		bd := &section.BinaryData1{ReferenceValue: 42}

		got, err := Unpack1(bd, 0, 3, nil)
		require.NoError(t, err)
		assert.Equal(t, []float64{42, 42, 42}, got)
	})

	t.Run("padding accounted before the width check", func(t *testing.T) {
		bd := &section.BinaryData1{
			Payload:      []byte{0x00, 0x00},
			BitsPerValue: 8,
			UnusedBits:   4,
		}

		_, err := Unpack1(bd, 0, 2, nil)
		assert.ErrorIs(t, err, errs.ErrMalformedSection)
	})

	t.Run("spherical harmonics", func(t *testing.T) {
		bd := &section.BinaryData1{Flags: section.BDSFlagSphericalHarmonics}

		_, err := Unpack1(bd, 0, 1, nil)
		assert.ErrorIs(t, err, errs.ErrUnsupportedPacking)
	})
}

func TestUnpack1SecondOrder(t *testing.T) {
	t.Run("row by row groups", func(t *testing.T) {
		// Two rows of three points: first-order values 10 and 100,
		// shared 2-bit second-order width.
		bd := &section.BinaryData1{
			Flags:        section.BDSFlagComplexPacking,
			BitsPerValue: 8,
			Payload: []byte{
				0, 23, // N1
				0,     // extended flags
				0, 25, // N2
				0, 2, // P1
				0, 6, // P2
				0,
				2,       // shared second-order width
				10, 100, // first-order values
				0x1B, 0x10, // offsets 0 1 2, 3 0 1
			},
		}

		got, err := Unpack1(bd, 0, 6, []int{3, 3})
		require.NoError(t, err)
		assert.Equal(t, []float64{10, 11, 12, 103, 100, 101}, got)
	})

	t.Run("secondary bitmap groups", func(t *testing.T) {
		// Bits 100010: a four point group then a two point group.
		bd := &section.BinaryData1{
			Flags:        section.BDSFlagComplexPacking,
			BitsPerValue: 8,
			Payload: []byte{
				0, 24,
				section.BDSExtFlagSecondaryBitmaps,
				0, 26,
				0, 2,
				0, 6,
				0,
				2,
				0x88, // secondary bitmap
				10, 100,
				0x1B, 0x10, // offsets 0 1 2 3, 0 1
			},
		}

		got, err := Unpack1(bd, 0, 6, nil)
		require.NoError(t, err)
		assert.Equal(t, []float64{10, 11, 12, 13, 100, 101}, got)
	})

	t.Run("per group widths", func(t *testing.T) {
		// Group 1 packs to zero width: every point repeats its
		// first-order value.
		bd := &section.BinaryData1{
			Flags:        section.BDSFlagComplexPacking,
			BitsPerValue: 8,
			Payload: []byte{
				0, 24,
				section.BDSExtFlagDifferentWidths,
				0, 26,
				0, 2,
				0, 6,
				0,
				2, 0, // per group widths
				10, 100,
				0x18, // offsets 0 1 2
			},
		}

		got, err := Unpack1(bd, 0, 6, []int{3, 3})
		require.NoError(t, err)
		assert.Equal(t, []float64{10, 11, 12, 100, 100, 100}, got)
	})

	t.Run("row layout required", func(t *testing.T) {
		bd := &section.BinaryData1{
			Flags:        section.BDSFlagComplexPacking,
			BitsPerValue: 8,
			Payload:      []byte{0, 23, 0, 0, 23, 0, 1, 0, 4, 0, 0},
		}

		_, err := Unpack1(bd, 0, 4, nil)
		assert.ErrorIs(t, err, errs.ErrMalformedSection)
	})

	t.Run("matrix values unsupported", func(t *testing.T) {
		p := make([]byte, 11)
		p[2] = section.BDSExtFlagMatrix
		bd := &section.BinaryData1{Flags: section.BDSFlagComplexPacking, Payload: p}

		_, err := Unpack1(bd, 0, 1, nil)
		assert.ErrorIs(t, err, errs.ErrUnsupportedPacking)
	})

	t.Run("boustrophedon unsupported", func(t *testing.T) {
		p := make([]byte, 11)
		p[2] = section.BDSExtFlagBoustrophedon
		bd := &section.BinaryData1{Flags: section.BDSFlagComplexPacking, Payload: p}

		_, err := Unpack1(bd, 0, 1, nil)
		assert.ErrorIs(t, err, errs.ErrUnsupportedPacking)
	})
}
