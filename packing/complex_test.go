package packing

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cubewire/grib/errs"
	"github.com/cubewire/grib/internal/bitio"
)

// complexLayout assembles a template 5.2 or 5.3 octet block for tests.
type complexLayout struct {
	ref     float32
	e, d    int16
	nbits   uint8
	missing uint8

	ng        uint32
	widthRef  uint8
	widthBits uint8
	lenRef    uint32
	lenInc    uint8
	lastLen   uint32
	lenBits   uint8

	spatial []byte // order and descriptor octets for template 5.3
}

func (c complexLayout) template() []byte {
	t := make([]byte, 0, 38)
	t = binary.BigEndian.AppendUint32(t, math.Float32bits(c.ref))
	t = binary.BigEndian.AppendUint16(t, bitio.PutInt16SM(c.e))
	t = binary.BigEndian.AppendUint16(t, bitio.PutInt16SM(c.d))
	t = append(t, c.nbits, 0, 1, c.missing)
	t = append(t, make([]byte, 8)...) // substitute values, unused
	t = binary.BigEndian.AppendUint32(t, c.ng)
	t = append(t, c.widthRef, c.widthBits)
	t = binary.BigEndian.AppendUint32(t, c.lenRef)
	t = append(t, c.lenInc)
	t = binary.BigEndian.AppendUint32(t, c.lastLen)
	t = append(t, c.lenBits)

	return append(t, c.spatial...)
}

func TestComplexUnpack(t *testing.T) {
	t.Run("two groups", func(t *testing.T) {
		// Group 0: reference 10, 2-bit offsets 0..3. Group 1: reference
		// 20, zero width, two points.
		layout := complexLayout{
			nbits: 5, ng: 2,
			widthBits: 2,
			lenRef:    1, lenInc: 1, lastLen: 2, lenBits: 3,
		}
		u, err := newComplexUnpacker(layout.template())
		require.NoError(t, err)

		w := bitio.NewWriter(8)
		w.WriteBits(10, 5)
		w.WriteBits(20, 5)
		w.Align()
		w.WriteBits(2, 2) // group 0 width
		w.WriteBits(0, 2) // group 1 width
		w.Align()
		w.WriteBits(3, 3) // group 0 coded length: 3*1+1 = 4
		w.WriteBits(0, 3) // group 1 slot, replaced by the true last length
		w.Align()
		for _, x := range []uint64{0, 1, 2, 3} {
			w.WriteBits(x, 2)
		}

		got, err := u.Unpack(w.Bytes(), 6)
		require.NoError(t, err)
		assert.Equal(t, []float64{10, 11, 12, 13, 20, 20}, got)
	})

	t.Run("missing value substitution", func(t *testing.T) {
		// Same stream shape with primary missing management: the
		// all-ones offset in group 0 and an all-ones reference on the
		// zero-width group 1 both mark missing points.
		layout := complexLayout{
			nbits: 5, missing: 1, ng: 2,
			widthBits: 2,
			lenRef:    1, lenInc: 1, lastLen: 2, lenBits: 3,
		}
		u, err := newComplexUnpacker(layout.template())
		require.NoError(t, err)

		w := bitio.NewWriter(8)
		w.WriteBits(10, 5)
		w.WriteBits(31, 5)
		w.Align()
		w.WriteBits(2, 2)
		w.WriteBits(0, 2)
		w.Align()
		w.WriteBits(3, 3)
		w.WriteBits(0, 3)
		w.Align()
		for _, x := range []uint64{0, 1, 2, 3} {
			w.WriteBits(x, 2)
		}

		got, err := u.Unpack(w.Bytes(), 6)
		require.NoError(t, err)

		assert.Equal(t, []float64{10, 11, 12}, got[:3])
		for i := 3; i < 6; i++ {
			assert.True(t, math.IsNaN(got[i]), "point %d", i)
		}
	})

	t.Run("scaled values", func(t *testing.T) {
		layout := complexLayout{
			ref: 2800, d: 1,
			nbits: 6, ng: 1,
			widthBits: 3,
			lenRef:    2, lenInc: 1, lastLen: 2, lenBits: 3,
		}
		u, err := newComplexUnpacker(layout.template())
		require.NoError(t, err)

		w := bitio.NewWriter(8)
		w.WriteBits(50, 6) // group reference
		w.Align()
		w.WriteBits(1, 3) // width 1
		w.Align()
		w.WriteBits(0, 3)
		w.Align()
		w.WriteBits(0, 1)
		w.WriteBits(1, 1)

		got, err := u.Unpack(w.Bytes(), 2)
		require.NoError(t, err)
		assert.InDelta(t, 285.0, got[0], 1e-9)
		assert.InDelta(t, 285.1, got[1], 1e-9)
	})
}

func TestComplexSpatialUnpack(t *testing.T) {
	t.Run("first order differences", func(t *testing.T) {
		// 10, 9, 7, 4: differences -1, -2, -3, minimum -3, stored
		// offsets 2, 1, 0 with a filler for the replaced first value.
		layout := complexLayout{
			nbits: 4, ng: 1,
			widthBits: 3,
			lenRef:    4, lenInc: 1, lastLen: 4, lenBits: 3,
			spatial: []byte{1, 1},
		}
		u, err := newComplexSpatialUnpacker(layout.template())
		require.NoError(t, err)

		payload := []byte{0x0A, 0x83} // initial value 10, minimum -3
		w := bitio.NewWriter(8)
		w.WriteBits(0, 4) // group reference
		w.Align()
		w.WriteBits(2, 3) // width 2
		w.Align()
		w.WriteBits(0, 3)
		w.Align()
		for _, x := range []uint64{0, 2, 1, 0} {
			w.WriteBits(x, 2)
		}
		payload = append(payload, w.Bytes()...)

		got, err := u.Unpack(payload, 4)
		require.NoError(t, err)
		assert.Equal(t, []float64{10, 9, 7, 4}, got)
	})

	t.Run("second order differences", func(t *testing.T) {
		// 5, 6, 8, 11, 15, 20: constant second difference 1, so the
		// whole field collapses to a single zero-width group.
		layout := complexLayout{
			nbits: 2, ng: 1,
			widthBits: 2,
			lenRef:    6, lenInc: 1, lastLen: 6, lenBits: 3,
			spatial: []byte{2, 1},
		}
		u, err := newComplexSpatialUnpacker(layout.template())
		require.NoError(t, err)

		payload := []byte{0x05, 0x06, 0x01} // initial 5 and 6, minimum 1
		w := bitio.NewWriter(4)
		w.WriteBits(0, 2)
		w.Align()
		w.WriteBits(0, 2)
		w.Align()
		w.WriteBits(0, 3)
		w.Align()
		payload = append(payload, w.Bytes()...)

		got, err := u.Unpack(payload, 6)
		require.NoError(t, err)
		assert.Equal(t, []float64{5, 6, 8, 11, 15, 20}, got)
	})
}

func TestComplexParseErrors(t *testing.T) {
	base := complexLayout{nbits: 8, ng: 1, widthBits: 4, lastLen: 1, lenBits: 8}

	t.Run("truncated template", func(t *testing.T) {
		_, err := newComplexUnpacker(base.template()[:20])
		assert.ErrorIs(t, err, errs.ErrMalformedSection)
	})

	t.Run("unknown missing management", func(t *testing.T) {
		layout := base
		layout.missing = 3
		_, err := newComplexUnpacker(layout.template())
		assert.ErrorIs(t, err, errs.ErrUnsupportedPacking)
	})

	t.Run("spatial order out of range", func(t *testing.T) {
		layout := base
		layout.spatial = []byte{3, 1}
		_, err := newComplexSpatialUnpacker(layout.template())
		assert.ErrorIs(t, err, errs.ErrUnsupportedPacking)
	})

	t.Run("group count impossible for payload", func(t *testing.T) {
		layout := base
		layout.ng = 1 << 20
		u, err := newComplexUnpacker(layout.template())
		require.NoError(t, err)

		_, err = u.Unpack(make([]byte, 16), 4)
		assert.ErrorIs(t, err, errs.ErrMalformedSection)
	})

	t.Run("group lengths disagree with the field", func(t *testing.T) {
		layout := complexLayout{
			nbits: 5, ng: 2,
			widthBits: 2,
			lenRef:    1, lenInc: 1, lastLen: 2, lenBits: 3,
		}
		u, err := newComplexUnpacker(layout.template())
		require.NoError(t, err)

		w := bitio.NewWriter(8)
		w.WriteBits(10, 5)
		w.WriteBits(20, 5)
		w.Align()
		w.WriteBits(2, 2)
		w.WriteBits(0, 2)
		w.Align()
		w.WriteBits(3, 3)
		w.WriteBits(0, 3)
		w.Align()
		for _, x := range []uint64{0, 1, 2, 3} {
			w.WriteBits(x, 2)
		}

		_, err = u.Unpack(w.Bytes(), 9)
		assert.ErrorIs(t, err, errs.ErrMalformedSection)
	})
}
