package packing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cubewire/grib/errs"
)

func TestExpand(t *testing.T) {
	t.Run("scatters packed values", func(t *testing.T) {
		// 1011 0000: points 0, 2 and 3 carry data.
		got, err := Expand([]float64{1, 2, 3}, []byte{0xB0}, 4)
		require.NoError(t, err)

		assert.Equal(t, 1.0, got[0])
		assert.True(t, math.IsNaN(got[1]))
		assert.Equal(t, 2.0, got[2])
		assert.Equal(t, 3.0, got[3])
	})

	t.Run("crosses octet boundaries", func(t *testing.T) {
		got, err := Expand([]float64{7, 8}, []byte{0x01, 0x80}, 10)
		require.NoError(t, err)

		assert.Equal(t, 7.0, got[7])
		assert.Equal(t, 8.0, got[8])
		for _, i := range []int{0, 1, 2, 3, 4, 5, 6, 9} {
			assert.True(t, math.IsNaN(got[i]), "point %d", i)
		}
	})

	t.Run("too few packed values", func(t *testing.T) {
		_, err := Expand([]float64{1}, []byte{0xB0}, 4)
		assert.ErrorIs(t, err, errs.ErrBitmapMismatch)
	})

	t.Run("too many packed values", func(t *testing.T) {
		_, err := Expand([]float64{1, 2, 3, 4}, []byte{0xB0}, 4)
		assert.ErrorIs(t, err, errs.ErrBitmapMismatch)
	})

	t.Run("mask shorter than the grid", func(t *testing.T) {
		_, err := Expand([]float64{1}, []byte{0x80}, 9)
		assert.ErrorIs(t, err, errs.ErrBitmapMismatch)
	})
}

func TestExtract(t *testing.T) {
	t.Run("no holes keeps the field", func(t *testing.T) {
		values := []float64{1, 2, 3}
		packed, mask := Extract(values)
		assert.Nil(t, mask)
		assert.Equal(t, values, packed)
	})

	t.Run("round trip through a bitmap", func(t *testing.T) {
		values := []float64{1, math.NaN(), 3, math.NaN(), math.NaN(), 6, 7, 8, math.NaN()}

		packed, mask := Extract(values)
		assert.Equal(t, []float64{1, 3, 6, 7, 8}, packed)
		require.NotNil(t, mask)
		assert.Equal(t, []byte{0xA7, 0x00}, mask)

		got, err := Expand(packed, mask, len(values))
		require.NoError(t, err)
		for i, v := range values {
			if math.IsNaN(v) {
				assert.True(t, math.IsNaN(got[i]), "point %d", i)
			} else {
				assert.Equal(t, v, got[i], "point %d", i)
			}
		}
	})
}
