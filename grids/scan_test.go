package grids

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cubewire/grib/errs"
)

func TestNormalize_CanonicalPassthrough(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6}

	out, err := Normalize(values, 2, 3, CanonicalScan)
	require.NoError(t, err)
	assert.Equal(t, values, out)
}

func TestNormalize_RowMajorNorthFirst(t *testing.T) {
	// 2x3 grid scanned north row first (mode 0x00).
	values := []float64{
		1, 2, 3, // north row
		4, 5, 6, // south row
	}

	out, err := Normalize(values, 2, 3, 0x00)
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 5, 6, 1, 2, 3}, out)
}

func TestNormalize_WestwardColumns(t *testing.T) {
	values := []float64{
		3, 2, 1,
		6, 5, 4,
	}

	out, err := Normalize(values, 2, 3, 0x80|0x40)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, out)
}

func TestNormalize_ColumnMajor(t *testing.T) {
	// 2x3 grid scanned column by column, south to north.
	values := []float64{
		1, 4, // west column, south then north
		2, 5,
		3, 6,
	}

	out, err := Normalize(values, 2, 3, 0x40|0x20)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, out)
}

func TestNormalize_Alternating(t *testing.T) {
	_, err := Normalize(make([]float64, 6), 2, 3, 0x50)
	require.ErrorIs(t, err, errs.ErrUnsupportedScanning)
}

func TestNormalize_SizeMismatch(t *testing.T) {
	_, err := Normalize(make([]float64, 5), 2, 3, 0x00)
	require.ErrorIs(t, err, errs.ErrGridSizeMismatch)
}

func TestNormalizeReduced(t *testing.T) {
	t.Run("north first", func(t *testing.T) {
		values := []float64{
			1, 2, // north row, 2 points
			3, 4, 5, // south row, 3 points
		}

		out, counts, err := NormalizeReduced(values, []uint32{2, 3}, 0x00)
		require.NoError(t, err)
		assert.Equal(t, []float64{3, 4, 5, 1, 2}, out)
		assert.Equal(t, []uint32{3, 2}, counts)
	})

	t.Run("westward rows", func(t *testing.T) {
		values := []float64{
			2, 1,
			5, 4, 3,
		}

		out, counts, err := NormalizeReduced(values, []uint32{2, 3}, 0x80)
		require.NoError(t, err)
		assert.Equal(t, []float64{3, 4, 5, 1, 2}, out)
		assert.Equal(t, []uint32{3, 2}, counts)
	})

	t.Run("canonical passthrough", func(t *testing.T) {
		values := []float64{1, 2, 3, 4, 5}

		out, counts, err := NormalizeReduced(values, []uint32{3, 2}, CanonicalScan)
		require.NoError(t, err)
		assert.Equal(t, values, out)
		assert.Equal(t, []uint32{3, 2}, counts)
	})

	t.Run("count mismatch", func(t *testing.T) {
		_, _, err := NormalizeReduced(make([]float64, 4), []uint32{2, 3}, 0x00)
		require.ErrorIs(t, err, errs.ErrGridSizeMismatch)
	})

	t.Run("column major unsupported", func(t *testing.T) {
		_, _, err := NormalizeReduced(make([]float64, 5), []uint32{2, 3}, 0x20)
		require.ErrorIs(t, err, errs.ErrUnsupportedScanning)
	})
}
