package message

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cubewire/grib/errs"
	"github.com/cubewire/grib/format"
	"github.com/cubewire/grib/grids"
	"github.com/cubewire/grib/tables"
)

// testGrid builds an encodable 3x2 air temperature field at 850 hPa.
func testGrid(values []float64) *PhysicalGrid {
	c := testCoords([]float64{10, 20, 30}, []float64{0, 10})

	return &PhysicalGrid{
		Field:       denseField(c, values),
		Coords:      c,
		Param:       tables.LookupParameter(0, 0, 0),
		Level:       Level{Code: 100, Name: "pressure", Unit: "Pa", Value: 85000},
		RefTime:     refTime,
		ValidTime:   refTime.Add(6 * time.Hour),
		StatProcess: 0xFF,
		Centre:      98,
		Edition:     format.Edition2,
	}
}

func TestNewEncoder_Defaults(t *testing.T) {
	enc, err := NewEncoder()
	require.NoError(t, err)
	require.NotNil(t, enc)
}

func TestNewEncoder_OptionErrors(t *testing.T) {
	_, err := NewEncoder(WithPacking(format.PackingComplex))
	assert.ErrorIs(t, err, errs.ErrUnsupportedPacking)

	_, err = NewEncoder(WithBitWidth(33))
	assert.ErrorIs(t, err, errs.ErrPrecisionOverflow)
}

func TestEncoder_RoundTrip(t *testing.T) {
	values := []float64{280.12, 281.5, 282.25, 283, 284.75, 285.62}
	orig := testGrid(values)

	enc, err := NewEncoder(WithDecimalScale(2))
	require.NoError(t, err)

	msg, err := enc.Encode(orig)
	require.NoError(t, err)

	out, err := Decode(msg)
	require.NoError(t, err)
	require.Len(t, out, 1)

	g := out[0]
	assert.Equal(t, format.Edition2, g.Edition)
	assert.Equal(t, format.PackingSimple, g.Packing)
	assert.Equal(t, uint16(98), g.Centre)
	assert.Equal(t, "air_temperature", g.Param.Name)
	assert.Equal(t, "pressure", g.Level.Name)
	assert.InDelta(t, 85000.0, g.Level.Value, 1e-9)
	assert.Equal(t, refTime, g.RefTime)
	assert.Equal(t, refTime.Add(6*time.Hour), g.ValidTime)
	assert.Equal(t, uint8(0xFF), g.StatProcess)

	assert.Equal(t, []int{3, 2}, g.Field.Shape)
	assert.InDeltaSlice(t, values, g.Values(), 1e-9, "two decimals survive a scale 2 round trip")
	assert.InDeltaSlice(t, orig.Coords.Rows, g.Coords.Rows, 1e-9)
	assert.InDeltaSlice(t, orig.Coords.Cols, g.Coords.Cols, 1e-9)
}

func TestEncoder_BitmapRoundTrip(t *testing.T) {
	nan := math.NaN()
	values := []float64{280, nan, 282, 283, nan, 285}

	enc, err := NewEncoder()
	require.NoError(t, err)

	msg, err := enc.Encode(testGrid(values))
	require.NoError(t, err)

	out, err := Decode(msg)
	require.NoError(t, err)
	require.Len(t, out, 1)

	vals := out[0].Values()
	require.Len(t, vals, 6)
	assert.InDelta(t, 280.0, vals[0], 1e-9)
	assert.True(t, math.IsNaN(vals[1]))
	assert.InDelta(t, 282.0, vals[2], 1e-9)
	assert.InDelta(t, 283.0, vals[3], 1e-9)
	assert.True(t, math.IsNaN(vals[4]))
	assert.InDelta(t, 285.0, vals[5], 1e-9)
}

func TestEncoder_NaNWithoutBitmap(t *testing.T) {
	values := []float64{280, math.NaN(), 282, 283, 284, 285}

	enc, err := NewEncoder(WithBitmap(false))
	require.NoError(t, err)

	_, err = enc.Encode(testGrid(values))
	assert.ErrorIs(t, err, errs.ErrNotEncodable)
}

func TestEncoder_AllPointsMasked(t *testing.T) {
	nan := math.NaN()
	values := []float64{nan, nan, nan, nan, nan, nan}

	enc, err := NewEncoder()
	require.NoError(t, err)

	_, err = enc.Encode(testGrid(values))
	assert.ErrorIs(t, err, errs.ErrNotEncodable)
}

func TestEncoder_IntervalProduct(t *testing.T) {
	values := []float64{0, 1, 2, 3, 4, 5}
	orig := testGrid(values)
	orig.Param = tables.LookupParameter(0, 1, 8) // precipitation_amount
	orig.ValidTime = refTime.Add(12 * time.Hour)
	orig.Interval = 6 * time.Hour
	orig.StatProcess = 1 // accumulation

	enc, err := NewEncoder()
	require.NoError(t, err)

	msg, err := enc.Encode(orig)
	require.NoError(t, err)

	out, err := Decode(msg)
	require.NoError(t, err)
	require.Len(t, out, 1)

	g := out[0]
	assert.Equal(t, "precipitation_amount", g.Param.Name)
	assert.Equal(t, refTime.Add(12*time.Hour), g.ValidTime)
	assert.Equal(t, 6*time.Hour, g.Interval)
	assert.Equal(t, uint8(1), g.StatProcess)
	assert.Equal(t, "accumulation", g.Statistic())
	assert.InDeltaSlice(t, values, g.Values(), 1e-9)
}

func TestEncoder_IEEERoundTrip(t *testing.T) {
	values := []float64{280.5, 281.25, 282.75, 283.125, 284.0625, 285.5}

	enc, err := NewEncoder(WithPacking(format.PackingIEEE))
	require.NoError(t, err)

	msg, err := enc.Encode(testGrid(values))
	require.NoError(t, err)

	out, err := Decode(msg)
	require.NoError(t, err)
	require.Len(t, out, 1)

	assert.Equal(t, format.PackingIEEE, out[0].Packing)
	assert.InDeltaSlice(t, values, out[0].Values(), 1e-9, "float32-exact values survive untouched")
}

func TestEncoder_PNGRoundTrip(t *testing.T) {
	values := []float64{280.1, 281.5, 282.9, 283.4, 284.8, 285.2}

	enc, err := NewEncoder(WithPacking(format.PackingPNG), WithDecimalScale(1))
	require.NoError(t, err)

	msg, err := enc.Encode(testGrid(values))
	require.NoError(t, err)

	out, err := Decode(msg)
	require.NoError(t, err)
	require.Len(t, out, 1)

	assert.Equal(t, format.PackingPNG, out[0].Packing)
	assert.InDeltaSlice(t, values, out[0].Values(), 1e-9)
}

func TestEncoder_LayerLevel(t *testing.T) {
	values := []float64{0, 1, 2, 3, 4, 5}
	orig := testGrid(values)
	orig.Level = Level{Code: 100, Name: "pressure", Unit: "Pa", Value: 100000, Second: 85000, Layer: true}

	enc, err := NewEncoder()
	require.NoError(t, err)

	msg, err := enc.Encode(orig)
	require.NoError(t, err)

	out, err := Decode(msg)
	require.NoError(t, err)
	require.Len(t, out, 1)

	g := out[0]
	assert.True(t, g.Level.Layer)
	assert.InDelta(t, 100000.0, g.Level.Value, 1e-9)
	assert.InDelta(t, 85000.0, g.Level.Second, 1e-9)
}

func TestEncoder_RotatedGridRoundTrip(t *testing.T) {
	values := []float64{280, 281, 282, 283, 284, 285}
	orig := testGrid(values)
	orig.Coords.RowName = "grid_latitude"
	orig.Coords.ColName = "grid_longitude"
	orig.Coords.Projection = &grids.Projection{
		Kind:         grids.ProjRotatedPole,
		SouthPoleLat: -30,
		SouthPoleLon: 160,
	}

	enc, err := NewEncoder()
	require.NoError(t, err)

	msg, err := enc.Encode(orig)
	require.NoError(t, err)

	out, err := Decode(msg)
	require.NoError(t, err)
	require.Len(t, out, 1)

	g := out[0]
	require.NotNil(t, g.Coords.Projection)
	assert.Equal(t, grids.ProjRotatedPole, g.Coords.Projection.Kind)
	assert.InDelta(t, -30.0, g.Coords.Projection.SouthPoleLat, 1e-6)
	assert.InDelta(t, 160.0, g.Coords.Projection.SouthPoleLon, 1e-6)
	assert.InDeltaSlice(t, values, g.Values(), 1e-9)
}

func TestEncoder_ReducedGridRejected(t *testing.T) {
	c := &grids.Coordinates{
		PointLats: []float64{70, 70, 70, 71},
		PointLons: []float64{0, 90, 180, 0},
		RowCounts: []uint32{3, 1},
		Scan:      grids.CanonicalScan,
	}
	g := &PhysicalGrid{
		Field:   denseField(c, []float64{1, 2, 3, 4}),
		Coords:  c,
		RefTime: refTime,
	}

	enc, err := NewEncoder()
	require.NoError(t, err)

	_, err = enc.Encode(g)
	assert.ErrorIs(t, err, errs.ErrNotEncodable)
}

func TestEncoder_SizeMismatch(t *testing.T) {
	g := testGrid([]float64{1, 2, 3, 4, 5, 6})

	// A 2x2 field against the 3x2 coordinates.
	small := testCoords([]float64{10, 20}, []float64{0, 10})
	g.Field = denseField(small, []float64{1, 2, 3, 4})

	enc, err := NewEncoder()
	require.NoError(t, err)

	_, err = enc.Encode(g)
	assert.ErrorIs(t, err, errs.ErrGridSizeMismatch)
}

func TestEncoder_EmptyGrid(t *testing.T) {
	enc, err := NewEncoder()
	require.NoError(t, err)

	_, err = enc.Encode(nil)
	assert.ErrorIs(t, err, errs.ErrEmptyGrid)

	_, err = enc.Encode(&PhysicalGrid{})
	assert.ErrorIs(t, err, errs.ErrEmptyGrid)
}

func TestEncoder_SubSecondLeadTime(t *testing.T) {
	g := testGrid([]float64{1, 2, 3, 4, 5, 6})
	g.ValidTime = refTime.Add(90*time.Second + 500*time.Millisecond)

	enc, err := NewEncoder()
	require.NoError(t, err)

	_, err = enc.Encode(g)
	assert.ErrorIs(t, err, errs.ErrNotEncodable)
}

func TestEncoder_MinuteLeadTime(t *testing.T) {
	g := testGrid([]float64{280, 281, 282, 283, 284, 285})
	g.ValidTime = refTime.Add(90 * time.Minute)

	enc, err := NewEncoder()
	require.NoError(t, err)

	msg, err := enc.Encode(g)
	require.NoError(t, err)

	out, err := Decode(msg)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, refTime.Add(90*time.Minute), out[0].ValidTime, "non-whole hours fall back to minutes")
}
