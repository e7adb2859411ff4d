package section

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cubewire/grib/errs"
	"github.com/cubewire/grib/format"
)

func TestIndicator_ParseEdition2(t *testing.T) {
	data := []byte{'G', 'R', 'I', 'B', 0, 0, 0, 2, 0, 0, 0, 0, 0, 0, 0, 109}

	var ind Indicator
	require.NoError(t, ind.Parse(data))

	assert.Equal(t, format.Edition2, ind.Edition)
	assert.Equal(t, format.DisciplineMeteorological, ind.Discipline)
	assert.Equal(t, uint64(109), ind.TotalLength)
	assert.Equal(t, IndicatorLen2, ind.Len())

	assert.Equal(t, data, ind.Bytes())
}

func TestIndicator_ParseEdition1(t *testing.T) {
	data := []byte{'G', 'R', 'I', 'B', 0x00, 0x00, 0x64, 1}

	var ind Indicator
	require.NoError(t, ind.Parse(data))

	assert.Equal(t, format.Edition1, ind.Edition)
	assert.Equal(t, uint64(100), ind.TotalLength)
	assert.Equal(t, IndicatorLen1, ind.Len())

	assert.Equal(t, data, ind.Bytes())
}

func TestIndicator_ParseErrors(t *testing.T) {
	var ind Indicator

	err := ind.Parse([]byte("GRUB\x00\x00\x64\x01"))
	assert.ErrorIs(t, err, errs.ErrNoIndicator)

	err = ind.Parse([]byte("GRIB\x00\x00\x64\x03"))
	assert.ErrorIs(t, err, errs.ErrUnsupportedEdition)

	err = ind.Parse([]byte("GRIB\x00"))
	assert.ErrorIs(t, err, errs.ErrTruncatedStream)

	// Edition 2 needs the 8-octet total length.
	err = ind.Parse([]byte{'G', 'R', 'I', 'B', 0, 0, 0, 2, 0, 0})
	assert.ErrorIs(t, err, errs.ErrTruncatedStream)

	// Total length too small to hold indicator plus end marker.
	err = ind.Parse([]byte{'G', 'R', 'I', 'B', 0x00, 0x00, 0x04, 1})
	assert.ErrorIs(t, err, errs.ErrMalformedSection)
}

func TestSplit(t *testing.T) {
	sec := make([]byte, 12)
	binary.BigEndian.PutUint32(sec[0:4], 12)
	sec[4] = NumLocalUse
	trailing := append(append([]byte{}, sec...), 0xAA, 0xBB)

	number, body, rest, err := Split(trailing)
	require.NoError(t, err)
	assert.Equal(t, uint8(NumLocalUse), number)
	assert.Len(t, body, 12)
	assert.Equal(t, []byte{0xAA, 0xBB}, rest)
}

func TestSplit_Errors(t *testing.T) {
	_, _, _, err := Split([]byte{0, 0})
	assert.ErrorIs(t, err, errs.ErrTruncatedStream)

	// Declared length below the header size.
	short := []byte{0, 0, 0, 2, 7}
	_, _, _, err = Split(short)
	assert.ErrorIs(t, err, errs.ErrMalformedSection)

	// Declared length beyond the available octets.
	long := []byte{0, 0, 0, 99, 7, 0}
	_, _, _, err = Split(long)
	assert.ErrorIs(t, err, errs.ErrMalformedSection)
}

func TestIsEnd(t *testing.T) {
	assert.True(t, IsEnd([]byte("7777")))
	assert.True(t, IsEnd([]byte("7777 trailing")))
	assert.False(t, IsEnd([]byte("777")))
	assert.False(t, IsEnd([]byte("8777")))
}

func TestIdentification_RoundTrip(t *testing.T) {
	id := Identification{
		Centre:              74, // UK Met Office
		SubCentre:           0,
		MasterTablesVersion: 2,
		LocalTablesVersion:  0,
		TimeSignificance:    1,
		ReferenceTime:       time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC),
		ProductionStatus:    0,
		DataType:            1,
	}

	raw := id.Bytes()
	assert.Equal(t, uint32(21), binary.BigEndian.Uint32(raw[0:4]))
	assert.Equal(t, uint8(NumIdentification), raw[4])

	var parsed Identification
	require.NoError(t, parsed.Parse(raw))
	assert.Equal(t, id, parsed)
}

func TestIdentification_ParseErrors(t *testing.T) {
	var id Identification

	err := id.Parse(make([]byte, 10))
	assert.ErrorIs(t, err, errs.ErrMalformedSection)

	wrongNumber := make([]byte, 21)
	binary.BigEndian.PutUint32(wrongNumber[0:4], 21)
	wrongNumber[4] = NumBitmap
	err = id.Parse(wrongNumber)
	assert.ErrorIs(t, err, errs.ErrMalformedSection)
}

func TestLocalUse_RoundTrip(t *testing.T) {
	lu := LocalUse{Data: []byte("centre payload")}

	raw := lu.Bytes()

	var parsed LocalUse
	require.NoError(t, parsed.Parse(raw))
	assert.Equal(t, lu.Data, parsed.Data)
}

// latLonGridSection builds a complete section 3 with template 3.0 and the
// given point counts appended as a 2-octet optional list.
func latLonGridSection(t *testing.T, numPoints uint32, counts []uint32) []byte {
	t.Helper()

	gd := GridDefinition{
		Source:         0,
		NumPoints:      numPoints,
		TemplateNumber: format.GridLatLon,
		Template:       make([]byte, 58),
		PointCounts:    counts,
	}
	if len(counts) > 0 {
		gd.OptionalOctets = 2
		gd.OptionalInterp = 1
	}

	return gd.Bytes()
}

func TestGridDefinition_RoundTrip(t *testing.T) {
	raw := latLonGridSection(t, 12, nil)

	var gd GridDefinition
	require.NoError(t, gd.Parse(raw))

	assert.Equal(t, uint32(12), gd.NumPoints)
	assert.Equal(t, format.GridLatLon, gd.TemplateNumber)
	assert.Len(t, gd.Template, 58)
	assert.True(t, gd.Regular())

	assert.Equal(t, raw, gd.Bytes())
}

func TestGridDefinition_PointList(t *testing.T) {
	raw := latLonGridSection(t, 10, []uint32{2, 3, 5})

	var gd GridDefinition
	require.NoError(t, gd.Parse(raw))

	assert.Equal(t, []uint32{2, 3, 5}, gd.PointCounts)
	assert.False(t, gd.Regular())
	assert.Equal(t, raw, gd.Bytes())
}

func TestGridDefinition_UnknownTemplateOpaque(t *testing.T) {
	gd := GridDefinition{
		NumPoints:      4,
		TemplateNumber: 32768, // centre-defined
		Template:       []byte{1, 2, 3, 4, 5, 6, 7},
	}
	raw := gd.Bytes()

	var parsed GridDefinition
	require.NoError(t, parsed.Parse(raw))

	assert.Equal(t, format.GridTemplate(32768), parsed.TemplateNumber)
	assert.Equal(t, gd.Template, parsed.Template, "unknown template body kept opaque")
	assert.Equal(t, raw, parsed.Bytes(), "round trip preserves octets")
}

func TestGridDefinition_TruncatedTemplate(t *testing.T) {
	gd := GridDefinition{
		NumPoints:      4,
		TemplateNumber: format.GridLatLon,
		Template:       make([]byte, 20), // template 3.0 needs 58
	}
	raw := gd.Bytes()

	var parsed GridDefinition
	err := parsed.Parse(raw)
	assert.ErrorIs(t, err, errs.ErrMalformedSection)
}

func TestProductDefinition_FieldsInstant(t *testing.T) {
	pd := ProductDefinition{}
	pd.SetFields(&ProductFields{
		ParameterCategory: 0,
		ParameterNumber:   0, // temperature
		GeneratingProcess: 2,
		TimeUnit:          1, // hours
		ForecastTime:      6,
		FirstSurface:      Surface{Type: 103, ScaleFactor: 0, ScaledValue: 2},
		SecondSurface:     Surface{Type: 0xFF},
	})

	assert.Equal(t, uint16(ProductInstant), pd.TemplateNumber)

	raw := pd.Bytes()

	var parsed ProductDefinition
	require.NoError(t, parsed.Parse(raw))

	f, err := parsed.Fields()
	require.NoError(t, err)

	assert.Equal(t, uint8(0), f.ParameterCategory)
	assert.Equal(t, int32(6), f.ForecastTime)
	assert.Equal(t, uint8(103), f.FirstSurface.Type)
	assert.InDelta(t, 2.0, f.FirstSurface.Value(), 1e-12)
	assert.True(t, f.SecondSurface.Missing())
	assert.Nil(t, f.Interval)
}

func TestProductDefinition_FieldsInterval(t *testing.T) {
	end := time.Date(2024, 3, 15, 18, 0, 0, 0, time.UTC)

	pd := ProductDefinition{}
	pd.SetFields(&ProductFields{
		ParameterCategory: 1,
		ParameterNumber:   8, // total precipitation
		TimeUnit:          1,
		ForecastTime:      0,
		FirstSurface:      Surface{Type: 1},
		SecondSurface:     Surface{Type: 0xFF},
		Interval: &TimeInterval{
			End:           end,
			StatProcess:   1, // accumulation
			RangeTimeUnit: 1,
			RangeLength:   6,
		},
	})

	assert.Equal(t, uint16(ProductInterval), pd.TemplateNumber)

	var parsed ProductDefinition
	require.NoError(t, parsed.Parse(pd.Bytes()))

	f, err := parsed.Fields()
	require.NoError(t, err)
	require.NotNil(t, f.Interval)

	assert.Equal(t, end, f.Interval.End)
	assert.Equal(t, uint8(1), f.Interval.StatProcess)
	assert.Equal(t, uint32(6), f.Interval.RangeLength)
}

func TestProductDefinition_UnknownTemplate(t *testing.T) {
	pd := ProductDefinition{
		TemplateNumber: 15, // derived forecast
		Template:       make([]byte, 30),
	}

	var parsed ProductDefinition
	require.NoError(t, parsed.Parse(pd.Bytes()))

	_, err := parsed.Fields()
	assert.ErrorIs(t, err, errs.ErrUnknownTemplate)

	assert.Equal(t, pd.Bytes(), parsed.Bytes(), "unknown template survives round trip")
}

func TestProductDefinition_CoordValues(t *testing.T) {
	pd := ProductDefinition{
		TemplateNumber: ProductInstant,
		Template:       make([]byte, product0Len),
		NumCoord:       2,
		CoordValues:    []byte{1, 2, 3, 4, 5, 6, 7, 8},
	}

	var parsed ProductDefinition
	require.NoError(t, parsed.Parse(pd.Bytes()))

	assert.Equal(t, uint16(2), parsed.NumCoord)
	assert.Equal(t, pd.CoordValues, parsed.CoordValues)
	assert.Len(t, parsed.Template, product0Len)
}

func TestSurface_Value(t *testing.T) {
	// 85000 Pa with scale factor 0.
	assert.InDelta(t, 85000.0, Surface{Type: 100, ScaleFactor: 0, ScaledValue: 85000}.Value(), 1e-9)
	// 1.5 m with scale factor 1 (value 15).
	assert.InDelta(t, 1.5, Surface{Type: 103, ScaleFactor: 1, ScaledValue: 15}.Value(), 1e-9)
	// Negative scale factor multiplies.
	assert.InDelta(t, 5000.0, Surface{Type: 100, ScaleFactor: -2, ScaledValue: 50}.Value(), 1e-9)
}

func TestDataRepresentation_RoundTrip(t *testing.T) {
	dr := DataRepresentation{
		NumPacked:      1000,
		TemplateNumber: format.PackingSimple,
		Template:       []byte{0x43, 0x11, 0xD0, 0x00, 0x00, 0x01, 0x00, 0x01, 0x0C, 0x00},
	}

	raw := dr.Bytes()

	var parsed DataRepresentation
	require.NoError(t, parsed.Parse(raw))

	assert.Equal(t, uint32(1000), parsed.NumPacked)
	assert.Equal(t, format.PackingSimple, parsed.TemplateNumber)
	assert.Equal(t, dr.Template, parsed.Template)
	assert.Equal(t, raw, parsed.Bytes())
}

func TestBitmap_Bits(t *testing.T) {
	bm := Bitmap{
		Indicator: BitmapPresent,
		Data:      []byte{0b10110000},
	}

	assert.True(t, bm.Applies())
	assert.True(t, bm.Bit(0))
	assert.False(t, bm.Bit(1))
	assert.True(t, bm.Bit(2))
	assert.True(t, bm.Bit(3))
	assert.False(t, bm.Bit(4))
	assert.False(t, bm.Bit(100), "out of range bits read clear")

	assert.Equal(t, 3, bm.CountSet(8))
	assert.Equal(t, 2, bm.CountSet(3), "count respects the point limit")
}

func TestBitmap_RoundTrip(t *testing.T) {
	bm := Bitmap{Indicator: BitmapPresent, Data: []byte{0xF0, 0x0F}}

	var parsed Bitmap
	require.NoError(t, parsed.Parse(bm.Bytes()))
	assert.Equal(t, bm, parsed)

	absent := Bitmap{Indicator: BitmapAbsent}
	require.NoError(t, parsed.Parse(absent.Bytes()))
	assert.False(t, parsed.Applies())
}

func TestBitmap_IndicatorDataMismatch(t *testing.T) {
	bm := Bitmap{Indicator: BitmapAbsent, Data: []byte{0xFF}}

	var parsed Bitmap
	err := parsed.Parse(bm.Bytes())
	assert.ErrorIs(t, err, errs.ErrMalformedSection)
}

func TestData_RoundTrip(t *testing.T) {
	d := Data{Payload: []byte{0xDE, 0xAD, 0xBE, 0xEF}}

	var parsed Data
	require.NoError(t, parsed.Parse(d.Bytes()))
	assert.Equal(t, d.Payload, parsed.Payload)
}

func TestUnknown_Preserved(t *testing.T) {
	raw := make([]byte, 9)
	binary.BigEndian.PutUint32(raw[0:4], 9)
	raw[4] = 42

	var u Unknown
	require.NoError(t, u.Parse(raw))

	assert.Equal(t, uint8(42), u.Number)
	assert.Equal(t, raw, u.Bytes())
}
