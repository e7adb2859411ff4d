package message

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/cubewire/grib/errs"
	"github.com/cubewire/grib/format"
	"github.com/cubewire/grib/grids"
	"github.com/cubewire/grib/internal/options"
	"github.com/cubewire/grib/internal/pool"
	"github.com/cubewire/grib/packing"
	"github.com/cubewire/grib/section"
	"github.com/cubewire/grib/tables"
)

// masterTablesVersion is the WMO master tables version written into
// section 1 of every encoded message.
const masterTablesVersion = 2

// Encoder writes a PhysicalGrid as a complete edition 2 message. Fields
// decoded from either edition re-encode as edition 2; there is no
// edition 1 write path.
//
// The zero-configuration encoder uses simple packing with a bit width
// derived from the value range, and extracts NaN points into a bitmap
// section.
type Encoder struct {
	template format.Packing
	quant    packing.Quantization
	bitmap   bool
}

// EncoderOption represents a functional option for configuring the Encoder.
// This is a type alias for the generic Option interface specialized for Encoder.
type EncoderOption = options.Option[*Encoder]

// WithPacking selects the data representation template for the packed
// payload. Simple (5.0), PNG (5.41) and IEEE (5.4) templates can be
// written; anything else reports errs.ErrUnsupportedPacking.
func WithPacking(template format.Packing) EncoderOption {
	return options.New(func(e *Encoder) error {
		switch template {
		case format.PackingSimple, format.PackingPNG, format.PackingIEEE:
			e.template = template

			return nil
		default:
			return fmt.Errorf("%w: cannot encode data representation template %d",
				errs.ErrUnsupportedPacking, uint16(template))
		}
	})
}

// WithDecimalScale applies a power of ten to the values before the range
// is measured, shifting which decimal digits survive packing. Positive
// factors keep more precision at the cost of wider packed integers.
func WithDecimalScale(factor int16) EncoderOption {
	return options.NoError(func(e *Encoder) {
		e.quant.DecimalScale = factor
	})
}

// WithBitWidth fixes the packed integer width instead of deriving it
// from the value range. Widths above 32 report errs.ErrPrecisionOverflow.
func WithBitWidth(bits uint8) EncoderOption {
	return options.New(func(e *Encoder) error {
		if bits > 32 {
			return fmt.Errorf("%w: %d-bit packing exceeds 32 bits", errs.ErrPrecisionOverflow, bits)
		}
		e.quant.Bits = bits

		return nil
	})
}

// WithBitmap controls whether NaN points are extracted into a bitmap
// section before packing. Enabled by default; with the bitmap disabled a
// field containing NaN is rejected as not encodable.
func WithBitmap(enabled bool) EncoderOption {
	return options.NoError(func(e *Encoder) {
		e.bitmap = enabled
	})
}

// NewEncoder creates an Encoder with the given options applied in order.
func NewEncoder(opts ...EncoderOption) (*Encoder, error) {
	enc := &Encoder{
		template: format.PackingSimple,
		bitmap:   true,
	}

	if err := options.Apply(enc, opts...); err != nil {
		return nil, err
	}

	return enc, nil
}

// Encode serializes the field as one complete edition 2 message.
//
// The grid's Field must already be in canonical orientation matching
// Coords; the message codes the canonical scanning mode directly. Only
// regular grids map onto a grid definition template, so reduced grids
// report errs.ErrNotEncodable.
//
// On success the returned slice is freshly allocated and framed as a
// whole message; on error nothing is emitted.
func (e *Encoder) Encode(g *PhysicalGrid) ([]byte, error) {
	if g == nil || g.Field == nil || g.Coords == nil {
		return nil, fmt.Errorf("%w: nothing to encode", errs.ErrEmptyGrid)
	}

	values := g.Values()
	numPoints := g.Coords.NumPoints()
	if len(values) != numPoints {
		return nil, fmt.Errorf("%w: %d values for %d grid points",
			errs.ErrGridSizeMismatch, len(values), numPoints)
	}

	gd, err := grids.ToGridDefinition(g.Coords)
	if err != nil {
		return nil, err
	}

	packed := values
	var mask []byte
	if e.bitmap {
		packed, mask = packing.Extract(values)
		if len(packed) == 0 {
			return nil, fmt.Errorf("%w: every grid point is masked", errs.ErrNotEncodable)
		}
	}

	packer, err := packing.NewPacker(e.template, e.quant)
	if err != nil {
		return nil, err
	}

	dr, ds, err := packer.Pack(packed)
	if err != nil {
		return nil, err
	}

	pd, err := productSection(g)
	if err != nil {
		return nil, err
	}

	id := &section.Identification{
		ReferenceTime:       g.RefTime.UTC(),
		Centre:              g.Centre,
		SubCentre:           g.SubCentre,
		MasterTablesVersion: masterTablesVersion,
		TimeSignificance:    1, // start of forecast
		DataType:            1, // forecast products
	}

	bm := &section.Bitmap{Indicator: section.BitmapAbsent}
	if mask != nil {
		bm.Indicator = section.BitmapPresent
		bm.Data = mask
	}

	return assemble(format.Discipline(g.Param.Discipline), id, gd, pd, dr, bm, ds)
}

// assemble frames the sections into one message, patches the total
// length into the indicator, and verifies the result frames back.
func assemble(discipline format.Discipline, id *section.Identification,
	gd *section.GridDefinition, pd *section.ProductDefinition,
	dr *section.DataRepresentation, bm *section.Bitmap, ds *section.Data,
) ([]byte, error) {
	buf := pool.GetMessageBuffer()
	defer pool.PutMessageBuffer(buf)

	ind := section.Indicator{Edition: format.Edition2, Discipline: discipline}
	buf.MustWrite(ind.Bytes())
	buf.MustWrite(id.Bytes())
	buf.MustWrite(gd.Bytes())
	buf.MustWrite(pd.Bytes())
	buf.MustWrite(dr.Bytes())
	buf.MustWrite(bm.Bytes())
	buf.MustWrite(ds.Bytes())
	buf.MustWrite([]byte(section.EndMagic))

	binary.BigEndian.PutUint64(buf.B[8:16], uint64(buf.Len())) //nolint:gosec

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())

	if _, err := Frame(out); err != nil {
		return nil, fmt.Errorf("assembled message does not frame: %w", err)
	}

	return out, nil
}

// productSection builds section 4 from the field metadata, choosing
// template 4.0 for instantaneous fields and 4.8 for statistical ones.
func productSection(g *PhysicalGrid) (*section.ProductDefinition, error) {
	first, second := encodeSurfaces(g.Level)

	f := &section.ProductFields{
		ParameterCategory: g.Param.Category,
		ParameterNumber:   g.Param.Number,
		GeneratingProcess: 0xFF,
		BackgroundProcess: 0xFF,
		ProcessID:         0xFF,
		CutoffHours:       0xFFFF,
		CutoffMinutes:     0xFF,
		FirstSurface:      first,
		SecondSurface:     second,
	}

	valid := g.ValidTime
	if valid.IsZero() {
		valid = g.RefTime
	}

	if g.Interval <= 0 && g.StatProcess == 0xFF {
		unit, step, err := timeUnitFor(valid.Sub(g.RefTime))
		if err != nil {
			return nil, err
		}
		f.TimeUnit = unit
		f.ForecastTime = int32(valid.Sub(g.RefTime) / step) //nolint:gosec
	} else {
		// The forecast time of template 4.8 addresses the start of the
		// interval; the end is carried in the interval block.
		start := valid.Add(-g.Interval)

		unit, step, err := timeUnitFor(start.Sub(g.RefTime), g.Interval)
		if err != nil {
			return nil, err
		}
		f.TimeUnit = unit
		f.ForecastTime = int32(start.Sub(g.RefTime) / step) //nolint:gosec
		f.Interval = &section.TimeInterval{
			End:               valid.UTC(),
			RangeLength:       uint32(g.Interval / step), //nolint:gosec
			StatProcess:       g.StatProcess,
			IncrementType:     2, // forecast time incremented
			RangeTimeUnit:     unit,
			IncrementTimeUnit: unit,
		}
	}

	pd := &section.ProductDefinition{}
	pd.SetFields(f)

	return pd, nil
}

// timeUnitFor picks the coarsest fixed time unit that measures every
// span exactly. Sub-second spans have no code table 4.4 unit.
func timeUnitFor(spans ...time.Duration) (uint8, time.Duration, error) {
	for _, u := range []struct {
		code uint8
		step time.Duration
	}{
		{tables.UnitHour, time.Hour},
		{tables.UnitMinute, time.Minute},
		{tables.UnitSecond, time.Second},
	} {
		if divisible(u.step, spans) {
			return u.code, u.step, nil
		}
	}

	return 0, 0, fmt.Errorf("%w: time offsets carry sub-second precision", errs.ErrNotEncodable)
}

func divisible(step time.Duration, spans []time.Duration) bool {
	for _, s := range spans {
		if s%step != 0 {
			return false
		}
	}

	return true
}

// encodeSurfaces maps the resolved level back onto the template's two
// fixed surface slots.
func encodeSurfaces(l Level) (first, second section.Surface) {
	second = section.Surface{Type: 0xFF}
	if l.Missing() {
		return section.Surface{Type: 0xFF}, second
	}

	first = scaledSurface(l.Code, l.Value)
	if l.Layer {
		second = scaledSurface(l.Code, l.Second)
	}

	return first, second
}

// scaledSurface codes a surface value with the smallest decimal scale
// factor that represents it exactly in an int32.
func scaledSurface(code uint8, value float64) section.Surface {
	if tables.LookupSurface(code).NoValue {
		return section.Surface{Type: code}
	}

	scale := int8(0)
	scaled := value
	for scale < 6 {
		if math.Abs(scaled-math.Round(scaled)) <= 1e-6 {
			break
		}
		if math.Abs(scaled*10) > math.MaxInt32 {
			break
		}
		scale++
		scaled *= 10
	}

	return section.Surface{
		Type:        code,
		ScaleFactor: scale,
		ScaledValue: int32(math.Round(scaled)),
	}
}
