package packing

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/bits"

	"gonum.org/v1/gonum/floats"

	"github.com/cubewire/grib/errs"
	"github.com/cubewire/grib/internal/bitio"
)

// maxBits is the widest packed integer the scale formula supports.
const maxBits = 32

// Quantization controls how a float64 field reduces to packed integers.
// DecimalScale is applied before the range is measured; Bits requests a
// fixed width, with zero deriving the width from the scaled range at
// binary scale zero.
type Quantization struct {
	DecimalScale int16
	Bits         uint8
}

func (q Quantization) validate() error {
	if q.Bits > maxBits {
		return fmt.Errorf("%w: %d-bit packing exceeds %d bits", errs.ErrPrecisionOverflow, q.Bits, maxBits)
	}

	return nil
}

// quantized is the integer reduction of a field: X values plus the scale
// parameters that reverse them.
type quantized struct {
	ints []uint32

	ref    float64
	escale int16
	dscale int16
	width  uint8
}

// quantize reduces values to offsets from their minimum. The reference
// is snapped to float32 before offsets are measured so decoding with the
// coded reference reproduces the same quanta. Rounding is half to even.
func quantize(values []float64, q Quantization) (*quantized, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: no values to pack", errs.ErrEmptyGrid)
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: non-finite value at point %d (extract a bitmap first)",
				errs.ErrNotEncodable, i)
		}
	}

	tenD := math.Pow(10, float64(q.DecimalScale))
	lo := floats.Min(values) * tenD
	hi := floats.Max(values) * tenD

	// Coded reference values are IEEE float32.
	ref := float64(float32(lo))

	span := hi - ref

	width := int(q.Bits)
	escale := 0

	switch {
	case span <= 0 || (width == 0 && math.Round(span) == 0):
		// Constant field: the reference carries the value.
		return &quantized{
			ref:    ref,
			dscale: q.DecimalScale,
		}, nil
	case width == 0:
		width = bits.Len64(uint64(math.Round(span)))
		if width > maxBits {
			return nil, fmt.Errorf("%w: range %g needs %d bits at decimal scale %d",
				errs.ErrPrecisionOverflow, span, width, q.DecimalScale)
		}
	default:
		// Fixed width: pick the binary scale that spreads the range
		// across the available quanta.
		escale = int(math.Ceil(math.Log2(span / float64(uint64(1)<<width-1))))
	}

	twoE := math.Pow(2, float64(escale))
	limit := uint64(1)<<width - 1

	ints := make([]uint32, len(values))
	for i, v := range values {
		x := math.RoundToEven((v*tenD - ref) / twoE)
		switch {
		case x < 0:
			ints[i] = 0
		case uint64(x) > limit:
			ints[i] = uint32(limit) //nolint:gosec
		default:
			ints[i] = uint32(x)
		}
	}

	return &quantized{
		ints:   ints,
		ref:    ref,
		escale: int16(escale), //nolint:gosec
		dscale: q.DecimalScale,
		width:  uint8(width), //nolint:gosec
	}, nil
}

// fieldTemplate emits the scale block shared by the simple and PNG
// templates: reference, binary and decimal scale, bit width, field type.
func (qz *quantized) fieldTemplate() []byte {
	t := make([]byte, 0, 10)
	t = binary.BigEndian.AppendUint32(t, math.Float32bits(float32(qz.ref)))
	t = binary.BigEndian.AppendUint16(t, bitio.PutInt16SM(qz.escale))
	t = binary.BigEndian.AppendUint16(t, bitio.PutInt16SM(qz.dscale))
	t = append(t, qz.width, 0)

	return t
}

// parseFieldTemplate reads the same block back.
func parseFieldTemplate(t []byte, name string) (s scaler, width uint8, err error) {
	if len(t) < 10 {
		return scaler{}, 0, fmt.Errorf("%w: %s template carries %d octets, need 10",
			errs.ErrMalformedSection, name, len(t))
	}

	ref := float64(math.Float32frombits(binary.BigEndian.Uint32(t[0:4])))
	e := bitio.Int16SM(binary.BigEndian.Uint16(t[4:6]))
	d := bitio.Int16SM(binary.BigEndian.Uint16(t[6:8]))
	width = t[8]

	if width > maxBits {
		return scaler{}, 0, fmt.Errorf("%w: %d bits per value", errs.ErrUnsupportedPacking, width)
	}

	return newScaler(ref, e, d), width, nil
}
