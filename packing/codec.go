package packing

import (
	"fmt"
	"math"

	"github.com/cubewire/grib/errs"
	"github.com/cubewire/grib/format"
	"github.com/cubewire/grib/section"
)

// Unpacker decodes a data section payload into field values. numPoints
// is the expected value count (after any bitmap); implementations verify
// the payload carries exactly that many.
type Unpacker interface {
	Unpack(payload []byte, numPoints int) ([]float64, error)
}

// Packer quantizes field values and builds matching data representation
// and data sections. Inputs must not contain NaN; the caller extracts
// missing points into a bitmap first.
type Packer interface {
	Pack(values []float64) (*section.DataRepresentation, *section.Data, error)
}

var builtinUnpackers = map[format.Packing]func([]byte) (Unpacker, error){
	format.PackingSimple:         newSimpleUnpacker,
	format.PackingComplex:        newComplexUnpacker,
	format.PackingComplexSpatial: newComplexSpatialUnpacker,
	format.PackingIEEE:           newIEEEUnpacker,
	format.PackingPNG:            newPNGUnpacker,
}

// NewUnpacker builds the codec declared by a data representation
// section. Recognized-but-uncarried templates (JPEG2000, CCSDS, spectral,
// run length) report errs.ErrUnsupportedPacking.
func NewUnpacker(dr *section.DataRepresentation) (Unpacker, error) {
	ctor, ok := builtinUnpackers[dr.TemplateNumber]
	if !ok {
		return nil, fmt.Errorf("%w: data representation template %d",
			errs.ErrUnsupportedPacking, uint16(dr.TemplateNumber))
	}

	return ctor(dr.Template)
}

// NewPacker builds the encoder for a packing template. Only simple, PNG
// and IEEE payloads can be written.
func NewPacker(template format.Packing, q Quantization) (Packer, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}

	switch template {
	case format.PackingSimple:
		return &simplePacker{q: q}, nil
	case format.PackingPNG:
		return &pngPacker{q: q}, nil
	case format.PackingIEEE:
		return &ieeePacker{}, nil
	default:
		return nil, fmt.Errorf("%w: cannot encode data representation template %d",
			errs.ErrUnsupportedPacking, uint16(template))
	}
}

// scaler folds the template's scale factors into decode multipliers.
type scaler struct {
	ref  float64
	twoE float64
	tenD float64
}

func newScaler(ref float64, e, d int16) scaler {
	return scaler{
		ref:  ref,
		twoE: math.Pow(2, float64(e)),
		tenD: math.Pow(10, float64(d)),
	}
}

func (s scaler) value(x float64) float64 {
	return (s.ref + x*s.twoE) / s.tenD
}
