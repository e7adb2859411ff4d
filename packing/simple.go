package packing

import (
	"fmt"

	"github.com/cubewire/grib/errs"
	"github.com/cubewire/grib/format"
	"github.com/cubewire/grib/internal/bitio"
	"github.com/cubewire/grib/section"
)

// simpleUnpacker decodes template 5.0: fixed-width offsets from the
// reference value, bit-packed back to back.
type simpleUnpacker struct {
	s     scaler
	width uint8
}

func newSimpleUnpacker(t []byte) (Unpacker, error) {
	s, width, err := parseFieldTemplate(t, "simple packing")
	if err != nil {
		return nil, err
	}

	return &simpleUnpacker{s: s, width: width}, nil
}

func (u *simpleUnpacker) Unpack(payload []byte, numPoints int) ([]float64, error) {
	out := make([]float64, numPoints)

	// A zero width codes a constant field: every point is the reference.
	if u.width == 0 {
		constant := u.s.value(0)
		for i := range out {
			out[i] = constant
		}

		return out, nil
	}

	r := bitio.NewReader(payload)
	if r.Remaining() < numPoints*int(u.width) {
		return nil, fmt.Errorf("%w: %d octets of simple packed data for %d %d-bit values",
			errs.ErrMalformedSection, len(payload), numPoints, u.width)
	}

	for i := range out {
		x, err := r.Read(int(u.width))
		if err != nil {
			return nil, err
		}
		out[i] = u.s.value(float64(x))
	}

	return out, nil
}

// simplePacker encodes template 5.0.
type simplePacker struct {
	q Quantization
}

func (p *simplePacker) Pack(values []float64) (*section.DataRepresentation, *section.Data, error) {
	qz, err := quantize(values, p.q)
	if err != nil {
		return nil, nil, err
	}

	dr := &section.DataRepresentation{
		Template:       qz.fieldTemplate(),
		NumPacked:      uint32(len(values)), //nolint:gosec
		TemplateNumber: format.PackingSimple,
	}

	if qz.width == 0 {
		return dr, &section.Data{}, nil
	}

	w := bitio.NewWriter((len(qz.ints)*int(qz.width) + 7) / 8)
	for _, x := range qz.ints {
		w.WriteBits(uint64(x), int(qz.width))
	}

	return dr, &section.Data{Payload: w.Bytes()}, nil
}
