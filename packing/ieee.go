package packing

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cubewire/grib/errs"
	"github.com/cubewire/grib/format"
	"github.com/cubewire/grib/section"
)

// ieeeUnpacker decodes template 5.4: raw big-endian IEEE floats with no
// scaling.
type ieeeUnpacker struct {
	bytesPerValue int
}

func newIEEEUnpacker(t []byte) (Unpacker, error) {
	if len(t) < 1 {
		return nil, fmt.Errorf("%w: empty IEEE packing template", errs.ErrMalformedSection)
	}

	switch t[0] {
	case 1:
		return &ieeeUnpacker{bytesPerValue: 4}, nil
	case 2:
		return &ieeeUnpacker{bytesPerValue: 8}, nil
	default:
		return nil, fmt.Errorf("%w: IEEE precision %d", errs.ErrUnsupportedPacking, t[0])
	}
}

func (u *ieeeUnpacker) Unpack(payload []byte, numPoints int) ([]float64, error) {
	if len(payload) < numPoints*u.bytesPerValue {
		return nil, fmt.Errorf("%w: %d octets carry %d IEEE values, field has %d points",
			errs.ErrMalformedSection, len(payload), len(payload)/u.bytesPerValue, numPoints)
	}

	out := make([]float64, numPoints)
	for i := range out {
		off := i * u.bytesPerValue
		if u.bytesPerValue == 4 {
			out[i] = float64(math.Float32frombits(binary.BigEndian.Uint32(payload[off:])))
		} else {
			out[i] = math.Float64frombits(binary.BigEndian.Uint64(payload[off:]))
		}
	}

	return out, nil
}

// ieeePacker emits template 5.4 at single precision. It ignores the
// quantization parameters since IEEE packing stores values verbatim.
type ieeePacker struct{}

func (ieeePacker) Pack(values []float64) (*section.DataRepresentation, *section.Data, error) {
	if len(values) == 0 {
		return nil, nil, errs.ErrEmptyGrid
	}

	payload := make([]byte, 0, len(values)*4)
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, nil, fmt.Errorf("%w: non-finite value, extract a bitmap first", errs.ErrNotEncodable)
		}
		payload = binary.BigEndian.AppendUint32(payload, math.Float32bits(float32(v)))
	}

	dr := &section.DataRepresentation{
		TemplateNumber: format.PackingIEEE,
		NumPacked:      uint32(len(values)), //nolint:gosec
		Template:       []byte{1},
	}

	return dr, &section.Data{Payload: payload}, nil
}
