package section

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/cubewire/grib/errs"
	"github.com/cubewire/grib/internal/bitio"
)

// productDefinitionLen is the fixed part of section 4 (octets 1-9).
const productDefinitionLen = 9

// Product definition template numbers (code table 4.0).
const (
	ProductInstant  = 0 // analysis or forecast at a point in time
	ProductInterval = 8 // average/accumulation over a time interval
)

// product0Len covers template 4.0 (octets 10-34); product8Len covers
// template 4.8 with a single time range (octets 10-58).
const (
	product0Len = 25
	product8Len = 49
)

// Surface is one fixed surface reference: type code plus a scaled value
// (value = ScaledValue / 10^ScaleFactor, in the units of the type).
type Surface struct {
	Type        uint8
	ScaleFactor int8
	ScaledValue int32
}

// Missing reports whether the surface slot is unused (type code 255).
func (s Surface) Missing() bool {
	return s.Type == 0xFF
}

// Value resolves the scaled value to the surface's natural unit.
func (s Surface) Value() float64 {
	v := float64(s.ScaledValue)
	for i := int8(0); i < s.ScaleFactor; i++ {
		v /= 10
	}
	for i := s.ScaleFactor; i < 0; i++ {
		v *= 10
	}

	return v
}

// TimeInterval describes the statistical processing block of template 4.8.
type TimeInterval struct {
	End time.Time // end of the overall interval, UTC

	RangeLength uint32 // length of the range in RangeTimeUnit units
	Increment   uint32

	StatProcess       uint8 // code table 4.10 (0 average, 1 accumulation, ...)
	IncrementType     uint8
	RangeTimeUnit     uint8
	IncrementTimeUnit uint8

	MissingInInterval uint32
}

// ProductFields is the decoded view shared by templates 4.0 and 4.8: the
// parameter identity, the forecast offset, and the fixed surfaces.
// Interval is non-nil for template 4.8.
type ProductFields struct {
	Interval *TimeInterval

	ForecastTime int32

	ParameterCategory uint8
	ParameterNumber   uint8
	GeneratingProcess uint8
	BackgroundProcess uint8
	ProcessID         uint8
	CutoffHours       uint16
	CutoffMinutes     uint8
	TimeUnit          uint8 // code table 4.4

	FirstSurface  Surface
	SecondSurface Surface
}

// ProductDefinition is edition 2 section 4. Template octets are kept raw so
// unrecognized templates survive round trips; Fields decodes the supported
// templates on demand.
type ProductDefinition struct {
	Template    []byte
	CoordValues []byte // trailing vertical coordinate values, NumCoord x 4 octets

	NumCoord       uint16
	TemplateNumber uint16
}

// Parse reads section 4 from its complete octets.
func (pd *ProductDefinition) Parse(data []byte) error {
	if len(data) < productDefinitionLen {
		return fmt.Errorf("%w: product definition section of %d octets, need %d",
			errs.ErrMalformedSection, len(data), productDefinitionLen)
	}
	if data[4] != NumProductDefinition {
		return fmt.Errorf("%w: expected section 4, got %d", errs.ErrMalformedSection, data[4])
	}

	pd.NumCoord = binary.BigEndian.Uint16(data[5:7])
	pd.TemplateNumber = binary.BigEndian.Uint16(data[7:9])

	body := data[productDefinitionLen:]

	coordLen := int(pd.NumCoord) * 4
	if coordLen > len(body) {
		return fmt.Errorf("%w: %d coordinate values need %d octets, section carries %d",
			errs.ErrMalformedSection, pd.NumCoord, coordLen, len(body))
	}

	split := len(body) - coordLen
	pd.Template = body[:split]
	pd.CoordValues = body[split:]

	return nil
}

// Fields decodes the template into the shared product view. Templates other
// than 4.0 and 4.8 report errs.ErrUnknownTemplate.
func (pd *ProductDefinition) Fields() (*ProductFields, error) {
	switch pd.TemplateNumber {
	case ProductInstant:
		return pd.parseFields(product0Len, false)
	case ProductInterval:
		return pd.parseFields(product8Len, true)
	default:
		return nil, fmt.Errorf("%w: product definition template %d",
			errs.ErrUnknownTemplate, pd.TemplateNumber)
	}
}

func (pd *ProductDefinition) parseFields(minLen int, interval bool) (*ProductFields, error) {
	t := pd.Template
	if len(t) < minLen {
		return nil, fmt.Errorf("%w: product template %d carries %d octets, need %d",
			errs.ErrMalformedSection, pd.TemplateNumber, len(t), minLen)
	}

	f := &ProductFields{
		ParameterCategory: t[0],
		ParameterNumber:   t[1],
		GeneratingProcess: t[2],
		BackgroundProcess: t[3],
		ProcessID:         t[4],
		CutoffHours:       binary.BigEndian.Uint16(t[5:7]),
		CutoffMinutes:     t[7],
		TimeUnit:          t[8],
		ForecastTime:      bitio.Int32SM(binary.BigEndian.Uint32(t[9:13])),
		FirstSurface:      parseSurface(t[13:19]),
		SecondSurface:     parseSurface(t[19:25]),
	}

	if !interval {
		return f, nil
	}

	year := int(binary.BigEndian.Uint16(t[25:27]))
	f.Interval = &TimeInterval{
		End: time.Date(year, time.Month(t[27]), int(t[28]),
			int(t[29]), int(t[30]), int(t[31]), 0, time.UTC),
		MissingInInterval: binary.BigEndian.Uint32(t[33:37]),
		StatProcess:       t[37],
		IncrementType:     t[38],
		RangeTimeUnit:     t[39],
		RangeLength:       binary.BigEndian.Uint32(t[40:44]),
		IncrementTimeUnit: t[44],
		Increment:         binary.BigEndian.Uint32(t[45:49]),
	}

	return f, nil
}

func parseSurface(b []byte) Surface {
	return Surface{
		Type:        b[0],
		ScaleFactor: bitio.Int8SM(b[1]),
		ScaledValue: bitio.Int32SM(binary.BigEndian.Uint32(b[2:6])),
	}
}

func appendSurface(b []byte, s Surface) []byte {
	b = append(b, s.Type, bitio.PutInt8SM(s.ScaleFactor))

	return binary.BigEndian.AppendUint32(b, bitio.PutInt32SM(s.ScaledValue))
}

// SetFields encodes f into the template octets, choosing template 4.0 or
// 4.8 by whether an interval is present.
func (pd *ProductDefinition) SetFields(f *ProductFields) {
	size := product0Len
	pd.TemplateNumber = ProductInstant
	if f.Interval != nil {
		size = product8Len
		pd.TemplateNumber = ProductInterval
	}

	b := make([]byte, 0, size)
	b = append(b, f.ParameterCategory, f.ParameterNumber, f.GeneratingProcess,
		f.BackgroundProcess, f.ProcessID)
	b = binary.BigEndian.AppendUint16(b, f.CutoffHours)
	b = append(b, f.CutoffMinutes, f.TimeUnit)
	b = binary.BigEndian.AppendUint32(b, bitio.PutInt32SM(f.ForecastTime))
	b = appendSurface(b, f.FirstSurface)
	b = appendSurface(b, f.SecondSurface)

	if iv := f.Interval; iv != nil {
		end := iv.End.UTC()
		b = binary.BigEndian.AppendUint16(b, uint16(end.Year())) //nolint:gosec
		b = append(b, byte(end.Month()), byte(end.Day()), byte(end.Hour()),
			byte(end.Minute()), byte(end.Second()))
		b = append(b, 1) // one time range specification
		b = binary.BigEndian.AppendUint32(b, iv.MissingInInterval)
		b = append(b, iv.StatProcess, iv.IncrementType, iv.RangeTimeUnit)
		b = binary.BigEndian.AppendUint32(b, iv.RangeLength)
		b = append(b, iv.IncrementTimeUnit)
		b = binary.BigEndian.AppendUint32(b, iv.Increment)
	}

	pd.Template = b
	pd.CoordValues = nil
	pd.NumCoord = 0
}

// Bytes serializes section 4 with the length recomputed.
func (pd *ProductDefinition) Bytes() []byte {
	b := header(make([]byte, 0, productDefinitionLen+len(pd.Template)+len(pd.CoordValues)),
		NumProductDefinition)

	b = binary.BigEndian.AppendUint16(b, pd.NumCoord)
	b = binary.BigEndian.AppendUint16(b, pd.TemplateNumber)
	b = append(b, pd.Template...)
	b = append(b, pd.CoordValues...)

	return finishHeader(b)
}
