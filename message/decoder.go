package message

import (
	"fmt"
	"slices"
	"time"

	"github.com/ctessum/sparse"

	"github.com/cubewire/grib/errs"
	"github.com/cubewire/grib/format"
	"github.com/cubewire/grib/grids"
	"github.com/cubewire/grib/internal/bitio"
	"github.com/cubewire/grib/packing"
	"github.com/cubewire/grib/section"
	"github.com/cubewire/grib/tables"
)

// Decoder turns one framed message into physical grids: parse the
// sections, validate their order and cross-references, unpack the data
// payload, translate the codes, and assemble the result.
//
// A Decoder is bound to a single message and is not reused.
type Decoder struct {
	raw *Raw
}

// NewDecoder frames the message at the head of data and returns a
// decoder bound to it. Framing errors surface here; section-level
// problems surface from Decode.
func NewDecoder(data []byte) (*Decoder, error) {
	raw, err := Frame(data)
	if err != nil {
		return nil, err
	}

	return &Decoder{raw: raw}, nil
}

// Raw returns the framed message the decoder is bound to.
func (d *Decoder) Raw() *Raw {
	return d.raw
}

// Edition returns the message edition.
func (d *Decoder) Edition() format.Edition {
	return d.raw.Edition
}

// Decode walks the message sections and assembles one PhysicalGrid per
// field. Edition 2 messages may repeat sections 2-7 and yield several
// grids; edition 1 messages yield exactly one.
func (d *Decoder) Decode() ([]*PhysicalGrid, error) {
	switch d.raw.Edition {
	case format.Edition2:
		return decode2(d.raw)
	case format.Edition1:
		return decode1(d.raw)
	default:
		return nil, fmt.Errorf("%w: edition %d", errs.ErrUnsupportedEdition, d.raw.Edition)
	}
}

// Decode assembles the physical grids of an already framed message.
func (r *Raw) Decode() ([]*PhysicalGrid, error) {
	return (&Decoder{raw: r}).Decode()
}

// Decode frames one message from the head of data and assembles its
// physical grids.
func Decode(data []byte) ([]*PhysicalGrid, error) {
	d, err := NewDecoder(data)
	if err != nil {
		return nil, err
	}

	return d.Decode()
}

// field2 carries the sections of one field group within an edition 2
// message. Grid and product sections may be inherited from the previous
// group when the repetition re-enters past them.
type field2 struct {
	grid    *section.GridDefinition
	product *section.ProductDefinition
	repr    *section.DataRepresentation
	data    *section.Data
	mask    []byte
}

func decode2(raw *Raw) ([]*PhysicalGrid, error) {
	id, fields, err := walk2(raw)
	if err != nil {
		return nil, err
	}

	out := make([]*PhysicalGrid, 0, len(fields))
	for i := range fields {
		g, err := assemble2(raw, id, &fields[i])
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
		out = append(out, g)
	}

	return out, nil
}

// walk2 runs the edition 2 section state machine: sections appear in
// ascending number order, and after each data section the sequence may
// re-enter at section 2, 3, or 4 for the next field. The machine alone
// guarantees that every data section closes a complete group, since
// section 7 is only reachable through 4, 5, and 6.
func walk2(raw *Raw) (*section.Identification, []field2, error) {
	rest := raw.Data[section.IndicatorLen2:]

	var (
		id       section.Identification
		fields   []field2
		cur      field2
		prevMask []byte
	)

	last := uint8(section.NumIndicator)

	for !section.IsEnd(rest) {
		if len(rest) <= section.EndLen {
			return nil, nil, fmt.Errorf("%w: sections overrun the end marker", errs.ErrMalformedMessage)
		}

		number, body, after, err := section.Split(rest)
		if err != nil {
			return nil, nil, err
		}
		if !order2OK(last, number) {
			return nil, nil, fmt.Errorf("%w: section %d cannot follow section %d",
				errs.ErrMalformedMessage, number, last)
		}

		switch number {
		case section.NumIdentification:
			if err := id.Parse(body); err != nil {
				return nil, nil, err
			}

		case section.NumLocalUse:
			var lu section.LocalUse
			if err := lu.Parse(body); err != nil {
				return nil, nil, err
			}

		case section.NumGridDefinition:
			gd := new(section.GridDefinition)
			if err := gd.Parse(body); err != nil {
				return nil, nil, err
			}
			cur.grid = gd

		case section.NumProductDefinition:
			pd := new(section.ProductDefinition)
			if err := pd.Parse(body); err != nil {
				return nil, nil, err
			}
			cur.product = pd

		case section.NumDataRepresentation:
			dr := new(section.DataRepresentation)
			if err := dr.Parse(body); err != nil {
				return nil, nil, err
			}
			cur.repr = dr

		case section.NumBitmap:
			var bm section.Bitmap
			if err := bm.Parse(body); err != nil {
				return nil, nil, err
			}
			switch {
			case bm.Indicator == section.BitmapPresent:
				cur.mask = bm.Data
				prevMask = bm.Data
			case bm.Indicator == section.BitmapAbsent:
				cur.mask = nil
			case bm.Indicator == section.BitmapReusePrev:
				if prevMask == nil {
					return nil, nil, fmt.Errorf("%w: bitmap indicator 254 with no previously defined bitmap",
						errs.ErrMalformedMessage)
				}
				cur.mask = prevMask
			default:
				return nil, nil, fmt.Errorf("%w: predefined bitmap %d",
					errs.ErrUnsupportedPacking, bm.Indicator)
			}

		case section.NumData:
			da := new(section.Data)
			if err := da.Parse(body); err != nil {
				return nil, nil, err
			}
			cur.data = da
			fields = append(fields, cur)
			cur.data = nil

		default:
			return nil, nil, fmt.Errorf("%w: section %d in an edition 2 message",
				errs.ErrUnknownSection, number)
		}

		last = number
		rest = after
	}

	if len(rest) != section.EndLen {
		return nil, nil, fmt.Errorf("%w: %d octet(s) after the end marker",
			errs.ErrMalformedMessage, len(rest)-section.EndLen)
	}
	if len(fields) == 0 {
		return nil, nil, fmt.Errorf("%w: message carries no data sections", errs.ErrMalformedMessage)
	}

	return &id, fields, nil
}

// order2OK reports whether a section number may follow the previous one
// in an edition 2 message.
func order2OK(prev, number uint8) bool {
	switch prev {
	case section.NumIndicator:
		return number == section.NumIdentification
	case section.NumIdentification:
		return number == section.NumLocalUse || number == section.NumGridDefinition
	case section.NumLocalUse:
		return number == section.NumGridDefinition
	case section.NumGridDefinition:
		return number == section.NumProductDefinition
	case section.NumProductDefinition:
		return number == section.NumDataRepresentation
	case section.NumDataRepresentation:
		return number == section.NumBitmap
	case section.NumBitmap:
		return number == section.NumData
	case section.NumData:
		return number == section.NumLocalUse ||
			number == section.NumGridDefinition ||
			number == section.NumProductDefinition
	default:
		return false
	}
}

func assemble2(raw *Raw, id *section.Identification, f *field2) (*PhysicalGrid, error) {
	coords, err := grids.FromGridDefinition(f.grid)
	if err != nil {
		return nil, err
	}

	pf, err := f.product.Fields()
	if err != nil {
		return nil, err
	}

	unpacker, err := packing.NewUnpacker(f.repr)
	if err != nil {
		return nil, err
	}
	values, err := unpacker.Unpack(f.data.Payload, int(f.repr.NumPacked)) //nolint:gosec
	if err != nil {
		return nil, err
	}

	numPoints := coords.NumPoints()
	if f.mask != nil {
		if values, err = packing.Expand(values, f.mask, numPoints); err != nil {
			return nil, err
		}
	} else if len(values) != numPoints {
		return nil, fmt.Errorf("%w: %d packed values for %d grid points",
			errs.ErrGridSizeMismatch, len(values), numPoints)
	}

	if values, err = coords.Normalize(values); err != nil {
		return nil, err
	}

	valid, span, stat, err := timing2(id.ReferenceTime, pf)
	if err != nil {
		return nil, err
	}

	return &PhysicalGrid{
		Field:       denseField(coords, values),
		Coords:      coords,
		Param:       tables.LookupParameter(uint8(raw.Discipline), pf.ParameterCategory, pf.ParameterNumber),
		Level:       levelFrom2(pf.FirstSurface, pf.SecondSurface),
		RefTime:     id.ReferenceTime,
		ValidTime:   valid,
		Interval:    span,
		StatProcess: stat,
		Centre:      id.Centre,
		SubCentre:   id.SubCentre,
		Edition:     format.Edition2,
		Packing:     f.repr.TemplateNumber,
		Offset:      raw.Offset,
	}, nil
}

// timing2 resolves the template's forecast clock: the valid instant, the
// statistical span ending there, and the process code (0xFF when the
// field is instantaneous).
func timing2(refTime time.Time, pf *section.ProductFields) (time.Time, time.Duration, uint8, error) {
	if iv := pf.Interval; iv != nil {
		rangeUnit, err := tables.TimeUnitDuration(iv.RangeTimeUnit)
		if err != nil {
			return time.Time{}, 0, 0, err
		}

		return iv.End, time.Duration(iv.RangeLength) * rangeUnit, iv.StatProcess, nil
	}

	unit, err := tables.TimeUnitDuration(pf.TimeUnit)
	if err != nil {
		return time.Time{}, 0, 0, err
	}

	return refTime.Add(time.Duration(pf.ForecastTime) * unit), 0, 0xFF, nil
}

func levelFrom2(first, second section.Surface) Level {
	lt := tables.LookupSurface(first.Type)
	lv := Level{Code: first.Type, Name: lt.Name, Unit: lt.Unit}
	if !first.Missing() && !lt.NoValue {
		lv.Value = first.Value()
	}
	if !second.Missing() {
		lv.Layer = true
		lv.Second = second.Value()
	}

	return lv
}

func levelFrom1(pds *section.ProductDefinition1) Level {
	code, lt, value, second, isLayer := tables.TranslateLevel1(pds.LevelType, pds.LevelOctets)

	return Level{
		Code:   code,
		Name:   lt.Name,
		Unit:   lt.Unit,
		Value:  value,
		Second: second,
		Layer:  isLayer,
	}
}

// denseField shapes the canonical value stream: [nj, ni] for regular
// grids, flat for reduced ones.
func denseField(c *grids.Coordinates, values []float64) *sparse.DenseArray {
	var arr *sparse.DenseArray
	if c.Regular() {
		arr = sparse.ZerosDense(c.Nj, c.Ni)
	} else {
		arr = sparse.ZerosDense(len(values))
	}
	copy(arr.Elements, values)

	return arr
}

// field1 carries the sections of an edition 1 message. The PDS flags
// gate the optional grid description and bitmap sections.
type field1 struct {
	pds *section.ProductDefinition1
	gds *section.GridDescription1
	bms *section.BitmapSection1
	bds *section.BinaryData1
}

func decode1(raw *Raw) ([]*PhysicalGrid, error) {
	f, err := walk1(raw)
	if err != nil {
		return nil, err
	}

	pds := f.pds
	if f.gds == nil {
		return nil, fmt.Errorf("%w: predefined grid %d without a grid description",
			errs.ErrUnsupportedGrid, pds.GridID)
	}

	coords, err := grids.FromGridDescription(f.gds)
	if err != nil {
		return nil, err
	}

	numPoints := coords.NumPoints()
	packed := numPoints
	var mask []byte
	if f.bms != nil {
		if f.bms.TableRef != 0 {
			return nil, fmt.Errorf("%w: predefined bitmap %d", errs.ErrUnsupportedPacking, f.bms.TableRef)
		}
		mask = f.bms.Data
		packed = f.bms.CountSet(numPoints)
	}

	values, err := packing.Unpack1(f.bds, pds.DecimalScale, packed, rowLengths1(coords, mask != nil))
	if err != nil {
		return nil, err
	}
	if mask != nil {
		if values, err = packing.Expand(values, mask, numPoints); err != nil {
			return nil, err
		}
	}
	if values, err = coords.Normalize(values); err != nil {
		return nil, err
	}

	tr, err := tables.TranslateTimeRange1(pds.TimeRangeIndicator, pds.P1, pds.P2, pds.TimeUnit)
	if err != nil {
		return nil, err
	}

	pk := format.PackingSimple
	if f.bds.Complex() {
		pk = format.PackingComplex
	}

	g := &PhysicalGrid{
		Field:       denseField(coords, values),
		Coords:      coords,
		Param:       tables.LookupParameter1(pds.TableVersion, pds.Parameter),
		Level:       levelFrom1(pds),
		RefTime:     pds.ReferenceTime,
		ValidTime:   pds.ReferenceTime.Add(tr.Offset),
		Interval:    tr.Length,
		StatProcess: tr.StatProcess,
		Centre:      uint16(pds.Centre),
		SubCentre:   uint16(pds.SubCentre),
		Edition:     format.Edition1,
		Packing:     pk,
		Offset:      raw.Offset,
	}

	return []*PhysicalGrid{g}, nil
}

// walk1 peels the fixed edition 1 section sequence: PDS, optional GDS,
// optional BMS, BDS.
func walk1(raw *Raw) (*field1, error) {
	rest := raw.Data[section.IndicatorLen1 : len(raw.Data)-section.EndLen]

	var f field1

	f.pds = new(section.ProductDefinition1)
	body, rest, err := split1(rest, "product definition")
	if err != nil {
		return nil, err
	}
	if err := f.pds.Parse(body); err != nil {
		return nil, err
	}

	if f.pds.HasGDS() {
		f.gds = new(section.GridDescription1)
		if body, rest, err = split1(rest, "grid description"); err != nil {
			return nil, err
		}
		if err := f.gds.Parse(body); err != nil {
			return nil, err
		}
	}

	if f.pds.HasBMS() {
		f.bms = new(section.BitmapSection1)
		if body, rest, err = split1(rest, "bitmap"); err != nil {
			return nil, err
		}
		if err := f.bms.Parse(body); err != nil {
			return nil, err
		}
	}

	f.bds = new(section.BinaryData1)
	if body, rest, err = split1(rest, "binary data"); err != nil {
		return nil, err
	}
	if err := f.bds.Parse(body); err != nil {
		return nil, err
	}

	if len(rest) != 0 {
		return nil, fmt.Errorf("%w: %d octet(s) between binary data and end marker",
			errs.ErrMalformedMessage, len(rest))
	}

	return &f, nil
}

// split1 peels one edition 1 section off data using its 3-octet length.
func split1(data []byte, name string) (body, rest []byte, err error) {
	if len(data) < 3 {
		return nil, nil, fmt.Errorf("%w: %s section header needs 3 octets, %d left",
			errs.ErrTruncatedStream, name, len(data))
	}

	length := int(bitio.Uint24(data[0:3]))
	if length < 3 || length > len(data) {
		return nil, nil, fmt.Errorf("%w: %s section declares %d octets, %d available",
			errs.ErrMalformedSection, name, length, len(data))
	}

	return data[:length], data[length:], nil
}

// rowLengths1 lists the coded points per row in scan order, which
// second-order packing needs to locate group boundaries. Masked fields
// return nil: their grouping comes from the secondary bitmap instead.
func rowLengths1(c *grids.Coordinates, masked bool) []int {
	if masked {
		return nil
	}

	if c.Regular() {
		rows := make([]int, c.Nj)
		for j := range rows {
			rows[j] = c.Ni
		}

		return rows
	}

	rows := make([]int, len(c.RowCounts))
	for j, n := range c.RowCounts {
		rows[j] = int(n)
	}
	if !c.Scan.JPositive() {
		slices.Reverse(rows)
	}

	return rows
}
