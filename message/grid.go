package message

import (
	"fmt"
	"time"

	"github.com/ctessum/sparse"

	"github.com/cubewire/grib/format"
	"github.com/cubewire/grib/grids"
	"github.com/cubewire/grib/tables"
)

// Level is the resolved fixed surface of a field, translated across
// editions onto the edition 2 surface codes (code table 4.5). A Layer
// spans Value through Second in the surface's unit.
type Level struct {
	Name string
	Unit string

	Value  float64
	Second float64

	Code  uint8
	Layer bool
}

// Missing reports whether the field carries no surface reference.
func (l Level) Missing() bool {
	return l.Code == 0xFF
}

// String renders the level in a compact human form: the name alone for
// valueless surfaces, otherwise the name with the value(s) and unit.
func (l Level) String() string {
	switch {
	case l.Missing():
		return "no level"
	case l.Layer:
		return fmt.Sprintf("%s layer %g-%g %s", l.Name, l.Value, l.Second, l.Unit)
	case l.Unit == "":
		return l.Name
	default:
		return fmt.Sprintf("%s %g %s", l.Name, l.Value, l.Unit)
	}
}

// PhysicalGrid is the decoded product of one field: values bound to
// coordinates and metadata. It is what decoding yields and what encoding
// consumes.
//
// Field holds the values in canonical orientation regardless of how the
// message scanned them: shape [nj, ni] with rows ascending south to
// north and columns west to east, matching Coords. Reduced grids keep a
// flat [numPoints] shape with per-point coordinates on Coords. Points
// masked out by a bitmap are math.NaN.
type PhysicalGrid struct {
	Field  *sparse.DenseArray
	Coords *grids.Coordinates

	Param tables.Parameter
	Level Level

	// RefTime is the reference time; ValidTime the instant the field
	// describes, or the end of the statistical interval.
	RefTime   time.Time
	ValidTime time.Time

	// Interval is the span a statistical process covers, ending at
	// ValidTime. Zero for instantaneous fields.
	Interval time.Duration

	// StatProcess is the statistical process code (code table 4.10);
	// 0xFF when the field is instantaneous.
	StatProcess uint8

	Centre    uint16
	SubCentre uint16

	Edition format.Edition
	Packing format.Packing

	// Offset is the stream position of the message this field came
	// from, when it was decoded through a Scanner.
	Offset int64
}

// Values returns the flat value slice in canonical order. It aliases the
// dense array's backing storage.
func (g *PhysicalGrid) Values() []float64 {
	if g.Field == nil {
		return nil
	}

	return g.Field.Elements
}

// CentreName resolves the originating centre code to its common name.
func (g *PhysicalGrid) CentreName() string {
	return tables.CentreName(g.Centre)
}

// Statistic names the statistical process applied over Interval, or ""
// for instantaneous fields.
func (g *PhysicalGrid) Statistic() string {
	if g.StatProcess == 0xFF {
		return ""
	}

	return tables.StatProcessName(g.StatProcess)
}
