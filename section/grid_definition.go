package section

import (
	"encoding/binary"
	"fmt"

	"github.com/cubewire/grib/errs"
	"github.com/cubewire/grib/format"
)

// gridDefinitionLen is the fixed part of section 3 (octets 1-14).
const gridDefinitionLen = 14

// gridTemplateLen maps known grid definition template numbers to their
// octet count (the octets following the template number field). The
// remainder of the section is the optional point-count list.
var gridTemplateLen = map[format.GridTemplate]int{
	format.GridLatLon:        58,
	format.GridRotatedLatLon: 70,
	format.GridMercator:      58,
	format.GridPolarStereo:   51,
	format.GridLambert:       67,
	format.GridGaussian:      58,
}

// GridDefinition is edition 2 section 3: how many points the field has and
// how they are laid out on the earth.
//
// Template octets are kept raw; the grids package interprets them per
// template number. PointCounts carries the optional list of points per row
// used by reduced (quasi-regular) grids.
type GridDefinition struct {
	Template    []byte
	PointCounts []uint32

	NumPoints      uint32
	TemplateNumber format.GridTemplate

	Source         uint8
	OptionalOctets uint8 // octets per optional-list entry, 0 when absent
	OptionalInterp uint8 // interpretation of the list (code table 3.11)
}

// Parse reads section 3 from its complete octets.
func (gd *GridDefinition) Parse(data []byte) error {
	if len(data) < gridDefinitionLen {
		return fmt.Errorf("%w: grid definition section of %d octets, need %d",
			errs.ErrMalformedSection, len(data), gridDefinitionLen)
	}
	if data[4] != NumGridDefinition {
		return fmt.Errorf("%w: expected section 3, got %d", errs.ErrMalformedSection, data[4])
	}

	gd.Source = data[5]
	gd.NumPoints = binary.BigEndian.Uint32(data[6:10])
	gd.OptionalOctets = data[10]
	gd.OptionalInterp = data[11]
	gd.TemplateNumber = format.GridTemplate(binary.BigEndian.Uint16(data[12:14]))

	body := data[gridDefinitionLen:]

	tmplLen, known := gridTemplateLen[gd.TemplateNumber]
	if !known {
		// Unknown layout: keep everything opaque, list included.
		gd.Template = body
		gd.PointCounts = nil

		return nil
	}

	if len(body) < tmplLen {
		return fmt.Errorf("%w: grid template %d needs %d octets, section carries %d",
			errs.ErrMalformedSection, gd.TemplateNumber, tmplLen, len(body))
	}

	gd.Template = body[:tmplLen]

	return gd.parsePointCounts(body[tmplLen:])
}

func (gd *GridDefinition) parsePointCounts(list []byte) error {
	gd.PointCounts = nil
	if len(list) == 0 {
		return nil
	}

	width := int(gd.OptionalOctets)
	if width == 0 || len(list)%width != 0 {
		return fmt.Errorf("%w: optional list of %d octets with %d-octet entries",
			errs.ErrMalformedSection, len(list), width)
	}

	gd.PointCounts = make([]uint32, 0, len(list)/width)
	for off := 0; off < len(list); off += width {
		var v uint32
		for _, b := range list[off : off+width] {
			v = v<<8 | uint32(b)
		}
		gd.PointCounts = append(gd.PointCounts, v)
	}

	return nil
}

// Regular reports whether the grid has no per-row point list.
func (gd *GridDefinition) Regular() bool {
	return len(gd.PointCounts) == 0
}

// Bytes serializes section 3 with the length recomputed.
func (gd *GridDefinition) Bytes() []byte {
	size := gridDefinitionLen + len(gd.Template) + len(gd.PointCounts)*int(gd.OptionalOctets)
	b := header(make([]byte, 0, size), NumGridDefinition)

	b = append(b, gd.Source)
	b = binary.BigEndian.AppendUint32(b, gd.NumPoints)
	b = append(b, gd.OptionalOctets, gd.OptionalInterp)
	b = binary.BigEndian.AppendUint16(b, uint16(gd.TemplateNumber))
	b = append(b, gd.Template...)

	for _, c := range gd.PointCounts {
		for shift := (int(gd.OptionalOctets) - 1) * 8; shift >= 0; shift -= 8 {
			b = append(b, byte(c>>shift))
		}
	}

	return finishHeader(b)
}
