package section

import (
	"encoding/binary"
	"fmt"

	"github.com/cubewire/grib/errs"
	"github.com/cubewire/grib/format"
)

// dataRepresentationLen is the fixed part of section 5 (octets 1-11).
const dataRepresentationLen = 11

// DataRepresentation is edition 2 section 5: how many values went into the
// data section and under which packing template. Template octets are kept
// raw; the packing package interprets them per template number.
type DataRepresentation struct {
	Template []byte

	NumPacked      uint32
	TemplateNumber format.Packing
}

// Parse reads section 5 from its complete octets.
func (dr *DataRepresentation) Parse(data []byte) error {
	if len(data) < dataRepresentationLen {
		return fmt.Errorf("%w: data representation section of %d octets, need %d",
			errs.ErrMalformedSection, len(data), dataRepresentationLen)
	}
	if data[4] != NumDataRepresentation {
		return fmt.Errorf("%w: expected section 5, got %d", errs.ErrMalformedSection, data[4])
	}

	dr.NumPacked = binary.BigEndian.Uint32(data[5:9])
	dr.TemplateNumber = format.Packing(binary.BigEndian.Uint16(data[9:11]))
	dr.Template = data[dataRepresentationLen:]

	return nil
}

// Bytes serializes section 5 with the length recomputed.
func (dr *DataRepresentation) Bytes() []byte {
	b := header(make([]byte, 0, dataRepresentationLen+len(dr.Template)), NumDataRepresentation)

	b = binary.BigEndian.AppendUint32(b, dr.NumPacked)
	b = binary.BigEndian.AppendUint16(b, uint16(dr.TemplateNumber))
	b = append(b, dr.Template...)

	return finishHeader(b)
}
