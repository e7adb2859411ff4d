package section

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/cubewire/grib/errs"
)

// identificationLen is the fixed part of section 1 (octets 1-21).
const identificationLen = 21

// Identification is edition 2 section 1: originating centre, table
// versions, and the reference time of the data.
type Identification struct {
	ReferenceTime time.Time // always UTC

	Centre    uint16
	SubCentre uint16

	MasterTablesVersion uint8
	LocalTablesVersion  uint8

	// TimeSignificance qualifies the reference time (code table 1.2:
	// 0 analysis, 1 start of forecast, 2 verifying time, 3 observation).
	TimeSignificance uint8

	ProductionStatus uint8
	DataType         uint8

	// Reserved preserves octets beyond 21 for centres that extend the
	// section.
	Reserved []byte
}

// Parse reads section 1 from its complete octets.
func (id *Identification) Parse(data []byte) error {
	if len(data) < identificationLen {
		return fmt.Errorf("%w: identification section of %d octets, need %d",
			errs.ErrMalformedSection, len(data), identificationLen)
	}
	if data[4] != NumIdentification {
		return fmt.Errorf("%w: expected section 1, got %d", errs.ErrMalformedSection, data[4])
	}

	id.Centre = binary.BigEndian.Uint16(data[5:7])
	id.SubCentre = binary.BigEndian.Uint16(data[7:9])
	id.MasterTablesVersion = data[9]
	id.LocalTablesVersion = data[10]
	id.TimeSignificance = data[11]

	year := int(binary.BigEndian.Uint16(data[12:14]))
	id.ReferenceTime = time.Date(year, time.Month(data[14]), int(data[15]),
		int(data[16]), int(data[17]), int(data[18]), 0, time.UTC)

	id.ProductionStatus = data[19]
	id.DataType = data[20]

	if len(data) > identificationLen {
		id.Reserved = data[identificationLen:]
	} else {
		id.Reserved = nil
	}

	return nil
}

// Bytes serializes section 1 with the length recomputed.
func (id *Identification) Bytes() []byte {
	b := header(make([]byte, 0, identificationLen+len(id.Reserved)), NumIdentification)

	b = binary.BigEndian.AppendUint16(b, id.Centre)
	b = binary.BigEndian.AppendUint16(b, id.SubCentre)
	b = append(b, id.MasterTablesVersion, id.LocalTablesVersion, id.TimeSignificance)

	t := id.ReferenceTime.UTC()
	b = binary.BigEndian.AppendUint16(b, uint16(t.Year())) //nolint:gosec
	b = append(b, byte(t.Month()), byte(t.Day()), byte(t.Hour()), byte(t.Minute()), byte(t.Second()))

	b = append(b, id.ProductionStatus, id.DataType)
	b = append(b, id.Reserved...)

	return finishHeader(b)
}
