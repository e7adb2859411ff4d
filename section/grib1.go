package section

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/cubewire/grib/errs"
	"github.com/cubewire/grib/internal/bitio"
	"github.com/cubewire/grib/internal/ibm"
)

// Edition 1 sections carry 3-octet lengths and no section numbers; their
// order is fixed and the product definition flags announce which optional
// sections follow.

// pdsLen is the minimum product definition section length (octets 1-28).
const pdsLen = 28

// ProductDefinition1 is the edition 1 product definition section (PDS).
type ProductDefinition1 struct {
	ReferenceTime time.Time // assembled from year-of-century, century, UTC

	// Extra preserves octets beyond 28 (reserved and centre-specific).
	Extra []byte

	IncludedInAverage  uint16
	DecimalScale       int16 // sign-magnitude octets 27-28
	TableVersion       uint8
	Centre             uint8
	GeneratingProcess  uint8
	GridID             uint8
	Flags              uint8 // FlagHasGDS / FlagHasBMS
	Parameter          uint8
	LevelType          uint8 // code table 3
	LevelOctets        [2]byte
	TimeUnit           uint8 // code table 4
	P1                 uint8
	P2                 uint8
	TimeRangeIndicator uint8 // code table 5
	MissingFromAverage uint8
	SubCentre          uint8
}

// HasGDS reports whether a grid description section follows.
func (p *ProductDefinition1) HasGDS() bool { return p.Flags&FlagHasGDS != 0 }

// HasBMS reports whether a bitmap section follows.
func (p *ProductDefinition1) HasBMS() bool { return p.Flags&FlagHasBMS != 0 }

// LevelValue returns the level octets as one 16-bit value, the layout used
// by single-surface level types.
func (p *ProductDefinition1) LevelValue() uint16 {
	return uint16(p.LevelOctets[0])<<8 | uint16(p.LevelOctets[1])
}

// LayerValues returns the level octets as two 8-bit values, the layout
// used by layer level types.
func (p *ProductDefinition1) LayerValues() (uint8, uint8) {
	return p.LevelOctets[0], p.LevelOctets[1]
}

// Parse reads the PDS from its complete octets.
func (p *ProductDefinition1) Parse(data []byte) error {
	length, err := section1Len(data, "product definition", pdsLen)
	if err != nil {
		return err
	}

	p.TableVersion = data[3]
	p.Centre = data[4]
	p.GeneratingProcess = data[5]
	p.GridID = data[6]
	p.Flags = data[7]
	p.Parameter = data[8]
	p.LevelType = data[9]
	p.LevelOctets = [2]byte{data[10], data[11]}

	yearOfCentury := int(data[12])
	century := int(data[24])
	year := (century-1)*100 + yearOfCentury
	p.ReferenceTime = time.Date(year, time.Month(data[13]), int(data[14]),
		int(data[15]), int(data[16]), 0, 0, time.UTC)

	p.TimeUnit = data[17]
	p.P1 = data[18]
	p.P2 = data[19]
	p.TimeRangeIndicator = data[20]
	p.IncludedInAverage = binary.BigEndian.Uint16(data[21:23])
	p.MissingFromAverage = data[23]
	p.SubCentre = data[25]
	p.DecimalScale = bitio.Int16SM(binary.BigEndian.Uint16(data[26:28]))

	if length > pdsLen {
		p.Extra = data[pdsLen:length]
	} else {
		p.Extra = nil
	}

	return nil
}

// Bytes serializes the PDS with the length recomputed.
func (p *ProductDefinition1) Bytes() []byte {
	b := make([]byte, 0, pdsLen+len(p.Extra))
	b = bitio.AppendUint24(b, uint32(pdsLen+len(p.Extra))) //nolint:gosec

	b = append(b, p.TableVersion, p.Centre, p.GeneratingProcess, p.GridID,
		p.Flags, p.Parameter, p.LevelType, p.LevelOctets[0], p.LevelOctets[1])

	t := p.ReferenceTime.UTC()
	year := t.Year()
	yearOfCentury := year % 100
	century := year/100 + 1
	if yearOfCentury == 0 {
		yearOfCentury = 100
		century--
	}
	b = append(b, byte(yearOfCentury), byte(t.Month()), byte(t.Day()),
		byte(t.Hour()), byte(t.Minute()))

	b = append(b, p.TimeUnit, p.P1, p.P2, p.TimeRangeIndicator)
	b = binary.BigEndian.AppendUint16(b, p.IncludedInAverage)
	b = append(b, p.MissingFromAverage, byte(century), p.SubCentre)
	b = binary.BigEndian.AppendUint16(b, bitio.PutInt16SM(p.DecimalScale))
	b = append(b, p.Extra...)

	return b
}

// GridDescription1 is the edition 1 grid description section (GDS).
// Template octets are kept raw; the grids package interprets them per
// representation type (code table 6).
type GridDescription1 struct {
	Template       []byte
	VerticalCoords []float64 // NV coordinate parameters, decoded IBM floats
	PointCounts    []uint16  // per-row point list for quasi-regular grids

	NV                 uint8
	PV                 uint8 // octet number of the coord/point list, GDSNone if absent
	RepresentationType uint8
}

// Parse reads the GDS from its complete octets.
func (g *GridDescription1) Parse(data []byte) error {
	length, err := section1Len(data, "grid description", 6)
	if err != nil {
		return err
	}

	g.NV = data[3]
	g.PV = data[4]
	g.RepresentationType = data[5]

	body := data[:length]

	if g.PV == GDSNone {
		g.Template = body[6:]
		g.VerticalCoords = nil
		g.PointCounts = nil

		return nil
	}

	listStart := int(g.PV) - 1 // octet numbers are 1-based
	if listStart < 6 || listStart > len(body) {
		return fmt.Errorf("%w: grid description list offset %d outside section of %d octets",
			errs.ErrMalformedSection, g.PV, len(body))
	}

	g.Template = body[6:listStart]

	list := body[listStart:]
	coordLen := int(g.NV) * 4
	if coordLen > len(list) {
		return fmt.Errorf("%w: %d vertical coordinates need %d octets, %d available",
			errs.ErrMalformedSection, g.NV, coordLen, len(list))
	}

	g.VerticalCoords = nil
	if g.NV > 0 {
		g.VerticalCoords = make([]float64, 0, g.NV)
		for off := 0; off < coordLen; off += 4 {
			g.VerticalCoords = append(g.VerticalCoords,
				ibm.ToFloat64(binary.BigEndian.Uint32(list[off:off+4])))
		}
	}

	counts := list[coordLen:]
	g.PointCounts = nil
	if len(counts) > 0 {
		if len(counts)%2 != 0 {
			return fmt.Errorf("%w: point list of %d octets is not 2-octet aligned",
				errs.ErrMalformedSection, len(counts))
		}
		g.PointCounts = make([]uint16, 0, len(counts)/2)
		for off := 0; off < len(counts); off += 2 {
			g.PointCounts = append(g.PointCounts, binary.BigEndian.Uint16(counts[off:off+2]))
		}
	}

	return nil
}

// Regular reports whether the grid has no per-row point list.
func (g *GridDescription1) Regular() bool {
	return len(g.PointCounts) == 0
}

// Bytes serializes the GDS with the length recomputed.
func (g *GridDescription1) Bytes() []byte {
	listLen := len(g.VerticalCoords)*4 + len(g.PointCounts)*2
	length := 6 + len(g.Template) + listLen

	b := make([]byte, 0, length)
	b = bitio.AppendUint24(b, uint32(length)) //nolint:gosec

	pv := uint8(GDSNone)
	if listLen > 0 {
		pv = uint8(6 + len(g.Template) + 1) //nolint:gosec
	}
	b = append(b, uint8(len(g.VerticalCoords)), pv, g.RepresentationType) //nolint:gosec
	b = append(b, g.Template...)

	for _, c := range g.VerticalCoords {
		b = binary.BigEndian.AppendUint32(b, ibm.FromFloat64(c))
	}
	for _, c := range g.PointCounts {
		b = binary.BigEndian.AppendUint16(b, c)
	}

	return b
}

// BitmapSection1 is the edition 1 bitmap section (BMS).
type BitmapSection1 struct {
	Data []byte

	TableRef   uint16 // 0 means the bitmap follows in this section
	UnusedBits uint8
}

// Parse reads the BMS from its complete octets.
func (bm *BitmapSection1) Parse(data []byte) error {
	length, err := section1Len(data, "bitmap", 6)
	if err != nil {
		return err
	}

	bm.UnusedBits = data[3]
	bm.TableRef = binary.BigEndian.Uint16(data[4:6])
	bm.Data = data[6:length]

	if bm.TableRef != 0 && len(bm.Data) > 0 {
		return fmt.Errorf("%w: predefined bitmap %d with %d octets of mask data",
			errs.ErrMalformedSection, bm.TableRef, len(bm.Data))
	}

	return nil
}

// Bit reports the mask bit for grid point i (MSB-first within each octet).
func (bm *BitmapSection1) Bit(i int) bool {
	octet := i / 8
	if octet >= len(bm.Data) {
		return false
	}

	return bm.Data[octet]&(1<<(7-uint(i)%8)) != 0
}

// CountSet returns the number of set bits across the first points bits.
func (bm *BitmapSection1) CountSet(points int) int {
	count := 0
	for i := 0; i < points; i++ {
		if bm.Bit(i) {
			count++
		}
	}

	return count
}

// Bytes serializes the BMS with the length recomputed.
func (bm *BitmapSection1) Bytes() []byte {
	length := 6 + len(bm.Data)
	b := make([]byte, 0, length)
	b = bitio.AppendUint24(b, uint32(length)) //nolint:gosec
	b = append(b, bm.UnusedBits)
	b = binary.BigEndian.AppendUint16(b, bm.TableRef)
	b = append(b, bm.Data...)

	return b
}

// BinaryData1 is the edition 1 binary data section (BDS): scaling
// parameters plus the packed payload. The packing package interprets the
// payload, including the second-order structures behind the complex flag.
type BinaryData1 struct {
	Payload []byte // octets 12 onward, raw

	ReferenceValue float64 // decoded IBM float
	BinaryScale    int16   // sign-magnitude octets 5-6

	Flags        uint8 // BDSFlag* masks over octet 4
	UnusedBits   uint8 // low nibble of octet 4, tail padding bits
	BitsPerValue uint8
}

// Complex reports second-order packing.
func (bd *BinaryData1) Complex() bool { return bd.Flags&BDSFlagComplexPacking != 0 }

// Harmonic reports spherical harmonic coefficients instead of grid points.
func (bd *BinaryData1) Harmonic() bool { return bd.Flags&BDSFlagSphericalHarmonics != 0 }

// Parse reads the BDS from its complete octets.
func (bd *BinaryData1) Parse(data []byte) error {
	length, err := section1Len(data, "binary data", 11)
	if err != nil {
		return err
	}

	bd.Flags = data[3] & 0xF0
	bd.UnusedBits = data[3] & 0x0F
	bd.BinaryScale = bitio.Int16SM(binary.BigEndian.Uint16(data[4:6]))
	bd.ReferenceValue = ibm.ToFloat64(binary.BigEndian.Uint32(data[6:10]))
	bd.BitsPerValue = data[10]
	bd.Payload = data[11:length]

	return nil
}

// Bytes serializes the BDS with the length recomputed. The section length
// is kept even by a trailing pad octet when needed, with UnusedBits
// already accounting for the padding.
func (bd *BinaryData1) Bytes() []byte {
	length := 11 + len(bd.Payload)
	pad := length % 2 // length must be even
	length += pad

	b := make([]byte, 0, length)
	b = bitio.AppendUint24(b, uint32(length)) //nolint:gosec
	b = append(b, bd.Flags|(bd.UnusedBits&0x0F))
	b = binary.BigEndian.AppendUint16(b, bitio.PutInt16SM(bd.BinaryScale))
	b = binary.BigEndian.AppendUint32(b, ibm.FromFloat64(bd.ReferenceValue))
	b = append(b, bd.BitsPerValue)
	b = append(b, bd.Payload...)
	if pad != 0 {
		b = append(b, 0)
	}

	return b
}

// section1Len validates an edition 1 section header and returns the
// declared length, clamped checks included.
func section1Len(data []byte, name string, minLen int) (int, error) {
	if len(data) < 3 {
		return 0, fmt.Errorf("%w: %s section of %d octets", errs.ErrTruncatedStream, name, len(data))
	}

	length := int(bitio.Uint24(data[0:3]))
	if length < minLen {
		return 0, fmt.Errorf("%w: %s section declares %d octets, need %d",
			errs.ErrMalformedSection, name, length, minLen)
	}
	if length > len(data) {
		return 0, fmt.Errorf("%w: %s section declares %d octets, %d available",
			errs.ErrMalformedSection, name, length, len(data))
	}

	return length, nil
}
