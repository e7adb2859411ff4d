package section

const (
	// Magic is the indicator string opening every message.
	Magic = "GRIB"
	// EndMagic is the literal end marker closing every message.
	EndMagic = "7777"

	// IndicatorLen1 is the edition 1 indicator section length in octets.
	IndicatorLen1 = 8
	// IndicatorLen2 is the edition 2 indicator section length in octets.
	IndicatorLen2 = 16

	// HeaderLen is the edition 2 section header: 4-octet length plus the
	// section number octet.
	HeaderLen = 5
	// EndLen is the end section length in octets.
	EndLen = 4
)

// Edition 2 section numbers.
const (
	NumIndicator          = 0
	NumIdentification     = 1
	NumLocalUse           = 2
	NumGridDefinition     = 3
	NumProductDefinition  = 4
	NumDataRepresentation = 5
	NumBitmap             = 6
	NumData               = 7
	NumEnd                = 8
)

// Bitmap indicator codes (code table 6.0).
const (
	BitmapPresent      = 0   // bitmap applies and is specified in this section
	BitmapReusePrev    = 254 // bitmap defined previously in the same message applies
	BitmapAbsent       = 255 // bitmap does not apply
	bitmapPredefinedLo = 1   // 1-253: predefined by the originating centre
	bitmapPredefinedHi = 253
)

// Edition 1 product definition flags (PDS octet 8).
const (
	FlagHasGDS = 1 << 7 // grid description section included
	FlagHasBMS = 1 << 6 // bitmap section included
)

// Edition 1 binary data flags (BDS octet 4, high nibble).
const (
	BDSFlagSphericalHarmonics = 1 << 7 // spherical harmonic coefficients, not grid points
	BDSFlagComplexPacking     = 1 << 6 // second-order packing
	BDSFlagIntegerValues      = 1 << 5 // original values were integers
	BDSFlagExtendedFlags      = 1 << 4 // octet 14 carries additional flags
)

// Edition 1 extended binary data flags (BDS octet 14).
const (
	BDSExtFlagMatrix           = 1 << 7 // matrix of values at each point
	BDSExtFlagSecondaryBitmaps = 1 << 6
	BDSExtFlagDifferentWidths  = 1 << 5 // second-order values have different widths
	BDSExtFlagGeneralExtended  = 1 << 4
	BDSExtFlagBoustrophedon    = 1 << 3
)

// GDSNone marks an absent PV octet in the edition 1 grid description.
const GDSNone = 255
