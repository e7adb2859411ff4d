package format

type (
	Edition      uint8
	Packing      uint16
	GridTemplate uint16
	Discipline   uint8
)

const (
	Edition1 Edition = 1 // Edition1 is the original fixed-section layout.
	Edition2 Edition = 2 // Edition2 is the templated section layout.
)

// Data representation template numbers (code table 5.0).
const (
	PackingSimple         Packing = 0   // grid point data, simple packing
	PackingComplex        Packing = 2   // grid point data, complex packing
	PackingComplexSpatial Packing = 3   // complex packing with spatial differencing
	PackingIEEE           Packing = 4   // IEEE floating point data
	PackingJPEG2000       Packing = 40  // JPEG 2000 code stream
	PackingPNG            Packing = 41  // PNG image data
	PackingCCSDS          Packing = 42  // CCSDS recommended lossless compression
	PackingSpectral       Packing = 50  // spectral data, simple packing
	PackingRunLength      Packing = 200 // run length packing with level values
)

// Grid definition template numbers (code table 3.1).
const (
	GridLatLon        GridTemplate = 0  // latitude/longitude (equidistant cylindrical)
	GridRotatedLatLon GridTemplate = 1  // rotated latitude/longitude
	GridMercator      GridTemplate = 10 // Mercator
	GridPolarStereo   GridTemplate = 20 // polar stereographic projection
	GridLambert       GridTemplate = 30 // Lambert conformal
	GridGaussian      GridTemplate = 40 // Gaussian latitude/longitude
)

// Product disciplines (code table 0.0).
const (
	DisciplineMeteorological Discipline = 0
	DisciplineHydrological   Discipline = 1
	DisciplineLandSurface    Discipline = 2
	DisciplineSpace          Discipline = 3
	DisciplineOceanographic  Discipline = 10
)

func (e Edition) String() string {
	switch e {
	case Edition1:
		return "GRIB1"
	case Edition2:
		return "GRIB2"
	default:
		return "Unknown"
	}
}

func (p Packing) String() string {
	switch p {
	case PackingSimple:
		return "Simple"
	case PackingComplex:
		return "Complex"
	case PackingComplexSpatial:
		return "ComplexSpatial"
	case PackingIEEE:
		return "IEEE"
	case PackingJPEG2000:
		return "JPEG2000"
	case PackingPNG:
		return "PNG"
	case PackingCCSDS:
		return "CCSDS"
	case PackingSpectral:
		return "Spectral"
	case PackingRunLength:
		return "RunLength"
	default:
		return "Unknown"
	}
}

func (g GridTemplate) String() string {
	switch g {
	case GridLatLon:
		return "LatLon"
	case GridRotatedLatLon:
		return "RotatedLatLon"
	case GridMercator:
		return "Mercator"
	case GridPolarStereo:
		return "PolarStereo"
	case GridLambert:
		return "Lambert"
	case GridGaussian:
		return "Gaussian"
	default:
		return "Unknown"
	}
}

func (d Discipline) String() string {
	switch d {
	case DisciplineMeteorological:
		return "Meteorological"
	case DisciplineHydrological:
		return "Hydrological"
	case DisciplineLandSurface:
		return "LandSurface"
	case DisciplineSpace:
		return "SpaceProducts"
	case DisciplineOceanographic:
		return "Oceanographic"
	default:
		return "Unknown"
	}
}
