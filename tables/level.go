package tables

import "fmt"

// LevelType describes one fixed surface code: its name and the unit its
// coded values resolve to.
type LevelType struct {
	Name string
	Unit string

	// NoValue marks surfaces that carry no numeric value (surface,
	// tropopause, entire atmosphere).
	NoValue bool
}

// fixedSurfaces is the edition 2 code table 4.5 subset.
var fixedSurfaces = map[uint8]LevelType{
	1:   {Name: "surface", NoValue: true},
	2:   {Name: "cloud_base", NoValue: true},
	3:   {Name: "cloud_top", NoValue: true},
	4:   {Name: "freezing_level", NoValue: true},
	6:   {Name: "maximum_wind_level", NoValue: true},
	7:   {Name: "tropopause", NoValue: true},
	8:   {Name: "nominal_top_of_atmosphere", NoValue: true},
	100: {Name: "pressure", Unit: "Pa"},
	101: {Name: "mean_sea_level", NoValue: true},
	102: {Name: "altitude", Unit: "m"},
	103: {Name: "height", Unit: "m"},
	104: {Name: "sigma", Unit: "1"},
	105: {Name: "hybrid", Unit: "1"},
	106: {Name: "depth", Unit: "m"},
	107: {Name: "isentropic", Unit: "K"},
	108: {Name: "pressure_difference_from_ground", Unit: "Pa"},
	111: {Name: "eta", Unit: "1"},
	160: {Name: "depth_below_sea_level", Unit: "m"},
	200: {Name: "entire_atmosphere", NoValue: true},
}

// LookupSurface resolves an edition 2 fixed surface code. Misses return a
// synthesized name carrying the raw code.
func LookupSurface(code uint8) LevelType {
	if lt, ok := fixedSurfaces[code]; ok {
		return lt
	}

	return LevelType{Name: fmt.Sprintf("unknown surface %d", code)}
}

// grib1Level maps an edition 1 level type (code table 3) onto the edition
// 2 surface code with the factor that converts coded values into the
// edition 2 unit. Layer types split the level octets into two bounds.
type grib1Level struct {
	surface uint8
	scale   float64
	layer   bool
}

var grib1Levels = map[uint8]grib1Level{
	1:   {surface: 1},   // surface of the earth
	2:   {surface: 2},   // cloud base
	3:   {surface: 3},   // cloud top
	4:   {surface: 4},   // 0 degree isotherm
	7:   {surface: 7},   // tropopause
	8:   {surface: 8},   // nominal top of atmosphere
	100: {surface: 100, scale: 100},               // isobaric, coded in hPa
	101: {surface: 100, scale: 1000, layer: true}, // layer between isobaric, coded in kPa
	102: {surface: 101},                           // mean sea level
	103: {surface: 102, scale: 1},                 // altitude above MSL, m
	105: {surface: 103, scale: 1},                 // height above ground, m
	107: {surface: 104, scale: 1e-4},              // sigma, coded in 1/10000
	109: {surface: 105, scale: 1},                 // hybrid level number
	111: {surface: 106, scale: 0.01},              // depth below surface, coded in cm
	113: {surface: 107, scale: 1},                 // isentropic, K
	160: {surface: 160, scale: 1},                 // depth below sea level, m
	200: {surface: 200},                           // entire atmosphere
}

// TranslateLevel1 resolves an edition 1 level into the edition 2 surface
// code, its descriptive type, and the coded value(s) converted to the
// edition 2 unit. Layer types report isLayer and return both bounds in
// value and second.
func TranslateLevel1(levelType uint8, octets [2]byte) (code uint8, lt LevelType, value, second float64, isLayer bool) {
	entry, ok := grib1Levels[levelType]
	if !ok {
		return levelType, LevelType{Name: fmt.Sprintf("unknown surface %d", levelType)},
			float64(uint16(octets[0])<<8 | uint16(octets[1])), 0, false
	}

	lt = LookupSurface(entry.surface)

	if entry.layer {
		return entry.surface, lt, float64(octets[0]) * entry.scale, float64(octets[1]) * entry.scale, true
	}

	raw := float64(uint16(octets[0])<<8 | uint16(octets[1]))

	return entry.surface, lt, raw * entry.scale, 0, false
}
