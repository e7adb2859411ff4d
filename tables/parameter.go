package tables

import "fmt"

// Parameter identifies a physical quantity. Discipline/Category/Number is
// the edition 2 identity; edition 1 lookups translate into it so the same
// quantity resolves to the same Parameter regardless of source edition.
//
// Unknown codes keep Name synthesized from the raw codes and Unit empty.
type Parameter struct {
	Name string
	Unit string

	Discipline uint8
	Category   uint8
	Number     uint8
}

// Known reports whether the parameter resolved to a table entry.
func (p Parameter) Known() bool {
	_, ok := parameters[paramKey{p.Discipline, p.Category, p.Number}]
	return ok
}

func (p Parameter) String() string {
	if p.Unit == "" {
		return p.Name
	}

	return p.Name + " [" + p.Unit + "]"
}

type paramKey struct {
	discipline uint8
	category   uint8
	number     uint8
}

// parameters is the WMO table 4.2 subset in active use across the
// supported products (temperature, moisture, momentum, mass, cloud,
// radiation, land surface, oceanographic).
var parameters = map[paramKey]Parameter{
	{0, 0, 0}:  {Name: "air_temperature", Unit: "K"},
	{0, 0, 2}:  {Name: "air_potential_temperature", Unit: "K"},
	{0, 0, 4}:  {Name: "air_temperature_max", Unit: "K"},
	{0, 0, 5}:  {Name: "air_temperature_min", Unit: "K"},
	{0, 0, 6}:  {Name: "dew_point_temperature", Unit: "K"},
	{0, 1, 0}:  {Name: "specific_humidity", Unit: "kg kg-1"},
	{0, 1, 1}:  {Name: "relative_humidity", Unit: "%"},
	{0, 1, 3}:  {Name: "precipitable_water", Unit: "kg m-2"},
	{0, 1, 7}:  {Name: "precipitation_rate", Unit: "kg m-2 s-1"},
	{0, 1, 8}:  {Name: "precipitation_amount", Unit: "kg m-2"},
	{0, 1, 11}: {Name: "thickness_of_snowfall_amount", Unit: "m"},
	{0, 2, 2}:  {Name: "x_wind", Unit: "m s-1"},
	{0, 2, 3}:  {Name: "y_wind", Unit: "m s-1"},
	{0, 2, 8}:  {Name: "lagrangian_tendency_of_air_pressure", Unit: "Pa s-1"},
	{0, 2, 10}: {Name: "atmosphere_absolute_vorticity", Unit: "s-1"},
	{0, 2, 22}: {Name: "wind_speed_of_gust", Unit: "m s-1"},
	{0, 3, 0}:  {Name: "air_pressure", Unit: "Pa"},
	{0, 3, 1}:  {Name: "air_pressure_at_sea_level", Unit: "Pa"},
	{0, 3, 4}:  {Name: "geopotential", Unit: "m2 s-2"},
	{0, 3, 5}:  {Name: "geopotential_height", Unit: "m"},
	{0, 6, 1}:  {Name: "cloud_area_fraction", Unit: "%"},
	{0, 6, 3}:  {Name: "low_type_cloud_area_fraction", Unit: "%"},
	{0, 6, 4}:  {Name: "medium_type_cloud_area_fraction", Unit: "%"},
	{0, 6, 5}:  {Name: "high_type_cloud_area_fraction", Unit: "%"},
	{0, 7, 6}:  {Name: "atmosphere_convective_available_potential_energy", Unit: "J kg-1"},
	{0, 7, 7}:  {Name: "atmosphere_convective_inhibition", Unit: "J kg-1"},
	{0, 14, 0}: {Name: "atmosphere_mole_content_of_ozone", Unit: "Dobson"},
	{0, 19, 0}: {Name: "visibility_in_air", Unit: "m"},
	{2, 0, 0}:  {Name: "land_binary_mask", Unit: "1"},
	{2, 0, 2}:  {Name: "soil_temperature", Unit: "K"},
	{10, 2, 0}: {Name: "sea_ice_area_fraction", Unit: "1"},
	{10, 3, 0}: {Name: "sea_surface_temperature", Unit: "K"},
}

// grib1Parameters maps the shared part of edition 1 table 2 (indicators
// 1-127, common to table versions 1-3) onto the edition 2 identity.
var grib1Parameters = map[uint8]paramKey{
	1:  {0, 3, 0},  // pressure
	2:  {0, 3, 1},  // pressure reduced to MSL
	6:  {0, 3, 4},  // geopotential
	7:  {0, 3, 5},  // geopotential height
	11: {0, 0, 0},  // temperature
	13: {0, 0, 2},  // potential temperature
	15: {0, 0, 4},  // maximum temperature
	16: {0, 0, 5},  // minimum temperature
	17: {0, 0, 6},  // dew point temperature
	20: {0, 19, 0}, // visibility
	33: {0, 2, 2},  // u-component of wind
	34: {0, 2, 3},  // v-component of wind
	39: {0, 2, 8},  // vertical velocity (pressure)
	41: {0, 2, 10}, // absolute vorticity
	51: {0, 1, 0},  // specific humidity
	52: {0, 1, 1},  // relative humidity
	54: {0, 1, 3},  // precipitable water
	59: {0, 1, 7},  // precipitation rate
	61: {0, 1, 8},  // total precipitation
	66: {0, 1, 11}, // snow depth
	71: {0, 6, 1},  // total cloud cover
	73: {0, 6, 3},  // low cloud cover
	74: {0, 6, 4},  // medium cloud cover
	75: {0, 6, 5},  // high cloud cover
	81: {2, 0, 0},  // land cover
	85: {2, 0, 2},  // soil temperature
	91: {10, 2, 0}, // ice cover
}

// LookupParameter resolves an edition 2 parameter triple. Misses return a
// synthesized identity carrying the raw codes; they are never an error.
func LookupParameter(discipline, category, number uint8) Parameter {
	if p, ok := parameters[paramKey{discipline, category, number}]; ok {
		p.Discipline = discipline
		p.Category = category
		p.Number = number

		return p
	}

	return Parameter{
		Name:       fmt.Sprintf("unknown parameter %d.%d.%d", discipline, category, number),
		Discipline: discipline,
		Category:   category,
		Number:     number,
	}
}

// LookupParameter1 resolves an edition 1 (table version, indicator) pair
// into the edition 2 identity. Indicators 128-255 are centre-specific and
// synthesize an unknown identity, as do table versions above 3 for the
// shared range.
func LookupParameter1(tableVersion, indicator uint8) Parameter {
	if tableVersion <= 3 && indicator <= 127 {
		if key, ok := grib1Parameters[indicator]; ok {
			return LookupParameter(key.discipline, key.category, key.number)
		}
	}

	return Parameter{
		Name:       fmt.Sprintf("unknown parameter T%dI%d", tableVersion, indicator),
		Discipline: 0xFF,
		Category:   0xFF,
		Number:     0xFF,
	}
}
