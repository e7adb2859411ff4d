package tables

import (
	"fmt"
	"time"

	"github.com/cubewire/grib/errs"
)

// Time unit indicators (edition 2 code table 4.4, edition 1 table 4).
const (
	UnitMinute  = 0
	UnitHour    = 1
	UnitDay     = 2
	UnitMonth   = 3
	UnitYear    = 4
	UnitDecade  = 5
	UnitNormal  = 6 // 30 years
	UnitCentury = 7
	Unit3Hours  = 10
	Unit6Hours  = 11
	Unit12Hours = 12
	UnitSecond  = 13
)

// timeUnits maps the fixed-length time unit codes to their duration.
// Calendar units (month through century) have no fixed duration and are
// deliberately absent.
var timeUnits = map[uint8]time.Duration{
	UnitMinute:  time.Minute,
	UnitHour:    time.Hour,
	UnitDay:     24 * time.Hour,
	Unit3Hours:  3 * time.Hour,
	Unit6Hours:  6 * time.Hour,
	Unit12Hours: 12 * time.Hour,
	UnitSecond:  time.Second,
}

// TimeUnitDuration resolves a time unit code to its duration. Calendar
// units and unassigned codes report errs.ErrUnknownTemplate since spans
// in those units cannot be resolved to an instant.
func TimeUnitDuration(code uint8) (time.Duration, error) {
	if d, ok := timeUnits[code]; ok {
		return d, nil
	}

	return 0, fmt.Errorf("%w: time unit %d has no fixed duration", errs.ErrUnknownTemplate, code)
}

// Statistical process names (edition 2 code table 4.10).
var statProcesses = map[uint8]string{
	0:   "average",
	1:   "accumulation",
	2:   "maximum",
	3:   "minimum",
	4:   "difference",
	5:   "root_mean_square",
	6:   "standard_deviation",
	7:   "covariance",
	9:   "ratio",
	255: "missing",
}

// StatProcessName resolves a statistical process code.
func StatProcessName(code uint8) string {
	if name, ok := statProcesses[code]; ok {
		return name
	}

	return fmt.Sprintf("unknown process %d", code)
}

// TimeRange1 is the resolved meaning of an edition 1 time range indicator
// (code table 5): the forecast offset from the reference time and, for
// statistical products, the interval it covers.
type TimeRange1 struct {
	// Offset is the forecast span from the reference time to the field's
	// instant, or to the interval end for statistical products.
	Offset time.Duration
	// Length is the covered interval; zero for instantaneous products.
	Length time.Duration
	// StatProcess is the edition 2 code table 4.10 equivalent for
	// statistical indicators, 255 otherwise.
	StatProcess uint8
}

// TranslateTimeRange1 resolves an edition 1 time range indicator with its
// P1/P2 octets and time unit.
//
// Indicator 10 spreads a 16-bit P1 across both octets. Indicators without
// a carried meaning report errs.ErrUnknownTemplate.
func TranslateTimeRange1(indicator, p1, p2, unit uint8) (TimeRange1, error) {
	d, err := TimeUnitDuration(unit)
	if err != nil {
		return TimeRange1{}, err
	}

	switch indicator {
	case 0, 1: // forecast at reference + P1 (1: initialized analysis, P1 = 0)
		return TimeRange1{Offset: time.Duration(p1) * d, StatProcess: 255}, nil

	case 2: // product valid between P1 and P2
		return TimeRange1{
			Offset:      time.Duration(p2) * d,
			Length:      time.Duration(p2-p1) * d,
			StatProcess: 255,
		}, nil

	case 3: // average from P1 to P2
		return TimeRange1{
			Offset:      time.Duration(p2) * d,
			Length:      time.Duration(p2-p1) * d,
			StatProcess: 0,
		}, nil

	case 4: // accumulation from P1 to P2
		return TimeRange1{
			Offset:      time.Duration(p2) * d,
			Length:      time.Duration(p2-p1) * d,
			StatProcess: 1,
		}, nil

	case 5: // difference P2 minus P1
		return TimeRange1{
			Offset:      time.Duration(p2) * d,
			Length:      time.Duration(p2-p1) * d,
			StatProcess: 4,
		}, nil

	case 10: // P1 occupies both octets
		p := uint16(p1)<<8 | uint16(p2)
		return TimeRange1{Offset: time.Duration(p) * d, StatProcess: 255}, nil

	default:
		return TimeRange1{}, fmt.Errorf("%w: time range indicator %d", errs.ErrUnknownTemplate, indicator)
	}
}
