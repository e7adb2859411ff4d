package packing

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cubewire/grib/errs"
	"github.com/cubewire/grib/internal/bitio"
	"github.com/cubewire/grib/internal/pool"
)

// complexUnpacker decodes templates 5.2 and 5.3: values split into
// groups, each with its own reference and width, optionally spatially
// differenced before grouping. Missing-value management substitutes NaN
// for the all-ones (primary) and all-ones-minus-one (secondary) bit
// patterns.
type complexUnpacker struct {
	s scaler

	ng int

	groupLenRef  uint32
	lastGroupLen uint32

	width          uint8 // bits per group reference
	missingMode    uint8
	groupWidthRef  uint8
	groupWidthBits uint8
	groupLenInc    uint8
	groupLenBits   uint8
	spatialOrder   uint8 // 0 for plain complex packing
	spatialOctets  uint8
}

const (
	complexTemplateLen        = 36
	complexSpatialTemplateLen = 38
)

func newComplexUnpacker(t []byte) (Unpacker, error) {
	return parseComplex(t, false)
}

func newComplexSpatialUnpacker(t []byte) (Unpacker, error) {
	return parseComplex(t, true)
}

func parseComplex(t []byte, spatial bool) (Unpacker, error) {
	need := complexTemplateLen
	if spatial {
		need = complexSpatialTemplateLen
	}
	if len(t) < need {
		return nil, fmt.Errorf("%w: complex packing template carries %d octets, need %d",
			errs.ErrMalformedSection, len(t), need)
	}

	s, width, err := parseFieldTemplate(t, "complex packing")
	if err != nil {
		return nil, err
	}

	u := &complexUnpacker{
		s:              s,
		width:          width,
		missingMode:    t[11],
		ng:             int(binary.BigEndian.Uint32(t[20:24])),
		groupWidthRef:  t[24],
		groupWidthBits: t[25],
		groupLenRef:    binary.BigEndian.Uint32(t[26:30]),
		groupLenInc:    t[30],
		lastGroupLen:   binary.BigEndian.Uint32(t[31:35]),
		groupLenBits:   t[35],
	}

	if u.missingMode > 2 {
		return nil, fmt.Errorf("%w: missing value management %d",
			errs.ErrUnsupportedPacking, u.missingMode)
	}
	if u.groupWidthBits > maxBits || u.groupLenBits > maxBits {
		return nil, fmt.Errorf("%w: group descriptor widths %d/%d",
			errs.ErrMalformedSection, u.groupWidthBits, u.groupLenBits)
	}

	if spatial {
		u.spatialOrder = t[36]
		u.spatialOctets = t[37]
		if u.spatialOrder < 1 || u.spatialOrder > 2 {
			return nil, fmt.Errorf("%w: spatial differencing order %d",
				errs.ErrUnsupportedPacking, u.spatialOrder)
		}
		if u.spatialOctets < 1 || u.spatialOctets > 4 {
			return nil, fmt.Errorf("%w: %d-octet spatial descriptors",
				errs.ErrMalformedSection, u.spatialOctets)
		}
	}

	return u, nil
}

func (u *complexUnpacker) Unpack(payload []byte, numPoints int) ([]float64, error) {
	if numPoints == 0 {
		return []float64{}, nil
	}
	if u.ng < 1 {
		return nil, fmt.Errorf("%w: %d groups for %d points", errs.ErrMalformedSection, u.ng, numPoints)
	}

	// Spatial differencing prepends the initial values and the overall
	// minimum as whole-octet sign-magnitude integers.
	var initVals [2]int64
	var yMin int64

	r := bitio.NewReader(payload)
	if order := int(u.spatialOrder); order > 0 {
		m := int(u.spatialOctets)
		head := (order + 1) * m
		if len(payload) < head {
			return nil, fmt.Errorf("%w: %d octets for %d spatial descriptors",
				errs.ErrMalformedSection, len(payload), order+1)
		}
		for i := range order {
			initVals[i] = signMagOctets(payload[i*m : (i+1)*m])
		}
		yMin = signMagOctets(payload[order*m : head])
		r = bitio.NewReader(payload[head:])
	}

	// The three descriptor streams are fixed-size per group; reject an
	// impossible group count before allocating by it.
	headBits := u.ng * (int(u.width) + int(u.groupWidthBits) + int(u.groupLenBits))
	if headBits > r.Remaining() {
		return nil, fmt.Errorf("%w: %d groups need %d descriptor bits, %d available",
			errs.ErrMalformedSection, u.ng, headBits, r.Remaining())
	}

	grefs := make([]uint64, u.ng)
	for i := range grefs {
		v, err := r.Read(int(u.width))
		if err != nil {
			return nil, err
		}
		grefs[i] = v
	}
	r.Align()

	widths := make([]int, u.ng)
	for i := range widths {
		v, err := r.Read(int(u.groupWidthBits))
		if err != nil {
			return nil, err
		}
		widths[i] = int(u.groupWidthRef) + int(v) //nolint:gosec
		if widths[i] > maxBits {
			return nil, fmt.Errorf("%w: group %d is %d bits wide", errs.ErrMalformedSection, i, widths[i])
		}
	}
	r.Align()

	// The coded length of the last group is a filler; the true length
	// comes from the template.
	lengths := make([]int, u.ng)
	for i := range lengths {
		v, err := r.Read(int(u.groupLenBits))
		if err != nil {
			return nil, err
		}
		lengths[i] = int(v)*int(u.groupLenInc) + int(u.groupLenRef) //nolint:gosec
	}
	lengths[u.ng-1] = int(u.lastGroupLen)
	r.Align()

	total := 0
	for _, l := range lengths {
		total += l
	}
	if total != numPoints {
		return nil, fmt.Errorf("%w: groups carry %d points, field has %d",
			errs.ErrMalformedSection, total, numPoints)
	}

	vals, releaseVals := pool.GetInt64Slice(numPoints)
	defer releaseVals()

	var miss []bool
	if u.missingMode > 0 {
		miss = make([]bool, numPoints)
	}

	var refMax uint64
	if u.width > 0 {
		refMax = 1<<u.width - 1
	}

	pos := 0
	for g := range u.ng {
		gref := grefs[g]
		w := widths[g]

		var wMax uint64
		if w > 0 {
			wMax = 1<<uint(w) - 1
		}

		// A zero-width group with the all-ones reference is entirely
		// missing under missing-value management.
		groupMissing := w == 0 && u.missingMode >= 1 && u.width > 0 &&
			(gref == refMax || (u.missingMode == 2 && gref == refMax-1))

		for range lengths[g] {
			if w == 0 {
				vals[pos] = int64(gref) //nolint:gosec
				if miss != nil {
					miss[pos] = groupMissing
				}
				pos++

				continue
			}

			x, err := r.Read(w)
			if err != nil {
				return nil, err
			}

			if u.missingMode >= 1 && (x == wMax || (u.missingMode == 2 && x == wMax-1)) {
				vals[pos] = 0
				miss[pos] = true
				pos++

				continue
			}

			vals[pos] = int64(gref) + int64(x) //nolint:gosec
			pos++
		}
	}

	if u.spatialOrder > 0 {
		undoSpatialDifferencing(vals, miss, initVals, yMin, int(u.spatialOrder))
	}

	out := make([]float64, numPoints)
	for i, v := range vals {
		if miss != nil && miss[i] {
			out[i] = math.NaN()

			continue
		}
		out[i] = u.s.value(float64(v))
	}

	return out, nil
}

// undoSpatialDifferencing reverses first or second order differencing in
// place. The first values of the non-missing sequence are replaced by
// the coded initial values; later values accumulate with the minimum
// bias restored. Missing points stay outside the chain.
func undoSpatialDifferencing(vals []int64, miss []bool, initVals [2]int64, yMin int64, order int) {
	idx := 0
	var prev, prev2 int64

	for i := range vals {
		if miss != nil && miss[i] {
			continue
		}

		switch {
		case idx < order:
			vals[i] = initVals[idx]
		case order == 1:
			vals[i] += yMin + prev
		default:
			vals[i] += yMin + 2*prev - prev2
		}

		prev2 = prev
		prev = vals[i]
		idx++
	}
}

// signMagOctets decodes a whole-octet sign-magnitude integer, the layout
// of the spatial differencing descriptors.
func signMagOctets(b []byte) int64 {
	var raw uint64
	for _, c := range b {
		raw = raw<<8 | uint64(c)
	}

	return bitio.SignMagnitude(raw, len(b)*8)
}
