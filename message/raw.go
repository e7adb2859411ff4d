package message

import (
	"fmt"

	"github.com/cubewire/grib/errs"
	"github.com/cubewire/grib/format"
	"github.com/cubewire/grib/internal/hash"
	"github.com/cubewire/grib/section"
)

// Raw is one framed message: the complete octets from "GRIB" through
// "7777", plus where it sat in the source stream. Data aliases the
// framed region; callers that retain a Raw beyond the life of the source
// buffer should copy it.
type Raw struct {
	Data []byte

	// Offset is the byte position of the indicator in the source stream.
	Offset int64

	// Index is the ordinal of the message within its stream, counting
	// only successfully framed messages.
	Index int

	Edition    format.Edition
	Discipline format.Discipline
}

// TotalLength returns the framed length in octets.
func (r *Raw) TotalLength() int {
	return len(r.Data)
}

// Checksum returns an xxHash64 digest of the complete message octets.
// Two messages with the same digest are byte-identical for practical
// purposes, which makes the digest a usable dedup key across archives.
func (r *Raw) Checksum() uint64 {
	return hash.Checksum(r.Data)
}

// Frame reads one message from the head of data. The indicator must
// start at data[0]; anything short of the declared total length reports
// errs.ErrTruncatedStream, and a missing end marker reports
// errs.ErrMalformedMessage. The returned Raw aliases data.
func Frame(data []byte) (*Raw, error) {
	return frameAt(data, 0, 0)
}

func frameAt(data []byte, offset int64, index int) (*Raw, error) {
	var ind section.Indicator
	if err := ind.Parse(data); err != nil {
		return nil, err
	}

	total := int(ind.TotalLength) //nolint:gosec
	if total < 0 || len(data) < total {
		return nil, fmt.Errorf("%w: message declares %d octets, %d available",
			errs.ErrTruncatedStream, ind.TotalLength, len(data))
	}
	if !section.IsEnd(data[total-section.EndLen : total]) {
		return nil, fmt.Errorf("%w: message of %d octets does not end in %q",
			errs.ErrMalformedMessage, total, section.EndMagic)
	}

	return &Raw{
		Data:       data[:total],
		Offset:     offset,
		Index:      index,
		Edition:    ind.Edition,
		Discipline: ind.Discipline,
	}, nil
}
