package message

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cubewire/grib/errs"
	"github.com/cubewire/grib/format"
	"github.com/cubewire/grib/internal/hash"
	"github.com/cubewire/grib/tables"
)

// InventoryEntry is the one-line summary of a framed message: enough to
// identify the product without unpacking its data. Multi-field edition 2
// messages are summarized by their first field, with NumFields counting
// the rest.
type InventoryEntry struct {
	Index  int
	Offset int64

	Edition format.Edition
	Centre  uint16

	Param tables.Parameter
	Level Level

	RefTime   time.Time
	ValidTime time.Time
	Interval  time.Duration

	// StatProcess is the statistical process code; 0xFF when the field
	// is instantaneous.
	StatProcess uint8

	// NumFields counts the data sections in the message.
	NumFields int

	// Digest is the xxHash64 of the complete message octets, usable as a
	// dedup key across archives.
	Digest uint64
}

// Key returns a stable identity for the physical product: parameter and
// level, independent of time and stream position. Fields carrying the
// same quantity on the same surface share a key across files.
func (e *InventoryEntry) Key() uint64 {
	return hash.ID(fmt.Sprintf("%d:%d:%d:%s",
		e.Param.Discipline, e.Param.Category, e.Param.Number, e.Level))
}

// String renders the colon-separated inventory line:
// index:offset:edition:parameter:level:d=reftime:validity.
func (e *InventoryEntry) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%d:%d:%s:%s:%s:%s", e.Index, e.Offset, e.Edition,
		e.Param, e.Level, e.RefTime.UTC().Format("d=2006010215"))

	switch {
	case e.StatProcess != 0xFF:
		fmt.Fprintf(&b, ":%s over %s", tables.StatProcessName(e.StatProcess), spanString(e.Interval))
	case e.ValidTime.After(e.RefTime):
		fmt.Fprintf(&b, ":fcst %s", spanString(e.ValidTime.Sub(e.RefTime)))
	default:
		b.WriteString(":anl")
	}

	if e.NumFields > 1 {
		fmt.Fprintf(&b, ":%d fields", e.NumFields)
	}

	return b.String()
}

// spanString renders whole-hour spans as a bare hour count, the common
// case in forecast suites.
func spanString(d time.Duration) string {
	if d%time.Hour == 0 {
		return fmt.Sprintf("%dh", int(d/time.Hour))
	}

	return d.String()
}

// Summarize reads one framed message's headers into an inventory entry.
// The data payload stays untouched, so summarizing is cheap and also
// works for messages whose packing or grid template the decoder rejects.
func Summarize(raw *Raw) (*InventoryEntry, error) {
	e := &InventoryEntry{
		Index:       raw.Index,
		Offset:      raw.Offset,
		Edition:     raw.Edition,
		StatProcess: 0xFF,
		NumFields:   1,
		Digest:      raw.Checksum(),
	}

	switch raw.Edition {
	case format.Edition2:
		if err := summarize2(raw, e); err != nil {
			return nil, err
		}
	case format.Edition1:
		if err := summarize1(raw, e); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: edition %d", errs.ErrUnsupportedEdition, raw.Edition)
	}

	return e, nil
}

func summarize2(raw *Raw, e *InventoryEntry) error {
	id, fields, err := walk2(raw)
	if err != nil {
		return err
	}

	pf, err := fields[0].product.Fields()
	if err != nil {
		return err
	}

	valid, span, stat, err := timing2(id.ReferenceTime, pf)
	if err != nil {
		return err
	}

	e.Centre = id.Centre
	e.NumFields = len(fields)
	e.Param = tables.LookupParameter(uint8(raw.Discipline), pf.ParameterCategory, pf.ParameterNumber)
	e.Level = levelFrom2(pf.FirstSurface, pf.SecondSurface)
	e.RefTime = id.ReferenceTime
	e.ValidTime = valid
	e.Interval = span
	e.StatProcess = stat

	return nil
}

func summarize1(raw *Raw, e *InventoryEntry) error {
	f, err := walk1(raw)
	if err != nil {
		return err
	}

	pds := f.pds

	tr, err := tables.TranslateTimeRange1(pds.TimeRangeIndicator, pds.P1, pds.P2, pds.TimeUnit)
	if err != nil {
		return err
	}

	e.Centre = uint16(pds.Centre)
	e.Param = tables.LookupParameter1(pds.TableVersion, pds.Parameter)
	e.Level = levelFrom1(pds)
	e.RefTime = pds.ReferenceTime
	e.ValidTime = pds.ReferenceTime.Add(tr.Offset)
	e.Interval = tr.Length
	e.StatProcess = tr.StatProcess

	return nil
}

// Inventory scans the stream and summarizes every message in order. The
// first message that cannot be summarized ends the walk, returning the
// entries gathered so far alongside the error.
func Inventory(r io.ReaderAt) ([]*InventoryEntry, error) {
	var entries []*InventoryEntry

	for raw, err := range NewScanner(r).Messages() {
		if err != nil {
			return entries, err
		}

		entry, err := Summarize(raw)
		if err != nil {
			return entries, fmt.Errorf("message %d at offset %d: %w", raw.Index, raw.Offset, err)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}
