package message

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/cubewire/grib/errs"
	"github.com/cubewire/grib/internal/pool"
	"github.com/cubewire/grib/section"
)

// Scanner finds messages in a byte stream. Archives commonly carry
// messages back to back with interleaved headers or padding between
// them, so the scanner hunts for the "GRIB" magic rather than assuming
// alignment, and resynchronizes after a corrupt message instead of
// abandoning the rest of the stream.
//
// The scanner itself holds no position; every Messages call walks the
// stream from the beginning.
type Scanner struct {
	r io.ReaderAt
}

// NewScanner creates a Scanner over r.
func NewScanner(r io.ReaderAt) *Scanner {
	return &Scanner{r: r}
}

// Messages returns an iterator over the framed messages in the stream,
// in stream order. Each message's octets are freshly allocated, so a
// retained Raw stays valid after iteration moves on.
//
// A message with a valid indicator but a missing end marker yields a nil
// Raw with errs.ErrMalformedMessage and scanning resumes past its
// magic. A stream that ends inside a declared message, or with a tail
// too short to probe for the magic, yields errs.ErrTruncatedStream and
// stops, as nothing can follow the gap.
func (s *Scanner) Messages() iter.Seq2[*Raw, error] {
	return s.scan
}

func (s *Scanner) scan(yield func(*Raw, error) bool) {
	magic := []byte(section.Magic)

	buf := pool.GetScanBuffer()
	defer pool.PutScanBuffer(buf)

	buf.ExtendOrGrow(pool.ScanBufferDefaultSize)
	window := buf.Bytes()

	var (
		off   int64
		index int
	)

	for {
		n, readErr := s.r.ReadAt(window, off)
		if n == 0 {
			if readErr == nil || errors.Is(readErr, io.EOF) {
				return
			}
			yield(nil, fmt.Errorf("read at offset %d: %w", off, readErr))

			return
		}

		atEOF := errors.Is(readErr, io.EOF)
		if readErr != nil && !atEOF {
			yield(nil, fmt.Errorf("read at offset %d: %w", off, readErr))

			return
		}

		i := bytes.Index(window[:n], magic)
		if i < 0 {
			if atEOF {
				// A remainder shorter than the magic cannot even be probed
				// for a message start.
				if n < len(magic) {
					yield(nil, fmt.Errorf("%w: %d stray octets at offset %d before end of stream",
						errs.ErrTruncatedStream, n, off))
				}

				return
			}
			// Overlap the windows so a magic split across the boundary is
			// still found.
			off += int64(n - len(magic) + 1)

			continue
		}

		start := off + int64(i)

		// Realign the window so the indicator sits wholly inside it.
		if n-i < section.IndicatorLen2 && !atEOF {
			off = start

			continue
		}

		var ind section.Indicator
		if err := ind.Parse(window[i:n]); err != nil {
			if errors.Is(err, errs.ErrTruncatedStream) {
				// The stream ends inside the indicator.
				yield(nil, fmt.Errorf("offset %d: %w", start, err))

				return
			}
			// Stray magic: an unsupported edition octet or an impossible
			// length means this was not a message start.
			off = start + int64(len(magic))

			continue
		}

		total := int64(ind.TotalLength) //nolint:gosec

		// Probe the end marker before committing to the allocation; a
		// corrupt length must not buy a matching buffer.
		endOff := start + total - int64(section.EndLen)
		end := make([]byte, section.EndLen)
		if _, err := s.r.ReadAt(end, endOff); err != nil {
			if errors.Is(err, io.EOF) {
				yield(nil, fmt.Errorf("%w: message at offset %d declares %d octets beyond end of stream",
					errs.ErrTruncatedStream, start, total))

				return
			}
			yield(nil, fmt.Errorf("read at offset %d: %w", endOff, err))

			return
		}
		if !section.IsEnd(end) {
			if !yield(nil, fmt.Errorf("%w: message at offset %d of %d octets does not end in %q",
				errs.ErrMalformedMessage, start, total, section.EndMagic)) {
				return
			}
			off = start + int64(len(magic))

			continue
		}

		data := make([]byte, total)
		if _, err := s.r.ReadAt(data, start); err != nil {
			yield(nil, fmt.Errorf("read message at offset %d: %w", start, err))

			return
		}

		raw, err := frameAt(data, start, index)
		if err != nil {
			if !yield(nil, fmt.Errorf("offset %d: %w", start, err)) {
				return
			}
			off = start + int64(len(magic))

			continue
		}

		if !yield(raw, nil) {
			return
		}
		index++
		off = start + total
	}
}
