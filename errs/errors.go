// Package errs defines the sentinel errors shared across the grib packages.
//
// Errors are organized by the layer that raises them. Callers are expected to
// match with errors.Is; lower layers wrap these sentinels with positional
// context using fmt.Errorf("%w: ...").
package errs

import "errors"

// Stream and framing errors.
var (
	// ErrTruncatedStream indicates that a declared length exceeds the bytes
	// actually available, either in a section body, a packed payload, or the
	// underlying byte source.
	ErrTruncatedStream = errors.New("truncated stream")

	// ErrNoIndicator indicates that the bytes at a scan position do not start
	// with the "GRIB" magic.
	ErrNoIndicator = errors.New("missing GRIB indicator")

	// ErrUnsupportedEdition indicates an edition number other than 1 or 2.
	ErrUnsupportedEdition = errors.New("unsupported GRIB edition")
)

// Section-level errors.
var (
	// ErrMalformedSection indicates a structural violation inside a single
	// section: a declared length inconsistent with the message boundary, or a
	// fixed field with an impossible value.
	ErrMalformedSection = errors.New("malformed section")

	// ErrMalformedMessage indicates a structural violation at message scope:
	// sections out of order, a missing required section, or a bad end marker.
	ErrMalformedMessage = errors.New("malformed message")

	// ErrUnknownSection indicates a section number outside the known set.
	// Decoding preserves such sections as opaque bytes; encoding refuses them.
	ErrUnknownSection = errors.New("unknown section number")

	// ErrUnknownTemplate indicates a template number with no registered
	// layout. Decoding keeps the template body opaque where feasible.
	ErrUnknownTemplate = errors.New("unknown template number")
)

// Data representation errors.
var (
	// ErrUnsupportedPacking indicates a recognized data representation
	// template that this codec does not implement. The message is rejected
	// rather than decoded into wrong values.
	ErrUnsupportedPacking = errors.New("unsupported packing template")

	// ErrPrecisionOverflow indicates that the requested decimal/binary scale
	// combination cannot represent the value range within the maximum packing
	// width. Raised on the encode path before any bytes are emitted.
	ErrPrecisionOverflow = errors.New("precision overflow")

	// ErrBitmapMismatch indicates that the bitmap set-bit count disagrees with
	// the packed value count.
	ErrBitmapMismatch = errors.New("bitmap/data mismatch")

	// ErrGridSizeMismatch indicates that the unpacked value count disagrees
	// with the grid definition point count.
	ErrGridSizeMismatch = errors.New("grid size mismatch")
)

// Grid translation errors.
var (
	// ErrUnsupportedGrid indicates a grid definition template with no
	// registered coordinate strategy.
	ErrUnsupportedGrid = errors.New("unsupported grid template")

	// ErrUnsupportedScanning indicates a scanning-mode flag combination the
	// normalizer cannot express (alternating row direction).
	ErrUnsupportedScanning = errors.New("unsupported scanning mode")
)

// Encode-path errors.
var (
	// ErrEmptyGrid indicates an encode request carrying no data points.
	ErrEmptyGrid = errors.New("empty grid")

	// ErrNotEncodable indicates a grid whose coordinate structure matches no
	// grid definition template on the encode path.
	ErrNotEncodable = errors.New("grid not encodable")
)
