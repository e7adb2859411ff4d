// Package grib reads and writes GRIB, the WMO's binary format for
// gridded meteorological fields.
//
// Both GRIB editions in circulation are supported: edition 2 fully, and
// the edition 1 messages still produced by long-running archives on the
// read side. Decoding turns raw message octets into physical grids with
// translated metadata; values come back as float64 in a canonical
// west-to-east, south-to-north order regardless of how the producer
// scanned the field.
//
// # Core Features
//
//   - Stream scanning that tolerates interleaved headers, padding, and
//     corrupt messages between valid ones
//   - Simple, complex, complex spatial-differencing, PNG and IEEE
//     packing on the read side; simple, PNG and IEEE on the write side
//   - Bitmap handling, including bitmap reuse within a message
//   - Parameter, level and time-range translation to CF-style names
//   - Parallel decoding of multi-message streams
//   - Inventory summaries without touching the packed payload
//
// # Basic Usage
//
// Decoding every field from a file:
//
//	import "github.com/cubewire/grib"
//
//	f, _ := os.Open("forecast.grib2")
//	defer f.Close()
//
//	results, err := grib.DecodeAll(f)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, res := range results {
//	    for _, g := range res.Grids {
//	        fmt.Printf("%s at %s: %d values\n", g.Param.Name, g.Level, len(g.Values()))
//	    }
//	}
//
// Encoding a field as an edition 2 message:
//
//	msg, err := grib.Encode(g, message.WithDecimalScale(2))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("out.grib2", msg, 0o644)
//
// Listing a file without decoding it:
//
//	entries, _ := grib.Inventory(f)
//	for _, e := range entries {
//	    fmt.Println(e)
//	}
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the message
// package, simplifying the most common use cases. For finer control, the
// layered packages underneath are all public: message (framing, decode,
// encode, scan), section (the per-section wire codecs), packing (the
// data representation templates), grids (geometry resolution), and
// tables (code table translation).
package grib

import (
	"io"

	"github.com/cubewire/grib/message"
)

// Decode frames one message from the head of data and assembles its
// physical grids.
//
// This is the one-call path for data already in memory. Edition 2
// messages may carry several fields and yield several grids; edition 1
// messages yield exactly one. Bytes after the message's declared length
// are ignored, so a buffer holding a whole file decodes its first
// message.
//
// Parameters:
//   - data: Raw message octets, starting with the "GRIB" magic.
//
// Returns:
//   - []*message.PhysicalGrid: One decoded grid per field.
//   - error: Framing, section, or unpacking failure.
//
// Example:
//
//	data, _ := os.ReadFile("single_message.grib2")
//	grids, err := grib.Decode(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%s: %v\n", grids[0].Param.Name, grids[0].Field.Shape)
func Decode(data []byte) ([]*message.PhysicalGrid, error) {
	return message.Decode(data)
}

// NewDecoder frames the message at the head of data and returns a
// decoder bound to it.
//
// Use this instead of Decode when the framing metadata matters before
// the cost of decoding is paid: the decoder exposes the raw message and
// its edition up front.
//
// Parameters:
//   - data: Raw message octets, starting with the "GRIB" magic.
//
// Returns:
//   - *message.Decoder: A decoder bound to the framed message.
//   - error: A framing failure; section errors surface from Decode.
func NewDecoder(data []byte) (*message.Decoder, error) {
	return message.NewDecoder(data)
}

// NewEncoder creates an encoder for writing physical grids as edition 2
// messages.
//
// The zero-configuration encoder uses simple packing with a bit width
// derived from the value range, and extracts NaN points into a bitmap
// section.
//
// Available options:
//   - message.WithPacking(format.PackingSimple|PackingPNG|PackingIEEE)
//   - message.WithDecimalScale(factor)
//   - message.WithBitWidth(bits)
//   - message.WithBitmap(enabled)
//
// Parameters:
//   - opts: Optional configuration functions (see message.EncoderOption)
//
// Returns:
//   - *message.Encoder: The created encoder.
//   - error: An error if the configuration is invalid.
//
// Example:
//
//	enc, err := grib.NewEncoder(
//	    message.WithPacking(format.PackingPNG),
//	    message.WithDecimalScale(1),
//	)
func NewEncoder(opts ...message.EncoderOption) (*message.Encoder, error) {
	return message.NewEncoder(opts...)
}

// Encode serializes one physical grid as a complete edition 2 message
// using a freshly configured encoder.
//
// This is the one-call path for writing a single field. When several
// fields share a configuration, build one encoder with NewEncoder and
// reuse it.
//
// Parameters:
//   - g: The field to encode; its Coords must describe a regular grid.
//   - opts: Optional configuration functions (see message.EncoderOption)
//
// Returns:
//   - []byte: The complete message, "GRIB" through "7777".
//   - error: Configuration or encoding failure.
func Encode(g *message.PhysicalGrid, opts ...message.EncoderOption) ([]byte, error) {
	enc, err := message.NewEncoder(opts...)
	if err != nil {
		return nil, err
	}

	return enc.Encode(g)
}

// NewScanner creates a scanner that finds messages in a byte stream.
//
// The scanner hunts for the "GRIB" magic rather than assuming alignment,
// so streams with interleaved transmission headers or padding between
// messages scan cleanly. A corrupt message yields an error and scanning
// resynchronizes past it.
//
// Parameters:
//   - r: The stream; a file, bytes.Reader, or any io.ReaderAt.
//
// Returns:
//   - *message.Scanner: The created scanner.
//
// Example:
//
//	sc := grib.NewScanner(f)
//	for raw, err := range sc.Messages() {
//	    if err != nil {
//	        log.Printf("skipping: %v", err)
//	        continue
//	    }
//	    fmt.Printf("message %d at offset %d\n", raw.Index, raw.Offset)
//	}
func NewScanner(r io.ReaderAt) *message.Scanner {
	return message.NewScanner(r)
}

// DecodeAll scans the stream and decodes every message in order.
//
// A message that frames but fails to decode lands in its Result with Err
// set and the walk continues; scanning problems end the walk and are
// returned alongside the results gathered so far.
//
// Parameters:
//   - r: The stream; a file, bytes.Reader, or any io.ReaderAt.
//
// Returns:
//   - []message.Result: One result per framed message, in stream order.
//   - error: The scanning failure that ended the walk, if any.
func DecodeAll(r io.ReaderAt) ([]message.Result, error) {
	return message.DecodeAll(r)
}

// DecodeAllParallel is DecodeAll with the per-message decoding fanned
// out across workers.
//
// Messages are independent once framed, so multi-message streams decode
// near-linearly with the worker count until the stream read becomes the
// bottleneck. Results come back in stream order regardless of which
// worker finished first.
//
// Parameters:
//   - r: The stream; a file, bytes.Reader, or any io.ReaderAt.
//   - workers: Decoder goroutines; at or below zero means one per CPU.
//
// Returns:
//   - []message.Result: One result per framed message, in stream order.
//   - error: The scanning failure that ended the walk, if any.
//
// Example:
//
//	results, err := grib.DecodeAllParallel(f, runtime.NumCPU())
func DecodeAllParallel(r io.ReaderAt, workers int) ([]message.Result, error) {
	return message.DecodeAllParallel(r, workers)
}

// Inventory scans the stream and summarizes every message without
// unpacking any data.
//
// Each entry renders as a wgrib-style colon-separated line and carries a
// content digest usable as a dedup key across archives. Summaries work
// even for messages whose packing template the decoder rejects, since
// the payload stays untouched.
//
// Parameters:
//   - r: The stream; a file, bytes.Reader, or any io.ReaderAt.
//
// Returns:
//   - []*message.InventoryEntry: One entry per message, in stream order.
//   - error: The failure that ended the walk, if any.
//
// Example:
//
//	entries, _ := grib.Inventory(f)
//	for _, e := range entries {
//	    fmt.Println(e)
//	}
//
// Output:
//
//	0:0:GRIB2:air_temperature [K]:pressure 85000 Pa:d=2024031512:fcst 6h
//	1:203:GRIB2:precipitation_amount [kg m-2]:surface:d=2024031512:accumulation over 6h
func Inventory(r io.ReaderAt) ([]*message.InventoryEntry, error) {
	return message.Inventory(r)
}
