// Package message assembles GRIB sections into physical grids and back.
//
// This package is the primary interface for reading and writing GRIB data.
// It frames messages out of byte streams, walks their sections in the
// order the edition prescribes, and pairs the unpacked values with the
// coordinates, parameter identity, and time metadata they describe.
//
// # Core Types
//
// **Raw**: one framed message, "GRIB" through "7777", with its stream
// position. Produced by Scanner or by framing a byte slice directly.
//
// **PhysicalGrid**: the decoded product of one field. Values live in a
// dense array in canonical orientation (rows south to north, columns west
// to east), alongside resolved coordinates, parameter, level, and times.
//
// **Decoder**: turns a Raw into PhysicalGrids. Edition 2 messages may
// repeat sections 2-7 and yield several grids; edition 1 messages carry
// exactly one.
//
// **Encoder**: builds an edition 2 message from a PhysicalGrid. Packing,
// precision, and bitmap handling are configured through functional
// options.
//
// **Scanner**: walks a stream lazily, yielding each framed message while
// tolerating the header and padding octets archives wrap around them.
//
// # Decoding Workflow
//
//	sc := message.NewScanner(file)
//	for raw, err := range sc.Messages() {
//	    if err != nil {
//	        return err
//	    }
//	    grids, err := raw.Decode()
//	    ...
//	}
//
// Or, for whole streams, DecodeAll collects every message and
// DecodeAllParallel spreads the section walking and bit unpacking over a
// worker pool, returning results in stream order either way.
//
// # Encoding Workflow
//
//	enc, err := message.NewEncoder(
//	    message.WithPacking(format.PackingSimple),
//	    message.WithDecimalScale(2),
//	)
//	msg, err := enc.Encode(grid)
//
// Encoding is whole-message-or-nothing: the returned octets are a
// complete, framed message, and no partial output is ever produced.
package message
