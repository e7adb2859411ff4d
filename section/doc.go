// Package section implements parsing and serialization of the GRIB section
// structures for editions 1 and 2.
//
// Each section type follows the same contract: a Parse method that consumes
// the complete section octets (header included) and a Bytes method that
// serializes the section back, recomputing the declared length from the
// actual content. Template bodies whose numbers are not recognized are kept
// as opaque octets so that messages survive a parse/serialize round trip
// unchanged.
//
// The package knows nothing about message ordering or data unpacking; the
// message package drives section sequencing, and the packing package
// interprets data representation templates and payloads.
package section
