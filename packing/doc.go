// Package packing converts between packed data section payloads and
// float64 fields.
//
// Each data representation template gets a codec: an Unpacker built from
// the raw template octets of section 5, and for the encodable templates
// a Packer that quantizes a field and emits both the template and the
// payload. All codecs share the scale formula
//
//	Y = (R + X*2^E) / 10^D
//
// where R is the reference value, E the binary scale factor, D the
// decimal scale factor and X the packed integer. Missing points are
// math.NaN in the unpacked field; bitmap expansion and extraction live
// here as well so both editions share them.
package packing
