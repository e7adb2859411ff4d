// Package hash derives the fixed-size identifiers used for message
// bookkeeping: inventory keys from rendered entry lines and content
// digests from complete message octets. Both are xxHash64, chosen for
// speed over streams in the tens-of-kilobytes range a typical message
// occupies.
package hash

import "github.com/cespare/xxhash/v2"

// ID hashes a key string to its fixed-size identifier.
func ID(data string) uint64 {
	return xxhash.Sum64String(data)
}

// Checksum hashes raw octets to a content digest.
func Checksum(data []byte) uint64 {
	return xxhash.Sum64(data)
}
