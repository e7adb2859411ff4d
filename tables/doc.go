// Package tables holds the static WMO code table subsets the codec needs:
// parameter identities, fixed surface types, time units, time range
// semantics, and originating centre names.
//
// All tables are package-level literals, never mutated after init, and safe
// for concurrent readers. Lookups never fail: codes outside the tables
// synthesize an identity that carries the raw codes through, so unknown
// products survive a decode/encode round trip.
package tables
