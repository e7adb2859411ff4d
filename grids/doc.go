// Package grids translates grid definition sections into coordinate
// vectors and back.
//
// Every supported template resolves to a Coordinates value: axis vectors
// in canonical orientation (rows south to north, columns west to east),
// the earth figure, and projection parameters where the grid is not
// geographic. Normalize reorders a decoded value stream into the same
// canonical orientation so data and coordinates always pair up the same
// way regardless of how the message scanned the grid.
package grids
