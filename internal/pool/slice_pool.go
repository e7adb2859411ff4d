package pool

import "sync"

// int64SlicePool recycles the integer scratch the unpackers fill while
// reconstructing group values. The scratch lives only for one Unpack
// call, which makes it a good pooling candidate for large fields.
var int64SlicePool = sync.Pool{
	New: func() any { return &[]int64{} },
}

// GetInt64Slice retrieves and resizes an int64 slice from the pool.
//
// The returned slice has exactly the requested length and carries
// whatever values the previous user left behind; callers must write
// every element before reading. The cleanup function returns the slice
// to the pool and is typically deferred.
//
// Example:
//
//	vals, cleanup := pool.GetInt64Slice(numPoints)
//	defer cleanup()
//	// Fill and use vals...
func GetInt64Slice(size int) ([]int64, func()) {
	ptr, _ := int64SlicePool.Get().(*[]int64)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]int64, size)
		*ptr = slice
	} else {
		slice = slice[:size]
		*ptr = slice
	}

	return slice, func() { int64SlicePool.Put(ptr) }
}
