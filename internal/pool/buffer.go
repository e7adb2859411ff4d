// Package pool provides recycled scratch memory for the codec's hot
// paths: assembly buffers for outgoing messages, sliding windows for
// stream scanning, and integer scratch for the unpackers.
package pool

import "sync"

// Buffer sizing. A message buffer holds one message while its sections
// are concatenated; single-field messages usually land in the tens of
// kilobytes. A scan buffer backs the window a Scanner slides over its
// source, so it is larger to keep read calls infrequent.
const (
	MessageBufferDefaultSize  = 1024 * 16  // 16KiB
	MessageBufferMaxThreshold = 1024 * 256 // 256KiB
	ScanBufferDefaultSize     = 1024 * 64  // 64KiB
	ScanBufferMaxThreshold    = 1024 * 512 // 512KiB
)

// ByteBuffer is a grow-only byte slice intended to be obtained from and
// returned to a ByteBufferPool.
type ByteBuffer struct {
	// B is the backing slice, exported for in-place patching; the
	// message assembler rewrites length octets after framing.
	B []byte
}

// Bytes returns the filled portion of the buffer.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Len returns the number of bytes written so far.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Reset empties the buffer but keeps its capacity for reuse.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// MustWrite appends data, growing the buffer as needed. Appends to a
// slice cannot fail, hence no error return.
func (bb *ByteBuffer) MustWrite(data []byte) {
	bb.B = append(bb.B, data...)
}

// ExtendOrGrow lengthens the buffer by n bytes, reallocating when the
// capacity runs out. Bytes gained from recycled capacity are not
// zeroed; callers overwrite them before reading.
func (bb *ByteBuffer) ExtendOrGrow(n int) {
	need := len(bb.B) + n
	if need > cap(bb.B) {
		bb.grow(need)
	}

	bb.B = bb.B[:need]
}

// grow reallocates to at least want capacity, doubling so repeated
// extends settle after a few rounds.
func (bb *ByteBuffer) grow(want int) {
	newCap := 2 * cap(bb.B)
	if newCap < want {
		newCap = want
	}

	next := make([]byte, len(bb.B), newCap)
	copy(next, bb.B)
	bb.B = next
}

// ByteBufferPool recycles ByteBuffers through a sync.Pool. Buffers that
// grew beyond maxThreshold are dropped on Put, so one oversized message
// cannot pin memory for the life of the process.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a pool whose fresh buffers have
// defaultSize capacity. A maxThreshold of zero disables the oversize
// check.
func NewByteBufferPool(defaultSize, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return &ByteBuffer{B: make([]byte, 0, defaultSize)}
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves an empty ByteBuffer from the pool.
func (p *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := p.pool.Get().(*ByteBuffer)

	return bb
}

// Put returns a ByteBuffer to the pool. Nil and oversized buffers are
// silently discarded.
func (p *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}

	if p.maxThreshold > 0 && cap(bb.B) > p.maxThreshold {
		return
	}

	bb.Reset()
	p.pool.Put(bb)
}

var (
	messagePool = NewByteBufferPool(MessageBufferDefaultSize, MessageBufferMaxThreshold)
	scanPool    = NewByteBufferPool(ScanBufferDefaultSize, ScanBufferMaxThreshold)
)

// GetMessageBuffer retrieves a buffer sized for assembling one message.
// Pair with PutMessageBuffer.
func GetMessageBuffer() *ByteBuffer {
	return messagePool.Get()
}

// PutMessageBuffer returns a message assembly buffer to its pool.
func PutMessageBuffer(bb *ByteBuffer) {
	messagePool.Put(bb)
}

// GetScanBuffer retrieves a buffer sized for a stream scan window. Pair
// with PutScanBuffer.
func GetScanBuffer() *ByteBuffer {
	return scanPool.Get()
}

// PutScanBuffer returns a scan window buffer to its pool.
func PutScanBuffer(bb *ByteBuffer) {
	scanPool.Put(bb)
}
