package utils

import (
	"bytes"
	"sync"
)

// MaxPooledBufferSize caps the capacity of buffers returned to the pool.
const MaxPooledBufferSize = 64 * 1024

// BufferPool manages reusable bytes.Buffer objects to cut allocations in
// the render hot path.
type BufferPool struct {
	pool sync.Pool
}

// NewBufferPool creates a new BufferPool.
func NewBufferPool() *BufferPool {
	return &BufferPool{
		pool: sync.Pool{
			New: func() interface{} {
				return new(bytes.Buffer)
			},
		},
	}
}

// Get retrieves a buffer from the pool.
func (p *BufferPool) Get() *bytes.Buffer {
	return p.pool.Get().(*bytes.Buffer)
}

// Put returns a buffer to the pool, resetting it for reuse. Oversized
// buffers are discarded to prevent memory hoarding.
func (p *BufferPool) Put(buf *bytes.Buffer) {
	if buf.Cap() > MaxPooledBufferSize {
		return
	}
	buf.Reset()
	p.pool.Put(buf)
}

// SharedBufferPool is the process-wide buffer pool.
var SharedBufferPool = NewBufferPool()
