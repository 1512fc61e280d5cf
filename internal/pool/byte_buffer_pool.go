// Package pool provides a reusable growable byte buffer for the writer's per-field
// symbol and record-section assembly, adapted from the teacher's blob buffer pool. The
// writer copies each field's encoded symbol block and the encoded record section into
// pooled buffers and returns them once the file is written, so repeated WriteFile
// calls reuse the buffers' backing arrays.
package pool

import "sync"

const (
	// DefaultBufferSize is the initial capacity of a buffer fetched fresh from the
	// pool, sized for a moderate symbol table (spec.md §4.2 columns commonly run a
	// few thousand distinct text symbols).
	DefaultBufferSize = 1024 * 16
	// MaxRetainedSize is the largest buffer capacity the pool will keep; a buffer
	// that grew past this during one column's encoding is discarded rather than
	// retained, so one wide table does not bloat the pool for every table after it.
	MaxRetainedSize = 1024 * 1024 * 8
)

// ByteBuffer is a growable []byte wrapper with the append/grow helpers the section
// codecs need.
type ByteBuffer struct {
	B []byte
}

// NewByteBuffer returns a ByteBuffer with the given initial capacity.
func NewByteBuffer(size int) *ByteBuffer {
	return &ByteBuffer{B: make([]byte, 0, size)}
}

// Bytes returns the buffer's current contents.
func (bb *ByteBuffer) Bytes() []byte { return bb.B }

// Len returns the number of bytes written so far.
func (bb *ByteBuffer) Len() int { return len(bb.B) }

// Reset empties the buffer while retaining its backing array.
func (bb *ByteBuffer) Reset() { bb.B = bb.B[:0] }

// Write appends data to the buffer, growing it as needed. It always returns
// len(data), nil, satisfying io.Writer.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.B = append(bb.B, data...)
	return len(data), nil
}

// BufferPool is a sync.Pool of ByteBuffers, discarding buffers that grew past
// maxThreshold instead of returning them to the pool.
type BufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewBufferPool returns a BufferPool whose fresh buffers start at defaultSize and
// whose Put discards any buffer with capacity over maxThreshold.
func NewBufferPool(defaultSize, maxThreshold int) *BufferPool {
	return &BufferPool{
		pool: sync.Pool{
			New: func() any { return NewByteBuffer(defaultSize) },
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves a ByteBuffer from the pool.
func (p *BufferPool) Get() *ByteBuffer {
	bb, _ := p.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns bb to the pool, unless it grew past the pool's retention threshold.
func (p *BufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}
	if p.maxThreshold > 0 && cap(bb.B) > p.maxThreshold {
		return
	}

	bb.Reset()
	p.pool.Put(bb)
}

var defaultPool = NewBufferPool(DefaultBufferSize, MaxRetainedSize)

// Get retrieves a ByteBuffer from the package's default pool.
func Get() *ByteBuffer { return defaultPool.Get() }

// Put returns a ByteBuffer to the package's default pool.
func Put(bb *ByteBuffer) { defaultPool.Put(bb) }
