package core

import (
	"bytes"
	"sync"
	"sync/atomic"
)

// bufferPool is a GC-stable pool of byte buffers. Unlike sync.Pool its
// contents survive garbage collection, which keeps large decompression
// buffers warm across long scans.
type bufferPool struct {
	mu      sync.Mutex
	items   []*bytes.Buffer
	initCap int

	hits    atomic.Uint64
	misses  atomic.Uint64
	created atomic.Uint64
}

// DefaultBlockBufferSize is the pre-allocated capacity of pooled buffers,
// sized for a typical uncompressed data block.
const DefaultBlockBufferSize = 4 * 1024

// BufferPool is the shared pool used when reading raw blocks from disk.
var BufferPool = NewBufferPool(DefaultBlockBufferSize)

// NewBufferPool creates a pool whose fresh buffers have the given capacity.
func NewBufferPool(initialCapacity int) *bufferPool {
	return &bufferPool{initCap: initialCapacity}
}

// Get returns an empty buffer, reusing a pooled one when available.
func (p *bufferPool) Get() *bytes.Buffer {
	p.mu.Lock()
	if n := len(p.items); n > 0 {
		buf := p.items[n-1]
		p.items = p.items[:n-1]
		p.mu.Unlock()
		p.hits.Add(1)
		buf.Reset()
		return buf
	}
	p.mu.Unlock()
	p.misses.Add(1)
	p.created.Add(1)
	buf := &bytes.Buffer{}
	buf.Grow(p.initCap)
	return buf
}

// Put returns a buffer to the pool. Oversized buffers are dropped so a
// single huge block cannot pin memory forever.
func (p *bufferPool) Put(buf *bytes.Buffer) {
	if buf == nil || buf.Cap() > 64*p.initCap {
		return
	}
	p.mu.Lock()
	p.items = append(p.items, buf)
	p.mu.Unlock()
}

// Stats reports pool hit/miss/created counters.
func (p *bufferPool) Stats() (hits, misses, created uint64) {
	return p.hits.Load(), p.misses.Load(), p.created.Load()
}
