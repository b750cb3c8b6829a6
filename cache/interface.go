package cache

import "expvar"

// Interface is the block cache consulted by table readers. Keys identify a
// block as "<fileNumber>-<blockOffset>" in a main file and as
// "<fileNumber>.C<i>-<blockOffset>" in subcolumn i; values are
// decompressed block contents. Implementations must be safe for
// concurrent use.
type Interface interface {
	Put(key string, value []byte)
	Get(key string) (value []byte, ok bool)
	Clear()
	Len() int
	GetHitRate() float64
	SetMetrics(hits, misses *expvar.Int)
}
