package columntable

import (
	"github.com/INLOpen/columnbase/core"
)

// DefaultBlockRestartInterval is the number of entries between restart
// points in data blocks.
const DefaultBlockRestartInterval = 16

// DataBlockBuilder is the shared surface of the row-wise BlockBuilder and
// the ColumnBlockBuilder.
type DataBlockBuilder interface {
	// Add appends an entry. Keys must be strictly increasing under the
	// builder's comparator; a violation latches InvalidArgument and the
	// entry is dropped.
	Add(key, value []byte) error

	// Finish seals the block and returns its contents. The returned slice
	// stays valid until Reset.
	Finish() []byte

	// Reset prepares the builder for a fresh block.
	Reset()

	Empty() bool

	// CurrentSizeEstimate is the byte size of the block were Finish called
	// now.
	CurrentSizeEstimate() int

	// EstimateSizeAfterKV is the size estimate with one more entry added.
	EstimateSizeAfterKV(key, value []byte) int

	// IsKeyStored reports whether the next Add would physically store the
	// key bytes. Column blocks omit keys between restart points.
	IsKeyStored() bool
}

// BlockBuilder emits a prefix-compressed block:
//
//	entry*: varint shared | varint nonShared | varint valueLen |
//	        nonSharedKey | value
//	trailer: fixed32 restartOffset * numRestarts | fixed32 numRestarts
//
// Every restartInterval-th entry stores its full key and its offset is
// recorded as a restart point, the anchor for binary search.
type BlockBuilder struct {
	restartInterval int
	cmp             core.Comparator

	buf      []byte
	restarts []uint32
	counter  int
	finished bool
	lastKey  []byte
	err      error
}

var _ DataBlockBuilder = (*BlockBuilder)(nil)

// NewBlockBuilder creates a builder with the given restart interval. cmp
// may be nil to skip ordering enforcement (index blocks order by
// construction).
func NewBlockBuilder(restartInterval int, cmp core.Comparator) *BlockBuilder {
	if restartInterval < 1 {
		restartInterval = 1
	}
	return &BlockBuilder{
		restartInterval: restartInterval,
		cmp:             cmp,
		restarts:        []uint32{0},
	}
}

func (b *BlockBuilder) Add(key, value []byte) error {
	if b.err != nil {
		return b.err
	}
	if b.finished {
		b.err = core.InvalidArgumentf("Add after Finish")
		return b.err
	}
	if b.cmp != nil && len(b.lastKey) > 0 && b.cmp.Compare(key, b.lastKey) <= 0 {
		b.err = core.InvalidArgumentf("keys must be added in strictly increasing order")
		return b.err
	}

	shared := 0
	if b.counter < b.restartInterval {
		n := len(b.lastKey)
		if len(key) < n {
			n = len(key)
		}
		for shared < n && key[shared] == b.lastKey[shared] {
			shared++
		}
	} else {
		b.restarts = append(b.restarts, uint32(len(b.buf)))
		b.counter = 0
	}

	b.buf = core.AppendUvarint(b.buf, uint64(shared))
	b.buf = core.AppendUvarint(b.buf, uint64(len(key)-shared))
	b.buf = core.AppendUvarint(b.buf, uint64(len(value)))
	b.buf = append(b.buf, key[shared:]...)
	b.buf = append(b.buf, value...)

	b.lastKey = append(b.lastKey[:0], key...)
	b.counter++
	return nil
}

func (b *BlockBuilder) Finish() []byte {
	for _, r := range b.restarts {
		b.buf = core.AppendFixed32(b.buf, r)
	}
	b.buf = core.AppendFixed32(b.buf, uint32(len(b.restarts)))
	b.finished = true
	return b.buf
}

func (b *BlockBuilder) Reset() {
	b.buf = b.buf[:0]
	b.restarts = b.restarts[:1]
	b.restarts[0] = 0
	b.counter = 0
	b.finished = false
	b.lastKey = b.lastKey[:0]
	b.err = nil
}

func (b *BlockBuilder) Empty() bool { return len(b.buf) == 0 }

func (b *BlockBuilder) CurrentSizeEstimate() int {
	return len(b.buf) + len(b.restarts)*4 + 4
}

func (b *BlockBuilder) EstimateSizeAfterKV(key, value []byte) int {
	est := b.CurrentSizeEstimate() + len(key) + len(value)
	if b.counter >= b.restartInterval {
		est += 4 // fresh restart point
	}
	// Three varint headers, conservatively sized.
	return est + 3*5
}

func (b *BlockBuilder) IsKeyStored() bool { return true }

// Err returns the latched ordering error, if any.
func (b *BlockBuilder) Err() error { return b.err }
