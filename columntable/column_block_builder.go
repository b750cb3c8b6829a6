package columntable

import (
	"github.com/INLOpen/columnbase/core"
)

// ColumnBlockBuilder emits subcolumn data blocks. Keys are 8-byte
// big-endian row positions that increase by exactly one per entry, so only
// the restart entry of each group stores its key; the entries between
// restarts encode shared=0, nonShared=0 and the reader recomputes the
// position as restart base plus ordinal.
type ColumnBlockBuilder struct {
	restartInterval int

	buf      []byte
	restarts []uint32
	counter  int
	finished bool
	lastKey  []byte
	err      error
}

var _ DataBlockBuilder = (*ColumnBlockBuilder)(nil)

// NewColumnBlockBuilder creates a column block builder.
func NewColumnBlockBuilder(restartInterval int) *ColumnBlockBuilder {
	if restartInterval < 1 {
		restartInterval = 1
	}
	return &ColumnBlockBuilder{
		restartInterval: restartInterval,
		restarts:        []uint32{0},
	}
}

func (b *ColumnBlockBuilder) Add(key, value []byte) error {
	if b.err != nil {
		return b.err
	}
	if b.finished {
		b.err = core.InvalidArgumentf("Add after Finish")
		return b.err
	}
	if len(key) != core.RowPositionLen {
		b.err = core.InvalidArgumentf("column block key must be %d bytes, got %d",
			core.RowPositionLen, len(key))
		return b.err
	}
	if len(b.lastKey) > 0 {
		prev := core.DecodeFixed64BigEndian(b.lastKey)
		cur := core.DecodeFixed64BigEndian(key)
		if cur != prev+1 {
			b.err = core.InvalidArgumentf("row positions must be contiguous: %d after %d", cur, prev)
			return b.err
		}
	}

	storeKey := b.counter >= b.restartInterval || len(b.lastKey) == 0
	if b.counter >= b.restartInterval {
		b.restarts = append(b.restarts, uint32(len(b.buf)))
		b.counter = 0
	}

	b.buf = core.AppendUvarint(b.buf, 0) // shared
	if storeKey {
		b.buf = core.AppendUvarint(b.buf, uint64(len(key)))
	} else {
		b.buf = core.AppendUvarint(b.buf, 0)
	}
	b.buf = core.AppendUvarint(b.buf, uint64(len(value)))
	if storeKey {
		b.buf = append(b.buf, key...)
	}
	b.buf = append(b.buf, value...)

	b.lastKey = append(b.lastKey[:0], key...)
	b.counter++
	return nil
}

func (b *ColumnBlockBuilder) Finish() []byte {
	for _, r := range b.restarts {
		b.buf = core.AppendFixed32(b.buf, r)
	}
	b.buf = core.AppendFixed32(b.buf, uint32(len(b.restarts)))
	b.finished = true
	return b.buf
}

func (b *ColumnBlockBuilder) Reset() {
	b.buf = b.buf[:0]
	b.restarts = b.restarts[:1]
	b.restarts[0] = 0
	b.counter = 0
	b.finished = false
	b.lastKey = b.lastKey[:0]
	b.err = nil
}

func (b *ColumnBlockBuilder) Empty() bool { return len(b.buf) == 0 }

func (b *ColumnBlockBuilder) CurrentSizeEstimate() int {
	return len(b.buf) + len(b.restarts)*4 + 4
}

func (b *ColumnBlockBuilder) EstimateSizeAfterKV(key, value []byte) int {
	est := b.CurrentSizeEstimate() + len(value)
	if b.counter >= b.restartInterval {
		est += 4 + len(key)
	}
	return est + 3*5
}

// IsKeyStored reports whether the next entry stores its key bytes. The
// builder's properties accounting relies on this to count raw key bytes.
func (b *ColumnBlockBuilder) IsKeyStored() bool {
	return b.counter >= b.restartInterval || len(b.lastKey) == 0
}

// Err returns the latched error, if any.
func (b *ColumnBlockBuilder) Err() error { return b.err }
