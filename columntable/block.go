package columntable

import (
	"encoding/binary"
	"sort"

	"github.com/INLOpen/columnbase/core"
)

// Iterator is the table-local iteration protocol. After any positioning
// call, Valid reports whether the iterator rests on an entry; Key and
// Value may only be called while Valid. Status surfaces the first error
// encountered.
type Iterator interface {
	Valid() bool
	SeekToFirst()
	Seek(target []byte)
	Next()
	Key() []byte
	Value() []byte
	Status() error
}

// Block wraps decompressed block contents and hands out iterators over
// them. The contents are immutable once constructed.
type Block struct {
	data          []byte // full contents including restart trailer
	restartOffset int    // byte offset of the restart array
	numRestarts   int
}

// NewBlock validates the restart trailer and wraps contents.
func NewBlock(contents []byte) (*Block, error) {
	if len(contents) < 4 {
		return nil, core.Corruptionf("block of %d bytes is smaller than its trailer", len(contents))
	}
	numRestarts := int(core.DecodeFixed32(contents[len(contents)-4:]))
	restartOffset := len(contents) - 4 - numRestarts*4
	if numRestarts < 0 || restartOffset < 0 {
		return nil, core.Corruptionf("block restart count %d exceeds block size %d",
			numRestarts, len(contents))
	}
	return &Block{
		data:          contents,
		restartOffset: restartOffset,
		numRestarts:   numRestarts,
	}, nil
}

// Size returns the byte size of the block contents.
func (b *Block) Size() int { return len(b.data) }

func (b *Block) restartPoint(i int) int {
	return int(core.DecodeFixed32(b.data[b.restartOffset+4*i:]))
}

// NewIterator returns an iterator over a row-wise block.
func (b *Block) NewIterator(cmp core.Comparator) *BlockIter {
	return &BlockIter{block: b, cmp: cmp, offset: -1}
}

// NewColumnIterator returns an iterator over a subcolumn block, where
// entries between restart points carry no key bytes and positions are
// recomputed as restart base plus ordinal.
func (b *Block) NewColumnIterator() *BlockIter {
	return &BlockIter{block: b, cmp: core.NewColumnKeyComparator(), offset: -1, columnar: true}
}

// BlockIter walks the entries of one block. The zero offset sentinel -1
// means "not positioned".
type BlockIter struct {
	block    *Block
	cmp      core.Comparator
	columnar bool

	offset     int // byte offset of the current entry, -1 if not positioned
	nextOffset int
	key        []byte
	value      []byte
	err        error
}

var _ Iterator = (*BlockIter)(nil)

func (it *BlockIter) Valid() bool {
	return it.err == nil && it.offset >= 0
}

func (it *BlockIter) Key() []byte { return it.key }

func (it *BlockIter) Value() []byte { return it.value }

func (it *BlockIter) Status() error { return it.err }

func (it *BlockIter) invalidate() {
	it.offset = -1
	it.key = it.key[:0]
	it.value = nil
}

func (it *BlockIter) corrupt() {
	it.err = core.Corruptionf("malformed block entry at offset %d", it.nextOffset)
	it.invalidate()
}

// parseNext decodes the entry at nextOffset into key/value and advances
// nextOffset. Returns false at the end of the entry region or on error.
func (it *BlockIter) parseNext() bool {
	if it.err != nil {
		return false
	}
	if it.nextOffset >= it.block.restartOffset {
		it.invalidate()
		return false
	}
	data := it.block.data[it.nextOffset:it.block.restartOffset]
	shared, n0 := binary.Uvarint(data)
	if n0 <= 0 {
		it.corrupt()
		return false
	}
	nonShared, n1 := binary.Uvarint(data[n0:])
	if n1 <= 0 {
		it.corrupt()
		return false
	}
	valueLen, n2 := binary.Uvarint(data[n0+n1:])
	if n2 <= 0 {
		it.corrupt()
		return false
	}
	header := n0 + n1 + n2
	if uint64(len(data)-header) < nonShared+valueLen || uint64(len(it.key)) < shared {
		it.corrupt()
		return false
	}

	keyBytes := data[header : header+int(nonShared)]
	switch {
	case it.columnar && nonShared == 0:
		// Subcolumn entry with its key omitted: position = predecessor + 1.
		if len(it.key) != core.RowPositionLen {
			it.corrupt()
			return false
		}
		pos := core.DecodeFixed64BigEndian(it.key) + 1
		binary.BigEndian.PutUint64(it.key, pos)
	default:
		it.key = append(it.key[:int(shared)], keyBytes...)
	}
	it.value = data[header+int(nonShared) : header+int(nonShared)+int(valueLen)]
	it.offset = it.nextOffset
	it.nextOffset += header + int(nonShared) + int(valueLen)
	return true
}

func (it *BlockIter) SeekToFirst() {
	if it.err != nil {
		return
	}
	it.seekToRestart(0)
	it.parseNext()
}

func (it *BlockIter) Next() {
	if !it.Valid() {
		return
	}
	it.parseNext()
}

func (it *BlockIter) seekToRestart(i int) {
	it.key = it.key[:0]
	it.value = nil
	it.offset = -1
	if i >= it.block.numRestarts {
		it.nextOffset = it.block.restartOffset
		return
	}
	it.nextOffset = it.block.restartPoint(i)
}

// keyAtRestart decodes the full key stored at restart point i.
func (it *BlockIter) keyAtRestart(i int) []byte {
	data := it.block.data[it.block.restartPoint(i):it.block.restartOffset]
	_, n0 := binary.Uvarint(data) // shared, zero at a restart
	if n0 <= 0 {
		return nil
	}
	nonShared, n1 := binary.Uvarint(data[n0:])
	if n1 <= 0 {
		return nil
	}
	_, n2 := binary.Uvarint(data[n0+n1:])
	if n2 <= 0 {
		return nil
	}
	header := n0 + n1 + n2
	if uint64(len(data)-header) < nonShared {
		return nil
	}
	return data[header : header+int(nonShared)]
}

// Seek positions the iterator at the first entry with key >= target.
func (it *BlockIter) Seek(target []byte) {
	if it.err != nil {
		return
	}
	// Binary search: the first restart whose key is >= target; scanning
	// starts one restart earlier since the match may precede it.
	i := sort.Search(it.block.numRestarts, func(i int) bool {
		k := it.keyAtRestart(i)
		if k == nil {
			return true
		}
		return it.cmp.Compare(k, target) >= 0
	})
	if i > 0 {
		i--
	}
	it.seekToRestart(i)
	for it.parseNext() {
		if it.cmp.Compare(it.key, target) >= 0 {
			return
		}
	}
}
