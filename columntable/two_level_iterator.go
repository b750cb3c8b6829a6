package columntable

import "github.com/INLOpen/columnbase/core"

// TwoLevelIteratorState produces the secondary (data block) iterator for
// an index entry's value, the encoded block handle.
type TwoLevelIteratorState interface {
	NewSecondaryIterator(handle []byte) Iterator
}

// twoLevelIterator composes an index iterator, whose values are block
// handles, with per-block data iterators. It yields the concatenation of
// every block's entries and transparently skips blocks whose iterator
// comes up empty.
type twoLevelIterator struct {
	state     TwoLevelIteratorState
	indexIter Iterator
	dataIter  Iterator // nil when the index iterator is exhausted

	// dataHandle is the index value the current dataIter was built from;
	// reused to avoid rebuilding the same block iterator.
	dataHandle []byte
	status     error
}

// NewTwoLevelIterator composes state with an index iterator.
func NewTwoLevelIterator(state TwoLevelIteratorState, indexIter Iterator) Iterator {
	return &twoLevelIterator{state: state, indexIter: indexIter}
}

// NewTwoLevelIteratorArena is the arena-backed variant: the data-handle
// scratch buffer is allocated from the arena; the iterator struct itself
// is heap allocated.
func NewTwoLevelIteratorArena(state TwoLevelIteratorState, indexIter Iterator, arena *Arena) Iterator {
	// Go's allocator owns struct placement; the arena carries the scratch
	// buffers instead, which is where the churn is.
	it := &twoLevelIterator{state: state, indexIter: indexIter}
	if arena != nil {
		it.dataHandle = arena.Allocate(MaxBlockHandleEncodedLength)[:0]
	}
	return it
}

func (it *twoLevelIterator) Valid() bool {
	return it.dataIter != nil && it.dataIter.Valid()
}

func (it *twoLevelIterator) Key() []byte {
	return it.dataIter.Key()
}

func (it *twoLevelIterator) Value() []byte {
	return it.dataIter.Value()
}

func (it *twoLevelIterator) Status() error {
	if it.status != nil {
		return it.status
	}
	if err := it.indexIter.Status(); err != nil {
		return err
	}
	if it.dataIter != nil {
		return it.dataIter.Status()
	}
	return nil
}

// initDataBlock (re)builds the data iterator for the index iterator's
// current position, reusing the existing one when the handle is unchanged.
func (it *twoLevelIterator) initDataBlock() {
	if !it.indexIter.Valid() {
		it.dataIter = nil
		return
	}
	handle := it.indexIter.Value()
	if it.dataIter != nil && string(it.dataHandle) == string(handle) {
		return
	}
	it.dataIter = it.state.NewSecondaryIterator(handle)
	it.dataHandle = append(it.dataHandle[:0], handle...)
	if it.dataIter == nil {
		it.status = core.Corruptionf("could not open data block for index entry")
	}
}

// skipEmptyDataBlocksForward advances the index iterator past blocks whose
// data iterator is empty. A data iterator reporting a non-nil Status stops
// the walk and its status is kept; a block whose iterator could not be
// created at all leaves the Corruption status set by initDataBlock.
func (it *twoLevelIterator) skipEmptyDataBlocksForward() {
	for it.dataIter == nil || !it.dataIter.Valid() {
		if it.dataIter != nil && it.dataIter.Status() != nil {
			it.status = it.dataIter.Status()
			it.dataIter = nil
			return
		}
		if !it.indexIter.Valid() {
			it.dataIter = nil
			return
		}
		it.indexIter.Next()
		it.initDataBlock()
		if it.dataIter != nil {
			it.dataIter.SeekToFirst()
		}
	}
}

func (it *twoLevelIterator) Seek(target []byte) {
	it.indexIter.Seek(target)
	it.initDataBlock()
	if it.dataIter != nil {
		it.dataIter.Seek(target)
	}
	it.skipEmptyDataBlocksForward()
}

func (it *twoLevelIterator) SeekToFirst() {
	it.indexIter.SeekToFirst()
	it.initDataBlock()
	if it.dataIter != nil {
		it.dataIter.SeekToFirst()
	}
	it.skipEmptyDataBlocksForward()
}

func (it *twoLevelIterator) Next() {
	if !it.Valid() {
		return
	}
	it.dataIter.Next()
	it.skipEmptyDataBlocksForward()
}
