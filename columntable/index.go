package columntable

import (
	"github.com/INLOpen/columnbase/core"
)

// DefaultIndexBlockRestartInterval makes every index entry its own restart
// point, so an index lookup is a pure binary search with no linear scan.
const DefaultIndexBlockRestartInterval = 1

// ShortenedIndexBuilder accumulates one entry per sealed data block. Rather
// than storing the block's last key verbatim it stores the shortest
// separator s with last <= s < next, which keeps the index block small and
// preserves lookup correctness.
type ShortenedIndexBuilder struct {
	cmp   core.Comparator
	block *BlockBuilder
}

// NewShortenedIndexBuilder creates an index builder over cmp.
func NewShortenedIndexBuilder(cmp core.Comparator, restartInterval int) *ShortenedIndexBuilder {
	return &ShortenedIndexBuilder{
		cmp: cmp,
		// Ordering holds by construction; the inner builder skips checks.
		block: NewBlockBuilder(restartInterval, nil),
	}
}

// AddIndexEntry records the handle of a sealed data block.
// lastKeyInCurrentBlock is the block's final key; firstKeyInNextBlock is
// nil for the table's final block, in which case a short successor of the
// last key is used instead of a separator.
func (b *ShortenedIndexBuilder) AddIndexEntry(lastKeyInCurrentBlock, firstKeyInNextBlock []byte, handle BlockHandle) {
	var sep []byte
	if firstKeyInNextBlock != nil {
		sep = b.cmp.FindShortestSeparator(lastKeyInCurrentBlock, firstKeyInNextBlock)
	} else {
		sep = b.cmp.FindShortSuccessor(lastKeyInCurrentBlock)
	}
	var enc [MaxBlockHandleEncodedLength]byte
	b.block.Add(sep, handle.EncodeTo(enc[:0]))
}

// Finish seals the index block and returns its contents.
func (b *ShortenedIndexBuilder) Finish() []byte {
	return b.block.Finish()
}

// EstimatedSize is the current index block size estimate.
func (b *ShortenedIndexBuilder) EstimatedSize() int {
	return b.block.CurrentSizeEstimate()
}
