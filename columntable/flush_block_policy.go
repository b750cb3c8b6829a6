package columntable

// FlushBlockPolicy decides when the current data block is sealed. Update
// is consulted before each entry is appended; returning true seals the
// block first, so the entry opens a fresh one.
type FlushBlockPolicy interface {
	Update(key, value []byte) bool
}

// FlushBlockPolicyFactory binds a policy to one data block builder. Each
// builder of a table (main and every subcolumn) gets its own policy
// instance over the same input sequence; block boundaries need not align
// across columns.
type FlushBlockPolicyFactory interface {
	Name() string
	NewFlushBlockPolicy(blockSize int, block DataBlockBuilder) FlushBlockPolicy
}

// FlushBlockBySizePolicyFactory seals a block when appending the next
// entry would push its estimated size past the target block size.
type FlushBlockBySizePolicyFactory struct{}

// NewFlushBlockBySizePolicyFactory returns the default factory.
func NewFlushBlockBySizePolicyFactory() *FlushBlockBySizePolicyFactory {
	return &FlushBlockBySizePolicyFactory{}
}

func (*FlushBlockBySizePolicyFactory) Name() string {
	return "FlushBlockBySizePolicyFactory"
}

func (*FlushBlockBySizePolicyFactory) NewFlushBlockPolicy(blockSize int, block DataBlockBuilder) FlushBlockPolicy {
	return &flushBlockBySizePolicy{blockSize: blockSize, block: block}
}

type flushBlockBySizePolicy struct {
	blockSize int
	block     DataBlockBuilder
}

func (p *flushBlockBySizePolicy) Update(key, value []byte) bool {
	if p.block.Empty() {
		return false
	}
	return p.block.EstimateSizeAfterKV(key, value) > p.blockSize
}
