package columntable

import (
	"log/slog"

	"github.com/RoaringBitmap/roaring"
	"go.opentelemetry.io/otel/trace"

	"github.com/INLOpen/columnbase/cache"
	"github.com/INLOpen/columnbase/core"
)

// DefaultBlockSize is the target uncompressed size of a data block.
const DefaultBlockSize = 4 * 1024

// Options configure both table builders and readers. The zero value is
// not usable; call Normalized (done internally by the constructors) to
// fill in defaults.
type Options struct {
	// Comparator orders the main file's keys. Defaults to an
	// InternalKeyComparator over the bytewise user comparator.
	Comparator core.Comparator

	// Splitter decomposes values into column parts and stitches projected
	// reads back together. Defaults to the pipe splitter.
	Splitter core.Splitter

	// ColumnCount is the number of subcolumn files per table.
	ColumnCount int

	// BlockSize is the flush threshold handed to the flush policy.
	BlockSize int

	// BlockRestartInterval is the restart spacing in data blocks.
	BlockRestartInterval int

	// IndexBlockRestartInterval is the restart spacing in index blocks.
	// The default of 1 makes every index entry binary-searchable.
	IndexBlockRestartInterval int

	// Compression selects the block codec. Blocks that fail the ratio
	// gate are stored uncompressed regardless.
	Compression core.CompressionType

	// CompressionDict, when non-empty, is persisted in a meta block. The
	// codecs do not use it when compressing blocks.
	CompressionDict []byte

	// FlushBlockPolicyFactory decides data block boundaries.
	FlushBlockPolicyFactory FlushBlockPolicyFactory

	// BlockCache, when non-nil, caches decompressed data blocks across
	// readers.
	BlockCache cache.Interface

	Logger *slog.Logger
	Tracer trace.Tracer
}

// Normalized returns a copy of o with defaults applied.
func (o Options) Normalized() Options {
	if o.Comparator == nil {
		o.Comparator = core.NewInternalKeyComparator(core.BytewiseComparator())
	}
	if o.Splitter == nil {
		o.Splitter = core.NewPipeSplitter()
	}
	if o.BlockSize < 1 {
		o.BlockSize = DefaultBlockSize
	}
	if o.BlockRestartInterval < 1 {
		o.BlockRestartInterval = DefaultBlockRestartInterval
	}
	if o.IndexBlockRestartInterval < 1 {
		o.IndexBlockRestartInterval = DefaultIndexBlockRestartInterval
	}
	if o.FlushBlockPolicyFactory == nil {
		o.FlushBlockPolicyFactory = NewFlushBlockBySizePolicyFactory()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// ReadOptions tune a single read operation.
type ReadOptions struct {
	// Columns are the 1-based subcolumn indices to materialize. Empty
	// means the main file alone is consulted and values come back empty.
	Columns []uint32

	// BlockBits selects, for range queries, which data blocks (by ordinal
	// in the main file) are fully read. Nil selects every block.
	BlockBits *roaring.Bitmap

	// Snapshot is an upper bound on visible sequence numbers. It is
	// enforced by the caller when constructing seek keys; the reader does
	// not consult it.
	Snapshot core.SequenceNumber

	// VerifyChecksums re-checks block CRCs on every read path.
	VerifyChecksums bool

	// FillCache controls whether blocks read on a miss are inserted into
	// the block cache.
	FillCache bool
}

// DefaultReadOptions verify checksums and fill the cache.
func DefaultReadOptions() ReadOptions {
	return ReadOptions{VerifyChecksums: true, FillCache: true}
}
