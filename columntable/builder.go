package columntable

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/INLOpen/columnbase/core"
	"github.com/INLOpen/columnbase/sys"
)

// ColumnTableBuilder builds one column table: the main file it was given
// plus one lazily created sibling file per configured subcolumn. Exactly
// one goroutine may drive a builder.
//
// The first error latches into the builder's status; every later mutating
// call is a no-op returning that status. Finish syncs and closes the
// subcolumn files but deliberately leaves the main file open and unsynced:
// the flush job that owns the main file appends nothing afterwards, but it
// controls sync batching and close ordering itself.
type ColumnTableBuilder struct {
	opts       Options
	mainColumn bool
	cmp        core.Comparator

	file     sys.FileInterface
	filePath string
	offset   uint64
	status   error
	closed   bool

	dataBlock     DataBlockBuilder
	indexBuilder  *ShortenedIndexBuilder
	flushPolicy   FlushBlockPolicy
	lastKey       []byte
	pendingHandle BlockHandle

	props             TableProperties
	compressedScratch []byte

	subBuilders []*ColumnTableBuilder
}

// NewColumnTableBuilder creates a builder writing the main column to file.
// Subcolumn files are derived from file.Name() on the first Add.
func NewColumnTableBuilder(opts Options, file sys.FileInterface) *ColumnTableBuilder {
	return newBuilder(opts.Normalized(), file, true)
}

func newBuilder(opts Options, file sys.FileInterface, mainColumn bool) *ColumnTableBuilder {
	cmp := opts.Comparator
	var dataBlock DataBlockBuilder
	if mainColumn {
		dataBlock = NewBlockBuilder(opts.BlockRestartInterval, cmp)
	} else {
		cmp = core.NewColumnKeyComparator()
		dataBlock = NewColumnBlockBuilder(opts.BlockRestartInterval)
	}
	b := &ColumnTableBuilder{
		opts:         opts,
		mainColumn:   mainColumn,
		cmp:          cmp,
		file:         file,
		filePath:     file.Name(),
		dataBlock:    dataBlock,
		indexBuilder: NewShortenedIndexBuilder(cmp, opts.IndexBlockRestartInterval),
	}
	b.flushPolicy = opts.FlushBlockPolicyFactory.NewFlushBlockPolicy(opts.BlockSize, dataBlock)
	b.props.CreationTime = uint64(time.Now().Unix())
	b.props.CompressionName = opts.Compression.String()
	b.props.ComparatorName = cmp.Name()
	if mainColumn {
		b.props.SplitterName = opts.Splitter.Name()
		b.props.ColumnCount = uint64(opts.ColumnCount)
	}
	return b
}

func (b *ColumnTableBuilder) ok() bool { return b.status == nil }

// Status returns the first non-OK status of the main builder or any
// subcolumn builder.
func (b *ColumnTableBuilder) Status() error {
	for _, sub := range b.subBuilders {
		if sub != nil && sub.status != nil {
			return sub.status
		}
	}
	return b.status
}

// createSubcolumnBuilders opens one sibling file per subcolumn next to the
// main file.
func (b *ColumnTableBuilder) createSubcolumnBuilders() {
	b.subBuilders = make([]*ColumnTableBuilder, b.opts.ColumnCount)
	for i := 0; i < b.opts.ColumnCount; i++ {
		name := SubcolumnFileName(b.filePath, i+1)
		file, err := sys.Create(name)
		if err != nil {
			b.status = core.IOErrorf("creating subcolumn file %s: %v", name, err)
			return
		}
		b.subBuilders[i] = newBuilder(b.opts, file, false)
	}
}

// Add appends one logical record. The value is split into exactly
// ColumnCount parts (or zero parts, which distributes empty strings) and
// routed to the subcolumn builders alongside the record's row position.
func (b *ColumnTableBuilder) Add(key, value []byte) error {
	if b.closed {
		return core.InvalidArgumentf("Add on a closed builder")
	}
	if err := b.Status(); err != nil {
		return err
	}
	if b.props.NumEntries > 0 && b.cmp.Compare(key, b.lastKey) <= 0 {
		b.status = core.InvalidArgumentf("keys must be added in strictly increasing order")
		return b.status
	}

	if b.mainColumn && b.subBuilders == nil {
		b.createSubcolumnBuilders()
		if !b.ok() {
			return b.status
		}
	}

	// The row position identifies this record across the main file and
	// every subcolumn; big-endian keeps byte order equal to numeric order.
	pos := core.EncodeRowPosition(b.props.NumEntries)

	if b.flushPolicy.Update(key, pos) {
		b.Flush()
		if b.ok() {
			// Deferring the index entry until the next block's first key is
			// known lets the separator shrink: between "the quick brown fox"
			// and "the who", "the r" indexes the first block.
			b.indexBuilder.AddIndexEntry(b.lastKey, key, b.pendingHandle)
		}
	}
	if !b.ok() {
		return b.status
	}

	b.lastKey = append(b.lastKey[:0], key...)
	if err := b.dataBlock.Add(key, pos); err != nil {
		b.status = err
		return b.status
	}
	b.props.NumEntries++
	b.props.RawKeySize += uint64(len(key))
	b.props.RawValueSize += uint64(len(pos))

	if b.mainColumn {
		b.addInSubcolumnBuilders(pos, value)
	}
	return b.Status()
}

// addInSubcolumnBuilders distributes the split value parts, keyed by row
// position, to every subcolumn builder.
func (b *ColumnTableBuilder) addInSubcolumnBuilders(pos, value []byte) {
	vals := b.opts.Splitter.Split(value)
	if len(vals) > 0 && len(vals) != len(b.subBuilders) {
		b.status = core.InvalidArgumentf("splitter produced %d parts, table has %d columns",
			len(vals), len(b.subBuilders))
		return
	}

	for i, sub := range b.subBuilders {
		if !sub.ok() {
			return
		}
		var colVal []byte
		if len(vals) > 0 {
			colVal = vals[i]
		}

		if sub.flushPolicy.Update(pos, colVal) {
			sub.Flush()
			if sub.ok() {
				sub.indexBuilder.AddIndexEntry(sub.lastKey, pos, sub.pendingHandle)
			}
		}
		if !sub.ok() {
			return
		}

		sub.lastKey = append(sub.lastKey[:0], pos...)
		keyStored := sub.dataBlock.IsKeyStored()
		if err := sub.dataBlock.Add(pos, colVal); err != nil {
			sub.status = err
			return
		}
		sub.props.NumEntries++
		if keyStored {
			sub.props.RawKeySize += uint64(len(pos))
		}
		sub.props.RawValueSize += uint64(len(colVal))
	}
}

// Flush seals the current data block and writes it out.
func (b *ColumnTableBuilder) Flush() {
	if b.closed || !b.ok() || b.dataBlock.Empty() {
		return
	}
	b.writeBlock(b.dataBlock, &b.pendingHandle)
	b.props.DataSize = b.offset
	b.props.NumDataBlocks++
}

// writeBlock finishes the builder's pending contents, applies compression,
// frames the result with the block trailer, and resets the builder.
func (b *ColumnTableBuilder) writeBlock(block DataBlockBuilder, handle *BlockHandle) {
	raw := block.Finish()
	b.writeBlockContents(raw, handle)
	block.Reset()
}

func (b *ColumnTableBuilder) writeBlockContents(raw []byte, handle *BlockHandle) {
	if !b.ok() {
		return
	}
	contents := raw
	typ := core.CompressionNone
	if len(raw) < CompressionSizeLimit {
		contents, typ, b.compressedScratch = compressBlock(raw, b.opts.Compression, b.compressedScratch)
	}
	b.writeRawBlock(contents, typ, handle)
}

// writeRawBlock appends contents plus the 5-byte trailer at the current
// offset, recording the body's handle.
func (b *ColumnTableBuilder) writeRawBlock(contents []byte, typ core.CompressionType, handle *BlockHandle) {
	handle.Offset = b.offset
	handle.Size = uint64(len(contents))
	if _, err := b.file.Write(contents); err != nil {
		b.status = core.IOErrorf("writing block to %s: %v", b.filePath, err)
		return
	}
	var trailer [BlockTrailerSize]byte
	trailer[0] = byte(typ)
	core.AppendFixed32(trailer[:1], blockTrailerChecksum(contents, typ))
	if _, err := b.file.Write(trailer[:]); err != nil {
		b.status = core.IOErrorf("writing block trailer to %s: %v", b.filePath, err)
		return
	}
	b.offset += uint64(len(contents)) + BlockTrailerSize
}

// Finish finalizes the table. Subcolumn builders finish first — each
// emits its own meta blocks, index, and footer, and is synced and closed
// here — then the main file gets its column meta block (recording the
// exact subcolumn file sizes), properties, optional compression
// dictionary, metaindex, index, and footer.
func (b *ColumnTableBuilder) Finish() error {
	var span traceSpan
	if b.opts.Tracer != nil {
		_, span.span = b.opts.Tracer.Start(context.Background(), "ColumnTableBuilder.Finish")
		span.span.SetAttributes(
			attribute.String("columntable.file", b.filePath),
			attribute.Int64("columntable.num_entries", int64(b.props.NumEntries)),
		)
		defer span.end()
	}

	if b.mainColumn {
		for _, sub := range b.subBuilders {
			if sub == nil {
				continue
			}
			if err := sub.Finish(); err != nil {
				span.recordError(err)
				return err
			}
		}
	}

	emptyDataBlock := b.dataBlock.Empty()
	b.Flush()
	b.closed = true

	if b.ok() && !emptyDataBlock {
		b.indexBuilder.AddIndexEntry(b.lastKey, nil, b.pendingHandle)
	}
	indexContents := b.indexBuilder.Finish()

	metaIndex := NewMetaIndexBuilder()
	var metaindexHandle, indexHandle BlockHandle

	if b.ok() {
		// Column meta block: main records every subcolumn's final size so
		// the reader can validate the sibling files it opens.
		meta := ColumnMeta{Main: b.mainColumn}
		for _, sub := range b.subBuilders {
			meta.FileSizes = append(meta.FileSizes, sub.offset)
		}
		var columnHandle BlockHandle
		b.writeRawBlock(encodeColumnMeta(&meta), core.CompressionNone, &columnHandle)
		metaIndex.Add(ColumnMetaBlockName, columnHandle)
	}

	if b.ok() {
		b.props.IndexSize = uint64(len(indexContents)) + BlockTrailerSize
		var propsHandle BlockHandle
		b.writeRawBlock(encodeProperties(&b.props), core.CompressionNone, &propsHandle)
		metaIndex.Add(PropertiesBlockName, propsHandle)
	}

	if b.ok() && len(b.opts.CompressionDict) > 0 {
		var dictHandle BlockHandle
		b.writeRawBlock(b.opts.CompressionDict, core.CompressionNone, &dictHandle)
		metaIndex.Add(CompressionDictBlockName, dictHandle)
	}

	if b.ok() {
		b.writeRawBlock(metaIndex.Finish(), core.CompressionNone, &metaindexHandle)
		b.writeBlockContents(indexContents, &indexHandle)
	}

	if b.ok() {
		footer := Footer{MetaindexHandle: metaindexHandle, IndexHandle: indexHandle}
		enc := footer.EncodeTo(make([]byte, 0, FooterEncodedLength))
		if _, err := b.file.Write(enc); err != nil {
			b.status = core.IOErrorf("writing footer to %s: %v", b.filePath, err)
		} else {
			b.offset += uint64(len(enc))
		}
	}

	// Subcolumn files are fully owned here; the main file's sync and close
	// stay with the caller.
	if b.mainColumn {
		for _, sub := range b.subBuilders {
			if sub == nil || !sub.ok() {
				continue
			}
			if err := sub.file.Sync(); err != nil {
				sub.status = core.IOErrorf("syncing subcolumn file %s: %v", sub.filePath, err)
				continue
			}
			if err := sub.file.Close(); err != nil {
				sub.status = core.IOErrorf("closing subcolumn file %s: %v", sub.filePath, err)
			}
		}
	}

	if err := b.Status(); err != nil {
		span.recordError(err)
		return err
	}
	if b.opts.Logger != nil && b.mainColumn {
		b.opts.Logger.Debug("finished column table",
			"file", b.filePath,
			"entries", b.props.NumEntries,
			"data_blocks", b.props.NumDataBlocks,
			"file_size", b.offset,
			"file_size_total", b.FileSizeTotal())
	}
	return nil
}

// Abandon marks the builder and its subcolumns closed without producing
// valid files. It never fails; pending buffers are simply dropped.
func (b *ColumnTableBuilder) Abandon() {
	for _, sub := range b.subBuilders {
		if sub != nil {
			sub.closed = true
		}
	}
	b.closed = true
}

// NumEntries is the number of Add calls accepted so far.
func (b *ColumnTableBuilder) NumEntries() uint64 { return b.props.NumEntries }

// FileSize is the size of the main file alone.
func (b *ColumnTableBuilder) FileSize() uint64 { return b.offset }

// FileSizeTotal is the combined size of the main and subcolumn files.
func (b *ColumnTableBuilder) FileSizeTotal() uint64 {
	total := b.offset
	for _, sub := range b.subBuilders {
		if sub != nil {
			total += sub.offset
		}
	}
	return total
}

// NeedCompact reports whether a property collector requested compaction.
// Collectors are an engine-level concern; the table itself never does.
func (b *ColumnTableBuilder) NeedCompact() bool { return false }

// GetTableProperties returns a snapshot of the accumulated properties.
func (b *ColumnTableBuilder) GetTableProperties() TableProperties { return b.props }
