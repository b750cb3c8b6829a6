package columntable

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/INLOpen/columnbase/cache"
	"github.com/INLOpen/columnbase/core"
	"github.com/INLOpen/columnbase/sys"
)

// ColumnTableReader serves reads from one immutable column table: the main
// file plus the subcolumn files recorded in its column meta block. All
// read operations are safe under arbitrary concurrency once Open returns;
// block reads on a cache miss may race benignly and duplicate work rather
// than contend on a lock.
type ColumnTableReader struct {
	opts       Options
	mainColumn bool
	cmp        core.Comparator
	splitter   core.Splitter

	file       sys.FileInterface
	filePath   string
	fileNumber uint64
	cacheID    string
	size       int64

	footer          Footer
	indexBlock      *Block
	meta            *ColumnMeta
	props           *TableProperties
	compressionDict []byte

	subReaders []*ColumnTableReader
	blockCache cache.Interface

	closed atomic.Bool
}

// OpenOptions parameterize OpenColumnTable.
type OpenOptions struct {
	Options

	// FilePath locates the main table file. Subcolumn paths derive from it.
	FilePath string

	// FileNumber namespaces block cache keys; distinct open tables must
	// use distinct numbers.
	FileNumber uint64

	// File, when non-nil, is used instead of opening FilePath. FileSize
	// must then be supplied as well.
	File     sys.FileInterface
	FileSize int64
}

// OpenColumnTable opens a main table file, validates its footer and meta
// blocks, and opens every subcolumn file listed in the column meta block,
// checking each against its recorded size.
func OpenColumnTable(opts OpenOptions) (*ColumnTableReader, error) {
	return openColumnFile(opts, true)
}

func openColumnFile(opts OpenOptions, expectMain bool) (reader *ColumnTableReader, err error) {
	opts.Options = opts.Options.Normalized()

	var span traceSpan
	if opts.Tracer != nil {
		_, span.span = opts.Tracer.Start(context.Background(), "ColumnTableReader.Open")
		span.span.SetAttributes(attribute.String("columntable.file", opts.FilePath))
		defer span.end()
	}

	file := opts.File
	if file == nil {
		if file, err = sys.Open(opts.FilePath); err != nil {
			err = core.IOErrorf("opening table file %s: %v", opts.FilePath, err)
			span.recordError(err)
			return nil, err
		}
	}
	ownsFile := opts.File == nil
	defer func() {
		if err != nil && ownsFile {
			file.Close()
		}
	}()

	size := opts.FileSize
	if size == 0 {
		stat, serr := file.Stat()
		if serr != nil {
			err = core.IOErrorf("stat table file %s: %v", opts.FilePath, serr)
			span.recordError(err)
			return nil, err
		}
		size = stat.Size()
	}

	r := &ColumnTableReader{
		opts:       opts.Options,
		mainColumn: expectMain,
		cmp:        opts.Comparator,
		splitter:   opts.Splitter,
		file:       file,
		filePath:   opts.FilePath,
		fileNumber: opts.FileNumber,
		cacheID:    fmt.Sprintf("%d", opts.FileNumber),
		size:       size,
		blockCache: opts.BlockCache,
	}
	if !expectMain {
		r.cmp = core.NewColumnKeyComparator()
	}

	if r.footer, err = ReadFooter(file, size); err != nil {
		span.recordError(err)
		return nil, err
	}

	metaindexContents, err := ReadBlockContents(file, r.footer.MetaindexHandle, true)
	if err != nil {
		span.recordError(err)
		return nil, err
	}
	metaindex, err := NewBlock(metaindexContents)
	if err != nil {
		span.recordError(err)
		return nil, err
	}

	if err = r.readMetaBlocks(metaindex); err != nil {
		span.recordError(err)
		return nil, err
	}
	if r.meta.Main != expectMain {
		err = core.Corruptionf("%s: column meta main flag is %v, want %v",
			opts.FilePath, r.meta.Main, expectMain)
		span.recordError(err)
		return nil, err
	}

	indexContents, err := ReadBlockContents(file, r.footer.IndexHandle, true)
	if err != nil {
		span.recordError(err)
		return nil, err
	}
	if r.indexBlock, err = NewBlock(indexContents); err != nil {
		span.recordError(err)
		return nil, err
	}

	if expectMain {
		if err = r.openSubcolumns(opts); err != nil {
			r.closeSubcolumns()
			span.recordError(err)
			return nil, err
		}
	}
	return r, nil
}

func (r *ColumnTableReader) readMetaBlocks(metaindex *Block) error {
	columnHandle, ok, err := findMetaBlock(metaindex, ColumnMetaBlockName)
	if err != nil {
		return err
	}
	if !ok {
		return core.Corruptionf("%s: missing column meta block", r.filePath)
	}
	columnContents, err := ReadBlockContents(r.file, columnHandle, true)
	if err != nil {
		return err
	}
	if r.meta, err = decodeColumnMeta(columnContents); err != nil {
		return core.Corruptionf("%s: %v", r.filePath, err)
	}

	propsHandle, ok, err := findMetaBlock(metaindex, PropertiesBlockName)
	if err != nil {
		return err
	}
	if ok {
		propsContents, err := ReadBlockContents(r.file, propsHandle, true)
		if err != nil {
			return err
		}
		if r.props, err = decodeProperties(propsContents); err != nil {
			return core.Corruptionf("%s: %v", r.filePath, err)
		}
	}

	dictHandle, ok, err := findMetaBlock(metaindex, CompressionDictBlockName)
	if err != nil {
		return err
	}
	if ok {
		if r.compressionDict, err = ReadBlockContents(r.file, dictHandle, true); err != nil {
			return err
		}
	}
	return nil
}

// openSubcolumns opens the sibling files concurrently and validates each
// against the size recorded at Finish time.
func (r *ColumnTableReader) openSubcolumns(opts OpenOptions) error {
	r.subReaders = make([]*ColumnTableReader, r.meta.ColumnCount())
	var g errgroup.Group
	for i := range r.subReaders {
		g.Go(func() error {
			path := SubcolumnFileName(r.filePath, i+1)
			file, err := sys.Open(path)
			if err != nil {
				return core.IOErrorf("opening subcolumn file %s: %v", path, err)
			}
			stat, err := file.Stat()
			if err != nil {
				file.Close()
				return core.IOErrorf("stat subcolumn file %s: %v", path, err)
			}
			if want := int64(r.meta.FileSizes[i]); stat.Size() != want {
				file.Close()
				return core.Corruptionf("subcolumn file %s is %d bytes, main file recorded %d",
					path, stat.Size(), want)
			}
			subOpts := OpenOptions{
				Options:    opts.Options,
				FilePath:   path,
				FileNumber: opts.FileNumber,
				File:       file,
				FileSize:   stat.Size(),
			}
			sub, err := openColumnFile(subOpts, false)
			if err != nil {
				file.Close()
				return err
			}
			sub.cacheID = fmt.Sprintf("%d.C%d", opts.FileNumber, i+1)
			r.subReaders[i] = sub
			return nil
		})
	}
	return g.Wait()
}

func (r *ColumnTableReader) closeSubcolumns() {
	for _, sub := range r.subReaders {
		if sub != nil {
			sub.Close()
		}
	}
}

// Close releases every file handle. It is idempotent; reads after Close
// fail with an InvalidArgument status.
func (r *ColumnTableReader) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}
	r.closeSubcolumns()
	return r.file.Close()
}

func (r *ColumnTableReader) checkOpen() error {
	if r.closed.Load() {
		return core.InvalidArgumentf("table %s is closed", r.filePath)
	}
	return nil
}

// Properties returns the decoded properties block, nil if absent.
func (r *ColumnTableReader) Properties() *TableProperties { return r.props }

// ColumnCount is the number of subcolumn files behind this table.
func (r *ColumnTableReader) ColumnCount() int { return r.meta.ColumnCount() }

// FilePath returns the main file's path.
func (r *ColumnTableReader) FilePath() string { return r.filePath }

// Size returns the main file's size in bytes.
func (r *ColumnTableReader) Size() int64 { return r.size }

// cacheKey identifies a block across every reader sharing the cache. The
// cache ID distinguishes the main file from its subcolumns, which all
// start their block regions at offset zero.
func (r *ColumnTableReader) cacheKey(offset uint64) string {
	return fmt.Sprintf("%s-%d", r.cacheID, offset)
}

// readBlock returns the decompressed block at handle, consulting the
// block cache first. Cache misses read, verify, decompress, and insert;
// duplicate concurrent misses are benign.
func (r *ColumnTableReader) readBlock(ro *ReadOptions, handle BlockHandle) (*Block, error) {
	if r.blockCache != nil {
		if contents, ok := r.blockCache.Get(r.cacheKey(handle.Offset)); ok {
			return NewBlock(contents)
		}
	}
	contents, err := ReadBlockContents(r.file, handle, ro.VerifyChecksums)
	if err != nil {
		return nil, err
	}
	if r.blockCache != nil && ro.FillCache {
		r.blockCache.Put(r.cacheKey(handle.Offset), contents)
	}
	return NewBlock(contents)
}

// findDataBlock locates the data block that may contain key via the index.
func (r *ColumnTableReader) findDataBlock(ro *ReadOptions, key []byte) (*Block, bool, error) {
	idxIter := r.indexBlock.NewIterator(r.cmp)
	idxIter.Seek(key)
	if !idxIter.Valid() {
		return nil, false, idxIter.Status()
	}
	handle, _, err := DecodeBlockHandle(idxIter.Value())
	if err != nil {
		return nil, false, core.Corruptionf("%s: %v", r.filePath, err)
	}
	block, err := r.readBlock(ro, handle)
	if err != nil {
		return nil, false, err
	}
	return block, true, nil
}

// Get looks up an internal key and returns the stitched projection of the
// columns requested in ro. A key that is absent, shadowed, or deleted
// yields a NotFound status.
func (r *ColumnTableReader) Get(ro ReadOptions, internalKey []byte) ([]byte, error) {
	if err := r.checkOpen(); err != nil {
		return nil, err
	}
	var span traceSpan
	if r.opts.Tracer != nil {
		_, span.span = r.opts.Tracer.Start(context.Background(), "ColumnTableReader.Get")
		span.span.SetAttributes(attribute.String("columntable.file", r.filePath))
		defer span.end()
	}

	block, found, err := r.findDataBlock(&ro, internalKey)
	if err != nil {
		span.recordError(err)
		return nil, err
	}
	if !found {
		return nil, core.NotFoundf("key not in table %s", r.filePath)
	}

	it := block.NewIterator(r.cmp)
	it.Seek(internalKey)
	if !it.Valid() {
		if err := it.Status(); err != nil {
			span.recordError(err)
			return nil, err
		}
		return nil, core.NotFoundf("key not in table %s", r.filePath)
	}

	foundUser, _, valueType, err := core.ParseInternalKey(it.Key())
	if err != nil {
		return nil, core.Corruptionf("%s: %v", r.filePath, err)
	}
	wantUser := core.ExtractUserKey(internalKey)
	icmp, isInternal := r.cmp.(*core.InternalKeyComparator)
	if isInternal {
		if icmp.UserComparator().Compare(foundUser, wantUser) != 0 {
			return nil, core.NotFoundf("key not in table %s", r.filePath)
		}
	} else if r.cmp.Compare(it.Key(), internalKey) != 0 {
		return nil, core.NotFoundf("key not in table %s", r.filePath)
	}
	if valueType == core.TypeDeletion || valueType == core.TypeSingleDeletion {
		return nil, core.NotFoundf("key deleted in table %s", r.filePath)
	}

	if len(it.Value()) != core.RowPositionLen {
		return nil, core.Corruptionf("%s: main entry carries %d-byte row position", r.filePath, len(it.Value()))
	}
	return r.assembleValue(&ro, it.Value())
}

// assembleValue stitches the projected columns for a row position.
func (r *ColumnTableReader) assembleValue(ro *ReadOptions, pos []byte) ([]byte, error) {
	if len(ro.Columns) == 0 {
		return nil, nil
	}
	var out []byte
	for i, col := range ro.Columns {
		if col < 1 || int(col) > len(r.subReaders) {
			return nil, core.InvalidArgumentf("column %d out of range 1..%d", col, len(r.subReaders))
		}
		part, err := r.subReaders[col-1].getByPosition(ro, pos)
		if err != nil {
			return nil, err
		}
		out = r.splitter.Append(out, part, i == len(ro.Columns)-1)
	}
	return out, nil
}

// getByPosition reads one column value by row position from a subcolumn
// file. Row alignment guarantees the position exists in every subcolumn;
// a miss here is corruption, not NotFound.
func (r *ColumnTableReader) getByPosition(ro *ReadOptions, pos []byte) ([]byte, error) {
	block, found, err := r.findDataBlock(ro, pos)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, core.Corruptionf("%s: row position %d missing from subcolumn",
			r.filePath, core.DecodeFixed64BigEndian(pos))
	}
	it := block.NewColumnIterator()
	it.Seek(pos)
	if !it.Valid() || string(it.Key()) != string(pos) {
		if err := it.Status(); err != nil {
			return nil, err
		}
		return nil, core.Corruptionf("%s: row position %d missing from subcolumn",
			r.filePath, core.DecodeFixed64BigEndian(pos))
	}
	return append([]byte(nil), it.Value()...), nil
}

// tableIterState builds data block iterators for the two-level iterator.
type tableIterState struct {
	r  *ColumnTableReader
	ro ReadOptions
}

func (s *tableIterState) NewSecondaryIterator(handleEnc []byte) Iterator {
	handle, _, err := DecodeBlockHandle(handleEnc)
	if err != nil {
		return errorIterator{err: core.Corruptionf("%s: %v", s.r.filePath, err)}
	}
	block, err := s.r.readBlock(&s.ro, handle)
	if err != nil {
		return errorIterator{err: err}
	}
	if s.r.mainColumn {
		return block.NewIterator(s.r.cmp)
	}
	return block.NewColumnIterator()
}

// NewIterator returns an iterator over the table's internal keys. Value()
// materializes the projection selected by ro.Columns at the current row.
func (r *ColumnTableReader) NewIterator(ro ReadOptions) Iterator {
	return r.NewArenaIterator(ro, nil)
}

// NewArenaIterator is NewIterator with iterator scratch drawn from arena;
// the scratch is reclaimed when the arena is dropped.
func (r *ColumnTableReader) NewArenaIterator(ro ReadOptions, arena *Arena) Iterator {
	if err := r.checkOpen(); err != nil {
		return errorIterator{err: err}
	}
	state := &tableIterState{r: r, ro: ro}
	two := NewTwoLevelIteratorArena(state, r.indexBlock.NewIterator(r.cmp), arena)
	return &tableIterator{r: r, ro: ro, two: two}
}

// tableIterator augments the two-level iterator with column projection.
type tableIterator struct {
	r   *ColumnTableReader
	ro  ReadOptions
	two Iterator

	value     []byte
	haveValue bool
	err       error
}

var _ Iterator = (*tableIterator)(nil)

func (it *tableIterator) Valid() bool {
	return it.err == nil && it.two.Valid()
}

func (it *tableIterator) SeekToFirst() {
	it.haveValue = false
	it.two.SeekToFirst()
}

func (it *tableIterator) Seek(target []byte) {
	it.haveValue = false
	it.two.Seek(target)
}

func (it *tableIterator) Next() {
	it.haveValue = false
	it.two.Next()
}

func (it *tableIterator) Key() []byte {
	return it.two.Key()
}

// Value assembles the projected columns for the current row. The result
// stays valid until the next positioning call.
func (it *tableIterator) Value() []byte {
	if it.haveValue {
		return it.value
	}
	value, err := it.r.assembleValue(&it.ro, it.two.Value())
	if err != nil {
		it.err = err
		return nil
	}
	it.value = value
	it.haveValue = true
	return it.value
}

func (it *tableIterator) Status() error {
	if it.err != nil {
		return it.err
	}
	return it.two.Status()
}

// errorIterator is permanently invalid with a fixed status.
type errorIterator struct {
	err error
}

func (e errorIterator) Valid() bool   { return false }
func (e errorIterator) SeekToFirst()  {}
func (e errorIterator) Seek([]byte)   {}
func (e errorIterator) Next()         {}
func (e errorIterator) Key() []byte   { return nil }
func (e errorIterator) Value() []byte { return nil }
func (e errorIterator) Status() error { return e.err }
