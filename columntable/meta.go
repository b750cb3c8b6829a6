package columntable

import (
	"sort"

	"github.com/INLOpen/columnbase/core"
)

// MetaIndexBuilder maps meta block names to their handles. Entries are
// buffered and sorted at Finish, so callers may add them in write order.
type MetaIndexBuilder struct {
	names   []string
	handles map[string]BlockHandle
}

// NewMetaIndexBuilder creates a metaindex builder.
func NewMetaIndexBuilder() *MetaIndexBuilder {
	return &MetaIndexBuilder{handles: make(map[string]BlockHandle)}
}

// Add records a meta block under its name.
func (b *MetaIndexBuilder) Add(name string, handle BlockHandle) {
	if _, ok := b.handles[name]; !ok {
		b.names = append(b.names, name)
	}
	b.handles[name] = handle
}

// Finish seals the metaindex block.
func (b *MetaIndexBuilder) Finish() []byte {
	sort.Strings(b.names)
	block := NewBlockBuilder(1, core.BytewiseComparator())
	var enc [MaxBlockHandleEncodedLength]byte
	for _, name := range b.names {
		block.Add([]byte(name), b.handles[name].EncodeTo(enc[:0]))
	}
	return block.Finish()
}

// findMetaBlock looks a meta block's handle up by name.
func findMetaBlock(metaindex *Block, name string) (BlockHandle, bool, error) {
	it := metaindex.NewIterator(core.BytewiseComparator())
	it.Seek([]byte(name))
	if !it.Valid() || string(it.Key()) != name {
		return BlockHandle{}, false, it.Status()
	}
	handle, _, err := DecodeBlockHandle(it.Value())
	if err != nil {
		return BlockHandle{}, false, err
	}
	return handle, true, nil
}

// ColumnMeta is the decoded column meta block of a table file. The main
// file records the file size of every subcolumn at Finish time; readers
// validate the sibling files against these sizes before serving.
type ColumnMeta struct {
	Main bool
	// FileSizes[i] is the size of subcolumn i+1's file. Empty for
	// subcolumn files themselves.
	FileSizes []uint64
}

// ColumnCount returns the number of subcolumn files.
func (m *ColumnMeta) ColumnCount() int { return len(m.FileSizes) }

// encodeColumnMeta serializes the column meta block body:
// u8 is_main | varint32 count | (varint32 col_id | varint64 size)*count.
func encodeColumnMeta(m *ColumnMeta) []byte {
	dst := make([]byte, 0, 1+5+len(m.FileSizes)*15)
	if m.Main {
		dst = append(dst, 1)
	} else {
		dst = append(dst, 0)
	}
	dst = core.AppendUvarint(dst, uint64(len(m.FileSizes)))
	for i, size := range m.FileSizes {
		dst = core.AppendUvarint(dst, uint64(i+1))
		dst = core.AppendUvarint(dst, size)
	}
	return dst
}

// decodeColumnMeta parses a column meta block body.
func decodeColumnMeta(data []byte) (*ColumnMeta, error) {
	if len(data) < 2 {
		return nil, core.Corruptionf("column meta block truncated")
	}
	m := &ColumnMeta{Main: data[0] != 0}
	data = data[1:]
	count, n := core.GetUvarint(data)
	if n <= 0 {
		return nil, core.Corruptionf("column meta block: bad column count")
	}
	data = data[n:]
	m.FileSizes = make([]uint64, count)
	for i := uint64(0); i < count; i++ {
		id, n := core.GetUvarint(data)
		if n <= 0 {
			return nil, core.Corruptionf("column meta block: bad column id")
		}
		data = data[n:]
		size, n := core.GetUvarint(data)
		if n <= 0 {
			return nil, core.Corruptionf("column meta block: bad file size")
		}
		data = data[n:]
		if id != i+1 {
			return nil, core.Corruptionf("column meta block: column id %d out of order, want %d", id, i+1)
		}
		m.FileSizes[i] = size
	}
	return m, nil
}
