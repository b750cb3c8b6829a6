package columntable

import (
	"sort"

	"github.com/INLOpen/columnbase/core"
)

// TableProperties summarizes one column table file. It is serialized into
// the properties meta block of both main and subcolumn files.
type TableProperties struct {
	DataSize        uint64
	IndexSize       uint64
	RawKeySize      uint64
	RawValueSize    uint64
	NumDataBlocks   uint64
	NumEntries      uint64
	ColumnCount     uint64
	CreationTime    uint64
	CompressionName string
	ComparatorName  string
	SplitterName    string
}

// Property-block keys.
const (
	propDataSize        = "columnbase.data.size"
	propIndexSize       = "columnbase.index.size"
	propRawKeySize      = "columnbase.raw.key.size"
	propRawValueSize    = "columnbase.raw.value.size"
	propNumDataBlocks   = "columnbase.num.data.blocks"
	propNumEntries      = "columnbase.num.entries"
	propColumnCount     = "columnbase.column.count"
	propCreationTime    = "columnbase.creation.time"
	propCompressionName = "columnbase.compression"
	propComparatorName  = "columnbase.comparator"
	propSplitterName    = "columnbase.splitter"
)

// encodeProperties serializes props as a block with restart interval 1,
// entries sorted by key so the block stays seekable.
func encodeProperties(props *TableProperties) []byte {
	ints := map[string]uint64{
		propDataSize:      props.DataSize,
		propIndexSize:     props.IndexSize,
		propRawKeySize:    props.RawKeySize,
		propRawValueSize:  props.RawValueSize,
		propNumDataBlocks: props.NumDataBlocks,
		propNumEntries:    props.NumEntries,
		propColumnCount:   props.ColumnCount,
		propCreationTime:  props.CreationTime,
	}
	strs := map[string]string{
		propCompressionName: props.CompressionName,
		propComparatorName:  props.ComparatorName,
		propSplitterName:    props.SplitterName,
	}

	keys := make([]string, 0, len(ints)+len(strs))
	for k := range ints {
		keys = append(keys, k)
	}
	for k, v := range strs {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	b := NewBlockBuilder(1, nil)
	var scratch [10]byte
	for _, k := range keys {
		if v, ok := ints[k]; ok {
			b.Add([]byte(k), core.AppendUvarint(scratch[:0], v))
			continue
		}
		b.Add([]byte(k), []byte(strs[k]))
	}
	return b.Finish()
}

// decodeProperties parses a properties block back into TableProperties.
// Unknown keys are ignored for forward compatibility.
func decodeProperties(contents []byte) (*TableProperties, error) {
	block, err := NewBlock(contents)
	if err != nil {
		return nil, err
	}
	props := &TableProperties{}
	intFields := map[string]*uint64{
		propDataSize:      &props.DataSize,
		propIndexSize:     &props.IndexSize,
		propRawKeySize:    &props.RawKeySize,
		propRawValueSize:  &props.RawValueSize,
		propNumDataBlocks: &props.NumDataBlocks,
		propNumEntries:    &props.NumEntries,
		propColumnCount:   &props.ColumnCount,
		propCreationTime:  &props.CreationTime,
	}
	strFields := map[string]*string{
		propCompressionName: &props.CompressionName,
		propComparatorName:  &props.ComparatorName,
		propSplitterName:    &props.SplitterName,
	}

	it := block.NewIterator(core.BytewiseComparator())
	for it.SeekToFirst(); it.Valid(); it.Next() {
		name := string(it.Key())
		if dst, ok := intFields[name]; ok {
			v, n := core.GetUvarint(it.Value())
			if n <= 0 {
				return nil, core.Corruptionf("properties block: bad varint for %s", name)
			}
			*dst = v
			continue
		}
		if dst, ok := strFields[name]; ok {
			*dst = string(it.Value())
		}
	}
	if err := it.Status(); err != nil {
		return nil, err
	}
	return props, nil
}
