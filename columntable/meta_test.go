package columntable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnMetaRoundTrip(t *testing.T) {
	in := &ColumnMeta{Main: true, FileSizes: []uint64{1024, 2048, 1 << 33}}
	out, err := decodeColumnMeta(encodeColumnMeta(in))
	require.NoError(t, err)
	assert.Equal(t, in, out)
	assert.Equal(t, 3, out.ColumnCount())

	sub := &ColumnMeta{Main: false}
	out, err = decodeColumnMeta(encodeColumnMeta(sub))
	require.NoError(t, err)
	assert.False(t, out.Main)
	assert.Zero(t, out.ColumnCount())
}

func TestColumnMetaRejectsTruncated(t *testing.T) {
	enc := encodeColumnMeta(&ColumnMeta{Main: true, FileSizes: []uint64{7}})
	_, err := decodeColumnMeta(enc[:1])
	assert.Error(t, err)
	_, err = decodeColumnMeta(enc[:len(enc)-1])
	assert.Error(t, err)
}

func TestMetaIndexFindsBlocksByName(t *testing.T) {
	b := NewMetaIndexBuilder()
	// Write order mirrors the builder: column, properties, dictionary.
	b.Add(ColumnMetaBlockName, BlockHandle{Offset: 10, Size: 20})
	b.Add(PropertiesBlockName, BlockHandle{Offset: 30, Size: 40})
	b.Add(CompressionDictBlockName, BlockHandle{Offset: 50, Size: 60})

	block, err := NewBlock(b.Finish())
	require.NoError(t, err)

	handle, ok, err := findMetaBlock(block, PropertiesBlockName)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, BlockHandle{Offset: 30, Size: 40}, handle)

	handle, ok, err = findMetaBlock(block, ColumnMetaBlockName)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, BlockHandle{Offset: 10, Size: 20}, handle)

	_, ok, err = findMetaBlock(block, "vidardb.absent")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPropertiesRoundTrip(t *testing.T) {
	in := &TableProperties{
		DataSize:        111,
		IndexSize:       22,
		RawKeySize:      333,
		RawValueSize:    444,
		NumDataBlocks:   5,
		NumEntries:      66,
		ColumnCount:     3,
		CreationTime:    1700000000,
		CompressionName: "Snappy",
		ComparatorName:  "columnbase.InternalKeyComparator",
		SplitterName:    "columnbase.PipeSplitter",
	}
	out, err := decodeProperties(encodeProperties(in))
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestPropertiesOmitsEmptyStrings(t *testing.T) {
	in := &TableProperties{NumEntries: 1}
	out, err := decodeProperties(encodeProperties(in))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), out.NumEntries)
	assert.Empty(t, out.SplitterName)
}
