package columntable

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/INLOpen/columnbase/core"
)

func buildBlock(t *testing.T, restartInterval int, kvs [][2]string) *Block {
	t.Helper()
	b := NewBlockBuilder(restartInterval, core.BytewiseComparator())
	for _, kv := range kvs {
		require.NoError(t, b.Add([]byte(kv[0]), []byte(kv[1])))
	}
	block, err := NewBlock(b.Finish())
	require.NoError(t, err)
	return block
}

func TestBlockBuilderRoundTrip(t *testing.T) {
	kvs := [][2]string{
		{"apple", "red"},
		{"apricot", "orange"},
		{"banana", "yellow"},
		{"blueberry", "blue"},
		{"cherry", "dark red"},
	}
	for _, interval := range []int{1, 2, 16} {
		block := buildBlock(t, interval, kvs)
		it := block.NewIterator(core.BytewiseComparator())
		i := 0
		for it.SeekToFirst(); it.Valid(); it.Next() {
			require.Less(t, i, len(kvs))
			assert.Equal(t, []byte(kvs[i][0]), it.Key(), "interval %d", interval)
			assert.Equal(t, []byte(kvs[i][1]), it.Value(), "interval %d", interval)
			i++
		}
		require.NoError(t, it.Status())
		assert.Equal(t, len(kvs), i)
	}
}

func TestBlockIteratorSeek(t *testing.T) {
	kvs := [][2]string{
		{"b", "1"}, {"d", "2"}, {"f", "3"}, {"h", "4"}, {"j", "5"},
	}
	block := buildBlock(t, 2, kvs)
	it := block.NewIterator(core.BytewiseComparator())

	// Exact hit.
	it.Seek([]byte("f"))
	require.True(t, it.Valid())
	assert.Equal(t, []byte("f"), it.Key())

	// Between entries: first key >= target.
	it.Seek([]byte("e"))
	require.True(t, it.Valid())
	assert.Equal(t, []byte("f"), it.Key())

	// Before everything.
	it.Seek([]byte("a"))
	require.True(t, it.Valid())
	assert.Equal(t, []byte("b"), it.Key())

	// Past everything.
	it.Seek([]byte("z"))
	assert.False(t, it.Valid())
	require.NoError(t, it.Status())
}

func TestBlockBuilderPrefixCompression(t *testing.T) {
	// A long shared prefix with a large restart interval must encode far
	// smaller than the raw keys.
	var kvs [][2]string
	raw := 0
	for i := 0; i < 64; i++ {
		k := fmt.Sprintf("shared/prefix/for/every/key/%04d", i)
		kvs = append(kvs, [2]string{k, "v"})
		raw += len(k) + 1
	}
	block := buildBlock(t, 16, kvs)
	assert.Less(t, block.Size(), raw*3/4)

	// Entries still decode in full.
	it := block.NewIterator(core.BytewiseComparator())
	i := 0
	for it.SeekToFirst(); it.Valid(); it.Next() {
		assert.Equal(t, []byte(kvs[i][0]), it.Key())
		i++
	}
	assert.Equal(t, len(kvs), i)
}

func TestBlockBuilderRejectsOutOfOrder(t *testing.T) {
	b := NewBlockBuilder(16, core.BytewiseComparator())
	require.NoError(t, b.Add([]byte("b"), []byte("1")))
	err := b.Add([]byte("a"), []byte("2"))
	require.Error(t, err)
	assert.True(t, core.IsInvalidArgument(err))
	// The error latches.
	assert.Error(t, b.Add([]byte("c"), []byte("3")))
}

func TestBlockBuilderReset(t *testing.T) {
	b := NewBlockBuilder(4, core.BytewiseComparator())
	require.NoError(t, b.Add([]byte("k"), []byte("v")))
	assert.False(t, b.Empty())
	b.Finish()
	b.Reset()
	assert.True(t, b.Empty())
	require.NoError(t, b.Add([]byte("a"), []byte("1")))
	block, err := NewBlock(b.Finish())
	require.NoError(t, err)
	it := block.NewIterator(core.BytewiseComparator())
	it.SeekToFirst()
	require.True(t, it.Valid())
	assert.Equal(t, []byte("a"), it.Key())
}

func TestColumnBlockRoundTrip(t *testing.T) {
	const n = 100
	b := NewColumnBlockBuilder(16)
	for i := uint64(0); i < n; i++ {
		require.NoError(t, b.Add(core.EncodeRowPosition(i), []byte(fmt.Sprintf("col-val-%d", i))))
	}
	block, err := NewBlock(b.Finish())
	require.NoError(t, err)

	it := block.NewColumnIterator()
	i := uint64(0)
	for it.SeekToFirst(); it.Valid(); it.Next() {
		assert.Equal(t, core.EncodeRowPosition(i), it.Key())
		assert.Equal(t, []byte(fmt.Sprintf("col-val-%d", i)), it.Value())
		i++
	}
	require.NoError(t, it.Status())
	assert.Equal(t, uint64(n), i)
}

func TestColumnBlockOmitsKeysBetweenRestarts(t *testing.T) {
	keyed := NewColumnBlockBuilder(1) // every entry stores its key
	sparse := NewColumnBlockBuilder(16)
	for i := uint64(0); i < 64; i++ {
		v := []byte("v")
		require.NoError(t, keyed.Add(core.EncodeRowPosition(i), v))
		require.NoError(t, sparse.Add(core.EncodeRowPosition(i), v))
	}
	keyedSize := len(keyed.Finish())
	sparseSize := len(sparse.Finish())
	assert.Less(t, sparseSize, keyedSize,
		"omitting positions between restarts must shrink the block")
}

func TestColumnBlockSeekByPosition(t *testing.T) {
	b := NewColumnBlockBuilder(8)
	for i := uint64(0); i < 50; i++ {
		require.NoError(t, b.Add(core.EncodeRowPosition(i), []byte(fmt.Sprintf("%d", i))))
	}
	block, err := NewBlock(b.Finish())
	require.NoError(t, err)

	for _, pos := range []uint64{0, 7, 8, 23, 49} {
		it := block.NewColumnIterator()
		it.Seek(core.EncodeRowPosition(pos))
		require.True(t, it.Valid(), "position %d", pos)
		assert.Equal(t, core.EncodeRowPosition(pos), it.Key())
		assert.Equal(t, []byte(fmt.Sprintf("%d", pos)), it.Value())
	}

	it := block.NewColumnIterator()
	it.Seek(core.EncodeRowPosition(50))
	assert.False(t, it.Valid())
}

func TestColumnBlockRejectsGaps(t *testing.T) {
	b := NewColumnBlockBuilder(16)
	require.NoError(t, b.Add(core.EncodeRowPosition(0), []byte("a")))
	err := b.Add(core.EncodeRowPosition(2), []byte("b"))
	require.Error(t, err)
	assert.True(t, core.IsInvalidArgument(err))
}

func TestColumnBlockRejectsBadKeyWidth(t *testing.T) {
	b := NewColumnBlockBuilder(16)
	err := b.Add([]byte("short"), []byte("v"))
	require.Error(t, err)
	assert.True(t, core.IsInvalidArgument(err))
}

func TestNewBlockRejectsTruncated(t *testing.T) {
	_, err := NewBlock([]byte{1, 2})
	assert.True(t, core.IsCorruption(err))

	// Restart count far larger than the block itself.
	bad := core.AppendFixed32(nil, 1<<20)
	_, err = NewBlock(bad)
	assert.True(t, core.IsCorruption(err))
}

func TestBlockBoundaryTransparency(t *testing.T) {
	// The observable entries are identical regardless of restart interval.
	var kvs [][2]string
	for i := 0; i < 200; i++ {
		kvs = append(kvs, [2]string{fmt.Sprintf("key%06d", i), fmt.Sprintf("val%d", i)})
	}
	collect := func(interval int) []string {
		block := buildBlock(t, interval, kvs)
		it := block.NewIterator(core.BytewiseComparator())
		var got []string
		for it.SeekToFirst(); it.Valid(); it.Next() {
			got = append(got, string(it.Key())+"="+string(it.Value()))
		}
		require.NoError(t, it.Status())
		return got
	}
	base := collect(1)
	for _, interval := range []int{2, 7, 16, 1000} {
		assert.Equal(t, base, collect(interval), "interval %d", interval)
	}
}
