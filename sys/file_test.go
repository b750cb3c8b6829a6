package sys

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOsOpenerRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")

	f, err := Create(path)
	require.NoError(t, err)
	_, err = f.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, f.Sync())
	require.NoError(t, f.Close())

	f, err = Open(path)
	require.NoError(t, err)
	defer f.Close()

	buf := make([]byte, 5)
	_, err = f.ReadAt(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), buf)

	stat, err := f.Stat()
	require.NoError(t, err)
	assert.Equal(t, int64(5), stat.Size())
}

func TestRenameAndRemove(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.tmp")
	dst := filepath.Join(dir, "a.sst")

	f, err := Create(src)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.NoError(t, Rename(src, dst))
	_, err = os.Stat(dst)
	require.NoError(t, err)

	require.NoError(t, Remove(dst))
	_, err = os.Stat(dst)
	assert.True(t, os.IsNotExist(err))
}

// countingOpener wraps the real opener to observe calls, standing in for
// the fault injectors the table tests install.
type countingOpener struct {
	Opener
	opens int
}

func (c *countingOpener) Open(name string) (FileInterface, error) {
	c.opens++
	return c.Opener.Open(name)
}

func TestSetDefaultSwapsOpener(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swap.bin")
	f, err := Create(path)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	counting := &countingOpener{Opener: Default()}
	prev := SetDefault(counting)
	defer SetDefault(prev)

	f, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, 1, counting.opens)
}
