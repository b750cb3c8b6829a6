package columntable

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/INLOpen/columnbase/core"
	"github.com/INLOpen/columnbase/sys"
)

// faultFile is an in-memory sys.FileInterface that fails writes on demand.
type faultFile struct {
	name      string
	buf       bytes.Buffer
	failWrite bool
	writeErr  error
	syncs     int
}

var _ sys.FileInterface = (*faultFile)(nil)

func newFaultFile(name string) *faultFile {
	return &faultFile{name: name, writeErr: errors.New("injected write failure")}
}

func (f *faultFile) Write(p []byte) (int, error) {
	if f.failWrite {
		return 0, f.writeErr
	}
	return f.buf.Write(p)
}

func (f *faultFile) Read(p []byte) (int, error) { return f.buf.Read(p) }

func (f *faultFile) ReadAt(p []byte, off int64) (int, error) {
	data := f.buf.Bytes()
	if off >= int64(len(data)) {
		return 0, os.ErrInvalid
	}
	n := copy(p, data[off:])
	if n < len(p) {
		return n, os.ErrInvalid
	}
	return n, nil
}

func (f *faultFile) WriteAt(p []byte, off int64) (int, error) { return 0, os.ErrInvalid }
func (f *faultFile) Seek(off int64, whence int) (int64, error) {
	return 0, nil
}
func (f *faultFile) Stat() (os.FileInfo, error) { return nil, os.ErrInvalid }
func (f *faultFile) Sync() error                { f.syncs++; return nil }
func (f *faultFile) Truncate(int64) error       { return nil }
func (f *faultFile) Close() error               { return nil }
func (f *faultFile) Name() string               { return f.name }

func TestBuilderLatchesIOError(t *testing.T) {
	dir := t.TempDir()
	file := newFaultFile(filepath.Join(dir, "000001.sst"))

	// Block size small enough that an early Add triggers a flush.
	b := NewColumnTableBuilder(Options{ColumnCount: 1, BlockSize: 64}, file)

	file.failWrite = true
	var latched error
	for i := 0; i < 64 && latched == nil; i++ {
		ik := core.MakeInternalKey([]byte{byte('a' + i/26), byte('a' + i%26)}, core.SequenceNumber(i+1), core.TypeValue)
		if err := b.Add(ik, bytes.Repeat([]byte("v"), 32)); err != nil {
			latched = err
		}
	}
	require.Error(t, latched, "a flush through the failing file must surface")
	assert.True(t, core.IsIOError(latched))

	// Every further mutation is a no-op returning the latched status.
	entries := b.NumEntries()
	err := b.Add(core.MakeInternalKey([]byte("zz"), 1000, core.TypeValue), []byte("v"))
	assert.True(t, core.IsIOError(err))
	assert.Equal(t, entries, b.NumEntries())

	err = b.Finish()
	assert.True(t, core.IsIOError(err))
	assert.True(t, core.IsIOError(b.Status()))
}

func TestBuilderAbandonIsInfallible(t *testing.T) {
	dir := t.TempDir()
	file := newFaultFile(filepath.Join(dir, "000002.sst"))
	file.failWrite = true

	b := NewColumnTableBuilder(Options{ColumnCount: 2, BlockSize: 64}, file)
	for i := 0; i < 16; i++ {
		ik := core.MakeInternalKey([]byte{byte('a' + i)}, core.SequenceNumber(i+1), core.TypeValue)
		b.Add(ik, []byte("x|y"))
	}
	b.Abandon()

	err := b.Add(core.MakeInternalKey([]byte("zz"), 99, core.TypeValue), []byte("x|y"))
	assert.True(t, core.IsInvalidArgument(err), "Add after Abandon is rejected")
}

func TestBuilderRejectsOutOfOrderKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "000003.sst")
	file, err := sys.Create(path)
	require.NoError(t, err)
	defer file.Close()

	b := NewColumnTableBuilder(Options{ColumnCount: 1}, file)
	require.NoError(t, b.Add(core.MakeInternalKey([]byte("b"), 2, core.TypeValue), []byte("v")))

	err = b.Add(core.MakeInternalKey([]byte("a"), 1, core.TypeValue), []byte("v"))
	require.Error(t, err)
	assert.True(t, core.IsInvalidArgument(err))

	// Within one user key, sequence numbers must descend.
	err = b.Add(core.MakeInternalKey([]byte("b"), 9, core.TypeValue), []byte("v"))
	assert.True(t, core.IsInvalidArgument(err))
	b.Abandon()
}

func TestBuilderSyncsAndClosesSubcolumns(t *testing.T) {
	// The contract asymmetry: Finish syncs subcolumn files but leaves the
	// main file to its owner.
	dir := t.TempDir()
	main := newFaultFile(filepath.Join(dir, "000004.sst"))

	b := NewColumnTableBuilder(Options{ColumnCount: 1}, main)
	require.NoError(t, b.Add(core.MakeInternalKey([]byte("k"), 1, core.TypeValue), []byte("v")))
	require.NoError(t, b.Finish())

	assert.Zero(t, main.syncs, "main file sync belongs to the caller")

	// The subcolumn file was fully written and closed; its bytes must end
	// in the table magic number.
	subPath := SubcolumnFileName(main.Name(), 1)
	raw, err := os.ReadFile(subPath)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(raw), FooterEncodedLength)
	assert.Equal(t, ColumnTableMagicNumber, core.DecodeFixed64(raw[len(raw)-8:]))
}
