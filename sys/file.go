// Package sys abstracts file access behind a small interface so tests can
// substitute in-memory fakes and fault injectors for real files.
package sys

import (
	"io"
	"os"
	"sync/atomic"
)

// FileInterface is the file surface the table layer relies on. *os.File
// satisfies it directly.
type FileInterface interface {
	io.ReadWriteCloser
	io.ReaderAt
	io.WriterAt
	io.Seeker

	Stat() (os.FileInfo, error)
	Sync() error
	Truncate(size int64) error
	Name() string
}

// Opener creates and opens files. The default implementation uses the
// local filesystem; tests may swap it with SetDefault.
type Opener interface {
	Create(name string) (FileInterface, error)
	Open(name string) (FileInterface, error)
	OpenFile(name string, flag int, perm os.FileMode) (FileInterface, error)
	Remove(name string) error
	Rename(oldpath, newpath string) error
}

// openerWrapper gives atomic.Value a stable concrete type across stores.
type openerWrapper struct {
	op Opener
}

var defaultOpener atomic.Value // stores openerWrapper

func init() {
	defaultOpener.Store(openerWrapper{op: osOpener{}})
}

// SetDefault replaces the process-wide opener and returns the previous one.
func SetDefault(op Opener) Opener {
	prev := Default()
	defaultOpener.Store(openerWrapper{op: op})
	return prev
}

// Default returns the current opener.
func Default() Opener {
	return defaultOpener.Load().(openerWrapper).op
}

// Create creates or truncates the named file via the default opener.
func Create(name string) (FileInterface, error) { return Default().Create(name) }

// Open opens the named file read-only via the default opener.
func Open(name string) (FileInterface, error) { return Default().Open(name) }

// OpenFile is the generalized open call via the default opener.
func OpenFile(name string, flag int, perm os.FileMode) (FileInterface, error) {
	return Default().OpenFile(name, flag, perm)
}

// Remove removes the named file via the default opener.
func Remove(name string) error { return Default().Remove(name) }

// Rename renames a file via the default opener.
func Rename(oldpath, newpath string) error { return Default().Rename(oldpath, newpath) }
