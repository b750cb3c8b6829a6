package sys

import "os"

// osOpener is the production Opener backed by the local filesystem.
type osOpener struct{}

var _ Opener = osOpener{}

func (osOpener) Create(name string) (FileInterface, error) {
	return os.Create(name)
}

func (osOpener) Open(name string) (FileInterface, error) {
	return os.Open(name)
}

func (osOpener) OpenFile(name string, flag int, perm os.FileMode) (FileInterface, error) {
	return os.OpenFile(name, flag, perm)
}

func (osOpener) Remove(name string) error {
	return os.Remove(name)
}

func (osOpener) Rename(oldpath, newpath string) error {
	return os.Rename(oldpath, newpath)
}
