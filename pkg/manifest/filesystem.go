package manifest

import (
	"io/fs"

	"github.com/spf13/afero"
)

//go:generate mockgen -destination=../../internal/mocks/filesystem_mock.go -package=mocks github.com/quantmind-br/libmanifest/pkg/manifest FileSystem

// FileSystem is the I/O capability the reader depends on. Errors are
// returned to callers unmodified, except for missing files which become
// CodeNotFound failures.
type FileSystem interface {
	// Stat returns file metadata for name
	Stat(name string) (fs.FileInfo, error)
	// ReadFile returns the full contents of name
	ReadFile(name string) ([]byte, error)
}

// aferoFileSystem adapts an afero.Fs to FileSystem
type aferoFileSystem struct {
	fs afero.Fs
}

// NewFileSystem wraps an afero filesystem, e.g. afero.NewMemMapFs() in tests
func NewFileSystem(fsys afero.Fs) FileSystem {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &aferoFileSystem{fs: fsys}
}

// OSFileSystem returns a FileSystem backed by the operating system
func OSFileSystem() FileSystem {
	return NewFileSystem(afero.NewOsFs())
}

func (a *aferoFileSystem) Stat(name string) (fs.FileInfo, error) {
	return a.fs.Stat(name)
}

func (a *aferoFileSystem) ReadFile(name string) ([]byte, error) {
	return afero.ReadFile(a.fs, name)
}
