package mockfs

import (
	"io"

	"github.com/harnesslab/mockfs/filesystem"
)

// File is the uniform handle interface over a file's content, regardless of
// whether the bytes live in memory or in spilled temp storage.
// *filesystem.Handle satisfies it.
type File interface {
	io.Reader
	io.Writer
	io.Seeker
	io.Closer

	// Truncate sets the file's size, discarding content beyond newSize or
	// zero-filling up to it.
	Truncate(newSize int64) error
	// Name returns the file's name (last path segment).
	Name() string
}

// Filesystem is the operation surface adapter layers drive.
// *filesystem.FileSystem satisfies it.
type Filesystem interface {
	MakeFile(path string, data []byte, overwrite bool) error
	MakeDir(path string, recursive bool) error
	Delete(path string, recursive bool) error
	Rename(oldPath, newPath string) error
	List(path string) ([]string, error)
	Stat(path string) (*filesystem.NodeInfo, error)
	Chmod(path string, readable, writable bool) error
	Open(path string, mode filesystem.OpenMode) (*filesystem.Handle, error)
	Close() error
}

var (
	_ Filesystem = (*filesystem.FileSystem)(nil)
	_ File       = (*filesystem.Handle)(nil)
)
