package filesystem

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v4"
)

// SpillFile is the slice of *os.File the spill backing needs.
type SpillFile interface {
	io.ReaderAt
	io.WriterAt
	Truncate(size int64) error
	Close() error
	Name() string
}

// Allocator hands out and reclaims temp-storage files for spilled content.
type Allocator interface {
	Create() (SpillFile, error)
	Release(f SpillFile) error
}

// spillDir is the engine's Allocator: a per-engine temp directory holding
// one file per spilled content. The directory is created lazily on first
// spill and removed wholesale on engine teardown, so no spill file can
// outlive its engine no matter how teardown was reached.
type spillDir struct {
	parent string // parent for the spill dir; "" means os.TempDir()

	mu     sync.Mutex
	dir    string // "" until first Create
	closed bool
	files  *xsync.Map[string, SpillFile]
}

func newSpillDir(parent string) *spillDir {
	return &spillDir{
		parent: parent,
		files:  xsync.NewMap[string, SpillFile](),
	}
}

func (s *spillDir) Create() (SpillFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("spill dir closed")
	}
	if s.dir == "" {
		parent := s.parent
		if parent == "" {
			parent = os.TempDir()
		}
		// uuid keeps concurrent engines in one test process apart
		dir := filepath.Join(parent, "mockfs-"+uuid.NewString())
		if err := os.Mkdir(dir, 0o700); err != nil {
			return nil, err
		}
		s.dir = dir
	}
	f, err := os.CreateTemp(s.dir, "spill-*")
	if err != nil {
		return nil, err
	}
	s.files.Store(f.Name(), f)
	return f, nil
}

func (s *spillDir) Release(f SpillFile) error {
	s.files.Delete(f.Name())
	err := f.Close()
	if rmErr := os.Remove(f.Name()); err == nil {
		err = rmErr
	}
	return err
}

// Close releases every outstanding spill file and removes the directory.
// Idempotent; subsequent Create calls fail.
func (s *spillDir) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.files.Range(func(name string, f SpillFile) bool {
		f.Close() //nolint:errcheck
		s.files.Delete(name)
		return true
	})
	if s.dir == "" {
		return nil
	}
	return os.RemoveAll(s.dir)
}
