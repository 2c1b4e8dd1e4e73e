package filesystem

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/harnesslab/mockfs/config"
	"github.com/harnesslab/mockfs/internal/util"
)

// FileSystem is the engine root: the namespace tree plus the temp-storage
// allocator behind every spilled file. One coarse structural lock serializes
// namespace mutation against lookup, so callers never observe a
// half-renamed or half-deleted tree. Content I/O through open handles is
// not under this lock; each file's content carries its own.
type FileSystem struct {
	cfg   *config.Config
	root  *Node
	alloc Allocator

	mu     sync.RWMutex // structural lock over the namespace
	closed bool
}

// NodeInfo is the metadata snapshot returned by Stat.
type NodeInfo struct {
	Name     string
	Kind     NodeKind
	Size     int64
	Readable bool
	Writable bool
	ModTime  time.Time
}

// IsDir reports whether the entry is a directory.
func (i *NodeInfo) IsDir() bool { return i.Kind == KindDir }

// NewFS creates an empty filesystem rooted at "/". A nil cfg uses defaults.
func NewFS(cfg *config.Config) *FileSystem {
	if cfg == nil {
		cfg = config.NewConfig(nil)
	}
	return NewFSWithAllocator(cfg, newSpillDir(cfg.TempDir))
}

// NewFSWithAllocator creates a filesystem backed by a custom temp-storage
// allocator. Intended for tests that need to force spill allocation
// failures; everything else should use NewFS.
func NewFSWithAllocator(cfg *config.Config, alloc Allocator) *FileSystem {
	if cfg == nil {
		cfg = config.NewConfig(nil)
	}
	return &FileSystem{
		cfg:   cfg,
		root:  newDirNode("", true, true),
		alloc: alloc,
	}
}

// MakeFile creates a file at path seeded with data. The parent directory
// must already exist. An existing file at path fails unless overwrite is
// set; an existing directory always fails.
func (fs *FileSystem) MakeFile(path string, data []byte, overwrite bool) error {
	logger := util.GetLogger("FS.MakeFile")

	fs.mu.Lock()
	defer fs.mu.Unlock()
	parent, name, err := fs.resolveParent(path)
	if err != nil {
		return err
	}
	if existing, ok := parent.GetChild(name); ok {
		if existing.kind == KindDir {
			return fmt.Errorf("%w: %s", ErrIsDir, path)
		}
		if !overwrite {
			return fmt.Errorf("%w: %s", ErrExist, path)
		}
		c, err := newContent(data, fs.cfg.SpillThreshold, fs.alloc)
		if err != nil {
			return err
		}
		node := newFileNode(name, c, true, true)
		parent.AddChild(node) // replaces the map entry
		existing.content.markDeleted()
		parent.touch()
		logger.Debug().Str("path", path).Int("size", len(data)).Msg("Replaced file")
		return nil
	}
	c, err := newContent(data, fs.cfg.SpillThreshold, fs.alloc)
	if err != nil {
		return err
	}
	parent.AddChild(newFileNode(name, c, true, true))
	parent.touch()
	logger.Debug().Str("path", path).Int("size", len(data)).Msg("Created file")
	return nil
}

// MakeDir creates a directory at path. With recursive set, missing parents
// are created along the way, like `mkdir -p` except that an existing leaf
// is still an error.
func (fs *FileSystem) MakeDir(path string, recursive bool) error {
	logger := util.GetLogger("FS.MakeDir")

	fs.mu.Lock()
	defer fs.mu.Unlock()
	segs, err := splitPath(path)
	if err != nil {
		return err
	}
	if len(segs) == 0 {
		return fmt.Errorf("%w: %s", ErrExist, "/")
	}

	cur := fs.root
	for i, seg := range segs[:len(segs)-1] {
		child, ok := cur.GetChild(seg)
		switch {
		case ok && child.kind == KindDir:
			cur = child
		case ok:
			return fmt.Errorf("%w: %s", ErrNotDir, "/"+strings.Join(segs[:i+1], "/"))
		case recursive:
			next := newDirNode(seg, true, true)
			cur.AddChild(next)
			cur = next
		default:
			return fmt.Errorf("%w: %s", ErrNotExist, "/"+strings.Join(segs[:i+1], "/"))
		}
	}

	name := segs[len(segs)-1]
	if _, ok := cur.GetChild(name); ok {
		return fmt.Errorf("%w: %s", ErrExist, path)
	}
	cur.AddChild(newDirNode(name, true, true))
	cur.touch()
	logger.Debug().Str("path", path).Bool("recursive", recursive).Msg("Created directory")
	return nil
}

// Delete removes the node at path. A non-empty directory requires
// recursive. File backing storage is released once the last open handle on
// it closes.
func (fs *FileSystem) Delete(path string, recursive bool) error {
	logger := util.GetLogger("FS.Delete")

	fs.mu.Lock()
	defer fs.mu.Unlock()
	parent, name, err := fs.resolveParent(path)
	if err != nil {
		return err
	}
	node, ok := parent.GetChild(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotExist, path)
	}
	if node.kind == KindDir && node.children.Size() > 0 && !recursive {
		return fmt.Errorf("%w: %s", ErrDirNotEmpty, path)
	}
	parent.RemoveChild(name)
	node.releaseTree()
	parent.touch()
	logger.Debug().Str("path", path).Bool("recursive", recursive).Msg("Deleted node")
	return nil
}

// Rename moves the node at oldPath to newPath. A destination of a different
// kind fails; replacing a same-kind destination is allowed except for a
// non-empty directory. Moving a directory under its own descendant fails.
func (fs *FileSystem) Rename(oldPath, newPath string) error {
	logger := util.GetLogger("FS.Rename")

	fs.mu.Lock()
	defer fs.mu.Unlock()
	oldParent, oldName, err := fs.resolveParent(oldPath)
	if err != nil {
		return err
	}
	node, ok := oldParent.GetChild(oldName)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotExist, oldPath)
	}
	newParent, newName, err := fs.resolveParent(newPath)
	if err != nil {
		return err
	}
	if node == newParent || node.isAncestorOf(newParent) {
		return fmt.Errorf("%w: %s into its own subtree %s", ErrInvalidMove, oldPath, newPath)
	}
	if dest, ok := newParent.GetChild(newName); ok {
		if dest == node {
			return nil
		}
		if dest.kind != node.kind {
			return fmt.Errorf("%w: %s is a %s", ErrExist, newPath, dest.kind)
		}
		if dest.kind == KindDir && dest.children.Size() > 0 {
			return fmt.Errorf("%w: %s", ErrDirNotEmpty, newPath)
		}
		newParent.RemoveChild(newName)
		dest.releaseTree()
	}

	oldParent.RemoveChild(oldName)
	node.mu.Lock()
	node.name = newName
	node.mu.Unlock()
	newParent.AddChild(node)
	node.touch()
	oldParent.touch()
	newParent.touch()
	logger.Debug().Str("from", oldPath).Str("to", newPath).Msg("Renamed node")
	return nil
}

// List returns the sorted child names of the directory at path.
func (fs *FileSystem) List(path string) ([]string, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	node, err := fs.resolve(path)
	if err != nil {
		return nil, err
	}
	if node.kind != KindDir {
		return nil, fmt.Errorf("%w: %s", ErrNotDir, path)
	}
	return node.childNames(), nil
}

// Stat returns a metadata snapshot for the node at path.
func (fs *FileSystem) Stat(path string) (*NodeInfo, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	node, err := fs.resolve(path)
	if err != nil {
		return nil, err
	}
	node.mu.RLock()
	info := &NodeInfo{
		Name:     node.name,
		Kind:     node.kind,
		Readable: node.readable,
		Writable: node.writable,
		ModTime:  node.modTime,
	}
	node.mu.RUnlock()
	if node == fs.root {
		info.Name = "/"
	}
	info.Size = node.size()
	return info, nil
}

// Chmod sets the readable/writable permission flags on the node at path.
func (fs *FileSystem) Chmod(path string, readable, writable bool) error {
	logger := util.GetLogger("FS.Chmod")

	fs.mu.Lock()
	defer fs.mu.Unlock()
	node, err := fs.resolve(path)
	if err != nil {
		return err
	}
	node.mu.Lock()
	node.readable = readable
	node.writable = writable
	node.modTime = time.Now()
	node.mu.Unlock()
	logger.Debug().Str("path", path).Bool("readable", readable).Bool("writable", writable).Msg("Changed permissions")
	return nil
}

// Open opens a handle on the file at path. Opening a nonexistent path with
// a write-capable mode creates the file, provided the parent directory
// exists. ModeWrite truncates existing content.
func (fs *FileSystem) Open(path string, mode OpenMode) (*Handle, error) {
	logger := util.GetLogger("FS.Open")

	fs.mu.Lock()
	defer fs.mu.Unlock()
	node, err := fs.resolve(path)
	if errors.Is(err, ErrNotExist) && mode.writes() {
		parent, name, perr := fs.resolveParent(path)
		if perr != nil {
			return nil, perr
		}
		c, cerr := newContent(nil, fs.cfg.SpillThreshold, fs.alloc)
		if cerr != nil {
			return nil, cerr
		}
		node = newFileNode(name, c, true, true)
		parent.AddChild(node)
		parent.touch()
		logger.Debug().Str("path", path).Msg("Created file on write-open")
	} else if err != nil {
		return nil, err
	}

	if node.kind == KindDir {
		return nil, fmt.Errorf("%w: %s", ErrIsDir, path)
	}
	node.mu.RLock()
	readable, writable := node.readable, node.writable
	node.mu.RUnlock()
	if mode.reads() && !readable {
		return nil, fmt.Errorf("%w: %s is not readable", ErrPermission, path)
	}
	if mode.writes() && !writable {
		return nil, fmt.Errorf("%w: %s is not writable", ErrPermission, path)
	}
	if mode == ModeWrite {
		if err := node.content.Truncate(0); err != nil {
			return nil, err
		}
	}
	node.content.addHandle()
	logger.Trace().Str("path", path).Str("mode", mode.String()).Msg("Opened handle")
	return &Handle{node: node, c: node.content, mode: mode}, nil
}

// Close tears the engine down, releasing every spilled temp file regardless
// of open handles. Idempotent. The namespace itself stays readable for
// in-memory content, but any further spill allocation fails.
func (fs *FileSystem) Close() error {
	logger := util.GetLogger("FS.Close")

	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.closed {
		return nil
	}
	fs.closed = true
	logger.Debug().Msg("Engine teardown")
	if closer, ok := fs.alloc.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
