package filesystem

import (
	"fmt"
	"io"
	"sync"
)

// backing is the narrow interface over a file's storage substrate. Handle
// code only ever talks to this interface; the memory/temp-storage split is
// invisible above it.
type backing interface {
	// ReadAt reads into p starting at off. Returns io.EOF when fewer than
	// len(p) bytes are available.
	ReadAt(p []byte, off int64) (int, error)
	// WriteAt writes p starting at off, extending the content as needed.
	// A write past the current end zero-fills the gap.
	WriteAt(p []byte, off int64) (int, error)
	// Truncate sets the content length, discarding or zero-extending.
	Truncate(size int64) error
	Size() int64
	Release() error
}

// memBacking keeps content in a plain in-process buffer.
type memBacking struct {
	buf []byte
}

func (m *memBacking) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(m.buf)) {
		return 0, io.EOF
	}
	n := copy(p, m.buf[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (m *memBacking) WriteAt(p []byte, off int64) (int, error) {
	if end := off + int64(len(p)); end > int64(len(m.buf)) {
		grown := make([]byte, end)
		copy(grown, m.buf)
		m.buf = grown
	}
	return copy(m.buf[off:], p), nil
}

func (m *memBacking) Truncate(size int64) error {
	if size <= int64(len(m.buf)) {
		m.buf = m.buf[:size]
		return nil
	}
	grown := make([]byte, size)
	copy(grown, m.buf)
	m.buf = grown
	return nil
}

func (m *memBacking) Size() int64 { return int64(len(m.buf)) }

func (m *memBacking) Release() error { return nil }

// spillBacking keeps content in an anonymous file inside the engine's spill
// directory. Gap writes rely on the OS sparse-file behavior; reads in the
// gap come back zero-filled either way.
type spillBacking struct {
	f     SpillFile
	size  int64
	alloc Allocator
}

func (s *spillBacking) ReadAt(p []byte, off int64) (int, error) {
	if off >= s.size {
		return 0, io.EOF
	}
	// Clamp to the tracked size so end-of-content reporting never depends
	// on the OS file's physical length.
	want := p
	if off+int64(len(p)) > s.size {
		want = p[:s.size-off]
	}
	n, err := s.f.ReadAt(want, off)
	if err == io.EOF && n == len(want) {
		err = nil
	}
	if err == nil && n < len(p) {
		return n, io.EOF
	}
	return n, err
}

func (s *spillBacking) WriteAt(p []byte, off int64) (int, error) {
	n, err := s.f.WriteAt(p, off)
	if end := off + int64(n); end > s.size {
		s.size = end
	}
	return n, err
}

func (s *spillBacking) Truncate(size int64) error {
	if err := s.f.Truncate(size); err != nil {
		return err
	}
	s.size = size
	return nil
}

func (s *spillBacking) Size() int64 { return s.size }

func (s *spillBacking) Release() error { return s.alloc.Release(s.f) }

// content owns a file's active backing together with the promotion policy
// and the open-handle count. All access goes through its lock, so a write
// through one handle is visible to every other handle as soon as the call
// returns.
type content struct {
	mu        sync.RWMutex
	store     backing
	threshold int64
	alloc     Allocator
	handles   int
	deleted   bool
}

// newContent seeds content from data. Seed data already past the threshold
// spills to temp storage immediately.
func newContent(data []byte, threshold int64, alloc Allocator) (*content, error) {
	c := &content{
		store:     &memBacking{buf: append([]byte(nil), data...)},
		threshold: threshold,
		alloc:     alloc,
	}
	if int64(len(data)) > threshold {
		if err := c.promoteLocked(); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *content) Size() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.store.Size()
}

func (c *content) ReadAt(p []byte, off int64) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.store.ReadAt(p, off)
}

// WriteAt writes through to the active backing, first promoting memory
// content to temp storage when the write would push the size past the
// threshold. A failed promotion leaves the prior backing untouched.
func (c *content) WriteAt(p []byte, off int64) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, inMem := c.store.(*memBacking); inMem && off+int64(len(p)) > c.threshold {
		if err := c.promoteLocked(); err != nil {
			return 0, err
		}
	}
	return c.store.WriteAt(p, off)
}

// Truncate resizes the content. Shrinking temp-backed content to at or
// below the threshold demotes it back to memory; the swap happens under the
// write lock so concurrent handle reads never observe a half-migrated file.
func (c *content) Truncate(size int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, inMem := c.store.(*memBacking); inMem && size > c.threshold {
		if err := c.promoteLocked(); err != nil {
			return err
		}
	}
	if err := c.store.Truncate(size); err != nil {
		return err
	}
	if _, spilled := c.store.(*spillBacking); spilled && size <= c.threshold {
		c.demoteLocked(size)
	}
	return nil
}

// promoteLocked migrates memory content into a fresh spill file.
// On any failure the memory backing stays active and intact.
func (c *content) promoteLocked() error {
	mem := c.store.(*memBacking)
	f, err := c.alloc.Create()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if _, err := f.WriteAt(mem.buf, 0); err != nil {
		c.alloc.Release(f) //nolint:errcheck
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	c.store = &spillBacking{f: f, size: int64(len(mem.buf)), alloc: c.alloc}
	return nil
}

// demoteLocked migrates spill content of the given size back into memory.
// Best effort: on read failure the spill backing stays active.
func (c *content) demoteLocked(size int64) {
	spilled := c.store.(*spillBacking)
	buf := make([]byte, size)
	if size > 0 {
		if _, err := spilled.f.ReadAt(buf, 0); err != nil && err != io.EOF {
			return
		}
	}
	spilled.Release() //nolint:errcheck
	c.store = &memBacking{buf: buf}
}

// addHandle registers an open handle against this content.
func (c *content) addHandle() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handles++
}

// dropHandle unregisters a handle, releasing the backing if the owning node
// was deleted while handles were still open.
func (c *content) dropHandle() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handles--
	if c.deleted && c.handles == 0 {
		c.store.Release() //nolint:errcheck
	}
}

// markDeleted flags the content for release. If no handles remain the
// backing is released immediately; otherwise the last dropHandle does it.
func (c *content) markDeleted() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.deleted {
		return
	}
	c.deleted = true
	if c.handles == 0 {
		c.store.Release() //nolint:errcheck
	}
}
