package filesystem

import (
	"fmt"
	"io"
	"sync"
)

// OpenMode selects the I/O semantics of a handle.
type OpenMode uint8

const (
	// ModeRead opens for reading only.
	ModeRead OpenMode = iota
	// ModeWrite opens for writing and truncates existing content.
	ModeWrite
	// ModeAppend opens for writing; every write lands at the current end.
	ModeAppend
	// ModeReadWrite opens for both without truncating.
	ModeReadWrite
)

func (m OpenMode) reads() bool  { return m == ModeRead || m == ModeReadWrite }
func (m OpenMode) writes() bool { return m != ModeRead }

func (m OpenMode) String() string {
	switch m {
	case ModeRead:
		return "read"
	case ModeWrite:
		return "write"
	case ModeAppend:
		return "append"
	default:
		return "read-write"
	}
}

// Handle is a cursor-bearing view over one file's content. Every handle
// keeps an independent cursor; the bytes themselves are shared, so a write
// through one handle is visible to all others as soon as it returns.
// Handles are not safe for concurrent use by multiple goroutines.
type Handle struct {
	node *Node
	c    *content
	mode OpenMode

	mu     sync.Mutex // guards pos and closed
	pos    int64
	closed bool
}

// Name returns the name of the file this handle is open on.
func (h *Handle) Name() string { return h.node.Name() }

// Read reads up to len(p) bytes at the cursor and advances it by the amount
// read. At end of content it returns 0, io.EOF.
func (h *Handle) Read(p []byte) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return 0, fmt.Errorf("%w: read", ErrClosed)
	}
	if !h.mode.reads() {
		return 0, fmt.Errorf("%w: handle opened %s", ErrPermission, h.mode)
	}
	n, err := h.c.ReadAt(p, h.pos)
	h.pos += int64(n)
	if err == io.EOF && n > 0 {
		err = nil
	}
	return n, err
}

// Write writes p at the cursor (or at the end, for append handles),
// overwriting and extending as needed, and advances the cursor. Writing
// past the end zero-fills the gap. May migrate the content to temp storage
// when it crosses the spill threshold.
func (h *Handle) Write(p []byte) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return 0, fmt.Errorf("%w: write", ErrClosed)
	}
	if !h.mode.writes() {
		return 0, fmt.Errorf("%w: handle opened %s", ErrPermission, h.mode)
	}
	pos := h.pos
	if h.mode == ModeAppend {
		pos = h.c.Size()
	}
	n, err := h.c.WriteAt(p, pos)
	h.pos = pos + int64(n)
	if n > 0 {
		h.node.touch()
	}
	return n, err
}

// Seek repositions the cursor. Seeking past the end is allowed; a read
// there hits end-of-content and a write creates a zero-filled gap. Seeking
// before the start fails.
func (h *Handle) Seek(offset int64, whence int) (int64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return 0, fmt.Errorf("%w: seek", ErrClosed)
	}
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = h.pos + offset
	case io.SeekEnd:
		pos = h.c.Size() + offset
	default:
		return 0, fmt.Errorf("%w: unknown whence %d", ErrInvalidSeek, whence)
	}
	if pos < 0 {
		return 0, fmt.Errorf("%w: position %d before start", ErrInvalidSeek, pos)
	}
	h.pos = pos
	return pos, nil
}

// Truncate sets the file size, discarding content past newSize or
// zero-filling up to it. The cursor does not move.
func (h *Handle) Truncate(newSize int64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return fmt.Errorf("%w: truncate", ErrClosed)
	}
	if !h.mode.writes() {
		return fmt.Errorf("%w: handle opened %s", ErrPermission, h.mode)
	}
	if newSize < 0 {
		return fmt.Errorf("%w: truncate to %d", ErrInvalidSize, newSize)
	}
	if err := h.c.Truncate(newSize); err != nil {
		return err
	}
	h.node.touch()
	return nil
}

// Close releases the handle. Writes go straight through to the backing, so
// there is no buffered state to flush; closing only drops the node's
// open-handle count. Closing twice fails.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return fmt.Errorf("%w: close", ErrClosed)
	}
	h.closed = true
	h.c.dropHandle()
	return nil
}
