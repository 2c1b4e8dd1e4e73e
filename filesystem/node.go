package filesystem

import (
	"sort"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v4"
)

// NodeKind discriminates the two node variants in the namespace.
type NodeKind uint8

const (
	KindFile NodeKind = iota
	KindDir
)

func (k NodeKind) String() string {
	if k == KindDir {
		return "directory"
	}
	return "file"
}

// Node is one entry in the namespace tree: a directory owning its children,
// or a file owning its content. The kind tag is immutable after creation;
// every operation that cares switches on it explicitly.
type Node struct {
	name     string                    // Last path segment. Protected by mu
	parent   *Node                     // Protected by mu; nil for root and detached nodes
	kind     NodeKind                  // Immutable
	mu       sync.RWMutex              // Protects name, parent, and metadata below
	children *xsync.Map[string, *Node] // Directory variant only; child nodes by name
	content  *content                  // File variant only

	readable bool
	writable bool
	modTime  time.Time
}

// newDirNode creates a detached directory node. The parent is responsible
// for adding it as a child.
func newDirNode(name string, readable, writable bool) *Node {
	return &Node{
		name:     name,
		kind:     KindDir,
		children: xsync.NewMap[string, *Node](),
		readable: readable,
		writable: writable,
		modTime:  time.Now(),
	}
}

// newFileNode creates a detached file node owning the given content.
func newFileNode(name string, c *content, readable, writable bool) *Node {
	return &Node{
		name:     name,
		kind:     KindFile,
		content:  c,
		readable: readable,
		writable: writable,
		modTime:  time.Now(),
	}
}

// Name returns the node's name (last path segment; "" for root).
func (n *Node) Name() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.name
}

// Kind returns the node's immutable kind tag.
func (n *Node) Kind() NodeKind {
	return n.kind
}

// AddChild adds a child node to the node's children map
// and sets the child's parent to this node.
func (n *Node) AddChild(child *Node) {
	n.children.Store(child.Name(), child)

	child.mu.Lock()
	defer child.mu.Unlock()
	child.parent = n
}

// GetChild returns a child node by name.
func (n *Node) GetChild(name string) (child *Node, ok bool) {
	if n.kind != KindDir {
		return nil, false
	}
	return n.children.Load(name)
}

// RemoveChild detaches a child by name. Returns the detached node, or nil
// if no child with that name exists.
func (n *Node) RemoveChild(name string) *Node {
	if child, exists := n.children.LoadAndDelete(name); exists {
		child.mu.Lock()
		defer child.mu.Unlock()
		child.parent = nil
		return child
	}
	return nil
}

// childNames returns the sorted names of all children.
func (n *Node) childNames() []string {
	names := make([]string, 0, n.children.Size())
	n.children.Range(func(name string, _ *Node) bool {
		names = append(names, name)
		return true
	})
	sort.Strings(names)
	return names
}

// isAncestorOf reports whether n is a strict ancestor of other.
// Caller must hold the structural lock so parent links are stable.
func (n *Node) isAncestorOf(other *Node) bool {
	other.mu.RLock()
	p := other.parent
	other.mu.RUnlock()
	for p != nil {
		if p == n {
			return true
		}
		p.mu.RLock()
		next := p.parent
		p.mu.RUnlock()
		p = next
	}
	return false
}

// touch updates the last-modified timestamp.
func (n *Node) touch() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.modTime = time.Now()
}

// size returns the file's current content length; 0 for directories.
func (n *Node) size() int64 {
	if n.kind != KindFile {
		return 0
	}
	return n.content.Size()
}

// releaseTree marks backing storage releasable for every file under n,
// including n itself. Files with open handles defer the actual release
// until the last handle closes.
func (n *Node) releaseTree() {
	switch n.kind {
	case KindFile:
		n.content.markDeleted()
	case KindDir:
		n.children.Range(func(_ string, child *Node) bool {
			child.releaseTree()
			return true
		})
	}
}
