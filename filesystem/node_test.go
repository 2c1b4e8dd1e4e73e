package filesystem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContent(t *testing.T, data []byte) *content {
	t.Helper()
	c, err := newContent(data, 1<<20, newSpillDir(t.TempDir()))
	require.NoError(t, err)
	return c
}

func TestNode_AddChild(t *testing.T) {
	t.Parallel()

	parent := newDirNode("parent", true, true)
	child := newFileNode("child.txt", newTestContent(t, nil), true, true)

	parent.AddChild(child)

	retrieved, exists := parent.GetChild("child.txt")
	require.True(t, exists)
	assert.Equal(t, child, retrieved)

	// Verify parent reference was set
	child.mu.RLock()
	assert.Equal(t, parent, child.parent)
	child.mu.RUnlock()
}

func TestNode_GetChild(t *testing.T) {
	t.Parallel()

	parent := newDirNode("parent", true, true)
	child := newDirNode("child", true, true)
	parent.AddChild(child)

	retrieved, exists := parent.GetChild("child")
	assert.True(t, exists)
	assert.Equal(t, child, retrieved)

	missing, exists := parent.GetChild("nonexistent")
	assert.False(t, exists)
	assert.Nil(t, missing)

	// Files have no children
	file := newFileNode("f", newTestContent(t, nil), true, true)
	_, exists = file.GetChild("anything")
	assert.False(t, exists)
}

func TestNode_RemoveChild(t *testing.T) {
	t.Parallel()

	parent := newDirNode("parent", true, true)
	child := newFileNode("child.txt", newTestContent(t, nil), true, true)
	parent.AddChild(child)

	removed := parent.RemoveChild("child.txt")
	assert.Equal(t, child, removed)

	_, exists := parent.GetChild("child.txt")
	assert.False(t, exists)

	// Verify parent reference was cleared
	child.mu.RLock()
	assert.Nil(t, child.parent)
	child.mu.RUnlock()

	assert.Nil(t, parent.RemoveChild("nonexistent"))
}

func TestNode_ChildNames_Sorted(t *testing.T) {
	t.Parallel()

	parent := newDirNode("parent", true, true)
	for _, name := range []string{"zeta", "alpha", "mid"} {
		parent.AddChild(newDirNode(name, true, true))
	}

	assert.Equal(t, []string{"alpha", "mid", "zeta"}, parent.childNames())
}

func TestNode_IsAncestorOf(t *testing.T) {
	t.Parallel()

	root := newDirNode("", true, true)
	a := newDirNode("a", true, true)
	b := newDirNode("b", true, true)
	root.AddChild(a)
	a.AddChild(b)

	assert.True(t, root.isAncestorOf(b))
	assert.True(t, a.isAncestorOf(b))
	assert.False(t, b.isAncestorOf(a))
	assert.False(t, a.isAncestorOf(a), "a node is not its own ancestor")
}

func TestNodeKind_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "file", KindFile.String())
	assert.Equal(t, "directory", KindDir.String())
}
