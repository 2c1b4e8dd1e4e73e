package filesystem

import (
	"fmt"
	"strings"
)

// splitPath normalizes an absolute slash-separated path into its segments.
// The root path "/" yields an empty slice. Paths must begin with a slash;
// empty paths, empty segments ("//") and "."/".." segments are rejected,
// since the namespace has no traversal semantics to give them.
func splitPath(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	if !strings.HasPrefix(path, "/") {
		return nil, fmt.Errorf("%w: %q must start with slash", ErrInvalidPath, path)
	}
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil, nil
	}
	segs := strings.Split(trimmed, "/")
	for _, seg := range segs {
		switch seg {
		case "":
			return nil, fmt.Errorf("%w: %q contains an empty segment", ErrInvalidPath, path)
		case ".", "..":
			return nil, fmt.Errorf("%w: %q contains a traversal segment", ErrInvalidPath, path)
		}
	}
	return segs, nil
}

// resolve walks the tree from root segment-by-segment.
// Caller must hold the structural lock (read or write).
func (fs *FileSystem) resolve(path string) (*Node, error) {
	segs, err := splitPath(path)
	if err != nil {
		return nil, err
	}
	cur := fs.root
	for i, seg := range segs {
		if cur.kind != KindDir {
			return nil, fmt.Errorf("%w: %s", ErrNotDir, "/"+strings.Join(segs[:i], "/"))
		}
		child, ok := cur.GetChild(seg)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotExist, "/"+strings.Join(segs[:i+1], "/"))
		}
		cur = child
	}
	return cur, nil
}

// resolveParent resolves everything but the final segment and returns the
// parent directory together with the final name. The root path has no
// parent and is rejected.
// Caller must hold the structural lock (read or write).
func (fs *FileSystem) resolveParent(path string) (*Node, string, error) {
	segs, err := splitPath(path)
	if err != nil {
		return nil, "", err
	}
	if len(segs) == 0 {
		return nil, "", fmt.Errorf("%w: root has no parent", ErrInvalidPath)
	}
	cur := fs.root
	for i, seg := range segs[:len(segs)-1] {
		child, ok := cur.GetChild(seg)
		if !ok {
			return nil, "", fmt.Errorf("%w: %s", ErrNotExist, "/"+strings.Join(segs[:i+1], "/"))
		}
		if child.kind != KindDir {
			return nil, "", fmt.Errorf("%w: %s", ErrNotDir, "/"+strings.Join(segs[:i+1], "/"))
		}
		cur = child
	}
	return cur, segs[len(segs)-1], nil
}
