package filesystem

import "errors"

// Sentinel error kinds returned by engine operations. Callers match with
// [errors.Is]; the wrapped message carries the offending path.
var (
	ErrInvalidPath = errors.New("invalid path")
	ErrNotExist    = errors.New("no such file or directory")
	ErrExist       = errors.New("already exists")
	ErrNotDir      = errors.New("not a directory")
	ErrIsDir       = errors.New("is a directory")
	ErrDirNotEmpty = errors.New("directory not empty")
	ErrInvalidMove = errors.New("invalid move")
	ErrPermission  = errors.New("permission denied")
	ErrInvalidSeek = errors.New("invalid seek")
	ErrInvalidSize = errors.New("invalid size")
	ErrClosed      = errors.New("handle already closed")
	ErrStorage     = errors.New("storage allocation failed")
)
