package docpath

import (
	"errors"
	"fmt"
)

// ErrInvalidPath matches every *PathError with errors.Is.
var ErrInvalidPath = errors.New("invalid path")

// PathError reports a path that does not resolve against a document.
type PathError struct {
	Op     string // "get", "set" or "reorder"
	Path   Path
	Depth  int // index of the key that failed
	Reason string
}

func (e *PathError) Error() string {
	if e.Depth >= 0 && e.Depth < len(e.Path) {
		return fmt.Sprintf("%s %q: key %q: %s", e.Op, e.Path.String(), e.Path[e.Depth].String(), e.Reason)
	}
	return fmt.Sprintf("%s %q: %s", e.Op, e.Path.String(), e.Reason)
}

func (e *PathError) Is(target error) bool {
	return target == ErrInvalidPath
}

func pathErr(op string, p Path, depth int, format string, args ...any) *PathError {
	return &PathError{Op: op, Path: p, Depth: depth, Reason: fmt.Sprintf(format, args...)}
}
