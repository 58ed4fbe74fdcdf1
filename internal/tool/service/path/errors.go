package path

import (
	"errors"
	"fmt"
)

// -- Error Types --

// WorkspaceRootError is returned when the workspace root is invalid.
type WorkspaceRootError struct {
	Root  string
	Cause error
}

func (e *WorkspaceRootError) Error() string {
	return fmt.Sprintf("invalid workspace root %s: %v", e.Root, e.Cause)
}
func (e *WorkspaceRootError) Unwrap() error { return e.Cause }

// AccessDeniedError is returned when a path resolves outside the workspace.
// It always matches ErrOutsideWorkspace.
type AccessDeniedError struct {
	Path   string
	Target string // symlink target, when a link escaped
	Cause  error
}

func (e *AccessDeniedError) Error() string {
	switch {
	case e.Target != "":
		return fmt.Sprintf("access denied: %s resolves to %s, outside the workspace", e.Path, e.Target)
	case e.Cause != nil:
		return fmt.Sprintf("access denied: %s: %v", e.Path, e.Cause)
	default:
		return fmt.Sprintf("access denied: %s is outside the workspace", e.Path)
	}
}

func (e *AccessDeniedError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrOutsideWorkspace, e.Cause}
	}
	return []error{ErrOutsideWorkspace}
}

// -- Sentinels --

var (
	ErrOutsideWorkspace    = errors.New("path is outside workspace root")
	ErrWorkspaceRootNotSet = errors.New("workspace root not set")
	ErrNotADirectory       = errors.New("not a directory")
)
