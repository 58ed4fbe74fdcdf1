package path

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Resolver confines paths to a workspace root.
type Resolver struct {
	workspaceRoot string
}

// NewResolver creates a new path resolver for the given workspace.
// The root is expected to be canonical (see CanonicaliseRoot).
func NewResolver(workspaceRoot string) *Resolver {
	return &Resolver{
		workspaceRoot: workspaceRoot,
	}
}

// Root returns the workspace root.
func (r *Resolver) Root() string {
	return r.workspaceRoot
}

// CanonicaliseRoot canonicalises a workspace root path by making it absolute and resolving symlinks.
// Returns an error if the path doesn't exist or isn't a directory.
func CanonicaliseRoot(root string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", &WorkspaceRootError{Root: root, Cause: err}
	}

	resolved, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return "", &WorkspaceRootError{Root: absRoot, Cause: err}
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", &WorkspaceRootError{Root: resolved, Cause: err}
	}
	if !info.IsDir() {
		return "", &WorkspaceRootError{Root: resolved, Cause: fmt.Errorf("%w: %s", ErrNotADirectory, resolved)}
	}
	return resolved, nil
}

// Abs resolves path to a canonical absolute path inside the workspace.
// Symlinks are resolved on the deepest existing ancestor and the
// non-existent remainder is re-appended, so a link cannot be used to
// escape the root. Paths are never clamped: anything outside is denied.
func (r *Resolver) Abs(path string) (string, error) {
	if r.workspaceRoot == "" {
		return "", ErrWorkspaceRootNotSet
	}

	var abs string
	if filepath.IsAbs(path) {
		abs = filepath.Clean(path)
	} else {
		abs = filepath.Clean(filepath.Join(r.workspaceRoot, path))
	}

	if !r.within(abs) {
		return "", &AccessDeniedError{Path: path}
	}

	resolved, err := resolveExisting(abs)
	if err != nil {
		return "", &AccessDeniedError{Path: path, Cause: err}
	}

	if !r.within(resolved) {
		return "", &AccessDeniedError{Path: path, Target: resolved}
	}

	return resolved, nil
}

// Rel resolves any path to relative to the workspace root and validates it is within the boundary.
// The root itself is returned as "".
func (r *Resolver) Rel(path string) (string, error) {
	abs, err := r.Abs(path)
	if err != nil {
		return "", err
	}

	rel, err := filepath.Rel(r.workspaceRoot, abs)
	if err != nil {
		return "", &AccessDeniedError{Path: path, Cause: err}
	}

	if rel == "." {
		return "", nil
	}

	return filepath.ToSlash(rel), nil
}

// Display returns the workspace-relative form of an absolute path for
// user-facing output, or "." for the root itself.
func (r *Resolver) Display(abs string) string {
	rel, err := filepath.Rel(r.workspaceRoot, abs)
	if err != nil {
		return abs
	}
	return filepath.ToSlash(rel)
}

func (r *Resolver) within(abs string) bool {
	if abs == r.workspaceRoot {
		return true
	}
	prefix := r.workspaceRoot
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(abs, prefix)
}

// resolveExisting evaluates symlinks on the longest existing prefix of abs.
func resolveExisting(abs string) (string, error) {
	existing := abs
	var tail []string
	for {
		if _, err := os.Lstat(existing); err == nil {
			break
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			break
		}
		tail = append(tail, filepath.Base(existing))
		existing = parent
	}

	resolved, err := filepath.EvalSymlinks(existing)
	if err != nil {
		return "", err
	}

	for i := len(tail) - 1; i >= 0; i-- {
		resolved = filepath.Join(resolved, tail[i])
	}
	return resolved, nil
}
