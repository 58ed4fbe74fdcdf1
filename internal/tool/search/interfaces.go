package search

import "os"

// pathResolver defines workspace path resolution operations.
type pathResolver interface {
	Abs(path string) (string, error)
	Display(abs string) string
}

// fileSystem defines the minimal filesystem interface needed by search tools.
type fileSystem interface {
	Stat(path string) (os.FileInfo, error)
	ReadFile(path string, limit int64) ([]byte, error)
}

// ignoreMatcher reports whether a workspace-relative path is gitignored.
type ignoreMatcher interface {
	ShouldIgnore(relativePath string, isDir bool) bool
}
