package directory

import "os"

// pathResolver defines workspace path resolution operations.
type pathResolver interface {
	Abs(path string) (string, error)
	Display(abs string) string
}

// dirLister defines the filesystem operations needed for listing.
type dirLister interface {
	Stat(path string) (os.FileInfo, error)
	ListDir(path string) ([]os.DirEntry, error)
}

// ignoreMatcher reports whether a workspace-relative path is gitignored.
type ignoreMatcher interface {
	ShouldIgnore(relativePath string, isDir bool) bool
}
