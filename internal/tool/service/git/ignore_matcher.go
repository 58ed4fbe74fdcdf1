package git

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// gitDir is never listed or searched, even without a .gitignore entry.
const gitDir = ".git"

// GitignoreReadError is returned when .gitignore files cannot be read.
type GitignoreReadError struct {
	Path  string
	Cause error
}

func (e *GitignoreReadError) Error() string {
	return fmt.Sprintf("failed to read .gitignore at %s: %v", e.Path, e.Cause)
}
func (e *GitignoreReadError) Unwrap() error { return e.Cause }

// IgnoreMatcher implements gitignore pattern matching using go-git's gitignore matcher.
type IgnoreMatcher struct {
	matcher gitignore.Matcher
}

// NewIgnoreMatcher loads the .gitignore files of the workspace, including
// nested ones and .git/info/exclude. A workspace without any yields a
// matcher that only skips the .git directory.
func NewIgnoreMatcher(workspaceRoot string) (*IgnoreMatcher, error) {
	if workspaceRoot == "" {
		panic("workspaceRoot is required")
	}

	patterns, err := gitignore.ReadPatterns(osfs.New(workspaceRoot), nil)
	if err != nil {
		return nil, &GitignoreReadError{Path: workspaceRoot, Cause: err}
	}

	return &IgnoreMatcher{matcher: gitignore.NewMatcher(patterns)}, nil
}

// NewIgnoreMatcherFromLines builds a matcher from root-level gitignore lines.
func NewIgnoreMatcherFromLines(lines []string) *IgnoreMatcher {
	var patterns []gitignore.Pattern
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}
	return &IgnoreMatcher{matcher: gitignore.NewMatcher(patterns)}
}

// ShouldIgnore checks if a workspace-relative path matches any gitignore patterns.
func (m *IgnoreMatcher) ShouldIgnore(relativePath string, isDir bool) bool {
	segments := splitPath(relativePath)
	if len(segments) == 0 {
		return false
	}
	for _, s := range segments {
		if s == gitDir {
			return true
		}
	}
	if m.matcher == nil {
		return false
	}
	return m.matcher.Match(segments, isDir)
}

// splitPath splits a path into segments for gitignore matching.
// It normalizes path separators and filters out empty and "." segments.
func splitPath(path string) []string {
	if path == "" {
		return []string{}
	}

	normalized := filepath.ToSlash(path)

	parts := strings.Split(normalized, "/")
	var segments []string
	for _, part := range parts {
		if part != "" && part != "." {
			segments = append(segments, part)
		}
	}

	return segments
}

// NoOpMatcher is a gitignore matcher that never ignores any files.
// It is used when gitignore functionality is disabled or fails to initialize.
type NoOpMatcher struct{}

// ShouldIgnore always returns false for NoOpMatcher.
func (m *NoOpMatcher) ShouldIgnore(relativePath string, isDir bool) bool {
	return false
}
