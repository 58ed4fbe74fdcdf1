package directory

import (
	"errors"
	"fmt"
)

// -- Sentinels --

var (
	ErrFileMissing     = errors.New("file or path does not exist")
	ErrNotADirectory   = errors.New("not a directory")
	ErrPathRequired    = errors.New("dirPath is required")
	ErrPatternRequired = errors.New("pattern is required")
	ErrInvalidPattern  = errors.New("invalid pattern")
)

// PatternEscapeError is returned for glob patterns that could reach outside the search root.
type PatternEscapeError struct {
	Pattern string
}

func (e *PatternEscapeError) Error() string {
	return fmt.Sprintf("pattern must be relative and must not contain '..': %s", e.Pattern)
}

// StatError is returned when a directory cannot be inspected.
type StatError struct {
	Path  string
	Cause error
}

func (e *StatError) Error() string {
	return fmt.Sprintf("failed to stat %s: %v", e.Path, e.Cause)
}
func (e *StatError) Unwrap() error { return e.Cause }

// ListDirError is returned when reading a directory fails.
type ListDirError struct {
	Path  string
	Cause error
}

func (e *ListDirError) Error() string {
	return fmt.Sprintf("failed to list directory %s: %v", e.Path, e.Cause)
}
func (e *ListDirError) Unwrap() error { return e.Cause }

// InvalidPatternError is returned for malformed glob patterns.
type InvalidPatternError struct {
	Pattern string
}

func (e *InvalidPatternError) Error() string {
	return ErrInvalidPattern.Error() + ": " + e.Pattern
}
func (e *InvalidPatternError) Unwrap() error { return ErrInvalidPattern }
