package search

import (
	"errors"
	"fmt"
)

var (
	ErrPatternRequired = errors.New("pattern is required")
	ErrFileMissing     = errors.New("search path does not exist")
)

// InvalidRegexError is returned when the pattern does not compile.
type InvalidRegexError struct {
	Pattern string
	Cause   error
}

func (e *InvalidRegexError) Error() string {
	return fmt.Sprintf("invalid regular expression %q: %v", e.Pattern, e.Cause)
}
func (e *InvalidRegexError) Unwrap() error { return e.Cause }

// InvalidIncludeError is returned for a malformed include glob.
type InvalidIncludeError struct {
	Include string
}

func (e *InvalidIncludeError) Error() string {
	return fmt.Sprintf("invalid include pattern: %s", e.Include)
}

// StatError is returned when the search path cannot be inspected.
type StatError struct {
	Path  string
	Cause error
}

func (e *StatError) Error() string {
	return fmt.Sprintf("failed to stat %s: %v", e.Path, e.Cause)
}
func (e *StatError) Unwrap() error { return e.Cause }
