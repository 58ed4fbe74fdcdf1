package file

import (
	"errors"
	"fmt"
)

// -- Error Types --

type StatError struct {
	Path  string
	Cause error
}

func (e *StatError) Error() string {
	return fmt.Sprintf("failed to stat %s: %v", e.Path, e.Cause)
}
func (e *StatError) Unwrap() error { return e.Cause }

type WriteError struct {
	Path  string
	Cause error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.Path, e.Cause)
}
func (e *WriteError) Unwrap() error { return e.Cause }

// -- Sentinels --

var (
	ErrFileMissing    = errors.New("file does not exist")
	ErrBinaryFile     = errors.New("file is binary")
	ErrFileTooLarge   = errors.New("file too large")
	ErrIsDirectory    = errors.New("path is a directory")
	ErrPathRequired   = errors.New("filePath is required")
	ErrSearchRequired = errors.New("search string must not be empty")
)
