package todo

import (
	"errors"
	"fmt"
)

// -- Sentinels --

var (
	ErrInvalidStatus    = errors.New("invalid status")
	ErrEmptyDescription = errors.New("description cannot be empty")
)

// InvalidStatusError names the offending todo.
type InvalidStatusError struct {
	Index  int
	Status TodoStatus
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("todos[%d]: %v %q", e.Index, ErrInvalidStatus, e.Status)
}
func (e *InvalidStatusError) Unwrap() error { return ErrInvalidStatus }

// EmptyDescriptionError names the offending todo.
type EmptyDescriptionError struct {
	Index int
}

func (e *EmptyDescriptionError) Error() string {
	return fmt.Sprintf("todos[%d]: %v", e.Index, ErrEmptyDescription)
}
func (e *EmptyDescriptionError) Unwrap() error { return ErrEmptyDescription }
