package permission

import (
	"errors"
	"fmt"
)

// ErrPermissionDenied matches every denial.
var ErrPermissionDenied = errors.New("permission denied")

// DeniedError is returned when the user or the static policy refuses an operation.
type DeniedError struct {
	Class     Class
	Operation string
	ByPolicy  bool
}

func (e *DeniedError) Error() string {
	if e.ByPolicy {
		return fmt.Sprintf("permission denied: %s is denied by policy", e.Class)
	}
	return fmt.Sprintf("permission denied: user declined %s", e.Operation)
}
func (e *DeniedError) Unwrap() error { return ErrPermissionDenied }
