package shell

import (
	"errors"
	"fmt"
	"time"
)

// ErrDangerousCommand matches every command rejected by the safety check.
var ErrDangerousCommand = errors.New("potentially dangerous command detected")

// BlockedCommandError is returned when a command matches the danger denylist.
type BlockedCommandError struct {
	Reason string
}

func (e *BlockedCommandError) Error() string {
	return fmt.Sprintf("%v: %s", ErrDangerousCommand, e.Reason)
}
func (e *BlockedCommandError) Unwrap() error { return ErrDangerousCommand }

// TimeoutError is returned when a shell command exceeds its timeout.
type TimeoutError struct {
	Duration time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("command timed out after %ds (retryable)", int(e.Duration.Seconds()))
}

func (e *TimeoutError) Timeout() bool {
	return true
}

// EnvFileReadError is returned when reading or parsing an env file fails.
type EnvFileReadError struct {
	Path  string
	Cause error
}

func (e *EnvFileReadError) Error() string {
	return fmt.Sprintf("failed to read env file %s: %v", e.Path, e.Cause)
}
func (e *EnvFileReadError) Unwrap() error { return e.Cause }

// CommandRequiredError is returned when a command is missing.
type CommandRequiredError struct{}

func (e *CommandRequiredError) Error() string {
	return "command cannot be empty"
}

// NegativeTimeoutError is returned when a timeout is negative.
type NegativeTimeoutError struct {
	Value int
}

func (e *NegativeTimeoutError) Error() string {
	return fmt.Sprintf("timeout_seconds cannot be negative: %d", e.Value)
}

// TimeoutTooLargeError is returned when a timeout exceeds MaxTimeoutSeconds.
type TimeoutTooLargeError struct {
	Value int
	Max   int
}

func (e *TimeoutTooLargeError) Error() string {
	return fmt.Sprintf("timeout_seconds cannot exceed %d: %d", e.Max, e.Value)
}
