package loop

import (
	"errors"
	"fmt"
)

var (
	// ErrStepBudgetExceeded is wrapped by StepBudgetError.
	ErrStepBudgetExceeded = errors.New("step budget exceeded")

	// ErrStreamEnded means the collaborator closed its stream without
	// finishing or reporting an error.
	ErrStreamEnded = errors.New("collaborator stream ended without finishing")
)

// CollaboratorError ends a round when a step fails outright.
type CollaboratorError struct {
	Step  int
	Cause error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("collaborator failed at step %d: %v", e.Step, e.Cause)
}

func (e *CollaboratorError) Unwrap() error { return e.Cause }

// StepBudgetError reports a round that used every step while the model
// still requested tools. Messages produced so far are kept.
type StepBudgetError struct {
	Budget int
}

func (e *StepBudgetError) Error() string {
	return fmt.Sprintf("step budget of %d exhausted with tool calls still pending", e.Budget)
}

func (e *StepBudgetError) Unwrap() error { return ErrStepBudgetExceeded }
