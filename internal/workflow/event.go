package workflow

import (
	"github.com/Cyclone1070/kestrel/internal/provider"
	"github.com/Cyclone1070/kestrel/internal/tool"
)

// Event is the interface for all workflow events.
// UI handles events via type switch.
type Event interface {
	isEvent()
}

// ThinkingEvent is emitted before each collaborator step.
type ThinkingEvent struct{}

func (ThinkingEvent) isEvent() {}

// TextEvent is emitted for each chunk of assistant text.
type TextEvent struct {
	Text string
}

func (TextEvent) isEvent() {}

// ToolResultEvent is emitted once per dispatched call, in request order.
type ToolResultEvent struct {
	Call   provider.ToolCallPart
	Result tool.Result
}

func (ToolResultEvent) isEvent() {}

// ErrorEvent carries a collaborator error. It is visible, not fatal.
type ErrorEvent struct {
	Err error
}

func (ErrorEvent) isEvent() {}

// BudgetExceededEvent is emitted when a round runs out of steps while the
// model still requests tools.
type BudgetExceededEvent struct {
	Budget int
}

func (BudgetExceededEvent) isEvent() {}

// DoneEvent is emitted when a round completes.
type DoneEvent struct{}

func (DoneEvent) isEvent() {}
