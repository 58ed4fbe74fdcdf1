package loop

import (
	"context"

	"github.com/Cyclone1070/kestrel/internal/provider"
	"github.com/Cyclone1070/kestrel/internal/tool"
	"github.com/Cyclone1070/kestrel/internal/workflow/toolmanager"
)

// collaborator streams one model step.
type collaborator interface {
	// Stream returns a channel that is closed after Finished, or after an
	// Error when the call fails outright.
	Stream(ctx context.Context, req provider.Request) <-chan provider.StreamEvent
}

// toolDispatcher validates and runs tool calls.
type toolDispatcher interface {
	// Declarations returns all tool schemas for the model.
	Declarations() []tool.Declaration

	// DispatchAll runs calls and returns results in request order.
	DispatchAll(ctx context.Context, calls []toolmanager.Call) ([]tool.Result, error)
}

// memoryReader reads the saved notes included in the system prompt.
type memoryReader interface {
	Read() (string, error)
}
