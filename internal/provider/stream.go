package provider

import "github.com/Cyclone1070/kestrel/internal/tool"

// Request is one collaborator step.
type Request struct {
	System   string
	Messages []Message
	Tools    []tool.Declaration
}

// StreamEvent is a sealed union of incremental collaborator output.
// A stream ends with exactly one Finished, or with an Error when the call
// fails outright.
type StreamEvent interface {
	isStreamEvent()
}

// TextDelta is a chunk of assistant text.
type TextDelta struct {
	Text string
}

// ToolCallRequested is a complete tool call the caller should execute.
type ToolCallRequested struct {
	Call ToolCallPart
}

// ToolCallResult is a result produced by the collaborator itself.
// It is recorded, never dispatched locally.
type ToolCallResult struct {
	Result ToolResultPart
}

// StepFinished reports why the model stopped generating.
type StepFinished struct {
	Reason string
}

// Error is a failure reported by the collaborator.
type Error struct {
	Err error
}

// Finished carries the messages the step produced.
type Finished struct {
	Messages []Message
}

func (TextDelta) isStreamEvent()         {}
func (ToolCallRequested) isStreamEvent() {}
func (ToolCallResult) isStreamEvent()    {}
func (StepFinished) isStreamEvent()      {}
func (Error) isStreamEvent()             {}
func (Finished) isStreamEvent()          {}
