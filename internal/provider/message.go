package provider

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/Cyclone1070/kestrel/internal/tool"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one entry of the conversation. Messages are append-only.
type Message struct {
	ID    string
	Role  Role
	Parts []Part
}

// Part is a sealed union: TextPart, ToolCallPart or ToolResultPart.
type Part interface {
	isPart()
}

// TextPart carries plain text.
type TextPart struct {
	Text string
}

// ToolCallPart is a tool invocation requested by the model.
type ToolCallPart struct {
	ID        string
	ToolName  string
	Arguments json.RawMessage
}

// ToolResultPart answers the ToolCallPart with the same ID.
type ToolResultPart struct {
	CallID   string
	ToolName string
	Result   tool.Result
}

func (TextPart) isPart()       {}
func (ToolCallPart) isPart()   {}
func (ToolResultPart) isPart() {}

// NewMessage builds a message with a fresh ID.
func NewMessage(role Role, parts ...Part) Message {
	return Message{ID: uuid.NewString(), Role: role, Parts: parts}
}

// UserText builds a user message holding one text part.
func UserText(text string) Message {
	return NewMessage(RoleUser, TextPart{Text: text})
}

// Text concatenates the text parts of m.
func (m Message) Text() string {
	var sb strings.Builder
	for _, p := range m.Parts {
		if t, ok := p.(TextPart); ok {
			sb.WriteString(t.Text)
		}
	}
	return sb.String()
}

// ToolCalls returns the tool call parts of m in order.
func (m Message) ToolCalls() []ToolCallPart {
	var calls []ToolCallPart
	for _, p := range m.Parts {
		if c, ok := p.(ToolCallPart); ok {
			calls = append(calls, c)
		}
	}
	return calls
}

// ToolResults returns the tool result parts of m in order.
func (m Message) ToolResults() []ToolResultPart {
	var results []ToolResultPart
	for _, p := range m.Parts {
		if r, ok := p.(ToolResultPart); ok {
			results = append(results, r)
		}
	}
	return results
}

// NewCallID returns a synthetic tool call ID for providers that omit one.
func NewCallID() string {
	return "call_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
