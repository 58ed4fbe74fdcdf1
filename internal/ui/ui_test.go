package ui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cyclone1070/kestrel/internal/provider"
	"github.com/Cyclone1070/kestrel/internal/tool"
	"github.com/Cyclone1070/kestrel/internal/workflow"
)

func newTestTerminal(input string) (*Terminal, *bytes.Buffer) {
	var out bytes.Buffer
	return NewTerminal(strings.NewReader(input), &out), &out
}

func TestNewTerminal_NonTTY_NoColor(t *testing.T) {
	term, _ := newTestTerminal("")

	assert.False(t, term.IsTTY())
	assert.False(t, term.Interactive())
	assert.Equal(t, "ls", term.Styles().ToolName.Render("ls"))
}

func TestFormatArgs(t *testing.T) {
	styles, _ := newTestTerminal("")
	long := strings.Repeat("a", 60)

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"Sorted Keys", `{"path":"a.go","content":"x"}`, "content: x, path: a.go"},
		{"Long Value Cut", `{"content":"` + long + `"}`, "content: " + strings.Repeat("a", 50) + "..."},
		{"Exactly 50 Not Cut", `{"content":"` + strings.Repeat("b", 50) + `"}`, "content: " + strings.Repeat("b", 50)},
		{"Newlines Escaped", `{"command":"echo a\necho b"}`, `command: echo a\necho b`},
		{"Non String Value", `{"timeout_seconds":30,"env_files":["a.env"]}`, `env_files: ["a.env"], timeout_seconds: 30`},
		{"Empty Object", `{}`, ""},
		{"Not An Object", `[1,2]`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatArgs(styles.Styles(), json.RawMessage(tt.raw))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatToolResult_Success_FirstFiveLines(t *testing.T) {
	term, _ := newTestTerminal("")
	call := provider.ToolCallPart{ToolName: "read_file", Arguments: json.RawMessage(`{"path":"main.go"}`)}
	result := tool.Success("content", "1\n2\n3\n4\n5\n6\n7\n")

	got := FormatToolResult(term.Styles(), call, result)

	assert.Equal(t, "read_file path: main.go\n1\n2\n3\n4\n5", got)
}

func TestFormatToolResult_Failure_ShowsError(t *testing.T) {
	term, _ := newTestTerminal("")
	call := provider.ToolCallPart{ToolName: "bash", Arguments: json.RawMessage(`{"command":"false"}`)}

	got := FormatToolResult(term.Styles(), call, tool.Failuref("command exited with code 1"))

	assert.Equal(t, "bash command: false\ncommand exited with code 1", got)
}

func TestFormatToolResult_NonStringValue_IndentedJSON(t *testing.T) {
	term, _ := newTestTerminal("")
	call := provider.ToolCallPart{ToolName: "ls"}

	got := FormatToolResult(term.Styles(), call, tool.Success("items", []string{"a/", "b.go"}))

	assert.Equal(t, "ls\n[\n  \"a/\",\n  \"b.go\"\n]", got)
}

func TestRenderer_Run_WritesEventsInOrder(t *testing.T) {
	term, out := newTestTerminal("")
	r := NewRenderer(term, NewSpinner(term, "Thinking"))
	events := make(chan workflow.Event, 8)
	events <- workflow.ThinkingEvent{}
	events <- workflow.TextEvent{Text: "Looking"}
	events <- workflow.TextEvent{Text: " around."}
	events <- workflow.ToolResultEvent{
		Call:   provider.ToolCallPart{ToolName: "glob", Arguments: json.RawMessage(`{"pattern":"*.go"}`)},
		Result: tool.Success("files", "main.go"),
	}
	events <- workflow.ErrorEvent{Err: errors.New("overloaded")}
	events <- workflow.BudgetExceededEvent{Budget: 25}
	events <- workflow.DoneEvent{}
	close(events)

	r.Run(context.Background(), events)

	got := out.String()
	assert.True(t, strings.HasPrefix(got, "Looking around.\n\nglob pattern: *.go\nmain.go\n\n"), got)
	assert.Contains(t, got, "overloaded")
	assert.Contains(t, got, "Stopped after 25 steps")
	assert.True(t, strings.HasSuffix(got, "\n\n"))
}

func TestSpinner_NonTTY_NeverStarts(t *testing.T) {
	term, out := newTestTerminal("")
	s := NewSpinner(term, "Thinking")

	s.Start()
	s.Stop()

	assert.False(t, s.Active())
	assert.Empty(t, out.String())
}

func TestPrompter_ReadInput(t *testing.T) {
	term, out := newTestTerminal("hello world\nsecond\n")
	p := NewPrompter(term, NewSpinner(term, ""), nil)

	first, err := p.ReadInput(context.Background(), "You: ")
	require.NoError(t, err)
	second, err := p.ReadInput(context.Background(), "You: ")
	require.NoError(t, err)
	_, err = p.ReadInput(context.Background(), "You: ")

	assert.Equal(t, "hello world", first)
	assert.Equal(t, "second", second)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "You: You: You: ", out.String())
}

func TestPrompter_ReadInput_LastLineWithoutNewline(t *testing.T) {
	term, _ := newTestTerminal("exit")
	p := NewPrompter(term, NewSpinner(term, ""), nil)

	got, err := p.ReadInput(context.Background(), "")

	require.NoError(t, err)
	assert.Equal(t, "exit", got)
}

func TestPrompter_ReadInput_Cancelled(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	var out bytes.Buffer
	term := NewTerminal(pr, &out)
	p := NewPrompter(term, NewSpinner(term, ""), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.ReadInput(ctx, "You: ")

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPrompter_ReadPermission_LineFallback(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"Yes", "y\n", true},
		{"Yes Word", "YES\n", true},
		{"No", "n\n", false},
		{"Anything Else", "sure\n", false},
		{"Empty", "\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term, out := newTestTerminal(tt.input)
			p := NewPrompter(term, NewSpinner(term, ""), nil)

			got, err := p.ReadPermission(context.Background(), "executing `rm -rf build`")

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, "? Allow executing `rm -rf build`? (y/n) ", out.String())
		})
	}
}

func TestPrompter_ReadPermission_EOF(t *testing.T) {
	term, _ := newTestTerminal("")
	p := NewPrompter(term, NewSpinner(term, ""), nil)

	_, err := p.ReadPermission(context.Background(), "writing a.go")

	assert.ErrorIs(t, err, io.EOF)
}

func TestConfirmModel_Keys(t *testing.T) {
	tests := []struct {
		key         string
		allowed     bool
		interrupted bool
	}{
		{"y", true, false},
		{"n", false, false},
		{"esc", false, false},
		{"ctrl+c", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			m := confirmModel{question: "? Allow x?"}
			msg := keyMsg(tt.key)

			next, cmd := m.Update(msg)

			got := next.(confirmModel)
			assert.Equal(t, tt.allowed, got.allowed)
			assert.Equal(t, tt.interrupted, got.interrupted)
			assert.NotNil(t, cmd)
		})
	}
}

func TestConfirmModel_OtherKey_Ignored(t *testing.T) {
	m := confirmModel{question: "? Allow x?"}

	next, cmd := m.Update(keyMsg("q"))

	assert.False(t, next.(confirmModel).decided)
	assert.Nil(t, cmd)
	assert.Equal(t, "? Allow x? (y/n) ", next.View())
}

func TestMarkdown_PlainStyle(t *testing.T) {
	term, _ := newTestTerminal("")

	got := term.Markdown("## Notes\n\nuse pnpm")

	assert.Contains(t, got, "Notes")
	assert.Contains(t, got, "use pnpm")
}

func TestRenderer_WaitDone(t *testing.T) {
	term, _ := newTestTerminal("")
	r := NewRenderer(term, NewSpinner(term, "Thinking"))

	r.Handle(workflow.DoneEvent{})

	waited := make(chan struct{})
	go func() {
		r.WaitDone(context.Background())
		close(waited)
	}()

	select {
	case <-waited:
	case <-time.After(time.Second):
		t.Fatal("WaitDone did not return after DoneEvent")
	}
}

func TestRenderer_WaitDone_Cancelled(t *testing.T) {
	term, _ := newTestTerminal("")
	r := NewRenderer(term, NewSpinner(term, "Thinking"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r.WaitDone(ctx)
}
