package ui

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Cyclone1070/kestrel/internal/provider"
	"github.com/Cyclone1070/kestrel/internal/tool"
	"github.com/Cyclone1070/kestrel/internal/workflow"
)

const (
	maxArgLength   = 50
	maxResultLines = 5
)

// Renderer writes workflow events to the terminal. Its only state is the
// spinner, which the first content-bearing event of a step clears.
type Renderer struct {
	term    *Terminal
	spinner *Spinner
	done    chan struct{}
}

// NewRenderer creates a Renderer.
func NewRenderer(term *Terminal, spinner *Spinner) *Renderer {
	if term == nil {
		panic("term is required")
	}
	if spinner == nil {
		panic("spinner is required")
	}
	return &Renderer{term: term, spinner: spinner, done: make(chan struct{}, 1)}
}

// Run handles events until the channel closes or ctx is cancelled.
func (r *Renderer) Run(ctx context.Context, events <-chan workflow.Event) {
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				r.spinner.Stop()
				return
			}
			r.Handle(ev)
		case <-ctx.Done():
			r.spinner.Stop()
			return
		}
	}
}

// Handle renders one event.
func (r *Renderer) Handle(ev workflow.Event) {
	if _, ok := ev.(workflow.ThinkingEvent); ok {
		r.spinner.Start()
		return
	}
	r.spinner.Stop()

	styles := r.term.Styles()
	switch e := ev.(type) {
	case workflow.TextEvent:
		r.term.Write(e.Text)
	case workflow.ToolResultEvent:
		r.term.Write("\n\n" + FormatToolResult(styles, e.Call, e.Result) + "\n\n")
	case workflow.ErrorEvent:
		r.term.Write(renderLines(styles.Failure, e.Err.Error()))
	case workflow.BudgetExceededEvent:
		r.term.Write("\n" + styles.Notice.Render(fmt.Sprintf("Stopped after %d steps; the model was still requesting tools.", e.Budget)) + "\n")
	case workflow.DoneEvent:
		r.term.Write("\n\n")
		select {
		case r.done <- struct{}{}:
		default:
		}
	}
}

// WaitDone blocks until a DoneEvent has been drawn or ctx is cancelled.
func (r *Renderer) WaitDone(ctx context.Context) {
	select {
	case <-r.done:
	case <-ctx.Done():
	}
}

// FormatToolResult renders a tool line followed by the first lines of its
// result. Truncation affects the display only.
func FormatToolResult(styles Styles, call provider.ToolCallPart, result tool.Result) string {
	header := styles.ToolName.Render(call.ToolName)
	if args := FormatArgs(styles, call.Arguments); args != "" {
		header += " " + args
	}

	style := styles.Success
	if !result.Success {
		style = styles.Failure
	}
	return header + "\n" + renderLines(style, previewValue(result.PrimaryValue()))
}

// renderLines styles each line on its own so lines are not padded to a
// common width.
func renderLines(style lipgloss.Style, s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = style.Render(line)
	}
	return strings.Join(lines, "\n")
}

// FormatArgs renders arguments as "key: value" pairs sorted by key.
func FormatArgs(styles Styles, raw json.RawMessage) string {
	var args map[string]any
	if len(raw) == 0 || json.Unmarshal(raw, &args) != nil || len(args) == 0 {
		return ""
	}

	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = styles.ArgKey.Render(k+":") + " " + shortArg(args[k])
	}
	return strings.Join(pairs, styles.ArgKey.Render(", "))
}

// shortArg cuts a value to maxArgLength runes and escapes newlines.
func shortArg(v any) string {
	s := stringify(v, false)
	runes := []rune(s)
	if len(runes) <= maxArgLength {
		return strings.ReplaceAll(s, "\n", `\n`)
	}
	return strings.ReplaceAll(string(runes[:maxArgLength]), "\n", `\n`) + "..."
}

// previewValue keeps the first maxResultLines lines of a result value.
func previewValue(v any) string {
	lines := strings.Split(stringify(v, true), "\n")
	if len(lines) > maxResultLines {
		lines = lines[:maxResultLines]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func stringify(v any, indent bool) string {
	if s, ok := v.(string); ok {
		return s
	}
	var (
		data []byte
		err  error
	)
	if indent {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
