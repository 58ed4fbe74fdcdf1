// Package ui renders workflow events to a line-oriented terminal and asks the
// user for input and permission.
package ui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Styles used by the renderer and prompter.
type Styles struct {
	ToolName lipgloss.Style
	ArgKey   lipgloss.Style
	Success  lipgloss.Style
	Failure  lipgloss.Style
	Notice   lipgloss.Style
	Prompt   lipgloss.Style
	Spinner  lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		ToolName: r.NewStyle().Foreground(lipgloss.Color("6")),
		ArgKey:   r.NewStyle().Foreground(lipgloss.Color("8")),
		Success:  r.NewStyle().Foreground(lipgloss.Color("8")),
		Failure:  r.NewStyle().Foreground(lipgloss.Color("1")),
		Notice:   r.NewStyle().Foreground(lipgloss.Color("3")),
		Prompt:   r.NewStyle().Bold(true),
		Spinner:  r.NewStyle().Foreground(lipgloss.Color("2")),
	}
}

// Terminal owns the output stream. Every write goes through it so spinner
// frames, streamed text and prompts never interleave.
type Terminal struct {
	mu     sync.Mutex
	in     io.Reader
	out    io.Writer
	tty    bool
	stdin  bool
	color  bool
	styles Styles
}

// NewTerminal wraps in and out. Color is enabled only when out is a TTY and
// NO_COLOR is unset.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	tty := isTerminal(out)
	color := tty && os.Getenv("NO_COLOR") == ""

	renderer := lipgloss.NewRenderer(out)
	if !color {
		renderer.SetColorProfile(termenv.Ascii)
	}

	return &Terminal{
		in:     in,
		out:    out,
		tty:    tty,
		stdin:  isTerminal(in),
		color:  color,
		styles: newStyles(renderer),
	}
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// IsTTY reports whether output goes to a terminal.
func (t *Terminal) IsTTY() bool {
	return t.tty
}

// Interactive reports whether both input and output are terminals.
func (t *Terminal) Interactive() bool {
	return t.tty && t.stdin
}

// Styles returns the terminal's styles.
func (t *Terminal) Styles() Styles {
	return t.styles
}

// Write writes s under the terminal lock.
func (t *Terminal) Write(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	io.WriteString(t.out, s)
}

// Printf formats and writes under the terminal lock.
func (t *Terminal) Printf(format string, args ...any) {
	t.Write(fmt.Sprintf(format, args...))
}
