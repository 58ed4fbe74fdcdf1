package ui

import (
	"github.com/charmbracelet/glamour"
)

// Markdown renders text for the terminal. Without color it uses the plain
// "notty" style. The input is returned as is when rendering fails.
func (t *Terminal) Markdown(text string) string {
	style := glamour.WithStandardStyle("notty")
	if t.color {
		style = glamour.WithAutoStyle()
	}
	renderer, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(80))
	if err != nil {
		return text
	}
	out, err := renderer.Render(text)
	if err != nil {
		return text
	}
	return out
}
