// Package ui renders recipes and messages for the terminal.
package ui

import (
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"

	"github.com/pageza/recipebox/internal/types"
)

const (
	defaultWidth     = 80
	maxReadableWidth = 100
)

// TerminalWidth is the stdout width capped for readability
func TerminalWidth() int {
	width := defaultWidth
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}
	if width > maxReadableWidth {
		width = maxReadableWidth
	}
	return width
}

// IsTerminal reports whether stdout is a TTY
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// RenderMarkdown renders a recipe body in the resolved theme. The raw
// markdown comes back when styling is off or rendering fails.
func RenderMarkdown(markdown string, theme types.Theme, width int, styled bool) string {
	if !styled {
		return markdown
	}
	style := "light"
	if theme == types.ThemeDark {
		style = "dark"
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return markdown
	}
	rendered, err := renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return rendered
}
