package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// markdownRenderer wraps glamour for terminal markdown output. A nil
// inner renderer degrades to plain text so a rendering failure never
// hides the answer.
type markdownRenderer struct {
	renderer *glamour.TermRenderer
	width    int
}

func newMarkdownRenderer(width int) *markdownRenderer {
	m := &markdownRenderer{width: width}
	m.rebuild()
	return m
}

func (m *markdownRenderer) rebuild() {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(m.width),
	)
	if err != nil {
		m.renderer = nil
		return
	}
	m.renderer = r
}

// UpdateWidth rebuilds the renderer for a new terminal width.
func (m *markdownRenderer) UpdateWidth(width int) {
	if width == m.width || width <= 0 {
		return
	}
	m.width = width
	m.rebuild()
}

// Render converts markdown to styled terminal output, falling back to
// the raw text on any failure.
func (m *markdownRenderer) Render(text string) string {
	if m.renderer == nil {
		return text
	}
	out, err := m.renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}
