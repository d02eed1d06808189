// Package markdown renders markdown text to ANSI-styled terminal
// output using goldmark for parsing and lipgloss for styling. The
// panel uses it for the model's explanation text, which is prose with
// the occasional list or emphasis, so the renderer covers paragraphs,
// headings, lists, code spans and fenced blocks and nothing more.
package markdown

import "github.com/pedrocandeias/idaia"

// Render parses markdown source and returns ANSI-styled terminal
// output. Paragraphs and list items are word-wrapped to width. Code
// blocks are rendered at full width without reflow.
func Render(source string, width int, theme idaia.Theme) string {
	if source == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}
	r := newRenderer(theme)
	return r.render([]byte(source), width)
}
