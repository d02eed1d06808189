package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pedrocandeias/idaia"
	"github.com/pedrocandeias/idaia/markdown"
)

// MessageBlock is a renderable element in the transcript. View takes a
// width parameter so the root model controls layout and blocks are
// testable in isolation.
type MessageBlock interface {
	View(width int) string
}

var (
	_ MessageBlock = (*PromptBlock)(nil)
	_ MessageBlock = (*ResultBlock)(nil)
	_ MessageBlock = (*ErrorBlock)(nil)
	_ MessageBlock = (*NoteBlock)(nil)
)

// PromptBlock renders a submitted prompt with a "> " prefix.
type PromptBlock struct {
	text   string
	styles Styles
}

// NewPromptBlock creates a PromptBlock.
func NewPromptBlock(text string, styles Styles) *PromptBlock {
	return &PromptBlock{text: text, styles: styles}
}

func (b *PromptBlock) View(width int) string {
	content := b.styles.Prompt.Render("> ") + b.text
	return lipgloss.NewStyle().Width(width).Render(content)
}

// ResultBlock renders a resolved command set: the created objects, the
// interpretation source, and the explanation as rendered markdown.
type ResultBlock struct {
	set     idaia.CommandSet
	objects []idaia.ObjectRef
	theme   idaia.Theme
	styles  Styles
}

// NewResultBlock creates a ResultBlock for a successful interpretation.
func NewResultBlock(set idaia.CommandSet, objects []idaia.ObjectRef, theme idaia.Theme, styles Styles) *ResultBlock {
	return &ResultBlock{set: set, objects: objects, theme: theme, styles: styles}
}

func (b *ResultBlock) View(width int) string {
	var sb strings.Builder

	tag := "rule-based"
	if b.set.Source == idaia.SourceAI {
		tag = "ai"
		if b.set.Confidence > 0 {
			tag = fmt.Sprintf("ai, confidence %.2f", b.set.Confidence)
		}
	}
	sb.WriteString(b.styles.Muted.Render("[" + tag + "]"))
	sb.WriteString("\n")

	for _, obj := range b.objects {
		line := fmt.Sprintf("%s %s (%s)", b.styles.Success.Render("✓"), obj.Name, obj.Kind)
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	if b.set.Explanation != "" {
		sb.WriteString(markdown.Render(b.set.Explanation, width, b.theme))
		sb.WriteString("\n")
	}

	return lipgloss.NewStyle().Width(width).Render(strings.TrimRight(sb.String(), "\n"))
}

// ErrorBlock renders a failed interpretation.
type ErrorBlock struct {
	err    error
	styles Styles
}

// NewErrorBlock creates an ErrorBlock.
func NewErrorBlock(err error, styles Styles) *ErrorBlock {
	return &ErrorBlock{err: err, styles: styles}
}

func (b *ErrorBlock) View(width int) string {
	content := b.styles.Error.Render("✗ " + b.err.Error())
	return lipgloss.NewStyle().Width(width).Render(content)
}

// NoteBlock renders a muted informational line, e.g. a cancellation
// notice or a replayed assistant turn.
type NoteBlock struct {
	text   string
	styles Styles
}

// NewNoteBlock creates a NoteBlock.
func NewNoteBlock(text string, styles Styles) *NoteBlock {
	return &NoteBlock{text: text, styles: styles}
}

func (b *NoteBlock) View(width int) string {
	return lipgloss.NewStyle().Width(width).Render(b.styles.Muted.Render(b.text))
}
