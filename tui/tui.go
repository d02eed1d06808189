// Package tui provides the Bubble Tea prompt panel for the command
// pipeline: a textarea for free-text prompts, a scrollable transcript,
// and a spinner while an interpretation is in flight.
package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pedrocandeias/idaia"
	"github.com/pedrocandeias/idaia/dispatch"
)

// Pipeline accepts prompts and resolves them off the UI thread.
// *dispatch.Dispatcher satisfies it.
type Pipeline interface {
	Submit(ctx context.Context, prompt string) (<-chan dispatch.Result, error)
	Cancel()
}

var _ Pipeline = (*dispatch.Dispatcher)(nil)

// ApplyFunc materializes a resolved command set in the document and
// returns the created objects. The panel calls it on the UI goroutine
// after each successful interpretation.
type ApplyFunc func(set idaia.CommandSet) ([]idaia.ObjectRef, error)

// Run creates and runs the Bubble Tea program. It blocks until the
// program exits. When the context is cancelled the program quits.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	return err
}

// ResultMsg delivers the outcome of one submitted prompt. Ok is false
// when the invocation was abandoned before completing.
type ResultMsg struct {
	Seq    int
	Result dispatch.Result
	Ok     bool
}
