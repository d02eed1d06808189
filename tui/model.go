package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/pedrocandeias/idaia"
	"github.com/pedrocandeias/idaia/dispatch"
)

var _ tea.Model = Model{}

// Model is the Bubble Tea model for the prompt panel.
type Model struct {
	// Input is the prompt textarea. Exported for test access.
	Input textarea.Model
	// Viewport is the scrollable transcript area. Exported for test access.
	Viewport viewport.Model

	pipeline Pipeline
	apply    ApplyFunc
	session  *idaia.Session
	theme    idaia.Theme
	styles   Styles
	spin     spinner.Model

	blocks   []MessageBlock
	running  bool
	seq      int // submit sequence; stale ResultMsgs carry an older one
	resultCh <-chan dispatch.Result
	err      error
	ready    bool
}

// New creates a panel Model over the given pipeline and session.
func New(p Pipeline, apply ApplyFunc, session *idaia.Session, theme idaia.Theme) Model {
	ta := textarea.New()
	ta.Placeholder = "Describe a shape, e.g. \"create a box 10x20x5 mm\""
	ta.Prompt = ""
	ta.SetHeight(2)
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		Input:    ta,
		pipeline: p,
		apply:    apply,
		session:  session,
		theme:    theme,
		styles:   NewStyles(theme),
		spin:     sp,
	}
}

// Running returns whether an interpretation is in flight.
func (m Model) Running() bool { return m.running }

// Err returns the last error, if any.
func (m Model) Err() error { return m.err }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m = m.handleWindowSize(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case ResultMsg:
		return m.handleResult(msg)
	}

	// Viewport always receives messages for scrolling.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)

	if !m.running {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.Input.View())
	return b.String()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	inputH := m.Input.Height()
	statusHeight := 1
	borderHeight := 2 // newlines between sections
	vpHeight := msg.Height - inputH - statusHeight - borderHeight
	if vpHeight < 1 {
		vpHeight = 1
	}

	if !m.ready {
		m.Viewport = viewport.New(msg.Width, vpHeight)
		m = m.replaySession()
		m.Viewport.SetContent(m.renderContent())
		m.Viewport.GotoBottom()
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = vpHeight
	}

	m.Input.SetWidth(msg.Width)
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.running {
			m = m.cancelInFlight()
			return m, nil
		}
		return m, tea.Quit

	case tea.KeyEsc:
		if m.running {
			m = m.cancelInFlight()
		}
		return m, nil

	case tea.KeyEnter:
		if m.running {
			return m, nil
		}
		text := strings.TrimSpace(m.Input.Value())
		if text == "" {
			return m, nil
		}
		return m.submitPrompt(text)
	}

	// When idle, pass non-character keys to the viewport for scrolling
	// and everything to the textarea for typing.
	if !m.running {
		var cmd tea.Cmd
		var cmds []tea.Cmd
		if msg.Type != tea.KeyRunes {
			m.Viewport, cmd = m.Viewport.Update(msg)
			cmds = append(cmds, cmd)
		}
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m Model) submitPrompt(text string) (tea.Model, tea.Cmd) {
	ch, err := m.pipeline.Submit(context.Background(), text)
	if err != nil {
		// ErrBusy cannot happen here because the panel gates on running,
		// but surface it rather than swallow it.
		m.err = err
		return m, nil
	}

	m.Input.Reset()
	m.Input.Blur()
	m.err = nil
	m.running = true
	m.seq++
	m.resultCh = ch

	m.blocks = append(m.blocks, NewPromptBlock(text, m.styles))
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()

	return m, tea.Batch(m.spin.Tick, awaitResult(ch, m.seq))
}

// cancelInFlight abandons the outstanding request and frees the panel
// immediately. The eventual stale ResultMsg is ignored by sequence.
func (m Model) cancelInFlight() Model {
	m.pipeline.Cancel()
	m.running = false
	m.resultCh = nil
	m.blocks = append(m.blocks, NewNoteBlock("cancelled", m.styles))
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()
	m.Input.Focus()
	return m
}

func (m Model) handleResult(msg ResultMsg) (tea.Model, tea.Cmd) {
	if msg.Seq != m.seq || !m.running {
		return m, nil
	}
	m.running = false
	m.resultCh = nil

	switch {
	case !msg.Ok:
		// Channel closed without a result: abandoned upstream.
		m.blocks = append(m.blocks, NewNoteBlock("cancelled", m.styles))

	case msg.Result.Err != nil:
		m.err = msg.Result.Err
		m.blocks = append(m.blocks, NewErrorBlock(msg.Result.Err, m.styles))

	default:
		objects, err := m.apply(msg.Result.Commands)
		if err != nil {
			m.err = err
			m.blocks = append(m.blocks, NewErrorBlock(err, m.styles))
			break
		}
		m.blocks = append(m.blocks, NewResultBlock(msg.Result.Commands, objects, m.theme, m.styles))
	}

	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()
	cmd := m.Input.Focus()
	return m, cmd
}

// replaySession creates blocks from the persisted session transcript.
func (m Model) replaySession() Model {
	for _, turn := range m.session.Window() {
		switch turn.Role {
		case idaia.RoleUser:
			m.blocks = append(m.blocks, NewPromptBlock(turn.Text, m.styles))
		case idaia.RoleAssistant:
			m.blocks = append(m.blocks, NewNoteBlock(turn.Text, m.styles))
		}
	}
	return m
}

func (m Model) renderContent() string {
	if len(m.blocks) == 0 {
		return ""
	}
	var b strings.Builder
	for i, block := range m.blocks {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(block.View(m.Viewport.Width))
	}
	return b.String()
}

func (m Model) statusLine() string {
	width := m.Viewport.Width
	if width <= 0 {
		width = 80
	}

	switch {
	case m.running:
		return m.spin.View() + m.styles.Muted.Render("Interpreting...")
	case m.err != nil:
		text := runewidth.Truncate("Error: "+m.err.Error(), width, "…")
		return m.styles.Error.Render(text)
	default:
		scene := m.session.SceneSnapshot()
		text := "Enter to send, Esc to cancel, Ctrl+C to quit"
		if scene != "" {
			text += "  |  " + scene
		}
		return m.styles.Muted.Render(runewidth.Truncate(text, width, "…"))
	}
}

// awaitResult waits for the pipeline to deliver the invocation's
// outcome, tagging it with the submit sequence so a reply from an
// abandoned request can be told apart from the current one.
func awaitResult(ch <-chan dispatch.Result, seq int) tea.Cmd {
	return func() tea.Msg {
		res, ok := <-ch
		return ResultMsg{Seq: seq, Result: res, Ok: ok}
	}
}
