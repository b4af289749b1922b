package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wordwrap"

	"github.com/nathoo/dotiam/cli"
)

// historySize is how many submitted lines Up/Down can recall.
const historySize = 100

// chrome is the number of rows below the viewport: status bar and input.
const chrome = 2

// role tells the renderer who produced a transcript entry.
type role int

const (
	roleNarration role = iota
	roleInput
	roleSystem
)

// entry is one unstyled transcript line. Styling and wrapping happen at
// render time so a resize can reflow the whole transcript.
type entry struct {
	text string
	role role
	kind lineKind // narration only
}

// keyMap binds the keys the model reacts to. Up and Down recall history,
// so the viewport only scrolls by page.
type keyMap struct {
	Submit key.Binding
	Older  key.Binding
	Newer  key.Binding
	Scroll key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Submit: key.NewBinding(key.WithKeys("enter")),
	Older:  key.NewBinding(key.WithKeys("up")),
	Newer:  key.NewBinding(key.WithKeys("down")),
	Scroll: key.NewBinding(key.WithKeys("pgup", "pgdown", "ctrl+u", "ctrl+d")),
	Quit:   key.NewBinding(key.WithKeys("ctrl+c")),
}

// Model is the Bubble Tea model for the dotiam TUI.
type Model struct {
	ctx     context.Context
	session *cli.Session
	intro   []string

	viewport viewport.Model
	input    textinput.Model
	history  *History

	transcript []entry
	lastOutput []string // narration of the latest game command, for /copy
	copyText   func(string) error

	width    int
	ready    bool
	quitting bool
}

// outputMsg delivers lines produced outside a key press, such as the intro.
type outputMsg struct {
	lines []string
}

// New creates a TUI model over a session. intro is shown first.
func New(ctx context.Context, s *cli.Session, intro []string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.PromptStyle = styleInputPrompt
	ti.CharLimit = 256
	ti.Focus()

	return Model{
		ctx:      ctx,
		session:  s,
		intro:    intro,
		input:    ti,
		history:  NewHistory(historySize),
		copyText: clipboard.WriteAll,
	}
}

// Run starts the Bubble Tea program and blocks until the player quits.
func Run(ctx context.Context, s *cli.Session, intro []string) error {
	p := tea.NewProgram(New(ctx, s, intro),
		tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.introCmd())
}

func (m Model) introCmd() tea.Cmd {
	lines := m.intro
	return func() tea.Msg { return outputMsg{lines: lines} }
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case outputMsg:
		m.record("", msg.lines, roleNarration)
		return m, nil

	case tea.KeyMsg:
		if next, cmd, handled := m.handleKey(msg); handled {
			return next, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) resize(width, height int) {
	m.width = width
	vpHeight := max(height-chrome, 1)
	if !m.ready {
		m.viewport = viewport.New(width, vpHeight)
		m.viewport.KeyMap = viewport.KeyMap{
			PageDown:     key.NewBinding(key.WithKeys("pgdown")),
			PageUp:       key.NewBinding(key.WithKeys("pgup")),
			HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
			HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		}
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = vpHeight
	}
	m.render()
}

// handleKey reports handled=false for keys that belong to the text input.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		return m, tea.Quit, true

	case key.Matches(msg, keys.Submit):
		next, cmd := m.submit()
		return next, cmd, true

	case key.Matches(msg, keys.Older):
		if line, ok := m.history.Prev(); ok {
			m.setInput(line)
		}
		return m, nil, true

	case key.Matches(msg, keys.Newer):
		line, ok := m.history.Next()
		if !ok {
			m.history.ResetCursor()
		}
		m.setInput(line)
		return m, nil, true

	case key.Matches(msg, keys.Scroll):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd, true
	}
	return m, nil, false
}

func (m *Model) setInput(s string) {
	m.input.SetValue(s)
	m.input.CursorEnd()
}

// submit sends the typed line to the session. /copy and the extra help
// lines are local to the TUI; everything else is the session's.
func (m Model) submit() (Model, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())
	m.input.Reset()
	if line == "" {
		return m, nil
	}
	m.history.Push(line)

	switch line {
	case "/copy":
		m.record(line, m.copyLast(), roleSystem)
		return m, nil
	case "/help":
		reply := m.session.Exec(m.ctx, line)
		m.record(line, append(reply.Lines, tuiHelp...), roleSystem)
		return m, nil
	}

	reply := m.session.Exec(m.ctx, line)
	r := roleNarration
	if reply.System {
		r = roleSystem
	} else {
		m.lastOutput = reply.Lines
	}
	m.record(line, reply.Lines, r)

	if reply.Quit {
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

var tuiHelp = []string{
	"  /copy                  Copy the last narration to the clipboard",
	"",
	"Navigation: PgUp/PgDn to scroll, Up/Down for command history",
}

func (m Model) copyLast() []string {
	if len(m.lastOutput) == 0 {
		return []string{"Nothing to copy."}
	}
	if err := m.copyText(strings.Join(m.lastOutput, "\n")); err != nil {
		return []string{fmt.Sprintf("Copy failed: %v", err)}
	}
	return []string{"Copied to clipboard."}
}

// record appends the echoed input (if any) and its output to the
// transcript, followed by a blank separator.
func (m *Model) record(input string, lines []string, r role) {
	if input != "" {
		m.transcript = append(m.transcript, entry{text: "> " + input, role: roleInput})
	}
	for _, l := range lines {
		e := entry{text: l, role: r}
		if r == roleNarration {
			e.kind = classifyLine(l)
		}
		m.transcript = append(m.transcript, e)
	}
	m.transcript = append(m.transcript, entry{})
	m.render()
}

// render wraps and styles the transcript at the current width.
func (m *Model) render() {
	if !m.ready {
		return
	}
	width := max(m.width, 10)

	var b strings.Builder
	for i, e := range m.transcript {
		if i > 0 {
			b.WriteByte('\n')
		}
		if e.text == "" {
			continue
		}
		b.WriteString(e.style(wordwrap.String(e.text, width)))
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

func (e entry) style(text string) string {
	switch e.role {
	case roleInput:
		return stylePlayerInput.Render(text)
	case roleSystem:
		return styledSystemMsg(text)
	}
	switch e.kind {
	case kindYouSee:
		return styledYouSee(text)
	case kindPaths:
		return stylePaths.Render(text)
	case kindGain:
		return styleGain.Render(text)
	case kindSystem:
		return styleSystem.Render(text)
	case kindError:
		return styleError.Render(text)
	case kindTrace:
		return styleTrace.Render(text)
	default:
		return styleNodeDesc.Render(text)
	}
}

// View renders the viewport, the status bar and the input line.
func (m Model) View() string {
	switch {
	case m.quitting:
		return ""
	case !m.ready:
		return "Loading..."
	}
	return strings.Join([]string{m.viewport.View(), m.renderStatusBar(), m.input.View()}, "\n")
}
