package editor

import (
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/iw2rmb/quill/engine"
	"github.com/iw2rmb/quill/protocol"
)

// tickMsg fires when the scheduler deadline of generation gen is due.
type tickMsg struct{ gen int }

type incomingMsg struct{ msg protocol.Message }

// MessageMsg delivers a server message forwarded by the host, typically
// through tea.Program.Send.
type MessageMsg struct {
	Message protocol.Message
}

// Model is a Bubble Tea component that renders and drives an engine.
type Model struct {
	cfg Config
	eng *engine.Engine

	focused  bool
	viewport viewport.Model
	width    int

	// gen stamps the outstanding tick; due is its deadline.
	gen int
	due time.Time

	cursorRow int
	notice    string
}

func New(eng *engine.Engine, cfg Config) Model {
	if cfg.TabWidth <= 0 {
		cfg.TabWidth = 4
	}
	if len(cfg.KeyMap.Quit.Keys()) == 0 {
		cfg.KeyMap = DefaultKeyMap()
	}
	m := Model{
		cfg:      cfg,
		eng:      eng,
		focused:  true,
		viewport: viewport.New(0, 0),
	}
	m.rebuildContent()
	return m
}

func (m Model) Engine() *engine.Engine { return m.eng }

func (m Model) Init() tea.Cmd {
	gen := m.gen
	return tea.Batch(listen(m.cfg.Incoming), func() tea.Msg { return tickMsg{gen: gen} })
}

func (m Model) SetSize(width, height int) Model {
	if width < 0 {
		width = 0
	}
	// One row is reserved for the status line.
	height--
	if height < 0 {
		height = 0
	}
	m.width = width
	m.viewport.Width = width
	m.viewport.Height = height

	m.rebuildContent()
	m.followCursor()
	return m
}

func (m Model) Focus() Model {
	if !m.focused {
		m.focused = true
		m.rebuildContent()
		m.followCursor()
	}
	return m
}

func (m Model) Blur() Model {
	if m.focused {
		m.focused = false
		m.rebuildContent()
	}
	return m
}

func (m Model) Focused() bool { return m.focused }

// Notice returns the message shown in the status line, if any.
func (m Model) Notice() string { return m.notice }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.SetSize(msg.Width, msg.Height), nil
	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		var cmd tea.Cmd
		m, cmd = m.updateKey(msg)
		cmds = append(cmds, cmd)
	case tickMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.due = time.Time{}
		m.eng.Tick(m.eng.Scheduler().Now())
	case incomingMsg:
		m.eng.Handle(msg.msg)
		cmds = append(cmds, listen(m.cfg.Incoming))
	case MessageMsg:
		m.eng.Handle(msg.Message)
	default:
		return m, nil
	}

	if n := m.eng.Notice(); n != "" {
		m.notice = n
	}
	m.rebuildContent()
	m.followCursor()
	cmds = append(cmds, m.scheduleTick())
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	return m.viewport.View() + "\n" + m.statusLine()
}

// scheduleTick arms a tick for the scheduler's next deadline unless one is
// already outstanding for it.
func (m *Model) scheduleTick() tea.Cmd {
	next, ok := m.eng.NextDeadline()
	if !ok || next.Equal(m.due) {
		return nil
	}
	m.due = next
	m.gen++
	gen := m.gen
	d, _ := m.eng.Scheduler().Until()
	return tea.Tick(d, func(time.Time) tea.Msg { return tickMsg{gen: gen} })
}

func listen(ch <-chan protocol.Message) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return incomingMsg{msg: msg}
	}
}

func (m *Model) rebuildContent() {
	m.viewport.SetContent(m.renderContent())
}

func (m *Model) followCursor() {
	h := m.viewport.Height - m.viewport.Style.GetVerticalFrameSize()
	if h <= 0 || !m.focused {
		return
	}

	y := m.viewport.YOffset
	if m.cursorRow < y {
		m.viewport.SetYOffset(m.cursorRow)
		return
	}
	if m.cursorRow >= y+h {
		m.viewport.SetYOffset(m.cursorRow - h + 1)
	}
}
