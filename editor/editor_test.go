package editor

import (
	"io"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/iw2rmb/quill/document"
	"github.com/iw2rmb/quill/engine"
	"github.com/iw2rmb/quill/internal/logging"
	"github.com/iw2rmb/quill/overlay"
	"github.com/iw2rmb/quill/protocol"
	"github.com/iw2rmb/quill/schedule"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []protocol.Message
}

func (f *fakeSender) Send(m protocol.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, m)
	return nil
}

func (f *fakeSender) Connected() bool { return true }

func (f *fakeSender) ofType(typ string) []protocol.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []protocol.Message
	for _, m := range f.sent {
		if m.MessageType() == typ {
			out = append(out, m)
		}
	}
	return out
}

func newTestModel(t *testing.T, text string) (Model, *fakeSender, *schedule.FakeClock) {
	t.Helper()
	clock := schedule.Fake(time.Unix(1000, 0))
	s := &fakeSender{}
	e := engine.New(engine.Config{}, engine.Deps{Sender: s, Clock: clock, Logger: logging.Discard()})
	e.Open("notes.txt", text)
	return New(e, DefaultConfig()), s, clock
}

var ansiRE = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string { return ansiRE.ReplaceAllString(s, "") }

func lineText(cells []cell) string {
	var sb strings.Builder
	for _, c := range cells {
		sb.WriteString(c.Text)
	}
	return sb.String()
}

func cursorIndex(cells []cell) int {
	for i, c := range cells {
		if c.Cursor {
			return i
		}
	}
	return -1
}

func showPrediction(t *testing.T, m Model, text string) {
	t.Helper()
	e := m.Engine()
	e.Move(document.Move{Unit: document.MoveDoc, Dir: document.DirEnd})
	cur := e.Document().CursorOffset()
	e.Handle(protocol.PredictionResponse{
		Prediction:     text,
		CursorPosition: cur,
		Metadata:       protocol.PredictionMetadata{TotalParagraphs: 1, OriginalCursorPosition: cur},
	})
	if _, ok := e.Overlay().Prediction(); !ok {
		t.Fatalf("prediction %q not shown", text)
	}
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "ctrl+right":
		return tea.KeyMsg{Type: tea.KeyCtrlRight}
	case "ctrl+k":
		return tea.KeyMsg{Type: tea.KeyCtrlK}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+q":
		return tea.KeyMsg{Type: tea.KeyCtrlQ}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func typeKeys(m Model, keys ...string) Model {
	for _, k := range keys {
		m, _ = m.Update(keyMsg(k))
	}
	return m
}

func TestLayout_ParagraphsAndCursor(t *testing.T) {
	m, _, _ := newTestModel(t, "The quick fox.\n\nJumps high.")

	lines, cursorLine := layoutDocument(m.Engine().Document(), true, 4)
	var got []string
	for _, l := range lines {
		got = append(got, lineText(l))
	}
	want := []string{"The quick fox.", "", "Jumps high."}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("lines: got %q, want %q", got, want)
	}
	if cursorLine != 0 || cursorIndex(lines[0]) != 0 {
		t.Fatalf("cursor at line %d cell %d, want 0/0", cursorLine, cursorIndex(lines[0]))
	}
}

func TestLayout_CursorAtEndDrawsBlock(t *testing.T) {
	m, _, _ := newTestModel(t, "ab")
	m.Engine().Move(document.Move{Unit: document.MoveDoc, Dir: document.DirEnd})

	lines, _ := layoutDocument(m.Engine().Document(), true, 4)
	if got := lineText(lines[0]); got != "ab " {
		t.Fatalf("line: got %q, want %q", got, "ab ")
	}
	if got := cursorIndex(lines[0]); got != 2 {
		t.Fatalf("cursor cell: got %d, want 2", got)
	}
}

func TestLayout_GhostFollowsCursor(t *testing.T) {
	m, _, _ := newTestModel(t, "Hello ")
	showPrediction(t, m, "world")

	lines, _ := layoutDocument(m.Engine().Document(), true, 4)
	if got := lineText(lines[0]); got != "Hello world" {
		t.Fatalf("line: got %q, want %q", got, "Hello world")
	}
	c := lines[0][6]
	if c.Role != roleGhost || !c.Cursor {
		t.Fatalf("cell 6: got role %d cursor %v, want ghost with cursor", c.Role, c.Cursor)
	}
	if lines[0][10].Role != roleGhost {
		t.Fatalf("cell 10: got role %d, want ghost", lines[0][10].Role)
	}
}

func TestLayout_MisspelledWordAndBadge(t *testing.T) {
	m, _, _ := newTestModel(t, "I teh cat")
	m.Engine().Handle(protocol.SpellCheckResponse{
		Success: true,
		Errors:  map[int][]protocol.SpellError{0: {{Word: "teh", Position: 2, Suggestions: []string{"the"}}}},
	})

	lines, _ := layoutDocument(m.Engine().Document(), false, 4)
	if got := lineText(lines[0]); got != "I teh cat 1/1 errors" {
		t.Fatalf("line: got %q", got)
	}
	for i, c := range lines[0] {
		var want role
		switch {
		case i >= 2 && i < 5:
			want = roleMisspelled
		case i >= 9:
			want = roleBadge
		default:
			want = roleText
		}
		if c.Role != want {
			t.Fatalf("cell %d (%q): got role %d, want %d", i, c.Text, c.Role, want)
		}
	}
}

func TestWrapCells_PrefersSpaces(t *testing.T) {
	var line []cell
	for _, r := range "one two three" {
		line = append(line, cell{Text: string(r), Width: 1})
	}
	rows := wrapCells(line, 8)
	var got []string
	for _, r := range rows {
		got = append(got, lineText(r))
	}
	want := []string{"one two ", "three"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("rows: got %q, want %q", got, want)
	}
}

func TestView_SnapshotWithLineNumbers(t *testing.T) {
	m, _, _ := newTestModel(t, "one\ntwo three four five six seven eight nine ten eleven")
	cfg := DefaultConfig()
	cfg.ShowLineNums = true
	m = New(m.Engine(), cfg).Blur().SetSize(40, 4)

	got := strings.Split(m.View(), "\n")
	if len(got) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(got))
	}
	for i := range got {
		got[i] = strings.TrimRight(stripANSI(got[i]), " ")
	}
	if got[0] != "1 one" {
		t.Fatalf("line 0: got %q", got[0])
	}
	if !strings.HasPrefix(got[1], "2 two") {
		t.Fatalf("line 1: got %q", got[1])
	}
	if !strings.Contains(got[3], "notes.txt") || !strings.Contains(got[3], "online") {
		t.Fatalf("status: got %q", got[3])
	}
}

func TestView_GhostUsesGhostStyle(t *testing.T) {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.TrueColor)
	r.SetHasDarkBackground(true)

	m, _, _ := newTestModel(t, "Hello ")
	cfg := DefaultConfig()
	cfg.Style = Style{
		Text:   r.NewStyle(),
		Cursor: r.NewStyle().Reverse(true),
		Ghost:  r.NewStyle().Faint(true),
	}
	m = New(m.Engine(), cfg).SetSize(40, 3)
	showPrediction(t, m, "world")
	m = m.SetSize(40, 3)

	view := m.View()
	if want := cfg.Style.Ghost.Render("orld"); !strings.Contains(view, want) {
		t.Fatalf("view missing ghost-styled %q:\n%q", want, view)
	}
	if want := cfg.Style.Cursor.Render("w"); !strings.Contains(view, want) {
		t.Fatalf("view missing cursor on ghost %q:\n%q", want, view)
	}
}

func TestUpdate_TypingThenTickSaves(t *testing.T) {
	m, s, clock := newTestModel(t, "")

	m = typeKeys(m, "H", "i")
	if got := m.Engine().Document().Text(); got != "Hi" {
		t.Fatalf("text: got %q, want %q", got, "Hi")
	}
	if m.Engine().State() != engine.Typing {
		t.Fatalf("state: got %v, want typing", m.Engine().State())
	}

	clock.Advance(time.Second)
	m, _ = m.Update(tickMsg{gen: m.gen})

	edits := s.ofType(protocol.TypeEdit)
	if len(edits) != 1 {
		t.Fatalf("edits sent: got %d, want 1", len(edits))
	}
	if got := edits[0].(protocol.Edit).Content; got != "Hi" {
		t.Fatalf("saved content: got %q", got)
	}
	if m.Engine().State() != engine.Idle {
		t.Fatalf("state after quiet period: got %v, want idle", m.Engine().State())
	}
}

func TestUpdate_StaleTickIgnored(t *testing.T) {
	m, s, clock := newTestModel(t, "")
	m = typeKeys(m, "a")
	clock.Advance(time.Second)

	m, _ = m.Update(tickMsg{gen: m.gen - 1})
	if n := len(s.ofType(protocol.TypeEdit)); n != 0 {
		t.Fatalf("stale tick ran tasks: %d edits", n)
	}
}

func TestUpdate_TabAcceptsPrediction(t *testing.T) {
	m, _, _ := newTestModel(t, "Hello ")
	showPrediction(t, m, "world")

	m = typeKeys(m, "tab")
	if got := m.Engine().Document().Text(); got != "Hello world" {
		t.Fatalf("text: got %q, want %q", got, "Hello world")
	}
	if m.Engine().Overlay().State() != overlay.Hidden {
		t.Fatalf("overlay still shown")
	}
}

func TestUpdate_TabWithoutPredictionInsertsTab(t *testing.T) {
	m, _, _ := newTestModel(t, "")
	m = typeKeys(m, "tab")
	if got := m.Engine().Document().Text(); got != "\t" {
		t.Fatalf("text: got %q, want tab", got)
	}
}

func TestUpdate_CtrlRightAcceptsNextWord(t *testing.T) {
	m, _, _ := newTestModel(t, "Hello ")
	showPrediction(t, m, "big day ahead")

	m = typeKeys(m, "ctrl+right")
	if got := m.Engine().Document().Text(); got != "Hello big " {
		t.Fatalf("text: got %q, want %q", got, "Hello big ")
	}
	p, ok := m.Engine().Overlay().Prediction()
	if !ok || p.Text != "day ahead" {
		t.Fatalf("remainder: got %q shown=%v, want %q", p.Text, ok, "day ahead")
	}
}

func TestUpdate_EscDismisses(t *testing.T) {
	m, _, _ := newTestModel(t, "Hello ")
	showPrediction(t, m, "world")

	m = typeKeys(m, "esc")
	if m.Engine().Overlay().State() != overlay.Hidden {
		t.Fatalf("overlay still shown")
	}
	if got := m.Engine().Document().Text(); got != "Hello " {
		t.Fatalf("text changed: %q", got)
	}
}

func TestUpdate_ActionsMenuAppliesSuggestion(t *testing.T) {
	m, _, _ := newTestModel(t, "I teh cat")
	m.Engine().Handle(protocol.SpellCheckResponse{
		Success: true,
		Errors:  map[int][]protocol.SpellError{0: {{Word: "teh", Suggestions: []string{"the", "ten"}}}},
	})
	m.Engine().Document().SetCursorOffset(3)

	m = typeKeys(m, "ctrl+k")
	if m.Engine().State() != engine.Actions {
		t.Fatalf("state: got %v, want actions", m.Engine().State())
	}
	if status := stripANSI(m.statusLine()); !strings.Contains(status, "1 the") || !strings.Contains(status, "2 ten") {
		t.Fatalf("menu: got %q", status)
	}

	m = typeKeys(m, "1")
	if got := m.Engine().Document().Text(); got != "I the cat" {
		t.Fatalf("text: got %q, want %q", got, "I the cat")
	}
	if m.Engine().State() == engine.Actions {
		t.Fatalf("menu still open")
	}
}

func TestUpdate_ActionsWithoutMarkSetsNotice(t *testing.T) {
	m, _, _ := newTestModel(t, "fine words")
	m = typeKeys(m, "ctrl+k")
	if m.Notice() == "" {
		t.Fatalf("expected a notice")
	}
	if m.Engine().State() == engine.Actions {
		t.Fatalf("menu opened without a mark")
	}
}

func TestUpdate_CtrlSSavesImmediately(t *testing.T) {
	m, s, _ := newTestModel(t, "")
	m = typeKeys(m, "x", "ctrl+s")
	if n := len(s.ofType(protocol.TypeEdit)); n != 1 {
		t.Fatalf("edits sent: got %d, want 1", n)
	}
}

func TestUpdate_QuitSavesAndQuits(t *testing.T) {
	m, s, _ := newTestModel(t, "")
	m = typeKeys(m, "x")
	_, cmd := m.Update(keyMsg("ctrl+q"))
	if cmd == nil {
		t.Fatalf("expected a quit command")
	}
	if n := len(s.ofType(protocol.TypeEdit)); n != 1 {
		t.Fatalf("edits sent: got %d, want 1", n)
	}
}

func TestUpdate_IncomingMessagesReachEngine(t *testing.T) {
	ch := make(chan protocol.Message, 1)
	m, _, _ := newTestModel(t, "Hello ")
	cfg := DefaultConfig()
	cfg.Incoming = ch
	m = New(m.Engine(), cfg)
	m.Engine().Move(document.Move{Unit: document.MoveDoc, Dir: document.DirEnd})

	ch <- protocol.PredictionResponse{
		Prediction: "world",
		Metadata:   protocol.PredictionMetadata{TotalParagraphs: 1, OriginalCursorPosition: 6},
	}
	msg := listen(ch)()
	m, _ = m.Update(msg)
	if _, ok := m.Engine().Overlay().Prediction(); !ok {
		t.Fatalf("prediction from incoming channel not shown")
	}
}
