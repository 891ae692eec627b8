package editor

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/iw2rmb/quill/document"
	"github.com/iw2rmb/quill/engine"
)

func (m Model) updateKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}
	km := m.cfg.KeyMap
	e := m.eng
	m.notice = ""

	switch {
	case key.Matches(msg, km.Quit):
		e.SaveNow()
		return m, tea.Quit
	case key.Matches(msg, km.Save):
		e.SaveNow()
		return m, nil
	}
	if e.Document() == nil {
		return m, nil
	}

	if e.State() == engine.Actions {
		if m.updateActions(msg) {
			return m, nil
		}
		e.CloseActions()
	}

	// Paste events should always insert literal text and never trigger shortcuts.
	if msg.Type == tea.KeyRunes && msg.Paste && len(msg.Runes) > 0 {
		e.InsertText(string(msg.Runes))
		return m, nil
	}

	_, shown := e.Overlay().Prediction()
	switch {
	case shown && key.Matches(msg, km.AcceptFull):
		_ = e.AcceptFull()
	case shown && key.Matches(msg, km.AcceptWord):
		_ = e.AcceptPartial()
	case key.Matches(msg, km.Dismiss):
		e.Dismiss()
	case key.Matches(msg, km.Actions):
		if _, ok := e.OpenActions(); !ok {
			m.notice = "no misspelling under the cursor"
		}

	case key.Matches(msg, km.Left):
		e.Move(document.Move{Unit: document.MoveGrapheme, Dir: document.DirLeft})
	case key.Matches(msg, km.Right):
		e.Move(document.Move{Unit: document.MoveGrapheme, Dir: document.DirRight})
	case key.Matches(msg, km.Up):
		e.Move(document.Move{Unit: document.MoveLine, Dir: document.DirUp})
	case key.Matches(msg, km.Down):
		e.Move(document.Move{Unit: document.MoveLine, Dir: document.DirDown})

	case key.Matches(msg, km.ShiftLeft):
		e.Move(document.Move{Unit: document.MoveGrapheme, Dir: document.DirLeft, Extend: true})
	case key.Matches(msg, km.ShiftRight):
		e.Move(document.Move{Unit: document.MoveGrapheme, Dir: document.DirRight, Extend: true})
	case key.Matches(msg, km.ShiftUp):
		e.Move(document.Move{Unit: document.MoveLine, Dir: document.DirUp, Extend: true})
	case key.Matches(msg, km.ShiftDown):
		e.Move(document.Move{Unit: document.MoveLine, Dir: document.DirDown, Extend: true})

	case key.Matches(msg, km.WordLeft):
		e.Move(document.Move{Unit: document.MoveWord, Dir: document.DirLeft})
	case key.Matches(msg, km.WordRight), key.Matches(msg, km.AcceptWord):
		e.Move(document.Move{Unit: document.MoveWord, Dir: document.DirRight})
	case key.Matches(msg, km.Home):
		e.Move(document.Move{Unit: document.MoveLine, Dir: document.DirHome})
	case key.Matches(msg, km.End):
		e.Move(document.Move{Unit: document.MoveLine, Dir: document.DirEnd})
	case key.Matches(msg, km.DocStart):
		e.Move(document.Move{Unit: document.MoveDoc, Dir: document.DirHome})
	case key.Matches(msg, km.DocEnd):
		e.Move(document.Move{Unit: document.MoveDoc, Dir: document.DirEnd})

	case key.Matches(msg, km.Backspace):
		e.DeleteBackward()
	case key.Matches(msg, km.Delete):
		e.DeleteForward()
	case key.Matches(msg, km.Enter):
		e.InsertParagraph()
	case key.Matches(msg, km.LineBreak):
		e.InsertLineBreak()

	case key.Matches(msg, km.Undo):
		e.Undo()
	case key.Matches(msg, km.Redo):
		e.Redo()

	case msg.Type == tea.KeyTab:
		e.InsertText("\t")
	case msg.Type == tea.KeySpace:
		e.InsertText(" ")
	case msg.Type == tea.KeyRunes && !msg.Alt:
		e.InsertText(string(msg.Runes))
	}
	return m, nil
}

// updateActions handles a key while the spell actions menu is open. Digits
// apply the numbered suggestion, "+" adds the word to the dictionary and the
// dismiss key closes the menu. It reports false for keys the menu does not
// use; the caller closes the menu and handles them normally.
func (m *Model) updateActions(msg tea.KeyMsg) bool {
	e := m.eng
	hit, ok := e.ActionsHit()
	if !ok {
		return false
	}
	if key.Matches(msg, m.cfg.KeyMap.Dismiss) {
		e.CloseActions()
		return true
	}
	if msg.Type != tea.KeyRunes || len(msg.Runes) != 1 {
		return false
	}
	r := msg.Runes[0]
	switch {
	case r == '+':
		if err := e.AddMarkedWord(); err != nil {
			m.notice = err.Error()
		}
		return true
	case r >= '1' && r <= '9':
		i := int(r - '1')
		if i < len(hit.Mark.Suggestions) {
			e.ApplySuggestion(hit.Mark.Suggestions[i])
		}
		return true
	}
	return false
}
