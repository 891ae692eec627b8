package editor

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/iw2rmb/quill/reconcile"
)

func (m Model) statusLine() string {
	e := m.eng
	if hit, ok := e.ActionsHit(); ok {
		var sb strings.Builder
		fmt.Fprintf(&sb, " %q:", hit.Mark.Word)
		if len(hit.Mark.Suggestions) == 0 {
			sb.WriteString(" no suggestions")
		}
		for i, s := range hit.Mark.Suggestions {
			fmt.Fprintf(&sb, " %d %s", i+1, s)
		}
		sb.WriteString("  + add to dictionary  esc close")
		return m.cfg.Style.ActionsMenu.Render(m.fit(sb.String()))
	}

	name := e.Filename()
	if name == "" {
		name = "[no file]"
	}
	if e.Dirty() {
		name += " *"
	}
	conn := "offline"
	if e.Connected() {
		conn = "online"
	}
	parts := []string{" " + name, e.State().String(), conn}
	if doc := e.Document(); doc != nil {
		if marks, _ := reconcile.Count(doc); marks > 0 {
			parts = append(parts, fmt.Sprintf("%d misspelled", marks))
		}
	}
	if m.notice != "" {
		parts = append(parts, m.notice)
	}
	return m.cfg.Style.Status.Render(m.fit(strings.Join(parts, " | ")))
}

// fit truncates or pads s to the model width.
func (m Model) fit(s string) string {
	if m.width <= 0 {
		return s
	}
	return runewidth.FillRight(runewidth.Truncate(s, m.width, "\u2026"), m.width)
}
