package editor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/iw2rmb/quill/document"
)

type role uint8

const (
	roleText role = iota
	roleSelected
	roleMisspelled
	roleGhost
	roleBadge
)

type cell struct {
	Text   string
	Width  int
	Role   role
	Cursor bool
}

// lineBuilder lays canonical clusters and insertions out as logical lines.
type lineBuilder struct {
	tabWidth int
	lines    [][]cell
	line     []cell
	col      int

	cursor        int
	cursorPending bool
	cursorLine    int
}

func (b *lineBuilder) add(text string, r role, cursor bool) {
	w := graphemeCellWidth(text, b.col, b.tabWidth)
	if text == "\t" {
		text = strings.Repeat(" ", w)
	}
	b.line = append(b.line, cell{Text: text, Width: w, Role: r, Cursor: cursor})
	b.col += w
	if cursor {
		b.cursorLine = len(b.lines)
	}
}

func (b *lineBuilder) breakLine() {
	b.lines = append(b.lines, b.line)
	b.line = nil
	b.col = 0
}

// takeCursor reports whether the next visible cell, drawn for canonical
// position pos, carries the cursor.
func (b *lineBuilder) takeCursor(pos int) bool {
	if b.cursorPending && b.cursor <= pos {
		b.cursorPending = false
		return true
	}
	return false
}

func (b *lineBuilder) insert(in insertion) {
	r := roleGhost
	if in.Kind == insertBadge {
		r = roleBadge
		// The cursor sits before the badge, never on it.
		if b.takeCursor(in.Offset) {
			b.add(" ", roleText, true)
		}
	}
	for _, c := range splitClusters(in.Text, 0) {
		if c.newline() {
			continue
		}
		b.add(c.Text, r, b.takeCursor(in.Offset))
	}
}

// layoutDocument returns the logical lines of doc and the line holding the
// cursor. Without focus no cursor is drawn.
func layoutDocument(doc *document.Document, focused bool, tabWidth int) ([][]cell, int) {
	if doc == nil {
		return [][]cell{nil}, 0
	}
	b := &lineBuilder{tabWidth: tabWidth, cursor: doc.CursorOffset(), cursorPending: focused}
	dec := collectDecorations(doc)
	selStart, selEnd, selOK := doc.Selection()

	next := 0
	for _, c := range splitClusters(doc.Text(), 0) {
		for next < len(dec.inserts) && dec.inserts[next].Offset <= c.Offset {
			b.insert(dec.inserts[next])
			next++
		}
		if c.newline() {
			if b.takeCursor(c.Offset) {
				b.add(" ", roleText, true)
			}
			b.breakLine()
			continue
		}
		r := roleText
		switch {
		case selOK && c.Offset < selEnd && c.Offset+c.Runes > selStart:
			r = roleSelected
		case dec.misspelled(c):
			r = roleMisspelled
		}
		b.add(c.Text, r, b.takeCursor(c.Offset+c.Runes-1))
	}
	for ; next < len(dec.inserts); next++ {
		b.insert(dec.inserts[next])
	}
	if b.takeCursor(b.cursor) {
		b.add(" ", roleText, true)
	}
	b.breakLine()
	return b.lines, b.cursorLine
}

// wrapCells soft-wraps one logical line at width cells, preferring the
// last space of the row.
func wrapCells(line []cell, width int) [][]cell {
	if width <= 0 || len(line) == 0 {
		return [][]cell{line}
	}
	var (
		rows [][]cell
		row  []cell
		w    int
	)
	for _, c := range line {
		if w+c.Width > width && len(row) > 0 {
			cut := lastSpace(row)
			if cut < 0 || cut == len(row)-1 {
				rows = append(rows, row)
				row = nil
			} else {
				rows = append(rows, row[:cut+1])
				row = append([]cell(nil), row[cut+1:]...)
			}
			w = rowWidth(row)
		}
		row = append(row, c)
		w += c.Width
	}
	return append(rows, row)
}

func lastSpace(row []cell) int {
	for i := len(row) - 1; i >= 0; i-- {
		if row[i].Text == " " && row[i].Role != roleGhost {
			return i
		}
	}
	return -1
}

func rowWidth(row []cell) int {
	w := 0
	for _, c := range row {
		w += c.Width
	}
	return w
}

func hasCursor(row []cell) bool {
	for _, c := range row {
		if c.Cursor {
			return true
		}
	}
	return false
}

func gutterDigits(lines int) int {
	return len(fmt.Sprintf("%d", maxInt(lines, 1)))
}

func (m *Model) renderContent() string {
	lines, cursorLine := layoutDocument(m.eng.Document(), m.focused, m.cfg.TabWidth)

	digits := 0
	width := m.viewport.Width
	if m.cfg.ShowLineNums {
		digits = gutterDigits(len(lines))
		width -= digits + 1
	}

	out := make([]string, 0, len(lines))
	m.cursorRow = 0
	for i, line := range lines {
		for j, row := range wrapCells(line, width) {
			if i == cursorLine && hasCursor(row) {
				m.cursorRow = len(out)
			}

			var sb strings.Builder
			if digits > 0 {
				numStyle := m.cfg.Style.LineNum
				if m.focused && i == cursorLine && j == 0 {
					numStyle = m.cfg.Style.LineNumActive
				}
				num := fmt.Sprintf("%*s", digits, "")
				if j == 0 {
					num = fmt.Sprintf("%*d", digits, i+1)
				}
				sb.WriteString(numStyle.Render(num))
				sb.WriteString(m.cfg.Style.Gutter.Render(" "))
			}
			sb.WriteString(m.renderCells(row))
			out = append(out, sb.String())
		}
	}
	return strings.Join(out, "\n")
}

// renderCells renders runs of equally styled cells in one call each.
func (m *Model) renderCells(row []cell) string {
	var sb strings.Builder
	for i := 0; i < len(row); {
		j := i
		var run strings.Builder
		for j < len(row) && row[j].Role == row[i].Role && row[j].Cursor == row[i].Cursor {
			run.WriteString(row[j].Text)
			j++
		}
		sb.WriteString(m.styleFor(row[i]).Render(run.String()))
		i = j
	}
	return sb.String()
}

func (m *Model) styleFor(c cell) lipgloss.Style {
	st := m.cfg.Style
	if c.Cursor {
		return st.Cursor
	}
	switch c.Role {
	case roleSelected:
		return st.Selection
	case roleMisspelled:
		return st.Misspelled
	case roleGhost:
		return st.Ghost
	case roleBadge:
		return st.Badge
	default:
		return st.Text
	}
}
