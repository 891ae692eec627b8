package document

import (
	"strings"

	"github.com/iw2rmb/quill/internal/grapheme"
)

type MoveUnit int

const (
	MoveGrapheme MoveUnit = iota
	MoveWord
	MoveLine
	MoveDoc
)

type MoveDir int

const (
	DirLeft MoveDir = iota
	DirRight
	DirUp
	DirDown
	DirHome // line start (or doc start for MoveDoc)
	DirEnd  // line end (or doc end for MoveDoc)
)

type Move struct {
	Unit   MoveUnit
	Dir    MoveDir
	Extend bool // if true, extends the selection; if false clears it
}

// Move moves the cursor over canonical text. Lines are the runs between
// newlines of the canonical text, separators included.
func (d *Document) Move(m Move) {
	text := d.Text()
	cur := d.CursorOffset()
	next := clampInt(moveOffset(text, cur, m), 0, runeLen(text))

	if m.Extend {
		d.Select(d.SelectionAnchor(), next)
		return
	}
	if next == cur && !d.sel.active {
		return
	}
	d.cursor = d.PointAt(next)
	d.sel = selectionState{}
	d.version++
}

func moveOffset(text string, k int, m Move) int {
	switch m.Unit {
	case MoveGrapheme:
		switch m.Dir {
		case DirLeft:
			return grapheme.PrevBoundary(text, k)
		case DirRight:
			return grapheme.NextBoundary(text, k)
		}
	case MoveWord:
		rs := []rune(text)
		switch m.Dir {
		case DirLeft:
			return prevWordBoundary(rs, k)
		case DirRight:
			return nextWordBoundary(rs, k)
		}
	case MoveDoc:
		switch m.Dir {
		case DirHome, DirUp:
			return 0
		case DirEnd, DirDown:
			return runeLen(text)
		}
		return k
	}

	lines := strings.Split(text, "\n")
	row, col := lineCol(lines, k)
	switch m.Dir {
	case DirHome:
		return lineStart(lines, row)
	case DirEnd:
		return lineStart(lines, row) + runeLen(lines[row])
	case DirUp:
		if row == 0 {
			return k
		}
		return lineStart(lines, row-1) + minInt(col, runeLen(lines[row-1]))
	case DirDown:
		if row == len(lines)-1 {
			return k
		}
		return lineStart(lines, row+1) + minInt(col, runeLen(lines[row+1]))
	}
	return k
}

func lineCol(lines []string, k int) (row, col int) {
	acc := 0
	for i, l := range lines {
		n := runeLen(l)
		if k <= acc+n {
			return i, k - acc
		}
		acc += n + 1
	}
	last := len(lines) - 1
	return last, runeLen(lines[last])
}

func lineStart(lines []string, row int) int {
	acc := 0
	for i := 0; i < row; i++ {
		acc += runeLen(lines[i]) + 1
	}
	return acc
}

// Word boundary rules: skip whitespace, then skip non-whitespace.
func prevWordBoundary(rs []rune, k int) int {
	i := clampInt(k, 0, len(rs))
	for i > 0 && isSpaceRune(rs[i-1]) {
		i--
	}
	for i > 0 && !isSpaceRune(rs[i-1]) {
		i--
	}
	return i
}

func nextWordBoundary(rs []rune, k int) int {
	i := clampInt(k, 0, len(rs))
	for i < len(rs) && isSpaceRune(rs[i]) {
		i++
	}
	for i < len(rs) && !isSpaceRune(rs[i]) {
		i++
	}
	return i
}

func isSpaceRune(r rune) bool { return grapheme.IsSpace(string(r)) }

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
