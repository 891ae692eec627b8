package document

import (
	"fmt"
	"strings"
)

// Snapshot is a deep copy of the document arena, including ephemeral nodes,
// marks, cursor and selection.
type Snapshot struct {
	paras     []Paragraph
	sep       string
	nextID    uint64
	structure uint64
	cursor    Point
	sel       selectionState
}

// Snapshot captures the whole arena for Restore.
func (d *Document) Snapshot() Snapshot {
	return Snapshot{
		paras:     cloneParagraphs(d.paras),
		sep:       d.sep,
		nextID:    d.nextID,
		structure: d.structure,
		cursor:    d.cursor,
		sel:       d.sel,
	}
}

// Restore puts the document back into the state captured by s. History is
// left untouched.
func (d *Document) Restore(s Snapshot) {
	if len(s.paras) == 0 {
		return
	}
	d.paras = cloneParagraphs(s.paras)
	d.sep = s.sep
	d.nextID = s.nextID
	d.structure = s.structure
	d.cursor = s.cursor
	d.sel = s.sel
	d.version++
}

// Mutate runs fn as one mutating pass. If fn returns an error or panics, the
// document is restored to its state before the call and the error is
// returned; a panic is converted into an error.
func (d *Document) Mutate(fn func() error) (err error) {
	snap := d.Snapshot()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("document: mutation panicked: %v", r)
		}
		if err != nil {
			d.Restore(snap)
		}
	}()
	return fn()
}

func cloneParagraphs(in []Paragraph) []Paragraph {
	out := make([]Paragraph, len(in))
	for i := range in {
		out[i] = Paragraph{ID: in[i].ID, Nodes: cloneNodes(in[i].Nodes)}
	}
	return out
}

type textSnapshot struct {
	text   string
	cursor int
	anchor int
	sel    bool
}

type historyState struct {
	undo []textSnapshot
	redo []textSnapshot
}

func (d *Document) snapshot() textSnapshot {
	s := textSnapshot{text: d.Text(), cursor: d.CursorOffset()}
	if d.sel.active {
		s.sel = true
		s.anchor = d.Offset(d.sel.anchor)
	}
	return s
}

func (d *Document) restoreText(s textSnapshot) {
	parts := strings.Split(s.text, d.sep)
	before := len(d.paras)
	d.load(parts, d.sep)
	if len(d.paras) != before {
		d.structure++
	}
	d.cursor = d.PointAt(s.cursor)
	if s.sel && s.anchor != s.cursor {
		d.sel = selectionState{active: true, anchor: d.PointAt(s.anchor)}
	}
}

func (d *Document) recordUndo(prev textSnapshot) {
	limit := d.opt.HistoryLimit
	if limit <= 0 {
		return
	}

	d.hist.undo = append(d.hist.undo, prev)
	if len(d.hist.undo) > limit {
		d.hist.undo = d.hist.undo[len(d.hist.undo)-limit:]
	}
	d.hist.redo = nil
}

func (d *Document) CanUndo() bool { return len(d.hist.undo) > 0 }

func (d *Document) CanRedo() bool { return len(d.hist.redo) > 0 }

// Undo restores the canonical text and cursor before the last raw edit.
// The restored text is re-tokenized; marks and ephemeral nodes are dropped.
func (d *Document) Undo() bool {
	if len(d.hist.undo) == 0 {
		return false
	}

	cur := d.snapshot()
	i := len(d.hist.undo) - 1
	prev := d.hist.undo[i]
	d.hist.undo = d.hist.undo[:i]
	d.hist.redo = append(d.hist.redo, cur)

	d.restoreText(prev)
	d.version++
	return true
}

// Redo reapplies the last undone edit.
func (d *Document) Redo() bool {
	if len(d.hist.redo) == 0 {
		return false
	}

	cur := d.snapshot()
	i := len(d.hist.redo) - 1
	next := d.hist.redo[i]
	d.hist.redo = d.hist.redo[:i]

	if limit := d.opt.HistoryLimit; limit > 0 {
		d.hist.undo = append(d.hist.undo, cur)
		if len(d.hist.undo) > limit {
			d.hist.undo = d.hist.undo[len(d.hist.undo)-limit:]
		}
	}

	d.restoreText(next)
	d.version++
	return true
}
