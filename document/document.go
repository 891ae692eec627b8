package document

import (
	"errors"
	"strings"
)

// ErrParagraphRange reports a paragraph index outside the document.
var ErrParagraphRange = errors.New("document: paragraph index out of range")

// Options tunes a Document.
type Options struct {
	HistoryLimit int // default: 1000
}

type selectionState struct {
	active bool
	anchor Point
}

// Document is the canonical editing state: paragraphs, cursor and selection.
//
// A Document is not safe for concurrent use; every mutation is expected to
// run on the editor's single task queue.
type Document struct {
	paras  []Paragraph
	sep    string
	nextID uint64

	version   uint64
	structure uint64

	cursor Point
	sel    selectionState

	opt  Options
	hist historyState
}

// ToTree builds a document from canonical text with default options.
func ToTree(text string) *Document {
	return New(text, Options{})
}

// New builds a document from canonical text.
func New(text string, opt Options) *Document {
	if opt.HistoryLimit == 0 {
		opt.HistoryLimit = 1000
	}
	d := &Document{opt: opt}
	parts, sep := SplitParagraphs(text)
	d.load(parts, sep)
	return d
}

func (d *Document) load(parts []string, sep string) {
	d.sep = sep
	d.paras = make([]Paragraph, 0, len(parts))
	for _, p := range parts {
		d.paras = append(d.paras, d.newParagraph(TokenizeParagraph(p)))
	}
	if len(d.paras) == 0 {
		d.paras = append(d.paras, d.newParagraph(TokenizeParagraph("")))
	}
	d.cursor = d.PointAt(0)
	d.sel = selectionState{}
}

func (d *Document) newParagraph(nodes []Node) Paragraph {
	d.nextID++
	return Paragraph{ID: d.nextID, Nodes: nodes}
}

// Text returns the canonical text: every non-ephemeral node, paragraphs
// joined by the separator.
func (d *Document) Text() string {
	var sb strings.Builder
	for i := range d.paras {
		if i > 0 {
			sb.WriteString(d.sep)
		}
		writeParagraph(&sb, d.paras[i].Nodes)
	}
	return sb.String()
}

// ParagraphText returns the canonical text of paragraph i, or "" when i is
// out of range.
func (d *Document) ParagraphText(i int) string {
	if i < 0 || i >= len(d.paras) {
		return ""
	}
	var sb strings.Builder
	writeParagraph(&sb, d.paras[i].Nodes)
	return sb.String()
}

func writeParagraph(sb *strings.Builder, nodes []Node) {
	sole := soleCanonical(nodes)
	for i := range nodes {
		sb.WriteString(nodeText(nodes[i], sole))
	}
}

// soleCanonical reports whether nodes hold at most one non-ephemeral node.
func soleCanonical(nodes []Node) bool {
	n := 0
	for i := range nodes {
		if !nodes[i].Kind.Ephemeral() {
			n++
		}
	}
	return n <= 1
}

// nodeText is the canonical contribution of one node. The placeholder
// contributes a single space unless it is the paragraph's only content.
func nodeText(n Node, sole bool) string {
	switch {
	case n.Kind.Ephemeral():
		return ""
	case n.Kind == KindEmpty:
		if sole {
			return ""
		}
		return " "
	default:
		return n.Text
	}
}

func nodeLens(nodes []Node) []int {
	sole := soleCanonical(nodes)
	out := make([]int, len(nodes))
	for i := range nodes {
		out[i] = runeLen(nodeText(nodes[i], sole))
	}
	return out
}

func paragraphLen(nodes []Node) int {
	total := 0
	for _, l := range nodeLens(nodes) {
		total += l
	}
	return total
}

// Len returns the canonical length in runes.
func (d *Document) Len() int {
	total := 0
	for i := range d.paras {
		if i > 0 {
			total += runeLen(d.sep)
		}
		total += paragraphLen(d.paras[i].Nodes)
	}
	return total
}

// Separator returns the paragraph separator the text was split with.
func (d *Document) Separator() string { return d.sep }

// Version increments on every mutation.
func (d *Document) Version() uint64 { return d.version }

// StructureVersion changes only when paragraphs are inserted or removed.
func (d *Document) StructureVersion() uint64 { return d.structure }

// ParagraphCount returns the number of paragraphs, never less than one.
func (d *Document) ParagraphCount() int { return len(d.paras) }

// Paragraph returns a copy of paragraph i.
func (d *Document) Paragraph(i int) (Paragraph, bool) {
	if i < 0 || i >= len(d.paras) {
		return Paragraph{}, false
	}
	p := d.paras[i]
	p.Nodes = cloneNodes(p.Nodes)
	return p, true
}

// Paragraphs returns a copy of every paragraph in order.
func (d *Document) Paragraphs() []Paragraph {
	out := make([]Paragraph, len(d.paras))
	for i := range d.paras {
		out[i] = Paragraph{ID: d.paras[i].ID, Nodes: cloneNodes(d.paras[i].Nodes)}
	}
	return out
}

// SetNodes replaces the nodes of paragraph i wholesale. The paragraph keeps
// its ID; cursor and selection keep their canonical offsets.
func (d *Document) SetNodes(i int, nodes []Node) error {
	if i < 0 || i >= len(d.paras) {
		return ErrParagraphRange
	}
	if len(nodes) == 0 {
		nodes = []Node{{Kind: KindEmpty}}
	}
	d.keepCursor(func() {
		d.paras[i].Nodes = cloneNodes(nodes)
	})
	d.version++
	return nil
}

// keepCursor runs fn and re-resolves cursor and selection anchor from their
// canonical offsets, since fn may shift node indices.
func (d *Document) keepCursor(fn func()) {
	cur := d.Offset(d.cursor)
	anchor := d.Offset(d.sel.anchor)
	fn()
	d.cursor = d.PointAt(cur)
	if d.sel.active {
		d.sel.anchor = d.PointAt(anchor)
	}
}

// InsertNode inserts n at p, splitting the canonical node p points into.
// It returns the point of the inserted node.
func (d *Document) InsertNode(p Point, n Node) Point {
	var at Point
	d.keepCursor(func() {
		at = d.insertNode(d.clampPoint(p), n)
	})
	d.version++
	return at
}

func (d *Document) insertNode(p Point, n Node) Point {
	nodes := d.paras[p.Para].Nodes
	if p.Node >= len(nodes) {
		d.paras[p.Para].Nodes = append(nodes, n)
		return Point{Para: p.Para, Node: len(nodes), Offset: 0}
	}

	lens := nodeLens(nodes)
	at := p.Node
	cur := nodes[at]
	out := make([]Node, 0, len(nodes)+2)
	out = append(out, nodes[:at]...)
	switch {
	case p.Offset <= 0 || cur.Kind.Ephemeral():
		out = append(out, n, cur)
	case p.Offset >= lens[at]:
		at++
		out = append(out, cur, n)
	default:
		left, right := splitNode(cur, p.Offset)
		at++
		out = append(out, left, n, right)
	}
	out = append(out, nodes[p.Node+1:]...)
	d.paras[p.Para].Nodes = out
	return Point{Para: p.Para, Node: at, Offset: 0}
}

// RemoveKind deletes every node of kind k and reports how many were removed.
// Only ephemeral kinds may be removed this way.
func (d *Document) RemoveKind(k Kind) int {
	if !k.Ephemeral() {
		return 0
	}
	removed := 0
	d.keepCursor(func() {
		removed = d.removeKind(k)
	})
	if removed > 0 {
		d.version++
	}
	return removed
}

func (d *Document) removeKind(k Kind) int {
	removed := 0
	for i := range d.paras {
		nodes := d.paras[i].Nodes
		kept := nodes[:0:0]
		for _, n := range nodes {
			if n.Kind == k {
				removed++
				continue
			}
			kept = append(kept, n)
		}
		if len(kept) != len(nodes) {
			if len(kept) == 0 {
				kept = []Node{{Kind: KindEmpty}}
			}
			d.paras[i].Nodes = kept
		}
	}
	return removed
}

// FindKind returns the first node of kind k in document order.
func (d *Document) FindKind(k Kind) (Point, bool) {
	for i := range d.paras {
		for j := range d.paras[i].Nodes {
			if d.paras[i].Nodes[j].Kind == k {
				return Point{Para: i, Node: j}, true
			}
		}
	}
	return Point{}, false
}

// HasKind reports whether any paragraph holds a node of kind k.
func (d *Document) HasKind(k Kind) bool {
	_, ok := d.FindKind(k)
	return ok
}

// ParagraphHasKind reports whether paragraph i holds a node of kind k.
func (d *Document) ParagraphHasKind(i int, k Kind) bool {
	if i < 0 || i >= len(d.paras) {
		return false
	}
	for _, n := range d.paras[i].Nodes {
		if n.Kind == k {
			return true
		}
	}
	return false
}

func (d *Document) Cursor() Point { return d.cursor }

// SetCursor moves the cursor to p, clamped to the document.
func (d *Document) SetCursor(p Point) {
	d.SetCursorOffset(d.Offset(p))
}

// CursorOffset returns the canonical offset of the cursor.
func (d *Document) CursorOffset() int { return d.Offset(d.cursor) }

// SetCursorOffset places a collapsed cursor at offset k, clamped into
// [0, Len()].
func (d *Document) SetCursorOffset(k int) {
	next := d.PointAt(k)
	if next == d.cursor && !d.sel.active {
		return
	}
	d.cursor = next
	d.sel = selectionState{}
	d.version++
}

// Select sets a selection from anchor to focus (canonical offsets). The
// cursor sits at focus. An empty range collapses the selection.
func (d *Document) Select(anchor, focus int) {
	a := d.PointAt(anchor)
	f := d.PointAt(focus)
	next := selectionState{active: true, anchor: a}
	if d.Offset(a) == d.Offset(f) {
		next = selectionState{}
	}
	if next == d.sel && f == d.cursor {
		return
	}
	d.cursor = f
	d.sel = next
	d.version++
}

// Selection returns the normalized selected offset range [start, end).
func (d *Document) Selection() (start, end int, ok bool) {
	if !d.sel.active {
		return 0, 0, false
	}
	a := d.Offset(d.sel.anchor)
	f := d.Offset(d.cursor)
	if a == f {
		return 0, 0, false
	}
	if a > f {
		a, f = f, a
	}
	return a, f, true
}

// SelectionAnchor returns the selection anchor offset, or the cursor offset
// when nothing is selected.
func (d *Document) SelectionAnchor() int {
	if !d.sel.active {
		return d.CursorOffset()
	}
	return d.Offset(d.sel.anchor)
}

// HasSelection reports a non-empty selection.
func (d *Document) HasSelection() bool {
	_, _, ok := d.Selection()
	return ok
}

// ClearSelection drops the selection anchor; the cursor stays.
func (d *Document) ClearSelection() {
	if !d.sel.active {
		return
	}
	d.sel = selectionState{}
	d.version++
}

func (d *Document) clampPoint(p Point) Point {
	return d.PointAt(d.Offset(p))
}
