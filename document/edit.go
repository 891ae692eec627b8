package document

import (
	"strings"

	"github.com/iw2rmb/quill/internal/grapheme"
)

// Replace replaces the canonical range [start, end) with text. The inserted
// text is spliced in as raw nodes; paragraphs split wherever text contains
// the separator and merge when the range spans one. The cursor ends after
// the inserted text and the selection is cleared.
func (d *Document) Replace(start, end int, text string) bool {
	total := d.Len()
	start = clampInt(start, 0, total)
	end = clampInt(end, 0, total)
	if start > end {
		start, end = end, start
	}
	if start == end && text == "" {
		return false
	}

	prev := d.snapshot()

	ps, relS, headOff := d.locate(start)
	pe, relE, tailOff := ps, relS, headOff
	if end != start {
		pe, relE, tailOff = d.locate(end)
	}

	sepRunes := []rune(d.sep)
	var mid strings.Builder
	if headOff > 0 {
		mid.WriteString(string(sepRunes[:headOff]))
	}
	mid.WriteString(text)

	left, _ := splitNodes(d.paras[ps].Nodes, relS)
	var right []Node
	if tailOff > 0 {
		// end sits inside the separator after pe: keep the separator tail
		// and take the next paragraph whole.
		mid.WriteString(string(sepRunes[tailOff:]))
		pe++
		_, right = splitNodes(d.paras[pe].Nodes, 0)
	} else {
		_, right = splitNodes(d.paras[pe].Nodes, relE)
	}

	parts := strings.Split(mid.String(), d.sep)
	repl := make([]Paragraph, 0, len(parts))
	for i, part := range parts {
		var nodes []Node
		if i == 0 {
			nodes = append(nodes, left...)
		}
		nodes = append(nodes, rawNodes(part)...)
		if i == len(parts)-1 {
			nodes = append(nodes, right...)
		}
		p := Paragraph{Nodes: coalesce(nodes)}
		if i == 0 {
			p.ID = d.paras[ps].ID
		} else {
			d.nextID++
			p.ID = d.nextID
		}
		repl = append(repl, p)
	}

	out := make([]Paragraph, 0, len(d.paras)-(pe-ps+1)+len(repl))
	out = append(out, d.paras[:ps]...)
	out = append(out, repl...)
	out = append(out, d.paras[pe+1:]...)
	d.paras = out

	split := d.resplit(ps, ps+len(repl)-1)
	if pe != ps || len(parts) > 1 || split {
		d.structure++
	}
	d.cursor = d.PointAt(start + runeLen(text))
	d.sel = selectionState{}
	d.version++
	d.recordUndo(prev)
	return true
}

// resplit restores the separator split for paragraphs from..to after a
// splice joined text across node boundaries. A paragraph may not contain the
// separator, and may not end in a prefix of it when another paragraph
// follows. It reports whether paragraphs were added.
func (d *Document) resplit(from, to int) bool {
	sepLen := runeLen(d.sep)
	added := false
	for i := from; i <= to && i < len(d.paras); i++ {
		text := d.ParagraphText(i)
		joined := text
		if i < len(d.paras)-1 {
			joined += d.sep
		}
		at := strings.Index(joined, d.sep)
		if at < 0 || at == len(text) {
			continue
		}
		r := runeLen(joined[:at])
		left, rest := splitNodes(d.paras[i].Nodes, r)

		if at+len(d.sep) <= len(text) {
			_, right := splitNodes(rest, sepLen)
			d.nextID++
			p := Paragraph{ID: d.nextID, Nodes: coalesce(right)}
			d.paras[i].Nodes = coalesce(left)
			d.paras = append(d.paras[:i+1], append([]Paragraph{p}, d.paras[i+1:]...)...)
			added = true
			to++
			continue
		}

		// The paragraph ends in a separator prefix that completes with the
		// separator after it; the rest of that separator opens the next
		// paragraph.
		tail := runeLen(text) - r
		for _, n := range rest {
			if n.Kind.Ephemeral() {
				left = append(left, n)
			}
		}
		d.paras[i].Nodes = coalesce(left)
		next := &d.paras[i+1]
		moved := rawNodes(sliceRunes(d.sep, sepLen-tail, sepLen))
		next.Nodes = coalesce(append(moved, next.Nodes...))
		to = maxInt(to, i+1)
	}
	return added
}

// Insert inserts text at the cursor, or replaces the active selection.
func (d *Document) Insert(text string) bool {
	if start, end, ok := d.Selection(); ok {
		return d.Replace(start, end, text)
	}
	k := d.CursorOffset()
	return d.Replace(k, k, text)
}

// InsertParagraph splits the current paragraph at the cursor.
func (d *Document) InsertParagraph() bool { return d.Insert(d.sep) }

// InsertLineBreak inserts a single line break without splitting the
// paragraph, unless the document splits paragraphs on every newline.
func (d *Document) InsertLineBreak() bool { return d.Insert(LineSeparator) }

// DeleteBackward applies backspace semantics: it deletes the selection, or
// the grapheme cluster before the cursor.
func (d *Document) DeleteBackward() bool {
	if start, end, ok := d.Selection(); ok {
		return d.Replace(start, end, "")
	}
	k := d.CursorOffset()
	if k == 0 {
		return false
	}
	return d.Replace(grapheme.PrevBoundary(d.Text(), k), k, "")
}

// DeleteForward applies delete-key semantics.
func (d *Document) DeleteForward() bool {
	if start, end, ok := d.Selection(); ok {
		return d.Replace(start, end, "")
	}
	k := d.CursorOffset()
	if k >= d.Len() {
		return false
	}
	return d.Replace(k, grapheme.NextBoundary(d.Text(), k), "")
}

// DeleteSelection deletes the active selection, if any.
func (d *Document) DeleteSelection() bool {
	start, end, ok := d.Selection()
	if !ok {
		return false
	}
	return d.Replace(start, end, "")
}

// locate maps canonical offset k to a paragraph index and a paragraph-relative
// offset. When k falls inside the separator after paragraph i, rel is the
// paragraph length and sepOff counts the separator runes before k.
func (d *Document) locate(k int) (para, rel, sepOff int) {
	sepLen := runeLen(d.sep)
	acc := 0
	for i := range d.paras {
		l := paragraphLen(d.paras[i].Nodes)
		if k <= acc+l || i == len(d.paras)-1 {
			return i, clampInt(k-acc, 0, l), 0
		}
		if k < acc+l+sepLen {
			return i, l, k - acc - l
		}
		acc += l + sepLen
	}
	return 0, 0, 0
}

// splitNodes cuts nodes at the paragraph-relative offset rel. Nodes that
// straddle the cut keep their kind but lose their marks. A sole placeholder
// is dropped; ephemeral nodes exactly at the cut go right.
func splitNodes(nodes []Node, rel int) (left, right []Node) {
	lens := nodeLens(nodes)
	sole := soleCanonical(nodes)
	pos := 0
	for i, n := range nodes {
		l := lens[i]
		switch {
		case n.Kind.Ephemeral():
			if pos < rel {
				left = append(left, n)
			} else {
				right = append(right, n)
			}
			continue
		case n.Kind == KindEmpty && sole:
			continue
		case n.Kind == KindEmpty:
			n = Node{Kind: KindSpace, Text: " "}
		}

		switch {
		case pos+l <= rel:
			left = append(left, n)
		case pos >= rel:
			right = append(right, n)
		default:
			a, b := splitNode(n, rel-pos)
			left = append(left, a)
			right = append(right, b)
		}
		pos += l
	}
	return left, right
}

func splitNode(n Node, off int) (Node, Node) {
	a := retext(n, sliceRunes(n.Text, 0, off))
	b := retext(n, sliceRunes(n.Text, off, runeLen(n.Text)))
	return a, b
}

func retext(n Node, text string) Node {
	out := Node{Kind: n.Kind, Text: text}
	if n.Kind == KindWord {
		out.Key = strings.ToLower(text)
	}
	return out
}

// rawNodes wraps inserted text. Pure horizontal whitespace becomes a space
// node directly; anything else stays raw until normalization.
func rawNodes(text string) []Node {
	if text == "" {
		return nil
	}
	if isWhitespaceOnly(text) && !strings.Contains(text, LineSeparator) {
		return []Node{{Kind: KindSpace, Text: text}}
	}
	return []Node{{Kind: KindRaw, Text: text}}
}

// coalesce merges adjacent untokenized content: raw and word neighbors fold
// into one raw node, space runs join. A paragraph left without canonical
// content gets the placeholder back.
func coalesce(nodes []Node) []Node {
	out := make([]Node, 0, len(nodes))
	canonical := 0
	for _, n := range nodes {
		if n.Kind == KindEmpty || (n.Text == "" && !n.Kind.Ephemeral()) {
			continue
		}
		if !n.Kind.Ephemeral() {
			canonical++
		}
		if len(out) > 0 {
			last := &out[len(out)-1]
			switch {
			case textual(last.Kind) && textual(n.Kind):
				*last = Node{Kind: KindRaw, Text: last.Text + n.Text}
				continue
			case last.Kind == KindSpace && n.Kind == KindSpace:
				last.Text += n.Text
				continue
			}
		}
		out = append(out, n)
	}
	if canonical == 0 {
		out = append([]Node{{Kind: KindEmpty}}, out...)
	}
	return out
}

func textual(k Kind) bool { return k == KindWord || k == KindRaw }
