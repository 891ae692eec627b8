package document

import "strings"

// Offset returns the canonical offset (in runes) of p: the length of all
// text-bearing content between the document start and p. Overlay and badge
// nodes contribute nothing. Out-of-range coordinates are clamped.
func (d *Document) Offset(p Point) int {
	if len(d.paras) == 0 || p.Para < 0 {
		return 0
	}
	if p.Para >= len(d.paras) {
		return d.Len()
	}

	sepLen := runeLen(d.sep)
	acc := 0
	for i := 0; i < p.Para; i++ {
		acc += paragraphLen(d.paras[i].Nodes) + sepLen
	}

	nodes := d.paras[p.Para].Nodes
	lens := nodeLens(nodes)
	ni := clampInt(p.Node, 0, len(nodes))
	for j := 0; j < ni; j++ {
		acc += lens[j]
	}
	if ni == len(nodes) {
		if p.Para < len(d.paras)-1 {
			acc += clampInt(p.Offset, 0, sepLen-1)
		}
		return acc
	}
	return acc + clampInt(p.Offset, 0, lens[ni])
}

// PointAt maps a canonical offset back into the tree. The offset is clamped
// into [0, Len()]. At a node boundary the earlier node wins, so a cursor at
// the end of a word stays inside that word. Offsets inside a paragraph
// separator map to the gap point after the paragraph's last node.
func (d *Document) PointAt(k int) Point {
	k = clampInt(k, 0, d.Len())
	sepLen := runeLen(d.sep)
	acc := 0
	for i := range d.paras {
		nodes := d.paras[i].Nodes
		lens := nodeLens(nodes)
		total := 0
		for _, l := range lens {
			total += l
		}

		if k <= acc+total {
			rel := k - acc
			for j := range nodes {
				if nodes[j].Kind.Ephemeral() {
					continue
				}
				if rel <= lens[j] {
					return Point{Para: i, Node: j, Offset: rel}
				}
				rel -= lens[j]
			}
			return Point{Para: i, Node: len(nodes)}
		}
		if i < len(d.paras)-1 && k < acc+total+sepLen {
			return Point{Para: i, Node: len(nodes), Offset: k - acc - total}
		}
		acc += total + sepLen
	}

	last := len(d.paras) - 1
	return Point{Para: last, Node: len(d.paras[last].Nodes)}
}

// Context is the paragraph-relative view of a canonical offset.
type Context struct {
	PrevContext     string // paragraphs before the current one, joined
	CurrentText     string
	AfterContext    string // paragraphs after the current one, joined
	RelativeCursor  int
	ParagraphIndex  int
	TotalParagraphs int
}

// ParagraphContext locates the paragraph of text (split on sep) that
// contains offset. Each boundary consumes the paragraph length plus the
// separator length. An offset inside a separator belongs to the preceding
// paragraph; RelativeCursor is clamped into [0, len(CurrentText)].
func ParagraphContext(text, sep string, offset int) Context {
	if sep == "" {
		sep = ParagraphSeparator
	}
	parts := strings.Split(text, sep)
	sepLen := runeLen(sep)

	idx := len(parts) - 1
	acc := 0
	for i, p := range parts {
		l := runeLen(p)
		if offset <= acc+l || i == len(parts)-1 {
			idx = i
			break
		}
		if offset < acc+l+sepLen {
			idx = i
			break
		}
		acc += l + sepLen
	}

	cur := parts[idx]
	return Context{
		PrevContext:     strings.Join(parts[:idx], sep),
		CurrentText:     cur,
		AfterContext:    strings.Join(parts[idx+1:], sep),
		RelativeCursor:  clampInt(offset-acc, 0, runeLen(cur)),
		ParagraphIndex:  idx,
		TotalParagraphs: len(parts),
	}
}

// Context returns the paragraph context of the cursor.
func (d *Document) Context() Context {
	return ParagraphContext(d.Text(), d.sep, d.CursorOffset())
}
