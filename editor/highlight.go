package editor

import "github.com/iw2rmb/quill/document"

type insertKind uint8

const (
	insertGhost insertKind = iota
	insertBadge
)

// insertion is ephemeral text drawn before canonical offset Offset.
type insertion struct {
	Offset int
	Text   string
	Kind   insertKind
}

// span is a half-open range of canonical offsets.
type span struct{ Start, End int }

type decorations struct {
	inserts []insertion // document order
	marks   []span
}

// collectDecorations gathers the overlay, the badges and the spell marks of
// doc in canonical coordinates.
func collectDecorations(doc *document.Document) decorations {
	var d decorations
	for i, p := range doc.Paragraphs() {
		for j, n := range p.Nodes {
			switch {
			case n.Kind == document.KindOverlay:
				off := doc.Offset(document.Point{Para: i, Node: j})
				d.inserts = append(d.inserts, insertion{Offset: off, Text: n.Text, Kind: insertGhost})
			case n.Kind == document.KindBadge:
				off := doc.Offset(document.Point{Para: i, Node: j})
				d.inserts = append(d.inserts, insertion{Offset: off, Text: " " + n.Text, Kind: insertBadge})
			case len(n.Marks) > 0:
				base := doc.Offset(document.Point{Para: i, Node: j})
				for _, m := range n.Marks {
					d.marks = append(d.marks, span{Start: base + m.Start, End: base + m.End})
				}
			}
		}
	}
	return d
}

func (d decorations) misspelled(c cluster) bool {
	for _, s := range d.marks {
		if c.Offset < s.End && c.Offset+c.Runes > s.Start {
			return true
		}
	}
	return false
}
