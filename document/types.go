package document

import "unicode/utf8"

// Kind identifies the role of a node inside a paragraph.
type Kind uint8

const (
	KindWord    Kind = iota // non-whitespace run with a lowercase key
	KindSpace               // whitespace run, preserved verbatim
	KindBreak               // single line break inside a paragraph
	KindEmpty               // placeholder for a paragraph without tokens
	KindRaw                 // text left untokenized by a raw edit
	KindOverlay             // inline prediction, never canonical
	KindBadge               // derived spell-error count, never canonical
)

// Ephemeral reports whether nodes of kind k are excluded from canonical text
// and offset computation.
func (k Kind) Ephemeral() bool {
	return k == KindOverlay || k == KindBadge
}

func (k Kind) String() string {
	switch k {
	case KindWord:
		return "word"
	case KindSpace:
		return "space"
	case KindBreak:
		return "break"
	case KindEmpty:
		return "empty"
	case KindRaw:
		return "raw"
	case KindOverlay:
		return "overlay"
	case KindBadge:
		return "badge"
	default:
		return "unknown"
	}
}

// Mark annotates a misspelled substring of a word node.
// Start and End are rune offsets into the node text, half-open.
type Mark struct {
	Word        string
	Start       int
	End         int
	Suggestions []string // at most three, for display
	All         []string // full suggestion list
}

// Node is one element of a paragraph.
type Node struct {
	Kind  Kind
	Text  string
	Key   string // lowercase lookup key, words only
	Marks []Mark // spell marks, words only
}

// Paragraph is an ordered run of nodes with an ID that survives
// re-tokenization of its content.
type Paragraph struct {
	ID    uint64
	Nodes []Node
}

// Point addresses a tree position: Offset runes into node Node of paragraph
// Para.
//
// Node == len(Nodes) is the gap after the paragraph's last node; Offset then
// counts runes into the separator that follows the paragraph.
type Point struct {
	Para   int
	Node   int
	Offset int
}

// ComparePoints orders points in document order by their coordinates.
func ComparePoints(a, b Point) int {
	switch {
	case a.Para != b.Para:
		return cmpInt(a.Para, b.Para)
	case a.Node != b.Node:
		return cmpInt(a.Node, b.Node)
	default:
		return cmpInt(a.Offset, b.Offset)
	}
}

func cmpInt(a, b int) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func clampInt(v, min, max int) int {
	if max < min {
		return min
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }

// sliceRunes returns s[start:end] in rune coordinates, clamped.
func sliceRunes(s string, start, end int) string {
	rs := []rune(s)
	start = clampInt(start, 0, len(rs))
	end = clampInt(end, start, len(rs))
	return string(rs[start:end])
}

func cloneNodes(in []Node) []Node {
	if in == nil {
		return nil
	}
	out := make([]Node, len(in))
	for i, n := range in {
		out[i] = n
		if len(n.Marks) > 0 {
			out[i].Marks = cloneMarks(n.Marks)
		}
	}
	return out
}

func cloneMarks(in []Mark) []Mark {
	out := make([]Mark, len(in))
	for i, m := range in {
		out[i] = m
		out[i].Suggestions = append([]string(nil), m.Suggestions...)
		out[i].All = append([]string(nil), m.All...)
	}
	return out
}
