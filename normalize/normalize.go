// Package normalize re-tokenizes paragraphs left untokenized by raw edits.
package normalize

import (
	"strings"

	"github.com/iw2rmb/quill/document"
)

// Result reports what a normalization pass did.
type Result struct {
	// Skipped is set when an overlay anywhere in the document blocked the
	// pass.
	Skipped bool
	// Paragraphs lists the indices of re-tokenized paragraphs.
	Paragraphs []int
}

// Changed reports whether any paragraph was rewritten.
func (r Result) Changed() bool { return len(r.Paragraphs) > 0 }

// Normalize re-tokenizes every dirty paragraph of doc from its canonical
// text. An existing badge is reattached, and the cursor and selection are
// restored by offset. Canonical text never changes; running Normalize on a
// normalized document is a no-op.
//
// The pass runs under doc.Mutate, so a failure leaves the tree untouched.
func Normalize(doc *document.Document) (Result, error) {
	if doc.HasKind(document.KindOverlay) {
		return Result{Skipped: true}, nil
	}

	var res Result
	err := doc.Mutate(func() error {
		cursor := doc.CursorOffset()
		anchor := doc.SelectionAnchor()
		selected := doc.HasSelection()

		for i := 0; i < doc.ParagraphCount(); i++ {
			p, _ := doc.Paragraph(i)
			if !Dirty(p.Nodes) {
				continue
			}
			nodes := document.TokenizeParagraph(doc.ParagraphText(i))
			if badge, ok := findBadge(p.Nodes); ok {
				nodes = append(nodes, badge)
			}
			if err := doc.SetNodes(i, nodes); err != nil {
				return err
			}
			res.Paragraphs = append(res.Paragraphs, i)
		}

		if !res.Changed() {
			return nil
		}
		if selected {
			doc.Select(anchor, cursor)
		} else {
			doc.SetCursorOffset(cursor)
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

// Dirty reports whether nodes hold text-bearing content outside a word
// token that is not whitespace-only and longer than one rune: a raw node,
// or two adjacent words left behind by a deletion. Paragraphs holding an
// overlay are never dirty.
func Dirty(nodes []document.Node) bool {
	prevWord := false
	for _, n := range nodes {
		switch n.Kind {
		case document.KindOverlay:
			return false
		case document.KindRaw:
			if len([]rune(n.Text)) > 1 && !whitespaceOnly(n.Text) {
				return hasNoOverlay(nodes)
			}
		case document.KindWord:
			if prevWord {
				return hasNoOverlay(nodes)
			}
		}
		if n.Kind != document.KindBadge {
			prevWord = n.Kind == document.KindWord
		}
	}
	return false
}

func hasNoOverlay(nodes []document.Node) bool {
	for _, n := range nodes {
		if n.Kind == document.KindOverlay {
			return false
		}
	}
	return true
}

func findBadge(nodes []document.Node) (document.Node, bool) {
	for _, n := range nodes {
		if n.Kind == document.KindBadge {
			return n, true
		}
	}
	return document.Node{}, false
}

func whitespaceOnly(s string) bool { return strings.TrimSpace(s) == "" }
