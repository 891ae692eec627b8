// Package reconcile applies spell-check results to a document as word marks
// and per-paragraph error badges.
package reconcile

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/iw2rmb/quill/document"
)

// maxShownSuggestions caps the suggestions kept for display on a mark.
const maxShownSuggestions = 3

type SpellError struct {
	Word        string
	Suggestions []string
}

type Options struct {
	// Editing is set while the user is composing; reconciliation is skipped.
	Editing bool
	Logger  *slog.Logger
}

type Result struct {
	Skipped     bool
	Highlighted int
	Total       int
	// Missing lists paragraph indices that no longer exist.
	Missing []int
}

// Apply clears every mark and badge, then marks each reported error on the
// first word of its paragraph that contains it (case-insensitively) and
// appends a "h/t errors" badge to the paragraph. Paragraph indices that no
// longer exist are skipped. Nothing happens while an overlay is shown or
// opt.Editing is set. Canonical text and the cursor are unchanged.
func Apply(doc *document.Document, errs map[int][]SpellError, opt Options) (Result, error) {
	if opt.Editing || doc.HasKind(document.KindOverlay) {
		return Result{Skipped: true}, nil
	}
	log := opt.Logger
	if log == nil {
		log = slog.Default()
	}

	var res Result
	err := doc.Mutate(func() error {
		clearAll(doc)
		if len(errs) == 0 {
			return nil
		}

		idxs := make([]int, 0, len(errs))
		for i := range errs {
			idxs = append(idxs, i)
		}
		sort.Ints(idxs)

		for _, i := range idxs {
			list := errs[i]
			p, ok := doc.Paragraph(i)
			if !ok {
				res.Missing = append(res.Missing, i)
				log.Warn("spell errors for missing paragraph skipped", "paragraph", i, "errors", len(list))
				continue
			}
			if len(list) == 0 {
				continue
			}

			nodes := p.Nodes
			highlighted := 0
			for _, e := range list {
				if markFirst(nodes, e) {
					highlighted++
				}
			}
			nodes = append(nodes, document.Node{
				Kind: document.KindBadge,
				Text: fmt.Sprintf("%d/%d errors", highlighted, len(list)),
			})
			if err := doc.SetNodes(i, nodes); err != nil {
				return err
			}
			res.Highlighted += highlighted
			res.Total += len(list)
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

// markFirst marks the first occurrence of e.Word inside the first word node
// containing it.
func markFirst(nodes []document.Node, e SpellError) bool {
	needle := strings.ToLower(e.Word)
	if needle == "" {
		return false
	}
	for j := range nodes {
		if nodes[j].Kind != document.KindWord {
			continue
		}
		hay := strings.ToLower(nodes[j].Text)
		at := strings.Index(hay, needle)
		if at < 0 {
			continue
		}
		start := utf8.RuneCountInString(hay[:at])
		shown := e.Suggestions
		if len(shown) > maxShownSuggestions {
			shown = shown[:maxShownSuggestions]
		}
		nodes[j].Marks = append(nodes[j].Marks, document.Mark{
			Word:        e.Word,
			Start:       start,
			End:         start + utf8.RuneCountInString(needle),
			Suggestions: append([]string(nil), shown...),
			All:         append([]string(nil), e.Suggestions...),
		})
		return true
	}
	return false
}

// Clear removes every mark and badge.
func Clear(doc *document.Document) error {
	return doc.Mutate(func() error {
		clearAll(doc)
		return nil
	})
}

func clearAll(doc *document.Document) {
	doc.RemoveKind(document.KindBadge)
	for i := 0; i < doc.ParagraphCount(); i++ {
		p, _ := doc.Paragraph(i)
		marked := false
		for j := range p.Nodes {
			if len(p.Nodes[j].Marks) > 0 {
				p.Nodes[j].Marks = nil
				marked = true
			}
		}
		if marked {
			_ = doc.SetNodes(i, p.Nodes)
		}
	}
}

// Hit is a mark together with its canonical range.
type Hit struct {
	Mark       document.Mark
	Paragraph  int
	Start, End int
}

// MarkAt returns the mark covering the canonical offset, if any. Offsets at
// either edge of a mark count as covered.
func MarkAt(doc *document.Document, offset int) (Hit, bool) {
	for i := 0; i < doc.ParagraphCount(); i++ {
		p, _ := doc.Paragraph(i)
		for j, n := range p.Nodes {
			if len(n.Marks) == 0 {
				continue
			}
			base := doc.Offset(document.Point{Para: i, Node: j})
			for _, m := range n.Marks {
				s, e := base+m.Start, base+m.End
				if offset >= s && offset <= e {
					return Hit{Mark: m, Paragraph: i, Start: s, End: e}, true
				}
			}
		}
	}
	return Hit{}, false
}

// Count returns the number of marks and badges in doc.
func Count(doc *document.Document) (marks, badges int) {
	for _, p := range doc.Paragraphs() {
		for _, n := range p.Nodes {
			marks += len(n.Marks)
			if n.Kind == document.KindBadge {
				badges++
			}
		}
	}
	return marks, badges
}
