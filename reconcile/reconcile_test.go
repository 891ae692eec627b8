package reconcile

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/iw2rmb/quill/document"
)

func badgeText(t *testing.T, doc *document.Document, para int) string {
	t.Helper()
	p, ok := doc.Paragraph(para)
	if !ok {
		t.Fatalf("paragraph %d missing", para)
	}
	for _, n := range p.Nodes {
		if n.Kind == document.KindBadge {
			return n.Text
		}
	}
	return ""
}

func TestApply_SingleError(t *testing.T) {
	d := document.ToTree("I teh cat")
	d.SetCursorOffset(4)

	res, err := Apply(d, map[int][]SpellError{
		0: {{Word: "teh", Suggestions: []string{"the", "ten", "tea", "tech"}}},
	}, Options{})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if res.Highlighted != 1 || res.Total != 1 {
		t.Fatalf("result=%+v, want 1/1", res)
	}
	if got, want := badgeText(t, d, 0), "1/1 errors"; got != want {
		t.Fatalf("badge=%q, want %q", got, want)
	}

	p, _ := d.Paragraph(0)
	marked := 0
	for _, n := range p.Nodes {
		if len(n.Marks) == 0 {
			continue
		}
		marked++
		m := n.Marks[0]
		if n.Text != "teh" || m.Start != 0 || m.End != 3 {
			t.Fatalf("mark=%+v on %q, want teh[0,3)", m, n.Text)
		}
		if len(m.Suggestions) != 3 || len(m.All) != 4 {
			t.Fatalf("suggestions=%v all=%v, want 3 shown of 4", m.Suggestions, m.All)
		}
	}
	if marked != 1 {
		t.Fatalf("marked tokens=%d, want 1", marked)
	}
	if got, want := d.Text(), "I teh cat"; got != want {
		t.Fatalf("text=%q, want %q", got, want)
	}
	if got, want := d.CursorOffset(), 4; got != want {
		t.Fatalf("cursor=%d, want %d", got, want)
	}
}

func TestApply_CaseInsensitiveSubstring(t *testing.T) {
	d := document.ToTree("Well, Recieve it.")
	if _, err := Apply(d, map[int][]SpellError{0: {{Word: "recieve"}}}, Options{}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	hit, ok := MarkAt(d, 8)
	if !ok {
		t.Fatalf("expected mark under offset 8")
	}
	if hit.Start != 6 || hit.End != 13 {
		t.Fatalf("hit=[%d,%d), want [6,13)", hit.Start, hit.End)
	}
}

func TestApply_UnmatchedCountsInBadge(t *testing.T) {
	d := document.ToTree("fine words")
	res, err := Apply(d, map[int][]SpellError{0: {{Word: "words"}, {Word: "zzz"}}}, Options{})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if res.Highlighted != 1 || res.Total != 2 {
		t.Fatalf("result=%+v, want 1/2", res)
	}
	if got, want := badgeText(t, d, 0), "1/2 errors"; got != want {
		t.Fatalf("badge=%q, want %q", got, want)
	}
}

func TestApply_RepeatedErrorsNotDeduplicated(t *testing.T) {
	d := document.ToTree("teh and teh")
	if _, err := Apply(d, map[int][]SpellError{0: {{Word: "teh"}, {Word: "teh"}}}, Options{}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	marks, _ := Count(d)
	if marks != 2 {
		t.Fatalf("marks=%d, want 2", marks)
	}
	p, _ := d.Paragraph(0)
	if len(p.Nodes[0].Marks) != 2 {
		t.Fatalf("first token marks=%d, want 2", len(p.Nodes[0].Marks))
	}
	if got, want := badgeText(t, d, 0), "2/2 errors"; got != want {
		t.Fatalf("badge=%q, want %q", got, want)
	}
}

func TestApply_MissingParagraphSkipped(t *testing.T) {
	d := document.ToTree("teh one\n\nfine")
	res, err := Apply(d, map[int][]SpellError{
		0: {{Word: "teh"}},
		7: {{Word: "gone"}},
	}, Options{})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(res.Missing) != 1 || res.Missing[0] != 7 {
		t.Fatalf("missing=%v, want [7]", res.Missing)
	}
	if got, want := badgeText(t, d, 0), "1/1 errors"; got != want {
		t.Fatalf("badge=%q, want %q", got, want)
	}
	if got := badgeText(t, d, 1); got != "" {
		t.Fatalf("unexpected badge %q on clean paragraph", got)
	}
}

func TestApply_EmptyResultClears(t *testing.T) {
	d := document.ToTree("I teh cat")
	if _, err := Apply(d, map[int][]SpellError{0: {{Word: "teh"}}}, Options{}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if _, err := Apply(d, nil, Options{}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if marks, badges := Count(d); marks != 0 || badges != 0 {
		t.Fatalf("marks=%d badges=%d, want none", marks, badges)
	}
}

func TestApply_SkippedWhileEditingOrOverlay(t *testing.T) {
	d := document.ToTree("I teh cat")
	errs := map[int][]SpellError{0: {{Word: "teh"}}}

	res, _ := Apply(d, errs, Options{Editing: true})
	if !res.Skipped {
		t.Fatalf("expected skip while editing")
	}

	d.SetCursorOffset(9)
	d.InsertNode(d.Cursor(), document.Node{Kind: document.KindOverlay, Text: " sat"})
	res, _ = Apply(d, errs, Options{})
	if !res.Skipped {
		t.Fatalf("expected skip while overlay shown")
	}
	if marks, badges := Count(d); marks != 0 || badges != 0 {
		t.Fatalf("marks=%d badges=%d, want none", marks, badges)
	}
}

func TestApply_Idempotent(t *testing.T) {
	d := document.ToTree("teh qick fox\n\nsecnd line")
	errs := map[int][]SpellError{
		0: {{Word: "teh"}, {Word: "qick"}},
		1: {{Word: "secnd"}},
	}
	if _, err := Apply(d, errs, Options{}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	first := d.Paragraphs()
	if _, err := Apply(d, errs, Options{}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	second := d.Paragraphs()
	for i := range first {
		if len(first[i].Nodes) != len(second[i].Nodes) {
			t.Fatalf("paragraph %d node count %d -> %d", i, len(first[i].Nodes), len(second[i].Nodes))
		}
		for j := range first[i].Nodes {
			a, b := first[i].Nodes[j], second[i].Nodes[j]
			if a.Kind != b.Kind || a.Text != b.Text || len(a.Marks) != len(b.Marks) {
				t.Fatalf("paragraph %d node %d changed: %+v -> %+v", i, j, a, b)
			}
		}
	}
}

func TestClear(t *testing.T) {
	d := document.ToTree("I teh cat")
	if _, err := Apply(d, map[int][]SpellError{0: {{Word: "teh"}}}, Options{}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if err := Clear(d); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if marks, badges := Count(d); marks != 0 || badges != 0 {
		t.Fatalf("marks=%d badges=%d, want none", marks, badges)
	}
	if _, ok := MarkAt(d, 3); ok {
		t.Fatalf("expected no mark after Clear")
	}
}

func TestApply_PreservesTextAndCursor_Property(t *testing.T) {
	gen := rapid.StringOf(rapid.SampledFrom([]rune{'a', 'b', 'c', ' ', '\n'}))
	rapid.Check(t, func(rt *rapid.T) {
		text := gen.Draw(rt, "text")
		d := document.ToTree(text)
		d.SetCursorOffset(rapid.IntRange(0, d.Len()).Draw(rt, "cursor"))
		cursor := d.CursorOffset()

		errs := map[int][]SpellError{}
		n := rapid.IntRange(0, 4).Draw(rt, "errors")
		for i := 0; i < n; i++ {
			para := rapid.IntRange(-1, 3).Draw(rt, "para")
			word := rapid.StringMatching(`[abc]{1,3}`).Draw(rt, "word")
			errs[para] = append(errs[para], SpellError{Word: word})
		}
		if _, err := Apply(d, errs, Options{}); err != nil {
			rt.Fatalf("Apply: %v", err)
		}
		if got := d.Text(); got != text {
			rt.Fatalf("text=%q, want %q", got, text)
		}
		if got := d.CursorOffset(); got != cursor {
			rt.Fatalf("cursor=%d, want %d", got, cursor)
		}
	})
}
