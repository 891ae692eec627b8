package overlay

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/iw2rmb/quill/document"
)

func shownDoc(t *testing.T, text string, cursor int, pred string) (*document.Document, *Overlay) {
	t.Helper()
	d := document.ToTree(text)
	d.SetCursorOffset(cursor)
	o := New(0)
	if err := o.Show(d, pred, map[string]any{"paragraph_index": 0}); err != nil {
		t.Fatalf("Show: %v", err)
	}
	return d, o
}

func TestShow_ExcludedFromText(t *testing.T) {
	d, o := shownDoc(t, "hello ", 6, "world")

	if got, want := o.State(), Shown; got != want {
		t.Fatalf("state=%v, want %v", got, want)
	}
	if got, want := d.Text(), "hello "; got != want {
		t.Fatalf("text=%q, want %q", got, want)
	}
	if got, want := d.CursorOffset(), 6; got != want {
		t.Fatalf("cursor=%d, want %d", got, want)
	}
	p, ok := o.Prediction()
	if !ok || p.Text != "world" || p.Origin != 6 {
		t.Fatalf("prediction=%+v ok=%v, want world@6", p, ok)
	}
}

func TestShow_ReplacesPreviousOverlay(t *testing.T) {
	d, o := shownDoc(t, "a ", 2, "one")
	if err := o.Show(d, "two", nil); err != nil {
		t.Fatalf("Show: %v", err)
	}
	count := 0
	for _, p := range d.Paragraphs() {
		for _, n := range p.Nodes {
			if n.Kind == document.KindOverlay {
				count++
				if n.Text != "two" {
					t.Fatalf("overlay text=%q, want %q", n.Text, "two")
				}
			}
		}
	}
	if count != 1 {
		t.Fatalf("overlay nodes=%d, want 1", count)
	}
}

func TestShow_RejectsEmpty(t *testing.T) {
	d := document.ToTree("x")
	o := New(0)
	if err := o.Show(d, "", nil); err != ErrEmptyPrediction {
		t.Fatalf("err=%v, want %v", err, ErrEmptyPrediction)
	}
	if o.State() != Hidden {
		t.Fatalf("expected hidden")
	}
}

func TestShow_FlattensNewlines(t *testing.T) {
	_, o := shownDoc(t, "a", 1, "b\nc")
	p, _ := o.Prediction()
	if p.Text != "b c" {
		t.Fatalf("prediction=%q, want %q", p.Text, "b c")
	}
}

func TestAcceptFull(t *testing.T) {
	d, o := shownDoc(t, "hello ", 6, "world")
	if err := o.AcceptFull(d); err != nil {
		t.Fatalf("AcceptFull: %v", err)
	}
	if got, want := d.Text(), "hello world"; got != want {
		t.Fatalf("text=%q, want %q", got, want)
	}
	if got, want := d.CursorOffset(), 11; got != want {
		t.Fatalf("cursor=%d, want %d", got, want)
	}
	if o.State() != Hidden || d.HasKind(document.KindOverlay) {
		t.Fatalf("overlay still live after full accept")
	}
	if err := o.AcceptFull(d); err != ErrNotShown {
		t.Fatalf("err=%v, want %v", err, ErrNotShown)
	}
}

func TestAcceptPartial_RemainderAboveThreshold(t *testing.T) {
	d, o := shownDoc(t, "say ", 4, "hello world today")

	more, err := o.AcceptPartial(d)
	if err != nil {
		t.Fatalf("AcceptPartial: %v", err)
	}
	if more {
		t.Fatalf("expected no new request")
	}
	if got, want := d.Text(), "say hello "; got != want {
		t.Fatalf("text=%q, want %q", got, want)
	}
	p, ok := o.Prediction()
	if !ok || p.Text != "world today" || p.Origin != 10 {
		t.Fatalf("prediction=%+v ok=%v, want remainder at 10", p, ok)
	}
	if _, ok := d.FindKind(document.KindOverlay); !ok {
		t.Fatalf("remainder overlay missing")
	}
}

func TestAcceptPartial_RemainderBelowThreshold(t *testing.T) {
	d, o := shownDoc(t, "say ", 4, "hello you")

	more, err := o.AcceptPartial(d)
	if err != nil {
		t.Fatalf("AcceptPartial: %v", err)
	}
	if !more {
		t.Fatalf("expected a new request for short remainder")
	}
	if got, want := d.Text(), "say hello "; got != want {
		t.Fatalf("text=%q, want %q", got, want)
	}
	if o.State() != Hidden || d.HasKind(document.KindOverlay) {
		t.Fatalf("overlay still live")
	}
}

func TestDismiss(t *testing.T) {
	d, o := shownDoc(t, "hello ", 6, "world")
	v := d.Text()
	if !o.Dismiss(d) {
		t.Fatalf("expected Dismiss=true")
	}
	if d.HasKind(document.KindOverlay) || o.State() != Hidden {
		t.Fatalf("overlay still live")
	}
	if d.Text() != v {
		t.Fatalf("dismiss changed text")
	}
	if o.Dismiss(d) {
		t.Fatalf("expected Dismiss=false when hidden")
	}
}

func TestSync_HidesWhenNodeGone(t *testing.T) {
	d, o := shownDoc(t, "hello ", 6, "world")
	d.RemoveKind(document.KindOverlay)
	o.Sync(d)
	if o.State() != Hidden {
		t.Fatalf("expected hidden after node vanished")
	}
}

func TestSplitLeadingWord(t *testing.T) {
	cases := []struct {
		in, head, rest string
	}{
		{in: "hello world today", head: "hello ", rest: "world today"},
		{in: " and then", head: " and ", rest: "then"},
		{in: "word", head: "word", rest: ""},
		{in: "", head: "", rest: ""},
	}
	for _, tc := range cases {
		head, rest := SplitLeadingWord(tc.in)
		if head != tc.head || rest != tc.rest {
			t.Fatalf("SplitLeadingWord(%q)=(%q,%q), want (%q,%q)", tc.in, head, rest, tc.head, tc.rest)
		}
	}
}

func TestOverlayExclusion_Property(t *testing.T) {
	gen := rapid.StringOf(rapid.SampledFrom([]rune{'a', 'b', ' ', '\n', '.'}))
	rapid.Check(t, func(rt *rapid.T) {
		text := gen.Draw(rt, "text")
		d := document.ToTree(text)
		d.SetCursorOffset(rapid.IntRange(0, d.Len()).Draw(rt, "cursor"))
		cursor := d.CursorOffset()

		o := New(0)
		pred := rapid.StringMatching(`[a-z]{1,6}( [a-z]{1,6}){0,3}`).Draw(rt, "pred")
		if err := o.Show(d, pred, nil); err != nil {
			rt.Fatalf("Show: %v", err)
		}
		if got := d.Text(); got != text {
			rt.Fatalf("text=%q, want %q", got, text)
		}
		if got := d.CursorOffset(); got != cursor {
			rt.Fatalf("cursor=%d, want %d", got, cursor)
		}
		if got := d.Len(); got != len([]rune(text)) {
			rt.Fatalf("len=%d, want %d", got, len([]rune(text)))
		}
		o.Dismiss(d)
		if got := d.Text(); got != text {
			rt.Fatalf("text after dismiss=%q, want %q", got, text)
		}
	})
}
