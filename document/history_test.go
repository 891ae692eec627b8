package document

import (
	"errors"
	"testing"
)

func TestDocument_UndoRedo_BasicTyping(t *testing.T) {
	d := New("", Options{})
	if d.CanUndo() {
		t.Fatalf("expected CanUndo=false")
	}

	d.Insert("a")
	if !d.CanUndo() {
		t.Fatalf("expected CanUndo=true")
	}
	if d.CanRedo() {
		t.Fatalf("expected CanRedo=false")
	}

	v := d.Version()
	if ok := d.Undo(); !ok {
		t.Fatalf("expected Undo=true")
	}
	if got, want := d.Text(), ""; got != want {
		t.Fatalf("text=%q, want %q", got, want)
	}
	if got, want := d.CursorOffset(), 0; got != want {
		t.Fatalf("cursor=%d, want %d", got, want)
	}
	if got := d.Version(); got != v+1 {
		t.Fatalf("version=%d, want %d", got, v+1)
	}

	if ok := d.Redo(); !ok {
		t.Fatalf("expected Redo=true")
	}
	if got, want := d.Text(), "a"; got != want {
		t.Fatalf("text=%q, want %q", got, want)
	}
	if got, want := d.CursorOffset(), 1; got != want {
		t.Fatalf("cursor=%d, want %d", got, want)
	}
}

func TestDocument_UndoKeepsSeparator(t *testing.T) {
	long := "This line is comfortably longer than forty characters in total."
	d := ToTree(long + "\n" + long)
	d.SetCursorOffset(0)
	d.Insert("x")
	d.Undo()
	if got, want := d.Separator(), LineSeparator; got != want {
		t.Fatalf("separator=%q, want %q", got, want)
	}
	if got, want := d.ParagraphCount(), 2; got != want {
		t.Fatalf("paragraphs=%d, want %d", got, want)
	}
}

func TestDocument_HistoryLimit(t *testing.T) {
	d := New("", Options{HistoryLimit: 2})
	d.Insert("a")
	d.Insert("b")
	d.Insert("c")
	if !d.Undo() || !d.Undo() {
		t.Fatalf("expected two undos")
	}
	if d.Undo() {
		t.Fatalf("expected history bounded at 2")
	}
	if got, want := d.Text(), "a"; got != want {
		t.Fatalf("text=%q, want %q", got, want)
	}
}

func TestDocument_NegativeHistoryLimitDisablesUndo(t *testing.T) {
	d := New("", Options{HistoryLimit: -1})
	d.Insert("a")
	if d.CanUndo() {
		t.Fatalf("expected CanUndo=false")
	}
}

func TestMutate_RestoresOnError(t *testing.T) {
	d := ToTree("keep me")
	d.SetCursorOffset(4)
	before := d.Snapshot()

	boom := errors.New("boom")
	err := d.Mutate(func() error {
		d.Insert("!!!")
		d.InsertNode(d.Cursor(), Node{Kind: KindOverlay, Text: "x"})
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err=%v, want %v", err, boom)
	}
	if got, want := d.Text(), "keep me"; got != want {
		t.Fatalf("text=%q, want %q", got, want)
	}
	if d.HasKind(KindOverlay) {
		t.Fatalf("overlay leaked from failed mutation")
	}
	if got, want := d.Cursor(), before.cursor; got != want {
		t.Fatalf("cursor=%v, want %v", got, want)
	}
}

func TestMutate_RecoversPanic(t *testing.T) {
	d := ToTree("keep me")
	err := d.Mutate(func() error {
		d.Replace(0, 4, "")
		panic("bad index")
	})
	if err == nil {
		t.Fatalf("expected error from panicking mutation")
	}
	if got, want := d.Text(), "keep me"; got != want {
		t.Fatalf("text=%q, want %q", got, want)
	}
}

func TestMutate_KeepsSuccessfulChanges(t *testing.T) {
	d := ToTree("a")
	if err := d.Mutate(func() error {
		d.Insert("b")
		return nil
	}); err != nil {
		t.Fatalf("Mutate: %v", err)
	}
	if got, want := d.Text(), "ba"; got != want {
		t.Fatalf("text=%q, want %q", got, want)
	}
}
