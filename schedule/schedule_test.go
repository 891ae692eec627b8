package schedule

import (
	"testing"
	"time"
)

var epoch = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func TestArm_SupersedesSameKind(t *testing.T) {
	c := Fake(epoch)
	s := New(c)

	s.Arm(Predict, 300*time.Millisecond)
	c.Advance(200 * time.Millisecond)
	s.Arm(Predict, 300*time.Millisecond)

	pending := s.Pending()
	if len(pending) != 1 {
		t.Fatalf("pending=%d, want 1", len(pending))
	}
	if got, want := pending[0].Due, epoch.Add(500*time.Millisecond); !got.Equal(want) {
		t.Fatalf("due=%v, want %v", got, want)
	}

	if due := s.RunDue(c.Advance(200 * time.Millisecond)); len(due) != 0 {
		t.Fatalf("fired at 400ms: %v", due)
	}
	due := s.RunDue(c.Advance(100 * time.Millisecond))
	if len(due) != 1 || due[0].Kind != Predict {
		t.Fatalf("due=%v, want one predict", due)
	}
	if s.Armed(Predict) {
		t.Fatalf("task still armed after RunDue")
	}
}

func TestRunDue_DeadlineOrder(t *testing.T) {
	c := Fake(epoch)
	s := New(c)
	s.Arm(Save, time.Second)
	s.Arm(Normalize, 150*time.Millisecond)
	s.Arm(SpellCheck, 800*time.Millisecond)
	s.Arm(TypingIdle, 150*time.Millisecond)

	next, ok := s.Next()
	if !ok || !next.Equal(epoch.Add(150*time.Millisecond)) {
		t.Fatalf("next=%v ok=%v, want +150ms", next, ok)
	}

	due := s.RunDue(c.Advance(time.Second))
	want := []Kind{Normalize, TypingIdle, SpellCheck, Save}
	if len(due) != len(want) {
		t.Fatalf("due=%v, want %v", due, want)
	}
	for i, k := range want {
		if due[i].Kind != k {
			t.Fatalf("due[%d]=%v, want %v", i, due[i].Kind, k)
		}
	}
	if _, ok := s.Next(); ok {
		t.Fatalf("queue not empty")
	}
}

func TestCancel(t *testing.T) {
	s := New(Fake(epoch))
	s.Arm(Save, time.Second)
	if !s.Cancel(Save) {
		t.Fatalf("expected Cancel=true")
	}
	if s.Cancel(Save) {
		t.Fatalf("expected Cancel=false on empty slot")
	}
}

func TestUntil_ClampsAtZero(t *testing.T) {
	c := Fake(epoch)
	s := New(c)
	if _, ok := s.Until(); ok {
		t.Fatalf("expected no deadline")
	}
	s.Arm(Save, time.Second)
	if d, _ := s.Until(); d != time.Second {
		t.Fatalf("until=%v, want 1s", d)
	}
	c.Advance(3 * time.Second)
	if d, _ := s.Until(); d != 0 {
		t.Fatalf("until=%v, want 0", d)
	}
}

func TestKindString(t *testing.T) {
	if got := SpellCheck.String(); got != "spellcheck" {
		t.Fatalf("String=%q", got)
	}
}
