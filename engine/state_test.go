package engine

import "testing"

func TestNext_Table(t *testing.T) {
	cases := []struct {
		from State
		ev   Event
		to   State
		ok   bool
	}{
		{Idle, EvEdit, Typing, true},
		{Idle, EvShow, Suggesting, true},
		{Idle, EvHide, Idle, false},
		{Idle, EvTypingIdle, Idle, false},
		{Typing, EvEdit, Typing, true},
		{Typing, EvTypingIdle, Idle, true},
		{Typing, EvShow, Suggesting, true},
		{Typing, EvCloseActions, Typing, false},
		{Suggesting, EvEdit, Typing, true},
		{Suggesting, EvHide, Idle, true},
		{Suggesting, EvShow, Suggesting, false},
		{Suggesting, EvOpenActions, Actions, true},
		{Actions, EvShow, Actions, false},
		{Actions, EvEdit, Typing, true},
		{Actions, EvCloseActions, Idle, true},
	}
	for _, tc := range cases {
		got, ok := Next(tc.from, tc.ev)
		if got != tc.to || ok != tc.ok {
			t.Fatalf("Next(%v, %v)=(%v,%v), want (%v,%v)", tc.from, tc.ev, got, ok, tc.to, tc.ok)
		}
	}
}

func TestStale(t *testing.T) {
	cases := []struct {
		ref, cur, tol int
		want          bool
	}{
		{40, 55, 10, true},
		{40, 50, 10, false},
		{55, 40, 10, true},
		{10, 10, 0, false},
		{10, 11, 0, true},
	}
	for _, tc := range cases {
		if got := Stale(tc.ref, tc.cur, tc.tol); got != tc.want {
			t.Fatalf("Stale(%d,%d,%d)=%v, want %v", tc.ref, tc.cur, tc.tol, got, tc.want)
		}
	}
}

func TestConfig_Defaults(t *testing.T) {
	c := Config{}.withDefaults()
	if c != DefaultConfig() {
		t.Fatalf("zero config=%+v, want defaults %+v", c, DefaultConfig())
	}
	exact := Config{StaleTolerance: -1}.withDefaults()
	if exact.StaleTolerance != 0 {
		t.Fatalf("StaleTolerance=%d, want 0", exact.StaleTolerance)
	}
}
