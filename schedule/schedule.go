// Package schedule implements debounced tasks over virtual time.
//
// A Scheduler holds at most one pending task per Kind. Arming a kind again
// supersedes its pending task. The owner asks for the next deadline, waits
// for it by whatever means it has (a tea.Tick, a timer, a fake clock), then
// collects the due tasks with RunDue. Nothing runs on its own goroutine.
package schedule

import (
	"sort"
	"time"
)

type Kind int

const (
	Save Kind = iota
	Predict
	SpellCheck
	Normalize
	TypingIdle
)

func (k Kind) String() string {
	switch k {
	case Save:
		return "save"
	case Predict:
		return "predict"
	case SpellCheck:
		return "spellcheck"
	case Normalize:
		return "normalize"
	case TypingIdle:
		return "typing-idle"
	default:
		return "unknown"
	}
}

// Task is one pending debounced action.
type Task struct {
	Kind Kind
	Due  time.Time
	// Seq orders tasks armed at the same deadline.
	Seq uint64
}

// Scheduler is not safe for concurrent use.
type Scheduler struct {
	clock Clock
	tasks map[Kind]Task
	seq   uint64
}

func New(c Clock) *Scheduler {
	if c == nil {
		c = Real()
	}
	return &Scheduler{clock: c, tasks: make(map[Kind]Task)}
}

func (s *Scheduler) Now() time.Time { return s.clock.Now() }

// Arm schedules kind k to run after d, superseding any pending task of the
// same kind.
func (s *Scheduler) Arm(k Kind, d time.Duration) Task {
	if d < 0 {
		d = 0
	}
	s.seq++
	t := Task{Kind: k, Due: s.clock.Now().Add(d), Seq: s.seq}
	s.tasks[k] = t
	return t
}

// Cancel drops the pending task of kind k and reports whether one existed.
func (s *Scheduler) Cancel(k Kind) bool {
	_, ok := s.tasks[k]
	delete(s.tasks, k)
	return ok
}

func (s *Scheduler) Armed(k Kind) bool {
	_, ok := s.tasks[k]
	return ok
}

// Next returns the earliest pending deadline.
func (s *Scheduler) Next() (time.Time, bool) {
	var (
		next time.Time
		ok   bool
	)
	for _, t := range s.tasks {
		if !ok || t.Due.Before(next) {
			next, ok = t.Due, true
		}
	}
	return next, ok
}

// Until returns how long until the next deadline, clamped at zero.
func (s *Scheduler) Until() (time.Duration, bool) {
	next, ok := s.Next()
	if !ok {
		return 0, false
	}
	d := next.Sub(s.clock.Now())
	if d < 0 {
		d = 0
	}
	return d, true
}

// RunDue removes and returns every task due at or before now, in deadline
// order.
func (s *Scheduler) RunDue(now time.Time) []Task {
	var due []Task
	for k, t := range s.tasks {
		if !t.Due.After(now) {
			due = append(due, t)
			delete(s.tasks, k)
		}
	}
	sortTasks(due)
	return due
}

// Pending returns a copy of the queue in deadline order.
func (s *Scheduler) Pending() []Task {
	out := make([]Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t)
	}
	sortTasks(out)
	return out
}

func sortTasks(ts []Task) {
	sort.Slice(ts, func(i, j int) bool {
		if !ts[i].Due.Equal(ts[j].Due) {
			return ts[i].Due.Before(ts[j].Due)
		}
		return ts[i].Seq < ts[j].Seq
	})
}
