package engine

import (
	"context"
	"errors"
	"time"

	"github.com/iw2rmb/quill/protocol"
)

// ErrLoopClosed is returned by Post and Do after Run has returned.
var ErrLoopClosed = errors.New("engine: loop closed")

// Loop owns an Engine on a single goroutine. Posted functions, incoming
// messages and timer expiries are executed one at a time, never in
// parallel.
type Loop struct {
	e     *Engine
	tasks chan func(*Engine)
	done  chan struct{}
}

func NewLoop(e *Engine) *Loop {
	return &Loop{
		e:     e,
		tasks: make(chan func(*Engine), 64),
		done:  make(chan struct{}),
	}
}

// Post queues fn to run on the loop goroutine.
func (l *Loop) Post(ctx context.Context, fn func(*Engine)) error {
	select {
	case <-l.done:
		return ErrLoopClosed
	default:
	}
	select {
	case l.tasks <- fn:
		return nil
	case <-l.done:
		return ErrLoopClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do runs fn on the loop goroutine and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func(*Engine)) error {
	finished := make(chan struct{})
	err := l.Post(ctx, func(e *Engine) {
		defer close(finished)
		fn(e)
	})
	if err != nil {
		return err
	}
	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrLoopClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run serves the loop until ctx is done. Messages from incoming are handed
// to Engine.Handle; a closed incoming channel is ignored from then on.
func (l *Loop) Run(ctx context.Context, incoming <-chan protocol.Message) error {
	defer close(l.done)

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		var wake <-chan time.Time
		if d, ok := l.e.sched.Until(); ok {
			timer.Reset(d)
			wake = timer.C
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.tasks:
			fn(l.e)
		case m, ok := <-incoming:
			if !ok {
				incoming = nil
				break
			}
			l.e.Handle(m)
		case <-wake:
			l.e.Tick(l.e.sched.Now())
		}
		if wake != nil && !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
	}
}
