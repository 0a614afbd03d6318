// Package sched provides the cooperative run loop that owns all engine state.
//
// Every mutation of request, disk and unit state happens on the loop: work is
// either posted as a closure or triggered by the stage signal, which invokes
// the loop's wake function. Asynchronous collaborators run wherever they like
// and post their results back here; nothing on the loop ever blocks.
package sched

import (
	"context"
	"sync"
)

// Loop is a single-threaded cooperative executor.
//
// Post enqueues a closure for execution. Signal requests one invocation of the
// wake function; signals raised while a wake is already requested coalesce.
// Posted closures always run before a pending wake.
type Loop struct {
	mu       sync.Mutex
	queue    []func()
	signaled bool
	wake     func()
	notify   chan struct{}
}

// New creates a loop with the given wake function. A nil wake turns Signal
// into a no-op beyond draining posted work.
func New(wake func()) *Loop {
	return &Loop{
		wake:   wake,
		notify: make(chan struct{}, 1),
	}
}

// Post enqueues fn for execution on the loop. Safe to call from any
// goroutine, including from closures already running on the loop.
func (l *Loop) Post(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
	l.ping()
}

// Signal requests a wake. Multiple signals coalesce into one wake call.
func (l *Loop) Signal() {
	l.mu.Lock()
	l.signaled = true
	l.mu.Unlock()
	l.ping()
}

func (l *Loop) ping() {
	select {
	case l.notify <- struct{}{}:
	default:
	}
}

// next returns the next unit of work, or nil when the loop is idle.
func (l *Loop) next() func() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.queue) > 0 {
		fn := l.queue[0]
		l.queue = l.queue[1:]
		return fn
	}
	if l.signaled {
		l.signaled = false
		if l.wake != nil {
			return l.wake
		}
	}
	return nil
}

// Settle runs posted work and pending wakes until the loop is idle.
// It must only be called by the goroutine that owns the loop; it is the
// drive primitive for tests and for callers that multiplex the loop
// themselves.
func (l *Loop) Settle() {
	for {
		fn := l.next()
		if fn == nil {
			return
		}
		fn()
	}
}

// Run blocks, processing work as it arrives, until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-l.notify:
			l.Settle()
		}
	}
}
