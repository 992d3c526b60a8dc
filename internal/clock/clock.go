// Package clock provides the time source and timer scheduling for the engine.
//
// Every callback scheduled through a Clock runs on the owner's event loop, one
// at a time, so engine state is never mutated concurrently.
package clock

import (
	"sync"
	"sync/atomic"
	"time"
)

// Timer is a pending callback.
type Timer interface {
	// Stop prevents the callback from running. It reports whether the call
	// stopped the timer before it ran.
	Stop() bool
}

// Clock reads the time and schedules delayed callbacks.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Loop is a real-time Clock whose callbacks are handed to a post function
// that runs them on a single event loop.
type Loop struct {
	mu   sync.RWMutex
	post func(func())
}

// NewLoop returns a Loop. The post function may be bound later with Bind.
func NewLoop(post func(func())) *Loop {
	return &Loop{post: post}
}

// Bind sets the function used to run callbacks on the event loop.
func (l *Loop) Bind(post func(func())) {
	l.mu.Lock()
	l.post = post
	l.mu.Unlock()
}

// Post runs f on the event loop. Before Bind, f is dropped.
func (l *Loop) Post(f func()) {
	l.mu.RLock()
	post := l.post
	l.mu.RUnlock()
	if post == nil {
		return
	}
	post(f)
}

// Now implements Clock.
func (l *Loop) Now() time.Time {
	return time.Now()
}

// AfterFunc implements Clock. A timer stopped after it fired but before the
// loop ran its callback still never runs.
func (l *Loop) AfterFunc(d time.Duration, f func()) Timer {
	t := &loopTimer{}
	t.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			if t.stopped.Load() {
				return
			}
			t.fired.Store(true)
			f()
		})
	})
	return t
}

type loopTimer struct {
	timer   *time.Timer
	stopped atomic.Bool
	fired   atomic.Bool
}

func (t *loopTimer) Stop() bool {
	t.timer.Stop()
	if t.fired.Load() {
		return false
	}
	return !t.stopped.Swap(true)
}
