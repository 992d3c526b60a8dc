package clock

import (
	"testing"
	"time"
)

func TestFakeFiresInDeadlineOrder(t *testing.T) {
	f := NewFake(time.Unix(0, 0))
	var got []string
	f.AfterFunc(2*time.Second, func() { got = append(got, "b") })
	f.AfterFunc(time.Second, func() { got = append(got, "a") })
	f.AfterFunc(5*time.Second, func() { got = append(got, "c") })

	f.Advance(3 * time.Second)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected firing order: %v", got)
	}
	if f.Pending() != 1 {
		t.Fatalf("expected 1 pending timer, got %d", f.Pending())
	}
	if !f.Now().Equal(time.Unix(3, 0)) {
		t.Fatalf("unexpected time: %v", f.Now())
	}
}

func TestFakeRunsRescheduledTimersInWindow(t *testing.T) {
	f := NewFake(time.Unix(0, 0))
	ticks := 0
	var tick func()
	tick = func() {
		ticks++
		f.AfterFunc(100*time.Millisecond, tick)
	}
	f.AfterFunc(100*time.Millisecond, tick)

	f.Advance(time.Second)
	if ticks != 10 {
		t.Fatalf("expected 10 ticks, got %d", ticks)
	}
}

func TestFakeStop(t *testing.T) {
	f := NewFake(time.Unix(0, 0))
	fired := false
	timer := f.AfterFunc(time.Second, func() { fired = true })
	if !timer.Stop() {
		t.Fatalf("expected Stop to report a pending timer")
	}
	f.Advance(2 * time.Second)
	if fired {
		t.Fatalf("expected stopped timer not to fire")
	}
	if timer.Stop() {
		t.Fatalf("expected second Stop to report false")
	}
}

func TestLoopDropsStoppedCallbackQueuedOnLoop(t *testing.T) {
	queue := make(chan func(), 1)
	l := NewLoop(func(f func()) { queue <- f })

	fired := false
	timer := l.AfterFunc(time.Millisecond, func() { fired = true })

	var callback func()
	select {
	case callback = <-queue:
	case <-time.After(time.Second):
		t.Fatalf("timer never posted its callback")
	}
	timer.Stop()
	callback()
	if fired {
		t.Fatalf("expected callback of a stopped timer to be dropped")
	}
}

func TestLoopPostBeforeBind(t *testing.T) {
	l := NewLoop(nil)
	ran := false
	l.Post(func() { ran = true })
	if ran {
		t.Fatalf("expected post before bind to be dropped")
	}
	l.Bind(func(f func()) { f() })
	l.Post(func() { ran = true })
	if !ran {
		t.Fatalf("expected post after bind to run")
	}
}
