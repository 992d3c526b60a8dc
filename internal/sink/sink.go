// Package sink delivers finished attempts to persistence and reporting
// backends. Delivery is best-effort: failures are reported, never retried.
package sink

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/digita/internal/model"
	"github.com/verte-zerg/digita/internal/store"
)

// ErrClosed is reported for submissions made after Close.
var ErrClosed = errors.New("result dispatcher closed")

// DefaultTimeout bounds one delivery.
const DefaultTimeout = 15 * time.Second

// Sink delivers one submission.
type Sink interface {
	Deliver(ctx context.Context, sub model.Submission) error
}

// Multi delivers to every sink concurrently and joins their errors.
type Multi []Sink

// Deliver implements Sink.
func (m Multi) Deliver(ctx context.Context, sub model.Submission) error {
	errs := make([]error, len(m))
	var g errgroup.Group
	for i, s := range m {
		i, s := i, s
		g.Go(func() error {
			errs[i] = s.Deliver(ctx, sub)
			return errs[i]
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// StoreSink saves submissions to the local history database.
type StoreSink struct {
	Store *store.Store
}

// Deliver implements Sink.
func (s StoreSink) Deliver(ctx context.Context, sub model.Submission) error {
	return s.Store.InsertAttempt(ctx, sub)
}

// Dispatcher runs deliveries in the background and reports each outcome
// through post, so done runs on the caller's event loop.
type Dispatcher struct {
	sink    Sink
	post    func(func())
	timeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher returns a Dispatcher. A nil post runs done on the delivery goroutine.
func NewDispatcher(s Sink, post func(func()), timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{sink: s, post: post, timeout: timeout, ctx: ctx, cancel: cancel}
}

// Submit starts delivering sub and returns at once.
func (d *Dispatcher) Submit(sub model.Submission, done func(error)) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.report(done, ErrClosed)
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(d.ctx, d.timeout)
		defer cancel()
		d.report(done, d.sink.Deliver(ctx, sub))
	}()
}

// Close rejects new submissions and waits for pending ones. When ctx ends
// first, pending deliveries are cancelled and ctx's error is returned.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	finished := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.cancel()
		<-finished
		return ctx.Err()
	}
}

func (d *Dispatcher) report(done func(error), err error) {
	if done == nil {
		return
	}
	if d.post == nil {
		done(err)
		return
	}
	d.post(func() { done(err) })
}
