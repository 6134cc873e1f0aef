/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

// Package ratelimit provides client-side limiters that cap the rate of outbound operations.
//
// The default algorithm is a fixed window with a hard reset: at most Count operations are admitted
// per Duration, and the capacity is restored to Count on a fixed schedule. Callers that find no capacity
// block until the next reset, their context is done, the wait timeout expires or the limiter is closed.
// Token bucket, sliding window and leaky bucket (GCRA) algorithms may be chosen explicitly,
// they produce a smoother throughput curve than the fixed window.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/crptkit/docsubmit/log"
)

// ErrLimiterClosed is returned (wrapped into WaitError) by Acquire when the limiter is closed.
var ErrLimiterClosed = errors.New("rate limiter is closed")

// Limiter admits operations at a limited rate.
type Limiter interface {
	// Acquire blocks until the operation may proceed.
	// It returns *WaitError if the wait was interrupted.
	Acquire(ctx context.Context) error

	// Close stops the limiter and releases all blocked callers. It's safe to call Close more than once.
	Close() error
}

// Opts represents options common for all limiters.
type Opts struct {
	// WaitTimeout bounds a single Acquire call. Zero means no limit (only the context bounds the wait).
	WaitTimeout time.Duration

	Logger           log.FieldLogger
	MetricsCollector MetricsCollector
}

func (o Opts) validate() error {
	if o.WaitTimeout < 0 {
		return fmt.Errorf("wait timeout must be non-negative, got %s", o.WaitTimeout)
	}
	return nil
}

func (o Opts) logger() log.FieldLogger {
	if o.Logger == nil {
		return log.NewDisabledLogger()
	}
	return o.Logger
}

// Rate describes the frequency of operations (e.g. 5 per minute).
type Rate struct {
	Count    int
	Duration time.Duration
}

func (r Rate) validate() error {
	if r.Count <= 0 {
		return fmt.Errorf("rate count must be positive, got %d", r.Count)
	}
	if r.Duration <= 0 {
		return fmt.Errorf("rate duration must be positive, got %s", r.Duration)
	}
	return nil
}

// String returns a human-readable representation of the rate.
func (r Rate) String() string {
	return fmt.Sprintf("%d/%s", r.Count, r.Duration)
}

// WaitError is returned by Acquire when waiting for capacity was interrupted.
// The wrapped error is either ErrLimiterClosed, context.DeadlineExceeded (wait timeout or context deadline)
// or context.Canceled.
type WaitError struct {
	Inner error
}

func (e *WaitError) Error() string {
	return fmt.Sprintf("wait for rate limit capacity: %s", e.Inner.Error())
}

// Unwrap returns the next error in the error chain.
func (e *WaitError) Unwrap() error {
	return e.Inner
}

// Reasons of rejected acquires.
const (
	RejectReasonClosed     = "closed"
	RejectReasonCanceled   = "canceled"
	RejectReasonTimeout    = "timeout"
	RejectReasonStoreError = "store_error"
)

// closeSignal is a one-shot broadcast of the limiter closing.
// It's backed by a context, so it may be combined with other contexts.
type closeSignal struct {
	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

func newCloseSignal() *closeSignal {
	ctx, cancel := context.WithCancel(context.Background())
	return &closeSignal{ctx: ctx, cancel: cancel}
}

// close returns true only for the first call.
func (s *closeSignal) close() (first bool) {
	s.once.Do(func() {
		s.cancel()
		first = true
	})
	return first
}

func (s *closeSignal) done() <-chan struct{} {
	return s.ctx.Done()
}

func (s *closeSignal) isClosed() bool {
	return s.ctx.Err() != nil
}

// waitBounds combines everything that may interrupt a wait for capacity.
type waitBounds struct {
	ctx     context.Context
	timeout <-chan time.Time
	closed  <-chan struct{}
	stop    func()
}

func newWaitBounds(ctx context.Context, waitTimeout time.Duration, closed *closeSignal) *waitBounds {
	wb := &waitBounds{ctx: ctx, closed: closed.done(), stop: func() {}}
	if waitTimeout > 0 {
		timer := time.NewTimer(waitTimeout)
		wb.timeout = timer.C
		wb.stop = func() { timer.Stop() }
	}
	return wb
}

// wait blocks until ready is closed or the wait is interrupted.
// In the latter case it returns a non-nil *WaitError together with the reject reason.
func (wb *waitBounds) wait(ready <-chan struct{}) (reason string, err error) {
	select {
	case <-ready:
		return "", nil
	default:
	}
	select {
	case <-ready:
		return "", nil
	case <-wb.closed:
		return RejectReasonClosed, &WaitError{Inner: ErrLimiterClosed}
	case <-wb.ctx.Done():
		return RejectReasonCanceled, &WaitError{Inner: wb.ctx.Err()}
	case <-wb.timeout:
		return RejectReasonTimeout, &WaitError{Inner: context.DeadlineExceeded}
	}
}

// sleep blocks for d unless the wait is interrupted.
func (wb *waitBounds) sleep(d time.Duration) (reason string, err error) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return "", nil
	case <-wb.closed:
		return RejectReasonClosed, &WaitError{Inner: ErrLimiterClosed}
	case <-wb.ctx.Done():
		return RejectReasonCanceled, &WaitError{Inner: wb.ctx.Err()}
	case <-wb.timeout:
		return RejectReasonTimeout, &WaitError{Inner: context.DeadlineExceeded}
	}
}

// waitContext is like waitBounds but for limiters that block on a context themselves.
// The returned classify function converts an error that happened while waiting with this context
// into *WaitError and its reject reason.
func waitContext(
	ctx context.Context, waitTimeout time.Duration, closed *closeSignal,
) (waitCtx context.Context, classify func(error) (string, error), cancel func()) {
	timeoutCtx, timeoutCancel := ctx, context.CancelFunc(func() {})
	if waitTimeout > 0 {
		timeoutCtx, timeoutCancel = context.WithTimeout(ctx, waitTimeout)
	}
	waitCtx, waitCancel := context.WithCancel(timeoutCtx)
	stopAfter := context.AfterFunc(closed.ctx, waitCancel)
	classify = func(err error) (string, error) {
		switch {
		case closed.isClosed():
			return RejectReasonClosed, &WaitError{Inner: ErrLimiterClosed}
		case ctx.Err() != nil:
			return RejectReasonCanceled, &WaitError{Inner: ctx.Err()}
		case timeoutCtx.Err() != nil:
			return RejectReasonTimeout, &WaitError{Inner: context.DeadlineExceeded}
		default:
			// The limiter knows in advance the wait can't fit into the deadline.
			return RejectReasonTimeout, &WaitError{Inner: fmt.Errorf("%w: %s", context.DeadlineExceeded, err)}
		}
	}
	cancel = func() {
		stopAfter()
		waitCancel()
		timeoutCancel()
	}
	return waitCtx, classify, cancel
}
