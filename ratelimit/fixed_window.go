/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/crptkit/docsubmit/log"
	"github.com/crptkit/docsubmit/service"
)

// FixedWindowLimiter admits at most Rate.Count operations per Rate.Duration.
//
// The capacity is restored by a hard reset: every Rate.Duration the number of available units
// is set back to Rate.Count no matter how many were consumed. Units are never returned by callers.
// Blocked callers are woken up all together on every reset and compete for the new units,
// so the order of admission is not guaranteed.
type FixedWindowLimiter struct {
	capacity    int
	period      time.Duration
	waitTimeout time.Duration
	logger      log.FieldLogger
	metrics     MetricsCollector

	mu        sync.Mutex
	available int
	refilled  chan struct{} // closed and replaced on every reset

	closed     *closeSignal
	refillUnit *service.WorkerUnit
}

var _ Limiter = (*FixedWindowLimiter)(nil)

// NewFixedWindowLimiter creates a new FixedWindowLimiter and starts its refill schedule.
func NewFixedWindowLimiter(rate Rate) (*FixedWindowLimiter, error) {
	return NewFixedWindowLimiterWithOpts(rate, Opts{})
}

// NewFixedWindowLimiterWithOpts creates a new FixedWindowLimiter with options and starts its refill schedule.
// Close must be called to stop the schedule.
func NewFixedWindowLimiterWithOpts(rate Rate, opts Opts) (*FixedWindowLimiter, error) {
	if err := rate.validate(); err != nil {
		return nil, err
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	logger := opts.logger()

	l := &FixedWindowLimiter{
		capacity:    rate.Count,
		period:      rate.Duration,
		waitTimeout: opts.WaitTimeout,
		logger:      logger,
		metrics:     metricsOrDisabled(opts.MetricsCollector),
		available:   rate.Count,
		refilled:    make(chan struct{}),
		closed:      newCloseSignal(),
	}

	refillWorker := service.NewPeriodicWorkerWithOpts(service.WorkerFunc(func(_ context.Context) error {
		l.refill()
		return nil
	}), rate.Duration, logger, service.PeriodicWorkerOpts{InitialDelay: rate.Duration, FixedRate: true})
	l.refillUnit = service.NewWorkerUnit(refillWorker)
	go l.refillUnit.Start(make(chan error, 1)) // refill never fails

	return l, nil
}

// Acquire blocks until a unit is available and consumes it.
//
// The wait is interrupted when ctx is done, WaitTimeout expires or the limiter is closed,
// in these cases *WaitError is returned. After Close, Acquire fails immediately with ErrLimiterClosed.
func (l *FixedWindowLimiter) Acquire(ctx context.Context) error {
	startTime := time.Now()
	var wb *waitBounds
	defer func() {
		if wb != nil {
			wb.stop()
		}
	}()

	for {
		if l.closed.isClosed() {
			l.reject(RejectReasonClosed, startTime)
			return &WaitError{Inner: ErrLimiterClosed}
		}

		l.mu.Lock()
		if l.available > 0 {
			l.available--
			l.mu.Unlock()
			l.metrics.IncAcquired()
			l.metrics.ObserveWaitDuration(startTime)
			return nil
		}
		refilled := l.refilled
		l.mu.Unlock()

		if wb == nil {
			wb = newWaitBounds(ctx, l.waitTimeout, l.closed)
			l.logger.Debug("rate limit capacity is exhausted, waiting for reset", log.Int("capacity", l.capacity))
		}
		if reason, err := wb.wait(refilled); err != nil {
			l.reject(reason, startTime)
			return err
		}
	}
}

func (l *FixedWindowLimiter) reject(reason string, startTime time.Time) {
	l.metrics.IncRejected(reason)
	l.metrics.ObserveWaitDuration(startTime)
}

// refill restores the capacity and wakes up all blocked callers.
func (l *FixedWindowLimiter) refill() {
	l.mu.Lock()
	released := l.capacity - l.available
	if released == 0 {
		l.mu.Unlock()
		l.metrics.IncRefills(RefillResultNoop)
		l.logger.Debug("rate limiter is full, no reset needed", log.Int("capacity", l.capacity))
		return
	}
	l.available = l.capacity
	close(l.refilled)
	l.refilled = make(chan struct{})
	l.mu.Unlock()

	l.metrics.IncRefills(RefillResultReset)
	l.logger.Debug("rate limiter reset",
		log.Int("released", released), log.Int("available", l.capacity), log.Int("capacity", l.capacity))
}

// Available returns the number of units that may be acquired without waiting at the moment.
func (l *FixedWindowLimiter) Available() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.available
}

// Capacity returns the maximum number of units per window.
func (l *FixedWindowLimiter) Capacity() int {
	return l.capacity
}

// Period returns the window duration.
func (l *FixedWindowLimiter) Period() time.Duration {
	return l.period
}

// Close stops the refill schedule and releases all blocked callers with ErrLimiterClosed.
func (l *FixedWindowLimiter) Close() error {
	if !l.closed.close() {
		return nil
	}
	if err := l.refillUnit.Stop(true); err != nil {
		return fmt.Errorf("stop refill schedule: %w", err)
	}
	l.logger.Debug("rate limiter closed")
	return nil
}
