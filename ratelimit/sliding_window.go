/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package ratelimit

import (
	"context"
	"time"

	"github.com/RussellLuo/slidingwindow"

	"github.com/crptkit/docsubmit/log"
)

// SlidingWindowLimiter admits operations using the sliding window algorithm.
// The number of operations in the current window is estimated as a weighted sum
// of the previous and the current fixed windows, which smooths the bursts at window boundaries.
type SlidingWindowLimiter struct {
	limiter      *slidingwindow.Limiter
	stopWindow   slidingwindow.StopFunc
	maxRate      Rate
	pollInterval time.Duration
	waitTimeout  time.Duration
	logger       log.FieldLogger
	metrics      MetricsCollector
	closed       *closeSignal
}

var _ Limiter = (*SlidingWindowLimiter)(nil)

// NewSlidingWindowLimiter creates a new SlidingWindowLimiter.
func NewSlidingWindowLimiter(maxRate Rate, opts Opts) (*SlidingWindowLimiter, error) {
	if err := maxRate.validate(); err != nil {
		return nil, err
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	lim, stop := slidingwindow.NewLimiter(
		maxRate.Duration, int64(maxRate.Count), func() (slidingwindow.Window, slidingwindow.StopFunc) {
			return slidingwindow.NewLocalWindow()
		})
	return &SlidingWindowLimiter{
		limiter:      lim,
		stopWindow:   stop,
		maxRate:      maxRate,
		pollInterval: maxRate.Duration / time.Duration(maxRate.Count),
		waitTimeout:  opts.WaitTimeout,
		logger:       opts.logger(),
		metrics:      metricsOrDisabled(opts.MetricsCollector),
		closed:       newCloseSignal(),
	}, nil
}

// Acquire blocks until the operation fits into the sliding window.
func (l *SlidingWindowLimiter) Acquire(ctx context.Context) error {
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
		if l.limiter.Allow() {
			l.metrics.IncAcquired()
			l.metrics.ObserveWaitDuration(startTime)
			return nil
		}
		if wb == nil {
			wb = newWaitBounds(ctx, l.waitTimeout, l.closed)
			l.logger.Debug("sliding window is full, waiting")
		}
		if reason, err := wb.sleep(l.retryAfter(time.Now())); err != nil {
			l.reject(reason, startTime)
			return err
		}
	}
}

// retryAfter returns the delay before the next attempt.
// The estimated count decreases continuously, so the limiter is polled
// at the average operation interval but never later than the next window boundary.
func (l *SlidingWindowLimiter) retryAfter(now time.Time) time.Duration {
	untilNextWindow := now.Truncate(l.maxRate.Duration).Add(l.maxRate.Duration).Sub(now)
	if l.pollInterval > 0 && l.pollInterval < untilNextWindow {
		return l.pollInterval
	}
	return untilNextWindow
}

func (l *SlidingWindowLimiter) reject(reason string, startTime time.Time) {
	l.metrics.IncRejected(reason)
	l.metrics.ObserveWaitDuration(startTime)
}

// Close releases all blocked callers with ErrLimiterClosed.
func (l *SlidingWindowLimiter) Close() error {
	if l.closed.close() {
		l.stopWindow()
	}
	return nil
}
