/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/crptkit/docsubmit/log"
)

// TokenBucketLimiter admits operations using the token bucket algorithm.
// Tokens are added continuously at Rate.Count per Rate.Duration, the bucket holds at most Rate.Count tokens.
// Unlike FixedWindowLimiter, the capacity is not restored at once, so after a burst the operations are spread evenly.
type TokenBucketLimiter struct {
	limiter     *rate.Limiter
	waitTimeout time.Duration
	logger      log.FieldLogger
	metrics     MetricsCollector
	closed      *closeSignal
}

var _ Limiter = (*TokenBucketLimiter)(nil)

// NewTokenBucketLimiter creates a new TokenBucketLimiter.
func NewTokenBucketLimiter(maxRate Rate, opts Opts) (*TokenBucketLimiter, error) {
	if err := maxRate.validate(); err != nil {
		return nil, err
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &TokenBucketLimiter{
		limiter:     rate.NewLimiter(rate.Limit(float64(maxRate.Count)/maxRate.Duration.Seconds()), maxRate.Count),
		waitTimeout: opts.WaitTimeout,
		logger:      opts.logger(),
		metrics:     metricsOrDisabled(opts.MetricsCollector),
		closed:      newCloseSignal(),
	}, nil
}

// Acquire blocks until a token is available and consumes it.
func (l *TokenBucketLimiter) Acquire(ctx context.Context) error {
	startTime := time.Now()
	if l.closed.isClosed() {
		l.reject(RejectReasonClosed, startTime)
		return &WaitError{Inner: ErrLimiterClosed}
	}
	if l.limiter.Allow() {
		l.admit(startTime)
		return nil
	}

	l.logger.Debug("no tokens in bucket, waiting")
	waitCtx, classify, cancel := waitContext(ctx, l.waitTimeout, l.closed)
	defer cancel()
	if err := l.limiter.Wait(waitCtx); err != nil {
		reason, waitErr := classify(err)
		l.reject(reason, startTime)
		return waitErr
	}
	l.admit(startTime)
	return nil
}

func (l *TokenBucketLimiter) admit(startTime time.Time) {
	l.metrics.IncAcquired()
	l.metrics.ObserveWaitDuration(startTime)
}

func (l *TokenBucketLimiter) reject(reason string, startTime time.Time) {
	l.metrics.IncRejected(reason)
	l.metrics.ObserveWaitDuration(startTime)
}

// Close releases all blocked callers with ErrLimiterClosed.
func (l *TokenBucketLimiter) Close() error {
	l.closed.close()
	return nil
}
