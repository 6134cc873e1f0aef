/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/throttled/throttled/v2"
	"github.com/throttled/throttled/v2/store/memstore"

	"github.com/crptkit/docsubmit/log"
)

const leakyBucketKey = "default"

type gcraRateLimiter interface {
	RateLimitCtx(ctx context.Context, key string, quantity int) (bool, throttled.RateLimitResult, error)
}

// minLeakyBucketRetryAfter protects from spinning when GCRA reports a limited request without a delay.
const minLeakyBucketRetryAfter = time.Millisecond

// LeakyBucketLimiter implements GCRA (Generic Cell Rate Algorithm). It's a leaky bucket variant algorithm.
// More details and good explanation of this alg is provided here: https://brandur.org/rate-limiting#gcra.
// Up to Rate.Count operations may pass at once, after that they are spaced by Rate.Duration/Rate.Count.
type LeakyBucketLimiter struct {
	limiter     gcraRateLimiter
	waitTimeout time.Duration
	logger      log.FieldLogger
	metrics     MetricsCollector
	closed      *closeSignal
}

var _ Limiter = (*LeakyBucketLimiter)(nil)

// NewLeakyBucketLimiter creates a new LeakyBucketLimiter backed by an in-memory store.
func NewLeakyBucketLimiter(maxRate Rate, opts Opts) (*LeakyBucketLimiter, error) {
	if err := maxRate.validate(); err != nil {
		return nil, err
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	gcraStore, err := memstore.NewCtx(0)
	if err != nil {
		return nil, fmt.Errorf("new in-memory store: %w", err)
	}
	quota := throttled.RateQuota{
		MaxRate:  throttled.PerDuration(maxRate.Count, maxRate.Duration),
		MaxBurst: maxRate.Count - 1, // the first request is not counted as a burst
	}
	gcraLimiter, err := throttled.NewGCRARateLimiterCtx(gcraStore, quota)
	if err != nil {
		return nil, fmt.Errorf("new GCRA rate limiter: %w", err)
	}
	return &LeakyBucketLimiter{
		limiter:     gcraLimiter,
		waitTimeout: opts.WaitTimeout,
		logger:      opts.logger(),
		metrics:     metricsOrDisabled(opts.MetricsCollector),
		closed:      newCloseSignal(),
	}, nil
}

// Acquire blocks until the operation conforms to the rate and registers it.
// A failure of the GCRA store is returned wrapped as is, not as *WaitError,
// and is counted as a rejection with the RejectReasonStoreError reason.
func (l *LeakyBucketLimiter) Acquire(ctx context.Context) error {
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
		limited, res, err := l.limiter.RateLimitCtx(ctx, leakyBucketKey, 1)
		if err != nil {
			l.reject(RejectReasonStoreError, startTime)
			return fmt.Errorf("check GCRA rate limit: %w", err)
		}
		if !limited {
			l.metrics.IncAcquired()
			l.metrics.ObserveWaitDuration(startTime)
			return nil
		}
		if wb == nil {
			wb = newWaitBounds(ctx, l.waitTimeout, l.closed)
			l.logger.Debug("leaky bucket is full, waiting", log.Duration("retry_after", res.RetryAfter))
		}
		retryAfter := res.RetryAfter
		if retryAfter < minLeakyBucketRetryAfter {
			retryAfter = minLeakyBucketRetryAfter
		}
		if reason, err := wb.sleep(retryAfter); err != nil {
			l.reject(reason, startTime)
			return err
		}
	}
}

func (l *LeakyBucketLimiter) reject(reason string, startTime time.Time) {
	l.metrics.IncRejected(reason)
	l.metrics.ObserveWaitDuration(startTime)
}

// Close releases all blocked callers with ErrLimiterClosed.
func (l *LeakyBucketLimiter) Close() error {
	l.closed.close()
	return nil
}
