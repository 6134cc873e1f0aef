/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

// Package service contains primitives for running background work
// (periodic refills, housekeeping) with a controlled lifecycle.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/crptkit/docsubmit/log"
)

// ErrPeriodicWorkerStop is an error that may be used for interrupting PeriodicWorker's loop.
var ErrPeriodicWorkerStop = errors.New("stop periodic worker error")

// Worker performs some (usually long-running) work.
type Worker interface {
	Run(ctx context.Context) error
}

// WorkerFunc is an adapter to allow the use of ordinary functions as Worker.
type WorkerFunc func(ctx context.Context) error

// Run is a part of Worker interface.
func (f WorkerFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// PeriodicWorker represents a worker that runs underlying worker periodically.
//
// By default, the next run is scheduled after the previous one finishes (fixed delay).
// With FixedRate option, runs are aligned to the schedule start + InitialDelay + N*interval,
// so a slow run doesn't shift the following ones. Runs that were missed entirely are skipped.
type PeriodicWorker struct {
	worker            Worker
	logger            log.FieldLogger
	initialDelay      time.Duration
	intervalDelay     time.Duration
	intervalDelayFunc func(worker Worker, err error) time.Duration
	fixedRate         bool
}

// PeriodicWorkerOpts contains optional parameters for constructing PeriodicWorker.
type PeriodicWorkerOpts struct {
	InitialDelay      time.Duration
	IntervalDelayFunc func(worker Worker, err error) time.Duration

	// FixedRate makes the worker run on a fixed schedule. IntervalDelayFunc is ignored in this mode.
	FixedRate bool
}

// NewPeriodicWorker creates a new instance of PeriodicWorker with constant delays.
func NewPeriodicWorker(worker Worker, intervalDelay time.Duration, logger log.FieldLogger) *PeriodicWorker {
	return NewPeriodicWorkerWithOpts(worker, intervalDelay, logger, PeriodicWorkerOpts{})
}

// NewPeriodicWorkerWithOpts creates a new instance of PeriodicWorker
// with an ability to specify different optional parameters.
func NewPeriodicWorkerWithOpts(
	worker Worker, intervalDelay time.Duration, logger log.FieldLogger, opts PeriodicWorkerOpts,
) *PeriodicWorker {
	if logger == nil {
		logger = log.NewDisabledLogger()
	}
	return &PeriodicWorker{
		worker:            worker,
		initialDelay:      opts.InitialDelay,
		intervalDelay:     intervalDelay,
		intervalDelayFunc: opts.IntervalDelayFunc,
		fixedRate:         opts.FixedRate,
		logger:            logger,
	}
}

// Run runs PeriodicWorker loop.
func (pw *PeriodicWorker) Run(ctx context.Context) (resErr error) {
	defer func() {
		if p := recover(); p != nil {
			const logStackSize = 8192
			stack := make([]byte, logStackSize)
			stack = stack[:runtime.Stack(stack, false)]
			pw.logger.Error(fmt.Sprintf("panic: %+v", p), log.Bytes("stack", stack))
			panic(p)
		}
		if resErr != nil {
			pw.logger.Error("periodic worker stopped with error", log.Error(resErr))
			return
		}
		pw.logger.Debug("periodic worker stopped")
	}()

	pw.logger.Debugf("running periodic worker (initialDelay=%s, intervalDelay=%s, fixedRate=%t)...",
		pw.initialDelay, pw.intervalDelay, pw.fixedRate)

	nextRunAt := time.Now().Add(pw.initialDelay)
	timer := time.NewTimer(pw.initialDelay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}

		err := pw.worker.Run(ctx)
		if err != nil {
			if errors.Is(err, ErrPeriodicWorkerStop) {
				return nil
			}
			pw.logger.Error("periodically running worker finished with error", log.Error(err))
		}

		if pw.fixedRate {
			nextRunAt = pw.nextFixedRateRun(nextRunAt, time.Now())
		} else {
			nextDelay := pw.intervalDelay
			if pw.intervalDelayFunc != nil {
				nextDelay = pw.intervalDelayFunc(pw.worker, err)
			}
			nextRunAt = time.Now().Add(nextDelay)
		}
		timer.Reset(time.Until(nextRunAt))
	}
}

func (pw *PeriodicWorker) nextFixedRateRun(prevRunAt, now time.Time) time.Time {
	next := prevRunAt.Add(pw.intervalDelay)
	if next.After(now) {
		return next
	}
	missed := now.Sub(next)/pw.intervalDelay + 1
	pw.logger.Warn("periodic worker is late, skipping runs", log.Int64("skipped", int64(missed)))
	return next.Add(missed * pw.intervalDelay)
}
