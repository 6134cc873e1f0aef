/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package service

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrWorkerUnitStopTimeoutExceeded is an error that occurs when WorkerUnit's gracefully stop timeout is exceeded.
var ErrWorkerUnitStopTimeoutExceeded = errors.New("worker unit stop timeout exceeded")

// WorkerUnit allows presenting Worker as Unit.
type WorkerUnit struct {
	worker              Worker
	gracefulStopTimeout time.Duration

	ctx       context.Context
	ctxCancel context.CancelFunc
	started   chan struct{}
	done      chan struct{}
	startOnce sync.Once
}

var _ Unit = (*WorkerUnit)(nil)

// WorkerUnitOpts contains optional parameters for constructing WorkerUnit.
type WorkerUnitOpts struct {
	GracefulStopTimeout time.Duration
}

// NewWorkerUnit creates a new instance of WorkerUnit.
func NewWorkerUnit(worker Worker) *WorkerUnit {
	return NewWorkerUnitWithOpts(worker, WorkerUnitOpts{})
}

// NewWorkerUnitWithOpts creates a new instance of WorkerUnit
// with an ability to specify different optional parameters.
func NewWorkerUnitWithOpts(worker Worker, opts WorkerUnitOpts) *WorkerUnit {
	ctx, ctxCancel := context.WithCancel(context.Background())
	return &WorkerUnit{
		worker:              worker,
		gracefulStopTimeout: opts.GracefulStopTimeout,
		ctx:                 ctx,
		ctxCancel:           ctxCancel,
		started:             make(chan struct{}),
		done:                make(chan struct{}),
	}
}

// Start runs (calls Run() method) underlying Worker and blocks until it's finished.
// Only the first call has an effect.
func (u *WorkerUnit) Start(fatalErr chan<- error) {
	u.startOnce.Do(func() {
		close(u.started)
		defer close(u.done)
		if err := u.worker.Run(u.ctx); err != nil {
			fatalErr <- err
		}
	})
}

// Stop stops underlying Worker.
// If the unit hasn't been started yet, the following Start calls do nothing.
func (u *WorkerUnit) Stop(gracefully bool) error {
	u.ctxCancel()
	u.startOnce.Do(func() {
		close(u.started)
		close(u.done)
	})
	if !gracefully {
		return nil
	}
	if u.gracefulStopTimeout == 0 {
		<-u.done
		return nil
	}
	select {
	case <-u.done:
		return nil
	case <-time.After(u.gracefulStopTimeout):
		return ErrWorkerUnitStopTimeoutExceeded
	}
}

// Done returns a channel that's closed when underlying Worker is finished.
func (u *WorkerUnit) Done() <-chan struct{} {
	return u.done
}
