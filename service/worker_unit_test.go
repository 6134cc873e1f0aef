/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/crptkit/docsubmit/log"
)

func TestWorkerUnit_Start_Stop(t *testing.T) {
	t.Run("start, stop no gracefully", func(t *testing.T) {
		var c atomic.Int32
		periodicWorker := NewPeriodicWorker(WorkerFunc(func(ctx context.Context) error {
			c.Inc()
			return nil
		}), time.Millisecond*100, log.NewDisabledLogger())

		unit := NewWorkerUnit(periodicWorker)
		fatalErr := make(chan error, 1)
		go unit.Start(fatalErr)
		time.Sleep(time.Millisecond * 450)
		require.NoError(t, unit.Stop(false))
		<-unit.Done()
		require.Equal(t, 5, int(c.Load()))
		require.Len(t, fatalErr, 0)
	})

	t.Run("start, stop gracefully with timeout", func(t *testing.T) {
		longRunningWorker := WorkerFunc(func(ctx context.Context) error {
			time.Sleep(time.Second * 3) // Emulate long blocking operation.
			return nil
		})
		unit := NewWorkerUnitWithOpts(longRunningWorker, WorkerUnitOpts{GracefulStopTimeout: time.Millisecond * 500})
		go unit.Start(make(chan error, 1))
		time.Sleep(time.Millisecond * 100)
		require.ErrorIs(t, unit.Stop(true), ErrWorkerUnitStopTimeoutExceeded)
	})

	t.Run("start, stop gracefully without timeout", func(t *testing.T) {
		var answer atomic.Int32
		longRunningWorker := WorkerFunc(func(ctx context.Context) error {
			time.Sleep(time.Millisecond * 250)
			answer.Store(42)
			return nil
		})
		unit := NewWorkerUnit(longRunningWorker)
		go unit.Start(make(chan error, 1))
		time.Sleep(time.Millisecond * 100)
		require.NoError(t, unit.Stop(true))
		require.Equal(t, 42, int(answer.Load()))
	})

	t.Run("worker error is reported", func(t *testing.T) {
		workerErr := errors.New("worker failed")
		unit := NewWorkerUnit(WorkerFunc(func(ctx context.Context) error {
			return workerErr
		}))
		fatalErr := make(chan error, 1)
		unit.Start(fatalErr)
		require.ErrorIs(t, <-fatalErr, workerErr)
		require.NoError(t, unit.Stop(true))
	})

	t.Run("stop before start", func(t *testing.T) {
		var c atomic.Int32
		unit := NewWorkerUnit(WorkerFunc(func(ctx context.Context) error {
			c.Inc()
			<-ctx.Done()
			return nil
		}))
		require.NoError(t, unit.Stop(true))
		select {
		case <-unit.Done():
		default:
			require.Fail(t, "unit should be done after stop")
		}
		unit.Start(make(chan error, 1)) // does nothing after Stop
		require.Equal(t, 0, int(c.Load()))
	})

	t.Run("stop while start is pending", func(t *testing.T) {
		var c atomic.Int32
		unit := NewWorkerUnit(WorkerFunc(func(ctx context.Context) error {
			c.Inc()
			<-ctx.Done()
			return nil
		}))
		startCalled := make(chan struct{})
		go func() {
			<-startCalled
			unit.Start(make(chan error, 1))
		}()
		require.NoError(t, unit.Stop(true))
		close(startCalled)
		<-unit.Done()
		time.Sleep(time.Millisecond * 50)
		require.Equal(t, 0, int(c.Load()))
	})
}
