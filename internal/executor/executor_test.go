// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package executor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/holomush/periscope/pkg/errutil"
)

// waitForPending blocks until the executor has n queued tasks.
func waitForPending(t *testing.T, e *Executor, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return e.Pending() == n }, time.Second, time.Millisecond)
}

func TestExecutor_SubmitRunsOnTick(t *testing.T) {
	defer goleak.VerifyNone(t)

	e := New()
	var sawWorld atomic.Bool
	done := make(chan error, 1)
	go func() {
		done <- e.Submit(context.Background(), func(ctx context.Context) error {
			sawWorld.Store(OnWorldThread(ctx))
			return nil
		})
	}()

	waitForPending(t, e, 1)
	assert.Equal(t, 1, e.Tick(context.Background()))
	require.NoError(t, <-done)
	assert.True(t, sawWorld.Load())
	assert.Equal(t, 0, e.Pending())
}

func TestExecutor_SubmitPropagatesError(t *testing.T) {
	defer goleak.VerifyNone(t)

	e := New()
	want := errors.New("boom")
	done := make(chan error, 1)
	go func() {
		done <- e.Submit(context.Background(), func(context.Context) error { return want })
	}()

	waitForPending(t, e, 1)
	e.Tick(context.Background())
	assert.ErrorIs(t, <-done, want)
}

func TestExecutor_InlineOnWorldThread(t *testing.T) {
	e := New()
	ran := false
	err := e.Submit(WorldContext(context.Background()), func(context.Context) error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, 0, e.Pending())
}

func TestExecutor_AbandonedTaskDoesNotRun(t *testing.T) {
	defer goleak.VerifyNone(t)

	e := New()
	ctx, cancel := context.WithCancel(context.Background())
	var ran atomic.Bool
	done := make(chan error, 1)
	go func() {
		done <- e.Submit(ctx, func(context.Context) error {
			ran.Store(true)
			return nil
		})
	}()

	waitForPending(t, e, 1)
	cancel()
	err := <-done
	assert.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, 0, e.Tick(context.Background()))
	assert.False(t, ran.Load())
}

func TestExecutor_CancelAfterClaimWaitsForResult(t *testing.T) {
	defer goleak.VerifyNone(t)

	e := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	started := make(chan struct{})
	release := make(chan struct{})

	type result struct {
		v   int
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := Call(ctx, e, func(context.Context) (int, error) {
			close(started)
			<-release
			return 42, nil
		})
		done <- result{v, err}
	}()

	waitForPending(t, e, 1)
	ticked := make(chan int, 1)
	go func() { ticked <- e.Tick(context.Background()) }()

	<-started
	cancel()
	select {
	case r := <-done:
		t.Fatalf("call returned while its task was still running: %v", r.err)
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	r := <-done
	require.NoError(t, r.err)
	assert.Equal(t, 42, r.v)
	assert.Equal(t, 1, <-ticked)
}

func TestExecutor_ResetSkipsAbandoned(t *testing.T) {
	defer goleak.VerifyNone(t)

	e := New()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- e.Submit(ctx, func(context.Context) error { return nil })
	}()

	waitForPending(t, e, 1)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	e.Reset()
	assert.Equal(t, 0, e.Pending())
}

func TestExecutor_ResetFailsPending(t *testing.T) {
	defer goleak.VerifyNone(t)

	e := New()
	done := make(chan error, 1)
	go func() {
		done <- e.Submit(context.Background(), func(context.Context) error { return nil })
	}()

	waitForPending(t, e, 1)
	e.Reset()
	errutil.AssertErrorCode(t, <-done, CodeReset)
}

func TestExecutor_ClosedRejectsSubmit(t *testing.T) {
	e := New()
	e.Close()
	err := e.Submit(context.Background(), func(context.Context) error { return nil })
	errutil.AssertErrorCode(t, err, CodeClosed)
}

func TestExecutor_PanicBecomesError(t *testing.T) {
	e := New()
	err := e.Submit(WorldContext(context.Background()), func(context.Context) error {
		panic("kaboom")
	})
	errutil.AssertErrorCode(t, err, CodePanic)
}

func TestCall_ReturnsValue(t *testing.T) {
	defer goleak.VerifyNone(t)

	e := New()
	type result struct {
		v   int
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := Call(context.Background(), e, func(context.Context) (int, error) { return 7, nil })
		done <- result{v, err}
	}()

	waitForPending(t, e, 1)
	e.Tick(context.Background())
	r := <-done
	require.NoError(t, r.err)
	assert.Equal(t, 7, r.v)
}

func TestExecutor_RunTicksHooksAndCloses(t *testing.T) {
	defer goleak.VerifyNone(t)

	e := New()
	ctx, cancel := context.WithCancel(context.Background())
	var hookCalls atomic.Int64
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		e.Run(ctx, time.Millisecond, func(ctx context.Context) {
			if OnWorldThread(ctx) {
				hookCalls.Add(1)
			}
		})
	}()

	v, err := Call(context.Background(), e, func(ctx context.Context) (bool, error) {
		return OnWorldThread(ctx), nil
	})
	require.NoError(t, err)
	assert.True(t, v)

	cancel()
	<-stopped
	assert.Positive(t, hookCalls.Load())

	err = e.Submit(context.Background(), func(context.Context) error { return nil })
	errutil.AssertErrorCode(t, err, CodeClosed)
}
