// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package executor hands work from script goroutines to the world goroutine.
//
// The world goroutine is the only goroutine allowed to resolve references
// or touch live world state. Script goroutines Submit tasks and block until
// the world goroutine drains the queue on its next Tick.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/samber/oops"
)

// Error codes for executor failures.
const (
	CodeReset  = "EXECUTOR_RESET"
	CodeClosed = "EXECUTOR_CLOSED"
	CodePanic  = "TASK_PANIC"
)

type worldKey struct{}

// OnWorldThread reports whether ctx belongs to a task running on the world
// goroutine.
func OnWorldThread(ctx context.Context) bool {
	on, _ := ctx.Value(worldKey{}).(bool)
	return on
}

// WorldContext marks ctx as running on the world goroutine. The executor
// applies it to every task; world loops that call into the core directly
// use it too.
func WorldContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, worldKey{}, true)
}

// Task is a unit of work executed on the world goroutine.
type Task func(ctx context.Context) error

const (
	taskQueued int32 = iota
	taskClaimed
	taskAbandoned
)

type pending struct {
	ctx      context.Context
	fn       Task
	done     chan error
	state    atomic.Int32
	queuedAt time.Time
}

// claim moves a queued task to claimed. Only one of the world goroutine and
// the submitter can win.
func (p *pending) claim() bool {
	return p.state.CompareAndSwap(taskQueued, taskClaimed)
}

func (p *pending) abandon() bool {
	return p.state.CompareAndSwap(taskQueued, taskAbandoned)
}

// Hook runs on the world goroutine at the start of every tick.
type Hook func(ctx context.Context)

// Executor is a tick-pumped task queue. The zero value is not usable; use New.
type Executor struct {
	mu     sync.Mutex
	queue  []*pending
	closed bool
}

// New creates an empty executor.
func New() *Executor {
	return &Executor{}
}

// Submit queues fn for the world goroutine and waits for it to finish.
// If ctx already belongs to the world goroutine fn runs inline. If ctx ends
// before the world goroutine claims the task, the task is abandoned and will
// not run. Once claimed, Submit waits for the task and returns its result.
func (e *Executor) Submit(ctx context.Context, fn Task) error {
	if OnWorldThread(ctx) {
		return run(ctx, fn)
	}

	p := &pending{ctx: ctx, fn: fn, done: make(chan error, 1), queuedAt: time.Now()}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return oops.Code(CodeClosed).Errorf("executor is closed")
	}
	e.queue = append(e.queue, p)
	queueDepth.Set(float64(len(e.queue)))
	e.mu.Unlock()

	select {
	case err := <-p.done:
		return err
	case <-ctx.Done():
		if !p.abandon() {
			return <-p.done
		}
		recordTask(statusAbandoned)
		return oops.With("queued_for", time.Since(p.queuedAt).String()).Wrap(ctx.Err())
	}
}

// Call runs fn on the world goroutine and returns its result. The result is
// only read after Submit has observed the task finish.
func Call[R any](ctx context.Context, e *Executor, fn func(ctx context.Context) (R, error)) (R, error) {
	var res R
	err := e.Submit(ctx, func(ctx context.Context) error {
		var err error
		res, err = fn(ctx)
		return err
	})
	if err != nil {
		var zero R
		return zero, err
	}
	return res, nil
}

// Tick drains every task queued before the call. It must only be called
// from the world goroutine. Tasks queued by running tasks wait for the
// next tick.
func (e *Executor) Tick(ctx context.Context) int {
	e.mu.Lock()
	batch := e.queue
	e.queue = nil
	queueDepth.Set(0)
	e.mu.Unlock()

	ran := 0
	for _, p := range batch {
		if !p.claim() {
			continue
		}
		taskCtx := WorldContext(p.ctx)
		err := run(taskCtx, p.fn)
		if err != nil {
			recordTask(statusError)
		} else {
			recordTask(statusSuccess)
		}
		p.done <- err
		ran++
	}
	return ran
}

// Pending returns the number of queued tasks.
func (e *Executor) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.queue)
}

// Reset fails every queued task without running it. Used when the owner
// of the queue is removed from the world.
func (e *Executor) Reset() {
	e.mu.Lock()
	batch := e.queue
	e.queue = nil
	queueDepth.Set(0)
	e.mu.Unlock()

	dropped := 0
	for _, p := range batch {
		if !p.claim() {
			continue
		}
		dropped++
		recordTask(statusReset)
		p.done <- oops.Code(CodeReset).Errorf("executor was reset before the task ran")
	}
	if dropped > 0 {
		slog.Debug("executor reset dropped pending tasks", "count", dropped)
	}
}

// Close resets the executor and rejects further submissions.
func (e *Executor) Close() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
	e.Reset()
}

// Run drives the executor from the calling goroutine, which becomes the
// world goroutine, ticking every interval until ctx ends. Hooks run before
// the queue is drained on every tick. The executor is closed on return.
func (e *Executor) Run(ctx context.Context, interval time.Duration, hooks ...Hook) {
	defer e.Close()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	worldCtx := WorldContext(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, hook := range hooks {
				hook(worldCtx)
			}
			e.Tick(worldCtx)
		}
	}
}

func run(ctx context.Context, fn Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "world task panicked", "panic", fmt.Sprint(r))
			err = oops.Code(CodePanic).With("panic", fmt.Sprint(r)).Errorf("world task panicked: %v", r)
		}
	}()
	return fn(ctx)
}
