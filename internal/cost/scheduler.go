// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package cost

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
)

// Scheduler owns the handlers of every live call tree and decides when
// they are reset. It is safe for concurrent use.
type Scheduler struct {
	mu       sync.Mutex
	handlers map[*Handler]struct{}
	quota    int64
}

// NewScheduler creates a scheduler whose handlers get quota units per reset.
func NewScheduler(quota int64) *Scheduler {
	return &Scheduler{
		handlers: make(map[*Handler]struct{}),
		quota:    quota,
	}
}

// New creates and tracks a handler for a new root call tree.
func (s *Scheduler) New() *Handler {
	h := NewHandler(s.quota)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[h] = struct{}{}
	return h
}

// Release stops tracking h. Safe to call for unknown handlers.
func (s *Scheduler) Release(h *Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.handlers, h)
}

// Reset resets every tracked handler. Intended as a per-tick hook.
func (s *Scheduler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for h := range s.handlers {
		h.Reset()
	}
}

// Tick adapts Reset to the executor's tick hook signature.
func (s *Scheduler) Tick(_ context.Context) {
	s.Reset()
}

// Len returns the number of tracked handlers.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handlers)
}

// Await charges amount against h, waiting interval between attempts while
// the quota is exhausted. It gives up when ctx is done. Errors other than
// ErrQuotaExceeded are returned immediately.
func Await(ctx context.Context, h *Handler, amount int64, interval time.Duration) error {
	if amount > h.Quota() {
		// Would never succeed, even straight after a reset.
		return h.Charge(amount)
	}

	backoff := retry.NewConstant(interval)
	//nolint:wrapcheck // errors are already coded by Charge or come from ctx
	return retry.Do(ctx, backoff, func(_ context.Context) error {
		err := h.Charge(amount)
		if IsQuotaExceeded(err) {
			slog.DebugContext(ctx, "cost quota exhausted, waiting for reset",
				"amount", amount,
				"remaining", h.Remaining())
			return retry.RetryableError(err)
		}
		return err
	})
}
