// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package cost provides the quota ledger shared by a family of contexts.
//
// One Handler is created per root call tree and the very same instance is
// handed to every context derived from that root. Charges use a
// compare-and-swap loop so the world goroutine never blocks on a quota check.
package cost

import (
	"errors"
	"sync/atomic"

	"github.com/samber/oops"
)

// CodeQuotaExceeded is the oops code for denied charges.
const CodeQuotaExceeded = "QUOTA_EXCEEDED"

// ErrQuotaExceeded is matched (errors.Is) by every denied charge.
var ErrQuotaExceeded = errors.New("quota exceeded")

// Handler is a per-family cost ledger. It is safe for concurrent use.
type Handler struct {
	used  atomic.Int64
	quota int64
}

// NewHandler creates a handler allowing quota units between resets.
// A non-positive quota denies every non-zero charge.
func NewHandler(quota int64) *Handler {
	if quota < 0 {
		quota = 0
	}
	return &Handler{quota: quota}
}

// Charge consumes amount units. It fails with ErrQuotaExceeded, leaving the
// ledger untouched, if the charge would overrun the quota. Non-positive
// amounts always succeed.
func (h *Handler) Charge(amount int64) error {
	if amount <= 0 {
		return nil
	}
	for {
		used := h.used.Load()
		if used+amount > h.quota {
			recordDenial()
			return oops.Code(CodeQuotaExceeded).
				With("amount", amount).
				With("used", used).
				With("quota", h.quota).
				Wrap(ErrQuotaExceeded)
		}
		if h.used.CompareAndSwap(used, used+amount) {
			recordCharge(amount)
			return nil
		}
	}
}

// Reset clears all consumed units. Called by the owning scheduler.
func (h *Handler) Reset() {
	h.used.Store(0)
}

// Used returns the units consumed since the last reset.
func (h *Handler) Used() int64 {
	return h.used.Load()
}

// Remaining returns the units still available before the next reset.
func (h *Handler) Remaining() int64 {
	return h.quota - h.used.Load()
}

// Quota returns the configured quota.
func (h *Handler) Quota() int64 {
	return h.quota
}

// IsQuotaExceeded reports whether err is a denied charge.
func IsQuotaExceeded(err error) bool {
	return errors.Is(err, ErrQuotaExceeded)
}
