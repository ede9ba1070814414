// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package cost

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestScheduler_TracksAndResets(t *testing.T) {
	s := NewScheduler(2)
	a := s.New()
	b := s.New()
	assert.Equal(t, 2, s.Len())
	assert.NotSame(t, a, b)

	require.NoError(t, a.Charge(2))
	require.NoError(t, b.Charge(1))

	s.Tick(context.Background())
	assert.Equal(t, int64(0), a.Used())
	assert.Equal(t, int64(0), b.Used())

	s.Release(a)
	assert.Equal(t, 1, s.Len())
	require.NoError(t, a.Charge(2))
	s.Reset()
	assert.Equal(t, int64(2), a.Used(), "released handlers are no longer reset")

	s.Release(a) // unknown handler is a no-op
	assert.Equal(t, 1, s.Len())
}

func TestAwait(t *testing.T) {
	defer goleak.VerifyNone(t)

	t.Run("succeeds immediately with quota available", func(t *testing.T) {
		h := NewHandler(1)
		require.NoError(t, Await(context.Background(), h, 1, time.Millisecond))
		assert.Equal(t, int64(1), h.Used())
	})

	t.Run("waits for a reset", func(t *testing.T) {
		s := NewScheduler(1)
		h := s.New()
		require.NoError(t, h.Charge(1))

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		done := make(chan error, 1)
		go func() { done <- Await(ctx, h, 1, time.Millisecond) }()

		time.Sleep(10 * time.Millisecond)
		s.Reset()

		require.NoError(t, <-done)
		assert.Equal(t, int64(1), h.Used())
	})

	t.Run("gives up when the context ends", func(t *testing.T) {
		h := NewHandler(1)
		require.NoError(t, h.Charge(1))

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		err := Await(ctx, h, 1, time.Millisecond)
		require.Error(t, err)
	})

	t.Run("amount above quota fails without waiting", func(t *testing.T) {
		h := NewHandler(1)
		err := Await(context.Background(), h, 5, time.Hour)
		assert.True(t, IsQuotaExceeded(err))
	})
}
