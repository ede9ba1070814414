// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package reference_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/periscope/internal/reference"
	"github.com/holomush/periscope/pkg/errutil"
)

func TestGoneAndReplacedAreDistinguishable(t *testing.T) {
	gone := reference.Gone("block@1,2,3")
	replaced := reference.Replaced("block@1,2,3", "01A", "01B")

	assert.True(t, reference.IsGone(gone))
	assert.False(t, reference.IsReplaced(gone))
	assert.True(t, reference.IsReplaced(replaced))
	assert.False(t, reference.IsGone(replaced))

	assert.True(t, reference.IsResolution(gone))
	assert.True(t, reference.IsResolution(replaced))
	assert.False(t, reference.IsResolution(errors.New("boom")))

	errutil.AssertErrorCode(t, gone, reference.CodeGone)
	errutil.AssertErrorCode(t, replaced, reference.CodeReplaced)
	errutil.AssertErrorContext(t, replaced, "expected", "01A")
}

func TestErase(t *testing.T) {
	ctx := context.Background()

	t.Run("typed reference resolves through erased wrapper", func(t *testing.T) {
		ref := reference.Func[int]{Name: "answer", Fn: func(context.Context) (int, error) { return 42, nil }}
		erased := reference.Erase[int](ref)

		got, err := erased.Resolve(ctx)
		require.NoError(t, err)
		assert.Equal(t, 42, got)
		assert.Equal(t, "answer", erased.Locator())
	})

	t.Run("already erased reference is returned as is", func(t *testing.T) {
		ref := reference.Of[any]("host", "agent")
		erased := reference.Erase[any](ref)
		assert.Equal(t, reference.Any(ref), erased)
	})

	t.Run("errors pass through", func(t *testing.T) {
		ref := reference.Func[string]{Name: "gone", Fn: func(context.Context) (string, error) {
			return "", reference.Gone("gone")
		}}
		_, err := reference.Erase[string](ref).Resolve(ctx)
		assert.True(t, reference.IsGone(err))
	})
}

func TestStatic(t *testing.T) {
	ref := reference.Of("agent", 7)
	first, err := ref.Resolve(context.Background())
	require.NoError(t, err)
	second, err := ref.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, "agent", ref.Locator())
}
