// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/periscope/pkg/errutil"
)

func TestInventory_SetAndList(t *testing.T) {
	inv := NewInventory(3)

	require.NoError(t, inv.Set(2, Stack{Item: "cobblestone", Count: 10}))
	assert.Equal(t, map[int]Stack{2: {Item: "cobblestone", Count: 10}}, inv.List())

	st, ok := inv.Stack(2)
	require.True(t, ok)
	assert.Equal(t, 10, st.Count)

	_, ok = inv.Stack(4)
	assert.False(t, ok)

	err := inv.Set(0, Stack{Item: "dirt", Count: 1})
	errutil.AssertErrorCode(t, err, CodeNoSuchSlot)

	err = inv.Set(1, Stack{Item: "dirt", Count: MaxStackSize + 1})
	errutil.AssertErrorCode(t, err, CodeInvalidEntity)

	require.NoError(t, inv.Set(2, Stack{Item: "cobblestone", Count: 0}))
	assert.Empty(t, inv.List())
}

func TestInventory_InsertMergesBeforeFilling(t *testing.T) {
	inv := NewInventory(3)
	require.NoError(t, inv.Set(3, Stack{Item: "dirt", Count: 60}))

	accepted := inv.Insert("dirt", 10)
	assert.Equal(t, 10, accepted)
	assert.Equal(t, map[int]Stack{
		1: {Item: "dirt", Count: 6},
		3: {Item: "dirt", Count: MaxStackSize},
	}, inv.List())

	accepted = inv.Insert("sand", 200)
	assert.Equal(t, MaxStackSize, accepted, "only slot 2 is free")
}

func TestSlot_Insert(t *testing.T) {
	inv := NewInventory(2)
	require.NoError(t, inv.Set(1, Stack{Item: "dirt", Count: 60}))

	s, ok := inv.Slot(1)
	require.True(t, ok)
	assert.Equal(t, 0, s.Insert("sand", 1))
	assert.Equal(t, 4, s.Insert("dirt", 10))
	assert.Equal(t, MaxStackSize, s.Stack().Count)
	assert.Equal(t, 1, s.Index())
	assert.Same(t, inv, s.Inventory())

	other, _ := inv.Slot(2)
	assert.Equal(t, 5, other.Insert("sand", 5))

	_, ok = inv.Slot(3)
	assert.False(t, ok)
}

func TestMove(t *testing.T) {
	t.Run("moves up to limit", func(t *testing.T) {
		src, dst := NewInventory(2), NewInventory(2)
		require.NoError(t, src.Set(1, Stack{Item: "iron_ingot", Count: 20}))

		moved, err := Move(src, 1, dst, 8)
		require.NoError(t, err)
		assert.Equal(t, 8, moved)
		assert.Equal(t, map[int]Stack{1: {Item: "iron_ingot", Count: 12}}, src.List())
		assert.Equal(t, map[int]Stack{1: {Item: "iron_ingot", Count: 8}}, dst.List())
	})

	t.Run("rejected items stay in source", func(t *testing.T) {
		src, dst := NewInventory(1), NewInventory(1)
		require.NoError(t, src.Set(1, Stack{Item: "iron_ingot", Count: 20}))
		require.NoError(t, dst.Set(1, Stack{Item: "iron_ingot", Count: 60}))

		moved, err := Move(src, 1, dst, MaxStackSize)
		require.NoError(t, err)
		assert.Equal(t, 4, moved)
		st, _ := src.Stack(1)
		assert.Equal(t, Stack{Item: "iron_ingot", Count: 16}, st)
	})

	t.Run("into a single slot", func(t *testing.T) {
		src, dst := NewInventory(1), NewInventory(3)
		require.NoError(t, src.Set(1, Stack{Item: "gold_ingot", Count: 3}))
		slot, _ := dst.Slot(3)

		moved, err := Move(src, 1, slot, 10)
		require.NoError(t, err)
		assert.Equal(t, 3, moved)
		assert.Empty(t, src.List())
		assert.Equal(t, map[int]Stack{3: {Item: "gold_ingot", Count: 3}}, dst.List())
	})

	t.Run("empty slot and no-op moves", func(t *testing.T) {
		src := NewInventory(2)
		moved, err := Move(src, 2, NewInventory(1), 10)
		require.NoError(t, err)
		assert.Zero(t, moved)

		require.NoError(t, src.Set(1, Stack{Item: "dirt", Count: 1}))
		self, _ := src.Slot(1)
		moved, err = Move(src, 1, self, 10)
		require.NoError(t, err)
		assert.Zero(t, moved)

		moved, err = Move(src, 1, NewInventory(1), 0)
		require.NoError(t, err)
		assert.Zero(t, moved)
	})

	t.Run("bad source slot", func(t *testing.T) {
		_, err := Move(NewInventory(1), 5, NewInventory(1), 1)
		errutil.AssertErrorCode(t, err, CodeNoSuchSlot)
	})
}
