// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package world

import (
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/periscope/pkg/errutil"
)

func TestWorld_PlaceBlock(t *testing.T) {
	w := New()
	pos := Pos{X: 1, Y: 64, Z: -3}

	chest, err := w.PlaceBlock(pos, BlockSpec{Kind: "minecraft:chest", Slots: 27})
	require.NoError(t, err)
	assert.Equal(t, "minecraft:chest", chest.Name, "name defaults to kind")
	require.NotNil(t, chest.Inventory)
	assert.Equal(t, 27, chest.Inventory.Size())
	assert.NotEqual(t, ulid.ULID{}, chest.ID)

	got, ok := w.BlockAt(pos)
	require.True(t, ok)
	assert.Same(t, chest, got)

	_, err = w.PlaceBlock(pos, BlockSpec{Kind: "stone"})
	errutil.AssertErrorCode(t, err, CodePositionOccupied)

	stone, err := w.PlaceBlock(Pos{}, BlockSpec{Kind: "stone", Name: "Rock"})
	require.NoError(t, err)
	assert.Nil(t, stone.Items())
}

func TestWorld_PlaceBlockValidates(t *testing.T) {
	w := New()

	_, err := w.PlaceBlock(Pos{}, BlockSpec{Kind: "not a kind"})
	errutil.AssertErrorCode(t, err, CodeInvalidEntity)
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)

	_, err = w.PlaceBlock(Pos{}, BlockSpec{Kind: "chest", Slots: MaxSlots + 1})
	errutil.AssertErrorCode(t, err, CodeInvalidEntity)
}

func TestWorld_RemoveAndReplace(t *testing.T) {
	w := New()
	pos := Pos{X: 2}
	first, err := w.PlaceBlock(pos, BlockSpec{Kind: "chest", Slots: 1})
	require.NoError(t, err)

	second, err := w.ReplaceBlock(pos, BlockSpec{Kind: "chest", Slots: 1})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	removed, err := w.RemoveBlock(pos)
	require.NoError(t, err)
	assert.Same(t, second, removed)

	_, err = w.RemoveBlock(pos)
	errutil.AssertErrorCode(t, err, CodeNoBlock)
}

func TestWorld_BlocksAreOrdered(t *testing.T) {
	w := New()
	for _, p := range []Pos{{X: 2}, {X: 0, Y: 1}, {X: 0}, {X: 1, Z: -1}} {
		_, err := w.PlaceBlock(p, BlockSpec{Kind: "stone"})
		require.NoError(t, err)
	}

	var got []Pos
	for _, b := range w.Blocks() {
		got = append(got, b.Pos)
	}
	assert.Equal(t, []Pos{{X: 0}, {X: 0, Y: 1}, {X: 1, Z: -1}, {X: 2}}, got)
}

func TestWorld_Players(t *testing.T) {
	w := New()

	p, err := w.AddPlayer("Steve", 36)
	require.NoError(t, err)
	assert.Equal(t, 36, p.Items().Size())

	got, ok := w.Player(p.ID)
	require.True(t, ok)
	assert.Same(t, p, got)

	require.NoError(t, w.RemovePlayer(p.ID))
	_, ok = w.Player(p.ID)
	assert.False(t, ok)

	err = w.RemovePlayer(p.ID)
	errutil.AssertErrorCode(t, err, CodeNoPlayer)

	_, err = w.AddPlayer("", 1)
	errutil.AssertErrorCode(t, err, CodeInvalidEntity)
}
