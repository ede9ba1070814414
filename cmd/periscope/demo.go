// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"github.com/holomush/periscope/internal/reference"
	"github.com/holomush/periscope/internal/world"
)

// demo is the world scripts run against from the CLI: a player standing
// at a chest with a hopper below it and a furnace to the east.
type demo struct {
	player *world.Player
	chest  *world.Block
}

func seedDemo(w *world.World) (*demo, error) {
	player, err := w.AddPlayer("Steve", 9)
	if err != nil {
		return nil, err
	}
	chest, err := w.PlaceBlock(world.Pos{}, world.BlockSpec{Kind: "chest", Name: "Storage", Slots: 9})
	if err != nil {
		return nil, err
	}
	if _, err := w.PlaceBlock(world.Pos{Y: -1}, world.BlockSpec{Kind: "hopper", Slots: 5}); err != nil {
		return nil, err
	}
	if _, err := w.PlaceBlock(world.Pos{X: 1}, world.BlockSpec{Kind: "furnace", Slots: 3}); err != nil {
		return nil, err
	}

	for i, st := range []world.Stack{
		{Item: "cobblestone", Count: 32},
		{Item: "coal", Count: 8},
		{},
		{Item: "cobblestone", Count: 16},
		{Item: "iron_ore", Count: 5},
	} {
		if err := chest.Inventory.Set(i+1, st); err != nil {
			return nil, err
		}
	}
	if err := player.Inventory.Set(1, world.Stack{Item: "torch", Count: 12}); err != nil {
		return nil, err
	}
	return &demo{player: player, chest: chest}, nil
}

// root is the chest as reached by the player.
func (d *demo) root(w *world.World) (reference.Any, []reference.Any) {
	return reference.Erase[*world.Block](w.RefBlock(d.chest)),
		[]reference.Any{reference.Erase[*world.Player](w.RefPlayer(d.player))}
}
