// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package world

import (
	"strconv"

	"github.com/holomush/periscope/internal/transfer"
)

// Transfer keys exposed by world entities.
const (
	KeySelf      = "self"
	KeyInventory = "inventory"
)

// Directions maps side names to position offsets.
var Directions = map[string]Pos{
	"north": {Z: -1},
	"south": {Z: 1},
	"east":  {X: 1},
	"west":  {X: -1},
	"up":    {Y: 1},
	"down":  {Y: -1},
}

var directionOrder = []string{"north", "south", "east", "west", "up", "down"}

// RegisterTransfers adds the world's transfer providers to r:
//
//   - a block with an inventory exposes it as "self", and the inventory of
//     every neighbouring container block by side name ("north", "up", ...)
//   - a player exposes their inventory as "inventory"
//   - an inventory narrows to one of its slots by number ("self.3")
func (w *World) RegisterTransfers(r *transfer.Registry) {
	r.Register(transfer.Typed[*Block]{
		Primary: w.blockPart,
		List:    w.blockKeys,
	})
	r.Register(transfer.Typed[*Player]{
		Primary: func(p *Player, key string) (any, bool) {
			if key != KeyInventory || p.Inventory == nil {
				return nil, false
			}
			return p.Inventory, true
		},
		List: func(p *Player) []string {
			if p.Inventory == nil {
				return nil
			}
			return []string{KeyInventory}
		},
	})
	r.Register(transfer.Typed[*Inventory]{
		Secondary: func(inv *Inventory, key string) (any, bool) {
			n, err := strconv.Atoi(key)
			if err != nil {
				return nil, false
			}
			s, ok := inv.Slot(n)
			return s, ok
		},
	})
}

func (w *World) blockPart(b *Block, key string) (any, bool) {
	if key == KeySelf {
		if b.Inventory == nil {
			return nil, false
		}
		return b.Inventory, true
	}
	offset, ok := Directions[key]
	if !ok {
		return nil, false
	}
	neighbour, ok := w.BlockAt(b.Pos.Add(offset))
	if !ok || neighbour.Inventory == nil {
		return nil, false
	}
	return neighbour.Inventory, true
}

func (w *World) blockKeys(b *Block) []string {
	var keys []string
	if b.Inventory != nil {
		keys = append(keys, KeySelf)
	}
	for _, side := range directionOrder {
		if n, ok := w.BlockAt(b.Pos.Add(Directions[side])); ok && n.Inventory != nil {
			keys = append(keys, side)
		}
	}
	return keys
}
