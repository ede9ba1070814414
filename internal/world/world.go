// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package world is an in-memory block world: blocks at integer positions,
// some holding inventories, and players carrying their own inventories.
//
// Entities are live objects owned by the world goroutine. Scripts never
// hold them directly; they hold references (see BlockRef, PlayerRef and
// SlotRef) that are re-resolved on every call.
package world

import (
	"cmp"
	"fmt"
	"slices"
	"sync"

	"github.com/oklog/ulid/v2"
)

// Pos is a block position.
type Pos struct {
	X, Y, Z int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d,%d,%d", p.X, p.Y, p.Z)
}

// Add returns p offset by d.
func (p Pos) Add(d Pos) Pos {
	return Pos{X: p.X + d.X, Y: p.Y + d.Y, Z: p.Z + d.Z}
}

// Block is a placed block. Each placement gets a fresh ID, so a block
// removed and placed again at the same position is a different entity.
type Block struct {
	ID        ulid.ULID
	Kind      string
	Name      string
	Pos       Pos
	Inventory *Inventory
}

// Items implements Container. Nil for blocks without an inventory.
func (b *Block) Items() *Inventory {
	return b.Inventory
}

// Player is a connected player.
type Player struct {
	ID        ulid.ULID
	Name      string
	Inventory *Inventory
}

// Items implements Container.
func (p *Player) Items() *Inventory {
	return p.Inventory
}

// BlockSpec describes a block to place.
type BlockSpec struct {
	Kind  string
	Name  string
	Slots int
}

// World holds every live entity.
type World struct {
	mu      sync.RWMutex
	blocks  map[Pos]*Block
	players map[ulid.ULID]*Player
}

// New creates an empty world.
func New() *World {
	return &World{
		blocks:  make(map[Pos]*Block),
		players: make(map[ulid.ULID]*Player),
	}
}

// PlaceBlock places a new block at pos. Blocks with Slots > 0 get an
// inventory.
func (w *World) PlaceBlock(pos Pos, spec BlockSpec) (*Block, error) {
	if err := ValidateKind("kind", spec.Kind); err != nil {
		return nil, errInvalid(err)
	}
	name := spec.Name
	if name == "" {
		name = spec.Kind
	}
	if err := ValidateName(name); err != nil {
		return nil, errInvalid(err)
	}
	if err := ValidateSlots(spec.Slots); err != nil {
		return nil, errInvalid(err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.blocks[pos]; ok {
		return nil, ErrPositionOccupied(pos)
	}
	b := &Block{ID: ulid.Make(), Kind: spec.Kind, Name: name, Pos: pos}
	if spec.Slots > 0 {
		b.Inventory = NewInventory(spec.Slots)
	}
	w.blocks[pos] = b
	return b, nil
}

// RemoveBlock removes the block at pos and returns it.
func (w *World) RemoveBlock(pos Pos) (*Block, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	b, ok := w.blocks[pos]
	if !ok {
		return nil, ErrNoBlock(pos)
	}
	delete(w.blocks, pos)
	return b, nil
}

// ReplaceBlock removes whatever is at pos and places spec there.
func (w *World) ReplaceBlock(pos Pos, spec BlockSpec) (*Block, error) {
	w.mu.Lock()
	delete(w.blocks, pos)
	w.mu.Unlock()
	return w.PlaceBlock(pos, spec)
}

// BlockAt returns the block at pos.
func (w *World) BlockAt(pos Pos) (*Block, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	b, ok := w.blocks[pos]
	return b, ok
}

// Blocks returns every block ordered by position.
func (w *World) Blocks() []*Block {
	w.mu.RLock()
	out := make([]*Block, 0, len(w.blocks))
	for _, b := range w.blocks {
		out = append(out, b)
	}
	w.mu.RUnlock()

	slices.SortFunc(out, func(a, b *Block) int {
		return cmp.Or(cmp.Compare(a.Pos.X, b.Pos.X), cmp.Compare(a.Pos.Y, b.Pos.Y), cmp.Compare(a.Pos.Z, b.Pos.Z))
	})
	return out
}

// AddPlayer adds a player carrying an inventory of slots slots.
func (w *World) AddPlayer(name string, slots int) (*Player, error) {
	if err := ValidateName(name); err != nil {
		return nil, errInvalid(err)
	}
	if err := ValidateSlots(slots); err != nil {
		return nil, errInvalid(err)
	}

	p := &Player{ID: ulid.Make(), Name: name, Inventory: NewInventory(slots)}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.players[p.ID] = p
	return p, nil
}

// RemovePlayer disconnects a player.
func (w *World) RemovePlayer(id ulid.ULID) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.players[id]; !ok {
		return ErrNoPlayer(id)
	}
	delete(w.players, id)
	return nil
}

// Player returns the player with id.
func (w *World) Player(id ulid.ULID) (*Player, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	p, ok := w.players[id]
	return p, ok
}
