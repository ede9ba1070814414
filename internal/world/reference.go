// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package world

import (
	"context"
	"fmt"

	"github.com/oklog/ulid/v2"

	"github.com/holomush/periscope/internal/reference"
)

// BlockRef locates a block by position and expected identity.
type BlockRef struct {
	world *World
	Pos   Pos
	Kind  string
	// ID is the expected block. When zero any block of Kind at Pos is
	// accepted, so the reference survives the block being replaced.
	ID ulid.ULID
}

// RefBlock returns a reference to exactly b.
func (w *World) RefBlock(b *Block) BlockRef {
	return BlockRef{world: w, Pos: b.Pos, Kind: b.Kind, ID: b.ID}
}

// SameKind returns a copy of r that accepts any block of the same kind.
func (r BlockRef) SameKind() BlockRef {
	r.ID = ulid.ULID{}
	return r
}

// Resolve returns the live block. It fails with reference.ErrGone when the
// position is empty and reference.ErrReplaced when another block is there.
func (r BlockRef) Resolve(_ context.Context) (*Block, error) {
	b, ok := r.world.BlockAt(r.Pos)
	if !ok {
		return nil, reference.Gone(r.Locator())
	}
	if b.Kind != r.Kind {
		return nil, reference.Replaced(r.Locator(), r.Kind, b.Kind)
	}
	if r.ID != (ulid.ULID{}) && b.ID != r.ID {
		return nil, reference.Replaced(r.Locator(), r.ID, b.ID)
	}
	return b, nil
}

// Locator implements reference.Reference.
func (r BlockRef) Locator() string {
	return fmt.Sprintf("block(%s)@%s", r.Kind, r.Pos)
}

// PlayerRef locates a connected player.
type PlayerRef struct {
	world *World
	ID    ulid.ULID
	Name  string
}

// RefPlayer returns a reference to p.
func (w *World) RefPlayer(p *Player) PlayerRef {
	return PlayerRef{world: w, ID: p.ID, Name: p.Name}
}

// Resolve returns the live player, failing with reference.ErrGone once the
// player has left.
func (r PlayerRef) Resolve(_ context.Context) (*Player, error) {
	p, ok := r.world.Player(r.ID)
	if !ok {
		return nil, reference.Gone(r.Locator())
	}
	return p, nil
}

// Locator implements reference.Reference.
func (r PlayerRef) Locator() string {
	return "player(" + r.Name + ")"
}

// SlotRef locates one slot of a container's inventory.
type SlotRef struct {
	Owner reference.Any
	Index int
}

// Resolve resolves the owner and returns a handle on the slot. Owner
// failures are returned unchanged.
func (r SlotRef) Resolve(ctx context.Context) (Slot, error) {
	owner, err := r.Owner.Resolve(ctx)
	if err != nil {
		return Slot{}, err //nolint:wrapcheck // already a coded resolution error
	}
	c, ok := owner.(Container)
	if !ok || c.Items() == nil {
		return Slot{}, reference.Gone(r.Locator())
	}
	s, ok := c.Items().Slot(r.Index)
	if !ok {
		return Slot{}, reference.Gone(r.Locator())
	}
	return s, nil
}

// Locator implements reference.Reference.
func (r SlotRef) Locator() string {
	return fmt.Sprintf("%s#%d", r.Owner.Locator(), r.Index)
}
