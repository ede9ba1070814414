// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package world

import (
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Error codes for world mutations.
const (
	CodePositionOccupied = "POSITION_OCCUPIED"
	CodeNoBlock          = "NO_BLOCK"
	CodeNoPlayer         = "NO_PLAYER"
	CodeNoSuchSlot       = "NO_SUCH_SLOT"
	CodeInvalidEntity    = "INVALID_ENTITY"
)

// ErrPositionOccupied is returned when placing a block onto another block.
func ErrPositionOccupied(pos Pos) error {
	return oops.Code(CodePositionOccupied).
		With("pos", pos.String()).
		Errorf("position %s is occupied", pos)
}

// ErrNoBlock is returned when no block exists at pos.
func ErrNoBlock(pos Pos) error {
	return oops.Code(CodeNoBlock).
		With("pos", pos.String()).
		Errorf("no block at %s", pos)
}

// ErrNoPlayer is returned for an unknown player id.
func ErrNoPlayer(id ulid.ULID) error {
	return oops.Code(CodeNoPlayer).
		With("player_id", id.String()).
		Errorf("no player %s", id)
}

// ErrNoSuchSlot is returned for a slot index outside the inventory.
func ErrNoSuchSlot(index, size int) error {
	return oops.Code(CodeNoSuchSlot).
		With("slot", index).
		With("size", size).
		Errorf("slot %d out of range (1-%d)", index, size)
}

func errInvalid(err error) error {
	return oops.Code(CodeInvalidEntity).Wrap(err)
}
