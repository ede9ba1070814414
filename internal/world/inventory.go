// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package world

import "strconv"

// Stack is an amount of a single item.
type Stack struct {
	Item  string
	Count int
}

// Empty reports whether the stack holds nothing.
func (s Stack) Empty() bool {
	return s.Count <= 0
}

// Sink accepts items moved by a transfer.
type Sink interface {
	// Insert stores up to count items and returns how many were accepted.
	Insert(item string, count int) int
}

// Container is anything holding an inventory.
type Container interface {
	Items() *Inventory
}

// Inventory is a fixed number of slots, indexed from 1. Like every world
// entity it must only be touched on the world goroutine.
type Inventory struct {
	slots []Stack
}

// NewInventory creates an inventory with n empty slots.
func NewInventory(n int) *Inventory {
	return &Inventory{slots: make([]Stack, n)}
}

// Size returns the number of slots.
func (inv *Inventory) Size() int {
	return len(inv.slots)
}

// Stack returns the content of slot index.
func (inv *Inventory) Stack(index int) (Stack, bool) {
	if index < 1 || index > len(inv.slots) {
		return Stack{}, false
	}
	return inv.slots[index-1], true
}

// Set replaces the content of slot index.
func (inv *Inventory) Set(index int, s Stack) error {
	if index < 1 || index > len(inv.slots) {
		return ErrNoSuchSlot(index, len(inv.slots))
	}
	if err := ValidateStack(s); err != nil {
		return errInvalid(err)
	}
	if s.Empty() {
		s = Stack{}
	}
	inv.slots[index-1] = s
	return nil
}

// List returns every non-empty slot keyed by index.
func (inv *Inventory) List() map[int]Stack {
	out := make(map[int]Stack)
	for i, s := range inv.slots {
		if !s.Empty() {
			out[i+1] = s
		}
	}
	return out
}

// Slot returns a handle on slot index.
func (inv *Inventory) Slot(index int) (Slot, bool) {
	if index < 1 || index > len(inv.slots) {
		return Slot{}, false
	}
	return Slot{inv: inv, index: index}, true
}

// Insert tops up stacks of the same item first, then fills empty slots.
func (inv *Inventory) Insert(item string, count int) int {
	accepted := 0
	for pass := 0; pass < 2 && accepted < count; pass++ {
		for i := range inv.slots {
			if accepted == count {
				break
			}
			s := &inv.slots[i]
			merge := pass == 0 && !s.Empty() && s.Item == item
			fill := pass == 1 && s.Empty()
			if !merge && !fill {
				continue
			}
			n := min(MaxStackSize-s.Count, count-accepted)
			if n <= 0 {
				continue
			}
			s.Item = item
			s.Count += n
			accepted += n
		}
	}
	return accepted
}

// take removes up to limit items from slot index.
func (inv *Inventory) take(index, limit int) Stack {
	s := &inv.slots[index-1]
	n := min(s.Count, limit)
	taken := Stack{Item: s.Item, Count: n}
	s.Count -= n
	if s.Count == 0 {
		*s = Stack{}
	}
	return taken
}

// put returns items to slot index after a partially accepted move.
func (inv *Inventory) put(index int, s Stack) {
	slot := &inv.slots[index-1]
	if slot.Empty() {
		*slot = s
		return
	}
	slot.Count += s.Count
}

// Slot is a handle on one slot of an inventory. Slots are comparable values.
type Slot struct {
	inv   *Inventory
	index int
}

// Index returns the 1-based slot index.
func (s Slot) Index() int {
	return s.index
}

// Inventory returns the owning inventory.
func (s Slot) Inventory() *Inventory {
	return s.inv
}

// Stack returns the slot's current content.
func (s Slot) Stack() Stack {
	st, _ := s.inv.Stack(s.index)
	return st
}

// Insert adds items to this slot only.
func (s Slot) Insert(item string, count int) int {
	st := &s.inv.slots[s.index-1]
	if !st.Empty() && st.Item != item {
		return 0
	}
	n := min(MaxStackSize-st.Count, count)
	if n <= 0 {
		return 0
	}
	st.Item = item
	st.Count += n
	return n
}

func (s Slot) String() string {
	return "slot " + strconv.Itoa(s.index)
}

// Move moves up to limit items from slot from of src into dst. Items dst
// does not accept stay in src.
func Move(src *Inventory, from int, dst Sink, limit int) (int, error) {
	if from < 1 || from > src.Size() {
		return 0, ErrNoSuchSlot(from, src.Size())
	}
	if limit <= 0 {
		return 0, nil
	}
	if s, ok := dst.(Slot); ok && s.inv == src && s.index == from {
		return 0, nil
	}

	taken := src.take(from, limit)
	if taken.Empty() {
		return 0, nil
	}
	moved := dst.Insert(taken.Item, taken.Count)
	if rest := taken.Count - moved; rest > 0 {
		src.put(from, Stack{Item: taken.Item, Count: rest})
	}
	return moved, nil
}
