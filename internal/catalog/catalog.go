// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package catalog registers the built-in capability methods over the world.
package catalog

import (
	"github.com/holomush/periscope/internal/method"
)

// Capability modules.
const (
	ModuleInventory     = "inventory"
	ModuleSlot          = "slot"
	ModuleBlock         = "block"
	ModulePlayer        = "player"
	ModuleIntrospection = "introspection"
)

// ModSorting is the optional integration providing inventory.condense.
const ModSorting = "sorting"

type registration func(r *method.Registry) error

// Register adds every catalog method to r. Integrations must be installed
// on r before calling it.
func Register(r *method.Registry) error {
	for _, reg := range []registration{
		registerInventory,
		registerSlot,
		registerBlock,
		registerPlayer,
		registerIntrospection,
	} {
		if err := reg(r); err != nil {
			return err
		}
	}
	return nil
}
