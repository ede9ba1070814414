// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package catalog

import (
	"context"

	"github.com/holomush/periscope/internal/method"
	"github.com/holomush/periscope/internal/world"
)

func registerPlayer(r *method.Registry) error {
	if err := method.Register(r, method.Descriptor{
		Name: "getName", Module: ModulePlayer, Cost: 1,
		Doc: "This player's name.",
	}, func(_ context.Context, call *method.Call[*world.Player]) ([]any, error) {
		return []any{call.Target.Name}, nil
	}); err != nil {
		return err
	}

	// Visible on any target reached through a player.
	return method.Register(r, method.Descriptor{
		Name: "getOwner", Module: ModulePlayer, WorldThread: true, Cost: 1,
		Doc:    "Name of the player this handle was obtained through.",
		Params: []method.Param{method.FromContext[*world.Player]("owner")},
	}, func(_ context.Context, call *method.Call[any]) ([]any, error) {
		owner, _ := call.Args.Value("owner")
		p, _ := owner.(*world.Player)
		return []any{p.Name}, nil
	})
}
