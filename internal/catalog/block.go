// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package catalog

import (
	"context"

	"github.com/holomush/periscope/internal/method"
	"github.com/holomush/periscope/internal/world"
)

func registerBlock(r *method.Registry) error {
	return method.Register(r, method.Descriptor{
		Name: "getBlockInfo", Module: ModuleBlock, WorldThread: true, Cost: 1,
		Doc: "Kind, name, id and position of this block.",
	}, func(_ context.Context, call *method.Call[*world.Block]) ([]any, error) {
		b := call.Target
		return []any{map[any]any{
			"kind": b.Kind,
			"name": b.Name,
			"id":   b.ID.String(),
			"x":    b.Pos.X,
			"y":    b.Pos.Y,
			"z":    b.Pos.Z,
		}}, nil
	})
}
