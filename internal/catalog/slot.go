// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package catalog

import (
	"context"

	"github.com/holomush/periscope/internal/method"
	"github.com/holomush/periscope/internal/world"
)

func registerSlot(r *method.Registry) error {
	if err := method.Register(r, method.Descriptor{
		Name: "count", Module: ModuleSlot, WorldThread: true, Cost: 1,
		Doc: "Number of items in this slot.",
	}, func(_ context.Context, call *method.Call[world.Slot]) ([]any, error) {
		return []any{call.Target.Stack().Count}, nil
	}); err != nil {
		return err
	}

	return method.Register(r, method.Descriptor{
		Name: "item", Module: ModuleSlot, WorldThread: true, Cost: 1,
		Doc: "The {name, count} of this slot's stack, or nil when empty.",
	}, func(_ context.Context, call *method.Call[world.Slot]) ([]any, error) {
		st := call.Target.Stack()
		if st.Empty() {
			return []any{nil}, nil
		}
		return []any{stackTable(st)}, nil
	})
}
