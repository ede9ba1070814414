// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package catalog

import (
	"context"
	"slices"

	"github.com/holomush/periscope/internal/method"
	"github.com/holomush/periscope/internal/reference"
	"github.com/holomush/periscope/internal/world"
)

func registerInventory(r *method.Registry) error {
	descs := []struct {
		desc method.Descriptor
		fn   method.Func[world.Container]
	}{
		{
			desc: method.Descriptor{
				Name: "size", Module: ModuleInventory, WorldThread: true, Cost: 1,
				Doc: "Number of slots in this inventory.",
			},
			fn: size,
		},
		{
			desc: method.Descriptor{
				Name: "list", Module: ModuleInventory, WorldThread: true, Cost: 1,
				Doc: "Non-empty slots as a table of {name, count} keyed by slot.",
			},
			fn: list,
		},
		{
			desc: method.Descriptor{
				Name: "getItem", Module: ModuleInventory, WorldThread: true, Cost: 1,
				Doc:    "Handle on one slot, or nil when the slot is empty.",
				Params: []method.Param{method.Arg("slot", method.KindInt)},
			},
			fn: getItem,
		},
		{
			desc: method.Descriptor{
				Name: "pushItems", Module: ModuleInventory, WorldThread: true, Cost: 1,
				Doc: "Move items from a slot of this inventory to the endpoint at path. Returns the number moved.",
				Params: []method.Param{
					method.Arg("toName", method.KindString),
					method.Arg("fromSlot", method.KindInt),
					method.OptionalArg("limit", method.KindInt),
				},
			},
			fn: pushItems,
		},
		{
			desc: method.Descriptor{
				Name: "pullItems", Module: ModuleInventory, WorldThread: true, Cost: 1,
				Doc: "Move items from a slot of the inventory at path into this inventory. Returns the number moved.",
				Params: []method.Param{
					method.Arg("fromName", method.KindString),
					method.Arg("fromSlot", method.KindInt),
					method.OptionalArg("limit", method.KindInt),
				},
			},
			fn: pullItems,
		},
		{
			desc: method.Descriptor{
				Name: "condense", Module: ModuleInventory, WorldThread: true, Cost: 2,
				Mod: ModSorting, Requires: ">= 1.0.0",
				Doc: "Merge partial stacks and sort the inventory by item.",
			},
			fn: condense,
		},
	}

	for _, d := range descs {
		if err := method.Register(r, d.desc, d.fn); err != nil {
			return err
		}
	}
	return nil
}

func items(c world.Container) (*world.Inventory, error) {
	inv := c.Items()
	if inv == nil {
		return nil, ErrNoInventory()
	}
	return inv, nil
}

func size(_ context.Context, call *method.Call[world.Container]) ([]any, error) {
	inv, err := items(call.Target)
	if err != nil {
		return nil, err
	}
	return []any{inv.Size()}, nil
}

func list(_ context.Context, call *method.Call[world.Container]) ([]any, error) {
	inv, err := items(call.Target)
	if err != nil {
		return nil, err
	}
	out := make(map[any]any)
	for slot, st := range inv.List() {
		out[slot] = stackTable(st)
	}
	return []any{out}, nil
}

func getItem(ctx context.Context, call *method.Call[world.Container]) ([]any, error) {
	inv, err := items(call.Target)
	if err != nil {
		return nil, err
	}
	index := int(call.Args.Int(0))
	st, ok := inv.Stack(index)
	if !ok {
		return nil, world.ErrNoSuchSlot(index, inv.Size())
	}
	if st.Empty() {
		return []any{nil}, nil
	}

	owner := call.Context.Unbaked().Target()
	child := call.Context.MakeChild(reference.Erase[world.Slot](world.SlotRef{Owner: owner, Index: index}))
	obj, err := child.Object(ctx)
	if err != nil {
		return nil, err
	}
	return []any{obj}, nil
}

func pushItems(_ context.Context, call *method.Call[world.Container]) ([]any, error) {
	inv, err := items(call.Target)
	if err != nil {
		return nil, err
	}
	path := call.Args.String(0)
	endpoint, ok := call.Context.ResolveTransferEndpoint(path)
	if !ok {
		return nil, ErrNoEndpoint(path)
	}
	sink, ok := endpoint.(world.Sink)
	if !ok {
		return nil, ErrEndpointMismatch(path, "destination")
	}

	moved, err := world.Move(inv, int(call.Args.Int(1)), sink, int(call.Args.IntOr(2, world.MaxStackSize)))
	if err != nil {
		return nil, err
	}
	return []any{moved}, nil
}

func pullItems(_ context.Context, call *method.Call[world.Container]) ([]any, error) {
	inv, err := items(call.Target)
	if err != nil {
		return nil, err
	}
	path := call.Args.String(0)
	endpoint, ok := call.Context.ResolveTransferEndpoint(path)
	if !ok {
		return nil, ErrNoEndpoint(path)
	}
	src, ok := endpoint.(*world.Inventory)
	if !ok {
		return nil, ErrEndpointMismatch(path, "source inventory")
	}

	moved, err := world.Move(src, int(call.Args.Int(1)), inv, int(call.Args.IntOr(2, world.MaxStackSize)))
	if err != nil {
		return nil, err
	}
	return []any{moved}, nil
}

func condense(_ context.Context, call *method.Call[world.Container]) ([]any, error) {
	inv, err := items(call.Target)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]int)
	for slot, st := range inv.List() {
		totals[st.Item] += st.Count
		if err := inv.Set(slot, world.Stack{}); err != nil {
			return nil, err
		}
	}
	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		// Everything came out of this inventory, so it all fits back in.
		inv.Insert(name, totals[name])
	}
	return []any{len(inv.List())}, nil
}

func stackTable(st world.Stack) map[any]any {
	return map[any]any{"name": st.Item, "count": st.Count}
}
