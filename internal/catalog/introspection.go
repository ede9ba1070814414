// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package catalog

import (
	"context"

	"github.com/holomush/periscope/internal/method"
)

func registerIntrospection(r *method.Registry) error {
	if err := method.Register(r, method.Descriptor{
		Name: "listTransferKeys", Module: ModuleIntrospection, WorldThread: true,
		Doc: "Transfer endpoint names reachable from this handle, sorted.",
	}, func(_ context.Context, call *method.Call[any]) ([]any, error) {
		return []any{stringList(call.Context.TransferEndpointKeys())}, nil
	}); err != nil {
		return err
	}

	if err := method.Register(r, method.Descriptor{
		Name: "getIntegrations", Module: ModuleIntrospection,
		Doc: "Installed integrations and their versions.",
	}, func(_ context.Context, _ *method.Call[any]) ([]any, error) {
		out := make(map[any]any)
		for mod, version := range r.Installed() {
			out[mod] = version
		}
		return []any{out}, nil
	}); err != nil {
		return err
	}

	return method.Register(r, method.Descriptor{
		Name: "getDocs", Module: ModuleIntrospection,
		Doc:    "Documentation of every method on this handle, keyed by name, or of a single method.",
		Params: []method.Param{method.OptionalArg("name", method.KindString)},
	}, func(_ context.Context, call *method.Call[any]) ([]any, error) {
		obj := call.Context.CapabilityObject()
		if name, ok := call.Args.Value("name"); ok {
			d, found := obj.Descriptor(name.(string))
			if !found {
				return []any{nil}, nil
			}
			return []any{d.Signature() + ": " + d.Doc}, nil
		}
		out := make(map[any]any)
		for _, name := range obj.Methods() {
			d, _ := obj.Descriptor(name)
			out[name] = d.Signature() + ": " + d.Doc
		}
		return []any{out}, nil
	})
}

// stringList converts keys into a 1-indexed table.
func stringList(keys []string) map[any]any {
	out := make(map[any]any, len(keys))
	for i, k := range keys {
		out[i+1] = k
	}
	return out
}
