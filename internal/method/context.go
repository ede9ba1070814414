// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package method

import (
	"slices"
	"strings"

	"github.com/holomush/periscope/internal/cost"
	"github.com/holomush/periscope/internal/reference"
)

// Baked is a resolved context: a live target plus live ambient objects.
// Implemented by *Context and *Detached only.
type Baked interface {
	// Target returns the live target. Never nil.
	Target() any

	// Ambient returns a copy of the ambient objects, oldest first. The
	// target is never part of it.
	Ambient() []any

	// CostHandler returns the handler shared by the whole family.
	CostHandler() *cost.Handler

	// MakeBakedChild derives a detached context targeting target.
	MakeBakedChild(target any, extra ...any) *Detached

	// ResolveTransferEndpoint resolves a dotted transfer path.
	ResolveTransferEndpoint(path string) (any, bool)

	// TransferEndpointKeys lists the primary transfer keys reachable from
	// the context, sorted and without duplicates.
	TransferEndpointKeys() []string

	view() *baked
}

type baked struct {
	rt      *Runtime
	handler *cost.Handler
	target  any
	ambient []any
}

func (b *baked) view() *baked {
	return b
}

// Target implements Baked.
func (b *baked) Target() any {
	return b.target
}

// Ambient implements Baked.
func (b *baked) Ambient() []any {
	return slices.Clone(b.ambient)
}

// CostHandler implements Baked.
func (b *baked) CostHandler() *cost.Handler {
	return b.handler
}

// MakeBakedChild builds the child's ambient list as extra, then this
// context's ambient list, then this context's target. Lookups scan from the
// end, so the former target is found first and the caller's extras last.
// The child has no durable lineage.
func (b *baked) MakeBakedChild(target any, extra ...any) *Detached {
	ambient := make([]any, 0, len(extra)+len(b.ambient)+1)
	ambient = append(ambient, extra...)
	ambient = append(ambient, b.ambient...)
	ambient = append(ambient, b.target)

	return &Detached{baked: baked{
		rt:      b.rt,
		handler: b.handler,
		target:  target,
		ambient: ambient,
	}}
}

// ResolveTransferEndpoint splits path on '.', resolves the first segment as
// a primary part of the target or, failing that, of the nearest ambient
// object exposing it, then narrows through each remaining segment. A
// path "x.y" therefore always narrows the part reachable as "x".
func (b *baked) ResolveTransferEndpoint(path string) (any, bool) {
	if b.rt == nil {
		return nil, false
	}
	registry := b.rt.transfers
	segments := strings.Split(path, ".")
	// Trailing separators are ignored, so "self." names "self".
	for len(segments) > 1 && segments[len(segments)-1] == "" {
		segments = segments[:len(segments)-1]
	}

	found, ok := registry.Part(b.target, segments[0], false)
	for i := len(b.ambient) - 1; !ok && i >= 0; i-- {
		found, ok = registry.Part(b.ambient[i], segments[0], false)
	}
	if !ok {
		return nil, false
	}

	for _, segment := range segments[1:] {
		found, ok = registry.Part(found, segment, true)
		if !ok {
			return nil, false
		}
	}
	return found, true
}

// TransferEndpointKeys implements Baked.
func (b *baked) TransferEndpointKeys() []string {
	if b.rt == nil {
		return []string{}
	}
	seen := make(map[string]struct{})
	for _, k := range b.rt.transfers.Keys(b.target) {
		seen[k] = struct{}{}
	}
	for i := len(b.ambient) - 1; i >= 0; i-- {
		for _, k := range b.rt.transfers.Keys(b.ambient[i]) {
			seen[k] = struct{}{}
		}
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Context is a baked context that remembers the Unbaked it came from, so it
// can derive further durable children and build capability objects.
type Context struct {
	baked
	parent *Unbaked
}

// Unbaked returns the durable description this context was baked from.
func (c *Context) Unbaked() *Unbaked {
	return c.parent
}

// MakeChild derives a durable child context targeting target.
func (c *Context) MakeChild(target reference.Any, extra ...reference.Any) *Unbaked {
	return c.parent.MakeChild(target, extra...)
}

// WithContext derives a durable context with extra ambient references.
func (c *Context) WithContext(extra ...reference.Any) *Unbaked {
	return c.parent.WithContext(extra...)
}

// CapabilityObject pairs this context with every method visible from its
// target and ambient chain.
func (c *Context) CapabilityObject() *Object {
	return c.rt.methods.objectFor(c)
}

// Detached is a baked context built directly from live objects. Having no
// durable lineage, it can only derive further detached children.
type Detached struct {
	baked
}

// Lineage returns c as a *Context, failing with NOT_FULLY_FLESHED when c is
// detached. Use it where only a Baked is at hand and a durable child or a
// capability object is needed.
func Lineage(c Baked) (*Context, error) {
	if full, ok := c.(*Context); ok && full.parent != nil {
		return full, nil
	}
	return nil, ErrNotFullyFleshed("lineage")
}

// Lookup returns the most recently added ambient object assignable to V.
// The target is never considered.
func Lookup[V any](c Baked) (V, bool) {
	ambient := c.view().ambient
	for i := len(ambient) - 1; i >= 0; i-- {
		if v, ok := ambient[i].(V); ok {
			return v, true
		}
	}
	var zero V
	return zero, false
}

// Has reports whether any ambient object is assignable to V.
func Has[V any](c Baked) bool {
	_, ok := Lookup[V](c)
	return ok
}

// TargetAs returns the target as a T.
func TargetAs[T any](c Baked) (T, bool) {
	v, ok := c.Target().(T)
	return v, ok
}
