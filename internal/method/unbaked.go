// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package method

import (
	"context"

	"github.com/holomush/periscope/internal/cost"
	"github.com/holomush/periscope/internal/reference"
)

// Unbaked is an immutable, durable description of a context: a reference to
// the target plus the ordered chain of ambient references, oldest first.
// It may be held across ticks and baked any number of times.
type Unbaked struct {
	rt      *Runtime
	handler *cost.Handler
	target  reference.Any
	chain   []reference.Any
}

// Bake resolves the target and then every chain entry in order, stopping at
// the first failure. It must only be called on the world goroutine.
func (u *Unbaked) Bake(ctx context.Context) (*Context, error) {
	target, err := u.target.Resolve(ctx)
	if err != nil {
		return nil, ErrLinkFailed("target", u.target.Locator(), err)
	}

	ambient := make([]any, len(u.chain))
	for i, ref := range u.chain {
		obj, err := ref.Resolve(ctx)
		if err != nil {
			return nil, ErrLinkFailed(i, ref.Locator(), err)
		}
		ambient[i] = obj
	}

	return &Context{
		baked: baked{
			rt:      u.rt,
			handler: u.handler,
			target:  target,
			ambient: ambient,
		},
		parent: u,
	}, nil
}

// MakeChild derives a context targeting target. The child's chain is this
// chain, then extra, then this context's own target reference, so the
// immediate parent is always the closest ancestor.
func (u *Unbaked) MakeChild(target reference.Any, extra ...reference.Any) *Unbaked {
	return &Unbaked{
		rt:      u.rt,
		handler: u.handler,
		target:  target,
		chain:   concat(u.chain, extra, []reference.Any{u.target}),
	}
}

// WithContext derives a context with the same target and extra appended to
// the chain.
func (u *Unbaked) WithContext(extra ...reference.Any) *Unbaked {
	return &Unbaked{
		rt:      u.rt,
		handler: u.handler,
		target:  u.target,
		chain:   concat(u.chain, extra),
	}
}

// Target returns the target reference.
func (u *Unbaked) Target() reference.Any {
	return u.target
}

// Chain returns a copy of the ambient reference chain, oldest first.
func (u *Unbaked) Chain() []reference.Any {
	return concat(u.chain)
}

// CostHandler returns the handler shared by the whole family.
func (u *Unbaked) CostHandler() *cost.Handler {
	return u.handler
}

// ancestor re-derives the context of chain entry i: it becomes the target
// and the entries before it become its chain.
func (u *Unbaked) ancestor(i int) *Unbaked {
	return &Unbaked{
		rt:      u.rt,
		handler: u.handler,
		target:  u.chain[i],
		chain:   u.chain[:i:i],
	}
}

// concat joins slices into a freshly allocated slice so derived contexts
// never share backing arrays.
func concat[T any](parts ...[]T) []T {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]T, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
