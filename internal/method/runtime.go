// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package method resolves capability contexts and dispatches methods on them.
//
// An Unbaked context is a durable description of a target and the ordered
// chain of ambient objects that led to it. Baking it on the world goroutine
// produces a Context holding the live objects. A Context can derive further
// unbaked children (extending the durable chain) or Detached baked children
// (appending live objects directly). The Registry pairs a Context with every
// method visible from its target and ambient chain and exposes them through
// a capability Object.
package method

import (
	"github.com/holomush/periscope/internal/cost"
	"github.com/holomush/periscope/internal/executor"
	"github.com/holomush/periscope/internal/reference"
	"github.com/holomush/periscope/internal/transfer"
)

// Runtime bundles the process-wide collaborators every context needs. It is
// built once at startup and passed to each root context.
type Runtime struct {
	methods   *Registry
	transfers *transfer.Registry
	executor  *executor.Executor
}

// NewRuntime creates a runtime. All collaborators are required.
func NewRuntime(methods *Registry, transfers *transfer.Registry, exec *executor.Executor) (*Runtime, error) {
	if methods == nil {
		return nil, ErrNilRegistry
	}
	if transfers == nil {
		return nil, ErrNilTransfers
	}
	if exec == nil {
		return nil, ErrNilExecutor
	}
	return &Runtime{methods: methods, transfers: transfers, executor: exec}, nil
}

// Methods returns the method registry.
func (rt *Runtime) Methods() *Registry {
	return rt.methods
}

// Transfers returns the transfer locator registry.
func (rt *Runtime) Transfers() *transfer.Registry {
	return rt.transfers
}

// Executor returns the world goroutine executor.
func (rt *Runtime) Executor() *executor.Executor {
	return rt.executor
}

// NewRoot creates the root of a context family. Every context derived from
// it shares handler.
func (rt *Runtime) NewRoot(handler *cost.Handler, target reference.Any, chain ...reference.Any) *Unbaked {
	return &Unbaked{
		rt:      rt,
		handler: handler,
		target:  target,
		chain:   concat(chain),
	}
}
