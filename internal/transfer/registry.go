// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package transfer resolves named transfer endpoints on live objects.
//
// A transfer endpoint is anything items or data can be moved to or from.
// Objects expose primary parts by key ("inventory", "self") and parts
// expose secondary parts that narrow them further ("inventory.3"). The
// registry aggregates the providers contributed by world integrations.
package transfer

import (
	"sync"
)

// Provider exposes transfer parts of the objects it understands.
// Implementations must return (nil, false) for objects they do not handle.
type Provider interface {
	// Part returns the part of obj named key. secondary is false when key is
	// the first segment of a path and true when narrowing an earlier part.
	Part(obj any, key string, secondary bool) (any, bool)

	// Keys lists the primary keys obj exposes.
	Keys(obj any) []string
}

// Registry is an ordered collection of providers. Earlier providers win.
// It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	providers []Provider
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a provider.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers = append(r.providers, p)
}

// Part returns the first part any provider exposes for obj under key.
func (r *Registry) Part(obj any, key string, secondary bool) (any, bool) {
	if obj == nil || key == "" {
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.providers {
		if part, ok := p.Part(obj, key, secondary); ok && part != nil {
			return part, true
		}
	}
	return nil, false
}

// Keys returns the primary keys every provider exposes for obj. Duplicates
// are preserved; callers needing a set collapse them.
func (r *Registry) Keys(obj any) []string {
	if obj == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var keys []string
	for _, p := range r.providers {
		keys = append(keys, p.Keys(obj)...)
	}
	return keys
}

// Typed adapts functions over a concrete type T into a Provider. Nil
// functions expose nothing.
type Typed[T any] struct {
	Primary   func(obj T, key string) (any, bool)
	Secondary func(obj T, key string) (any, bool)
	List      func(obj T) []string
}

// Part implements Provider.
func (t Typed[T]) Part(obj any, key string, secondary bool) (any, bool) {
	v, ok := obj.(T)
	if !ok {
		return nil, false
	}
	fn := t.Primary
	if secondary {
		fn = t.Secondary
	}
	if fn == nil {
		return nil, false
	}
	return fn(v, key)
}

// Keys implements Provider.
func (t Typed[T]) Keys(obj any) []string {
	v, ok := obj.(T)
	if !ok || t.List == nil {
		return nil
	}
	return t.List(v)
}
