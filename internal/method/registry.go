// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package method

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/samber/oops"
)

// Agent is the scripting host's handle on its own script. The host places
// it in the ambient chain of every root context it creates.
type Agent interface {
	// Name identifies the script for capability checks and logs.
	Name() string
}

// Gate decides whether a principal may see a capability. Satisfied by
// *capability.Enforcer.
type Gate interface {
	Check(principal, capability string) bool
}

type entry struct {
	desc    Descriptor
	accepts func(target any) bool
	invoke  func(ctx context.Context, c *Context, args Arguments) ([]any, error)
}

// applies reports whether the entry can run against a context with the
// given target and ambient objects.
func (e *entry) applies(view *baked) bool {
	if !e.accepts(view.target) {
		return false
	}
	for _, p := range e.desc.Params {
		if !p.IsContext() {
			continue
		}
		if _, ok := lookupMatch(view, p.match); !ok {
			return false
		}
	}
	return true
}

// Registry holds every registered method. Registration happens at startup;
// lookups are safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	entries   []*entry
	installed map[string]*semver.Version
	gate      Gate
}

// RegistryOption configures a Registry during construction.
type RegistryOption func(*Registry)

// WithGate hides methods whose capability the calling agent is not granted.
// Methods without a module are always visible.
func WithGate(g Gate) RegistryOption {
	return func(r *Registry) {
		r.gate = g
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{installed: make(map[string]*semver.Version)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Install records an installed integration. Methods naming a Mod that was
// never installed are skipped at registration.
func (r *Registry) Install(mod, version string) error {
	v, err := semver.NewVersion(version)
	if err != nil {
		return oops.Code(CodeInvalidDescriptor).
			With("mod", mod).
			With("version", version).
			Wrapf(err, "invalid version for integration %s", mod)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.installed[mod] = v
	return nil
}

// Installed returns the installed integrations and their versions.
func (r *Registry) Installed() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]string, len(r.installed))
	for mod, v := range r.installed {
		out[mod] = v.String()
	}
	return out
}

// Register adds a method applicable to targets assignable to T. Invalid
// descriptors and bindings fail here rather than at call time. Methods whose
// integration is missing or too old are skipped without error.
func Register[T any](r *Registry, d Descriptor, fn Func[T]) error {
	if err := validate(&d, fn == nil); err != nil {
		return err
	}

	var constraint *semver.Constraints
	if d.Requires != "" {
		c, err := semver.NewConstraint(d.Requires)
		if err != nil {
			return oops.Code(CodeInvalidDescriptor).
				With("method", d.Name).
				With("requires", d.Requires).
				Wrapf(err, "method %q: invalid version constraint", d.Name)
		}
		constraint = c
	}

	e := &entry{
		desc: d,
		accepts: func(target any) bool {
			_, ok := target.(T)
			return ok
		},
		invoke: func(ctx context.Context, c *Context, args Arguments) ([]any, error) {
			target, ok := c.Target().(T)
			if !ok {
				return nil, ErrNotApplicable(d.Name)
			}
			return fn(ctx, &Call[T]{Context: c, Target: target, Args: args})
		},
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if d.Mod != "" {
		version, ok := r.installed[d.Mod]
		if !ok {
			slog.Debug("skipping method for missing integration",
				"method", d.Name,
				"mod", d.Mod)
			return nil
		}
		if constraint != nil && !constraint.Check(version) {
			slog.Debug("skipping method for unsupported integration version",
				"method", d.Name,
				"mod", d.Mod,
				"version", version.String(),
				"requires", d.Requires)
			return nil
		}
	}

	r.entries = append(r.entries, e)
	return nil
}

// MustRegister is Register that panics on configuration errors. Intended
// for startup wiring only.
func MustRegister[T any](r *Registry, d Descriptor, fn Func[T]) {
	if err := Register(r, d, fn); err != nil {
		panic(err)
	}
}

// Descriptors returns every registered descriptor in registration order.
func (r *Registry) Descriptors() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Descriptor, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.desc
	}
	return out
}

// Len returns the number of registered methods.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func validate(d *Descriptor, nilFunc bool) error {
	switch {
	case d.Name == "":
		return ErrInvalidDescriptor(d.Name, "name is required")
	case nilFunc:
		return ErrInvalidDescriptor(d.Name, "implementation is required")
	case d.Cost < 0:
		return ErrInvalidDescriptor(d.Name, "cost cannot be negative")
	case d.Requires != "" && d.Mod == "":
		return ErrInvalidDescriptor(d.Name, "version constraint without an integration")
	}

	seen := make(map[string]bool, len(d.Params))
	optional := false
	for _, p := range d.Params {
		if p.Name == "" {
			return ErrInvalidBinding(d.Name, p.Name, "name is required")
		}
		if seen[p.Name] {
			return ErrInvalidBinding(d.Name, p.Name, "duplicate parameter")
		}
		seen[p.Name] = true

		if p.IsContext() {
			if p.match == nil {
				return ErrInvalidBinding(d.Name, p.Name, "context parameter without a type")
			}
			continue
		}
		if _, ok := kindNames[p.Kind]; !ok {
			return ErrInvalidBinding(d.Name, p.Name, "unsupported argument type "+p.Kind.String())
		}
		if optional && !p.Optional {
			return ErrInvalidBinding(d.Name, p.Name, "required argument after an optional one")
		}
		optional = optional || p.Optional
	}
	return nil
}

// objectFor pairs c with every visible method. Methods on the target come
// first, then methods on each ambient object from nearest to oldest, each
// re-derived with that object as its target. The first method bound to a
// name shadows later ones.
func (r *Registry) objectFor(c *Context) *Object {
	r.mu.RLock()
	entries := slices.Clone(r.entries)
	gate := r.gate
	r.mu.RUnlock()

	agent, hasAgent := Lookup[Agent](c)
	obj := &Object{
		rt:       c.rt,
		agent:    agent,
		bindings: make(map[string]*binding),
	}

	add := func(view *baked, unbaked *Unbaked) {
		for _, e := range entries {
			if _, taken := obj.bindings[e.desc.Name]; taken {
				continue
			}
			if !e.applies(view) {
				continue
			}
			if gate != nil && e.desc.Module != "" {
				if !hasAgent || !gate.Check(agent.Name(), e.desc.Capability()) {
					continue
				}
			}
			obj.bindings[e.desc.Name] = &binding{entry: e, unbaked: unbaked}
		}
	}

	add(&c.baked, c.parent)
	for i := len(c.ambient) - 1; i >= 0; i-- {
		if i >= len(c.parent.chain) {
			continue
		}
		view := &baked{rt: c.rt, handler: c.handler, target: c.ambient[i], ambient: c.ambient[:i:i]}
		add(view, c.parent.ancestor(i))
	}

	obj.names = make([]string, 0, len(obj.bindings))
	for name := range obj.bindings {
		obj.names = append(obj.names, name)
	}
	slices.Sort(obj.names)
	return obj
}
