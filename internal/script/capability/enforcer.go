// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package capability decides which capability methods a script may see.
//
// A capability is "<module>.<method>", for example "inventory.pushItems".
// Grants are gobwas/glob patterns with '.' as the segment separator:
//   - '*' matches a single segment (does not cross '.')
//   - '**' matches zero or more segments (crosses '.')
//
// Examples:
//   - "inventory.*" matches "inventory.size" and "inventory.pushItems"
//   - "*.getName" matches "player.getName"
//   - "**" matches any capability
package capability

import (
	"slices"
	"sync"

	"github.com/gobwas/glob"
	"github.com/samber/oops"
)

// CodeInvalidGrant is the oops code for rejected grant patterns.
const CodeInvalidGrant = "INVALID_GRANT"

type compiledGrant struct {
	pattern string
	glob    glob.Glob
}

// Enforcer holds per-script grants. It satisfies method.Gate.
//
// Enforcer is safe for concurrent use. The zero value is ready to use.
type Enforcer struct {
	grants map[string][]compiledGrant
	mu     sync.RWMutex
}

// NewEnforcer creates an enforcer with no grants.
func NewEnforcer() *Enforcer {
	return &Enforcer{grants: make(map[string][]compiledGrant)}
}

// SetGrants replaces the grants of script. All patterns are compiled before
// anything changes, so a bad pattern leaves the previous grants in place.
func (e *Enforcer) SetGrants(script string, patterns []string) error {
	if script == "" {
		return oops.Code(CodeInvalidGrant).Errorf("script name cannot be empty")
	}

	compiled := make([]compiledGrant, len(patterns))
	for i, pattern := range patterns {
		if pattern == "" {
			return oops.Code(CodeInvalidGrant).
				With("script", script).
				With("index", i).
				Errorf("grant %d: empty pattern", i)
		}
		g, err := glob.Compile(pattern, '.')
		if err != nil {
			return oops.Code(CodeInvalidGrant).
				With("script", script).
				With("pattern", pattern).
				Wrapf(err, "grant %d (%q)", i, pattern)
		}
		compiled[i] = compiledGrant{pattern: pattern, glob: g}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.grants == nil {
		e.grants = make(map[string][]compiledGrant)
	}
	e.grants[script] = compiled
	return nil
}

// RemoveGrants forgets script. Safe for unknown scripts.
func (e *Enforcer) RemoveGrants(script string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.grants, script)
}

// Grants returns a copy of the patterns granted to script, or nil when the
// script is unknown.
func (e *Enforcer) Grants(script string) []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	grants, ok := e.grants[script]
	if !ok {
		return nil
	}
	patterns := make([]string, len(grants))
	for i, g := range grants {
		patterns[i] = g.pattern
	}
	return patterns
}

// Scripts returns the names of every script with grants, sorted.
func (e *Enforcer) Scripts() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	names := make([]string, 0, len(e.grants))
	for name := range e.grants {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Check reports whether script may use capability. Unknown scripts and
// empty capabilities are denied.
func (e *Enforcer) Check(script, capability string) bool {
	if capability == "" {
		return false
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, grant := range e.grants[script] {
		if grant.glob.Match(capability) {
			return true
		}
	}
	return false
}
