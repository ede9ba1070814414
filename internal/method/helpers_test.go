// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package method_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/holomush/periscope/internal/executor"
	"github.com/holomush/periscope/internal/method"
	"github.com/holomush/periscope/internal/reference"
	"github.com/holomush/periscope/internal/transfer"
)

type player struct {
	name string
	pack *container
}

type container struct {
	name  string
	slots []*slot
}

type slot struct {
	index int
	item  string
	count int
}

// labeled is satisfied by tag so lookups can match several entries at once.
type labeled interface {
	Label() string
}

type tag string

func (t tag) Label() string { return string(t) }

type agent string

func (a agent) Name() string { return string(a) }

// grants is a Gate allowing exact principal/capability pairs.
type grants map[string][]string

func (g grants) Check(principal, capability string) bool {
	for _, c := range g[principal] {
		if c == capability {
			return true
		}
	}
	return false
}

type harness struct {
	rt        *method.Runtime
	methods   *method.Registry
	transfers *transfer.Registry
	exec      *executor.Executor
}

func newHarness(t *testing.T, opts ...method.RegistryOption) *harness {
	t.Helper()
	methods := method.NewRegistry(opts...)
	transfers := transfer.NewRegistry()
	exec := executor.New()
	rt, err := method.NewRuntime(methods, transfers, exec)
	require.NoError(t, err)
	return &harness{rt: rt, methods: methods, transfers: transfers, exec: exec}
}

// worldCtx returns a context that runs executor tasks inline.
func worldCtx() context.Context {
	return executor.WorldContext(context.Background())
}

func ref(name string, v any) reference.Any {
	return reference.Of[any](name, v)
}

func newContainer(name string, n int) *container {
	c := &container{name: name}
	for i := range n {
		c.slots = append(c.slots, &slot{index: i + 1, item: name + "-item-" + strconv.Itoa(i+1), count: i + 1})
	}
	return c
}

// registerTransfers exposes containers as "inventory" and "self" with
// numbered slots, and players as "inventory" pointing at their pack.
func (h *harness) registerTransfers() {
	h.transfers.Register(transfer.Typed[*container]{
		Primary: func(c *container, key string) (any, bool) {
			if key == "inventory" || key == "self" {
				return c, true
			}
			return nil, false
		},
		Secondary: func(c *container, key string) (any, bool) {
			n, err := strconv.Atoi(key)
			if err != nil || n < 1 || n > len(c.slots) {
				return nil, false
			}
			return c.slots[n-1], true
		},
		List: func(*container) []string { return []string{"self", "inventory"} },
	})
	h.transfers.Register(transfer.Typed[*player]{
		Primary: func(p *player, key string) (any, bool) {
			if key == "inventory" && p.pack != nil {
				return p.pack, true
			}
			return nil, false
		},
		List: func(*player) []string { return []string{"inventory"} },
	})
}
