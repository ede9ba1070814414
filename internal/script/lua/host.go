// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package lua

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	lua "github.com/yuin/gopher-lua"

	"github.com/holomush/periscope/internal/cost"
	"github.com/holomush/periscope/internal/method"
	"github.com/holomush/periscope/internal/reference"
	"github.com/holomush/periscope/internal/script"
	"github.com/holomush/periscope/internal/script/capability"
)

// EntryFunction is the global a script defines to receive its peripheral.
const EntryFunction = "main"

// DefaultInterval is how often a script blocked on quota polls its handler.
const DefaultInterval = 50 * time.Millisecond

// Agent is the principal a running script acts as. It is placed in the
// ambient list of every root context the host creates.
type Agent struct {
	ID     ulid.ULID
	script string
	logger *slog.Logger
}

// Name returns the script name, which is also the grant principal.
func (a *Agent) Name() string {
	return a.script
}

// Logger returns the logger scripts print to.
func (a *Agent) Logger() *slog.Logger {
	return a.logger
}

// Host runs scripts against capability objects.
type Host struct {
	factory   *StateFactory
	rt        *method.Runtime
	scheduler *cost.Scheduler
	enforcer  *capability.Enforcer
	interval  time.Duration
	grants    []string
	logger    *slog.Logger

	mu      sync.RWMutex
	scripts map[string]*script.Script
	closed  bool
}

// HostOption configures a Host.
type HostOption func(*Host)

// WithInterval sets the quota polling interval.
func WithInterval(d time.Duration) HostOption {
	return func(h *Host) {
		if d > 0 {
			h.interval = d
		}
	}
}

// WithDefaultGrants sets the grants of scripts whose manifest declares none.
func WithDefaultGrants(patterns ...string) HostOption {
	return func(h *Host) {
		h.grants = slices.Clone(patterns)
	}
}

// WithLogger sets the logger script output and failures go to.
func WithLogger(l *slog.Logger) HostOption {
	return func(h *Host) {
		if l != nil {
			h.logger = l
		}
	}
}

// NewHost creates a host. The enforcer should be the gate of rt's method
// registry, otherwise grants have no effect.
func NewHost(rt *method.Runtime, scheduler *cost.Scheduler, enforcer *capability.Enforcer, opts ...HostOption) (*Host, error) {
	if rt == nil || scheduler == nil || enforcer == nil {
		return nil, oops.In("lua").New("runtime, scheduler and enforcer are required")
	}
	h := &Host{
		factory:   NewStateFactory(),
		rt:        rt,
		scheduler: scheduler,
		enforcer:  enforcer,
		interval:  DefaultInterval,
		logger:    slog.Default(),
		scripts:   make(map[string]*script.Script),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Load compiles s to check its syntax and installs its grants.
func (h *Host) Load(ctx context.Context, s *script.Script) error {
	name := s.Manifest.Name

	L, err := h.factory.NewState(ctx)
	if err != nil {
		return oops.In("lua").With("script", name).With("operation", "load").Hint("failed to create validation state").Wrap(err)
	}
	defer L.Close()

	if _, err := L.LoadString(s.Code); err != nil {
		return oops.In("lua").With("script", name).With("operation", "load").Hint("syntax error").Wrap(err)
	}

	grants := s.Manifest.Grants
	if len(grants) == 0 {
		grants = h.grants
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return oops.In("lua").With("script", name).With("operation", "load").New("host is closed")
	}
	if err := h.enforcer.SetGrants(name, grants); err != nil {
		return oops.In("lua").With("script", name).With("operation", "load").Wrap(err)
	}
	h.scripts[name] = s
	return nil
}

// Unload removes a script and its grants.
func (h *Host) Unload(name string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.scripts[name]; !ok {
		return oops.In("lua").With("script", name).With("operation", "unload").New("script not loaded")
	}
	delete(h.scripts, name)
	h.enforcer.RemoveGrants(name)
	return nil
}

// Scripts returns the names of loaded scripts, sorted.
func (h *Host) Scripts() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	names := make([]string, 0, len(h.scripts))
	for name := range h.scripts {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Close unloads every script.
func (h *Host) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for name := range h.scripts {
		h.enforcer.RemoveGrants(name)
	}
	h.scripts = nil
	h.closed = true
}

// Run executes the named script. The script's main function is called
// with the capability object of a root context targeting target, with
// chain and the script's agent as ambient objects. Its return values are
// converted back to Go.
//
// Every run draws a fresh cost handler from the scheduler, so a script's
// quota is shared by every object it derives but not with other runs.
func (h *Host) Run(ctx context.Context, name string, target reference.Any, chain ...reference.Any) (out []any, err error) {
	started := time.Now()
	defer func() {
		recordRun(name, err, started)
		if err != nil {
			h.logger.WarnContext(ctx, "script failed", "script", name, "error", err)
		}
	}()

	h.mu.RLock()
	s, ok := h.scripts[name]
	h.mu.RUnlock()
	if !ok {
		return nil, oops.In("lua").With("script", name).With("operation", "run").New("script not loaded")
	}

	agent := &Agent{ID: ulid.Make(), script: name}
	agent.logger = h.logger.With("script", name, "run_id", agent.ID.String())

	handler := h.scheduler.New()
	defer h.scheduler.Release(handler)

	root := h.rt.NewRoot(handler, target, append(slices.Clone(chain), reference.Of[any]("agent", agent))...)
	obj, err := root.Object(ctx)
	if err != nil {
		return nil, oops.In("lua").With("script", name).With("operation", "run").Hint("failed to resolve peripheral").Wrap(err)
	}

	L, err := h.factory.NewState(ctx)
	if err != nil {
		return nil, oops.In("lua").With("script", name).With("operation", "run").Hint("failed to create state").Wrap(err)
	}
	defer L.Close()

	registerFunctions(L, agent, handler)

	if err := L.DoString(s.Code); err != nil {
		return nil, oops.In("lua").With("script", name).With("operation", "run").Hint("failed to load code").Wrap(err)
	}

	entry := L.GetGlobal(EntryFunction)
	if entry.Type() != lua.LTFunction {
		return nil, oops.In("lua").With("script", name).With("operation", "run").Errorf("script does not define %s()", EntryFunction)
	}

	top := L.GetTop()
	if err := L.CallByParam(lua.P{
		Fn:      entry,
		NRet:    lua.MultRet,
		Protect: true,
	}, h.objectTable(ctx, L, obj)); err != nil {
		return nil, oops.In("lua").With("script", name).With("operation", EntryFunction).Wrap(err)
	}

	n := L.GetTop() - top
	out = make([]any, n)
	for i := range n {
		if out[i], err = fromLua(L.Get(top + i + 1)); err != nil {
			L.Pop(n)
			return nil, oops.In("lua").With("script", name).With("result", i+1).Wrapf(err, "script returned an unsupported value")
		}
	}
	L.Pop(n)
	agent.logger.Debug("script finished", "used", handler.Used(), "results", n)
	return out, nil
}

// objectTable exposes obj as a table of functions, one per visible
// method. Both peripheral.size() and peripheral:size() work.
//
// Recoverable failures return nil and the error message, in the Lua
// convention. Anything else raises a Lua error and ends the script.
func (h *Host) objectTable(ctx context.Context, L *lua.LState, obj *method.Object) *lua.LTable {
	t := L.NewTable()
	for _, name := range obj.Methods() {
		L.SetField(t, name, L.NewFunction(func(L *lua.LState) int {
			first := 1
			if self, ok := L.Get(1).(*lua.LTable); ok && self == t {
				first = 2
			}
			args := make([]any, 0, max(L.GetTop()-first+1, 0))
			for i := first; i <= L.GetTop(); i++ {
				arg, err := fromLua(L.Get(i))
				if err != nil {
					L.Push(lua.LNil)
					L.Push(lua.LString(method.ErrBadArgument(name, i-first, L.Get(i).Type().String(), err.Error()).Error()))
					return 2
				}
				args = append(args, arg)
			}

			results, err := obj.CallAwait(ctx, name, h.interval, args...)
			if err != nil {
				if !method.Recoverable(err) {
					L.RaiseError("%s: %s", name, err.Error())
					return 0
				}
				L.Push(lua.LNil)
				L.Push(lua.LString(err.Error()))
				return 2
			}
			for _, r := range results {
				L.Push(h.toLua(ctx, L, r))
			}
			return len(results)
		}))
	}
	return t
}

func (h *Host) toLua(ctx context.Context, L *lua.LState, v any) lua.LValue {
	switch v := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(v)
	case string:
		return lua.LString(v)
	case int:
		return lua.LNumber(v)
	case int32:
		return lua.LNumber(v)
	case int64:
		return lua.LNumber(v)
	case float32:
		return lua.LNumber(v)
	case float64:
		return lua.LNumber(v)
	case *method.Object:
		return h.objectTable(ctx, L, v)
	case map[any]any:
		t := L.NewTable()
		for k, val := range v {
			t.RawSet(h.toLua(ctx, L, k), h.toLua(ctx, L, val))
		}
		return t
	case map[string]any:
		t := L.NewTable()
		for k, val := range v {
			t.RawSetString(k, h.toLua(ctx, L, val))
		}
		return t
	case []any:
		t := L.NewTable()
		for _, val := range v {
			t.Append(h.toLua(ctx, L, val))
		}
		return t
	case []string:
		t := L.NewTable()
		for _, val := range v {
			t.Append(lua.LString(val))
		}
		return t
	default:
		return lua.LString(fmt.Sprint(v))
	}
}

// fromLua converts a Lua value to the Go values methods accept: integral
// numbers become int64, other numbers float64, tables map[any]any.
func fromLua(v lua.LValue) (any, error) {
	return convertValue(v, make(map[*lua.LTable]bool), 0)
}

// maxTableDepth bounds how deeply nested a table argument may be.
const maxTableDepth = 64

// convertValue walks tables depth first. open holds the tables on the
// current path, so a table shared by two branches converts twice but a
// table that contains itself is an error.
func convertValue(v lua.LValue, open map[*lua.LTable]bool, depth int) (any, error) {
	switch v := v.(type) {
	case *lua.LNilType:
		return nil, nil
	case lua.LBool:
		return bool(v), nil
	case lua.LString:
		return string(v), nil
	case lua.LNumber:
		f := float64(v)
		if i := int64(f); float64(i) == f {
			return i, nil
		}
		return f, nil
	case *lua.LTable:
		if open[v] {
			return nil, errors.New("table contains itself")
		}
		if depth >= maxTableDepth {
			return nil, fmt.Errorf("tables nested deeper than %d levels", maxTableDepth)
		}
		open[v] = true
		defer delete(open, v)

		out := make(map[any]any)
		var err error
		v.ForEach(func(k, val lua.LValue) {
			if err != nil {
				return
			}
			if k.Type() == lua.LTTable {
				err = errors.New("table keys must not be tables")
				return
			}
			key, kerr := convertValue(k, open, depth+1)
			if kerr != nil {
				err = kerr
				return
			}
			value, verr := convertValue(val, open, depth+1)
			if verr != nil {
				err = verr
				return
			}
			out[key] = value
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	default:
		return v.String(), nil
	}
}
