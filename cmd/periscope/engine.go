// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"log/slog"
	"slices"

	"github.com/samber/oops"

	"github.com/holomush/periscope/internal/catalog"
	"github.com/holomush/periscope/internal/config"
	"github.com/holomush/periscope/internal/cost"
	"github.com/holomush/periscope/internal/executor"
	"github.com/holomush/periscope/internal/method"
	"github.com/holomush/periscope/internal/observability"
	"github.com/holomush/periscope/internal/script/capability"
	"github.com/holomush/periscope/internal/script/lua"
	"github.com/holomush/periscope/internal/transfer"
	"github.com/holomush/periscope/internal/world"
)

// engine is every long-lived component a command needs, wired together.
type engine struct {
	world     *world.World
	methods   *method.Registry
	transfers *transfer.Registry
	exec      *executor.Executor
	scheduler *cost.Scheduler
	enforcer  *capability.Enforcer
	rt        *method.Runtime
	host      *lua.Host
}

func newEngine(cfg *config.Config, logger *slog.Logger) (*engine, error) {
	enforcer := capability.NewEnforcer()
	methods := method.NewRegistry(method.WithGate(enforcer))

	// Integrations must be installed before the catalog registers, since
	// registration skips methods of missing integrations.
	mods := make([]string, 0, len(cfg.Integrations))
	for mod := range cfg.Integrations {
		mods = append(mods, mod)
	}
	slices.Sort(mods)
	for _, mod := range mods {
		if err := methods.Install(mod, cfg.Integrations[mod]); err != nil {
			return nil, err
		}
	}
	if err := catalog.Register(methods); err != nil {
		return nil, oops.In("engine").Hint("failed to register method catalog").Wrap(err)
	}

	w := world.New()
	transfers := transfer.NewRegistry()
	w.RegisterTransfers(transfers)

	exec := executor.New()
	rt, err := method.NewRuntime(methods, transfers, exec)
	if err != nil {
		return nil, err
	}

	scheduler := cost.NewScheduler(cfg.Quota)
	host, err := lua.NewHost(rt, scheduler, enforcer,
		lua.WithInterval(cfg.Tick),
		lua.WithDefaultGrants(cfg.Grants...),
		lua.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	return &engine{
		world:     w,
		methods:   methods,
		transfers: transfers,
		exec:      exec,
		scheduler: scheduler,
		enforcer:  enforcer,
		rt:        rt,
		host:      host,
	}, nil
}

func (e *engine) status() observability.Status {
	return observability.Status{
		PendingTasks: e.exec.Pending(),
		Scripts:      e.host.Scripts(),
		Integrations: e.methods.Installed(),
	}
}
