// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

//go:build integration

package engine_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/holomush/periscope/internal/catalog"
	"github.com/holomush/periscope/internal/cost"
	"github.com/holomush/periscope/internal/executor"
	"github.com/holomush/periscope/internal/method"
	"github.com/holomush/periscope/internal/reference"
	"github.com/holomush/periscope/internal/script"
	"github.com/holomush/periscope/internal/script/capability"
	"github.com/holomush/periscope/internal/script/lua"
	"github.com/holomush/periscope/internal/transfer"
	"github.com/holomush/periscope/internal/world"
)

func TestEngine(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Engine Integration Suite")
}

const (
	testTick  = 2 * time.Millisecond
	testQuota = 10
)

// testEnv is a running engine: the executor ticks on its own goroutine
// and resets cost handlers every tick.
type testEnv struct {
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	world     *world.World
	exec      *executor.Executor
	scheduler *cost.Scheduler
	rt        *method.Runtime
	host      *lua.Host

	player *world.Player
	chest  *world.Block
	hopper *world.Block
}

func newTestEnv() *testEnv {
	enforcer := capability.NewEnforcer()
	methods := method.NewRegistry(method.WithGate(enforcer))
	Expect(catalog.Register(methods)).To(Succeed())

	w := world.New()
	transfers := transfer.NewRegistry()
	w.RegisterTransfers(transfers)

	exec := executor.New()
	rt, err := method.NewRuntime(methods, transfers, exec)
	Expect(err).NotTo(HaveOccurred())

	scheduler := cost.NewScheduler(testQuota)
	host, err := lua.NewHost(rt, scheduler, enforcer,
		lua.WithInterval(testTick),
		lua.WithDefaultGrants("**"),
		lua.WithLogger(slog.New(slog.DiscardHandler)),
	)
	Expect(err).NotTo(HaveOccurred())

	player, err := w.AddPlayer("Steve", 4)
	Expect(err).NotTo(HaveOccurred())
	chest, err := w.PlaceBlock(world.Pos{}, world.BlockSpec{Kind: "chest", Slots: 8})
	Expect(err).NotTo(HaveOccurred())
	hopper, err := w.PlaceBlock(world.Pos{Y: -1}, world.BlockSpec{Kind: "hopper", Slots: 8})
	Expect(err).NotTo(HaveOccurred())

	ctx, cancel := context.WithCancel(context.Background())
	env := &testEnv{
		ctx: ctx, cancel: cancel,
		world: w, exec: exec, scheduler: scheduler, rt: rt, host: host,
		player: player, chest: chest, hopper: hopper,
	}
	env.wg.Go(func() {
		exec.Run(ctx, testTick, scheduler.Tick)
	})
	return env
}

func (e *testEnv) stop() {
	e.cancel()
	e.wg.Wait()
	e.host.Close()
}

// onWorld runs fn on the world goroutine.
func (e *testEnv) onWorld(fn func() error) error {
	_, err := executor.Call(e.ctx, e.exec, func(context.Context) (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

func (e *testEnv) chestRoot(h *cost.Handler) *method.Unbaked {
	return e.rt.NewRoot(h,
		reference.Erase[*world.Block](e.world.RefBlock(e.chest)),
		reference.Erase[*world.Player](e.world.RefPlayer(e.player)),
	)
}

func (e *testEnv) runScript(name, code string) ([]any, error) {
	s := &script.Script{
		Manifest: &script.Manifest{Name: name, Version: "1.0.0", Entry: "main.lua"},
		Code:     code,
	}
	if err := e.host.Load(e.ctx, s); err != nil {
		return nil, err
	}
	return e.host.Run(e.ctx, name,
		reference.Erase[*world.Block](e.world.RefBlock(e.chest)),
		reference.Erase[*world.Player](e.world.RefPlayer(e.player)),
	)
}
