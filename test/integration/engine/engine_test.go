// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

//go:build integration

package engine_test

import (
	"fmt"
	"sync"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/holomush/periscope/internal/cost"
	"github.com/holomush/periscope/internal/reference"
	"github.com/holomush/periscope/internal/world"
)

var _ = Describe("Engine", func() {
	var env *testEnv

	BeforeEach(func() {
		env = newTestEnv()
	})

	AfterEach(func() {
		env.stop()
	})

	Describe("capability objects across ticks", func() {
		It("resolves the object on the world goroutine", func() {
			obj, err := env.chestRoot(cost.NewHandler(testQuota)).Object(env.ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(obj.Methods()).To(ContainElements("size", "pushItems", "getOwner", "listTransferKeys"))

			out, err := obj.Call(env.ctx, "listTransferKeys")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal([]any{map[any]any{1: "down", 2: "inventory", 3: "self"}}))
		})

		It("fails with gone once the block is removed between calls", func() {
			h := cost.NewHandler(testQuota)
			obj, err := env.chestRoot(h).Object(env.ctx)
			Expect(err).NotTo(HaveOccurred())

			Expect(env.onWorld(func() error {
				_, err := env.world.RemoveBlock(world.Pos{})
				return err
			})).To(Succeed())

			_, err = obj.Call(env.ctx, "size")
			Expect(reference.IsGone(err)).To(BeTrue(), "got %v", err)
			Expect(h.Used()).To(Equal(int64(1)))
		})

		It("fails with replaced when another block takes the position", func() {
			obj, err := env.chestRoot(cost.NewHandler(testQuota)).Object(env.ctx)
			Expect(err).NotTo(HaveOccurred())

			Expect(env.onWorld(func() error {
				_, err := env.world.ReplaceBlock(world.Pos{}, world.BlockSpec{Kind: "barrel", Slots: 8})
				return err
			})).To(Succeed())

			_, err = obj.Call(env.ctx, "size")
			Expect(reference.IsReplaced(err)).To(BeTrue(), "got %v", err)
		})

		It("waits for quota resets instead of failing", func() {
			out, err := env.runScript("busy", `
function main(p)
  local total = 0
  for i = 1, 35 do total = total + p.size() end
  return total
end`)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal([]any{int64(35 * 8)}))
		})

		It("rejects calls over quota without waiting", func() {
			h := cost.NewHandler(2)
			obj, err := env.chestRoot(h).Object(env.ctx)
			Expect(err).NotTo(HaveOccurred())

			_, err = obj.Call(env.ctx, "size")
			Expect(err).NotTo(HaveOccurred())
			_, err = obj.Call(env.ctx, "size")
			Expect(err).NotTo(HaveOccurred())
			_, err = obj.Call(env.ctx, "size")
			Expect(cost.IsQuotaExceeded(err)).To(BeTrue())
		})
	})

	Describe("concurrent scripts", func() {
		It("moves every item exactly once", func() {
			Expect(env.onWorld(func() error {
				for i := 1; i <= 8; i++ {
					if err := env.chest.Inventory.Set(i, world.Stack{Item: "cobblestone", Count: 8}); err != nil {
						return err
					}
				}
				return nil
			})).To(Succeed())

			var wg sync.WaitGroup
			moved := make([]int64, 4)
			errs := make([]error, 4)
			for i := range 4 {
				wg.Go(func() {
					defer GinkgoRecover()
					out, err := env.runScript(fmt.Sprintf("mover-%d", i), `
function main(p)
  local total = 0
  for slot = 1, 8 do
    total = total + p.pushItems("down", slot, 2)
  end
  return total
end`)
					errs[i] = err
					if err == nil {
						moved[i] = out[0].(int64)
					}
				})
			}
			wg.Wait()

			var total int64
			for i := range 4 {
				Expect(errs[i]).NotTo(HaveOccurred())
				total += moved[i]
			}
			Expect(total).To(Equal(int64(64)))

			var inHopper int
			Expect(env.onWorld(func() error {
				for _, st := range env.hopper.Inventory.List() {
					inHopper += st.Count
				}
				return nil
			})).To(Succeed())
			Expect(inHopper).To(Equal(64))
		})
	})
})
