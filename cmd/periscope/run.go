// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/holomush/periscope/internal/config"
	"github.com/holomush/periscope/internal/observability"
	"github.com/holomush/periscope/internal/script"
)

// NewRunCmd creates the run subcommand.
func NewRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <script.lua|dir>",
		Short: "Run a script against the demo world",
		Long: `Run loads a script (a single .lua file or a directory with a
script.yaml manifest), builds the demo world and calls the script's
main(peripheral) with the capability object of a chest reached by a
player. Return values are printed as YAML.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runScript(cmd, cfg, args[0])
		},
	}
}

// resolveScriptPath finds path as given, or under the configured script
// directory.
func resolveScriptPath(cfg *config.Config, path string) string {
	if _, err := os.Stat(path); err == nil || cfg.ScriptDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(cfg.ScriptDir, path)
}

func runScript(cmd *cobra.Command, cfg *config.Config, path string) error {
	logger, err := setupLogging(cmd, cfg)
	if err != nil {
		return err
	}

	s, err := script.Load(resolveScriptPath(cfg, path))
	if err != nil {
		return err
	}

	eng, err := newEngine(cfg, logger)
	if err != nil {
		return err
	}
	defer eng.host.Close()

	if err := s.Manifest.CheckRequirements(eng.methods.Installed()); err != nil {
		return err
	}

	d, err := seedDemo(eng.world)
	if err != nil {
		return oops.In("run").Hint("failed to seed demo world").Wrap(err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	var wg sync.WaitGroup
	if cfg.MetricsAddr != "" {
		srv := observability.NewServer(cfg.MetricsAddr,
			observability.WithReadiness(func() bool { return ctx.Err() == nil }),
			observability.WithStatus(eng.status),
			observability.WithLogger(logger),
		)
		if err := srv.Listen(); err != nil {
			return err
		}
		wg.Go(func() {
			if err := srv.Serve(ctx); err != nil {
				logger.Warn("observability server failed", "error", err)
			}
		})
	}
	wg.Go(func() {
		eng.exec.Run(ctx, cfg.Tick, eng.scheduler.Tick)
	})
	results, err := func() ([]any, error) {
		defer wg.Wait()
		defer cancel()

		if err := eng.host.Load(ctx, s); err != nil {
			return nil, err
		}
		target, chain := d.root(eng.world)
		return eng.host.Run(ctx, s.Manifest.Name, target, chain...)
	}()
	if err != nil {
		return err
	}

	if len(results) == 0 {
		return nil
	}
	out, err := yaml.Marshal(results)
	if err != nil {
		return oops.In("run").Hint("failed to encode results").Wrap(err)
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}
