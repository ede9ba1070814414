// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/holomush/periscope/internal/config"
	"github.com/holomush/periscope/internal/logging"
	"github.com/holomush/periscope/internal/xdg"
)

// NewRootCmd creates the root command for the periscope CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "periscope",
		Short: "Periscope - capability objects for sandboxed scripts",
		Long: `Periscope resolves capability contexts over a live world and
dispatches script method calls against them, hopping to the world
goroutine and charging a per-tick cost quota.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "config file path (default: XDG_CONFIG_HOME/periscope/config.yaml)")
	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewMethodsCmd())
	cmd.AddCommand(NewSchemaCmd())

	return cmd
}

// loadConfig reads the config file named by --config, or the XDG config
// file when the flag is unset and that file exists, and applies flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	if path == "" {
		if def, ok := xdg.ConfigFile(); ok {
			path = def
		}
	}
	return config.Load(path, cmd.Flags())
}

// setupLogging installs the default logger, writing to the command's
// error stream.
func setupLogging(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, error) {
	logger, err := logging.Setup(logging.Options{
		Service: "periscope",
		Version: version,
		Format:  cfg.LogFormat,
		Level:   cfg.LogLevel,
	}, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return logger, nil
}
