// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/holomush/periscope/internal/method"
)

// methodInfo is the YAML form of a registered method.
type methodInfo struct {
	Capability  string `yaml:"capability"`
	Signature   string `yaml:"signature"`
	WorldThread bool   `yaml:"world_thread"`
	Cost        int64  `yaml:"cost"`
	Integration string `yaml:"integration,omitempty"`
	Requires    string `yaml:"requires,omitempty"`
	Doc         string `yaml:"doc,omitempty"`
}

// NewMethodsCmd creates the methods subcommand.
func NewMethodsCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "methods",
		Short: "List the registered method catalog",
		Long: `List every method registered with the configured integrations
installed. Methods of integrations that are not installed are omitted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, err := setupLogging(cmd, cfg)
			if err != nil {
				return err
			}
			eng, err := newEngine(cfg, logger)
			if err != nil {
				return err
			}
			return printMethods(cmd.OutOrStdout(), eng.methods.Descriptors(), format)
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "output format (text or yaml)")
	return cmd
}

func printMethods(w io.Writer, descs []method.Descriptor, format string) error {
	switch format {
	case "yaml":
		infos := make([]methodInfo, len(descs))
		for i, d := range descs {
			infos[i] = methodInfo{
				Capability:  d.Capability(),
				Signature:   d.Signature(),
				WorldThread: d.WorldThread,
				Cost:        d.Cost,
				Integration: d.Mod,
				Requires:    d.Requires,
				Doc:         d.Doc,
			}
		}
		out, err := yaml.Marshal(infos)
		if err != nil {
			return oops.In("methods").Wrap(err)
		}
		_, err = w.Write(out)
		return err
	case "text":
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "CAPABILITY\tSIGNATURE\tTHREAD\tCOST\tDOC")
		for _, d := range descs {
			thread := "caller"
			if d.WorldThread {
				thread = "world"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", d.Capability(), d.Signature(), thread, d.Cost, d.Doc)
		}
		return tw.Flush()
	default:
		return oops.In("methods").With("format", format).Errorf("format must be 'text' or 'yaml', got %q", format)
	}
}
