// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package config loads engine configuration from a YAML file and
// command-line flags.
package config

import (
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/holomush/periscope/internal/logging"
	"github.com/holomush/periscope/internal/xdg"
)

// CodeInvalidConfig is the oops code for configuration that fails Validate.
const CodeInvalidConfig = "INVALID_CONFIG"

// Defaults.
const (
	DefaultLogFormat = logging.FormatJSON
	DefaultLogLevel  = "info"
	DefaultTick      = 50 * time.Millisecond
	DefaultQuota     = 1000
)

// Config is the engine configuration.
type Config struct {
	LogFormat string `koanf:"log_format"`
	LogLevel  string `koanf:"log_level"`
	// Tick is the world tick interval: how often queued world-thread
	// work runs and cost handlers reset.
	Tick time.Duration `koanf:"tick"`
	// Quota is the cost each script may spend per tick.
	Quota int64 `koanf:"quota"`
	// MetricsAddr is the observability listen address; empty disables it.
	MetricsAddr string `koanf:"metrics_addr"`
	ScriptDir   string `koanf:"script_dir"`
	// Grants apply to scripts whose manifest declares none.
	Grants []string `koanf:"grants"`
	// Integrations maps installed integration names to versions.
	Integrations map[string]string `koanf:"integrations"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		LogFormat: DefaultLogFormat,
		LogLevel:  DefaultLogLevel,
		Tick:      DefaultTick,
		Quota:     DefaultQuota,
		Grants:    []string{"**"},
		ScriptDir: xdg.ScriptDir(),
	}
}

// flagKeys maps flag names to config keys.
var flagKeys = map[string]string{
	"log-format":   "log_format",
	"log-level":    "log_level",
	"tick":         "tick",
	"quota":        "quota",
	"metrics-addr": "metrics_addr",
	"script-dir":   "script_dir",
	"grant":        "grants",
}

// RegisterFlags adds the configuration flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("log-format", d.LogFormat, "log format (json or text)")
	fs.String("log-level", d.LogLevel, "log level (debug, info, warn, error)")
	fs.Duration("tick", d.Tick, "world tick interval")
	fs.Int64("quota", d.Quota, "cost units a script may spend per tick")
	fs.String("metrics-addr", d.MetricsAddr, "metrics/health HTTP address (empty = disabled)")
	fs.String("script-dir", d.ScriptDir, "directory scripts are loaded from")
	fs.StringSlice("grant", d.Grants, "capability grant for scripts without their own (repeatable)")
}

// Load builds a Config from defaults, then the YAML file at path (if
// path is not empty), then flags set on fs (if fs is not nil). Flags left
// at their defaults do not override the file.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	d := Default()
	for key, val := range map[string]any{
		"log_format":   d.LogFormat,
		"log_level":    d.LogLevel,
		"tick":         d.Tick.String(),
		"quota":        d.Quota,
		"metrics_addr": d.MetricsAddr,
		"script_dir":   d.ScriptDir,
		"grants":       d.Grants,
	} {
		if err := k.Set(key, val); err != nil {
			return nil, oops.In("config").With("key", key).Wrap(err)
		}
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.In("config").With("path", path).Hint("failed to read config file").Wrap(err)
		}
	}

	if fs != nil {
		provider := posflag.ProviderWithFlag(fs, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(fs, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.In("config").Hint("failed to read flags").Wrap(err)
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, oops.In("config").Hint("failed to decode config").Wrap(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	invalid := func(key string, format string, args ...any) error {
		return oops.In("config").Code(CodeInvalidConfig).With("key", key).Errorf(format, args...)
	}

	if c.LogFormat != logging.FormatJSON && c.LogFormat != logging.FormatText {
		return invalid("log_format", "log_format must be 'json' or 'text', got %q", c.LogFormat)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return invalid("log_level", "unknown log_level %q", c.LogLevel)
	}
	if c.Tick <= 0 {
		return invalid("tick", "tick must be positive, got %s", c.Tick)
	}
	if c.Quota <= 0 {
		return invalid("quota", "quota must be positive, got %d", c.Quota)
	}
	for i, g := range c.Grants {
		if strings.TrimSpace(g) == "" {
			return invalid("grants", "grant %d is empty", i)
		}
	}
	for mod, version := range c.Integrations {
		if _, err := semver.NewVersion(version); err != nil {
			return invalid("integrations", "integration %q: bad version %q", mod, version)
		}
	}
	return nil
}
