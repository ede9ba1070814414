// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/periscope/pkg/errutil"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "periscope.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultLogFormat, cfg.LogFormat)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultTick, cfg.Tick)
	assert.Equal(t, int64(DefaultQuota), cfg.Quota)
	assert.Equal(t, []string{"**"}, cfg.Grants)
	assert.Empty(t, cfg.MetricsAddr)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
log_format: text
tick: 100ms
quota: 250
metrics_addr: 127.0.0.1:9100
grants:
  - inventory.*
  - introspection.*
integrations:
  sorting: 1.2.0
`)

	cfg, err := Load(path, newFlags(t))
	require.NoError(t, err)

	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 100*time.Millisecond, cfg.Tick)
	assert.Equal(t, int64(250), cfg.Quota)
	assert.Equal(t, "127.0.0.1:9100", cfg.MetricsAddr)
	assert.Equal(t, []string{"inventory.*", "introspection.*"}, cfg.Grants)
	assert.Equal(t, map[string]string{"sorting": "1.2.0"}, cfg.Integrations)
}

func TestLoad_FlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, "log_format: text\nquota: 250\n")

	cfg, err := Load(path, newFlags(t, "--quota", "10", "--tick", "1s"))
	require.NoError(t, err)

	assert.Equal(t, "text", cfg.LogFormat, "unchanged flag must not override the file")
	assert.Equal(t, int64(10), cfg.Quota)
	assert.Equal(t, time.Second, cfg.Tick)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	path := writeConfig(t, "log_format: xml\n")
	_, err := Load(path, nil)
	errutil.AssertErrorCode(t, err, CodeInvalidConfig)
	errutil.AssertErrorContext(t, err, "key", "log_format")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		key    string
	}{
		{"bad format", func(c *Config) { c.LogFormat = "xml" }, "log_format"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"zero tick", func(c *Config) { c.Tick = 0 }, "tick"},
		{"negative quota", func(c *Config) { c.Quota = -1 }, "quota"},
		{"empty grant", func(c *Config) { c.Grants = []string{" "} }, "grants"},
		{"bad integration version", func(c *Config) { c.Integrations = map[string]string{"sorting": "one"} }, "integrations"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			errutil.AssertErrorCode(t, err, CodeInvalidConfig)
			errutil.AssertErrorContext(t, err, "key", tt.key)
		})
	}

	cfg := Default()
	assert.NoError(t, cfg.Validate())
}
