// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package script loads automation scripts and their manifests.
package script

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

// ManifestFile is the manifest name inside a script directory.
const ManifestFile = "script.yaml"

// CodeInvalidManifest is the oops code for rejected manifests and scripts.
const CodeInvalidManifest = "INVALID_MANIFEST"

// Manifest describes a script.
type Manifest struct {
	Name        string `yaml:"name" json:"name" jsonschema:"pattern=^[a-z]([a-z0-9-]*[a-z0-9])?$,maxLength=64"`
	Version     string `yaml:"version" json:"version" jsonschema:"minLength=1"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	// Entry is the Lua file defining main(peripheral), relative to the
	// script directory.
	Entry string `yaml:"entry" json:"entry" jsonschema:"minLength=1"`
	// Grants are capability patterns ("inventory.*") the script may use.
	Grants []string `yaml:"grants,omitempty" json:"grants,omitempty"`
	// Requires maps integration names to semver constraints that must be
	// satisfied by the installed integrations.
	Requires map[string]string `yaml:"requires,omitempty" json:"requires,omitempty"`
}

const maxNameLength = 64

var namePattern = regexp.MustCompile(`^[a-z]([a-z0-9-]*[a-z0-9])?$`)

// ParseManifest parses and validates a script.yaml file.
func ParseManifest(data []byte) (*Manifest, error) {
	if len(data) == 0 {
		return nil, oops.Code(CodeInvalidManifest).Errorf("manifest data is empty")
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, oops.Code(CodeInvalidManifest).Wrapf(err, "invalid YAML")
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks manifest constraints.
func (m *Manifest) Validate() error {
	if m.Name == "" || !namePattern.MatchString(m.Name) {
		return oops.Code(CodeInvalidManifest).
			With("name", m.Name).
			Errorf("name %q must start with a-z, contain only a-z, 0-9, hyphens, and not end with a hyphen", m.Name)
	}
	if len(m.Name) > maxNameLength {
		return oops.Code(CodeInvalidManifest).
			Errorf("name must be %d characters or less, got %d", maxNameLength, len(m.Name))
	}
	if _, err := semver.NewVersion(m.Version); err != nil {
		return oops.Code(CodeInvalidManifest).
			With("version", m.Version).
			Wrapf(err, "version %q is not a semantic version", m.Version)
	}
	if m.Entry == "" {
		return oops.Code(CodeInvalidManifest).Errorf("entry is required")
	}
	if filepath.IsAbs(m.Entry) || strings.HasPrefix(filepath.Clean(m.Entry), "..") {
		return oops.Code(CodeInvalidManifest).
			With("entry", m.Entry).
			Errorf("entry must stay inside the script directory")
	}
	for mod, constraint := range m.Requires {
		if _, err := semver.NewConstraint(constraint); err != nil {
			return oops.Code(CodeInvalidManifest).
				With("integration", mod).
				With("constraint", constraint).
				Wrapf(err, "requires.%s", mod)
		}
	}
	return nil
}

// CheckRequirements verifies every required integration is installed at a
// satisfying version.
func (m *Manifest) CheckRequirements(installed map[string]string) error {
	for mod, constraint := range m.Requires {
		version, ok := installed[mod]
		if !ok {
			return oops.Code(CodeInvalidManifest).
				With("script", m.Name).
				With("integration", mod).
				Errorf("script %s requires integration %s which is not installed", m.Name, mod)
		}
		c, err := semver.NewConstraint(constraint)
		if err != nil {
			return oops.Code(CodeInvalidManifest).Wrapf(err, "requires.%s", mod)
		}
		v, err := semver.NewVersion(version)
		if err != nil {
			return oops.Code(CodeInvalidManifest).Wrapf(err, "installed %s version", mod)
		}
		if !c.Check(v) {
			return oops.Code(CodeInvalidManifest).
				With("script", m.Name).
				With("integration", mod).
				With("installed", version).
				With("constraint", constraint).
				Errorf("script %s requires %s %s, installed %s", m.Name, mod, constraint, version)
		}
	}
	return nil
}

// Script is a loaded script ready to run.
type Script struct {
	Manifest *Manifest
	Code     string
}

// Load reads a script from path. A directory must hold a script.yaml
// manifest; a single .lua file gets a manifest named after the file, with
// no grants of its own.
func Load(path string) (*Script, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, oops.Code(CodeInvalidManifest).With("path", path).Wrap(err)
	}
	if !info.IsDir() {
		return loadFile(path)
	}

	data, err := os.ReadFile(filepath.Join(path, ManifestFile)) //nolint:gosec // operator supplied path
	if err != nil {
		return nil, oops.Code(CodeInvalidManifest).With("path", path).Wrapf(err, "read manifest")
	}
	if err := ValidateSchema(data); err != nil {
		return nil, oops.Code(CodeInvalidManifest).With("path", path).Wrap(err)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, err
	}

	code, err := os.ReadFile(filepath.Join(path, filepath.Clean(m.Entry))) //nolint:gosec // validated to stay inside path
	if err != nil {
		return nil, oops.Code(CodeInvalidManifest).With("entry", m.Entry).Wrapf(err, "read entry")
	}
	return &Script{Manifest: m, Code: string(code)}, nil
}

func loadFile(path string) (*Script, error) {
	if filepath.Ext(path) != ".lua" {
		return nil, oops.Code(CodeInvalidManifest).
			With("path", path).
			Errorf("script file must have a .lua extension")
	}
	code, err := os.ReadFile(path) //nolint:gosec // operator supplied path
	if err != nil {
		return nil, oops.Code(CodeInvalidManifest).With("path", path).Wrap(err)
	}

	name := strings.ToLower(strings.TrimSuffix(filepath.Base(path), ".lua"))
	name = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return '-'
	}, name)
	name = strings.TrimRight(strings.TrimLeft(name, "-0123456789"), "-")
	if name == "" {
		name = "script"
	}

	m := &Manifest{Name: name, Version: "0.0.0", Entry: filepath.Base(path)}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &Script{Manifest: m, Code: string(code)}, nil
}
