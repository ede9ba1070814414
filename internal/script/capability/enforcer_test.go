// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package capability_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/periscope/internal/method"
	"github.com/holomush/periscope/internal/script/capability"
	"github.com/holomush/periscope/pkg/errutil"
)

var _ method.Gate = (*capability.Enforcer)(nil)

func TestEnforcer_Check(t *testing.T) {
	tests := []struct {
		name       string
		grants     []string
		capability string
		want       bool
	}{
		{"exact match", []string{"inventory.size"}, "inventory.size", true},
		{"module wildcard", []string{"inventory.*"}, "inventory.pushItems", true},
		{"method wildcard", []string{"*.getName"}, "player.getName", true},
		{"wildcard does not cross segments", []string{"*"}, "inventory.size", false},
		{"super wildcard", []string{"**"}, "inventory.size", true},
		{"no match", []string{"slot.*"}, "inventory.size", false},
		{"prefix is not a match", []string{"inventory"}, "inventory.size", false},
		{"empty grants", []string{}, "inventory.size", false},
		{"empty capability", []string{"**"}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := capability.NewEnforcer()
			require.NoError(t, e.SetGrants("sorter", tt.grants))
			assert.Equal(t, tt.want, e.Check("sorter", tt.capability))
		})
	}
}

func TestEnforcer_UnknownScriptIsDenied(t *testing.T) {
	var e capability.Enforcer
	assert.False(t, e.Check("unknown", "inventory.size"))
	assert.Nil(t, e.Grants("unknown"))
}

func TestEnforcer_SetGrantsIsAtomic(t *testing.T) {
	e := capability.NewEnforcer()
	require.NoError(t, e.SetGrants("sorter", []string{"inventory.*"}))

	err := e.SetGrants("sorter", []string{"slot.*", "[unclosed"})
	errutil.AssertErrorCode(t, err, capability.CodeInvalidGrant)
	assert.Equal(t, []string{"inventory.*"}, e.Grants("sorter"))

	err = e.SetGrants("sorter", []string{""})
	errutil.AssertErrorCode(t, err, capability.CodeInvalidGrant)

	err = e.SetGrants("", []string{"**"})
	errutil.AssertErrorCode(t, err, capability.CodeInvalidGrant)
}

func TestEnforcer_GrantsAreCopied(t *testing.T) {
	e := capability.NewEnforcer()
	patterns := []string{"inventory.*"}
	require.NoError(t, e.SetGrants("sorter", patterns))

	patterns[0] = "**"
	got := e.Grants("sorter")
	got[0] = "**"

	assert.Equal(t, []string{"inventory.*"}, e.Grants("sorter"))
	assert.False(t, e.Check("sorter", "slot.count"))
}

func TestEnforcer_ScriptsAndRemove(t *testing.T) {
	e := capability.NewEnforcer()
	require.NoError(t, e.SetGrants("b", nil))
	require.NoError(t, e.SetGrants("a", []string{"**"}))
	assert.Equal(t, []string{"a", "b"}, e.Scripts())

	e.RemoveGrants("a")
	e.RemoveGrants("missing")
	assert.Equal(t, []string{"b"}, e.Scripts())
	assert.False(t, e.Check("a", "inventory.size"))
}
