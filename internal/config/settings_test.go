// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthWard Contributors

package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authward/authward/internal/config"
	"github.com/authward/authward/pkg/errutil"
)

func TestDefault(t *testing.T) {
	s := config.Default()
	require.NoError(t, s.Validate())

	assert.Equal(t, "1.0.0", s.SchemaVersion)
	assert.Contains(t, s.Restrictions.AllowedCommands, "/login")
	assert.Contains(t, s.Restrictions.AllowedCommands, "/register")
	assert.True(t, s.Restrictions.ForceSingleSession)
	assert.False(t, s.Restrictions.AllowChat)
}

func TestSettings_Validate(t *testing.T) {
	t.Run("rejects unsupported schema version", func(t *testing.T) {
		s := config.Default()
		s.SchemaVersion = "2.0.0"
		errutil.AssertErrorCode(t, s.Validate(), config.CodeConfigSchemaVersion)
	})

	t.Run("rejects unparseable schema version", func(t *testing.T) {
		s := config.Default()
		s.SchemaVersion = "not-a-version"
		errutil.AssertErrorCode(t, s.Validate(), config.CodeConfigSchemaVersion)
	})

	t.Run("accepts any 1.x version", func(t *testing.T) {
		s := config.Default()
		s.SchemaVersion = "1.3.0"
		require.NoError(t, s.Validate())
	})

	t.Run("rejects negative movement radius", func(t *testing.T) {
		s := config.Default()
		s.Restrictions.AllowedMovementRadius = -1
		errutil.AssertErrorCode(t, s.Validate(), config.CodeConfigInvalid)
	})

	t.Run("rejects inconsistent name bounds", func(t *testing.T) {
		s := config.Default()
		s.Names.MinLength = 10
		s.Names.MaxLength = 3
		errutil.AssertErrorCode(t, s.Validate(), config.CodeConfigInvalid)
	})

	t.Run("rejects invalid name pattern", func(t *testing.T) {
		s := config.Default()
		s.Names.Pattern = "([unclosed"
		errutil.AssertErrorCode(t, s.Validate(), config.CodeConfigInvalid)
	})

	t.Run("rejects zero antibot sensitivity", func(t *testing.T) {
		s := config.Default()
		s.AntiBot.Sensitivity = 0
		errutil.AssertErrorCode(t, s.Validate(), config.CodeConfigInvalid)
	})
}

func TestRestrictionSettings_Restricts(t *testing.T) {
	t.Run("chat follows allow_chat", func(t *testing.T) {
		r := config.RestrictionSettings{}
		assert.True(t, r.Restricts("chat"))
		r.AllowChat = true
		assert.False(t, r.Restricts("chat"))
	})

	t.Run("other categories restricted by default", func(t *testing.T) {
		r := config.RestrictionSettings{}
		for _, cat := range []string{"pickup", "interact", "fish", "command"} {
			assert.True(t, r.Restricts(cat), cat)
		}
	})

	t.Run("unrestricted_actions disables a category", func(t *testing.T) {
		r := config.RestrictionSettings{UnrestrictedActions: []string{"Fish"}}
		assert.False(t, r.Restricts("fish"), "match is case-insensitive")
		assert.True(t, r.Restricts("pickup"))
	})
}

func TestProtectionSettings_CountryAdmitted(t *testing.T) {
	t.Run("disabled admits everything", func(t *testing.T) {
		p := config.ProtectionSettings{CountryBlacklist: []string{"XX"}}
		assert.True(t, p.CountryAdmitted("XX"))
	})

	t.Run("blacklist wins over empty whitelist", func(t *testing.T) {
		p := config.ProtectionSettings{Enabled: true, CountryBlacklist: []string{"XX"}}
		assert.False(t, p.CountryAdmitted("xx"))
		assert.True(t, p.CountryAdmitted("DE"))
	})

	t.Run("non-empty whitelist is exclusive", func(t *testing.T) {
		p := config.ProtectionSettings{Enabled: true, CountryWhitelist: []string{"DE", "FR"}}
		assert.True(t, p.CountryAdmitted("de"))
		assert.False(t, p.CountryAdmitted("US"))
	})
}
