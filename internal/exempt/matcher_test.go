// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthWard Contributors

package exempt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authward/authward/internal/config"
	"github.com/authward/authward/internal/exempt"
)

func mustMatcher(t *testing.T, settings config.ExemptionSettings) *exempt.Matcher {
	t.Helper()
	m, err := exempt.NewMatcher(settings)
	require.NoError(t, err)
	return m
}

func TestMatcher_Exempt(t *testing.T) {
	t.Run("no exemptions configured", func(t *testing.T) {
		m := mustMatcher(t, config.ExemptionSettings{})
		assert.False(t, m.Exempt(exempt.Subject{Name: "Alice"}))
	})

	t.Run("name is matches case-insensitively", func(t *testing.T) {
		m := mustMatcher(t, config.ExemptionSettings{
			Rules: []string{`name is "Console"`},
		})
		assert.True(t, m.Exempt(exempt.Subject{Name: "console"}))
		assert.False(t, m.Exempt(exempt.Subject{Name: "consoles"}))
	})

	t.Run("group is matches any group", func(t *testing.T) {
		m := mustMatcher(t, config.ExemptionSettings{
			Rules: []string{`group is "staff"`},
		})
		assert.True(t, m.Exempt(exempt.Subject{Name: "Alice", Groups: []string{"builder", "Staff"}}))
		assert.False(t, m.Exempt(exempt.Subject{Name: "Bob", Groups: []string{"builder"}}))
		assert.False(t, m.Exempt(exempt.Subject{Name: "Carol"}))
	})

	t.Run("like matches glob patterns", func(t *testing.T) {
		m := mustMatcher(t, config.ExemptionSettings{
			Rules: []string{`name like "Admin*"`},
		})
		assert.True(t, m.Exempt(exempt.Subject{Name: "AdminBot"}))
		assert.True(t, m.Exempt(exempt.Subject{Name: "admin_7"}))
		assert.False(t, m.Exempt(exempt.Subject{Name: "SubAdmin"}))
	})

	t.Run("conjunction requires all predicates", func(t *testing.T) {
		m := mustMatcher(t, config.ExemptionSettings{
			Rules: []string{`group is "staff" and group is "vetted"`},
		})
		assert.True(t, m.Exempt(exempt.Subject{Groups: []string{"staff", "vetted"}}))
		assert.False(t, m.Exempt(exempt.Subject{Groups: []string{"staff"}}))
	})

	t.Run("negation", func(t *testing.T) {
		m := mustMatcher(t, config.ExemptionSettings{
			Rules: []string{`group is "staff" and not name is "Trainee"`},
		})
		assert.True(t, m.Exempt(exempt.Subject{Name: "Alice", Groups: []string{"staff"}}))
		assert.False(t, m.Exempt(exempt.Subject{Name: "Trainee", Groups: []string{"staff"}}))
	})

	t.Run("any exempts everyone", func(t *testing.T) {
		m := mustMatcher(t, config.ExemptionSettings{Rules: []string{`any`}})
		assert.True(t, m.Exempt(exempt.Subject{Name: "whoever"}))
	})

	t.Run("rules are disjunctive across the list", func(t *testing.T) {
		m := mustMatcher(t, config.ExemptionSettings{
			Rules: []string{`name is "Console"`, `group is "staff"`},
		})
		assert.True(t, m.Exempt(exempt.Subject{Name: "Console"}))
		assert.True(t, m.Exempt(exempt.Subject{Name: "Bob", Groups: []string{"staff"}}))
		assert.False(t, m.Exempt(exempt.Subject{Name: "Bob"}))
	})
}

func TestMatcher_UnrestrictedName(t *testing.T) {
	m := mustMatcher(t, config.ExemptionSettings{
		UnrestrictedNames: []string{"NPC_*", "camera"},
	})

	assert.True(t, m.UnrestrictedName("NPC_Guard"))
	assert.True(t, m.UnrestrictedName("npc_vendor"))
	assert.True(t, m.UnrestrictedName("Camera"))
	assert.False(t, m.UnrestrictedName("Player"))

	// Unrestricted names exempt through the main entry point too.
	assert.True(t, m.Exempt(exempt.Subject{Name: "NPC_Guard"}))
}

func TestNewMatcher_Invalid(t *testing.T) {
	t.Run("bad rule", func(t *testing.T) {
		_, err := exempt.NewMatcher(config.ExemptionSettings{
			Rules: []string{`name resembles "x"`},
		})
		require.Error(t, err)
	})

	t.Run("bad glob pattern", func(t *testing.T) {
		_, err := exempt.NewMatcher(config.ExemptionSettings{
			UnrestrictedNames: []string{"["},
		})
		require.Error(t, err)
	})
}
