// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthWard Contributors

package verification_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authward/authward/internal/antibot"
	"github.com/authward/authward/internal/auth"
	"github.com/authward/authward/internal/config"
	"github.com/authward/authward/internal/exempt"
	"github.com/authward/authward/internal/messages"
	"github.com/authward/authward/internal/storage"
	"github.com/authward/authward/internal/verification"
)

// fixedSensor reports a constant burst judgement.
type fixedSensor struct{ rejecting bool }

func (s *fixedSensor) RecordConnection() {}
func (s *fixedSensor) Rejecting() bool   { return s.rejecting }

type pipelineFixture struct {
	settings config.Settings
	store    *config.Store
	sessions *auth.SessionRegistry
	sensor   *fixedSensor
}

func newPipeline(t *testing.T, mutate func(*config.Settings)) (*verification.Pipeline, *pipelineFixture) {
	t.Helper()
	f := &pipelineFixture{
		settings: config.Default(),
		sessions: auth.NewSessionRegistry(),
		sensor:   &fixedSensor{},
	}
	f.settings.AntiBot.Enabled = true
	if mutate != nil {
		mutate(&f.settings)
	}
	f.store = config.NewStore(&f.settings)

	guard := antibot.NewGuard(f.store, f.sensor, nil)
	matcher, err := exempt.NewMatcher(f.settings.Exemptions)
	require.NoError(t, err)
	return verification.NewPipeline(f.store, guard, f.sessions, matcher, nil), f
}

func TestPreConnectionCheck(t *testing.T) {
	ctx := context.Background()
	connID := ulid.Make()

	t.Run("clean connection is allowed", func(t *testing.T) {
		p, _ := newPipeline(t, nil)
		out := p.PreConnectionCheck(ctx, connID, "Alice", true)
		assert.False(t, out.Denied())
	})

	t.Run("reject-mode guard denies unregistered identities first", func(t *testing.T) {
		p, f := newPipeline(t, func(s *config.Settings) {
			// Invalid name too, to prove antibot wins the ordering.
			s.Names.MinLength = 20
		})
		f.sensor.rejecting = true

		out := p.PreConnectionCheck(ctx, connID, "Intruder", false)
		require.True(t, out.Denied())
		assert.Equal(t, messages.KickAntibot, out.Reason)
	})

	t.Run("forced registration denies unregistered identities", func(t *testing.T) {
		p, _ := newPipeline(t, func(s *config.Settings) {
			s.Registration.Force = true
		})
		out := p.PreConnectionCheck(ctx, connID, "Newcomer", false)
		require.True(t, out.Denied())
		assert.Equal(t, messages.KickNotRegistered, out.Reason)
	})

	t.Run("uncompilable pattern disables the character check", func(t *testing.T) {
		// Load-time validation rejects this, but the store can be
		// replaced at runtime; length bounds still apply.
		p, _ := newPipeline(t, func(s *config.Settings) {
			s.Names.Pattern = "["
		})
		out := p.PreConnectionCheck(ctx, connID, "bad name", true)
		assert.False(t, out.Denied())
	})

	t.Run("name validity", func(t *testing.T) {
		p, _ := newPipeline(t, nil)

		for name, wantDenied := range map[string]bool{
			"Alice":             false,
			"ab":                true, // below min length
			"seventeen_chars__": true, // above max length
			"bad name":          true, // space fails the pattern
			"café":              true, // non-ASCII fails the pattern
		} {
			out := p.PreConnectionCheck(ctx, connID, name, true)
			assert.Equal(t, wantDenied, out.Denied(), "name %q", name)
			if wantDenied {
				assert.Equal(t, messages.KickInvalidName, out.Reason, "name %q", name)
			}
		}
	})
}

func TestConnectionAcceptedCheck(t *testing.T) {
	ctx := context.Background()

	accepted := func(name string, account *storage.Account) verification.AcceptedConnection {
		return verification.AcceptedConnection{
			ConnID:       ulid.Make(),
			Identity:     auth.NewIdentity(name),
			Country:      "DE",
			IsRegistered: account != nil,
			Account:      account,
		}
	}

	t.Run("registered account with matching casing is allowed", func(t *testing.T) {
		p, _ := newPipeline(t, nil)
		out := p.ConnectionAcceptedCheck(ctx, accepted("Alice",
			&storage.Account{Name: "alice", DisplayName: "Alice"}))
		assert.False(t, out.Denied())
	})

	t.Run("casing drift is denied with the registered casing", func(t *testing.T) {
		p, _ := newPipeline(t, nil)
		out := p.ConnectionAcceptedCheck(ctx, accepted("ALICE",
			&storage.Account{Name: "alice", DisplayName: "Alice"}))
		require.True(t, out.Denied())
		assert.Equal(t, messages.KickInvalidCase, out.Reason)
		assert.Equal(t, []string{"Alice"}, out.Args)
	})

	t.Run("casing drift is tolerated when configured", func(t *testing.T) {
		p, _ := newPipeline(t, func(s *config.Settings) {
			s.Restrictions.AcceptCaseDrift = true
		})
		out := p.ConnectionAcceptedCheck(ctx, accepted("ALICE",
			&storage.Account{Name: "alice", DisplayName: "Alice"}))
		assert.False(t, out.Denied())
	})

	t.Run("second session for a live identity is denied", func(t *testing.T) {
		p, f := newPipeline(t, nil)
		require.NoError(t, f.sessions.Register(auth.NewIdentity("Alice")))

		out := p.ConnectionAcceptedCheck(ctx, accepted("alice",
			&storage.Account{Name: "alice", DisplayName: "alice"}))
		require.True(t, out.Denied())
		assert.Equal(t, messages.KickAlreadyOnline, out.Reason)
	})

	t.Run("second session is allowed when single-session is off", func(t *testing.T) {
		p, f := newPipeline(t, func(s *config.Settings) {
			s.Restrictions.ForceSingleSession = false
		})
		require.NoError(t, f.sessions.Register(auth.NewIdentity("Alice")))

		out := p.ConnectionAcceptedCheck(ctx, accepted("alice",
			&storage.Account{Name: "alice", DisplayName: "alice"}))
		assert.False(t, out.Denied())
	})

	t.Run("country filter", func(t *testing.T) {
		p, _ := newPipeline(t, func(s *config.Settings) {
			s.Protection.Enabled = true
			s.Protection.CountryBlacklist = []string{"DE"}
		})

		t.Run("blacklisted country denies first-time connections", func(t *testing.T) {
			out := p.ConnectionAcceptedCheck(ctx, accepted("Newcomer", nil))
			require.True(t, out.Denied())
			assert.Equal(t, messages.KickCountryBanned, out.Reason)
			assert.Equal(t, []string{"DE"}, out.Args)
		})

		t.Run("registered identities bypass the filter", func(t *testing.T) {
			out := p.ConnectionAcceptedCheck(ctx, accepted("Alice",
				&storage.Account{Name: "alice", DisplayName: "Alice"}))
			assert.False(t, out.Denied())
		})
	})

	t.Run("verdicts match the pre-connection pipeline", func(t *testing.T) {
		// Same identity and flags must produce the same verdict through
		// either entry point for the checks both pipelines share.
		p, _ := newPipeline(t, func(s *config.Settings) {
			s.Registration.Force = true
		})

		pre := p.PreConnectionCheck(ctx, ulid.Make(), "Newcomer", false)
		post := p.ConnectionAcceptedCheck(ctx, accepted("Newcomer", nil))
		require.True(t, pre.Denied())
		require.True(t, post.Denied())
		assert.Equal(t, pre.Reason, post.Reason)
	})
}

func TestDenialCarriesConnectionID(t *testing.T) {
	var buf bytes.Buffer
	settings := config.Default()
	settings.Registration.Force = true
	store := config.NewStore(&settings)

	guard := antibot.NewGuard(store, &fixedSensor{}, nil)
	matcher, err := exempt.NewMatcher(settings.Exemptions)
	require.NoError(t, err)
	p := verification.NewPipeline(store, guard, auth.NewSessionRegistry(), matcher,
		slog.New(slog.NewTextHandler(&buf, nil)))

	connID := ulid.Make()
	out := p.PreConnectionCheck(context.Background(), connID, "Newcomer", false)
	require.True(t, out.Denied())
	assert.Contains(t, buf.String(), connID.String())
}

func TestFullServerCheck(t *testing.T) {
	t.Run("not full allows", func(t *testing.T) {
		p, _ := newPipeline(t, nil)
		assert.False(t, p.FullServerCheck(exempt.Subject{Name: "Alice"}, false).Denied())
	})

	t.Run("full server denies", func(t *testing.T) {
		p, _ := newPipeline(t, nil)
		out := p.FullServerCheck(exempt.Subject{Name: "Alice"}, true)
		require.True(t, out.Denied())
		assert.Equal(t, messages.KickServerFull, out.Reason)
	})

	t.Run("exempt subject joins a full server", func(t *testing.T) {
		p, _ := newPipeline(t, func(s *config.Settings) {
			s.Exemptions.Rules = []string{`group is "staff"`}
		})
		out := p.FullServerCheck(exempt.Subject{Name: "Alice", Groups: []string{"staff"}}, true)
		assert.False(t, out.Denied())
	})
}
