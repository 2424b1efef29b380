// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthWard Contributors

package auth_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authward/authward/internal/auth"
	"github.com/authward/authward/internal/host"
	"github.com/authward/authward/pkg/errutil"
)

func TestSessionRegistry_Register(t *testing.T) {
	t.Run("creates a pending session", func(t *testing.T) {
		reg := auth.NewSessionRegistry()
		id := auth.NewIdentity("Alice")

		require.NoError(t, reg.Register(id))

		assert.True(t, reg.IsActive(id))
		assert.False(t, reg.IsAuthenticated(id), "freshly registered session must be pending")
	})

	t.Run("second register without unregister fails", func(t *testing.T) {
		reg := auth.NewSessionRegistry()
		id := auth.NewIdentity("Alice")

		require.NoError(t, reg.Register(id))
		err := reg.Register(id)

		errutil.AssertErrorCode(t, err, auth.CodeSessionAlreadyActive)
	})

	t.Run("register after unregister succeeds", func(t *testing.T) {
		reg := auth.NewSessionRegistry()
		id := auth.NewIdentity("Alice")

		require.NoError(t, reg.Register(id))
		reg.Unregister(id)
		require.NoError(t, reg.Register(id))
	})

	t.Run("single-session invariant holds across casing", func(t *testing.T) {
		reg := auth.NewSessionRegistry()

		require.NoError(t, reg.Register(auth.NewIdentity("Alice")))
		err := reg.Register(auth.NewIdentity("ALICE"))

		errutil.AssertErrorCode(t, err, auth.CodeSessionAlreadyActive)
	})

	t.Run("concurrent registers admit exactly one", func(t *testing.T) {
		reg := auth.NewSessionRegistry()
		id := auth.NewIdentity("Alice")

		const attempts = 32
		errs := make([]error, attempts)
		var wg sync.WaitGroup
		for i := range attempts {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs[i] = reg.Register(id)
			}()
		}
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
			}
		}
		assert.Equal(t, 1, succeeded)
		assert.Equal(t, 1, reg.Count())
	})
}

func TestSessionRegistry_Unregister(t *testing.T) {
	t.Run("idempotent for absent identities", func(t *testing.T) {
		reg := auth.NewSessionRegistry()
		reg.Unregister(auth.NewIdentity("ghost")) // must not panic or error
		assert.Zero(t, reg.Count())
	})

	t.Run("removes the session", func(t *testing.T) {
		reg := auth.NewSessionRegistry()
		id := auth.NewIdentity("Bob")
		require.NoError(t, reg.Register(id))

		reg.Unregister(id)

		assert.False(t, reg.IsActive(id))
		assert.False(t, reg.IsAuthenticated(id))
	})
}

func TestSessionRegistry_MarkAuthenticated(t *testing.T) {
	t.Run("flips the pending session", func(t *testing.T) {
		reg := auth.NewSessionRegistry()
		id := auth.NewIdentity("Carol")
		require.NoError(t, reg.Register(id))

		require.NoError(t, reg.MarkAuthenticated(id))

		assert.True(t, reg.IsAuthenticated(id))
	})

	t.Run("fails without a session", func(t *testing.T) {
		reg := auth.NewSessionRegistry()
		err := reg.MarkAuthenticated(auth.NewIdentity("ghost"))
		errutil.AssertErrorCode(t, err, auth.CodeSessionNotFound)
	})
}

func TestSessionRegistry_QuitLocation(t *testing.T) {
	reg := auth.NewSessionRegistry()
	id := auth.NewIdentity("Dave")
	require.NoError(t, reg.Register(id))

	loc := host.Location{World: "overworld", X: 1, Y: 64, Z: -3}
	reg.SetQuitLocation(id, loc)

	session := reg.Get(id)
	require.NotNil(t, session)
	require.NotNil(t, session.LastQuitAt)
	assert.Equal(t, loc, *session.LastQuitAt)

	// Get returns a copy; mutating it must not affect the registry.
	session.LastQuitAt.X = 99
	again := reg.Get(id)
	assert.Equal(t, 1.0, again.LastQuitAt.X)
}

func TestSessionRegistry_RegisterMany(t *testing.T) {
	// Register twice without an intervening unregister fails for all
	// identities, not just a special-cased few.
	reg := auth.NewSessionRegistry()
	for i := range 20 {
		id := auth.NewIdentity(fmt.Sprintf("player%d", i))
		require.NoError(t, reg.Register(id))
		errutil.AssertErrorCode(t, reg.Register(id), auth.CodeSessionAlreadyActive)
	}
	assert.Equal(t, 20, reg.Count())
}
