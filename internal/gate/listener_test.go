// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthWard Contributors

package gate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authward/authward/internal/auth"
	"github.com/authward/authward/internal/config"
	"github.com/authward/authward/internal/exempt"
	"github.com/authward/authward/internal/gate"
	"github.com/authward/authward/internal/host"
	"github.com/authward/authward/internal/host/hosttest"
	"github.com/authward/authward/internal/messages"
	"github.com/authward/authward/internal/messages/messagestest"
)

type listenerFixture struct {
	listener  *gate.Listener
	sessions  *auth.SessionRegistry
	messenger *messagestest.Recorder
	scheduler *hosttest.Scheduler
}

func newListener(t *testing.T, mutate func(*config.Settings)) *listenerFixture {
	t.Helper()
	settings := config.Default()
	if mutate != nil {
		mutate(&settings)
	}
	store := config.NewStore(&settings)
	sessions := auth.NewSessionRegistry()
	matcher, err := exempt.NewMatcher(settings.Exemptions)
	require.NoError(t, err)

	f := &listenerFixture{
		sessions:  sessions,
		messenger: messagestest.NewRecorder(),
		scheduler: &hosttest.Scheduler{},
	}
	g := gate.New(store, sessions, matcher, nil)
	f.listener = gate.NewListener(g, store, f.messenger, f.scheduler)
	return f
}

func TestListener_OnCommand(t *testing.T) {
	t.Run("unauthenticated /spawn is denied with DENIED_COMMAND", func(t *testing.T) {
		f := newListener(t, func(s *config.Settings) {
			s.Restrictions.AllowedCommands = []string{"/login", "/register"}
		})

		event := &host.CommandEvent{Actor: hosttest.NewActor("alice"), Message: "/spawn"}
		f.listener.OnCommand(event)

		assert.True(t, event.Cancelled())
		require.Len(t, f.messenger.Sent(), 1)
		assert.Equal(t, messages.DeniedCommand, f.messenger.Sent()[0].Key)
	})

	t.Run("allow-listed commands pass while unauthenticated", func(t *testing.T) {
		f := newListener(t, nil)

		for _, line := range []string{
			"/login hunter2",
			"/register hunter2 hunter2",
			"/LOGIN hunter2", // case-insensitive
			"/l hunter2",
		} {
			event := &host.CommandEvent{Actor: hosttest.NewActor("alice"), Message: line}
			f.listener.OnCommand(event)
			assert.False(t, event.Cancelled(), "line %q", line)
		}
		assert.Empty(t, f.messenger.Sent())
	})

	t.Run("glob patterns in the allow-list match prefixes", func(t *testing.T) {
		f := newListener(t, func(s *config.Settings) {
			s.Restrictions.AllowedCommands = []string{"/auth*"}
		})

		allowed := &host.CommandEvent{Actor: hosttest.NewActor("alice"), Message: "/authenticate help"}
		f.listener.OnCommand(allowed)
		assert.False(t, allowed.Cancelled())

		denied := &host.CommandEvent{Actor: hosttest.NewActor("alice"), Message: "/home"}
		f.listener.OnCommand(denied)
		assert.True(t, denied.Cancelled())
	})

	t.Run("motd passthrough precedes everything", func(t *testing.T) {
		f := newListener(t, func(s *config.Settings) {
			s.Restrictions.MotdPassthrough = true
			s.Restrictions.AllowedCommands = nil
		})

		event := &host.CommandEvent{Actor: hosttest.NewActor("alice"), Message: "/motd"}
		f.listener.OnCommand(event)
		assert.False(t, event.Cancelled())
	})

	t.Run("authenticated actors run any command", func(t *testing.T) {
		f := newListener(t, nil)
		authenticate(t, f.sessions, "alice")

		event := &host.CommandEvent{Actor: hosttest.NewActor("alice"), Message: "/spawn"}
		f.listener.OnCommand(event)
		assert.False(t, event.Cancelled())
	})
}

func TestListener_OnChat(t *testing.T) {
	t.Run("unauthenticated sender is denied with DENIED_CHAT", func(t *testing.T) {
		f := newListener(t, nil)

		event := &host.ChatEvent{Actor: hosttest.NewActor("alice"), Message: "hello"}
		f.listener.OnChat(event)

		assert.True(t, event.Cancelled())
		require.Len(t, f.messenger.Sent(), 1)
		assert.Equal(t, messages.DeniedChat, f.messenger.Sent()[0].Key)
	})

	t.Run("allow_chat lets unauthenticated senders through", func(t *testing.T) {
		f := newListener(t, func(s *config.Settings) {
			s.Restrictions.AllowChat = true
		})

		event := &host.ChatEvent{Actor: hosttest.NewActor("alice"), Message: "hello"}
		f.listener.OnChat(event)
		assert.False(t, event.Cancelled())
	})

	t.Run("hide_chat filters unauthenticated recipients", func(t *testing.T) {
		f := newListener(t, func(s *config.Settings) {
			s.Restrictions.HideChat = true
		})
		authenticate(t, f.sessions, "alice")
		authenticate(t, f.sessions, "bob")

		bob := hosttest.NewActor("bob")
		lurker := hosttest.NewActor("lurker")
		event := &host.ChatEvent{
			Actor:      hosttest.NewActor("alice"),
			Message:    "hello",
			Recipients: []host.Actor{bob, lurker},
		}
		f.listener.OnChat(event)

		assert.False(t, event.Cancelled())
		assert.Equal(t, []host.Actor{bob}, event.Recipients)
	})

	t.Run("hide_chat denies outright when no recipients remain", func(t *testing.T) {
		f := newListener(t, func(s *config.Settings) {
			s.Restrictions.HideChat = true
		})
		authenticate(t, f.sessions, "alice")

		event := &host.ChatEvent{
			Actor:      hosttest.NewActor("alice"),
			Message:    "hello",
			Recipients: []host.Actor{hosttest.NewActor("lurker")},
		}
		f.listener.OnChat(event)

		assert.True(t, event.Cancelled())
		assert.Empty(t, event.Recipients)
	})
}

func TestListener_OnInventoryOpen(t *testing.T) {
	t.Run("denied open schedules a one-tick forced close", func(t *testing.T) {
		f := newListener(t, nil)

		actor := hosttest.NewActor("alice")
		event := &host.InventoryOpenEvent{Actor: actor}
		f.listener.OnInventoryOpen(event)

		assert.True(t, event.Cancelled())
		require.Equal(t, 1, f.scheduler.Pending())
		assert.Equal(t, int64(1), f.scheduler.MinDelay())

		f.scheduler.Run()
		assert.Equal(t, 1, actor.InventoryClosed)
	})

	t.Run("authenticated open passes untouched", func(t *testing.T) {
		f := newListener(t, nil)
		authenticate(t, f.sessions, "alice")

		event := &host.InventoryOpenEvent{Actor: hosttest.NewActor("alice")}
		f.listener.OnInventoryOpen(event)

		assert.False(t, event.Cancelled())
		assert.Zero(t, f.scheduler.Pending())
	})
}

func TestListener_OnAction(t *testing.T) {
	categories := []gate.Category{
		gate.CategoryPickup,
		gate.CategoryBlockInteract,
		gate.CategoryEntityInteract,
		gate.CategoryConsume,
		gate.CategoryInventoryClick,
		gate.CategoryDamage,
		gate.CategoryDrop,
		gate.CategoryBed,
		gate.CategorySign,
		gate.CategoryShear,
		gate.CategoryFish,
	}

	t.Run("unauthenticated actions are cancelled per category", func(t *testing.T) {
		f := newListener(t, nil)
		for _, category := range categories {
			event := &host.ActionEvent{Actor: hosttest.NewActor("alice")}
			f.listener.OnAction(event, category)
			assert.True(t, event.Cancelled(), "category %s", category)
		}
	})

	t.Run("unrestricted categories pass", func(t *testing.T) {
		f := newListener(t, func(s *config.Settings) {
			s.Restrictions.UnrestrictedActions = []string{"fish", "pickup"}
		})
		for _, category := range []gate.Category{gate.CategoryFish, gate.CategoryPickup} {
			event := &host.ActionEvent{Actor: hosttest.NewActor("alice")}
			f.listener.OnAction(event, category)
			assert.False(t, event.Cancelled(), "category %s", category)
		}
	})
}
