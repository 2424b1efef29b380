// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthWard Contributors

package process

import (
	"context"
	"errors"
	"log/slog"

	"github.com/authward/authward/internal/antibot"
	"github.com/authward/authward/internal/auth"
	"github.com/authward/authward/internal/config"
	"github.com/authward/authward/internal/host"
	"github.com/authward/authward/internal/movement"
	"github.com/authward/authward/internal/observability"
	"github.com/authward/authward/internal/storage"
)

// joinFinalizeDelayTicks is the delay before join finalization runs on
// the primary context.
const joinFinalizeDelayTicks = 1

// Manager owns the join and quit lifecycle. It registers the pending
// session, handles join/quit broadcast policy, persists the quit
// location, and releases the deferred join message when authentication
// completes.
type Manager struct {
	cfg         *config.Store
	sessions    *auth.SessionRegistry
	guard       *antibot.Guard
	store       storage.Store
	movement    *movement.Engine
	cache       *DeferredJoinMessageCache
	broadcaster host.Broadcaster
	scheduler   host.Scheduler
	logger      *slog.Logger
}

// NewManager wires the manager's collaborators.
func NewManager(
	cfg *config.Store,
	sessions *auth.SessionRegistry,
	guard *antibot.Guard,
	store storage.Store,
	engine *movement.Engine,
	cache *DeferredJoinMessageCache,
	broadcaster host.Broadcaster,
	scheduler host.Scheduler,
	logger *slog.Logger,
) *Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{
		cfg:         cfg,
		sessions:    sessions,
		guard:       guard,
		store:       store,
		movement:    engine,
		cache:       cache,
		broadcaster: broadcaster,
		scheduler:   scheduler,
		logger:      logger,
	}
}

// OnJoin registers the pending session and applies the join broadcast
// policy. Finalization runs one tick later on the primary context.
func (m *Manager) OnJoin(event *host.JoinEvent) error {
	id := auth.NewIdentity(event.Actor.Name())
	settings := m.cfg.Current()

	if err := m.sessions.Register(id); err != nil {
		return err
	}

	switch {
	case settings.Registration.RemoveJoinMessages:
		event.SuppressBroadcast()
	case settings.Registration.DelayJoinMessage && event.Broadcast != nil:
		m.cache.Put(id, *event.Broadcast)
		event.SuppressBroadcast()
	}

	m.scheduler.RunTaskLater(func() { m.finalizeJoin(id) }, joinFinalizeDelayTicks)
	return nil
}

func (m *Manager) finalizeJoin(id auth.Identity) {
	observability.SetActiveSessions(m.sessions.Count())
	m.logger.Info("join finalized", "identity", id.Key())
}

// CompleteAuthentication flips the session's authenticated flag and
// releases the deferred join message, if one was withheld.
func (m *Manager) CompleteAuthentication(id auth.Identity) error {
	if err := m.sessions.MarkAuthenticated(id); err != nil {
		return err
	}
	if message, ok := m.cache.TakeAndClear(id); ok {
		m.broadcaster.Broadcast(message)
	}
	m.logger.Info("authentication completed", "identity", id.Key())
	return nil
}

// OnQuit applies the quit broadcast policy and terminates the session.
// The antibot kicked-set is consulted first: guard-initiated disconnects
// skip the normal bookkeeping. A quit-location write failure propagates
// to the caller, is not retried, and the session is unregistered either
// way.
func (m *Manager) OnQuit(ctx context.Context, event *host.QuitEvent) error {
	if m.cfg.Current().Registration.RemoveLeaveMessages {
		event.SuppressBroadcast()
	}
	return m.terminate(ctx, event.Actor)
}

// OnKick terminates the session for a host-initiated kick.
func (m *Manager) OnKick(ctx context.Context, event *host.KickEvent) error {
	return m.terminate(ctx, event.Actor)
}

func (m *Manager) terminate(ctx context.Context, actor host.Actor) error {
	id := auth.NewIdentity(actor.Name())

	if m.guard.WasForciblyKicked(id) {
		m.sessions.Unregister(id)
		observability.SetActiveSessions(m.sessions.Count())
		m.logger.Debug("forced disconnect, quit bookkeeping skipped", "identity", id.Key())
		return nil
	}

	err := m.persistQuitLocation(ctx, id, actor.Location())

	m.sessions.Unregister(id)
	observability.SetActiveSessions(m.sessions.Count())
	return err
}

// persistQuitLocation writes the quit location when persistence is on
// and the account exists. A missing account is not an error.
func (m *Manager) persistQuitLocation(ctx context.Context, id auth.Identity, loc host.Location) error {
	if !m.cfg.Current().Restrictions.SaveQuitLocation {
		return nil
	}
	m.sessions.SetQuitLocation(id, loc)
	err := m.store.UpdateQuitLocation(ctx, id.Key(), loc)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	return err
}

// OnRespawn persists the quit location before the respawn redirect, then
// delegates the redirect itself to the movement engine.
func (m *Manager) OnRespawn(ctx context.Context, event *host.RespawnEvent) error {
	id := auth.NewIdentity(event.Actor.Name())

	var err error
	if !m.sessions.IsAuthenticated(id) {
		err = m.persistQuitLocation(ctx, id, event.Actor.Location())
	}
	m.movement.OnRespawn(event)
	return err
}
