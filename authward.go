// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthWard Contributors

// Package authward is the embedding surface for host servers. A Service
// owns the verification pipeline, the action gate, the movement engine,
// and the join/quit lifecycle; the host adapter forwards its events to
// the matching On* handler.
package authward

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/authward/authward/internal/antibot"
	"github.com/authward/authward/internal/auth"
	"github.com/authward/authward/internal/config"
	"github.com/authward/authward/internal/exempt"
	"github.com/authward/authward/internal/gate"
	"github.com/authward/authward/internal/host"
	"github.com/authward/authward/internal/messages"
	"github.com/authward/authward/internal/movement"
	"github.com/authward/authward/internal/process"
	"github.com/authward/authward/internal/storage"
	"github.com/authward/authward/internal/verification"
)

// Hooks are the collaborators the host server supplies.
type Hooks struct {
	Messenger   messages.Messenger
	Scheduler   host.Scheduler
	Broadcaster host.Broadcaster
	Spawns      host.SpawnResolver
	Logger      *slog.Logger
}

// Service is the assembled authentication gate.
type Service struct {
	cfg       *config.Store
	accounts  storage.Store
	sessions  *auth.SessionRegistry
	sensor    *antibot.WindowSensor
	guard     *antibot.Guard
	pipeline  *verification.Pipeline
	listener  *gate.Listener
	movement  *movement.Engine
	process   *process.Manager
	messenger messages.Messenger
	logger    *slog.Logger
}

// New assembles a Service from the current settings. The antibot
// sensor's reset clears the guard's kicked-set; Close releases the
// sensor's timer.
func New(cfg *config.Store, accounts storage.Store, hooks Hooks) (*Service, error) {
	logger := hooks.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	settings := cfg.Current()

	matcher, err := exempt.NewMatcher(settings.Exemptions)
	if err != nil {
		return nil, err
	}

	sessions := auth.NewSessionRegistry()
	sensor := antibot.NewWindowSensor(antibot.WindowSensorConfig{
		Threshold:      settings.AntiBot.Sensitivity,
		Interval:       time.Duration(settings.AntiBot.IntervalSeconds) * time.Second,
		RejectDuration: time.Duration(settings.AntiBot.DurationMinutes) * time.Minute,
	})
	guard := antibot.NewGuard(cfg, sensor, logger)
	sensor.SetResetHook(guard.ClearKicked)

	g := gate.New(cfg, sessions, matcher, logger)
	engine := movement.NewEngine(cfg, sessions, hooks.Spawns, logger)
	cache := process.NewDeferredJoinMessageCache()

	return &Service{
		cfg:       cfg,
		accounts:  accounts,
		sessions:  sessions,
		sensor:    sensor,
		guard:     guard,
		pipeline:  verification.NewPipeline(cfg, guard, sessions, matcher, logger),
		listener:  gate.NewListener(g, cfg, hooks.Messenger, hooks.Scheduler),
		movement:  engine,
		process: process.NewManager(cfg, sessions, guard, accounts, engine, cache,
			hooks.Broadcaster, hooks.Scheduler, logger),
		messenger: hooks.Messenger,
		logger:    logger,
	}, nil
}

// Close releases the sensor's timer. The Service must not be used after
// Close.
func (s *Service) Close() {
	s.sensor.Close()
}

// Sessions exposes the session registry for host-side inspection.
func (s *Service) Sessions() *auth.SessionRegistry { return s.sessions }

// OnConnectionRequest runs the pre-connection pipeline. A denied request
// carries localized kick text; an antibot denial additionally marks the
// identity as forcibly kicked so the disconnect skips quit bookkeeping.
// A request arriving without a connection ID is assigned one, so every
// verification span and denial log line is correlatable.
func (s *Service) OnConnectionRequest(ctx context.Context, req *host.ConnectionRequest) error {
	if req.ConnID == (ulid.ULID{}) {
		req.ConnID = ulid.Make()
	}

	isRegistered, err := s.accounts.IsRegistered(ctx, req.Name)
	if err != nil {
		return err
	}

	outcome := s.pipeline.PreConnectionCheck(ctx, req.ConnID, req.Name, isRegistered)
	if outcome.Denied() {
		s.deny(auth.NewIdentity(req.Name), outcome, req.Deny)
	}
	return nil
}

// OnLogin runs the full-server check and the accepted-connection
// pipeline on the primary context.
func (s *Service) OnLogin(ctx context.Context, event *host.LoginEvent) error {
	if event.ConnID == (ulid.ULID{}) {
		event.ConnID = ulid.Make()
	}
	name := event.Actor.Name()
	id := auth.NewIdentity(name)

	outcome := s.pipeline.FullServerCheck(
		exempt.Subject{Name: name, Groups: event.Actor.Groups()},
		event.ServerFull,
	)
	if outcome.Denied() {
		s.deny(id, outcome, event.Deny)
		return nil
	}

	account, err := s.accounts.GetAccount(ctx, name)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	outcome = s.pipeline.ConnectionAcceptedCheck(ctx, verification.AcceptedConnection{
		ConnID:       event.ConnID,
		Identity:     id,
		Country:      event.Country,
		IsRegistered: account != nil,
		Account:      account,
	})
	if outcome.Denied() {
		s.deny(id, outcome, event.Deny)
	}
	return nil
}

func (s *Service) deny(id auth.Identity, outcome verification.Outcome, kick func(string)) {
	kick(s.messenger.Retrieve(outcome.Reason, outcome.Args...))
	if outcome.Reason == messages.KickAntibot {
		s.guard.RecordForcedKick(id)
	}
}

// WasForciblyKicked reports whether the guard terminated this name's
// connection since the last sensor reset.
func (s *Service) WasForciblyKicked(name string) bool {
	return s.guard.WasForciblyKicked(auth.NewIdentity(name))
}

// OnJoin registers the pending session and applies join broadcast policy.
func (s *Service) OnJoin(event *host.JoinEvent) error {
	return s.process.OnJoin(event)
}

// CompleteAuthentication is the external authentication-completion
// signal: it flips the session and releases any deferred join message.
func (s *Service) CompleteAuthentication(name string) error {
	return s.process.CompleteAuthentication(auth.NewIdentity(name))
}

// OnQuit terminates the session for a normal disconnect.
func (s *Service) OnQuit(ctx context.Context, event *host.QuitEvent) error {
	return s.process.OnQuit(ctx, event)
}

// OnKick terminates the session for a host-initiated kick.
func (s *Service) OnKick(ctx context.Context, event *host.KickEvent) error {
	return s.process.OnKick(ctx, event)
}

// OnMove decides and applies the movement restriction.
func (s *Service) OnMove(event *host.MoveEvent) {
	decision := s.movement.OnMove(event.Actor, event.From, event.To)
	s.movement.Apply(event, decision)
}

// OnRespawn persists the quit location and redirects an unauthenticated
// respawn to spawn.
func (s *Service) OnRespawn(ctx context.Context, event *host.RespawnEvent) error {
	return s.process.OnRespawn(ctx, event)
}

// OnChat gates a chat line.
func (s *Service) OnChat(event *host.ChatEvent) {
	s.listener.OnChat(event)
}

// OnCommand gates a typed command.
func (s *Service) OnCommand(event *host.CommandEvent) {
	s.listener.OnCommand(event)
}

// OnInventoryOpen gates an inventory UI open.
func (s *Service) OnInventoryOpen(event *host.InventoryOpenEvent) {
	s.listener.OnInventoryOpen(event)
}

// OnAction gates one of the simple world-interaction categories.
func (s *Service) OnAction(event *host.ActionEvent, category gate.Category) {
	s.listener.OnAction(event, category)
}
