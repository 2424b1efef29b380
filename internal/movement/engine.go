// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthWard Contributors

// Package movement restricts where unauthenticated actors can go.
package movement

import (
	"log/slog"

	"github.com/authward/authward/internal/auth"
	"github.com/authward/authward/internal/config"
	"github.com/authward/authward/internal/host"
	"github.com/authward/authward/internal/observability"
)

// Kind discriminates movement decisions.
type Kind int

// The decision kinds.
const (
	Allow Kind = iota
	RevertToOrigin
	TeleportTo
)

// String returns the metric label for the kind.
func (k Kind) String() string {
	switch k {
	case RevertToOrigin:
		return "revert"
	case TeleportTo:
		return "teleport"
	default:
		return "allow"
	}
}

// Decision is the engine's verdict for one movement. Target is only
// meaningful for TeleportTo.
type Decision struct {
	Kind   Kind
	Target host.Location
}

// Engine decides movement restrictions. Radius and mode are read fresh
// from config on every call.
type Engine struct {
	cfg      *config.Store
	sessions *auth.SessionRegistry
	spawns   host.SpawnResolver
	logger   *slog.Logger
}

// NewEngine wires the engine's collaborators.
func NewEngine(cfg *config.Store, sessions *auth.SessionRegistry, spawns host.SpawnResolver, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		cfg:      cfg,
		sessions: sessions,
		spawns:   spawns,
		logger:   logger,
	}
}

// OnMove decides the outcome of one movement from from to to.
//
// Gravity always proceeds: a move within the same horizontal block cell
// with a non-positive vertical delta is allowed regardless of
// authentication state. Authenticated actors, and configurations with
// movement unrestricted and no radius, are allowed. With teleport-back
// disabled the move reverts to its origin. Otherwise the spawn is
// resolved: no spawn allows, a different world or a distance beyond the
// radius teleports to spawn, and anything closer is allowed.
func (e *Engine) OnMove(actor host.Actor, from, to host.Location) Decision {
	decision := e.decide(actor, from, to)
	observability.RecordMovementDecision(decision.Kind.String())
	return decision
}

func (e *Engine) decide(actor host.Actor, from, to host.Location) Decision {
	if from.SameBlockColumn(to) && to.Y-from.Y <= 0 {
		return Decision{Kind: Allow}
	}

	if e.sessions.IsAuthenticated(auth.NewIdentity(actor.Name())) {
		return Decision{Kind: Allow}
	}

	restrictions := e.cfg.Current().Restrictions
	if restrictions.AllowUnauthedMovement && restrictions.AllowedMovementRadius <= 0 {
		return Decision{Kind: Allow}
	}

	if restrictions.NoTeleport {
		return Decision{Kind: RevertToOrigin}
	}

	spawn, found := e.spawns.ResolveSpawn(actor)
	if !found {
		return Decision{Kind: Allow}
	}
	if spawn.World != to.World || spawn.DistanceTo(to) > float64(restrictions.AllowedMovementRadius) {
		e.logger.Debug("movement outside allowed radius",
			"actor", actor.Name(),
			"radius", restrictions.AllowedMovementRadius,
		)
		return Decision{Kind: TeleportTo, Target: spawn}
	}
	return Decision{Kind: Allow}
}

// Apply carries a decision out against the move event. RevertToOrigin
// zeroes the actor's speed attributes when remove_speed is configured.
// Must run on the primary context.
func (e *Engine) Apply(event *host.MoveEvent, decision Decision) {
	switch decision.Kind {
	case RevertToOrigin:
		event.SetDestination(event.From)
		if e.cfg.Current().Restrictions.RemoveSpeed {
			event.Actor.SetWalkSpeed(0)
			event.Actor.SetFlySpeed(0)
		}
	case TeleportTo:
		event.SetDestination(decision.Target)
	}
}

// OnRespawn redirects an unauthenticated respawn to spawn.
func (e *Engine) OnRespawn(event *host.RespawnEvent) {
	if e.sessions.IsAuthenticated(auth.NewIdentity(event.Actor.Name())) {
		return
	}
	if spawn, found := e.spawns.ResolveSpawn(event.Actor); found {
		event.SetRespawnLocation(spawn)
	}
}
