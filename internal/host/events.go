// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthWard Contributors

package host

import "github.com/oklog/ulid/v2"

// Cancellable is embedded by events whose single occurrence can be denied.
// Cancellation is single-shot: denying suppresses this occurrence only and
// nothing is queued for retry.
type Cancellable struct {
	cancelled bool
}

// Cancel suppresses the event.
func (c *Cancellable) Cancel() { c.cancelled = true }

// Cancelled reports whether the event has been suppressed.
func (c *Cancellable) Cancelled() bool { return c.cancelled }

// ConnectionRequest is delivered before a connection is accepted. It may
// fire on a worker context, concurrently with the primary context. The
// account record is not available yet; only the presented name is known.
// ConnID correlates the request with later events for the same
// connection; the service assigns one when the host leaves it zero.
type ConnectionRequest struct {
	ConnID  ulid.ULID
	Name    string
	Addr    string
	Country string

	kickMessage string
	denied      bool
}

// Deny refuses the connection with the given kick text.
func (r *ConnectionRequest) Deny(kickMessage string) {
	r.denied = true
	r.kickMessage = kickMessage
}

// Denied reports whether the connection was refused.
func (r *ConnectionRequest) Denied() bool { return r.denied }

// KickMessage returns the kick text set by Deny.
func (r *ConnectionRequest) KickMessage() string { return r.kickMessage }

// LoginEvent is delivered on the primary context once the host has accepted
// the connection and constructed the actor.
type LoginEvent struct {
	ConnID     ulid.ULID
	Actor      Actor
	Country    string
	ServerFull bool

	kickMessage string
	denied      bool
}

// Deny refuses the login with the given kick text.
func (e *LoginEvent) Deny(kickMessage string) {
	e.denied = true
	e.kickMessage = kickMessage
}

// Denied reports whether the login was refused.
func (e *LoginEvent) Denied() bool { return e.denied }

// KickMessage returns the kick text set by Deny.
func (e *LoginEvent) KickMessage() string { return e.kickMessage }

// JoinEvent is delivered when the actor enters the world. Broadcast is the
// join line the host intends to publish; nil means the host has none.
type JoinEvent struct {
	Actor     Actor
	Broadcast *string
}

// SuppressBroadcast nulls the join line.
func (e *JoinEvent) SuppressBroadcast() { e.Broadcast = nil }

// QuitEvent is delivered when the actor disconnects normally.
type QuitEvent struct {
	Actor     Actor
	Broadcast *string
}

// SuppressBroadcast nulls the quit line.
func (e *QuitEvent) SuppressBroadcast() { e.Broadcast = nil }

// KickEvent is delivered when the host forcibly disconnects the actor.
type KickEvent struct {
	Cancellable
	Actor  Actor
	Reason string
}

// ChatEvent is delivered for a chat line. It may fire on a worker context.
// Recipients may be filtered in place by the gate.
type ChatEvent struct {
	Cancellable
	Actor      Actor
	Message    string
	Recipients []Actor
}

// CommandEvent is delivered before a typed command executes.
type CommandEvent struct {
	Cancellable
	Actor   Actor
	Message string // full line including the leading slash
}

// MoveEvent is delivered for a positional change. Setting a revised
// destination overrides where the actor ends up without cancelling.
type MoveEvent struct {
	Actor Actor
	From  Location
	To    Location

	revised *Location
}

// SetDestination overrides the movement target.
func (e *MoveEvent) SetDestination(loc Location) { e.revised = &loc }

// Destination returns the effective target after any override.
func (e *MoveEvent) Destination() Location {
	if e.revised != nil {
		return *e.revised
	}
	return e.To
}

// RespawnEvent is delivered when the actor respawns. The respawn location
// may be overridden.
type RespawnEvent struct {
	Actor Actor

	respawnAt *Location
}

// SetRespawnLocation overrides where the actor reappears.
func (e *RespawnEvent) SetRespawnLocation(loc Location) { e.respawnAt = &loc }

// RespawnLocation returns the override, or false when none was set.
func (e *RespawnEvent) RespawnLocation() (Location, bool) {
	if e.respawnAt == nil {
		return Location{}, false
	}
	return *e.respawnAt, true
}

// ActionEvent is the shared payload for the simple world-interaction
// categories: pickup, interact, consume, damage, drop, bed, sign, shear,
// fish, and inventory clicks. Each carries only the acting player.
type ActionEvent struct {
	Cancellable
	Actor Actor
}

// InventoryOpenEvent is delivered when the actor opens an inventory UI.
// The host cannot truly cancel the open for the actor's own inventory, so
// the gate additionally schedules a forced close.
type InventoryOpenEvent struct {
	Cancellable
	Actor Actor
}
