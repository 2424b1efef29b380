// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthWard Contributors

package host

// Actor is a connected player as seen by the host server. Group membership
// is resolved by the host's permission system; AuthWard only reads it.
type Actor interface {
	// Name returns the player name with its as-presented casing.
	Name() string

	// Location returns the actor's current position.
	Location() Location

	// Groups returns the permission groups the host has resolved for the
	// actor. May be empty.
	Groups() []string

	// Teleport moves the actor. Must only be called on the primary context.
	Teleport(Location)

	// SetWalkSpeed and SetFlySpeed adjust movement attributes. Used when
	// reverting movement with speed removal configured.
	SetWalkSpeed(float64)
	SetFlySpeed(float64)

	// CloseInventory forces the actor's inventory UI shut. Must only be
	// called on the primary context.
	CloseInventory()
}

// Scheduler reschedules work onto the primary execution context.
// The host guarantees the function runs serialized with world mutation.
type Scheduler interface {
	// RunTask runs fn on the primary context as soon as possible.
	RunTask(fn func())

	// RunTaskLater runs fn on the primary context after at least the given
	// number of ticks have elapsed.
	RunTaskLater(fn func(), delayTicks int64)
}

// Broadcaster publishes a server-wide chat line, such as a join message.
type Broadcaster interface {
	Broadcast(message string)
}

// SpawnResolver resolves the spawn location for an actor.
type SpawnResolver interface {
	// ResolveSpawn returns the spawn location for the actor, or false when
	// no spawn is configured for the actor's context.
	ResolveSpawn(actor Actor) (Location, bool)
}
