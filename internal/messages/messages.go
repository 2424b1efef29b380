// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthWard Contributors

// Package messages defines the reason codes AuthWard emits and the
// messaging collaborator that turns them into user-facing text. The core
// never formats player-visible strings itself; it hands a key and
// positional arguments to the host's localization layer.
package messages

import "github.com/authward/authward/internal/host"

// Key identifies a translatable message.
type Key string

// Verification and gating reason codes.
const (
	KickAntibot       Key = "KICK_ANTIBOT"
	KickNotRegistered Key = "KICK_NOT_REGISTERED"
	KickInvalidName   Key = "KICK_INVALID_NAME"
	KickInvalidCase   Key = "KICK_INVALID_CASE"
	KickAlreadyOnline Key = "KICK_ALREADY_ONLINE"
	KickCountryBanned Key = "KICK_COUNTRY_BANNED"
	KickServerFull    Key = "KICK_SERVER_FULL"

	DeniedCommand Key = "DENIED_COMMAND"
	DeniedChat    Key = "DENIED_CHAT"
)

// Messenger is the localization collaborator supplied by the host.
type Messenger interface {
	// Send delivers the message for key to the actor in their locale.
	Send(actor host.Actor, key Key, args ...string)

	// Retrieve returns the formatted single-string form of the message,
	// used for kick reasons where no actor channel exists yet.
	Retrieve(key Key, args ...string) string
}
