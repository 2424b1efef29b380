// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthWard Contributors

// Package host defines the surface the game server exposes to AuthWard:
// actors, locations, the scheduling primitive, and the event payloads the
// server delivers for gating decisions. AuthWard never talks to the network
// itself; everything arrives through these types.
package host
