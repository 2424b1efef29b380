// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthWard Contributors

package auth

import "strings"

// Identity is the canonical key for a player. The key is the lowercased
// player name; the display form keeps the as-presented casing. An Identity
// captured for an event is immutable.
type Identity struct {
	key     string
	display string
}

// NewIdentity builds an Identity from the name as presented by the host.
func NewIdentity(name string) Identity {
	return Identity{
		key:     strings.ToLower(name),
		display: name,
	}
}

// Key returns the case-folded canonical name used for all lookups.
func (i Identity) Key() string { return i.key }

// Display returns the name with its as-presented casing.
func (i Identity) Display() string { return i.display }

// IsZero reports whether the identity is empty.
func (i Identity) IsZero() bool { return i.key == "" }
