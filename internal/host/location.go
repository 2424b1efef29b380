// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthWard Contributors

package host

import "math"

// Location is a position within a named world.
type Location struct {
	World string
	X     float64
	Y     float64
	Z     float64
}

// BlockX returns the horizontal block cell on the X axis.
func (l Location) BlockX() int {
	return int(math.Floor(l.X))
}

// BlockZ returns the horizontal block cell on the Z axis.
func (l Location) BlockZ() int {
	return int(math.Floor(l.Z))
}

// SameBlockColumn reports whether both locations occupy the same horizontal
// block cell, ignoring the vertical coordinate.
func (l Location) SameBlockColumn(other Location) bool {
	return l.BlockX() == other.BlockX() && l.BlockZ() == other.BlockZ()
}

// DistanceTo returns the euclidean distance to another location.
// The result is only meaningful for locations in the same world.
func (l Location) DistanceTo(other Location) float64 {
	dx := l.X - other.X
	dy := l.Y - other.Y
	dz := l.Z - other.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
