// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthWard Contributors

package antibot

import (
	"log/slog"
	"sync"

	"github.com/authward/authward/internal/auth"
	"github.com/authward/authward/internal/config"
	"github.com/authward/authward/internal/observability"
)

// Guard flags suspicious connection inflow and tracks which identities it
// forcibly disconnected. The kicked-set exists only so a forced kick is not
// double-counted as a normal quit; it has no expiry of its own and is
// cleared when the sensor's window resets.
type Guard struct {
	cfg    *config.Store
	sensor Sensor
	logger *slog.Logger

	mu     sync.RWMutex
	kicked map[string]struct{} // keyed by Identity.Key()
}

// NewGuard creates a Guard delegating burst detection to the sensor.
func NewGuard(cfg *config.Store, sensor Sensor, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Guard{
		cfg:    cfg,
		sensor: sensor,
		logger: logger,
		kicked: make(map[string]struct{}),
	}
}

// ShouldReject records the connection attempt and reports whether it must
// be refused. Registered identities are never rejected; the attempt still
// counts toward the burst window.
func (g *Guard) ShouldReject(id auth.Identity, isRegistered bool) bool {
	settings := g.cfg.Current()
	if !settings.AntiBot.Enabled {
		return false
	}

	g.sensor.RecordConnection()

	if isRegistered || !g.sensor.Rejecting() {
		return false
	}

	observability.RecordAntibotRejection()
	g.logger.Info("antibot rejected connection", "identity", id.Key())
	return true
}

// RecordForcedKick marks an identity as disconnected by the guard itself.
func (g *Guard) RecordForcedKick(id auth.Identity) {
	g.mu.Lock()
	g.kicked[id.Key()] = struct{}{}
	g.mu.Unlock()

	observability.RecordAntibotKick()
}

// WasForciblyKicked reports whether the guard terminated this identity's
// connection. Quit and kick handling consult this before running normal
// termination bookkeeping.
func (g *Guard) WasForciblyKicked(id auth.Identity) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.kicked[id.Key()]
	return ok
}

// ClearKicked empties the kicked-set. Wired as the sensor's reset hook.
func (g *Guard) ClearKicked() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.kicked) > 0 {
		g.logger.Debug("antibot kicked-set cleared", "entries", len(g.kicked))
	}
	g.kicked = make(map[string]struct{})
}

// KickedCount returns the size of the kicked-set.
func (g *Guard) KickedCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.kicked)
}
