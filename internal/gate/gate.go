// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthWard Contributors

// Package gate suppresses world-mutating actions for actors whose
// authentication is still pending. One predicate serves every action
// category; thin adapters in the listener translate host events into
// (actor, category) pairs.
package gate

import (
	"log/slog"

	"github.com/authward/authward/internal/auth"
	"github.com/authward/authward/internal/config"
	"github.com/authward/authward/internal/exempt"
	"github.com/authward/authward/internal/host"
	"github.com/authward/authward/internal/observability"
)

// Category is an action category the gate can suppress.
type Category string

// The action categories.
const (
	CategoryChat           Category = "chat"
	CategoryCommand        Category = "command"
	CategoryPickup         Category = "pickup"
	CategoryBlockInteract  Category = "block_interact"
	CategoryEntityInteract Category = "entity_interact"
	CategoryConsume        Category = "consume"
	CategoryInventoryOpen  Category = "inventory_open"
	CategoryInventoryClick Category = "inventory_click"
	CategoryDamage         Category = "damage"
	CategoryDrop           Category = "drop"
	CategoryBed            Category = "bed"
	CategorySign           Category = "sign"
	CategoryShear          Category = "shear"
	CategoryFish           Category = "fish"
)

// Gate is the unauthenticated-action predicate. It holds no per-category
// state; every decision is a registry lookup against the current config.
type Gate struct {
	cfg      *config.Store
	sessions *auth.SessionRegistry
	exempt   *exempt.Matcher
	logger   *slog.Logger
}

// New wires the gate's collaborators.
func New(cfg *config.Store, sessions *auth.SessionRegistry, matcher *exempt.Matcher, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Gate{
		cfg:      cfg,
		sessions: sessions,
		exempt:   matcher,
		logger:   logger,
	}
}

// ShouldSuppress reports whether the actor's action in the category must
// be suppressed: true iff the actor is not authenticated, the category's
// restriction is enabled, and the actor is not exempt.
func (g *Gate) ShouldSuppress(actor host.Actor, category Category) bool {
	id := auth.NewIdentity(actor.Name())
	if g.sessions.IsAuthenticated(id) {
		return false
	}
	if !g.cfg.Current().Restrictions.Restricts(string(category)) {
		return false
	}
	if g.exempt != nil && g.exempt.Exempt(exempt.Subject{Name: actor.Name(), Groups: actor.Groups()}) {
		return false
	}
	return true
}

// suppress records and logs one suppressed action.
func (g *Gate) suppress(actor host.Actor, category Category) {
	observability.RecordSuppressedAction(string(category))
	g.logger.Debug("suppressed action",
		"actor", actor.Name(),
		"category", string(category),
	)
}
