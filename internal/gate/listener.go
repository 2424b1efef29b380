// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthWard Contributors

package gate

import (
	"strings"
	"sync"

	"github.com/gobwas/glob"

	"github.com/authward/authward/internal/config"
	"github.com/authward/authward/internal/host"
	"github.com/authward/authward/internal/messages"
)

// motdCommand is the command passed through when motd passthrough is on.
const motdCommand = "/motd"

// inventoryCloseDelayTicks is the delay before the forced inventory
// close. The open cannot be truly cancelled by the host, so the close is
// rescheduled onto the primary context one tick later.
const inventoryCloseDelayTicks = 1

// Listener adapts host events onto the gate predicate. Each handler is a
// thin translation into an (actor, category) pair; only chat and command
// carry extra behavior.
type Listener struct {
	gate      *Gate
	cfg       *config.Store
	messenger messages.Messenger
	scheduler host.Scheduler

	mu      sync.Mutex
	globs   []glob.Glob
	globKey string
}

// NewListener wires the listener.
func NewListener(g *Gate, cfg *config.Store, messenger messages.Messenger, scheduler host.Scheduler) *Listener {
	return &Listener{
		gate:      g,
		cfg:       cfg,
		messenger: messenger,
		scheduler: scheduler,
	}
}

// OnCommand gates a typed command. The motd passthrough and the
// allow-list are consulted before the predicate; denial cancels the
// event and emits DENIED_COMMAND.
func (l *Listener) OnCommand(event *host.CommandEvent) {
	settings := l.cfg.Current()
	command := strings.ToLower(firstToken(event.Message))

	if settings.Restrictions.MotdPassthrough && command == motdCommand {
		return
	}
	for _, g := range l.allowedCommands(settings.Restrictions.AllowedCommands) {
		if g.Match(command) {
			return
		}
	}
	if !l.gate.ShouldSuppress(event.Actor, CategoryCommand) {
		return
	}

	event.Cancel()
	l.gate.suppress(event.Actor, CategoryCommand)
	l.messenger.Send(event.Actor, messages.DeniedCommand)
}

// OnChat gates a chat line. A suppressed sender is denied with
// DENIED_CHAT; with hide-chat configured, unauthenticated recipients are
// filtered out, and the event is denied outright when nobody is left.
func (l *Listener) OnChat(event *host.ChatEvent) {
	if l.gate.ShouldSuppress(event.Actor, CategoryChat) {
		event.Cancel()
		l.gate.suppress(event.Actor, CategoryChat)
		l.messenger.Send(event.Actor, messages.DeniedChat)
		return
	}

	if !l.cfg.Current().Restrictions.HideChat {
		return
	}
	kept := event.Recipients[:0]
	for _, recipient := range event.Recipients {
		if !l.gate.ShouldSuppress(recipient, CategoryChat) {
			kept = append(kept, recipient)
		}
	}
	event.Recipients = kept
	if len(event.Recipients) == 0 {
		event.Cancel()
	}
}

// OnInventoryOpen gates an inventory UI open. The host cannot truly
// cancel the open, so after denying, a forced close is rescheduled onto
// the primary context with a one-tick delay.
func (l *Listener) OnInventoryOpen(event *host.InventoryOpenEvent) {
	if !l.gate.ShouldSuppress(event.Actor, CategoryInventoryOpen) {
		return
	}
	event.Cancel()
	l.gate.suppress(event.Actor, CategoryInventoryOpen)

	actor := event.Actor
	l.scheduler.RunTaskLater(actor.CloseInventory, inventoryCloseDelayTicks)
}

// OnAction gates one of the simple world-interaction categories.
func (l *Listener) OnAction(event *host.ActionEvent, category Category) {
	if !l.gate.ShouldSuppress(event.Actor, category) {
		return
	}
	event.Cancel()
	l.gate.suppress(event.Actor, category)
}

// allowedCommands returns the compiled allow-list globs, recompiling
// only when the configured list changes. Patterns that fail to compile
// are skipped.
func (l *Listener) allowedCommands(patterns []string) []glob.Glob {
	key := strings.Join(patterns, "\x00")

	l.mu.Lock()
	defer l.mu.Unlock()
	if key == l.globKey {
		return l.globs
	}

	globs := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(strings.ToLower(pattern))
		if err != nil {
			continue
		}
		globs = append(globs, g)
	}
	l.globKey = key
	l.globs = globs
	return globs
}

func firstToken(line string) string {
	if i := strings.IndexByte(line, ' '); i >= 0 {
		return line[:i]
	}
	return line
}
