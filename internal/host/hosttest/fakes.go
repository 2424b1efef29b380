// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthWard Contributors

// Package hosttest provides host-surface fakes for tests.
package hosttest

import (
	"sync"

	"github.com/authward/authward/internal/host"
)

// Actor is a controllable host.Actor implementation.
type Actor struct {
	PlayerName      string
	At              host.Location
	GroupList       []string
	TeleportedTo    []host.Location
	WalkSpeed       *float64
	FlySpeed        *float64
	InventoryClosed int
}

// NewActor creates an actor with the given name at the origin of "world".
func NewActor(name string) *Actor {
	return &Actor{
		PlayerName: name,
		At:         host.Location{World: "world"},
	}
}

// Name implements host.Actor.
func (a *Actor) Name() string { return a.PlayerName }

// Location implements host.Actor.
func (a *Actor) Location() host.Location { return a.At }

// Groups implements host.Actor.
func (a *Actor) Groups() []string { return a.GroupList }

// Teleport implements host.Actor.
func (a *Actor) Teleport(loc host.Location) {
	a.TeleportedTo = append(a.TeleportedTo, loc)
	a.At = loc
}

// SetWalkSpeed implements host.Actor.
func (a *Actor) SetWalkSpeed(v float64) { a.WalkSpeed = &v }

// SetFlySpeed implements host.Actor.
func (a *Actor) SetFlySpeed(v float64) { a.FlySpeed = &v }

// CloseInventory implements host.Actor.
func (a *Actor) CloseInventory() { a.InventoryClosed++ }

// Scheduler records scheduled tasks. Run executes and clears them.
type Scheduler struct {
	mu    sync.Mutex
	tasks []scheduledTask
}

type scheduledTask struct {
	fn    func()
	delay int64
}

// RunTask implements host.Scheduler.
func (s *Scheduler) RunTask(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, scheduledTask{fn: fn})
}

// RunTaskLater implements host.Scheduler.
func (s *Scheduler) RunTaskLater(fn func(), delayTicks int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, scheduledTask{fn: fn, delay: delayTicks})
}

// Pending returns the number of tasks not yet run.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// MinDelay returns the smallest delay among pending tasks, or -1 when none
// are pending.
func (s *Scheduler) MinDelay() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.tasks) == 0 {
		return -1
	}
	minDelay := s.tasks[0].delay
	for _, task := range s.tasks[1:] {
		if task.delay < minDelay {
			minDelay = task.delay
		}
	}
	return minDelay
}

// Run executes all pending tasks in order and clears the queue.
func (s *Scheduler) Run() {
	s.mu.Lock()
	tasks := s.tasks
	s.tasks = nil
	s.mu.Unlock()
	for _, task := range tasks {
		task.fn()
	}
}

// Broadcaster records broadcast lines.
type Broadcaster struct {
	mu    sync.Mutex
	Lines []string
}

// Broadcast implements host.Broadcaster.
func (b *Broadcaster) Broadcast(message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Lines = append(b.Lines, message)
}

// Broadcasts returns a copy of the recorded lines.
func (b *Broadcaster) Broadcasts() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.Lines))
	copy(out, b.Lines)
	return out
}

// SpawnResolver returns a fixed spawn location.
type SpawnResolver struct {
	Spawn host.Location
	Found bool
}

// ResolveSpawn implements host.SpawnResolver.
func (r *SpawnResolver) ResolveSpawn(host.Actor) (host.Location, bool) {
	return r.Spawn, r.Found
}
