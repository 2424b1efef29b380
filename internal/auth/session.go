// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthWard Contributors

package auth

import (
	"sync"
	"time"

	"github.com/samber/oops"

	"github.com/authward/authward/internal/host"
)

// Error codes for session registry failures.
const (
	CodeSessionAlreadyActive = "SESSION_ALREADY_ACTIVE"
	CodeSessionNotFound      = "SESSION_NOT_FOUND"
)

// Session tracks an identity from login acceptance until termination.
// Authenticated stays false while the login or registration process is
// pending; it flips when the external completion signal arrives.
type Session struct {
	Identity      Identity
	Authenticated bool
	LastQuitAt    *host.Location
	StartedAt     time.Time
}

func copySession(s *Session) *Session {
	out := *s
	if s.LastQuitAt != nil {
		loc := *s.LastQuitAt
		out.LastQuitAt = &loc
	}
	return &out
}

// SessionRegistry holds the live session for each identity and enforces the
// single-session invariant. All operations are atomic per key and safe for
// concurrent use from any execution context.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*Session // keyed by Identity.Key()
}

// NewSessionRegistry creates an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*Session),
	}
}

// Register creates the pending session for an identity. It is the sole
// point enforcing the single-session invariant: a second Register without
// an intervening Unregister fails with SESSION_ALREADY_ACTIVE and leaves
// the existing session untouched.
func (r *SessionRegistry) Register(id Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[id.Key()]; exists {
		return oops.Code(CodeSessionAlreadyActive).
			With("identity", id.Key()).
			Errorf("session already active for %s", id.Key())
	}

	r.sessions[id.Key()] = &Session{
		Identity:  id,
		StartedAt: time.Now(),
	}
	return nil
}

// Unregister removes the session for an identity. Removing an absent
// identity is a no-op; callers on the quit, kick, and forced-disconnect
// paths may race without error.
func (r *SessionRegistry) Unregister(id Identity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id.Key())
}

// MarkAuthenticated flips the session's authenticated flag. This is the
// entry point for the external authentication-completion signal.
func (r *SessionRegistry) MarkAuthenticated(id Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, exists := r.sessions[id.Key()]
	if !exists {
		return oops.Code(CodeSessionNotFound).
			With("identity", id.Key()).
			Errorf("no session for %s", id.Key())
	}
	session.Authenticated = true
	return nil
}

// IsAuthenticated reports whether the identity holds a live, authenticated
// session. A pending (unauthenticated) session reports false.
func (r *SessionRegistry) IsAuthenticated(id Identity) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, exists := r.sessions[id.Key()]
	return exists && session.Authenticated
}

// IsActive reports whether any session, pending or authenticated, exists
// for the identity.
func (r *SessionRegistry) IsActive(id Identity) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.sessions[id.Key()]
	return exists
}

// SetQuitLocation records the identity's last quit location on its session.
// A missing session is ignored; the location only matters while the session
// lives.
func (r *SessionRegistry) SetQuitLocation(id Identity, loc host.Location) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, exists := r.sessions[id.Key()]
	if !exists {
		return
	}
	session.LastQuitAt = &loc
}

// Get returns a copy of the identity's session, or nil if none exists.
func (r *SessionRegistry) Get(id Identity) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, exists := r.sessions[id.Key()]
	if !exists {
		return nil
	}
	return copySession(session)
}

// Count returns the number of live sessions.
func (r *SessionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
