// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthWard Contributors

// Package messagestest provides a Messenger fake for tests.
package messagestest

import (
	"strings"
	"sync"

	"github.com/authward/authward/internal/host"
	"github.com/authward/authward/internal/messages"
)

// Sent is one recorded Send call.
type Sent struct {
	Actor host.Actor
	Key   messages.Key
	Args  []string
}

// Recorder implements messages.Messenger and records every call.
// Retrieve returns the key joined with its args, which is enough for
// asserting on kick text without a real localization layer.
type Recorder struct {
	mu   sync.Mutex
	sent []Sent
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Send records the call.
func (r *Recorder) Send(actor host.Actor, key messages.Key, args ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, Sent{Actor: actor, Key: key, Args: args})
}

// Retrieve returns a deterministic rendering of key and args.
func (r *Recorder) Retrieve(key messages.Key, args ...string) string {
	parts := append([]string{string(key)}, args...)
	return strings.Join(parts, " ")
}

// Sent returns a copy of all recorded Send calls.
func (r *Recorder) Sent() []Sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Sent, len(r.sent))
	copy(out, r.sent)
	return out
}

// Keys returns just the keys of recorded Send calls, in order.
func (r *Recorder) Keys() []messages.Key {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]messages.Key, len(r.sent))
	for i, s := range r.sent {
		keys[i] = s.Key
	}
	return keys
}
