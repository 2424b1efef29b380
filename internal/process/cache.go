// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthWard Contributors

// Package process orchestrates the join and quit lifecycle around the
// session registry, the account store, and the antibot guard.
package process

import (
	"sync"

	"github.com/authward/authward/internal/auth"
)

// DeferredJoinMessageCache withholds join broadcasts until authentication
// completes. An explicit instance created and torn down with the service;
// all operations are keyed by folded identity and safe for concurrent use.
type DeferredJoinMessageCache struct {
	mu       sync.Mutex
	messages map[string]string
}

// NewDeferredJoinMessageCache creates an empty cache.
func NewDeferredJoinMessageCache() *DeferredJoinMessageCache {
	return &DeferredJoinMessageCache{
		messages: make(map[string]string),
	}
}

// Put stores the withheld join message for an identity, overwriting any
// previous one.
func (c *DeferredJoinMessageCache) Put(id auth.Identity, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages[id.Key()] = message
}

// TakeAndClear returns the withheld message and removes it. The second
// call for the same identity reports false: release is exactly-once.
func (c *DeferredJoinMessageCache) TakeAndClear(id auth.Identity) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	message, ok := c.messages[id.Key()]
	if ok {
		delete(c.messages, id.Key())
	}
	return message, ok
}

// Len returns the number of withheld messages.
func (c *DeferredJoinMessageCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}
