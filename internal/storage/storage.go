// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthWard Contributors

// Package storage defines the account persistence contract. Verification
// checks never touch storage directly; callers resolve lookups up front
// and pass the results in.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/authward/authward/internal/host"
)

// ErrNotFound is returned when no account exists for a name.
var ErrNotFound = errors.New("account not found")

// Error codes for storage failures.
const (
	CodeAccountExists = "ACCOUNT_EXISTS"
	CodeStoreQuery    = "STORE_QUERY_FAILED"
	CodeStoreConnect  = "STORE_CONNECT_FAILED"
)

// Account is a registered player record. Name is the canonical lowercase
// key; DisplayName preserves the casing used at registration and is what
// the name-casing check compares against.
type Account struct {
	Name         string
	DisplayName  string
	LastIP       string
	RegisteredAt time.Time

	// QuitLocation is where the player last left the world, nil until
	// the first quit with persistence enabled.
	QuitLocation *host.Location
}

// Store is the account persistence contract.
type Store interface {
	// IsRegistered reports whether an account exists for the name.
	// Lookup is case-insensitive.
	IsRegistered(ctx context.Context, name string) (bool, error)

	// GetAccount fetches the account for the name, or ErrNotFound.
	GetAccount(ctx context.Context, name string) (*Account, error)

	// CreateAccount inserts a new account. A duplicate name fails with
	// code ACCOUNT_EXISTS.
	CreateAccount(ctx context.Context, account *Account) error

	// UpdateQuitLocation persists the last quit location for the name.
	// Failures propagate to the caller and are never retried.
	UpdateQuitLocation(ctx context.Context, name string, loc host.Location) error

	// Close releases the underlying connections.
	Close()
}
