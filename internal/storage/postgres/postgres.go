// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthWard Contributors

// Package postgres implements the account store on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"

	"github.com/authward/authward/internal/host"
	"github.com/authward/authward/internal/storage"
)

// Querier is the subset of pgxpool.Pool the store uses. Tests substitute
// a pgxmock pool.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// AccountStore implements storage.Store on a pgx connection pool.
type AccountStore struct {
	pool  Querier
	close func()
}

// Connect opens a pool against the database URL and verifies it with a
// ping, retrying with exponential backoff while the database comes up.
func Connect(ctx context.Context, databaseURL string) (*AccountStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, oops.Code(storage.CodeStoreConnect).Wrap(err)
	}

	backoff := retry.WithMaxRetries(5, retry.NewExponential(500*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := pool.Ping(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, oops.Code(storage.CodeStoreConnect).
			With("operation", "ping").
			Wrap(err)
	}

	return &AccountStore{pool: pool, close: pool.Close}, nil
}

// NewWithQuerier wraps an existing querier, used by tests.
func NewWithQuerier(q Querier) *AccountStore {
	return &AccountStore{pool: q, close: func() {}}
}

// Close implements storage.Store.
func (s *AccountStore) Close() {
	s.close()
}

// IsRegistered implements storage.Store.
func (s *AccountStore) IsRegistered(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE name = $1)`,
		strings.ToLower(name)).Scan(&exists)
	if err != nil {
		return false, oops.Code(storage.CodeStoreQuery).
			With("operation", "is_registered").
			Wrap(err)
	}
	return exists, nil
}

// GetAccount implements storage.Store.
func (s *AccountStore) GetAccount(ctx context.Context, name string) (*storage.Account, error) {
	var (
		account   storage.Account
		quitWorld *string
		quitX     *float64
		quitY     *float64
		quitZ     *float64
	)
	err := s.pool.QueryRow(ctx,
		`SELECT name, display_name, last_ip, registered_at,
		        quit_world, quit_x, quit_y, quit_z
		 FROM accounts WHERE name = $1`,
		strings.ToLower(name)).Scan(
		&account.Name,
		&account.DisplayName,
		&account.LastIP,
		&account.RegisteredAt,
		&quitWorld, &quitX, &quitY, &quitZ,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, oops.Code(storage.CodeStoreQuery).
			With("operation", "get_account").
			Wrap(err)
	}

	if quitWorld != nil && quitX != nil && quitY != nil && quitZ != nil {
		account.QuitLocation = &host.Location{
			World: *quitWorld,
			X:     *quitX,
			Y:     *quitY,
			Z:     *quitZ,
		}
	}
	return &account, nil
}

// CreateAccount implements storage.Store.
func (s *AccountStore) CreateAccount(ctx context.Context, account *storage.Account) error {
	registeredAt := account.RegisteredAt
	if registeredAt.IsZero() {
		registeredAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO accounts (name, display_name, last_ip, registered_at)
		 VALUES ($1, $2, $3, $4)`,
		strings.ToLower(account.Name),
		account.DisplayName,
		account.LastIP,
		registeredAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return oops.Code(storage.CodeAccountExists).
			With("name", account.Name).
			Wrap(err)
	}
	if err != nil {
		return oops.Code(storage.CodeStoreQuery).
			With("operation", "create_account").
			Wrap(err)
	}
	return nil
}

// UpdateQuitLocation implements storage.Store.
func (s *AccountStore) UpdateQuitLocation(ctx context.Context, name string, loc host.Location) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE accounts
		 SET quit_world = $2, quit_x = $3, quit_y = $4, quit_z = $5
		 WHERE name = $1`,
		strings.ToLower(name),
		loc.World, loc.X, loc.Y, loc.Z,
	)
	if err != nil {
		return oops.Code(storage.CodeStoreQuery).
			With("operation", "update_quit_location").
			Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
