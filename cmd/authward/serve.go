// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthWard Contributors

package main

import (
	"context"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/authward/authward/internal/config"
	"github.com/authward/authward/internal/logging"
	"github.com/authward/authward/internal/observability"
	"github.com/authward/authward/internal/storage/postgres"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the sidecar endpoints (metrics, health probes)",
		Long: `Run AuthWard's sidecar process: connect the account database,
apply pending migrations when auto_migrate is on, and serve the
metrics and health endpoints until interrupted.`,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	settings, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}
	logging.SetDefault(settings.Log.Format)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var ready atomic.Bool
	if settings.Database.URL != "" {
		if settings.Database.AutoMigrate {
			migrator, err := postgres.NewMigrator(settings.Database.URL)
			if err != nil {
				return err
			}
			if err := migrator.Up(); err != nil {
				//nolint:errcheck // migration error takes precedence
				migrator.Close()
				return err
			}
			if err := migrator.Close(); err != nil {
				return err
			}
		}

		accounts, err := postgres.Connect(ctx, settings.Database.URL)
		if err != nil {
			return err
		}
		defer accounts.Close()
	}
	ready.Store(true)

	srv := observability.NewServer(settings.Observability.Addr, ready.Load)
	errCh, err := srv.Start()
	if err != nil {
		return err
	}

	select {
	case <-ctx.Done():
	case serveErr := <-errCh:
		if serveErr != nil {
			return oops.With("operation", "serve observability endpoints").Wrap(serveErr)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}
