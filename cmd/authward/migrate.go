// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthWard Contributors

package main

import (
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/authward/authward/internal/config"
	"github.com/authward/authward/internal/storage/postgres"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Apply all pending migrations to the accounts database.`,
		RunE:  runMigrate,
	}
	cmd.Flags().Bool("down", false, "roll back all migrations (destructive)")
	return cmd
}

// databaseURL resolves the migration target: the DATABASE_URL environment
// variable wins, then the config file.
func databaseURL() (string, error) {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url, nil
	}
	settings, err := config.Load(configFile, nil)
	if err != nil {
		return "", err
	}
	if settings.Database.URL == "" {
		return "", oops.Code(config.CodeConfigInvalid).
			Errorf("no database URL: set DATABASE_URL or database.url in the config file")
	}
	return settings.Database.URL, nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	url, err := databaseURL()
	if err != nil {
		return err
	}

	migrator, err := postgres.NewMigrator(url)
	if err != nil {
		return err
	}
	defer migrator.Close() //nolint:errcheck // close error is secondary

	down, err := cmd.Flags().GetBool("down")
	if err != nil {
		return oops.Wrap(err)
	}

	if down {
		cmd.Println("Rolling back migrations...")
		if err := migrator.Down(); err != nil {
			return err
		}
		cmd.Println("Rollback completed")
		return nil
	}

	cmd.Println("Running migrations...")
	if err := migrator.Up(); err != nil {
		return err
	}

	version, dirty, err := migrator.Version()
	if err != nil {
		return err
	}
	cmd.Printf("Migrations completed (version %d, dirty=%v)\n", version, dirty)
	return nil
}
