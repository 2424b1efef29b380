// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthWard Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the AuthWard CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "authward",
		Short: "AuthWard - authentication gate for block-world game servers",
		Long: `AuthWard gates joins and in-world actions for players who have not
yet proven their identity. The gate itself embeds into the host server
process; this CLI manages its database, configuration, and sidecar
endpoints.`,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewCheckConfigCmd())
	cmd.AddCommand(NewGenSchemaCmd())
	cmd.AddCommand(NewStatusCmd())

	return cmd
}
