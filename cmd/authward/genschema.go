// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthWard Contributors

package main

import (
	"os"
	"path/filepath"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/authward/authward/internal/config"
)

// NewGenSchemaCmd creates the gen-schema subcommand.
func NewGenSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gen-schema",
		Short: "Generate the configuration JSON Schema file",
		RunE:  runGenSchema,
	}
	cmd.Flags().String("out", filepath.Join("schemas", "config.schema.json"), "output path")
	return cmd
}

func runGenSchema(cmd *cobra.Command, _ []string) error {
	schema, err := config.GenerateSchema()
	if err != nil {
		return err
	}

	outPath, err := cmd.Flags().GetString("out")
	if err != nil {
		return oops.Wrap(err)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o750); err != nil {
		return oops.With("path", outPath).Wrap(err)
	}
	if err := os.WriteFile(outPath, schema, 0o600); err != nil {
		return oops.With("path", outPath).Wrap(err)
	}

	cmd.Printf("Generated %s\n", outPath)
	return nil
}
