// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/accountd/accountd/internal/config"
	"github.com/accountd/accountd/internal/logging"
	"github.com/accountd/accountd/internal/store"
)

// newInitSchemaCmd creates the init-schema subcommand.
func newInitSchemaCmd() *cobra.Command {
	var databaseURL string

	cmd := &cobra.Command{
		Use:   "init-schema",
		Short: "Create the database schema",
		Long: `Apply the embedded DDL to the configured database. Statements are
idempotent, so re-running against an initialized database is safe.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logging.SetDefault("accountd", "text")

			url := databaseURL
			if url == "" {
				cfg, err := config.Load(configFile, nil)
				if err != nil {
					return fmt.Errorf("failed to load configuration: %w", err)
				}
				url = cfg.Database.URL
			}

			pool, err := store.Connect(cmd.Context(), url)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer pool.Close()

			if err := store.InitSchema(cmd.Context(), pool); err != nil {
				return fmt.Errorf("failed to initialize schema: %w", err)
			}

			slog.Info("schema initialized")
			return nil
		},
	}

	cmd.Flags().StringVar(&databaseURL, "database-url", "", "PostgreSQL connection string (overrides config file)")

	return cmd
}
