// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/accountd/accountd/internal/account"
	"github.com/accountd/accountd/internal/account/postgres"
	"github.com/accountd/accountd/internal/config"
	"github.com/accountd/accountd/internal/httpapi"
	"github.com/accountd/accountd/internal/logging"
	"github.com/accountd/accountd/internal/observability"
	"github.com/accountd/accountd/internal/store"
)

const shutdownTimeout = 10 * time.Second

// newServeCmd creates the serve subcommand with all flags configured.
func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the account API server",
		Long: `Start the HTTP API server serving registration, login, and
current-user resolution, plus the metrics/health endpoints.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cmd)
		},
	}

	config.RegisterFlags(cmd.Flags())

	return cmd
}

// runServe wires the process together and blocks until shutdown.
func runServe(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logging.SetDefault("accountd", cfg.Log.Format)

	slog.Info("starting accountd",
		"addr", cfg.Server.Addr,
		"metrics_addr", cfg.Server.MetricsAddr,
		"log_format", cfg.Log.Format,
	)

	pool, err := store.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	directory, err := postgres.NewDirectory(pool)
	if err != nil {
		return fmt.Errorf("failed to create user directory: %w", err)
	}

	accounts, err := account.NewService(directory, account.NewArgon2idHasher())
	if err != nil {
		return fmt.Errorf("failed to create account service: %w", err)
	}

	codec, err := account.NewJWTCodec([]byte(cfg.Token.Secret), cfg.Token.Algorithm)
	if err != nil {
		return fmt.Errorf("failed to create token codec: %w", err)
	}

	sessions, err := account.NewSessionService(accounts, codec, cfg.Token.TTL())
	if err != nil {
		return fmt.Errorf("failed to create session service: %w", err)
	}

	// Observability server is optional; readiness tracks database
	// connectivity.
	var (
		metrics  *observability.Metrics
		obs      *observability.Server
		obsErrCh <-chan error
	)
	if cfg.Server.MetricsAddr != "" {
		obs = observability.NewServer(cfg.Server.MetricsAddr, func() bool {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Ping(pingCtx) == nil
		})
		metrics = obs.Metrics()

		obsErrCh, err = obs.Start()
		if err != nil {
			return fmt.Errorf("failed to start observability server: %w", err)
		}
	}

	handler, err := httpapi.NewHandler(accounts, sessions, metrics, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to create api handler: %w", err)
	}

	api, err := httpapi.NewServer(cfg.Server.Addr, handler, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to create api server: %w", err)
	}

	apiErrCh, err := api.Start()
	if err != nil {
		return fmt.Errorf("failed to start api server: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var serveErr error
	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case serveErr = <-apiErrCh:
	case serveErr = <-obsErrCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if stopErr := api.Stop(shutdownCtx); stopErr != nil {
		slog.Warn("api server shutdown failed", "error", stopErr)
	}
	if obs != nil {
		if stopErr := obs.Stop(shutdownCtx); stopErr != nil {
			slog.Warn("observability server shutdown failed", "error", stopErr)
		}
	}

	return serveErr
}
