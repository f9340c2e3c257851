// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

// Package store provides generic PostgreSQL persistence for accountd.
package store

import (
	"context"
	_ "embed"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

//go:embed schema.sql
var schemaSQL string

// Startup ping retry parameters.
const (
	pingRetryBase = 500 * time.Millisecond
	pingRetryMax  = 5
)

// Pool abstracts pgxpool.Pool for the store. pgxmock's pool implements the
// same surface, so repositories can be tested without a database.
type Pool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
	Close()
}

// Connect opens a connection pool and verifies connectivity with exponential
// backoff, so a briefly unavailable database at startup does not kill the
// process.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, oops.Code("STORE_CONNECT_FAILED").Wrap(err)
	}

	backoff := retry.WithMaxRetries(pingRetryMax, retry.NewExponential(pingRetryBase))
	if err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if pingErr := pool.Ping(ctx); pingErr != nil {
			return retry.RetryableError(pingErr)
		}
		return nil
	}); err != nil {
		pool.Close()
		return nil, oops.Code("STORE_CONNECT_FAILED").With("operation", "ping").Wrap(err)
	}

	return pool, nil
}

// InitSchema applies the embedded DDL. Statements are idempotent; this is a
// bootstrap step, not a migration system.
func InitSchema(ctx context.Context, pool Pool) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return oops.Code("STORE_SCHEMA_FAILED").Wrap(err)
	}
	return nil
}
