// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/accountd/accountd/internal/account"
)

// Schema describes how one entity type maps onto its table. Columns lists the
// data columns in insert order; id and the audit timestamps are store-managed
// and excluded. Scan consumes id, Columns in order, created_date, and
// last_modified_date.
type Schema[T any] struct {
	Table   string
	Columns []string
	Values  func(e *T) []any
	ID      func(e *T) int64
	Scan    func(row pgx.Row, e *T) error
}

// Store is a generic repository over one entity type. Every operation runs in
// its own transaction, acquired fresh per call and released on every exit
// path.
type Store[T any] struct {
	pool   Pool
	schema Schema[T]

	selectList string
	findAllSQL string
	findIDSQL  string
	insertSQL  string
	updateSQL  string
	deleteSQL  string
}

// New creates a Store for the given schema.
func New[T any](pool Pool, schema Schema[T]) (*Store[T], error) {
	if pool == nil {
		return nil, oops.Errorf("pool is required")
	}
	if schema.Table == "" {
		return nil, oops.Errorf("schema table is required")
	}
	if len(schema.Columns) == 0 {
		return nil, oops.Errorf("schema columns are required")
	}
	if schema.Values == nil || schema.ID == nil || schema.Scan == nil {
		return nil, oops.Errorf("schema accessors are required")
	}

	cols := strings.Join(schema.Columns, ", ")
	selectList := "id, " + cols + ", created_date, last_modified_date"

	placeholders := make([]string, len(schema.Columns))
	assignments := make([]string, len(schema.Columns))
	for i, col := range schema.Columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		assignments[i] = fmt.Sprintf("%s = $%d", col, i+1)
	}

	s := &Store[T]{
		pool:       pool,
		schema:     schema,
		selectList: selectList,
	}
	s.findAllSQL = fmt.Sprintf("SELECT %s FROM %s OFFSET $1 LIMIT $2", selectList, schema.Table)
	s.findIDSQL = fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", selectList, schema.Table)
	s.insertSQL = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		schema.Table, cols, strings.Join(placeholders, ", "), selectList)
	s.updateSQL = fmt.Sprintf("UPDATE %s SET %s, last_modified_date = now() WHERE id = $%d RETURNING %s",
		schema.Table, strings.Join(assignments, ", "), len(schema.Columns)+1, selectList)
	s.deleteSQL = fmt.Sprintf("DELETE FROM %s WHERE id = $1", schema.Table)

	return s, nil
}

// FindAll returns at most limit entities starting at offset, in storage
// order. Negative values are rejected with INVALID_ARGUMENT.
func (s *Store[T]) FindAll(ctx context.Context, limit, offset int) ([]*T, error) {
	if limit < 0 || offset < 0 {
		return nil, oops.Code(account.CodeInvalidArgument).
			With("limit", limit).
			With("offset", offset).
			Errorf("limit and offset must be non-negative")
	}

	var entities []*T
	err := s.inTransaction(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, s.findAllSQL, offset, limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			e := new(T)
			if err := s.schema.Scan(rows, e); err != nil {
				return err
			}
			entities = append(entities, e)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, s.translate(err, "find all")
	}
	if entities == nil {
		entities = []*T{}
	}
	return entities, nil
}

// FindByID returns the entity with the given id, or (nil, nil) when no row
// matches.
func (s *Store[T]) FindByID(ctx context.Context, id int64) (*T, error) {
	entity, err := s.findOne(ctx, s.findIDSQL, id)
	if err != nil {
		return nil, s.translate(err, "find by id")
	}
	return entity, nil
}

// Save inserts the entity when it has no identity yet, or updates it
// otherwise. The returned entity carries the store-assigned fields.
func (s *Store[T]) Save(ctx context.Context, entity *T) (*T, error) {
	if entity == nil {
		return nil, oops.Code(account.CodeInvalidArgument).Errorf("entity is required")
	}
	if s.schema.ID(entity) != 0 {
		return s.Update(ctx, entity)
	}

	saved := new(T)
	err := s.inTransaction(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, s.insertSQL, s.schema.Values(entity)...)
		return s.schema.Scan(row, saved)
	})
	if err != nil {
		return nil, s.translate(err, "save")
	}
	return saved, nil
}

// Update persists changes to an existing entity and refreshes its
// modification timestamp. A nil entity is a guarded no-op.
func (s *Store[T]) Update(ctx context.Context, entity *T) (*T, error) {
	if entity == nil {
		return nil, nil
	}
	id := s.schema.ID(entity)
	if id <= 0 {
		return nil, oops.Code(account.CodeInvalidArgument).Errorf("entity has no identity")
	}

	updated := new(T)
	err := s.inTransaction(ctx, func(tx pgx.Tx) error {
		args := append(s.schema.Values(entity), id)
		row := tx.QueryRow(ctx, s.updateSQL, args...)
		return s.schema.Scan(row, updated)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code(account.CodeNotFound).
			With("id", id).
			Errorf("resource not found")
	}
	if err != nil {
		return nil, s.translate(err, "update")
	}
	return updated, nil
}

// DeleteByID removes the entity with the given id. Deleting an absent id is
// not an error.
func (s *Store[T]) DeleteByID(ctx context.Context, id int64) error {
	err := s.inTransaction(ctx, func(tx pgx.Tx) error {
		_, execErr := tx.Exec(ctx, s.deleteSQL, id)
		return execErr
	})
	if err != nil {
		return s.translate(err, "delete by id")
	}
	return nil
}

// FindOneWhere runs a single-row lookup with the store's select list and an
// extra predicate. Specializations use it for filtered reads; (nil, nil) on a
// miss.
func (s *Store[T]) FindOneWhere(ctx context.Context, predicate string, args ...any) (*T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s", s.selectList, s.schema.Table, predicate)
	entity, err := s.findOne(ctx, query, args...)
	if err != nil {
		return nil, s.translate(err, "find one")
	}
	return entity, nil
}

func (s *Store[T]) findOne(ctx context.Context, query string, args ...any) (*T, error) {
	entity := new(T)
	err := s.inTransaction(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, query, args...)
		return s.schema.Scan(row, entity)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entity, nil
}

// inTransaction is the unit-of-work boundary: begin, run, commit, with
// rollback on every failure path.
func (s *Store[T]) inTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// translate maps storage errors to the domain taxonomy. Raw backend error
// text never reaches the caller-facing message; the cause stays wrapped for
// logs only.
func (s *Store[T]) translate(err error, operation string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return oops.Code(account.CodeNotFound).Errorf("resource not found")
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return oops.Code(account.CodeDuplicate).
			With("table", s.schema.Table).
			With("constraint", pgErr.ConstraintName).
			Errorf("resource already exists")
	}

	return oops.Code(account.CodeInternal).
		With("table", s.schema.Table).
		With("operation", operation).
		Wrap(err)
}
