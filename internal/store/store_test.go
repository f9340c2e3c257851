// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

package store_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accountd/accountd/internal/account"
	"github.com/accountd/accountd/internal/store"
	"github.com/accountd/accountd/pkg/errutil"
)

type widget struct {
	ID               int64
	Name             string
	Qty              int
	CreatedDate      time.Time
	LastModifiedDate time.Time
}

var widgetSchema = store.Schema[widget]{
	Table:   "widgets",
	Columns: []string{"name", "qty"},
	Values:  func(w *widget) []any { return []any{w.Name, w.Qty} },
	ID:      func(w *widget) int64 { return w.ID },
	Scan: func(row pgx.Row, w *widget) error {
		return row.Scan(&w.ID, &w.Name, &w.Qty, &w.CreatedDate, &w.LastModifiedDate)
	},
}

const widgetSelectList = "id, name, qty, created_date, last_modified_date"

func newWidgetStore(t *testing.T) (*store.Store[widget], pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err, "failed to create mock")
	t.Cleanup(mock.Close)

	s, err := store.New(mock, widgetSchema)
	require.NoError(t, err)
	return s, mock
}

func widgetRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "name", "qty", "created_date", "last_modified_date"})
}

func TestNew_InvalidSchema(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	tests := []struct {
		name   string
		mutate func(s *store.Schema[widget])
	}{
		{name: "missing table", mutate: func(s *store.Schema[widget]) { s.Table = "" }},
		{name: "missing columns", mutate: func(s *store.Schema[widget]) { s.Columns = nil }},
		{name: "missing values", mutate: func(s *store.Schema[widget]) { s.Values = nil }},
		{name: "missing id", mutate: func(s *store.Schema[widget]) { s.ID = nil }},
		{name: "missing scan", mutate: func(s *store.Schema[widget]) { s.Scan = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schema := widgetSchema
			tt.mutate(&schema)
			s, err := store.New(mock, schema)
			require.Error(t, err)
			assert.Nil(t, s)
		})
	}

	t.Run("nil pool", func(t *testing.T) {
		s, err := store.New[widget](nil, widgetSchema)
		require.Error(t, err)
		assert.Nil(t, s)
	})
}

func TestStore_FindAll(t *testing.T) {
	ctx := context.Background()
	query := regexp.QuoteMeta("SELECT " + widgetSelectList + " FROM widgets OFFSET $1 LIMIT $2")

	t.Run("returns entities in storage order", func(t *testing.T) {
		s, mock := newWidgetStore(t)

		now := time.Now()
		mock.ExpectBegin()
		mock.ExpectQuery(query).
			WithArgs(0, 10).
			WillReturnRows(widgetRows().
				AddRow(int64(1), "bolt", 4, now, now).
				AddRow(int64(2), "nut", 9, now, now))
		mock.ExpectCommit()

		got, err := s.FindAll(ctx, 10, 0)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "bolt", got[0].Name)
		assert.Equal(t, "nut", got[1].Name)

		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
	})

	t.Run("empty result is empty slice not nil", func(t *testing.T) {
		s, mock := newWidgetStore(t)

		mock.ExpectBegin()
		mock.ExpectQuery(query).WithArgs(0, 10).WillReturnRows(widgetRows())
		mock.ExpectCommit()

		got, err := s.FindAll(ctx, 10, 0)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)

		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
	})

	t.Run("negative limit rejected", func(t *testing.T) {
		s, _ := newWidgetStore(t)

		_, err := s.FindAll(ctx, -1, 0)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, account.CodeInvalidArgument)
	})

	t.Run("negative offset rejected", func(t *testing.T) {
		s, _ := newWidgetStore(t)

		_, err := s.FindAll(ctx, 10, -1)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, account.CodeInvalidArgument)
	})

	t.Run("query error rolls back and wraps", func(t *testing.T) {
		s, mock := newWidgetStore(t)

		mock.ExpectBegin()
		mock.ExpectQuery(query).WithArgs(0, 10).WillReturnError(errors.New("connection refused"))
		mock.ExpectRollback()

		_, err := s.FindAll(ctx, 10, 0)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, account.CodeInternal)

		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
	})
}

func TestStore_FindByID(t *testing.T) {
	ctx := context.Background()
	query := regexp.QuoteMeta("SELECT " + widgetSelectList + " FROM widgets WHERE id = $1")

	t.Run("found", func(t *testing.T) {
		s, mock := newWidgetStore(t)

		now := time.Now()
		mock.ExpectBegin()
		mock.ExpectQuery(query).
			WithArgs(int64(1)).
			WillReturnRows(widgetRows().AddRow(int64(1), "bolt", 4, now, now))
		mock.ExpectCommit()

		got, err := s.FindByID(ctx, 1)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, int64(1), got.ID)
		assert.Equal(t, "bolt", got.Name)

		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
	})

	t.Run("miss returns nil without error", func(t *testing.T) {
		s, mock := newWidgetStore(t)

		mock.ExpectBegin()
		mock.ExpectQuery(query).WithArgs(int64(42)).WillReturnError(pgx.ErrNoRows)
		mock.ExpectRollback()

		got, err := s.FindByID(ctx, 42)
		require.NoError(t, err)
		assert.Nil(t, got)

		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
	})
}

func TestStore_Save(t *testing.T) {
	ctx := context.Background()
	insert := regexp.QuoteMeta(
		"INSERT INTO widgets (name, qty) VALUES ($1, $2) RETURNING " + widgetSelectList)

	t.Run("insert assigns identity and timestamps", func(t *testing.T) {
		s, mock := newWidgetStore(t)

		now := time.Now()
		mock.ExpectBegin()
		mock.ExpectQuery(insert).
			WithArgs("bolt", 4).
			WillReturnRows(widgetRows().AddRow(int64(7), "bolt", 4, now, now))
		mock.ExpectCommit()

		saved, err := s.Save(ctx, &widget{Name: "bolt", Qty: 4})
		require.NoError(t, err)
		assert.Equal(t, int64(7), saved.ID)
		assert.False(t, saved.CreatedDate.IsZero())

		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
	})

	t.Run("unique violation surfaces duplicate code", func(t *testing.T) {
		s, mock := newWidgetStore(t)

		mock.ExpectBegin()
		mock.ExpectQuery(insert).
			WithArgs("bolt", 4).
			WillReturnError(&pgconn.PgError{
				Code:           pgerrcode.UniqueViolation,
				ConstraintName: "widgets_name_key",
			})
		mock.ExpectRollback()

		_, err := s.Save(ctx, &widget{Name: "bolt", Qty: 4})
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, account.CodeDuplicate)
		assert.Equal(t, "resource already exists", err.Error())
		errutil.AssertErrorContext(t, err, "constraint", "widgets_name_key")

		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
	})

	t.Run("entity with identity routes to update", func(t *testing.T) {
		s, mock := newWidgetStore(t)

		update := regexp.QuoteMeta(
			"UPDATE widgets SET name = $1, qty = $2, last_modified_date = now() WHERE id = $3 RETURNING " + widgetSelectList)

		now := time.Now()
		mock.ExpectBegin()
		mock.ExpectQuery(update).
			WithArgs("bolt", 5, int64(7)).
			WillReturnRows(widgetRows().AddRow(int64(7), "bolt", 5, now, now))
		mock.ExpectCommit()

		saved, err := s.Save(ctx, &widget{ID: 7, Name: "bolt", Qty: 5})
		require.NoError(t, err)
		assert.Equal(t, 5, saved.Qty)

		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
	})

	t.Run("nil entity rejected", func(t *testing.T) {
		s, _ := newWidgetStore(t)

		_, err := s.Save(ctx, nil)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, account.CodeInvalidArgument)
	})
}

func TestStore_Update(t *testing.T) {
	ctx := context.Background()
	update := regexp.QuoteMeta(
		"UPDATE widgets SET name = $1, qty = $2, last_modified_date = now() WHERE id = $3 RETURNING " + widgetSelectList)

	t.Run("nil entity is a no-op", func(t *testing.T) {
		s, _ := newWidgetStore(t)

		got, err := s.Update(ctx, nil)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("missing identity rejected", func(t *testing.T) {
		s, _ := newWidgetStore(t)

		_, err := s.Update(ctx, &widget{Name: "bolt"})
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, account.CodeInvalidArgument)
	})

	t.Run("vanished row surfaces not found", func(t *testing.T) {
		s, mock := newWidgetStore(t)

		mock.ExpectBegin()
		mock.ExpectQuery(update).
			WithArgs("bolt", 4, int64(42)).
			WillReturnError(pgx.ErrNoRows)
		mock.ExpectRollback()

		_, err := s.Update(ctx, &widget{ID: 42, Name: "bolt", Qty: 4})
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, account.CodeNotFound)

		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
	})
}

func TestStore_DeleteByID(t *testing.T) {
	ctx := context.Background()
	del := regexp.QuoteMeta("DELETE FROM widgets WHERE id = $1")

	t.Run("deletes existing row", func(t *testing.T) {
		s, mock := newWidgetStore(t)

		mock.ExpectBegin()
		mock.ExpectExec(del).WithArgs(int64(7)).WillReturnResult(pgxmock.NewResult("DELETE", 1))
		mock.ExpectCommit()

		require.NoError(t, s.DeleteByID(ctx, 7))
		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
	})

	t.Run("absent id is not an error", func(t *testing.T) {
		s, mock := newWidgetStore(t)

		mock.ExpectBegin()
		mock.ExpectExec(del).WithArgs(int64(42)).WillReturnResult(pgxmock.NewResult("DELETE", 0))
		mock.ExpectCommit()

		require.NoError(t, s.DeleteByID(ctx, 42))
		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
	})
}

func TestStore_FindOneWhere(t *testing.T) {
	ctx := context.Background()
	query := regexp.QuoteMeta("SELECT " + widgetSelectList + " FROM widgets WHERE name = $1")

	t.Run("found", func(t *testing.T) {
		s, mock := newWidgetStore(t)

		now := time.Now()
		mock.ExpectBegin()
		mock.ExpectQuery(query).
			WithArgs("bolt").
			WillReturnRows(widgetRows().AddRow(int64(1), "bolt", 4, now, now))
		mock.ExpectCommit()

		got, err := s.FindOneWhere(ctx, "name = $1", "bolt")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "bolt", got.Name)

		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
	})

	t.Run("miss returns nil without error", func(t *testing.T) {
		s, mock := newWidgetStore(t)

		mock.ExpectBegin()
		mock.ExpectQuery(query).WithArgs("ghost").WillReturnError(pgx.ErrNoRows)
		mock.ExpectRollback()

		got, err := s.FindOneWhere(ctx, "name = $1", "ghost")
		require.NoError(t, err)
		assert.Nil(t, got)

		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
	})
}

func TestInitSchema(t *testing.T) {
	t.Run("applies embedded DDL", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`CREATE TABLE IF NOT EXISTS users`).
			WillReturnResult(pgxmock.NewResult("CREATE", 0))

		require.NoError(t, store.InitSchema(context.Background(), mock))
		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
	})

	t.Run("exec failure wrapped", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`CREATE TABLE IF NOT EXISTS users`).
			WillReturnError(errors.New("permission denied"))

		err = store.InitSchema(context.Background(), mock)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "STORE_SCHEMA_FAILED")
	})
}
