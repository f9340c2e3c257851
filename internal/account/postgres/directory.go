// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

// Package postgres implements the account user directory over the generic
// store.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/accountd/accountd/internal/account"
	"github.com/accountd/accountd/internal/store"
)

// userSchema maps account.User onto the users table. The store owns id,
// created_date, and last_modified_date.
var userSchema = store.Schema[account.User]{
	Table: "users",
	Columns: []string{
		"username", "password", "email", "name", "surname",
		"disabled", "created_by", "last_modified_by",
	},
	Values: func(u *account.User) []any {
		return []any{
			u.Username, u.Password, u.Email, u.Name, u.Surname,
			u.Disabled, u.CreatedBy, u.LastModifiedBy,
		}
	},
	ID: func(u *account.User) int64 { return u.ID },
	Scan: func(row pgx.Row, u *account.User) error {
		return row.Scan(
			&u.ID,
			&u.Username, &u.Password, &u.Email, &u.Name, &u.Surname,
			&u.Disabled, &u.CreatedBy, &u.LastModifiedBy,
			&u.CreatedDate, &u.LastModifiedDate,
		)
	},
}

// Directory implements account.UserDirectory: generic CRUD plus lookup by
// username.
type Directory struct {
	*store.Store[account.User]
}

// NewDirectory creates a Directory backed by the given pool.
func NewDirectory(pool store.Pool) (*Directory, error) {
	s, err := store.New(pool, userSchema)
	if err != nil {
		return nil, err
	}
	return &Directory{Store: s}, nil
}

// FindByUsername returns the user with the given username. Exact,
// case-sensitive match; (nil, nil) when absent.
func (d *Directory) FindByUsername(ctx context.Context, username string) (*account.User, error) {
	return d.FindOneWhere(ctx, "username = $1", username)
}

// Compile-time capability check.
var _ account.UserDirectory = (*Directory)(nil)
