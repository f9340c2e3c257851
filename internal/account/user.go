// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

package account

import (
	"context"
	"time"

	"github.com/samber/oops"
)

// Audit holds record provenance. Timestamps are owned by the store: the
// creation timestamp is fixed at insert and the modification timestamp is
// refreshed on every update.
type Audit struct {
	CreatedBy        string
	CreatedDate      time.Time
	LastModifiedBy   string
	LastModifiedDate time.Time
}

// SecurityFlags holds account-status fields checked during authentication.
type SecurityFlags struct {
	Disabled bool
}

// User is the persisted account record. Password always holds a hash once the
// record leaves the account service; the plaintext is never persisted or
// logged. ID is assigned by the store on creation and never reused.
type User struct {
	ID       int64
	Username string
	Password string
	Email    string
	Name     string
	Surname  string

	SecurityFlags
	Audit
}

// Registration is the payload accepted by Register. Password is plaintext
// here and nowhere else.
type Registration struct {
	Username string
	Password string
	Email    string
	Name     string
	Surname  string
	Disabled bool
}

// Validate checks that the payload is well-formed before it reaches storage.
func (r Registration) Validate() error {
	if r.Username == "" {
		return oops.Code(CodeInvalidArgument).Errorf("username is required")
	}
	if r.Password == "" {
		return oops.Code(CodeInvalidArgument).Errorf("password is required")
	}
	if r.Email == "" {
		return oops.Code(CodeInvalidArgument).Errorf("email is required")
	}
	return nil
}

// UserDirectory is the persistence capability the account service requires:
// generic CRUD over users plus lookup by username.
type UserDirectory interface {
	// FindAll returns at most limit users starting at offset, in storage order.
	FindAll(ctx context.Context, limit, offset int) ([]*User, error)

	// FindByID returns (nil, nil) when no user matches.
	FindByID(ctx context.Context, id int64) (*User, error)

	// FindByUsername is an exact, case-sensitive match. (nil, nil) on a miss.
	FindByUsername(ctx context.Context, username string) (*User, error)

	// Save inserts a new user (zero ID) or updates an existing one, returning
	// the persisted form including store-assigned fields.
	Save(ctx context.Context, user *User) (*User, error)

	// Update persists changes to an existing user.
	Update(ctx context.Context, user *User) (*User, error)

	// DeleteByID removes a user. Deleting an absent id is not an error.
	DeleteByID(ctx context.Context, id int64) error
}
