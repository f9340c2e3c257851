// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

// Package mocks provides testify mocks for the account package interfaces.
package mocks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/accountd/accountd/internal/account"
)

// MockUserDirectory is a testify mock for account.UserDirectory.
type MockUserDirectory struct {
	mock.Mock
}

// NewMockUserDirectory creates a MockUserDirectory with expectations asserted
// at test cleanup.
func NewMockUserDirectory(t *testing.T) *MockUserDirectory {
	m := &MockUserDirectory{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockUserDirectory) FindAll(ctx context.Context, limit, offset int) ([]*account.User, error) {
	args := m.Called(ctx, limit, offset)
	users, _ := args.Get(0).([]*account.User)
	return users, args.Error(1)
}

func (m *MockUserDirectory) FindByID(ctx context.Context, id int64) (*account.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*account.User)
	return user, args.Error(1)
}

func (m *MockUserDirectory) FindByUsername(ctx context.Context, username string) (*account.User, error) {
	args := m.Called(ctx, username)
	user, _ := args.Get(0).(*account.User)
	return user, args.Error(1)
}

func (m *MockUserDirectory) Save(ctx context.Context, user *account.User) (*account.User, error) {
	args := m.Called(ctx, user)
	saved, _ := args.Get(0).(*account.User)
	return saved, args.Error(1)
}

func (m *MockUserDirectory) Update(ctx context.Context, user *account.User) (*account.User, error) {
	args := m.Called(ctx, user)
	updated, _ := args.Get(0).(*account.User)
	return updated, args.Error(1)
}

func (m *MockUserDirectory) DeleteByID(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockPasswordHasher is a testify mock for account.PasswordHasher.
type MockPasswordHasher struct {
	mock.Mock
}

// NewMockPasswordHasher creates a MockPasswordHasher with expectations
// asserted at test cleanup.
func NewMockPasswordHasher(t *testing.T) *MockPasswordHasher {
	m := &MockPasswordHasher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Verify(password, hash string) (bool, error) {
	args := m.Called(password, hash)
	return args.Bool(0), args.Error(1)
}

func (m *MockPasswordHasher) NeedsUpgrade(hash string) bool {
	args := m.Called(hash)
	return args.Bool(0)
}

// MockCredentialSource is a testify mock for account.CredentialSource.
type MockCredentialSource struct {
	mock.Mock
}

// NewMockCredentialSource creates a MockCredentialSource with expectations
// asserted at test cleanup.
func NewMockCredentialSource(t *testing.T) *MockCredentialSource {
	m := &MockCredentialSource{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockCredentialSource) VerifyCredentials(ctx context.Context, username, password string) (*account.User, error) {
	args := m.Called(ctx, username, password)
	user, _ := args.Get(0).(*account.User)
	return user, args.Error(1)
}

func (m *MockCredentialSource) FindByUsername(ctx context.Context, username string) (*account.User, error) {
	args := m.Called(ctx, username)
	user, _ := args.Get(0).(*account.User)
	return user, args.Error(1)
}

// MockTokenCodec is a testify mock for account.TokenCodec.
type MockTokenCodec struct {
	mock.Mock
}

// NewMockTokenCodec creates a MockTokenCodec with expectations asserted at
// test cleanup.
func NewMockTokenCodec(t *testing.T) *MockTokenCodec {
	m := &MockTokenCodec{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockTokenCodec) Issue(claims map[string]any, ttl time.Duration) (string, error) {
	args := m.Called(claims, ttl)
	return args.String(0), args.Error(1)
}

func (m *MockTokenCodec) Validate(token string) (map[string]any, error) {
	args := m.Called(token)
	claims, _ := args.Get(0).(map[string]any)
	return claims, args.Error(1)
}
