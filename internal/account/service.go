// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

package account

import (
	"context"
	"log/slog"

	"github.com/samber/oops"
)

// dummyPasswordHash is used when a user doesn't exist to prevent timing
// attacks. We still run password verification to make response time
// consistent. This is NOT a real credential - it's a fake hash that will
// never match any password.
//
//nolint:gosec // G101: intentionally fake hash for timing attack prevention, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Service handles account registration and credential verification.
type Service struct {
	directory UserDirectory
	hasher    PasswordHasher
	logger    *slog.Logger
}

// NewService creates an account Service.
func NewService(directory UserDirectory, hasher PasswordHasher) (*Service, error) {
	return NewServiceWithLogger(directory, hasher, slog.Default())
}

// NewServiceWithLogger creates an account Service with a custom logger.
func NewServiceWithLogger(directory UserDirectory, hasher PasswordHasher, logger *slog.Logger) (*Service, error) {
	if directory == nil {
		return nil, oops.Errorf("user directory is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	return &Service{directory: directory, hasher: hasher, logger: logger}, nil
}

// Register validates the payload, hashes the password, and persists the user.
// The returned user carries the hash, never the plaintext.
func (s *Service) Register(ctx context.Context, reg Registration) (*User, error) {
	if err := reg.Validate(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(reg.Password)
	if err != nil {
		return nil, oops.Code(CodeInternal).With("operation", "hash password").Wrap(err)
	}

	user := &User{
		Username:      reg.Username,
		Password:      hash,
		Email:         reg.Email,
		Name:          reg.Name,
		Surname:       reg.Surname,
		SecurityFlags: SecurityFlags{Disabled: reg.Disabled},
		Audit: Audit{
			CreatedBy:      reg.Username,
			LastModifiedBy: reg.Username,
		},
	}

	created, err := s.directory.Save(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user registered", "username", created.Username, "user_id", created.ID)
	return created, nil
}

// VerifyCredentials looks up a user by username and verifies the password.
// A missing user fails with RESOURCE_NOT_FOUND and a hash mismatch with
// BAD_CREDENTIALS; a verification is always performed so that the two cases
// take comparable time.
func (s *Service) VerifyCredentials(ctx context.Context, username, password string) (*User, error) {
	user, err := s.directory.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	targetHash := dummyPasswordHash
	if user != nil {
		targetHash = user.Password
	}

	valid, verifyErr := s.hasher.Verify(password, targetHash)

	if user == nil {
		return nil, oops.Code(CodeNotFound).Errorf("resource not found")
	}
	if verifyErr != nil {
		return nil, oops.Code(CodeInternal).With("operation", "verify password").Wrap(verifyErr)
	}
	if !valid {
		return nil, oops.Code(CodeBadCredentials).Errorf("bad credentials")
	}

	// Re-encode legacy hashes on successful login. Best effort; verification
	// already succeeded.
	if s.hasher.NeedsUpgrade(user.Password) {
		if newHash, hashErr := s.hasher.Hash(password); hashErr == nil {
			user.Password = newHash
			if _, updateErr := s.directory.Update(ctx, user); updateErr != nil {
				s.logger.WarnContext(ctx, "password hash upgrade failed", "username", username)
			}
		}
	}

	return user, nil
}

// FindByUsername returns the user with the given username, or (nil, nil)
// when absent.
func (s *Service) FindByUsername(ctx context.Context, username string) (*User, error) {
	return s.directory.FindByUsername(ctx, username)
}
