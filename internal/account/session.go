// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

package account

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/oops"
)

// TokenType tags issued tokens for the transport layer.
const TokenType = "bearer"

// CredentialSource is the capability the session service requires from the
// account layer: exactly the operations it invokes.
type CredentialSource interface {
	VerifyCredentials(ctx context.Context, username, password string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
}

// Token is the issued credential handed back to the client. It is stateless
// and never stored server-side; expiry is the only termination mechanism.
type Token struct {
	AccessToken string
	TokenType   string
}

// SessionService orchestrates login and identity resolution.
type SessionService struct {
	accounts CredentialSource
	codec    TokenCodec
	ttl      time.Duration
	logger   *slog.Logger
}

// NewSessionService creates a SessionService with the given token lifetime.
func NewSessionService(accounts CredentialSource, codec TokenCodec, ttl time.Duration) (*SessionService, error) {
	return NewSessionServiceWithLogger(accounts, codec, ttl, slog.Default())
}

// NewSessionServiceWithLogger creates a SessionService with a custom logger.
func NewSessionServiceWithLogger(accounts CredentialSource, codec TokenCodec, ttl time.Duration, logger *slog.Logger) (*SessionService, error) {
	if accounts == nil {
		return nil, oops.Errorf("credential source is required")
	}
	if codec == nil {
		return nil, oops.Errorf("token codec is required")
	}
	if ttl <= 0 {
		return nil, oops.Errorf("token ttl must be positive")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	return &SessionService{accounts: accounts, codec: codec, ttl: ttl, logger: logger}, nil
}

// Login verifies the credentials and mints a bearer token with the username
// as subject. An unknown username and a wrong password produce the same
// outward error so usernames cannot be enumerated. The disabled check runs
// after the credential check; the order determines which error surfaces.
func (s *SessionService) Login(ctx context.Context, username, password string) (*Token, error) {
	user, err := s.accounts.VerifyCredentials(ctx, username, password)
	if err != nil {
		if HasCode(err, CodeNotFound) || HasCode(err, CodeBadCredentials) {
			return nil, oops.Code(CodeBadCredentials).Errorf("bad credentials")
		}
		return nil, err
	}

	if user.Disabled {
		return nil, oops.Code(CodeInactiveUser).Errorf("inactive user")
	}

	accessToken, err := s.codec.Issue(map[string]any{SubjectClaim: user.Username}, s.ttl)
	if err != nil {
		return nil, oops.Code(CodeInternal).With("operation", "issue token").Wrap(err)
	}

	s.logger.InfoContext(ctx, "login succeeded", "username", user.Username)
	return &Token{AccessToken: accessToken, TokenType: TokenType}, nil
}

// ResolveCurrentUser validates a token and loads the live user record for its
// subject. Every failure collapses to BAD_CREDENTIALS.
func (s *SessionService) ResolveCurrentUser(ctx context.Context, token string) (*User, error) {
	claims, err := s.codec.Validate(token)
	if err != nil {
		return nil, oops.Code(CodeBadCredentials).Errorf("bad credentials")
	}

	subject, ok := claims[SubjectClaim].(string)
	if !ok || subject == "" {
		return nil, oops.Code(CodeBadCredentials).Errorf("bad credentials")
	}

	user, err := s.accounts.FindByUsername(ctx, subject)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, oops.Code(CodeBadCredentials).Errorf("bad credentials")
	}

	return user, nil
}

// RequireActive gates a resolved user on its live disabled flag. A disabled
// account is rejected on its next use even though an already-issued token
// stays cryptographically valid until expiry.
func (s *SessionService) RequireActive(user *User) (*User, error) {
	if user == nil {
		return nil, oops.Code(CodeBadCredentials).Errorf("bad credentials")
	}
	if user.Disabled {
		return nil, oops.Code(CodeInactiveUser).Errorf("inactive user")
	}
	return user, nil
}
