// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

package account_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accountd/accountd/internal/account"
	"github.com/accountd/accountd/pkg/errutil"
)

func TestNewJWTCodec(t *testing.T) {
	tests := []struct {
		name      string
		secret    []byte
		algorithm string
		wantErr   bool
	}{
		{name: "HS256", secret: []byte("secret"), algorithm: "HS256"},
		{name: "HS384", secret: []byte("secret"), algorithm: "HS384"},
		{name: "HS512", secret: []byte("secret"), algorithm: "HS512"},
		{name: "empty secret", secret: nil, algorithm: "HS256", wantErr: true},
		{name: "asymmetric algorithm rejected", secret: []byte("secret"), algorithm: "RS256", wantErr: true},
		{name: "none rejected", secret: []byte("secret"), algorithm: "none", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codec, err := account.NewJWTCodec(tt.secret, tt.algorithm)
			if tt.wantErr {
				require.Error(t, err)
				errutil.AssertErrorCode(t, err, account.CodeInvalidArgument)
				assert.Nil(t, codec)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, codec)
		})
	}
}

func TestJWTCodec_IssueAndValidate(t *testing.T) {
	codec, err := account.NewJWTCodec([]byte("test-secret"), "HS256")
	require.NoError(t, err)

	t.Run("round trip preserves subject", func(t *testing.T) {
		token, err := codec.Issue(map[string]any{account.SubjectClaim: "alice"}, time.Minute)
		require.NoError(t, err)
		require.NotEmpty(t, token)

		claims, err := codec.Validate(token)
		require.NoError(t, err)
		assert.Equal(t, "alice", claims[account.SubjectClaim])
	})

	t.Run("expiry and issued-at embedded", func(t *testing.T) {
		before := time.Now()
		token, err := codec.Issue(map[string]any{account.SubjectClaim: "alice"}, 30*time.Minute)
		require.NoError(t, err)

		claims, err := codec.Validate(token)
		require.NoError(t, err)

		exp, ok := claims["exp"].(float64)
		require.True(t, ok, "exp claim must be numeric")
		iat, ok := claims["iat"].(float64)
		require.True(t, ok, "iat claim must be numeric")

		assert.InDelta(t, before.Add(30*time.Minute).Unix(), int64(exp), 5)
		assert.InDelta(t, before.Unix(), int64(iat), 5)
	})

	t.Run("caller claims cannot override expiry", func(t *testing.T) {
		token, err := codec.Issue(map[string]any{
			account.SubjectClaim: "alice",
			"custom":             "value",
		}, time.Minute)
		require.NoError(t, err)

		claims, err := codec.Validate(token)
		require.NoError(t, err)
		assert.Equal(t, "value", claims["custom"])
	})
}

func TestJWTCodec_Validate_Failures(t *testing.T) {
	codec, err := account.NewJWTCodec([]byte("test-secret"), "HS256")
	require.NoError(t, err)

	t.Run("expired token", func(t *testing.T) {
		token, err := codec.Issue(map[string]any{account.SubjectClaim: "alice"}, -time.Minute)
		require.NoError(t, err)

		_, err = codec.Validate(token)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, account.CodeInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := account.NewJWTCodec([]byte("other-secret"), "HS256")
		require.NoError(t, err)

		token, err := other.Issue(map[string]any{account.SubjectClaim: "alice"}, time.Minute)
		require.NoError(t, err)

		_, err = codec.Validate(token)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, account.CodeInvalidToken)
	})

	t.Run("malformed token", func(t *testing.T) {
		_, err := codec.Validate("not.a.jwt")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, account.CodeInvalidToken)
	})

	t.Run("empty token", func(t *testing.T) {
		_, err := codec.Validate("")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, account.CodeInvalidToken)
	})

	t.Run("token without expiry rejected", func(t *testing.T) {
		raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			account.SubjectClaim: "alice",
		})
		signed, err := raw.SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = codec.Validate(signed)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, account.CodeInvalidToken)
	})

	t.Run("algorithm mismatch rejected", func(t *testing.T) {
		raw := jwt.NewWithClaims(jwt.SigningMethodHS384, jwt.MapClaims{
			account.SubjectClaim: "alice",
			"exp":                time.Now().Add(time.Minute).Unix(),
		})
		signed, err := raw.SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = codec.Validate(signed)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, account.CodeInvalidToken)
	})
}
