// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

package account

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"
)

// SubjectClaim is the token field identifying which user the token represents.
const SubjectClaim = "sub"

// TokenCodec creates and validates signed, time-limited tokens carrying a
// subject claim.
type TokenCodec interface {
	// Issue embeds the claims plus a computed absolute expiry, signs them,
	// and returns an opaque string.
	Issue(claims map[string]any, ttl time.Duration) (string, error)

	// Validate verifies the signature and that the token has not expired,
	// returning the embedded claims. Signature mismatch, malformed structure,
	// and expiry all fail identically.
	Validate(token string) (map[string]any, error)
}

// JWTCodec implements TokenCodec with an HMAC-signed JWT. Secret and signing
// method are fixed for the process lifetime.
type JWTCodec struct {
	secret []byte
	method jwt.SigningMethod
}

// NewJWTCodec creates a JWTCodec. algorithm must be one of HS256, HS384, or
// HS512.
func NewJWTCodec(secret []byte, algorithm string) (*JWTCodec, error) {
	if len(secret) == 0 {
		return nil, oops.Code(CodeInvalidArgument).Errorf("token secret cannot be empty")
	}
	method := jwt.GetSigningMethod(algorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, oops.Code(CodeInvalidArgument).
			With("algorithm", algorithm).
			Errorf("unsupported signing algorithm")
	}
	return &JWTCodec{secret: secret, method: method}, nil
}

// Issue signs the claims with an absolute expiry ttl from now.
func (c *JWTCodec) Issue(claims map[string]any, ttl time.Duration) (string, error) {
	now := time.Now()
	mapClaims := jwt.MapClaims{
		"exp": now.Add(ttl).Unix(),
		"iat": now.Unix(),
	}
	for k, v := range claims {
		mapClaims[k] = v
	}

	token := jwt.NewWithClaims(c.method, mapClaims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", oops.Code(CodeInternal).With("operation", "sign token").Wrap(err)
	}
	return signed, nil
}

// Validate parses and verifies a token, returning its claims. All failure
// modes collapse into one code so callers cannot distinguish which check
// failed.
func (c *JWTCodec) Validate(tokenString string) (map[string]any, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, oops.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithValidMethods([]string{c.method.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, oops.Code(CodeInvalidToken).Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, oops.Code(CodeInvalidToken).Errorf("invalid token")
	}

	return claims, nil
}
