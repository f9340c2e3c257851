// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

package account

import "github.com/samber/oops"

// Error codes surfaced to the transport layer. The HTTP layer maps these to
// status codes; the raw wrapped cause never crosses the process boundary.
const (
	// CodeBadCredentials covers wrong password, unknown username at login,
	// and unresolvable tokens. Deliberately indistinguishable to the caller.
	CodeBadCredentials = "BAD_CREDENTIALS"

	// CodeInactiveUser is returned when the account's disabled flag is set.
	CodeInactiveUser = "INACTIVE_USER"

	// CodeNotFound is a lookup miss outside the login path.
	CodeNotFound = "RESOURCE_NOT_FOUND"

	// CodeDuplicate is a username/email uniqueness violation at registration.
	CodeDuplicate = "RESOURCE_DUPLICATE"

	// CodeInvalidArgument is a malformed input payload or parameter.
	CodeInvalidArgument = "INVALID_ARGUMENT"

	// CodeInvalidToken is a token signature, structure, or expiry failure.
	// The session service collapses it into CodeBadCredentials before it
	// reaches the boundary.
	CodeInvalidToken = "AUTH_INVALID_TOKEN"

	// CodeInternal is the fallback for anything not explicitly classified.
	CodeInternal = "INTERNAL"
)

// ErrorCode extracts the domain code from an error, or CodeInternal when the
// error carries none.
func ErrorCode(err error) string {
	if oopsErr, ok := oops.AsOops(err); ok {
		if code, ok := oopsErr.Code().(string); ok && code != "" {
			return code
		}
	}
	return CodeInternal
}

// HasCode reports whether err carries the given domain code.
func HasCode(err error, code string) bool {
	return err != nil && ErrorCode(err) == code
}
