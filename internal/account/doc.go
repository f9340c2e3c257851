// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

// Package account provides the user-account domain for accountd.
//
// # Domain Types
//
// User is the persisted account record, composed of an Audit value (record
// provenance) and SecurityFlags (the disabled status checked during
// authentication). Registration is the only type that ever carries a
// plaintext password.
//
// # Services
//
// Service types coordinate domain operations:
//   - Service - registration and credential verification
//   - SessionService - login, token issuance, identity resolution
//
// Services are created with New*Service constructors that validate
// dependencies. SessionService depends on the CredentialSource capability,
// not on the concrete Service, so alternative account backends can be
// injected at construction.
package account
