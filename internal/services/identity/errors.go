// Copyright 2025 The Crewdeck Authors
// Licensed under the EUPL-1.2

package identity

import "errors"

// Terminal error kinds of the lifecycle operations. The transport layer maps
// these to status codes; nothing here is retried internally.
var (
	// ErrEmailTaken is returned when registration or user creation hits the
	// global email uniqueness constraint.
	ErrEmailTaken = errors.New("email already exists")

	// ErrInvalidCredentials is returned for unknown email and wrong password
	// alike; the two cases are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailNotVerified is returned when a user with correct credentials
	// has not completed email verification yet.
	ErrEmailNotVerified = errors.New("email not verified")

	// ErrInvalidRefreshToken covers malformed, expired, and revoked refresh
	// tokens.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// ErrInvalidToken covers unknown, consumed, and expired one-time tokens
	// with a single kind, so a caller cannot probe which case applies.
	ErrInvalidToken = errors.New("invalid token")
)
