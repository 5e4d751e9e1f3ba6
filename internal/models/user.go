// Copyright 2025 The Crewdeck Authors
// Licensed under the EUPL-1.2

package models

import "time"

// Roles a user can hold within a company. The set is closed; the identity
// service consumes roles but never invents new ones.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleOwner, RoleAdmin, RoleMember:
		return true
	}
	return false
}

// User is one authenticating identity. The verification and reset token
// columns always move as a pair with their expiry: both set or both NULL.
// RefreshToken holds the single currently valid refresh credential, or NULL
// when the user is logged out.
type User struct { //nolint:govet // fieldalignment: readability over optimization
	ID                         string     `db:"id" json:"id"`
	CompanyID                  string     `db:"company_id" json:"company_id"`
	Email                      string     `db:"email" json:"email"`
	Name                       string     `db:"name" json:"name"`
	PasswordHash               string     `db:"password_hash" json:"-"`
	Role                       string     `db:"role" json:"role"`
	EmailVerifiedAt            *time.Time `db:"email_verified_at" json:"email_verified_at"`
	EmailVerificationToken     *string    `db:"email_verification_token" json:"-"`
	EmailVerificationExpiresAt *time.Time `db:"email_verification_expires_at" json:"-"`
	PasswordResetToken         *string    `db:"password_reset_token" json:"-"`
	PasswordResetExpiresAt     *time.Time `db:"password_reset_expires_at" json:"-"`
	RefreshToken               *string    `db:"refresh_token" json:"-"`
	CreatedAt                  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt                  time.Time  `db:"updated_at" json:"updated_at"`
}

// Verified reports whether the user has completed email verification.
func (u *User) Verified() bool {
	return u.EmailVerifiedAt != nil
}
