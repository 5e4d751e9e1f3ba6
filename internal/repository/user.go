// Copyright 2025 The Crewdeck Authors
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"github.com/crewdeck/api/internal/models"
	"github.com/google/uuid"
)

// CreateUser inserts a new user. The caller fills the credential fields;
// ID and timestamps are assigned here.
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, company_id, email, name, password_hash, role,
			email_verified_at, email_verification_token, email_verification_expires_at,
			password_reset_token, password_reset_expires_at, refresh_token,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.CompanyID, user.Email, user.Name, user.PasswordHash, user.Role,
		user.EmailVerifiedAt, user.EmailVerificationToken, user.EmailVerificationExpiresAt,
		user.PasswordResetToken, user.PasswordResetExpiresAt, user.RefreshToken,
		user.CreatedAt, user.UpdatedAt)
	return wrapError(err)
}

// GetUserByEmail retrieves a user by email. The lookup is exact and
// case-sensitive; email is treated as an opaque unique string.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE email = ?`, email)
	if err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE id = ?`, id)
	if err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// GetCompanyUser retrieves a user by ID scoped to a company.
func (r *Repository) GetCompanyUser(ctx context.Context, companyID, id string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user,
		`SELECT * FROM users WHERE id = ? AND company_id = ?`, id, companyID)
	if err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// GetUserByIDAndRefreshToken retrieves a user only if the stored refresh
// token equals the presented one. A structurally valid but superseded token
// therefore resolves to ErrNotFound.
func (r *Repository) GetUserByIDAndRefreshToken(ctx context.Context, id, refreshToken string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user,
		`SELECT * FROM users WHERE id = ? AND refresh_token = ?`, id, refreshToken)
	if err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// ListUsers returns the users of a company ordered by creation date.
func (r *Repository) ListUsers(ctx context.Context, companyID string, limit, offset int) ([]models.User, error) {
	users := []models.User{}
	err := r.db.SelectContext(ctx, &users,
		`SELECT * FROM users WHERE company_id = ? ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		companyID, limit, offset)
	if err != nil {
		return nil, wrapError(err)
	}
	return users, nil
}

// UpdateUserProfile updates the mutable profile fields of a user, scoped to
// a company.
func (r *Repository) UpdateUserProfile(ctx context.Context, companyID, id, name, email, role string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET name = ?, email = ?, role = ?, updated_at = ?
		WHERE id = ? AND company_id = ?`,
		name, email, role, time.Now().UTC(), id, companyID)
	if err != nil {
		return wrapError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUser deletes a user by ID, scoped to a company.
func (r *Repository) DeleteUser(ctx context.Context, companyID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM users WHERE id = ? AND company_id = ?`, id, companyID)
	if err != nil {
		return wrapError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateRefreshToken stores the currently valid refresh token for a user,
// or clears it when token is nil. Issuing a new token supersedes the old
// one; there is never more than one active refresh session per user.
func (r *Repository) UpdateRefreshToken(ctx context.Context, userID string, token *string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET refresh_token = ?, updated_at = ? WHERE id = ?`,
		token, time.Now().UTC(), userID)
	return wrapError(err)
}

// SetVerificationToken stores a fresh email verification token, superseding
// any previous one.
func (r *Repository) SetVerificationToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET email_verification_token = ?, email_verification_expires_at = ?, updated_at = ?
		WHERE id = ?`,
		token, expiresAt, time.Now().UTC(), userID)
	return wrapError(err)
}

// ConsumeVerificationToken marks the matching user verified and clears the
// token pair in a single conditional update. The WHERE clause carries both
// the token equality and the expiry check, so of two racing consumers only
// one can see an affected row; the other gets ErrNotFound.
func (r *Repository) ConsumeVerificationToken(ctx context.Context, token string) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET email_verified_at = ?, email_verification_token = NULL,
			email_verification_expires_at = NULL, updated_at = ?
		WHERE email_verification_token = ? AND email_verification_expires_at > ?`,
		now, now, token, now)
	if err != nil {
		return wrapError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetResetToken stores a fresh password reset token, superseding any
// previous one.
func (r *Repository) SetResetToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_reset_token = ?, password_reset_expires_at = ?, updated_at = ?
		WHERE id = ?`,
		token, expiresAt, time.Now().UTC(), userID)
	return wrapError(err)
}

// ConsumeResetToken writes the new password hash and clears the reset token
// pair in a single conditional update, so there is no window where the new
// password exists alongside a still-valid reset token.
func (r *Repository) ConsumeResetToken(ctx context.Context, token, passwordHash string) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, password_reset_token = NULL,
			password_reset_expires_at = NULL, updated_at = ?
		WHERE password_reset_token = ? AND password_reset_expires_at > ?`,
		passwordHash, now, token, now)
	if err != nil {
		return wrapError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
