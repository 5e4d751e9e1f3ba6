// Copyright 2025 The Crewdeck Authors
// Licensed under the EUPL-1.2

// Package identity owns the account and credential lifecycle: registration,
// login, token refresh, logout, email verification, and password reset. It
// is the only writer of the security-sensitive user columns.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/crewdeck/api/internal/config"
	"github.com/crewdeck/api/internal/models"
	"github.com/crewdeck/api/internal/repository"
	"github.com/crewdeck/api/internal/services/token"
	"golang.org/x/crypto/bcrypt"
)

const (
	// VerificationTokenTTL is how long email verification tokens are valid.
	VerificationTokenTTL = 24 * time.Hour
	// ResetTokenTTL is how long password reset tokens are valid.
	ResetTokenTTL = time.Hour
)

// dummyHash is used for constant-time login to prevent timing attacks
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), bcrypt.DefaultCost)

// Dispatcher delivers verification and reset links out-of-band.
type Dispatcher interface {
	SendVerification(ctx context.Context, email, name, token string) error
	SendPasswordReset(ctx context.Context, email, name, token string) error
}

// Session is the result of an operation that authenticates a user.
// ExpiresIn is the access token lifetime in seconds, for clients that
// schedule their refresh ahead of expiry.
type Session struct {
	User         *models.User
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// AccessGrant is the result of a token refresh.
type AccessGrant struct {
	AccessToken string
	ExpiresIn   int64
}

// Service implements the credential lifecycle. It is stateless between
// calls; all durable state lives in the repository.
type Service struct {
	repo       *repository.Repository
	signer     *token.Signer
	mail       Dispatcher
	bcryptCost int
}

// NewService creates the identity service with its collaborators.
func NewService(repo *repository.Repository, signer *token.Signer, mail Dispatcher, cfg *config.AuthConfig) *Service {
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		signer:     signer,
		mail:       mail,
		bcryptCost: cost,
	}
}

// Register creates a new company with its owner account, sends the
// verification email, and logs the owner in. Verification gates subsequent
// logins only; the returned tokens are valid immediately.
//
// Creating the account and sending the email are two steps without a
// spanning transaction. When dispatch fails the error is surfaced even
// though the account exists, since its verification path is unusable; the
// recovery path is support re-issuing the token. Nothing is retried
// silently.
func (s *Service) Register(ctx context.Context, companyName, email, name, password string) (*Session, error) {
	_, err := s.repo.GetUserByEmail(ctx, email)
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	verifyToken, err := GenerateOneTimeToken()
	if err != nil {
		return nil, err
	}
	verifyExpiry := time.Now().UTC().Add(VerificationTokenTTL)

	company, err := s.repo.CreateCompany(ctx, companyName)
	if err != nil {
		return nil, fmt.Errorf("failed to create company: %w", err)
	}

	user := &models.User{
		CompanyID:                  company.ID,
		Email:                      email,
		Name:                       name,
		PasswordHash:               string(passwordHash),
		Role:                       models.RoleOwner,
		EmailVerificationToken:     &verifyToken,
		EmailVerificationExpiresAt: &verifyExpiry,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.mail.SendVerification(ctx, email, name, verifyToken); err != nil {
		return nil, fmt.Errorf("failed to send verification email: %w", err)
	}

	session, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}

	slog.Info("register_success", "user_id", user.ID, "company_id", company.ID, "email", email)
	return session, nil
}

// Login authenticates by email and password. Unknown email and wrong
// password return the same error; the verification state is only checked
// after the password has been verified. A successful login supersedes any
// previously stored refresh token.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Constant-time: always perform bcrypt comparison to prevent timing attacks
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			slog.Warn("login_failed", "email", email, "reason", "user_not_found")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		slog.Warn("login_failed", "email", email, "reason", "invalid_password")
		return nil, ErrInvalidCredentials
	}

	if !user.Verified() {
		slog.Warn("login_failed", "email", email, "reason", "email_not_verified")
		return nil, ErrEmailNotVerified
	}

	session, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}

	slog.Info("login_success", "user_id", user.ID, "email", email)
	return session, nil
}

// Refresh exchanges a valid refresh token for a new access token. The token
// must verify cryptographically and must equal the stored one; logout and
// login elsewhere revoke it despite the signature staying valid. The
// refresh token itself is not rotated here, only on login and registration.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*AccessGrant, error) {
	claims, err := s.signer.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.repo.GetUserByIDAndRefreshToken(ctx, claims.UserID, refreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			slog.Warn("refresh_failed", "user_id", claims.UserID, "reason", "token_revoked")
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	accessToken, err := s.signer.IssueAccess(user)
	if err != nil {
		return nil, err
	}
	return &AccessGrant{
		AccessToken: accessToken,
		ExpiresIn:   int64(s.signer.AccessTTL().Seconds()),
	}, nil
}

// Logout clears the stored refresh token. It is idempotent; logging out
// twice is not an error. Already issued access tokens stay valid until
// their natural expiry, which is an accepted exposure window given their
// short lifetime.
func (s *Service) Logout(ctx context.Context, userID string) error {
	if err := s.repo.UpdateRefreshToken(ctx, userID, nil); err != nil {
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}
	slog.Info("logout_success", "user_id", userID)
	return nil
}

// VerifyEmail consumes a verification token. Unknown, already consumed, and
// expired tokens all fail with ErrInvalidToken; the update that marks the
// user verified and clears the token pair is atomic in the store.
func (s *Service) VerifyEmail(ctx context.Context, verifyToken string) error {
	if verifyToken == "" {
		return ErrInvalidToken
	}

	if err := s.repo.ConsumeVerificationToken(ctx, verifyToken); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("failed to consume verification token: %w", err)
	}

	slog.Info("email_verified")
	return nil
}

// ForgotPassword starts a password reset. For an unknown email it returns
// success without side effects, and a failed mail dispatch is swallowed;
// both are deliberate so the response never reveals whether the account
// exists.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			slog.Debug("password_reset_skipped", "reason", "unknown_email")
			return nil
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	resetToken, err := GenerateOneTimeToken()
	if err != nil {
		return err
	}
	expiresAt := time.Now().UTC().Add(ResetTokenTTL)

	if err := s.repo.SetResetToken(ctx, user.ID, resetToken, expiresAt); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	if err := s.mail.SendPasswordReset(ctx, user.Email, user.Name, resetToken); err != nil {
		slog.Warn("password_reset_mail_failed", "user_id", user.ID, "error", err)
		return nil
	}

	slog.Info("password_reset_requested", "user_id", user.ID)
	return nil
}

// ResetPassword consumes a reset token and writes the new password hash in
// the same atomic update that clears the token pair. The user is not logged
// in and an existing refresh token is left untouched.
func (s *Service) ResetPassword(ctx context.Context, resetToken, password string) error {
	if resetToken == "" {
		return ErrInvalidToken
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.repo.ConsumeResetToken(ctx, resetToken, string(passwordHash)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("failed to consume reset token: %w", err)
	}

	slog.Info("password_reset_success")
	return nil
}

// issueSession signs a fresh access and refresh token pair and persists the
// refresh token, superseding any previous one.
func (s *Service) issueSession(ctx context.Context, user *models.User) (*Session, error) {
	accessToken, err := s.signer.IssueAccess(user)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.signer.IssueRefresh(user)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateRefreshToken(ctx, user.ID, &refreshToken); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}
	user.RefreshToken = &refreshToken

	return &Session{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.signer.AccessTTL().Seconds()),
	}, nil
}
