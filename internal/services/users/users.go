// Copyright 2025 The Crewdeck Authors
// Licensed under the EUPL-1.2

// Package users implements tenant-scoped user management for admins and
// owners. Accounts created here join an existing company and go through
// the same email verification as registered owners.
package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/crewdeck/api/internal/config"
	"github.com/crewdeck/api/internal/models"
	"github.com/crewdeck/api/internal/repository"
	"github.com/crewdeck/api/internal/services/identity"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidRole is returned when a create or update names a role outside
// the closed enumeration, or tries to hand out the owner role.
var ErrInvalidRole = errors.New("invalid role")

// Service manages the user records of a company.
type Service struct {
	repo       *repository.Repository
	mail       identity.Dispatcher
	bcryptCost int
}

// NewService creates the user management service.
func NewService(repo *repository.Repository, mail identity.Dispatcher, cfg *config.AuthConfig) *Service {
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Service{repo: repo, mail: mail, bcryptCost: cost}
}

// CreateParams holds the parameters for admin-initiated user creation.
type CreateParams struct {
	CompanyID string
	Name      string
	Email     string
	Password  string
	Role      string
}

// Create adds a user to an existing company. The owner role cannot be
// assigned this way; it only exists through registration. The new account
// starts unverified with a fresh verification token, and a failed
// verification mail fails the whole call, same as registration.
func (s *Service) Create(ctx context.Context, params CreateParams) (*models.User, error) {
	if params.Role != models.RoleAdmin && params.Role != models.RoleMember {
		return nil, ErrInvalidRole
	}

	_, err := s.repo.GetUserByEmail(ctx, params.Email)
	if err == nil {
		return nil, identity.ErrEmailTaken
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(params.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	verifyToken, err := identity.GenerateOneTimeToken()
	if err != nil {
		return nil, err
	}
	verifyExpiry := time.Now().UTC().Add(identity.VerificationTokenTTL)

	user := &models.User{
		CompanyID:                  params.CompanyID,
		Email:                      params.Email,
		Name:                       params.Name,
		PasswordHash:               string(passwordHash),
		Role:                       params.Role,
		EmailVerificationToken:     &verifyToken,
		EmailVerificationExpiresAt: &verifyExpiry,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, identity.ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.mail.SendVerification(ctx, user.Email, user.Name, verifyToken); err != nil {
		return nil, fmt.Errorf("failed to send verification email: %w", err)
	}

	slog.Info("user_created", "user_id", user.ID, "company_id", user.CompanyID, "role", user.Role)
	return user, nil
}

// List returns a page of the company's users.
func (s *Service) List(ctx context.Context, companyID string, page, limit int) ([]models.User, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return s.repo.ListUsers(ctx, companyID, limit, (page-1)*limit)
}

// Get retrieves one user of the company.
func (s *Service) Get(ctx context.Context, companyID, id string) (*models.User, error) {
	return s.repo.GetCompanyUser(ctx, companyID, id)
}

// UpdateParams holds the optional fields of a user update.
type UpdateParams struct {
	Name  *string
	Email *string
	Role  *string
}

// Update applies a partial update to a user of the company.
func (s *Service) Update(ctx context.Context, companyID, id string, params UpdateParams) (*models.User, error) {
	user, err := s.repo.GetCompanyUser(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		user.Name = *params.Name
	}
	if params.Email != nil {
		user.Email = *params.Email
	}
	if params.Role != nil {
		if *params.Role != models.RoleAdmin && *params.Role != models.RoleMember {
			return nil, ErrInvalidRole
		}
		user.Role = *params.Role
	}

	if err := s.repo.UpdateUserProfile(ctx, companyID, id, user.Name, user.Email, user.Role); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, identity.ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}

// Delete removes a user from the company.
func (s *Service) Delete(ctx context.Context, companyID, id string) error {
	if err := s.repo.DeleteUser(ctx, companyID, id); err != nil {
		return err
	}
	slog.Info("user_deleted", "user_id", id, "company_id", companyID)
	return nil
}
