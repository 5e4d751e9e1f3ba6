// Copyright 2025 The Crewdeck Authors
// Licensed under the EUPL-1.2

// Package testutil provides test helpers and fixtures.
package testutil

import (
	"context"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/crewdeck/api/internal/config"
	"github.com/crewdeck/api/internal/database"
	"github.com/crewdeck/api/internal/models"
	"github.com/crewdeck/api/internal/repository"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"
	"golang.org/x/crypto/bcrypt"
)

// Password is the plaintext behind every fixture user's hash.
const Password = "correct-horse-battery"

// NewTestDB creates an in-memory SQLite database for tests.
// Returns both the database connection and the repository for convenience.
func NewTestDB(t *testing.T) (*sqlx.DB, *repository.Repository) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	repo := repository.New(db)
	return db, repo
}

// AuthConfig returns an auth configuration suitable for tests. Bcrypt runs
// at minimum cost so the suite stays fast.
func AuthConfig() *config.AuthConfig {
	return &config.AuthConfig{
		AccessSecret:  "test-access-secret",
		RefreshSecret: "test-refresh-secret",
		AccessTTL:     15,
		RefreshTTL:    168,
		BcryptCost:    bcrypt.MinCost,
	}
}

// NewTestCompany creates a company fixture.
func NewTestCompany(t *testing.T, repo *repository.Repository, name string) *models.Company {
	t.Helper()
	company, err := repo.CreateCompany(context.Background(), name)
	require.NoError(t, err)
	return company
}

// NewTestUser creates a verified member with the shared fixture password.
func NewTestUser(t *testing.T, repo *repository.Repository, companyID, email string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	require.NoError(t, err)

	now := time.Now().UTC()
	user := &models.User{
		CompanyID:       companyID,
		Email:           email,
		Name:            "Test User",
		PasswordHash:    string(hash),
		Role:            models.RoleMember,
		EmailVerifiedAt: &now,
	}
	require.NoError(t, repo.CreateUser(context.Background(), user))
	return user
}

// NewUnverifiedUser creates a user that has not completed email
// verification.
func NewUnverifiedUser(t *testing.T, repo *repository.Repository, companyID, email string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		CompanyID:    companyID,
		Email:        email,
		Name:         "Test User",
		PasswordHash: string(hash),
		Role:         models.RoleMember,
	}
	require.NoError(t, repo.CreateUser(context.Background(), user))
	return user
}

// SentMail records one dispatched message.
type SentMail struct {
	Kind  string // "verification" or "reset"
	Email string
	Name  string
	Token string
}

// MailRecorder implements the identity.Dispatcher interface and records
// every message instead of sending it. Err, when set, is returned from
// both methods.
type MailRecorder struct {
	mu   sync.Mutex
	sent []SentMail

	Err error
}

func (m *MailRecorder) SendVerification(_ context.Context, email, name, token string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, SentMail{Kind: "verification", Email: email, Name: name, Token: token})
	return nil
}

func (m *MailRecorder) SendPasswordReset(_ context.Context, email, name, token string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, SentMail{Kind: "reset", Email: email, Name: name, Token: token})
	return nil
}

// Sent returns a copy of the recorded messages.
func (m *MailRecorder) Sent() []SentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentMail(nil), m.sent...)
}

// LastToken returns the token of the most recently recorded message.
func (m *MailRecorder) LastToken(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent, "no mail was sent")
	return m.sent[len(m.sent)-1].Token
}

// NewEchoContext creates an Echo context for handler tests.
func NewEchoContext(e *echo.Echo, method, path string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}
