// Copyright 2025 The Crewdeck Authors
// Licensed under the EUPL-1.2

package users_test

import (
	"context"
	"errors"
	"testing"

	"github.com/crewdeck/api/internal/models"
	"github.com/crewdeck/api/internal/repository"
	"github.com/crewdeck/api/internal/services/identity"
	"github.com/crewdeck/api/internal/services/users"
	"github.com/crewdeck/api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUsersService(t *testing.T) (*users.Service, *repository.Repository, *testutil.MailRecorder) {
	t.Helper()
	_, repo := testutil.NewTestDB(t)
	mail := &testutil.MailRecorder{}
	svc := users.NewService(repo, mail, testutil.AuthConfig())
	return svc, repo, mail
}

func TestCreate(t *testing.T) {
	svc, repo, mail := newUsersService(t)
	ctx := context.Background()

	company := testutil.NewTestCompany(t, repo, "Acme")

	user, err := svc.Create(ctx, users.CreateParams{
		CompanyID: company.ID,
		Name:      "New Member",
		Email:     "member@example.com",
		Password:  "secret123",
		Role:      models.RoleMember,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, models.RoleMember, user.Role)
	assert.False(t, user.Verified())

	// The account goes through the same verification flow as registration
	sent := mail.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "verification", sent[0].Kind)
	assert.Equal(t, "member@example.com", sent[0].Email)
}

func TestCreate_OwnerRoleRejected(t *testing.T) {
	svc, repo, _ := newUsersService(t)
	company := testutil.NewTestCompany(t, repo, "Acme")

	_, err := svc.Create(context.Background(), users.CreateParams{
		CompanyID: company.ID,
		Name:      "Pretender",
		Email:     "pretender@example.com",
		Password:  "secret123",
		Role:      models.RoleOwner,
	})

	assert.ErrorIs(t, err, users.ErrInvalidRole)
}

func TestCreate_UnknownRole(t *testing.T) {
	svc, repo, _ := newUsersService(t)
	company := testutil.NewTestCompany(t, repo, "Acme")

	_, err := svc.Create(context.Background(), users.CreateParams{
		CompanyID: company.ID,
		Name:      "X",
		Email:     "x@example.com",
		Password:  "secret123",
		Role:      "superuser",
	})

	assert.ErrorIs(t, err, users.ErrInvalidRole)
}

func TestCreate_DuplicateEmail(t *testing.T) {
	svc, repo, _ := newUsersService(t)
	ctx := context.Background()

	company := testutil.NewTestCompany(t, repo, "Acme")
	testutil.NewTestUser(t, repo, company.ID, "taken@example.com")

	_, err := svc.Create(ctx, users.CreateParams{
		CompanyID: company.ID,
		Name:      "Other",
		Email:     "taken@example.com",
		Password:  "secret123",
		Role:      models.RoleMember,
	})

	assert.ErrorIs(t, err, identity.ErrEmailTaken)
}

func TestCreate_MailFailure(t *testing.T) {
	svc, repo, mail := newUsersService(t)
	mail.Err = errors.New("smtp unreachable")
	company := testutil.NewTestCompany(t, repo, "Acme")

	_, err := svc.Create(context.Background(), users.CreateParams{
		CompanyID: company.ID,
		Name:      "Member",
		Email:     "member@example.com",
		Password:  "secret123",
		Role:      models.RoleMember,
	})

	assert.Error(t, err)
}

func TestList_Pagination(t *testing.T) {
	svc, repo, _ := newUsersService(t)
	ctx := context.Background()

	company := testutil.NewTestCompany(t, repo, "Acme")
	testutil.NewTestUser(t, repo, company.ID, "a@example.com")
	testutil.NewTestUser(t, repo, company.ID, "b@example.com")
	testutil.NewTestUser(t, repo, company.ID, "c@example.com")

	page1, err := svc.List(ctx, company.ID, 1, 2)
	require.NoError(t, err)
	assert.Len(t, page1, 2)

	page2, err := svc.List(ctx, company.ID, 2, 2)
	require.NoError(t, err)
	assert.Len(t, page2, 1)

	// Out-of-range parameters fall back to defaults
	all, err := svc.List(ctx, company.ID, 0, -5)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestGet_ScopedToCompany(t *testing.T) {
	svc, repo, _ := newUsersService(t)
	ctx := context.Background()

	companyA := testutil.NewTestCompany(t, repo, "A")
	companyB := testutil.NewTestCompany(t, repo, "B")
	user := testutil.NewTestUser(t, repo, companyA.ID, "user@example.com")

	got, err := svc.Get(ctx, companyA.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Get(ctx, companyB.ID, user.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUpdate_Partial(t *testing.T) {
	svc, repo, _ := newUsersService(t)
	ctx := context.Background()

	company := testutil.NewTestCompany(t, repo, "Acme")
	user := testutil.NewTestUser(t, repo, company.ID, "user@example.com")

	name := "Renamed"
	updated, err := svc.Update(ctx, company.ID, user.ID, users.UpdateParams{Name: &name})

	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, user.Email, updated.Email)
	assert.Equal(t, user.Role, updated.Role)
}

func TestUpdate_OwnerRoleRejected(t *testing.T) {
	svc, repo, _ := newUsersService(t)
	ctx := context.Background()

	company := testutil.NewTestCompany(t, repo, "Acme")
	user := testutil.NewTestUser(t, repo, company.ID, "user@example.com")

	owner := models.RoleOwner
	_, err := svc.Update(ctx, company.ID, user.ID, users.UpdateParams{Role: &owner})

	assert.ErrorIs(t, err, users.ErrInvalidRole)
}

func TestUpdate_NotFound(t *testing.T) {
	svc, repo, _ := newUsersService(t)
	company := testutil.NewTestCompany(t, repo, "Acme")

	name := "X"
	_, err := svc.Update(context.Background(), company.ID, "missing", users.UpdateParams{Name: &name})

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDelete(t *testing.T) {
	svc, repo, _ := newUsersService(t)
	ctx := context.Background()

	company := testutil.NewTestCompany(t, repo, "Acme")
	user := testutil.NewTestUser(t, repo, company.ID, "user@example.com")

	require.NoError(t, svc.Delete(ctx, company.ID, user.ID))

	_, err := svc.Get(ctx, company.ID, user.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
