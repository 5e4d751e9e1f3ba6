// Copyright 2025 The Crewdeck Authors
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"testing"

	"github.com/crewdeck/api/internal/repository"
	"github.com/crewdeck/api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCompany(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	company, err := repo.CreateCompany(ctx, "Acme Inc")

	require.NoError(t, err)
	assert.NotEmpty(t, company.ID)
	assert.Equal(t, "Acme Inc", company.Name)
	assert.False(t, company.CreatedAt.IsZero())
}

func TestGetCompanyByID(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	created, err := repo.CreateCompany(ctx, "Acme Inc")
	require.NoError(t, err)

	retrieved, err := repo.GetCompanyByID(ctx, created.ID)

	require.NoError(t, err)
	assert.Equal(t, created.ID, retrieved.ID)
	assert.Equal(t, "Acme Inc", retrieved.Name)
}

func TestGetCompanyByID_NotFound(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	_, err := repo.GetCompanyByID(context.Background(), "missing")

	assert.ErrorIs(t, err, repository.ErrNotFound)
}
