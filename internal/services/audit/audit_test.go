// Copyright 2025 The Crewdeck Authors
// Licensed under the EUPL-1.2

package audit_test

import (
	"context"
	"testing"

	"github.com/crewdeck/api/internal/repository"
	"github.com/crewdeck/api/internal/services/audit"
	"github.com/crewdeck/api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAndList(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	svc := audit.NewService(repo)
	ctx := context.Background()

	company := testutil.NewTestCompany(t, repo, "Acme")
	user := testutil.NewTestUser(t, repo, company.ID, "user@example.com")

	svc.Record(ctx, audit.Entry{
		CompanyID: company.ID,
		UserID:    user.ID,
		Action:    "auth.login",
		Entity:    "auth",
		Metadata:  map[string]any{"ip": "127.0.0.1"},
	})

	logs, err := svc.List(ctx, repository.AuditFilter{CompanyID: company.ID})

	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "auth.login", logs[0].Action)
	assert.Equal(t, user.ID, *logs[0].UserID)
	assert.JSONEq(t, `{"ip":"127.0.0.1"}`, logs[0].Metadata)
}

func TestRecord_MissingAction(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	svc := audit.NewService(repo)
	ctx := context.Background()

	company := testutil.NewTestCompany(t, repo, "Acme")

	// Silently dropped, nothing written
	svc.Record(ctx, audit.Entry{CompanyID: company.ID})

	logs, err := svc.List(ctx, repository.AuditFilter{CompanyID: company.ID})
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestRecord_EmptyOptionalsStoredAsNull(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	svc := audit.NewService(repo)
	ctx := context.Background()

	company := testutil.NewTestCompany(t, repo, "Acme")

	svc.Record(ctx, audit.Entry{CompanyID: company.ID, Action: "auth.register"})

	logs, err := svc.List(ctx, repository.AuditFilter{CompanyID: company.ID})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Nil(t, logs[0].UserID)
	assert.Nil(t, logs[0].Entity)
	assert.Nil(t, logs[0].EntityID)
	assert.Equal(t, "{}", logs[0].Metadata)
}
