// Copyright 2025 The Crewdeck Authors
// Licensed under the EUPL-1.2

package handlers_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/crewdeck/api/internal/handlers"
	appmw "github.com/crewdeck/api/internal/middleware"
	"github.com/crewdeck/api/internal/models"
	"github.com/crewdeck/api/internal/repository"
	"github.com/crewdeck/api/internal/services/audit"
	"github.com/crewdeck/api/internal/services/token"
	"github.com/crewdeck/api/internal/services/users"
	"github.com/crewdeck/api/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type usersEnv struct {
	e      *echo.Echo
	repo   *repository.Repository
	signer *token.Signer
}

// newUsersEnv wires the user management routes behind the real auth
// middleware so requests travel the full path.
func newUsersEnv(t *testing.T) *usersEnv {
	t.Helper()
	_, repo := testutil.NewTestDB(t)
	cfg := testutil.AuthConfig()
	signer := token.NewSigner(cfg)
	mail := &testutil.MailRecorder{}
	usersSvc := users.NewService(repo, mail, cfg)
	auditSvc := audit.NewService(repo)

	e := echo.New()
	usersH := handlers.NewUsers(usersSvc, auditSvc)
	auditH := handlers.NewAudit(auditSvc)

	group := e.Group("/api/users", appmw.RequireAuth(signer))
	group.GET("", usersH.List)
	group.POST("", usersH.Create)
	group.GET("/:id", usersH.Get)
	group.PATCH("/:id", usersH.Update)
	group.DELETE("/:id", usersH.Delete)

	auditGroup := e.Group("/api/audit", appmw.RequireAuth(signer), appmw.RequireRole(models.RoleOwner, models.RoleAdmin))
	auditGroup.GET("", auditH.List)

	return &usersEnv{e: e, repo: repo, signer: signer}
}

func (env *usersEnv) do(t *testing.T, method, path string, body io.Reader, as *models.User) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if as != nil {
		access, err := env.signer.IssueAccess(as)
		require.NoError(t, err)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+access)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func withRole(user *models.User, role string) *models.User {
	clone := *user
	clone.Role = role
	return &clone
}

func TestUsersList(t *testing.T) {
	env := newUsersEnv(t)

	company := testutil.NewTestCompany(t, env.repo, "Acme")
	admin := withRole(testutil.NewTestUser(t, env.repo, company.ID, "admin@example.com"), models.RoleAdmin)
	testutil.NewTestUser(t, env.repo, company.ID, "member@example.com")

	rec := env.do(t, http.MethodGet, "/api/users", nil, admin)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	list, ok := resp.Data.([]any)
	require.True(t, ok)
	assert.Len(t, list, 2)
}

func TestUsersList_MemberForbidden(t *testing.T) {
	env := newUsersEnv(t)

	company := testutil.NewTestCompany(t, env.repo, "Acme")
	member := testutil.NewTestUser(t, env.repo, company.ID, "member@example.com")

	rec := env.do(t, http.MethodGet, "/api/users", nil, member)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUsersList_Unauthenticated(t *testing.T) {
	env := newUsersEnv(t)

	rec := env.do(t, http.MethodGet, "/api/users", nil, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUsersCreate(t *testing.T) {
	env := newUsersEnv(t)

	company := testutil.NewTestCompany(t, env.repo, "Acme")
	owner := withRole(testutil.NewTestUser(t, env.repo, company.ID, "owner@example.com"), models.RoleOwner)

	body := `{"name":"New Member","email":"new@example.com","password":"secret123","role":"member"}`
	rec := env.do(t, http.MethodPost, "/api/users", strings.NewReader(body), owner)

	assert.Equal(t, http.StatusCreated, rec.Code)

	// The account lands in the caller's company
	created, err := env.repo.GetUserByEmail(t.Context(), "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, company.ID, created.CompanyID)
}

func TestUsersCreate_InvalidRole(t *testing.T) {
	env := newUsersEnv(t)

	company := testutil.NewTestCompany(t, env.repo, "Acme")
	owner := withRole(testutil.NewTestUser(t, env.repo, company.ID, "owner@example.com"), models.RoleOwner)

	body := `{"name":"X","email":"x@example.com","password":"secret123","role":"owner"}`
	rec := env.do(t, http.MethodPost, "/api/users", strings.NewReader(body), owner)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUsersGet_SelfAccess(t *testing.T) {
	env := newUsersEnv(t)

	company := testutil.NewTestCompany(t, env.repo, "Acme")
	member := testutil.NewTestUser(t, env.repo, company.ID, "member@example.com")
	other := testutil.NewTestUser(t, env.repo, company.ID, "other@example.com")

	// Members may read themselves
	rec := env.do(t, http.MethodGet, "/api/users/"+member.ID, nil, member)
	assert.Equal(t, http.StatusOK, rec.Code)

	// but not other users
	rec = env.do(t, http.MethodGet, "/api/users/"+other.ID, nil, member)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUsersGet_CrossTenant(t *testing.T) {
	env := newUsersEnv(t)

	companyA := testutil.NewTestCompany(t, env.repo, "A")
	companyB := testutil.NewTestCompany(t, env.repo, "B")
	adminA := withRole(testutil.NewTestUser(t, env.repo, companyA.ID, "admin@example.com"), models.RoleAdmin)
	userB := testutil.NewTestUser(t, env.repo, companyB.ID, "user@example.com")

	rec := env.do(t, http.MethodGet, "/api/users/"+userB.ID, nil, adminA)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUsersUpdate(t *testing.T) {
	env := newUsersEnv(t)

	company := testutil.NewTestCompany(t, env.repo, "Acme")
	admin := withRole(testutil.NewTestUser(t, env.repo, company.ID, "admin@example.com"), models.RoleAdmin)
	member := testutil.NewTestUser(t, env.repo, company.ID, "member@example.com")

	body := `{"name":"Renamed"}`
	rec := env.do(t, http.MethodPatch, "/api/users/"+member.ID, strings.NewReader(body), admin)

	assert.Equal(t, http.StatusOK, rec.Code)

	updated, err := env.repo.GetUserByID(t.Context(), member.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
}

func TestUsersDelete_OwnerOnly(t *testing.T) {
	env := newUsersEnv(t)

	company := testutil.NewTestCompany(t, env.repo, "Acme")
	owner := withRole(testutil.NewTestUser(t, env.repo, company.ID, "owner@example.com"), models.RoleOwner)
	admin := withRole(testutil.NewTestUser(t, env.repo, company.ID, "admin@example.com"), models.RoleAdmin)
	member := testutil.NewTestUser(t, env.repo, company.ID, "member@example.com")

	// Admins cannot delete
	rec := env.do(t, http.MethodDelete, "/api/users/"+member.ID, nil, admin)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Owners can
	rec = env.do(t, http.MethodDelete, "/api/users/"+member.ID, nil, owner)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	_, err := env.repo.GetUserByID(t.Context(), member.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAuditList(t *testing.T) {
	env := newUsersEnv(t)

	company := testutil.NewTestCompany(t, env.repo, "Acme")
	owner := withRole(testutil.NewTestUser(t, env.repo, company.ID, "owner@example.com"), models.RoleOwner)
	member := testutil.NewTestUser(t, env.repo, company.ID, "member@example.com")

	auditSvc := audit.NewService(env.repo)
	auditSvc.Record(t.Context(), audit.Entry{CompanyID: company.ID, UserID: owner.ID, Action: "auth.login"})

	rec := env.do(t, http.MethodGet, "/api/audit?action=auth.login", nil, owner)
	assert.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	list, ok := resp.Data.([]any)
	require.True(t, ok)
	assert.Len(t, list, 1)

	// Members never see the audit trail
	rec = env.do(t, http.MethodGet, "/api/audit", nil, member)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuditList_BadTimestamp(t *testing.T) {
	env := newUsersEnv(t)

	company := testutil.NewTestCompany(t, env.repo, "Acme")
	owner := withRole(testutil.NewTestUser(t, env.repo, company.ID, "owner@example.com"), models.RoleOwner)

	rec := env.do(t, http.MethodGet, "/api/audit?from=yesterday", nil, owner)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthHandler(t *testing.T) {
	e := echo.New()
	c, rec := testutil.NewEchoContext(e, http.MethodGet, "/health", nil)

	require.NoError(t, handlers.Health(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}
