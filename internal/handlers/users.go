// Copyright 2025 The Crewdeck Authors
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"
	"strconv"

	"github.com/crewdeck/api/internal/middleware"
	"github.com/crewdeck/api/internal/models"
	"github.com/crewdeck/api/internal/services/audit"
	"github.com/crewdeck/api/internal/services/users"
	"github.com/labstack/echo/v4"
)

// UserHandlers contains the handlers of the tenant-scoped user management.
type UserHandlers struct {
	users *users.Service
	audit *audit.Service
}

// NewUsers creates a new UserHandlers instance.
func NewUsers(usersSvc *users.Service, auditSvc *audit.Service) *UserHandlers {
	return &UserHandlers{users: usersSvc, audit: auditSvc}
}

// List returns a page of the company's users. Admins and owners only.
func (h *UserHandlers) List(c echo.Context) error {
	claims := middleware.CurrentUser(c)
	if !middleware.IsElevated(claims) {
		return Fail(c, echo.NewHTTPError(http.StatusForbidden, "not authorized"))
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	list, err := h.users.List(c.Request().Context(), claims.CompanyID, page, limit)
	if err != nil {
		return Fail(c, err)
	}
	return OK(c, http.StatusOK, list)
}

// Get returns one user. Users may read themselves; admins and owners may
// read anyone in the company.
func (h *UserHandlers) Get(c echo.Context) error {
	claims := middleware.CurrentUser(c)
	id := c.Param("id")

	if claims.UserID != id && !middleware.IsElevated(claims) {
		return Fail(c, echo.NewHTTPError(http.StatusForbidden, "not authorized to access this profile"))
	}

	user, err := h.users.Get(c.Request().Context(), claims.CompanyID, id)
	if err != nil {
		return Fail(c, err)
	}
	return OK(c, http.StatusOK, user)
}

// CreateUserRequest is the request body for admin-initiated user creation.
type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Create adds a user to the company. Admins and owners only; the company is
// always the caller's own.
func (h *UserHandlers) Create(c echo.Context) error {
	claims := middleware.CurrentUser(c)
	if !middleware.IsElevated(claims) {
		return Fail(c, echo.NewHTTPError(http.StatusForbidden, "not authorized to create users"))
	}

	var req CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return Fail(c, echo.NewHTTPError(http.StatusBadRequest, "invalid request"))
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return Fail(c, echo.NewHTTPError(http.StatusBadRequest, "name, email and password are required"))
	}
	if req.Role == "" {
		req.Role = models.RoleMember
	}

	user, err := h.users.Create(c.Request().Context(), users.CreateParams{
		CompanyID: claims.CompanyID,
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		Role:      req.Role,
	})
	if err != nil {
		return Fail(c, err)
	}

	h.audit.Record(c.Request().Context(), audit.Entry{
		CompanyID: claims.CompanyID,
		UserID:    claims.UserID,
		Action:    "user.create",
		Entity:    "user",
		EntityID:  user.ID,
	})

	return OK(c, http.StatusCreated, user)
}

// UpdateUserRequest is the request body for a partial user update.
type UpdateUserRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Role  *string `json:"role"`
}

// Update modifies a user. Users may update themselves; admins and owners
// may update anyone in the company.
func (h *UserHandlers) Update(c echo.Context) error {
	claims := middleware.CurrentUser(c)
	id := c.Param("id")

	if claims.UserID != id && !middleware.IsElevated(claims) {
		return Fail(c, echo.NewHTTPError(http.StatusForbidden, "not authorized to update this user"))
	}

	var req UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return Fail(c, echo.NewHTTPError(http.StatusBadRequest, "invalid request"))
	}

	user, err := h.users.Update(c.Request().Context(), claims.CompanyID, id, users.UpdateParams{
		Name:  req.Name,
		Email: req.Email,
		Role:  req.Role,
	})
	if err != nil {
		return Fail(c, err)
	}

	h.audit.Record(c.Request().Context(), audit.Entry{
		CompanyID: claims.CompanyID,
		UserID:    claims.UserID,
		Action:    "user.update",
		Entity:    "user",
		EntityID:  user.ID,
	})

	return OK(c, http.StatusOK, user)
}

// Delete removes a user from the company. Owners only.
func (h *UserHandlers) Delete(c echo.Context) error {
	claims := middleware.CurrentUser(c)
	if claims.Role != models.RoleOwner {
		return Fail(c, echo.NewHTTPError(http.StatusForbidden, "only owners can delete users"))
	}

	id := c.Param("id")
	if err := h.users.Delete(c.Request().Context(), claims.CompanyID, id); err != nil {
		return Fail(c, err)
	}

	h.audit.Record(c.Request().Context(), audit.Entry{
		CompanyID: claims.CompanyID,
		UserID:    claims.UserID,
		Action:    "user.delete",
		Entity:    "user",
		EntityID:  id,
	})

	return c.NoContent(http.StatusNoContent)
}
