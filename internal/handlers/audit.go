// Copyright 2025 The Crewdeck Authors
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"
	"time"

	"github.com/crewdeck/api/internal/middleware"
	"github.com/crewdeck/api/internal/repository"
	"github.com/crewdeck/api/internal/services/audit"
	"github.com/labstack/echo/v4"
)

// AuditHandlers contains the handlers of the audit trail endpoints.
type AuditHandlers struct {
	audit *audit.Service
}

// NewAudit creates a new AuditHandlers instance.
func NewAudit(auditSvc *audit.Service) *AuditHandlers {
	return &AuditHandlers{audit: auditSvc}
}

// List returns the company's audit events, optionally filtered by action,
// user, and time range.
func (h *AuditHandlers) List(c echo.Context) error {
	claims := middleware.CurrentUser(c)
	if !middleware.IsElevated(claims) {
		return Fail(c, echo.NewHTTPError(http.StatusForbidden, "not authorized"))
	}

	filter := repository.AuditFilter{
		CompanyID: claims.CompanyID,
		Action:    c.QueryParam("action"),
		UserID:    c.QueryParam("userId"),
	}

	if raw := c.QueryParam("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return Fail(c, echo.NewHTTPError(http.StatusBadRequest, "invalid from timestamp"))
		}
		filter.From = &from
	}
	if raw := c.QueryParam("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return Fail(c, echo.NewHTTPError(http.StatusBadRequest, "invalid to timestamp"))
		}
		filter.To = &to
	}

	logs, err := h.audit.List(c.Request().Context(), filter)
	if err != nil {
		return Fail(c, err)
	}
	return OK(c, http.StatusOK, logs)
}
