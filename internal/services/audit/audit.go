// Copyright 2025 The Crewdeck Authors
// Licensed under the EUPL-1.2

// Package audit writes and queries the append-only business audit trail.
package audit

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/crewdeck/api/internal/models"
	"github.com/crewdeck/api/internal/repository"
)

// Service records and lists audit events.
type Service struct {
	repo *repository.Repository
}

// NewService creates the audit service.
func NewService(repo *repository.Repository) *Service {
	return &Service{repo: repo}
}

// Entry describes one business event. Action is mandatory, everything else
// is optional context.
type Entry struct { //nolint:govet // fieldalignment: readability over optimization
	CompanyID string
	UserID    string
	Action    string
	Entity    string
	EntityID  string
	Metadata  map[string]any
}

// Record appends an audit event. Failures are logged and swallowed; an
// unwritable audit trail must not fail the operation being audited.
func (s *Service) Record(ctx context.Context, e Entry) {
	if e.Action == "" {
		slog.Error("audit_record_skipped", "reason", "missing_action")
		return
	}

	metadata := "{}"
	if len(e.Metadata) > 0 {
		raw, err := json.Marshal(e.Metadata)
		if err != nil {
			slog.Error("audit_metadata_marshal_failed", "action", e.Action, "error", err)
		} else {
			metadata = string(raw)
		}
	}

	log := &models.AuditLog{
		CompanyID: optional(e.CompanyID),
		UserID:    optional(e.UserID),
		Action:    e.Action,
		Entity:    optional(e.Entity),
		EntityID:  optional(e.EntityID),
		Metadata:  metadata,
	}

	if err := s.repo.CreateAuditLog(ctx, log); err != nil {
		slog.Error("audit_record_failed", "action", e.Action, "error", err)
		return
	}

	slog.Debug("audit_record_created", "action", e.Action, "user_id", e.UserID, "company_id", e.CompanyID)
}

// List returns audit events matching the filter.
func (s *Service) List(ctx context.Context, filter repository.AuditFilter) ([]models.AuditLog, error) {
	return s.repo.ListAuditLogs(ctx, filter)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
