// Copyright 2025 The Crewdeck Authors
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"strings"
	"time"

	"github.com/crewdeck/api/internal/models"
	"github.com/google/uuid"
)

// AuditFilter narrows an audit log query. CompanyID is mandatory; the rest
// is optional.
type AuditFilter struct { //nolint:govet // fieldalignment: readability over optimization
	CompanyID string
	Action    string
	UserID    string
	From      *time.Time
	To        *time.Time
	Limit     int
}

// CreateAuditLog appends one audit event.
func (r *Repository) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.Metadata == "" {
		log.Metadata = "{}"
	}
	log.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_logs (id, company_id, user_id, action, entity, entity_id, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		log.ID, log.CompanyID, log.UserID, log.Action, log.Entity, log.EntityID,
		log.Metadata, log.CreatedAt)
	return wrapError(err)
}

// ListAuditLogs returns audit events matching the filter, newest first.
func (r *Repository) ListAuditLogs(ctx context.Context, filter AuditFilter) ([]models.AuditLog, error) {
	var (
		clauses = []string{"company_id = ?"}
		args    = []any{filter.CompanyID}
	)

	if filter.Action != "" {
		clauses = append(clauses, "action = ?")
		args = append(args, filter.Action)
	}
	if filter.UserID != "" {
		clauses = append(clauses, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.From != nil {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, filter.From)
	}
	if filter.To != nil {
		clauses = append(clauses, "created_at <= ?")
		args = append(args, filter.To)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)

	logs := []models.AuditLog{}
	query := `SELECT * FROM audit_logs WHERE ` + strings.Join(clauses, " AND ") +
		` ORDER BY created_at DESC LIMIT ?`
	if err := r.db.SelectContext(ctx, &logs, query, args...); err != nil {
		return nil, wrapError(err)
	}
	return logs, nil
}
