// Copyright 2025 The Crewdeck Authors
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"github.com/crewdeck/api/internal/models"
	"github.com/google/uuid"
)

// CreateCompany creates a new tenant.
func (r *Repository) CreateCompany(ctx context.Context, name string) (*models.Company, error) {
	now := time.Now().UTC()
	company := &models.Company{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO companies (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		company.ID, company.Name, company.CreatedAt, company.UpdatedAt)
	if err != nil {
		return nil, wrapError(err)
	}
	return company, nil
}

// GetCompanyByID retrieves a company by ID.
func (r *Repository) GetCompanyByID(ctx context.Context, id string) (*models.Company, error) {
	var company models.Company
	err := r.db.GetContext(ctx, &company, `SELECT * FROM companies WHERE id = ?`, id)
	if err != nil {
		return nil, wrapError(err)
	}
	return &company, nil
}
