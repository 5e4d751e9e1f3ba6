// Copyright 2025 The Crewdeck Authors
// Licensed under the EUPL-1.2

package models

import "time"

// AuditLog is one append-only business event. Metadata is stored as a JSON
// document; the columns besides action are optional.
type AuditLog struct { //nolint:govet // fieldalignment: readability over optimization
	ID        string    `db:"id" json:"id"`
	CompanyID *string   `db:"company_id" json:"company_id"`
	UserID    *string   `db:"user_id" json:"user_id"`
	Action    string    `db:"action" json:"action"`
	Entity    *string   `db:"entity" json:"entity"`
	EntityID  *string   `db:"entity_id" json:"entity_id"`
	Metadata  string    `db:"metadata" json:"metadata"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
