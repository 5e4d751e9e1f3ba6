// Copyright 2025 The Crewdeck Authors
// Licensed under the EUPL-1.2

package models

import "time"

// Company is the tenant partition. Every user belongs to exactly one.
type Company struct { //nolint:govet // fieldalignment: readability over optimization
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
