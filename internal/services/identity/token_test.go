// Copyright 2025 The Crewdeck Authors
// Licensed under the EUPL-1.2

package identity_test

import (
	"encoding/hex"
	"testing"

	"github.com/crewdeck/api/internal/services/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOneTimeToken(t *testing.T) {
	token, err := identity.GenerateOneTimeToken()

	require.NoError(t, err)
	assert.Len(t, token, 64)

	_, err = hex.DecodeString(token)
	assert.NoError(t, err)
}

func TestGenerateOneTimeToken_Unique(t *testing.T) {
	seen := map[string]bool{}
	for range 100 {
		token, err := identity.GenerateOneTimeToken()
		require.NoError(t, err)
		assert.False(t, seen[token])
		seen[token] = true
	}
}
