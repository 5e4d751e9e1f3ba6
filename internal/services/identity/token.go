// Copyright 2025 The Crewdeck Authors
// Licensed under the EUPL-1.2

package identity

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// oneTimeTokenLength is the number of random bytes in a verification or
// reset token.
const oneTimeTokenLength = 32

// GenerateOneTimeToken returns a hex-encoded token with 32 bytes of entropy.
func GenerateOneTimeToken() (string, error) {
	bytes := make([]byte, oneTimeTokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
