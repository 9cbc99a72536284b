package utils

import (
	"crypto/rand"
	"encoding/hex"
)

const resetTokenBytes = 32

// GenerateResetToken returns a random hex token for password reset links.
func GenerateResetToken() (string, error) {
	b := make([]byte, resetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
