package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// NewRecoveryToken returns a 32-byte random token hex-encoded (64 chars).
// 256 bits of entropy makes cross-account collisions infeasible.
func NewRecoveryToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("security.NewRecoveryToken: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
