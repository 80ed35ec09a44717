package simulation

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// newSessionID returns a 32-character hex string backed by 16 random
// bytes, so IDs are not guessable or enumerable.
func newSessionID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}
