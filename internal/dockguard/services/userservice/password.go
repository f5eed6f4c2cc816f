package userservice

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const credentialBytes = 12

// GeneratePassword returns a random URL-safe credential. Callers hand
// it to the user exactly once; only its hash is ever stored.
func GeneratePassword() (string, error) {
	b := make([]byte, credentialBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random error: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}
