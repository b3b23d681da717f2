// Package token mints the public portfolio identifier and the edit
// secret. The two tokens are generated independently from crypto/rand,
// so knowledge of one never reveals anything about the other.
package token

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
)

const (
	// 9 bytes -> 12 URL-safe chars, 72 bits of entropy.
	idBytes = 9
	// 16 bytes -> 22 URL-safe chars, 128 bits of entropy.
	secretBytes = 16
)

// NewID generates a short public portfolio identifier
func NewID() (string, error) {
	return generate(idBytes)
}

// NewEditSecret generates a long edit authorization token
func NewEditSecret() (string, error) {
	return generate(secretBytes)
}

func generate(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// SecretsEqual compares two secrets in constant time
func SecretsEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
