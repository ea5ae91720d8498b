// Package auth holds API key hashing and verification for the
// operator-facing HTTP endpoints.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// HashKey returns a SHA-256 hash of the key.
func HashKey(key string) string {
	key = strings.TrimSpace(key)

	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:])
}

// VerifyKey reports whether the presented key matches the configured
// one. Comparison happens over the hashes in constant time.
func VerifyKey(configured, presented string) bool {
	if configured == "" {
		return false
	}
	a := HashKey(configured)
	b := HashKey(presented)
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
