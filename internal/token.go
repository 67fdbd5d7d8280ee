package internal

import (
	"crypto/sha256"
	"crypto/subtle"
	"fmt"

	"github.com/google/uuid"
)

// NewSessionID returns a time-ordered, collision-free session identifier.
// UUIDv7 keeps IDs lexicographically sortable by creation time, which the
// SQL backend relies on for index locality.
func NewSessionID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	return id.String(), nil
}

// HashToken reduces a raw bearer token to the one-way digest persisted in
// session records.
func HashToken(token string) [32]byte {
	return sha256.Sum256([]byte(token))
}

// HashEqual compares two token digests in constant time.
func HashEqual(a, b [32]byte) bool {
	return subtle.ConstantTimeCompare(a[:], b[:]) == 1
}
