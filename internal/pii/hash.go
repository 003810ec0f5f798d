// Package pii normalizes and hashes personal identifiers before they leave
// the process.
package pii

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Hash returns the hex SHA-256 of v trimmed and lowercased, or "" when v is
// empty. Equal identifiers that differ only in case or surrounding
// whitespace hash to the same value.
func Hash(v string) string {
	if v == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(v))))
	return hex.EncodeToString(sum[:])
}
