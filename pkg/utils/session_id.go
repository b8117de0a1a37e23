package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateSessionID creates a readable session id: {plant}-{8charHexUUID}.
// The plant name is lower-cased and any character outside [a-z0-9-] becomes '-'.
//
// Example:
//   - Input: plant="Simple Chain"
//   - Output: "simple-chain-a3f8e2b1"
func GenerateSessionID(plant string) string {
	prefix := sanitizeName(plant)
	if prefix == "" {
		prefix = "session"
	}
	return prefix + "-" + generateShortUUID()
}

func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-")
}

// generateShortUUID creates an 8-character hex string from a UUID
func generateShortUUID() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")[:8]
}
