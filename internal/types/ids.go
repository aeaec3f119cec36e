package types

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// APIKeyID represents a UUIDv7 API key identifier.
// String alias enables type safety while maintaining JSON string serialization.
// UUIDv7 time-ordering ensures sequential IDs cluster in B-tree indexes.
type APIKeyID string

// NewAPIKeyID generates a UUIDv7 API key identifier.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewAPIKeyID() APIKeyID {
	return APIKeyID(uuid.Must(uuid.NewV7()).String())
}

// ParseAPIKeyID validates and converts a string to APIKeyID.
// Rejects malformed UUIDs to prevent invalid IDs from entering the system.
func ParseAPIKeyID(s string) (APIKeyID, error) {
	_, err := uuid.Parse(s)
	if err != nil {
		return "", err
	}
	return APIKeyID(s), nil
}

// NewSecretID generates a UUIDv7 secret identifier in compact form
// (32 hex chars, no hyphens) matching the API key wire format.
func NewSecretID() string {
	return strings.ReplaceAll(uuid.Must(uuid.NewV7()).String(), "-", "")
}

// APIKeyIDTime extracts the timestamp embedded in a UUIDv7 ID.
// Returns zero time for invalid UUIDs; caller should check IsZero().
func APIKeyIDTime(id APIKeyID) time.Time {
	u, err := uuid.Parse(string(id))
	if err != nil {
		return time.Time{}
	}
	sec, nsec := u.Time().UnixTime()
	return time.Unix(sec, nsec)
}
