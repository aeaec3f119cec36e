// Package auth provides HMAC-based API key authentication for HTTP services.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// contextKey is a typed key for context values to avoid collisions.
type contextKey string

// clientIDKey is the context key for storing the authenticated client ID.
const clientIDKey = contextKey("client_id")

// Queries interface defines database operations needed for authentication.
// Implemented by *db.Queries to allow query loading via LoadQueries().
type Queries interface {
	Get(name string, dest interface{}, args ...interface{}) error
	Exec(name string, args ...interface{}) (sql.Result, error)
}

// Authenticator validates API keys using HMAC-SHA256 signatures.
// Holds in-memory secret map for O(1) lookup and queries for key verification.
type Authenticator struct {
	secrets map[string][]byte
	queries Queries
}

// NewAuthenticator creates an authenticator with HMAC secrets and query interface.
func NewAuthenticator(secrets map[string][]byte, queries Queries) *Authenticator {
	return &Authenticator{
		secrets: secrets,
		queries: queries,
	}
}

// Authenticate validates an API key and returns the client_id on success.
// Returns a specific error for each failure mode.
func (a *Authenticator) Authenticate(ctx context.Context, apiKey string) (string, error) {
	// Parse API key format
	secretID, _, err := ParseAPIKey(apiKey)
	if err != nil {
		return "", err
	}

	// O(1) lookup of HMAC secret using secret_id from key format
	secret, ok := a.secrets[secretID]
	if !ok {
		return "", ErrUnknownKey
	}

	computedHash := ComputeHMAC(secret, apiKey)

	// Query database by key_hash using named query (unique constraint ensures single result)
	var result struct {
		APIKeyID   string       `db:"api_key_id"`
		ClientID   string       `db:"client_id"`
		RevokedAt  sql.NullTime `db:"revoked_at"`
		LastUsedAt sql.NullTime `db:"last_used_at"`
	}

	err = a.queries.Get("get-api-key-by-hash", &result, computedHash)
	if err == sql.ErrNoRows {
		return "", ErrInvalidKey
	}
	if err != nil {
		return "", fmt.Errorf("database error: %w", err)
	}

	// Check revocation status
	if result.RevokedAt.Valid {
		return "", ErrKeyRevoked
	}

	// Update last_used_at if >1 minute since last update.
	// The throttle keeps hot clients from rewriting the row on every request.
	if shouldUpdateLastUsed(result.LastUsedAt) {
		_, _ = a.queries.Exec("update-last-used", time.Now().UTC(), result.APIKeyID)
	}

	return result.ClientID, nil
}

// shouldUpdateLastUsed implements the 1-minute last-used write throttle.
func shouldUpdateLastUsed(lastUsed sql.NullTime) bool {
	if !lastUsed.Valid {
		return true
	}
	return time.Since(lastUsed.Time) > time.Minute
}

// Middleware returns HTTP middleware that authenticates requests via the
// X-API-Key header and injects the client ID into the request context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey := r.Header.Get("X-API-Key")
		if apiKey == "" {
			http.Error(w, ErrMissingKey.Error(), http.StatusUnauthorized)
			return
		}

		clientID, err := a.Authenticate(r.Context(), apiKey)
		if err != nil {
			switch {
			case errors.Is(err, ErrKeyRevoked):
				http.Error(w, err.Error(), http.StatusForbidden)
			case errors.Is(err, ErrInvalidKeyFormat),
				errors.Is(err, ErrUnknownKey),
				errors.Is(err, ErrInvalidKey):
				http.Error(w, err.Error(), http.StatusUnauthorized)
			default:
				// Database failure: the key may be valid, so do not claim otherwise.
				http.Error(w, "authentication unavailable", http.StatusServiceUnavailable)
			}
			return
		}

		ctx := context.WithValue(r.Context(), clientIDKey, clientID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClientIDFromContext extracts the authenticated client ID from context.
// Returns empty string if not found.
func ClientIDFromContext(ctx context.Context) string {
	if clientID, ok := ctx.Value(clientIDKey).(string); ok {
		return clientID
	}
	return ""
}
