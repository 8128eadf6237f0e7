package ports

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when the key is absent or expired
var ErrNotFound = errors.New("key not found")

// TokenStore shares cached access tokens between client instances.
// The credential manager treats it as best-effort: a store failure
// falls back to a fresh token fetch.
type TokenStore interface {
	// Set stores a value under key for at most ttl
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Get retrieves a value by key, or ErrNotFound
	Get(ctx context.Context, key string) (string, error)

	// Delete removes a key; deleting an absent key is not an error
	Delete(ctx context.Context, key string) error
}
