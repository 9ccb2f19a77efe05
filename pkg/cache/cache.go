// Package cache provides a small TTL cache used to avoid re-summarizing
// identical text.
package cache

import (
	"context"
	"time"
)

// Cache stores string values under string keys with a per-entry TTL.
type Cache interface {
	// Get returns the value for key and whether it was present and unexpired.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value under key, replacing any existing entry. A ttl of
	// zero or less means the entry never expires.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Delete removes key if present.
	Delete(ctx context.Context, key string) error
	Close() error
}
