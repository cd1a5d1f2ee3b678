package domain

import (
	"context"
	"time"
)

// CacheError represents an error originating from the cache.
type CacheError string

func (e CacheError) Error() string {
	return string(e)
}

// ErrCacheMiss is returned when a key is not found in the cache.
const ErrCacheMiss = CacheError("cache: key not found")

// Cache defines the interface (port) for caching operations.
type Cache interface {
	// Get returns ErrCacheMiss if the key is not found.
	Get(ctx context.Context, key string) (string, error)

	// Set overwrites any existing value. An expiration of 0 keeps the item indefinitely.
	Set(ctx context.Context, key string, value string, expiration time.Duration) error

	// SetNX sets key only if it does not exist and reports whether it was set.
	SetNX(ctx context.Context, key string, value string, expiration time.Duration) (bool, error)

	// Delete should not return an error if the key is not found.
	Delete(ctx context.Context, key string) error

	Ping(ctx context.Context) error
}

// SessionTracker remembers which sessions already logged their login event.
// A flag is scoped to (uid, session ID); two users sending the same session ID
// never share one.
type SessionTracker interface {
	// MarkLogin returns true the first time it is called for a user's session.
	MarkLogin(ctx context.Context, uid, sessionID string) (bool, error)
	// Clear forgets the session so the next login is logged again.
	Clear(ctx context.Context, uid, sessionID string) error
}
