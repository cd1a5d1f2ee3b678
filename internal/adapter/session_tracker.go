package adapter

import (
	"context"
	"time"

	"ecg-academy/internal/cache"
	"ecg-academy/internal/domain"
)

// CacheSessionTracker keeps one login flag per user session in a domain.Cache.
// With Redis the flag is shared by every API instance.
type CacheSessionTracker struct {
	cache domain.Cache
	ttl   time.Duration
}

func NewCacheSessionTracker(c domain.Cache, ttl time.Duration) *CacheSessionTracker {
	return &CacheSessionTracker{cache: c, ttl: ttl}
}

func (t *CacheSessionTracker) MarkLogin(ctx context.Context, uid, sessionID string) (bool, error) {
	return t.cache.SetNX(ctx, cache.LoginSessionKey(uid, sessionID), "1", t.ttl)
}

func (t *CacheSessionTracker) Clear(ctx context.Context, uid, sessionID string) error {
	return t.cache.Delete(ctx, cache.LoginSessionKey(uid, sessionID))
}
