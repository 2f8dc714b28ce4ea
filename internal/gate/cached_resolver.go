package gate

import (
	"context"
	"sync"
	"time"
)

// CachedResolver wraps a ProfileResolver with TTL caching so authorization
// checks do not hit the database on every request.
type CachedResolver struct {
	inner ProfileResolver
	ttl   time.Duration

	mu    sync.RWMutex
	cache map[uint]cacheEntry
}

type cacheEntry struct {
	profile   Profile
	expiresAt time.Time
}

// NewCachedResolver wraps inner with a cache; ttl is how long entries live.
func NewCachedResolver(inner ProfileResolver, ttl time.Duration) *CachedResolver {
	return &CachedResolver{inner: inner, ttl: ttl, cache: make(map[uint]cacheEntry)}
}

// Resolve returns the cached profile or fetches from the inner resolver.
func (r *CachedResolver) Resolve(ctx context.Context, userID uint) (Profile, error) {
	r.mu.RLock()
	entry, ok := r.cache[userID]
	r.mu.RUnlock()
	if ok && time.Now().Before(entry.expiresAt) {
		return entry.profile, nil
	}

	profile, err := r.inner.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.cache[userID] = cacheEntry{profile: profile, expiresAt: time.Now().Add(r.ttl)}
	r.mu.Unlock()
	return profile, nil
}

// Invalidate drops a user from the cache. Call when a profile assignment changes.
func (r *CachedResolver) Invalidate(userID uint) {
	r.mu.Lock()
	delete(r.cache, userID)
	r.mu.Unlock()
}

// InvalidateAll clears the cache. Call when profile permissions are edited.
func (r *CachedResolver) InvalidateAll() {
	r.mu.Lock()
	r.cache = make(map[uint]cacheEntry)
	r.mu.Unlock()
}
