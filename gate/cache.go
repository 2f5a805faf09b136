package gate

import (
	"context"
	"sync"
	"time"
)

// CachedResolver memoizes another resolver for a fixed TTL.
type CachedResolver[U comparable] struct {
	inner ProfileResolver[U]
	ttl   time.Duration
	now   func() time.Time

	mu      sync.RWMutex
	entries map[U]cached
}

type cached struct {
	profile Profile
	expires time.Time
}

func NewCachedResolver[U comparable](inner ProfileResolver[U], ttl time.Duration) *CachedResolver[U] {
	return &CachedResolver[U]{inner: inner, ttl: ttl, now: time.Now, entries: make(map[U]cached)}
}

func (c *CachedResolver[U]) Resolve(ctx context.Context, subject U) (Profile, error) {
	c.mu.RLock()
	e, ok := c.entries[subject]
	c.mu.RUnlock()
	if ok && c.now().Before(e.expires) {
		return e.profile, nil
	}

	p, err := c.inner.Resolve(ctx, subject)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.entries[subject] = cached{profile: p, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return p, nil
}

// Invalidate drops one subject, e.g. after a profile reassignment.
func (c *CachedResolver[U]) Invalidate(subject U) {
	c.mu.Lock()
	delete(c.entries, subject)
	c.mu.Unlock()
}

// InvalidateAll drops every entry, e.g. after a profile's permissions change.
func (c *CachedResolver[U]) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[U]cached)
	c.mu.Unlock()
}
