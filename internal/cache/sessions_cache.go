package cache

import (
	"context"
	"sync"
	"time"

	"pdfchat/internal/model"
)

const DefaultSessionsTTL = 5 * time.Second

// SessionsLoader reads the full session list from the store.
type SessionsLoader func(ctx context.Context) ([]model.Session, error)

// SessionsCache keeps a single snapshot of the session list. A snapshot is
// served while it is younger than the TTL. Loads are not deduplicated, so
// callers racing on an expired snapshot may each hit the loader.
type SessionsCache struct {
	load SessionsLoader
	ttl  time.Duration
	now  func() time.Time

	mu         sync.RWMutex
	snapshot   []model.Session
	capturedAt time.Time
	valid      bool
}

func NewSessionsCache(load SessionsLoader, ttl time.Duration, now func() time.Time) *SessionsCache {
	if ttl <= 0 {
		ttl = DefaultSessionsTTL
	}
	if now == nil {
		now = time.Now
	}
	return &SessionsCache{load: load, ttl: ttl, now: now}
}

func (c *SessionsCache) Sessions(ctx context.Context) ([]model.Session, error) {
	c.mu.RLock()
	if c.valid && c.now().Sub(c.capturedAt) < c.ttl {
		snapshot := c.snapshot
		c.mu.RUnlock()
		return snapshot, nil
	}
	c.mu.RUnlock()

	// The snapshot ages from when the read started, not when it finished.
	startedAt := c.now()
	sessions, err := c.load(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.snapshot = sessions
	c.capturedAt = startedAt
	c.valid = true
	c.mu.Unlock()
	return sessions, nil
}
