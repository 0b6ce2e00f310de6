package services

import (
	"context"
	"sync"
	"time"

	"drivon-backend/internal/models"
)

// DefaultTTL is how long a fetched snapshot stays fresh.
const DefaultTTL = 60 * time.Second

// Fetcher loads the current listing from the backing store.
type Fetcher interface {
	ActiveServices(ctx context.Context) ([]models.Service, error)
}

// Cache keeps one complete snapshot of the services listing and refreshes it
// once the TTL has elapsed. A fresh snapshot is served without touching the
// store. The fetch runs outside the lock, so concurrent callers racing past
// an expired snapshot may each fetch once; the publish itself is atomic and
// a reader never observes a partially updated snapshot.
type Cache struct {
	fetcher Fetcher
	ttl     time.Duration
	now     func() time.Time

	mu    sync.Mutex
	data  []models.Service
	until time.Time
}

func NewCache(fetcher Fetcher, ttl time.Duration) *Cache {
	return &Cache{fetcher: fetcher, ttl: ttl, now: time.Now}
}

// Get returns the cached snapshot while it is fresh, otherwise fetches a new
// one. A failed fetch leaves the stored snapshot and expiry untouched and is
// reported to this caller only. Callers receive their own copy.
func (c *Cache) Get(ctx context.Context) ([]models.Service, error) {
	c.mu.Lock()
	if c.data != nil && c.now().Before(c.until) {
		snapshot := c.data
		c.mu.Unlock()
		return copySnapshot(snapshot), nil
	}
	c.mu.Unlock()

	fetched, err := c.fetcher.ActiveServices(ctx)
	if err != nil {
		return nil, err
	}
	if fetched == nil {
		// An empty listing is still a valid snapshot.
		fetched = []models.Service{}
	}

	c.mu.Lock()
	c.data = fetched
	c.until = c.now().Add(c.ttl)
	c.mu.Unlock()

	return copySnapshot(fetched), nil
}

func copySnapshot(src []models.Service) []models.Service {
	out := make([]models.Service, len(src))
	copy(out, src)
	return out
}
