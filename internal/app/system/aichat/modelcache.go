package aichat

import (
	"context"
	"sync"
	"time"
)

// DefaultModelTTL is how long a fetched model list is trusted.
const DefaultModelTTL = 5 * time.Minute

// failedFetchRetry bounds how often a failing or empty model listing is
// retried. The fallback list is served in between.
const failedFetchRetry = time.Minute

// ModelCache holds the provider's model names for a TTL and remembers which
// model answered last, so the next request starts there. One cache is
// created per Client; nothing about it is process-global.
type ModelCache struct {
	mu        sync.Mutex
	ttl       time.Duration
	fallback  []string
	models    []string
	nextFetch time.Time
	preferred string
	now       func() time.Time
}

// NewModelCache creates a cache. fallback is used whenever the provider
// list cannot be fetched or is empty.
func NewModelCache(ttl time.Duration, fallback []string) *ModelCache {
	if ttl <= 0 {
		ttl = DefaultModelTTL
	}
	return &ModelCache{
		ttl:      ttl,
		fallback: append([]string(nil), fallback...),
		now:      time.Now,
	}
}

// Models returns the cached list, calling fetch when it has expired. A
// fetch error is not fatal: the last good list or the fallback is used, and
// the next fetch waits for the shorter of the TTL and failedFetchRetry.
func (c *ModelCache) Models(ctx context.Context, fetch func(context.Context) ([]string, error)) []string {
	c.mu.Lock()
	if fetch == nil || c.now().Before(c.nextFetch) {
		out := c.listLocked()
		c.mu.Unlock()
		return out
	}
	c.mu.Unlock()

	// Fetch outside the lock; concurrent refreshes are harmless.
	names, err := fetch(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil && len(names) > 0 {
		c.models = append([]string(nil), names...)
		c.nextFetch = c.now().Add(c.ttl)
	} else {
		c.nextFetch = c.now().Add(min(c.ttl, failedFetchRetry))
	}
	return c.listLocked()
}

func (c *ModelCache) listLocked() []string {
	if len(c.models) > 0 {
		return append([]string(nil), c.models...)
	}
	return append([]string(nil), c.fallback...)
}

// Order rotates models so the last successful one comes first. Each name
// appears once.
func (c *ModelCache) Order(models []string) []string {
	c.mu.Lock()
	preferred := c.preferred
	c.mu.Unlock()

	start := 0
	for i, m := range models {
		if m == preferred {
			start = i
			break
		}
	}
	out := make([]string, 0, len(models))
	seen := make(map[string]bool, len(models))
	for i := range models {
		m := models[(start+i)%len(models)]
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}

// MarkGood records the model that just answered.
func (c *ModelCache) MarkGood(model string) {
	c.mu.Lock()
	c.preferred = model
	c.mu.Unlock()
}

// Invalidate forces the next Models call to refetch.
func (c *ModelCache) Invalidate() {
	c.mu.Lock()
	c.nextFetch = time.Time{}
	c.mu.Unlock()
}
