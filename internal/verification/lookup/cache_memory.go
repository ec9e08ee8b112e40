package lookup

import (
	"context"
	"sync"
	"time"

	"canvass/internal/domain"
	id "canvass/pkg/domain"
	"canvass/pkg/platform/sentinel"
)

type cachedResult struct {
	result   domain.VerificationResult
	storedAt time.Time
}

// InMemoryCache keeps results for a fixed TTL.
type InMemoryCache struct {
	mu      sync.RWMutex
	results map[string]cachedResult
	ttl     time.Duration
	now     func() time.Time
}

func NewInMemoryCache(ttl time.Duration) *InMemoryCache {
	return &InMemoryCache{
		results: make(map[string]cachedResult),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *InMemoryCache) Save(_ context.Context, result domain.VerificationResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[result.IdentityNumber] = cachedResult{result: result, storedAt: c.now()}
	return nil
}

// Find returns sentinel.ErrNotFound when the entry is missing or older than the TTL.
func (c *InMemoryCache) Find(_ context.Context, n id.IdentityNumber) (domain.VerificationResult, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if cached, ok := c.results[n.String()]; ok && c.now().Sub(cached.storedAt) < c.ttl {
		return cached.result, nil
	}
	return domain.VerificationResult{}, sentinel.ErrNotFound
}
