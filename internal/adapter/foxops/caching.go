package foxops

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/arturoeanton/foxops-dashboard/internal/domain"
	"github.com/arturoeanton/foxops-dashboard/internal/port"
)

const listKey = "list"

// CachingClient decorates an IncarnationAPI with a short-lived read cache.
// Reads of the list and of single incarnations are cached; any mutation drops
// the entries it can affect.
type CachingClient struct {
	next  port.IncarnationAPI
	cache *cache
}

// NewCachingClient wraps next. A ttl <= 0 disables caching.
func NewCachingClient(next port.IncarnationAPI, ttl time.Duration) *CachingClient {
	return &CachingClient{next: next, cache: newCache(ttl)}
}

func (c *CachingClient) TestAuth(ctx context.Context) error {
	return c.next.TestAuth(ctx)
}

// ListIncarnations returns the cached snapshot when fresh. Callers get their
// own copy of the slice.
func (c *CachingClient) ListIncarnations(ctx context.Context) ([]domain.IncarnationSummary, error) {
	if cached, ok := c.cache.get(listKey); ok {
		if list, ok := cached.([]domain.IncarnationSummary); ok {
			slog.Debug("incarnation list cache hit", "count", len(list))
			return cloneList(list), nil
		}
	}

	list, err := c.next.ListIncarnations(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.set(listKey, cloneList(list))
	return list, nil
}

func (c *CachingClient) GetIncarnation(ctx context.Context, id int) (*domain.Incarnation, error) {
	key := incarnationKey(id)
	if cached, ok := c.cache.get(key); ok {
		if inc, ok := cached.(domain.Incarnation); ok {
			return &inc, nil
		}
	}

	inc, err := c.next.GetIncarnation(ctx, id)
	if err != nil {
		return nil, err
	}
	c.cache.set(key, *inc)
	return inc, nil
}

func (c *CachingClient) CreateIncarnation(ctx context.Context, req domain.CreateIncarnationRequest, allowImport bool) (*domain.Incarnation, error) {
	inc, err := c.next.CreateIncarnation(ctx, req, allowImport)
	c.cache.delete(listKey)
	return inc, err
}

func (c *CachingClient) UpdateIncarnation(ctx context.Context, id int, req domain.UpdateIncarnationRequest) (*domain.Incarnation, error) {
	inc, err := c.next.UpdateIncarnation(ctx, id, req)
	c.invalidate(id)
	return inc, err
}

func (c *CachingClient) PatchIncarnation(ctx context.Context, id int, req domain.PatchIncarnationRequest) (*domain.Incarnation, error) {
	inc, err := c.next.PatchIncarnation(ctx, id, req)
	c.invalidate(id)
	return inc, err
}

func (c *CachingClient) ResetIncarnation(ctx context.Context, id int) error {
	err := c.next.ResetIncarnation(ctx, id)
	c.invalidate(id)
	return err
}

func (c *CachingClient) DeleteIncarnation(ctx context.Context, id int) error {
	err := c.next.DeleteIncarnation(ctx, id)
	c.invalidate(id)
	return err
}

// GetIncarnationDiff is never cached; the diff depends on the template head.
func (c *CachingClient) GetIncarnationDiff(ctx context.Context, id int) (string, error) {
	return c.next.GetIncarnationDiff(ctx, id)
}

func (c *CachingClient) invalidate(id int) {
	c.cache.delete(incarnationKey(id))
	c.cache.delete(listKey)
}

func incarnationKey(id int) string {
	return "incarnation:" + strconv.Itoa(id)
}

func cloneList(list []domain.IncarnationSummary) []domain.IncarnationSummary {
	out := make([]domain.IncarnationSummary, len(list))
	copy(out, list)
	return out
}

// cache is a TTL map. Expired entries are dropped lazily on read.
type cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

type cacheEntry struct {
	value     any
	expiresAt time.Time
}

func newCache(ttl time.Duration) *cache {
	return &cache{ttl: ttl, entries: make(map[string]cacheEntry), now: time.Now}
}

func (c *cache) get(key string) (any, bool) {
	if c.ttl <= 0 {
		return nil, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.delete(key)
		return nil, false
	}
	return entry.value, true
}

func (c *cache) set(key string, value any) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{value: value, expiresAt: c.now().Add(c.ttl)}
}

func (c *cache) delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}
