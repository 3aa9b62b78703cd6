package services

import (
	"context"
	"sync"
	"time"

	"github.com/adsero/adsero-assistant/internal/sharepoint"
)

// DefaultCatalogTTL is how long a grounding lookup is reused
const DefaultCatalogTTL = 5 * time.Minute

// CatalogCache keeps recent catalog lookups in memory so that repeated
// grounding of the same kind does not pay the catalog latency again.
// Expired entries are replaced on the next miss.
type CatalogCache struct {
	catalog sharepoint.Catalog
	ttl     time.Duration
	now     func() time.Time

	mu    sync.RWMutex
	items map[string]*cacheItem
}

type cacheItem struct {
	value      interface{}
	expiration time.Time
}

// NewCatalogCache wraps catalog with a TTL cache
func NewCatalogCache(catalog sharepoint.Catalog, ttl time.Duration) *CatalogCache {
	if ttl <= 0 {
		ttl = DefaultCatalogTTL
	}
	return &CatalogCache{
		catalog: catalog,
		ttl:     ttl,
		now:     time.Now,
		items:   make(map[string]*cacheItem),
	}
}

// Documents returns cached documents for query, falling back to the catalog
func (c *CatalogCache) Documents(ctx context.Context, query string) ([]sharepoint.Document, error) {
	key := "documents:" + query
	if v, ok := c.get(key); ok {
		return v.([]sharepoint.Document), nil
	}

	docs, err := c.catalog.Documents(ctx, query)
	if err != nil {
		return nil, err
	}
	c.set(key, docs)
	return docs, nil
}

// Reports returns cached reports for query, falling back to the catalog
func (c *CatalogCache) Reports(ctx context.Context, query string) ([]sharepoint.Report, error) {
	key := "reports:" + query
	if v, ok := c.get(key); ok {
		return v.([]sharepoint.Report), nil
	}

	reports, err := c.catalog.Reports(ctx, query)
	if err != nil {
		return nil, err
	}
	c.set(key, reports)
	return reports, nil
}

// Clear drops every cached lookup
func (c *CatalogCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*cacheItem)
}

func (c *CatalogCache) get(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, exists := c.items[key]
	if !exists || c.now().After(item.expiration) {
		return nil, false
	}
	return item.value, true
}

func (c *CatalogCache) set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = &cacheItem{
		value:      value,
		expiration: c.now().Add(c.ttl),
	}
}
