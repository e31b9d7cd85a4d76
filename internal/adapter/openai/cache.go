package openai

import (
	"container/list"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/couchcryptid/psychrometer-service/internal/domain"
	"github.com/couchcryptid/psychrometer-service/internal/observability"
)

// CachedTranscriber wraps a Transcriber with an in-memory LRU keyed by image digest.
type CachedTranscriber struct {
	inner   domain.Transcriber
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedTranscriber creates a cache decorator around a transcriber.
func NewCachedTranscriber(inner domain.Transcriber, maxEntries int, metrics *observability.Metrics) *CachedTranscriber {
	return &CachedTranscriber{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedTranscriber) Transcribe(ctx context.Context, image []byte) (domain.Reading, error) {
	sum := sha256.Sum256(image)
	key := hex.EncodeToString(sum[:])

	if reading, ok := c.cache.get(key); ok {
		c.metrics.TranscriptionCache.WithLabelValues("hit").Inc()
		return reading, nil
	}
	c.metrics.TranscriptionCache.WithLabelValues("miss").Inc()

	reading, err := c.inner.Transcribe(ctx, image)
	if err != nil {
		return reading, err
	}
	c.cache.put(key, reading)
	return reading, nil
}

// lruCache is a mutex-guarded LRU of readings; the list front is most recently used.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	order      *list.List
	entries    map[string]*list.Element
}

type cacheEntry struct {
	key     string
	reading domain.Reading
}

func newLRUCache(maxEntries int) *lruCache {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &lruCache{
		maxEntries: maxEntries,
		order:      list.New(),
		entries:    make(map[string]*list.Element),
	}
}

func (c *lruCache) get(key string) (domain.Reading, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return domain.Reading{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).reading, true
}

func (c *lruCache) put(key string, reading domain.Reading) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*cacheEntry).reading = reading
		c.order.MoveToFront(el)
		return
	}

	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, reading: reading})
	if c.order.Len() > c.maxEntries {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
}

func (c *lruCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
