package store

import (
	"github.com/51Degrees/ip-intelligence-go/internal/lrucache"
)

// CachedCollection fronts a secondary Collection (normally a
// *FileCollection) with the sharded LRU cache, honouring spec.md §4.1's
// "invariant between cache and file collections": on a miss the load
// callback reads the secondary, copies the bytes into the cache node, and
// releases the secondary item immediately — no file handle is ever held
// past that one call.
type CachedCollection struct {
	secondary Collection
	cache     *lrucache.Cache
}

// NewCached builds a cache collection over secondary with the given
// capacity/concurrency (spec.md §4.1: "build a cache collection over a
// file collection").
func NewCached(secondary Collection, capacity, concurrency int) (*CachedCollection, error) {
	c := &CachedCollection{secondary: secondary}
	cache, err := lrucache.New(lrucache.Config{
		Capacity:    capacity,
		Concurrency: concurrency,
		Load:        c.load,
	})
	if err != nil {
		return nil, err
	}
	c.cache = cache
	return c, nil
}

func (c *CachedCollection) load(key int64, dst []byte) ([]byte, error) {
	item, err := c.secondary.Get(uint32(key))
	if err != nil {
		return nil, err
	}
	defer item.Release()
	dst = append(dst[:0], item.Bytes...)
	return dst, nil
}

func (c *CachedCollection) Count() uint32       { return c.secondary.Count() }
func (c *CachedCollection) ElementSize() uint32 { return c.secondary.ElementSize() }
func (c *CachedCollection) Size() uint32        { return c.secondary.Size() }
func (c *CachedCollection) Close() error        { return c.secondary.Close() }

// Get returns a pinned cache entry for indexOrOffset, loading it from the
// secondary collection on first access.
func (c *CachedCollection) Get(indexOrOffset uint32) (Item, error) {
	it, err := c.cache.Get(int64(indexOrOffset))
	if err != nil {
		return Item{}, err
	}
	return Item{Bytes: it.Bytes, release: func() { c.cache.Release(it) }}, nil
}

// Stats exposes the underlying cache's per-shard counters.
func (c *CachedCollection) Stats() []lrucache.ShardStats { return c.cache.Stats() }
