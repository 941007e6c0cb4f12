// Package lrucache implements the sharded, red-black-tree-backed LRU cache
// of spec.md §4.2: fixed node pools per shard, entries pinned by an
// active-count while borrowed, eviction only of unpinned LRU-tail entries,
// and a fail-fast InsufficientHandles when every node in a shard is pinned.
package lrucache

import (
	"sync"

	"github.com/51Degrees/ip-intelligence-go/pkg/ipierr"
)

// Loader fills dst (reusing its backing array when large enough) with the
// bytes for key, returning the (possibly reallocated) slice actually
// populated.
type Loader func(key int64, dst []byte) ([]byte, error)

// node is one pooled cache entry: tree membership, LRU-list membership,
// and the data/active-count pair spec.md §4.2 describes.
type node struct {
	tree        treeLinks
	data        []byte
	activeCount int32
	lruPrev     uint32
	lruNext     uint32
	inTree      bool
}

// shard owns one capacity-sized node pool, its RB-tree, and its LRU list,
// all behind a single mutex (spec.md §4.2).
type shard struct {
	mu        sync.Mutex
	nodes     []node
	tree      rbTree
	capacity  int
	allocated int
	lruHead   uint32
	lruTail   uint32
	hits      uint64
	misses    uint64
	load      Loader
}

const noLink = 0 // reuses nilIdx's value; the node pool's slot 0 is never used as live data either

func newShard(capacity int, load Loader) *shard {
	s := &shard{
		nodes:    make([]node, capacity+1), // slot 0 unused (sentinel)
		capacity: capacity,
		load:     load,
	}
	s.tree = rbTree{pool: &s.nodes}
	return s
}

func (s *shard) lruUnlink(i uint32) {
	n := &s.nodes[i]
	if n.lruPrev != noLink {
		s.nodes[n.lruPrev].lruNext = n.lruNext
	} else {
		s.lruHead = n.lruNext
	}
	if n.lruNext != noLink {
		s.nodes[n.lruNext].lruPrev = n.lruPrev
	} else {
		s.lruTail = n.lruPrev
	}
	n.lruPrev, n.lruNext = noLink, noLink
}

func (s *shard) lruPushHead(i uint32) {
	n := &s.nodes[i]
	n.lruPrev = noLink
	n.lruNext = s.lruHead
	if s.lruHead != noLink {
		s.nodes[s.lruHead].lruPrev = i
	}
	s.lruHead = i
	if s.lruTail == noLink {
		s.lruTail = i
	}
}

// get returns a pinned node index for key, loading on miss. Error is
// InsufficientHandles if every node is already pinned.
func (s *shard) get(key int64) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx, ok := s.tree.search(key); ok {
		n := &s.nodes[idx]
		if n.activeCount == 0 {
			s.lruUnlink(idx)
		}
		n.activeCount++
		s.hits++
		return idx, nil
	}

	idx, err := s.acquireFreeNode()
	if err != nil {
		return 0, err
	}
	n := &s.nodes[idx]
	data, lerr := s.load(key, n.data[:0])
	if lerr != nil {
		// node stays unallocated/free; nothing to roll back since it was
		// never inserted into the tree.
		s.freeNode(idx)
		return 0, lerr
	}
	n.data = data
	n.activeCount = 1
	n.tree.key = key
	s.tree.insert(idx)
	n.inTree = true
	s.misses++
	return idx, nil
}

// acquireFreeNode returns an index ready to receive a fresh entry: either
// the next never-used pool slot, or the current LRU victim (which must be
// unpinned).
func (s *shard) acquireFreeNode() (uint32, error) {
	if s.allocated < s.capacity {
		s.allocated++
		return uint32(s.allocated), nil
	}
	if s.lruTail == noLink {
		return 0, ipierr.New(ipierr.InsufficientHandles, "lru cache shard exhausted: no unpinned entries")
	}
	victim := s.lruTail
	n := &s.nodes[victim]
	if n.activeCount != 0 {
		return 0, ipierr.New(ipierr.InsufficientHandles, "lru cache shard exhausted: victim pinned")
	}
	s.lruUnlink(victim)
	if n.inTree {
		s.tree.delete(victim)
		n.inTree = false
	}
	return victim, nil
}

func (s *shard) freeNode(idx uint32) {
	if s.allocated > 0 && uint32(s.allocated) == idx {
		s.allocated--
		return
	}
	// a recycled LRU victim: already out of the tree, so it rejoins the
	// LRU list as an evictable, unpinned node.
	s.lruPushHead(idx)
}

// release decrements idx's active count; at zero it rejoins the LRU list
// as most-recently-used-but-unpinned (head of the free-for-eviction order
// is the tail, so release pushes to head = least likely to be evicted
// next).
func (s *shard) release(idx uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := &s.nodes[idx]
	if n.activeCount > 0 {
		n.activeCount--
	}
	if n.activeCount == 0 {
		s.lruPushHead(idx)
	}
}

// Cache is the sharded LRU cache. Construct with New; Get/Release borrow
// and return entries by key.
type Cache struct {
	shards      []*shard
	concurrency int
	hash        func(key int64) int64
}

// Config mirrors spec.md §4.2's constructor parameters.
type Config struct {
	Capacity    int
	Concurrency int
	Load        Loader

	// Hash maps a key to the value sharding is based on. Nil defaults to
	// the identity function, which is exact (no collision risk) for the
	// raw collection-offset keys every current caller uses; a caller
	// keying the cache on something wider than a shard index range (e.g.
	// a non-uniformly distributed external id) should supply one so
	// shardFor spreads load evenly across shards instead of skewing it.
	Hash func(key int64) int64
}

// New builds a cache. Capacity is rounded up so each shard's capacity is at
// least Concurrency, and a configuration whose capacity is smaller than
// concurrency^2 is rejected (spec.md §4.2).
func New(cfg Config) (*Cache, error) {
	if cfg.Concurrency < 1 {
		return nil, ipierr.New(ipierr.InvalidConfig, "lru cache concurrency must be >= 1")
	}
	if cfg.Load == nil {
		return nil, ipierr.New(ipierr.InvalidConfig, "lru cache requires a Load callback")
	}
	if cfg.Capacity < cfg.Concurrency*cfg.Concurrency {
		return nil, ipierr.New(ipierr.InvalidConfig, "lru cache capacity must be >= concurrency^2")
	}

	perShard := (cfg.Capacity + cfg.Concurrency - 1) / cfg.Concurrency
	if perShard < 1 {
		perShard = 1
	}
	hash := cfg.Hash
	if hash == nil {
		hash = func(k int64) int64 { return k }
	}
	c := &Cache{
		shards:      make([]*shard, cfg.Concurrency),
		concurrency: cfg.Concurrency,
		hash:        hash,
	}
	for i := range c.shards {
		c.shards[i] = newShard(perShard, cfg.Load)
	}
	return c, nil
}

func (c *Cache) shardFor(key int64) *shard {
	h := c.hash(key)
	if h < 0 {
		h = -h
	}
	return c.shards[h%int64(c.concurrency)]
}

// Item is a pinned, released-on-Release handle onto one cache entry's bytes.
type Item struct {
	shard *shard
	idx   uint32
	Bytes []byte
}

// Get borrows the entry for key, loading it on first miss. The returned
// Item must be released via Release.
func (c *Cache) Get(key int64) (*Item, error) {
	s := c.shardFor(key)
	idx, err := s.get(key)
	if err != nil {
		return nil, err
	}
	return &Item{shard: s, idx: idx, Bytes: s.nodes[idx].data}, nil
}

// Release returns an Item's borrow to the cache.
func (c *Cache) Release(it *Item) {
	if it == nil {
		return
	}
	it.shard.release(it.idx)
}

// ShardStats reports one shard's live counters, for Stats().
type ShardStats struct {
	Allocated int
	Capacity  int
	Hits      uint64
	Misses    uint64
}

// Stats returns a per-shard snapshot (spec.md's "introspection" surface —
// see SPEC_FULL.md §4 Stats()).
func (c *Cache) Stats() []ShardStats {
	out := make([]ShardStats, len(c.shards))
	for i, s := range c.shards {
		s.mu.Lock()
		out[i] = ShardStats{
			Allocated: s.allocated,
			Capacity:  s.capacity,
			Hits:      s.hits,
			Misses:    s.misses,
		}
		s.mu.Unlock()
	}
	return out
}
