package cache

import (
	"context"
	"sync"
	"time"
)

// processStart anchors the monotonic clock nowUnixNano reads from. time.Now()
// carries a monotonic reading, but UnixNano() strips it — only Sub (and
// Since, which calls Sub) consults it. Measuring elapsed time since a fixed
// reference with Since keeps TTL comparisons immune to wall-clock changes
// (NTP steps, manual clock adjustment) instead of reading wall-clock time
// directly.
var processStart = time.Now()

func nowUnixNano() int64 { return int64(time.Since(processStart)) }

// Loader constructs the value for a cache miss. A non-nil error means the
// value is not cached and is propagated unchanged to the GetOrLoad caller.
type Loader[V any] func(ctx context.Context) (V, error)

// node is an intrusive doubly linked list element: head is MRU, tail LRU.
type node[K comparable, V any] struct {
	key        K
	val        V
	insertedAt int64 // Clock nanoseconds, captured once at insertion, never refreshed on hit
	prev, next *node[K, V]
}

// TtlLruCache is a generic, bounded, TTL+LRU cache guarded by a single
// RWMutex. See the package doc for the concurrency protocol.
type TtlLruCache[K comparable, V any] struct {
	mu   sync.RWMutex
	m    map[K]*node[K, V]
	head *node[K, V] // MRU
	tail *node[K, V] // LRU
	size int

	ttl     time.Duration
	maxSize int

	clock   Clock
	metrics Metrics
	onEvict func(key K, value V, reason EvictReason)

	hits, misses, evictions, expired uint64
}

// New constructs a TtlLruCache. Panics if cfg.MaxSize <= 0 — a cache with
// no room for entries is a construction error, not a runtime condition.
func New[K comparable, V any](cfg CacheConfig, opt Options[K, V]) *TtlLruCache[K, V] {
	if cfg.MaxSize <= 0 {
		panic("cache: MaxSize must be > 0")
	}
	if cfg.TTL <= 0 {
		panic("cache: TTL must be > 0")
	}
	metrics := opt.Metrics
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	clock := opt.Clock
	if clock == nil {
		clock = realClock{}
	}
	return &TtlLruCache[K, V]{
		m:       make(map[K]*node[K, V], cfg.MaxSize),
		ttl:     cfg.TTL,
		maxSize: cfg.MaxSize,
		clock:   clock,
		metrics: metrics,
		onEvict: opt.OnEvict,
	}
}

// GetOrLoad returns the cached, fresh value for key; on miss (absent or
// expired) it invokes loader exactly once, under the cache lock, caching
// the result on success. A loader error is propagated unchanged and never
// cached. Concurrent misses on the same key observe the winner's value
// (the loser re-checks after acquiring the lock, not by racing loaders).
func (c *TtlLruCache[K, V]) GetOrLoad(ctx context.Context, key K, loader Loader[V]) (V, error) {
	if v, ok := c.tryHit(key); ok {
		return v, nil
	}

	c.mu.Lock()

	// Double-check: a racing goroutine may have already inserted a fresh
	// value while we were between the fast path and the lock.
	if n, ok := c.m[key]; ok {
		if !c.expiredLocked(n) {
			c.moveToFrontLocked(n)
			c.hits++
			c.metrics.Hit()
			v := n.val
			c.mu.Unlock()
			return v, nil
		}
		// Stale even after the re-check: evict it before loading fresh.
		c.removeNodeLocked(n)
		c.expired++
		c.metrics.Evict(EvictTTL)
		if c.onEvict != nil {
			c.onEvict(n.key, n.val, EvictTTL)
		}
	}

	c.misses++
	c.metrics.Miss()
	c.sweepExpiredLocked()

	v, err := loader(ctx)
	if err != nil {
		c.mu.Unlock()
		return v, err
	}

	c.insertLocked(key, v)
	c.mu.Unlock()
	return v, nil
}

// tryHit is the fast path: an RLock peek followed, only on an apparent
// fresh hit, by a brief exclusive Lock to promote the entry and record the
// hit. It never inserts, evicts on capacity, or counts a miss — those are
// exclusively the slow path's job, so a "false" return here always falls
// through to GetOrLoad's authoritative re-check.
func (c *TtlLruCache[K, V]) tryHit(key K) (V, bool) {
	var zero V

	c.mu.RLock()
	n, ok := c.m[key]
	if !ok {
		c.mu.RUnlock()
		return zero, false
	}
	stale := c.expiredLocked(n)
	c.mu.RUnlock()

	if stale {
		// Re-check under the exclusive lock: another goroutine may have
		// already replaced or removed this entry.
		c.mu.Lock()
		if n2, ok2 := c.m[key]; ok2 && c.expiredLocked(n2) {
			c.removeNodeLocked(n2)
			c.expired++
			c.metrics.Evict(EvictTTL)
			if c.onEvict != nil {
				c.onEvict(n2.key, n2.val, EvictTTL)
			}
		}
		c.mu.Unlock()
		return zero, false
	}

	c.mu.Lock()
	if n2, ok2 := c.m[key]; ok2 && !c.expiredLocked(n2) {
		c.moveToFrontLocked(n2)
		c.hits++
		c.metrics.Hit()
		v := n2.val
		c.mu.Unlock()
		return v, true
	}
	c.mu.Unlock()
	return zero, false
}

// Clear atomically empties the cache. Stats are left untouched.
func (c *TtlLruCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m = make(map[K]*node[K, V], c.maxSize)
	c.head, c.tail = nil, nil
	c.size = 0
	c.metrics.Size(0)
}

// ClearStats zeroes all counters. Size is unaffected.
func (c *TtlLruCache[K, V]) ClearStats() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hits, c.misses, c.evictions, c.expired = 0, 0, 0, 0
}

// Stats returns a snapshot of current counters plus derived HitRate (0
// when hits+misses == 0) and Size.
func (c *TtlLruCache[K, V]) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var hitRate float64
	if total := c.hits + c.misses; total > 0 {
		hitRate = float64(c.hits) / float64(total)
	}
	return CacheStats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Expired:   c.expired,
		Size:      c.size,
		HitRate:   hitRate,
	}
}

// -------------------- internals (mu held) --------------------

func (c *TtlLruCache[K, V]) now() int64 { return c.clock.NowUnixNano() }

func (c *TtlLruCache[K, V]) expiredLocked(n *node[K, V]) bool {
	return c.now()-n.insertedAt > int64(c.ttl)
}

// insertLocked adds a brand-new entry at MRU and evicts LRU entries until
// the size invariant holds. Safe to call only for keys not already present.
func (c *TtlLruCache[K, V]) insertLocked(key K, val V) {
	n := &node[K, V]{key: key, val: val, insertedAt: c.now()}
	c.m[key] = n
	c.pushFrontLocked(n)

	for c.size > c.maxSize {
		victim := c.tail
		if victim == nil {
			break
		}
		key, val := victim.key, victim.val
		c.removeNodeLocked(victim)
		c.evictions++
		c.metrics.Evict(EvictLRU)
		if c.onEvict != nil {
			c.onEvict(key, val, EvictLRU)
		}
	}
	c.metrics.Size(c.size)
}

// sweepExpiredLocked walks the map once and drops every stale entry,
// counting each as an expiration. Run once per miss, right before loading,
// so a cache that is never hit still reclaims space from dead entries.
func (c *TtlLruCache[K, V]) sweepExpiredLocked() {
	if len(c.m) == 0 {
		return
	}
	now := c.now()
	for _, n := range c.m {
		if now-n.insertedAt > int64(c.ttl) {
			key, val := n.key, n.val
			c.removeNodeLocked(n)
			c.expired++
			c.metrics.Evict(EvictTTL)
			if c.onEvict != nil {
				c.onEvict(key, val, EvictTTL)
			}
		}
	}
}

// removeNodeLocked unlinks n from the MRU/LRU list and deletes it from the
// map. Callers must only invoke this for a node still resident in c.m.
func (c *TtlLruCache[K, V]) removeNodeLocked(n *node[K, V]) {
	if n.prev != nil {
		n.prev.next = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	}
	if c.head == n {
		c.head = n.next
	}
	if c.tail == n {
		c.tail = n.prev
	}
	n.prev, n.next = nil, nil
	delete(c.m, n.key)
	c.size--
}

func (c *TtlLruCache[K, V]) pushFrontLocked(n *node[K, V]) {
	n.prev = nil
	n.next = c.head
	if c.head != nil {
		c.head.prev = n
	}
	c.head = n
	if c.tail == nil {
		c.tail = n
	}
	c.size++
}

func (c *TtlLruCache[K, V]) moveToFrontLocked(n *node[K, V]) {
	if n == c.head {
		return
	}
	if n.prev != nil {
		n.prev.next = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	}
	if c.tail == n {
		c.tail = n.prev
	}
	n.prev = nil
	n.next = c.head
	if c.head != nil {
		c.head.prev = n
	}
	c.head = n
	if c.tail == nil {
		c.tail = n
	}
}
