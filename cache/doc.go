// Package cache provides TtlLruCache, a generic, process-local, bounded
// cache with TTL expiration, LRU eviction, hit/miss/eviction/expiration
// counters, and a double-checked load protocol suitable for caching
// expensive-to-construct instances (model handles, DB connections) behind
// a single factory call per key.
//
// Design
//
//   - Concurrency: a single sync.RWMutex guards both the key->node map and
//     the counters. The read-before-lock step of GetOrLoad uses RLock and
//     may observe an entry mid-replacement; every subsequent mutating step
//     re-verifies under an exclusive Lock, so correctness does not depend
//     on the fast path being precise — only on the slow path being so.
//
//   - Storage: a map[K]*node plus an intrusive MRU<->LRU doubly linked
//     list. Lookup, promotion and LRU eviction are O(1) expected; the
//     expired sweep run on each miss walks the whole map.
//
//   - TTL: entries carry an insertedAt timestamp captured once, at
//     insertion; TTL is never refreshed on hit. Expiration is checked
//     lazily on read and swept once per miss before a new load.
//
//   - GetOrLoad: on miss, the supplied loader is invoked while still
//     holding the exclusive lock, guaranteeing at most one construction
//     per key per race window. A loader error is never cached.
//
// Basic usage
//
//	c := cache.New[string, string](cache.CacheConfig{TTL: 30 * time.Minute, MaxSize: 100}, cache.Options[string, string]{})
//	v, err := c.GetOrLoad(ctx, "key", func(ctx context.Context) (string, error) {
//	    return expensiveLoad(ctx)
//	})
package cache
