package cache

// CacheStats is a point-in-time snapshot of cache counters. Hits, Misses,
// Evictions, and Expired are monotonic within a process except that
// ClearStats resets them to zero; Size and HitRate are derived at snapshot
// time.
type CacheStats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Expired   uint64
	Size      int
	HitRate   float64
}
