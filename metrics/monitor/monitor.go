// Package monitor renders cache.CacheStats snapshots into the two report
// formats spec section 6 calls for: a hierarchical text report for human
// consumption and a "name value" line-oriented metrics format with
// standard counter/gauge annotations.
package monitor

import (
	"fmt"
	"strings"

	"github.com/ragstack/instancecache/cache"
)

// NamedStats pairs a human-readable cache name with its stats snapshot,
// letting TextReport/PrometheusText render several caches (embedding,
// vector-processor, rerank-model) in one pass.
type NamedStats struct {
	Name    string
	Stats   cache.CacheStats
	MaxSize int
}

// Efficiency buckets a hit rate into the four-tier rating used by the
// original vector-cache monitor (cache_monitor.py's _calculate_efficiency).
func Efficiency(hitRate float64, total uint64) string {
	if total == 0 {
		return "No data"
	}
	switch {
	case hitRate >= 0.9:
		return "Excellent (90%+)"
	case hitRate >= 0.75:
		return "Good (75-90%)"
	case hitRate >= 0.5:
		return "Fair (50-75%)"
	default:
		return "Poor (<50%)"
	}
}

// TextReport renders a hierarchical, multi-line human-readable report.
func TextReport(caches []NamedStats) string {
	var b strings.Builder
	sep := strings.Repeat("=", 60)
	fmt.Fprintln(&b, sep)
	fmt.Fprintln(&b, "INSTANCE CACHE STATISTICS")
	fmt.Fprintln(&b, sep)
	for _, c := range caches {
		total := c.Stats.Hits + c.Stats.Misses
		fmt.Fprintf(&b, "\n%s:\n", c.Name)
		fmt.Fprintf(&b, "  Size: %d/%d\n", c.Stats.Size, c.MaxSize)
		fmt.Fprintf(&b, "  Hits: %d\n", c.Stats.Hits)
		fmt.Fprintf(&b, "  Misses: %d\n", c.Stats.Misses)
		fmt.Fprintf(&b, "  Hit Rate: %.2f%%\n", c.Stats.HitRate*100)
		fmt.Fprintf(&b, "  Efficiency: %s\n", Efficiency(c.Stats.HitRate, total))
		fmt.Fprintf(&b, "  Evictions: %d\n", c.Stats.Evictions)
		fmt.Fprintf(&b, "  Expirations: %d\n", c.Stats.Expired)
	}
	fmt.Fprintln(&b, sep)
	return b.String()
}

// PrometheusText renders the counters/gauges in the exposition-format-like
// "name value" lines with HELP/TYPE annotations, for backends that scrape a
// plain-text endpoint rather than linking the Prometheus client library.
func PrometheusText(caches []NamedStats) string {
	var b strings.Builder
	line := func(metric, help, typ string, value float64) {
		fmt.Fprintf(&b, "# HELP %s %s\n", metric, help)
		fmt.Fprintf(&b, "# TYPE %s %s\n", metric, typ)
		fmt.Fprintf(&b, "%s %v\n", metric, value)
	}
	for _, c := range caches {
		prefix := "instancecache_" + sanitize(c.Name)
		line(prefix+"_hits_total", "Total cache hits", "counter", float64(c.Stats.Hits))
		line(prefix+"_misses_total", "Total cache misses", "counter", float64(c.Stats.Misses))
		line(prefix+"_size", "Current cache size", "gauge", float64(c.Stats.Size))
		line(prefix+"_hit_rate", "Cache hit rate", "gauge", c.Stats.HitRate)
		line(prefix+"_evictions_total", "Total cache evictions", "counter", float64(c.Stats.Evictions))
		line(prefix+"_expirations_total", "Total cache expirations", "counter", float64(c.Stats.Expired))
	}
	return b.String()
}

func sanitize(name string) string {
	r := strings.NewReplacer(" ", "_", "-", "_")
	return strings.ToLower(r.Replace(name))
}
