// Package obslog wraps zerolog.Logger so the packages in this module that
// log (loader outcomes and load duration, post-processor mode selection and
// invocation, vector-processor close failures) do so the same way, stamped
// with the owning component's name. Cache hits, misses, expirations and
// evictions are not logged; they are reported through cache.Metrics and
// CacheStats.
package obslog

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu   sync.RWMutex
	base = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true}).With().Timestamp().Logger()
)

// SetGlobalLevel overrides the minimum level logged by every Component
// logger. Defaults to zerolog.InfoLevel.
func SetGlobalLevel(lvl zerolog.Level) {
	mu.Lock()
	defer mu.Unlock()
	base = base.Level(lvl)
	zerolog.SetGlobalLevel(lvl)
}

// Component returns a logger stamped with a "component" field, e.g.
// obslog.Component("embeddingcache").
func Component(name string) zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base.With().Str("component", name).Logger()
}

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}
