// Package vectorprocessor caches vector-store client instances keyed by
// (dataset, backend type), dispatching construction through a closed
// registry of backend factories instead of an if/else chain, mirroring the
// match/case dispatch a vector-store factory typically uses.
package vectorprocessor

import (
	"context"
	"time"

	"github.com/ragstack/instancecache/cache"
	"github.com/ragstack/instancecache/cacheerr"
	"github.com/ragstack/instancecache/internal/keyderivation"
	"github.com/ragstack/instancecache/internal/obslog"
)

const (
	ttl     = 30 * time.Minute
	maxSize = 100
)

var log = obslog.Component("vectorprocessor")

// VectorProcessor is the minimal surface every backend client exposes to
// the rest of the pipeline: similarity search over a dataset's collection.
type VectorProcessor interface {
	Backend() string
	Search(ctx context.Context, vector []float64, topK int) ([]SearchHit, error)
	Close() error
}

// SearchHit is one result of a similarity search.
type SearchHit struct {
	ID    string
	Score float64
}

// BackendConfig carries whatever connection parameters a backend factory
// needs. Concrete backends read only the fields they recognize.
type BackendConfig struct {
	DatasetID      string
	CollectionName string
	DSN            string // postgres/pgvector connection string
	Addr           string // qdrant/redis host:port
	APIKey         string
	Path           string // sqlite file path
}

// Factory constructs a VectorProcessor for one dataset's collection.
type Factory func(ctx context.Context, cfg BackendConfig) (VectorProcessor, error)

// registry is the closed set of backend tags this build understands. Adding
// a backend means adding an entry here, never adding a branch to dispatch
// logic elsewhere.
var registry = map[string]Factory{
	"pgvector":  newPGVectorProcessor,
	"qdrant":    newQdrantProcessor,
	"redis":     newRedisProcessor,
	"sqlitevec": newSQLiteVecProcessor,
}

// Register adds or overrides a backend factory. Exposed so tests (and
// deployments embedding a backend this module doesn't ship) can plug in a
// fake or an additional driver without forking the registry.
func Register(backend string, f Factory) {
	registry[backend] = f
}

// VectorProcessorCache is a TtlLruCache specialized to VectorProcessor,
// keyed on (datasetID, backend).
type VectorProcessorCache struct {
	inner    *cache.TtlLruCache[string, VectorProcessor]
	resolver *BackendResolver
}

// New wraps resolver in a fixed-size, fixed-TTL cache. metrics may be nil.
func New(resolver *BackendResolver, metrics cache.Metrics) *VectorProcessorCache {
	opt := cache.Options[string, VectorProcessor]{
		Metrics: metrics,
		OnEvict: func(key string, value VectorProcessor, reason cache.EvictReason) {
			if err := value.Close(); err != nil {
				log.Warn().Err(err).Str("backend", value.Backend()).Msg("error closing evicted vector processor")
			}
		},
	}
	return &VectorProcessorCache{
		inner:    cache.New[string, VectorProcessor](cache.CacheConfig{TTL: ttl, MaxSize: maxSize}, opt),
		resolver: resolver,
	}
}

// Get returns the cached VectorProcessor for datasetID, resolving the
// backend tag and connection config via the BackendResolver and
// constructing the client through the registry on a miss.
func (c *VectorProcessorCache) Get(ctx context.Context, tenantID, datasetID string) (VectorProcessor, error) {
	backend, cfg := c.resolver.Resolve(tenantID, datasetID)
	key := keyderivation.Derive(datasetID, backend)

	factory, ok := registry[backend]
	if !ok {
		return nil, cacheerr.ErrUnsupportedBackend
	}

	return c.inner.GetOrLoad(ctx, key, func(ctx context.Context) (VectorProcessor, error) {
		started := time.Now()
		vp, err := factory(ctx, cfg)
		if err != nil {
			log.Warn().Err(err).Str("backend", backend).Str("dataset_id", datasetID).Msg("vector processor construction failed")
			return nil, err
		}
		log.Info().Str("backend", backend).Str("dataset_id", datasetID).
			Dur("load_duration", time.Since(started)).Msg("vector processor constructed")
		return vp, nil
	})
}

// Stats exposes the underlying cache's counters for monitoring.
func (c *VectorProcessorCache) Stats() cache.CacheStats { return c.inner.Stats() }

// Clear empties the cache without closing the evicted processors — callers
// that need a clean shutdown should drain via Get-then-Close themselves, or
// rely on TTL/LRU eviction, which does invoke Close through OnEvict.
func (c *VectorProcessorCache) Clear() { c.inner.Clear() }
