// Package embeddingcache caches embedding-model instances keyed by
// (tenant, provider, model), decorating each raw model with a small
// wrapper that the rest of the pipeline calls instead of re-resolving the
// model manager on every embed.
package embeddingcache

import (
	"context"
	"time"

	"github.com/ragstack/instancecache/cache"
	"github.com/ragstack/instancecache/internal/keyderivation"
	"github.com/ragstack/instancecache/internal/obslog"
	"github.com/ragstack/instancecache/modelmanager"
)

// EmbeddingCacheConfig and WeightedRerankEmbeddingCacheConfig are the fixed
// parameters for this cache's two specializations. The module carries no
// runtime reconfiguration — change these and rebuild to retune.
//
// The two are sized independently because they serve independent call
// sites with independent working sets: EmbeddingCacheConfig backs the
// general-purpose embedder lookup used across the pipeline, while
// WeightedRerankEmbeddingCacheConfig backs only the weighted-rerank
// runner's query-embedding path.
var (
	EmbeddingCacheConfig               = cache.CacheConfig{TTL: 30 * time.Minute, MaxSize: 100}
	WeightedRerankEmbeddingCacheConfig = cache.CacheConfig{TTL: 30 * time.Minute, MaxSize: 50}
)

var log = obslog.Component("embeddingcache")

// CachedEmbedder decorates a raw embedding model with the identity it was
// resolved under. It is what gets cached and returned to callers, not the
// raw modelmanager.RawEmbeddingModel — so a cache hit never needs to touch
// the model manager again even to learn which provider/model it is.
type CachedEmbedder struct {
	TenantID string
	Provider string
	Model    string
	raw      modelmanager.RawEmbeddingModel
}

func (e *CachedEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float64, error) {
	return e.raw.EmbedDocuments(ctx, texts)
}

func (e *CachedEmbedder) EmbedQuery(ctx context.Context, text string) ([]float64, error) {
	return e.raw.EmbedQuery(ctx, text)
}

// EmbeddingCache is a TtlLruCache specialized to *CachedEmbedder, backed by
// an EmbeddingLoader collaborator for misses.
type EmbeddingCache struct {
	inner  *cache.TtlLruCache[string, *CachedEmbedder]
	loader modelmanager.EmbeddingLoader
}

// New wraps loader in a cache sized per EmbeddingCacheConfig. metrics may be
// nil, in which case cache.NoopMetrics is used.
func New(loader modelmanager.EmbeddingLoader, metrics cache.Metrics) *EmbeddingCache {
	return newWithConfig(EmbeddingCacheConfig, loader, metrics)
}

// NewWeightedRerankCache wraps loader in a cache sized per
// WeightedRerankEmbeddingCacheConfig, the dedicated query-embedding cache
// for WeightedRerankRunner — kept separate from the general-purpose cache
// New returns so the two pools evict independently.
func NewWeightedRerankCache(loader modelmanager.EmbeddingLoader, metrics cache.Metrics) *EmbeddingCache {
	return newWithConfig(WeightedRerankEmbeddingCacheConfig, loader, metrics)
}

func newWithConfig(cfg cache.CacheConfig, loader modelmanager.EmbeddingLoader, metrics cache.Metrics) *EmbeddingCache {
	opt := cache.Options[string, *CachedEmbedder]{Metrics: metrics}
	return &EmbeddingCache{
		inner:  cache.New[string, *CachedEmbedder](cfg, opt),
		loader: loader,
	}
}

// Get returns the cached CachedEmbedder for (tenantID, provider, modelName),
// constructing and caching one via the loader on a miss. A loader error is
// never cached and is returned to the caller unchanged.
func (c *EmbeddingCache) Get(ctx context.Context, tenantID, provider, modelName string) (*CachedEmbedder, error) {
	key := keyderivation.Derive(tenantID, provider, modelName)
	started := time.Now()
	embedder, err := c.inner.GetOrLoad(ctx, key, func(ctx context.Context) (*CachedEmbedder, error) {
		raw, err := c.loader.GetEmbeddingModel(ctx, tenantID, provider, modelName)
		if err != nil {
			log.Warn().Err(err).Str("tenant_id", tenantID).Str("provider", provider).Str("model", modelName).Msg("embedding model load failed")
			return nil, err
		}
		log.Info().Str("tenant_id", tenantID).Str("provider", provider).Str("model", modelName).
			Dur("load_duration", time.Since(started)).Msg("embedding model loaded")
		return &CachedEmbedder{TenantID: tenantID, Provider: provider, Model: modelName, raw: raw}, nil
	})
	if err != nil {
		return nil, err
	}
	return embedder, nil
}

// Stats exposes the underlying cache's counters for monitoring.
func (c *EmbeddingCache) Stats() cache.CacheStats { return c.inner.Stats() }

// Clear evicts every cached embedder.
func (c *EmbeddingCache) Clear() { c.inner.Clear() }
