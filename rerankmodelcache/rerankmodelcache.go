// Package rerankmodelcache caches rerank-model instances keyed by
// (tenant, provider, model). Unlike embeddingcache, an unauthorized
// provider is not fatal: the caller is expected to degrade to no rerank
// step rather than fail the whole request.
package rerankmodelcache

import (
	"context"
	"errors"
	"time"

	"github.com/ragstack/instancecache/cache"
	"github.com/ragstack/instancecache/cacheerr"
	"github.com/ragstack/instancecache/internal/keyderivation"
	"github.com/ragstack/instancecache/internal/obslog"
	"github.com/ragstack/instancecache/modelmanager"
)

const (
	ttl     = 30 * time.Minute
	maxSize = 50
)

var log = obslog.Component("rerankmodelcache")

// RerankModelCache is a TtlLruCache specialized to
// modelmanager.RawRerankModel, backed by a RerankLoader collaborator.
type RerankModelCache struct {
	inner  *cache.TtlLruCache[string, modelmanager.RawRerankModel]
	loader modelmanager.RerankLoader
}

// New wraps loader in a fixed-size, fixed-TTL cache. metrics may be nil.
func New(loader modelmanager.RerankLoader, metrics cache.Metrics) *RerankModelCache {
	opt := cache.Options[string, modelmanager.RawRerankModel]{Metrics: metrics}
	return &RerankModelCache{
		inner:  cache.New[string, modelmanager.RawRerankModel](cache.CacheConfig{TTL: ttl, MaxSize: maxSize}, opt),
		loader: loader,
	}
}

// Get returns the cached rerank model for (tenantID, provider, modelName).
// If the loader fails with cacheerr.ErrUnauthorized, Get returns (nil, nil)
// so callers can treat "no rerank runner available" as a degrade, not a
// request failure; any other loader error is returned unchanged.
func (c *RerankModelCache) Get(ctx context.Context, tenantID, provider, modelName string) (modelmanager.RawRerankModel, error) {
	key := keyderivation.Derive(tenantID, provider, modelName)
	started := time.Now()
	model, err := c.inner.GetOrLoad(ctx, key, func(ctx context.Context) (modelmanager.RawRerankModel, error) {
		raw, err := c.loader.GetRerankModel(ctx, tenantID, provider, modelName)
		if err != nil {
			return nil, err
		}
		log.Info().Str("tenant_id", tenantID).Str("provider", provider).Str("model", modelName).
			Dur("load_duration", time.Since(started)).Msg("rerank model loaded")
		return raw, nil
	})
	if err != nil {
		if errors.Is(err, cacheerr.ErrUnauthorized) {
			log.Warn().Str("tenant_id", tenantID).Str("provider", provider).Str("model", modelName).
				Msg("rerank model unauthorized, degrading to no rerank step")
			return nil, nil
		}
		return nil, err
	}
	return model, nil
}

// Stats exposes the underlying cache's counters for monitoring.
func (c *RerankModelCache) Stats() cache.CacheStats { return c.inner.Stats() }

// Clear evicts every cached rerank model.
func (c *RerankModelCache) Clear() { c.inner.Clear() }
