// Package modelmanager declares the collaborator contract that instance
// caches consume on a miss: a model manager able to construct an embedding
// model instance or a rerank model instance for a (tenant, provider, model)
// tuple. The concrete network clients behind these interfaces are out of
// scope (spec section 1) — only the shape the caches depend on lives here.
package modelmanager

import "context"

// ModelType distinguishes the two model kinds the manager can construct.
type ModelType int

const (
	TypeTextEmbedding ModelType = iota
	TypeRerank
)

// RawEmbeddingModel is the minimal surface an embedding provider exposes;
// EmbeddingCache wraps it in a CachedEmbedder decorator rather than caching
// it directly.
type RawEmbeddingModel interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float64, error)
	EmbedQuery(ctx context.Context, text string) ([]float64, error)
}

// RerankResult is one scored candidate returned by a rerank model's batch
// invocation.
type RerankResult struct {
	Index int
	Text  string
	Score float64
}

// RawRerankModel is the minimal surface a rerank provider exposes.
type RawRerankModel interface {
	InvokeRerank(ctx context.Context, query string, docs []string, scoreThreshold *float64, topN *int, user string) ([]RerankResult, error)
}

// EmbeddingLoader constructs a RawEmbeddingModel for (tenantID, provider,
// modelName). Any failure propagates unchanged — embedding loads are fatal
// for the request per spec section 4.3's "strict loader" contract.
type EmbeddingLoader interface {
	GetEmbeddingModel(ctx context.Context, tenantID, provider, modelName string) (RawEmbeddingModel, error)
}

// RerankLoader constructs a RawRerankModel for (tenantID, provider,
// modelName). It may return cacheerr.ErrUnauthorized, which the rerank
// cache's caller treats as graceful degradation rather than a fatal error.
type RerankLoader interface {
	GetRerankModel(ctx context.Context, tenantID, provider, modelName string) (RawRerankModel, error)
}
