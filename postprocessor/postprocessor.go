// Package postprocessor selects and invokes a rerank strategy for a batch
// of retrieved documents, mirroring the mode-selection table a RAG
// pipeline's post-retrieval stage typically implements: weighted fusion,
// a remote rerank model, or passthrough.
package postprocessor

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ragstack/instancecache/cacheerr"
	"github.com/ragstack/instancecache/embeddingcache"
	"github.com/ragstack/instancecache/internal/obslog"
	"github.com/ragstack/instancecache/rerank"
	"github.com/ragstack/instancecache/rerankmodelcache"
)

var log = obslog.Component("postprocessor")

// Mode selects which rerank strategy PostProcessor resolves at
// construction.
type Mode string

const (
	ModeWeightedScore  Mode = "weighted_score"
	ModeRerankingModel Mode = "reranking_model"
)

// Config carries everything PostProcessor needs to resolve a runner, mode
// selection is evaluated once at construction and fixed for the instance's
// lifetime.
type Config struct {
	TenantID       string
	Mode           Mode
	Provider       string // used when Mode == ModeRerankingModel
	ModelName      string // used when Mode == ModeRerankingModel
	Weights        rerank.Weights
	EmbeddingModel string // provider:model for the query embedder, used when Weights.Vector.Weight > 0
	ReorderEnabled bool
}

// Reorderer is the external collaborator composed after the rerank runner.
// Its internal reordering algorithm is out of scope here — only the
// composition point is implemented.
type Reorderer interface {
	Reorder(docs []rerank.Document) []rerank.Document
}

// PostProcessor orchestrates per-request rerank invocation: resolve a
// runner (or none) from Config at construction, then apply it followed by
// an optional reorder step on every Invoke call.
type PostProcessor struct {
	tenantID  string
	runner    rerank.Runner
	reorderer Reorderer
}

// New resolves the runner per the mode-selection table and returns a
// PostProcessor ready to Invoke. weightedRerankEmbeddings and reranks are
// the caches a resolved runner draws its model instances from; either may
// be nil if the corresponding mode is never used. weightedRerankEmbeddings
// must be the dedicated cache built by embeddingcache.NewWeightedRerankCache,
// not the general-purpose cache returned by embeddingcache.New — the two
// are sized independently and serve independent call sites.
func New(ctx context.Context, cfg Config, weightedRerankEmbeddings *embeddingcache.EmbeddingCache, reranks *rerankmodelcache.RerankModelCache, reorderer Reorderer) (*PostProcessor, error) {
	runner, err := resolveRunner(ctx, cfg, weightedRerankEmbeddings, reranks)
	if err != nil {
		return nil, err
	}
	if cfg.ReorderEnabled && reorderer == nil {
		log.Warn().Str("tenant_id", cfg.TenantID).Msg("reorder enabled but no reorderer supplied, skipping reorder step")
	} else if !cfg.ReorderEnabled {
		reorderer = nil
	}
	return &PostProcessor{tenantID: cfg.TenantID, runner: runner, reorderer: reorderer}, nil
}

func resolveRunner(ctx context.Context, cfg Config, weightedRerankEmbeddings *embeddingcache.EmbeddingCache, reranks *rerankmodelcache.RerankModelCache) (rerank.Runner, error) {
	switch cfg.Mode {
	case ModeWeightedScore:
		var embedQuery func(ctx context.Context, text string) ([]float64, error)
		if cfg.Weights.Vector.Weight > 0 {
			if weightedRerankEmbeddings == nil {
				return nil, errors.New("postprocessor: weighted_score with non-zero vector weight requires a weighted-rerank embedding cache")
			}
			provider, model := splitProviderModel(cfg.EmbeddingModel)
			embedQuery = func(ctx context.Context, text string) ([]float64, error) {
				embedder, err := weightedRerankEmbeddings.Get(ctx, cfg.TenantID, provider, model)
				if err != nil {
					return nil, err
				}
				return embedder.EmbedQuery(ctx, text)
			}
		}
		return rerank.NewWeightedRerankRunner(cfg.Weights, embedQuery), nil

	case ModeRerankingModel:
		if cfg.Provider == "" || cfg.ModelName == "" {
			log.Info().Str("tenant_id", cfg.TenantID).Msg("reranking_model selected with no model configured, running as passthrough")
			return nil, nil
		}
		if reranks == nil {
			return nil, errors.New("postprocessor: reranking_model requires a rerank model cache")
		}
		model, err := reranks.Get(ctx, cfg.TenantID, cfg.Provider, cfg.ModelName)
		if err != nil {
			if errors.Is(err, cacheerr.ErrUnauthorized) {
				log.Info().Str("tenant_id", cfg.TenantID).Msg("rerank model unauthorized, running as passthrough")
				return nil, nil
			}
			return nil, err
		}
		if model == nil {
			return nil, nil
		}
		return rerank.NewRerankModelRunner(model), nil

	default:
		return nil, nil
	}
}

// Invoke applies the resolved runner (if any), then the reorder step (if
// enabled), to documents. An absent runner or reorderer is a no-op — the
// documents pass through unchanged other than whatever ordering the
// Reorder call produces.
func (p *PostProcessor) Invoke(ctx context.Context, query string, documents []rerank.Document, scoreThreshold *float64, topN *int, user string) ([]rerank.Document, error) {
	requestID := uuid.NewString()
	log.Debug().Str("request_id", requestID).Str("tenant_id", p.tenantID).Int("documents", len(documents)).Msg("post-processor invoke")

	result := documents
	if p.runner != nil {
		reranked, err := p.runner.Run(ctx, query, documents, scoreThreshold, topN, user)
		if err != nil {
			log.Warn().Str("request_id", requestID).Err(err).Msg("rerank runner failed")
			return nil, err
		}
		result = reranked
	}

	if p.reorderer != nil {
		result = p.reorderer.Reorder(result)
	}

	log.Debug().Str("request_id", requestID).Int("result_documents", len(result)).Msg("post-processor invoke complete")
	return result, nil
}

func splitProviderModel(s string) (provider, model string) {
	for i := 0; i < len(s); i++ {
		if s[i] == ':' {
			return s[:i], s[i+1:]
		}
	}
	return s, ""
}
