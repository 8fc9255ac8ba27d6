package postprocessor

import (
	"context"
	"testing"

	"github.com/ragstack/instancecache/cacheerr"
	"github.com/ragstack/instancecache/embeddingcache"
	"github.com/ragstack/instancecache/modelmanager/fake"
	"github.com/ragstack/instancecache/rerank"
	"github.com/ragstack/instancecache/rerankmodelcache"
)

func TestNew_WeightedScoreKeywordOnly(t *testing.T) {
	cfg := Config{
		TenantID: "tenant1",
		Mode:     ModeWeightedScore,
		Weights:  rerank.Weights{Keyword: rerank.KeywordSetting{Weight: 1}},
	}
	pp, err := New(context.Background(), cfg, nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	docs := []rerank.Document{
		{PageContent: "apple banana cherry"},
		{PageContent: "unrelated text"},
	}
	out, err := pp.Invoke(context.Background(), "apple banana", docs, nil, nil, "user1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 docs, got %d", len(out))
	}
	if out[0].PageContent != "apple banana cherry" {
		t.Fatalf("expected matching doc to rank first, got %q", out[0].PageContent)
	}
}

func TestNew_RerankingModelUnauthorizedDegradesToPassthrough(t *testing.T) {
	loader := fake.NewRerankLoader(cacheerr.ErrUnauthorized)
	loader.DenyProvider("cohere")
	reranks := rerankmodelcache.New(loader, nil)

	cfg := Config{
		TenantID:  "tenant1",
		Mode:      ModeRerankingModel,
		Provider:  "cohere",
		ModelName: "rerank-v3",
	}
	pp, err := New(context.Background(), cfg, nil, reranks, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	docs := []rerank.Document{{PageContent: "hello"}, {PageContent: "world"}}
	out, err := pp.Invoke(context.Background(), "query", docs, nil, nil, "user1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 || out[0].PageContent != "hello" || out[1].PageContent != "world" {
		t.Fatalf("expected passthrough to leave documents unchanged, got %+v", out)
	}
}

func TestNew_RerankingModelEmptyNamesPassthrough(t *testing.T) {
	cfg := Config{TenantID: "tenant1", Mode: ModeRerankingModel}
	pp, err := New(context.Background(), cfg, nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	docs := []rerank.Document{{PageContent: "hello"}}
	out, err := pp.Invoke(context.Background(), "q", docs, nil, nil, "user1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected passthrough, got %+v", out)
	}
}

func TestNew_UnknownModePassthrough(t *testing.T) {
	cfg := Config{TenantID: "tenant1", Mode: "something-else"}
	pp, err := New(context.Background(), cfg, nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	docs := []rerank.Document{{PageContent: "hello"}}
	out, err := pp.Invoke(context.Background(), "q", docs, nil, nil, "user1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected passthrough, got %+v", out)
	}
}

func TestNew_WeightedScoreVectorUsesEmbeddingCache(t *testing.T) {
	loader := fake.NewEmbeddingLoader()
	weightedRerankEmbeddings := embeddingcache.NewWeightedRerankCache(loader, nil)

	cfg := Config{
		TenantID:       "tenant1",
		Mode:           ModeWeightedScore,
		Weights:        rerank.Weights{Vector: rerank.VectorSetting{Weight: 1}},
		EmbeddingModel: "openai:ada-002",
	}
	pp, err := New(context.Background(), cfg, weightedRerankEmbeddings, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	docs := []rerank.Document{
		{PageContent: "doc A", Vector: []float64{0.1, 0.2, 0.3}},
	}
	if _, err := pp.Invoke(context.Background(), "query", docs, nil, nil, "user1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loader.Loads() != 1 {
		t.Fatalf("expected exactly 1 embedding model load, got %d", loader.Loads())
	}
}
