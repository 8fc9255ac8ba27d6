// Command demo wires up an EmbeddingCache, a RerankModelCache, and a
// PostProcessor against the in-memory fake model manager, runs a handful
// of requests, and prints the resulting cache reports. It is a standalone
// demonstration, not a deployable service.
package main

import (
	"context"
	"fmt"

	"github.com/ragstack/instancecache/cacheerr"
	"github.com/ragstack/instancecache/embeddingcache"
	"github.com/ragstack/instancecache/metrics/monitor"
	"github.com/ragstack/instancecache/modelmanager/fake"
	"github.com/ragstack/instancecache/postprocessor"
	"github.com/ragstack/instancecache/rerank"
	"github.com/ragstack/instancecache/rerankmodelcache"
)

func main() {
	ctx := context.Background()

	embedLoader := fake.NewEmbeddingLoader()
	embeddings := embeddingcache.New(embedLoader, nil)
	weightedRerankEmbeddings := embeddingcache.NewWeightedRerankCache(embedLoader, nil)

	rerankLoader := fake.NewRerankLoader(cacheerr.ErrUnauthorized)
	rerankLoader.DenyProvider("denied-provider")
	reranks := rerankmodelcache.New(rerankLoader, nil)

	weighted, err := postprocessor.New(ctx, postprocessor.Config{
		TenantID: "tenant-demo",
		Mode:     postprocessor.ModeWeightedScore,
		Weights: rerank.Weights{
			Vector:  rerank.VectorSetting{Weight: 0.7, EmbeddingModel: "openai:text-embedding-3-small"},
			Keyword: rerank.KeywordSetting{Weight: 0.3},
		},
		EmbeddingModel: "openai:text-embedding-3-small",
	}, weightedRerankEmbeddings, reranks, nil)
	if err != nil {
		panic(err)
	}

	docs := []rerank.Document{
		{PageContent: "Go is a statically typed, compiled language", Vector: []float64{0.12, 0.98, 0.44}},
		{PageContent: "Cats are small domesticated carnivorous mammals", Vector: []float64{0.91, 0.02, 0.33}},
		{PageContent: "Goroutines make concurrent Go programs easy to write", Vector: []float64{0.15, 0.95, 0.40}},
	}

	results, err := weighted.Invoke(ctx, "concurrent Go programs", docs, nil, nil, "demo-user")
	if err != nil {
		panic(err)
	}
	fmt.Println("weighted rerank results:")
	for _, d := range results {
		fmt.Printf("  score=%v keywords=%v %q\n", d.Metadata["score"], d.Metadata["keywords"], d.PageContent)
	}

	modelReranker, err := postprocessor.New(ctx, postprocessor.Config{
		TenantID:  "tenant-demo",
		Mode:      postprocessor.ModeRerankingModel,
		Provider:  "cohere",
		ModelName: "rerank-v3",
	}, weightedRerankEmbeddings, reranks, nil)
	if err != nil {
		panic(err)
	}
	results, err = modelReranker.Invoke(ctx, "concurrent Go programs", docs, nil, nil, "demo-user")
	if err != nil {
		panic(err)
	}
	fmt.Println("rerank-model results:")
	for _, d := range results {
		fmt.Printf("  score=%v %q\n", d.Metadata["score"], d.PageContent)
	}

	fmt.Println()
	fmt.Println(monitor.TextReport([]monitor.NamedStats{
		{Name: "embeddings", Stats: embeddings.Stats(), MaxSize: 100},
		{Name: "weighted_rerank_embeddings", Stats: weightedRerankEmbeddings.Stats(), MaxSize: 50},
		{Name: "rerank_models", Stats: reranks.Stats(), MaxSize: 50},
	}))
}
