package rerank

import (
	"context"
	"fmt"
	"sort"

	"github.com/ragstack/instancecache/modelmanager"
)

// RerankModelRunner delegates scoring to a remote rerank model, a sibling
// of WeightedRerankRunner sharing the same Run contract so a
// post-processor can pick either without branching downstream.
type RerankModelRunner struct {
	Model modelmanager.RawRerankModel
}

func NewRerankModelRunner(model modelmanager.RawRerankModel) *RerankModelRunner {
	return &RerankModelRunner{Model: model}
}

func (r *RerankModelRunner) Run(ctx context.Context, query string, docs []Document, scoreThreshold *float64, topN *int, user string) ([]Document, error) {
	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.PageContent
	}

	results, err := r.Model.InvokeRerank(ctx, query, texts, scoreThreshold, topN, user)
	if err != nil {
		return nil, fmt.Errorf("rerank: model invocation: %w", err)
	}

	out := make([]Document, 0, len(results))
	for _, res := range results {
		if res.Index < 0 || res.Index >= len(docs) {
			continue
		}
		src := docs[res.Index]
		meta := cloneMeta(src.Metadata)
		meta["score"] = res.Score
		out = append(out, Document{PageContent: res.Text, Metadata: meta, Vector: src.Vector, Provider: src.Provider})
	}

	sort.SliceStable(out, func(i, j int) bool {
		si, _ := out[i].Metadata["score"].(float64)
		sj, _ := out[j].Metadata["score"].(float64)
		return si > sj
	})

	return applyThresholdAndTopN(out, scoreThreshold, topN), nil
}
