// Package rerank implements the two reorder strategies a post-processor
// can apply to a retrieved document set: a local weighted fusion of
// keyword and vector similarity, and a thin wrapper around a remote rerank
// model. Both share the same filter/sort/truncate contract so a caller can
// swap one for the other without changing downstream code.
package rerank

import (
	"context"
	"errors"
)

// ErrMissingVector is returned by WeightedRerankRunner when vector weight is
// non-zero and either a document without an upstream score has no
// precomputed vector, or no query embedder is configured. There is no
// embedder fallback here: re-embedding on the hot rerank path would hide
// an upstream bug (a document that should have been embedded at index
// time) behind a silent zero score.
var ErrMissingVector = errors.New("rerank: document missing precomputed vector")

// Document is one retrieved candidate passed into a rerank runner.
type Document struct {
	PageContent string
	Metadata    map[string]any
	Vector      []float64
	Provider    string
}

// VectorSetting configures the vector half of a weighted rerank.
type VectorSetting struct {
	Weight         float64
	EmbeddingModel string
}

// KeywordSetting configures the keyword half of a weighted rerank.
type KeywordSetting struct {
	Weight float64
}

// Weights bundles the two halves of a weighted rerank. VectorSetting.Weight
// + KeywordSetting.Weight need not sum to 1; the runner applies both
// weights as given, without normalizing them.
type Weights struct {
	Vector  VectorSetting
	Keyword KeywordSetting
}

// Runner is the common contract both rerank strategies implement.
type Runner interface {
	Run(ctx context.Context, query string, docs []Document, scoreThreshold *float64, topN *int, user string) ([]Document, error)
}

// applyThresholdAndTopN is shared by both runners: docs must already be
// sorted descending by metadata["score"] before calling this.
func applyThresholdAndTopN(docs []Document, scoreThreshold *float64, topN *int) []Document {
	out := docs
	if scoreThreshold != nil {
		filtered := out[:0:0]
		for _, d := range out {
			score, _ := d.Metadata["score"].(float64)
			if score >= *scoreThreshold {
				filtered = append(filtered, d)
			}
		}
		out = filtered
	}
	if topN != nil && *topN < len(out) {
		out = out[:*topN]
	}
	return out
}
