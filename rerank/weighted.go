package rerank

import (
	"context"
	"math"
	"sort"
)

// WeightedRerankRunner fuses a corpus-relative TF-IDF keyword-cosine score
// with a vector-cosine score per document, writes the extracted keywords
// and the fused score into Metadata, sorts descending, and applies the
// threshold/topN contract.
type WeightedRerankRunner struct {
	Weights Weights
	// Embedder embeds the query exactly once, used when a document does not
	// already carry an upstream score in Metadata["score"]. Required only
	// when Weights.Vector.Weight > 0.
	Embedder func(ctx context.Context, text string) ([]float64, error)
}

func NewWeightedRerankRunner(weights Weights, queryEmbedder func(ctx context.Context, text string) ([]float64, error)) *WeightedRerankRunner {
	return &WeightedRerankRunner{Weights: weights, Embedder: queryEmbedder}
}

func (r *WeightedRerankRunner) Run(ctx context.Context, query string, docs []Document, scoreThreshold *float64, topN *int, user string) ([]Document, error) {
	// vector_weight + keyword_weight conventionally equals 1.0, but neither
	// this type nor its caller enforces it: weights are applied exactly as
	// given, unnormalized.
	vWeight, kWeight := r.Weights.Vector.Weight, r.Weights.Keyword.Weight

	docCounts := make([]map[string]int, len(docs))
	for i, d := range docs {
		docCounts[i] = keywordCounts(d.PageContent)
	}
	idf := corpusIDF(docCounts)
	queryTFIDF := tfidfVector(keywordCounts(query), idf)

	var queryVector []float64
	if vWeight > 0 {
		for _, d := range docs {
			if _, ok := d.Metadata["score"].(float64); ok {
				continue // reused verbatim, no embedding needed for this doc
			}
			if r.Embedder == nil {
				return nil, ErrMissingVector
			}
			qv, err := r.Embedder(ctx, query)
			if err != nil {
				return nil, err
			}
			queryVector = qv
			break
		}
	}

	out := make([]Document, len(docs))
	for i, d := range docs {
		kScore := cosineSparse(queryTFIDF, tfidfVector(docCounts[i], idf))

		var vScore float64
		if vWeight > 0 {
			if upstream, ok := d.Metadata["score"].(float64); ok {
				vScore = upstream
			} else {
				if len(d.Vector) == 0 {
					return nil, ErrMissingVector
				}
				vScore = vectorCosine(queryVector, d.Vector)
			}
		}

		meta := cloneMeta(d.Metadata)
		meta["keywords"] = sortedKeywords(docCounts[i])
		meta["score"] = kWeight*kScore + vWeight*vScore

		out[i] = Document{PageContent: d.PageContent, Metadata: meta, Vector: d.Vector, Provider: d.Provider}
	}

	sort.SliceStable(out, func(i, j int) bool {
		si, _ := out[i].Metadata["score"].(float64)
		sj, _ := out[j].Metadata["score"].(float64)
		return si > sj
	})

	return applyThresholdAndTopN(out, scoreThreshold, topN), nil
}

func vectorCosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func cloneMeta(m map[string]any) map[string]any {
	out := make(map[string]any, len(m)+2)
	for k, v := range m {
		out[k] = v
	}
	return out
}
