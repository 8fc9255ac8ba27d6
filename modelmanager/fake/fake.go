// Package fake provides a deterministic, in-memory modelmanager.EmbeddingLoader
// and modelmanager.RerankLoader, used by this module's own tests and by
// cmd/demo since no real provider client is in scope.
package fake

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"
	"sync"

	"github.com/ragstack/instancecache/modelmanager"
)

// Embedder is a RawEmbeddingModel that hashes each input string into a
// small fixed-width vector. It is deterministic and provider-agnostic so
// tests can assert on exact vectors without a real model.
type Embedder struct {
	Provider string
	Model    string
	Dims     int

	mu    sync.Mutex
	calls int
}

func NewEmbedder(provider, model string, dims int) *Embedder {
	if dims <= 0 {
		dims = 8
	}
	return &Embedder{Provider: provider, Model: model, Dims: dims}
}

func (e *Embedder) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

func (e *Embedder) vector(text string) []float64 {
	v := make([]float64, e.Dims)
	for i := 0; i < e.Dims; i++ {
		h := fnv.New32a()
		fmt.Fprintf(h, "%s:%s:%s:%d", e.Provider, e.Model, text, i)
		v[i] = float64(h.Sum32()%1000) / 1000.0
	}
	return v
}

func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float64, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()
	out := make([][]float64, len(texts))
	for i, t := range texts {
		out[i] = e.vector(t)
	}
	return out, nil
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float64, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()
	return e.vector(text), nil
}

// EmbeddingLoader vends Embedder instances, optionally failing for a
// configured set of providers to exercise the cache's error path.
type EmbeddingLoader struct {
	mu        sync.Mutex
	loads     int
	failFor   map[string]bool
	instances map[string]*Embedder
}

func NewEmbeddingLoader() *EmbeddingLoader {
	return &EmbeddingLoader{
		failFor:   make(map[string]bool),
		instances: make(map[string]*Embedder),
	}
}

func (l *EmbeddingLoader) FailFor(provider string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failFor[provider] = true
}

func (l *EmbeddingLoader) Loads() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loads
}

func (l *EmbeddingLoader) GetEmbeddingModel(ctx context.Context, tenantID, provider, modelName string) (modelmanager.RawEmbeddingModel, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loads++
	if l.failFor[provider] {
		return nil, fmt.Errorf("fake: provider %q refused: invalid credentials", provider)
	}
	key := tenantID + "/" + provider + "/" + modelName
	if inst, ok := l.instances[key]; ok {
		return inst, nil
	}
	inst := NewEmbedder(provider, modelName, 8)
	l.instances[key] = inst
	return inst, nil
}

// Reranker is a RawRerankModel that scores documents by lexical overlap
// with the query (the fraction of distinct query words the document
// contains), returned in descending score order.
type Reranker struct {
	Provider string
	Model    string
}

func (r *Reranker) InvokeRerank(ctx context.Context, query string, docs []string, scoreThreshold *float64, topN *int, user string) ([]modelmanager.RerankResult, error) {
	qWords := wordSet(query)
	results := make([]modelmanager.RerankResult, len(docs))
	for i, d := range docs {
		results[i] = modelmanager.RerankResult{Index: i, Text: d, Score: overlapScore(qWords, d)}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if scoreThreshold != nil {
		filtered := results[:0]
		for _, r := range results {
			if r.Score >= *scoreThreshold {
				filtered = append(filtered, r)
			}
		}
		results = filtered
	}
	if topN != nil && *topN < len(results) {
		results = results[:*topN]
	}
	return results, nil
}

func wordSet(s string) map[string]bool {
	m := make(map[string]bool)
	word := ""
	for _, r := range s + " " {
		if r == ' ' || r == '\t' || r == '\n' {
			if word != "" {
				m[word] = true
				word = ""
			}
			continue
		}
		word += string(r)
	}
	return m
}

func overlapScore(qWords map[string]bool, doc string) float64 {
	dWords := wordSet(doc)
	if len(qWords) == 0 || len(dWords) == 0 {
		return 0
	}
	overlap := 0
	for w := range dWords {
		if qWords[w] {
			overlap++
		}
	}
	return float64(overlap) / float64(len(qWords))
}

// RerankLoader vends Reranker instances, optionally returning
// cacheerr.ErrUnauthorized for a configured set of providers.
type RerankLoader struct {
	mu           sync.Mutex
	loads        int
	unauthorized map[string]bool
	unauthErr    error
}

// NewRerankLoader takes the unauthorized sentinel as a parameter so this
// package need not import cacheerr, keeping it usable standalone.
func NewRerankLoader(unauthorizedErr error) *RerankLoader {
	return &RerankLoader{unauthorized: make(map[string]bool), unauthErr: unauthorizedErr}
}

func (l *RerankLoader) DenyProvider(provider string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.unauthorized[provider] = true
}

func (l *RerankLoader) Loads() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loads
}

func (l *RerankLoader) GetRerankModel(ctx context.Context, tenantID, provider, modelName string) (modelmanager.RawRerankModel, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loads++
	if l.unauthorized[provider] {
		return nil, l.unauthErr
	}
	return &Reranker{Provider: provider, Model: modelName}, nil
}
