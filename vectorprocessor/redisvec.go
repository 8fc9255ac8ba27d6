package vectorprocessor

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/go-redis/redis/v8"
)

// redisVecProcessor implements similarity search over the hashes stored
// under the collection's key prefix (each with a comma-separated "vector"
// field) by pulling candidate vectors back client-side and scoring them, rather
// than depending on RediSearch's vector-similarity module syntax — keeps
// the dependency to the plain go-redis client already in this module's
// stack.
type redisVecProcessor struct {
	client *redis.Client
	prefix string
}

func newRedisProcessor(ctx context.Context, cfg BackendConfig) (VectorProcessor, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.APIKey,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return &redisVecProcessor{client: client, prefix: cfg.CollectionName + ":"}, nil
}

func (p *redisVecProcessor) Backend() string { return "redis" }

func (p *redisVecProcessor) Search(ctx context.Context, vector []float64, topK int) ([]SearchHit, error) {
	keys, err := p.client.Keys(ctx, p.prefix+"*").Result()
	if err != nil {
		return nil, fmt.Errorf("redis: keys: %w", err)
	}

	hits := make([]SearchHit, 0, len(keys))
	for _, key := range keys {
		raw, err := p.client.HGet(ctx, key, "vector").Result()
		if err != nil {
			continue
		}
		candidate := parseVector(raw)
		if len(candidate) != len(vector) {
			continue
		}
		id := strings.TrimPrefix(key, p.prefix)
		hits = append(hits, SearchHit{ID: id, Score: cosineSimilarity(vector, candidate)})
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if topK < len(hits) {
		hits = hits[:topK]
	}
	return hits, nil
}

func (p *redisVecProcessor) Close() error { return p.client.Close() }

func parseVector(csv string) []float64 {
	parts := strings.Split(csv, ",")
	v := make([]float64, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil
		}
		v = append(v, f)
	}
	return v
}

func cosineSimilarity(a, b []float64) float64 {
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
