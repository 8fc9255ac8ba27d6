package vectorprocessor

import (
	"context"
	"fmt"

	qdrant "github.com/qdrant/go-client/qdrant"
)

type qdrantProcessor struct {
	conn       *qdrant.Client
	collection string
}

func newQdrantProcessor(ctx context.Context, cfg BackendConfig) (VectorProcessor, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Addr,
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: connect: %w", err)
	}
	return &qdrantProcessor{conn: client, collection: cfg.CollectionName}, nil
}

func (p *qdrantProcessor) Backend() string { return "qdrant" }

func (p *qdrantProcessor) Search(ctx context.Context, vector []float64, topK int) ([]SearchHit, error) {
	v := make([]float32, len(vector))
	for i, f := range vector {
		v[i] = float32(f)
	}

	limit := uint64(topK)
	res, err := p.conn.Query(ctx, &qdrant.QueryPoints{
		CollectionName: p.collection,
		Query:          qdrant.NewQuery(v...),
		Limit:          &limit,
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: query: %w", err)
	}

	hits := make([]SearchHit, 0, len(res))
	for _, point := range res {
		id := point.GetId().GetUuid()
		if id == "" {
			id = fmt.Sprintf("%d", point.GetId().GetNum())
		}
		hits = append(hits, SearchHit{ID: id, Score: float64(point.GetScore())})
	}
	return hits, nil
}

func (p *qdrantProcessor) Close() error { return p.conn.Close() }
