package vectorprocessor

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pgvector/pgvector-go"

	_ "github.com/lib/pq" // postgres driver, registered for sql.Open("postgres", ...)
)

type pgVectorProcessor struct {
	db         *sql.DB
	collection string
}

func newPGVectorProcessor(ctx context.Context, cfg BackendConfig) (VectorProcessor, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("pgvector: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pgvector: ping: %w", err)
	}
	return &pgVectorProcessor{db: db, collection: cfg.CollectionName}, nil
}

func (p *pgVectorProcessor) Backend() string { return "pgvector" }

func (p *pgVectorProcessor) Search(ctx context.Context, vector []float64, topK int) ([]SearchHit, error) {
	v := make([]float32, len(vector))
	for i, f := range vector {
		v[i] = float32(f)
	}
	vec := pgvector.NewVector(v)

	query := fmt.Sprintf(`SELECT id, embedding <-> $1 AS distance FROM %q ORDER BY distance ASC LIMIT $2`, p.collection)
	rows, err := p.db.QueryContext(ctx, query, vec, topK)
	if err != nil {
		return nil, fmt.Errorf("pgvector: search: %w", err)
	}
	defer rows.Close()

	var hits []SearchHit
	for rows.Next() {
		var id string
		var distance float64
		if err := rows.Scan(&id, &distance); err != nil {
			return nil, fmt.Errorf("pgvector: scan: %w", err)
		}
		hits = append(hits, SearchHit{ID: id, Score: 1 / (1 + distance)})
	}
	return hits, rows.Err()
}

func (p *pgVectorProcessor) Close() error { return p.db.Close() }
