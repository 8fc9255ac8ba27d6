package vectorprocessor

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sort"

	_ "modernc.org/sqlite" // pure-Go sqlite driver, registered for sql.Open("sqlite", ...)
)

// sqliteVecProcessor is the lightweight, single-tenant-dev-mode backend: a
// plain table of (id, comma-separated vector) scanned and scored client-side. No
// vector index, no ANN — correct and simple, intended for small datasets
// and local development.
type sqliteVecProcessor struct {
	db         *sql.DB
	collection string
}

func newSQLiteVecProcessor(ctx context.Context, cfg BackendConfig) (VectorProcessor, error) {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlitevec: open: %w", err)
	}
	schema := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %q (id TEXT PRIMARY KEY, vector TEXT NOT NULL)`, cfg.CollectionName)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlitevec: schema: %w", err)
	}
	return &sqliteVecProcessor{db: db, collection: cfg.CollectionName}, nil
}

func (p *sqliteVecProcessor) Backend() string { return "sqlitevec" }

func (p *sqliteVecProcessor) Search(ctx context.Context, vector []float64, topK int) ([]SearchHit, error) {
	rows, err := p.db.QueryContext(ctx, fmt.Sprintf(`SELECT id, vector FROM %q`, p.collection))
	if err != nil {
		return nil, fmt.Errorf("sqlitevec: query: %w", err)
	}
	defer rows.Close()

	var hits []SearchHit
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("sqlitevec: scan: %w", err)
		}
		candidate := parseVector(raw)
		if len(candidate) != len(vector) {
			continue
		}
		hits = append(hits, SearchHit{ID: id, Score: cosineSimilaritySQLite(vector, candidate)})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if topK < len(hits) {
		hits = hits[:topK]
	}
	return hits, nil
}

func (p *sqliteVecProcessor) Close() error { return p.db.Close() }

func cosineSimilaritySQLite(a, b []float64) float64 {
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
