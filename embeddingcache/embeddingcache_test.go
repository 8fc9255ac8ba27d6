package embeddingcache

import (
	"context"
	"testing"

	"github.com/ragstack/instancecache/modelmanager/fake"
)

func TestGet_CachesAcrossCalls(t *testing.T) {
	loader := fake.NewEmbeddingLoader()
	c := New(loader, nil)

	e1, err := c.Get(context.Background(), "tenant1", "openai", "ada-002")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e2, err := c.Get(context.Background(), "tenant1", "openai", "ada-002")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e1 != e2 {
		t.Fatalf("expected identical cached embedder across calls")
	}
	if loader.Loads() != 1 {
		t.Fatalf("expected exactly 1 loader invocation, got %d", loader.Loads())
	}
}

func TestGet_DistinctKeysLoadSeparately(t *testing.T) {
	loader := fake.NewEmbeddingLoader()
	c := New(loader, nil)

	if _, err := c.Get(context.Background(), "tenant1", "openai", "ada-002"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := c.Get(context.Background(), "tenant2", "openai", "ada-002"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loader.Loads() != 2 {
		t.Fatalf("expected 2 loader invocations for distinct tenants, got %d", loader.Loads())
	}
}

func TestGet_LoaderErrorNotCached(t *testing.T) {
	loader := fake.NewEmbeddingLoader()
	loader.FailFor("bad-provider")
	c := New(loader, nil)

	if _, err := c.Get(context.Background(), "tenant1", "bad-provider", "model"); err == nil {
		t.Fatalf("expected error from failing provider")
	}
	if _, err := c.Get(context.Background(), "tenant1", "bad-provider", "model"); err == nil {
		t.Fatalf("expected error to persist on retry (errors are never cached)")
	}
	if loader.Loads() != 2 {
		t.Fatalf("expected loader invoked on every attempt after an error, got %d", loader.Loads())
	}
}

func TestGet_EmbedDocumentsDelegates(t *testing.T) {
	loader := fake.NewEmbeddingLoader()
	c := New(loader, nil)

	e, err := c.Get(context.Background(), "tenant1", "openai", "ada-002")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	vecs, err := e.EmbedDocuments(context.Background(), []string{"hello", "world"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vecs) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(vecs))
	}
}
